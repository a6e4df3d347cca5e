package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
)

// CartService manages the caller's cart.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
	}
}

// AddItemInput is the body of an add-to-cart request. Quantity is a pointer so an
// omitted quantity can be told apart from zero.
type AddItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

// GetCart returns the caller's cart, creating an empty one on first use.
func (s *CartService) GetCart(ctx context.Context, id entity.Identity) (entity.Cart, error) {
	if id.Anonymous() {
		return entity.Cart{}, fmt.Errorf("%w: cart", entity.ErrUnauthenticated)
	}
	cart, err := s.carts.GetOrCreate(ctx, id.UserID)
	if err != nil {
		return entity.Cart{}, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, nil
}

// AddItem puts quantity units of a product in the cart. Adding a product already in
// the cart increases its quantity.
func (s *CartService) AddItem(ctx context.Context, id entity.Identity, in AddItemInput) (entity.Cart, error) {
	switch {
	case id.Anonymous():
		return entity.Cart{}, fmt.Errorf("%w: cart", entity.ErrUnauthenticated)
	case strings.TrimSpace(in.ProductID) == "":
		return entity.Cart{}, entity.Invalid("product_id is required")
	case in.Quantity == nil:
		return entity.Cart{}, entity.Invalid("quantity is required")
	case *in.Quantity < 1:
		return entity.Cart{}, entity.Invalid("quantity must be at least 1")
	case *in.Quantity > entity.MaxQuantity:
		return entity.Cart{}, entity.Invalid("quantity must be at most %d", entity.MaxQuantity)
	}

	if _, err := s.products.Get(ctx, in.ProductID); err != nil {
		return entity.Cart{}, err
	}
	cart, err := s.carts.GetOrCreate(ctx, id.UserID)
	if err != nil {
		return entity.Cart{}, fmt.Errorf("failed to load cart: %w", err)
	}

	slog.Info("Service: Adding item to cart", "cart_id", cart.ID, "product_id", in.ProductID, "quantity", *in.Quantity)
	if err := s.carts.AddItem(ctx, cart.ID, in.ProductID, *in.Quantity); err != nil {
		return entity.Cart{}, fmt.Errorf("failed to add cart item: %w", err)
	}
	return s.carts.GetOrCreate(ctx, id.UserID)
}

// RemoveItem drops the product's line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, id entity.Identity, productID string) (entity.Cart, error) {
	if id.Anonymous() {
		return entity.Cart{}, fmt.Errorf("%w: cart", entity.ErrUnauthenticated)
	}
	if strings.TrimSpace(productID) == "" {
		return entity.Cart{}, entity.Invalid("product_id is required")
	}

	cart, err := s.carts.GetOrCreate(ctx, id.UserID)
	if err != nil {
		return entity.Cart{}, fmt.Errorf("failed to load cart: %w", err)
	}
	if _, ok := cart.Item(productID); !ok {
		return entity.Cart{}, fmt.Errorf("%w: product %q is not in the cart", entity.ErrNotFound, productID)
	}

	slog.Info("Service: Removing item from cart", "cart_id", cart.ID, "product_id", productID)
	if err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
		return entity.Cart{}, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return s.carts.GetOrCreate(ctx, id.UserID)
}
