package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/cache"
	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/messaging"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	"github.com/shopspring/decimal"
)

// CheckoutService turns a cart into an order split by shop.
type CheckoutService struct {
	tx           repository.Transactor
	publisher    messaging.Publisher
	cache        cache.ProductCache
	reserveStock bool
}

// CheckoutOption configures a CheckoutService.
type CheckoutOption func(*CheckoutService)

// WithStockReservation makes checkout decrement product stock and refuse lines that
// exceed it.
func WithStockReservation(enabled bool) CheckoutOption {
	return func(s *CheckoutService) { s.reserveStock = enabled }
}

// WithProductCache sets the cache whose entries are evicted when checkout changes
// product stock.
func WithProductCache(c cache.ProductCache) CheckoutOption {
	return func(s *CheckoutService) {
		if c != nil {
			s.cache = c
		}
	}
}

func NewCheckoutService(tx repository.Transactor, publisher messaging.Publisher, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{tx: tx, publisher: publisher, cache: cache.Nop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout places one order for the caller's cart. The order gets one shop order per
// distinct shop, in the order the shops first appear in the cart, and one line per
// cart item priced at the current product price. The cart is emptied. Nothing is
// written unless every step succeeds.
func (s *CheckoutService) Checkout(ctx context.Context, id entity.Identity) (entity.CheckoutResult, error) {
	if id.Anonymous() {
		return entity.CheckoutResult{}, fmt.Errorf("%w: checkout", entity.ErrUnauthenticated)
	}
	slog.Info("Service: Checking out", "user_id", id.UserID)

	var res entity.CheckoutResult
	err := s.tx.WithinCheckout(ctx, func(ctx context.Context, tx repository.CheckoutTx) error {
		var err error
		res, err = s.place(ctx, tx, id.UserID)
		return err
	})
	if err != nil {
		return entity.CheckoutResult{}, err
	}

	slog.Info("Service: Order placed", "order_id", res.OrderID, "total", res.TotalAmount.StringFixed(2), "shop_orders", len(res.ShopOrders))
	if s.reserveStock {
		s.evictReserved(ctx, res)
	}
	event := entity.NewOrderPlaced(id.UserID, res, time.Now().UTC())
	if err := s.publisher.PublishEvent(ctx, entity.TopicOrderPlaced, res.OrderID, event); err != nil {
		slog.Error("Failed to publish OrderPlaced", "order_id", res.OrderID, "err", err)
	}
	return res, nil
}

func (s *CheckoutService) place(ctx context.Context, tx repository.CheckoutTx, userID string) (entity.CheckoutResult, error) {
	cartID, lines, err := tx.CartLines(ctx, userID)
	if err != nil {
		return entity.CheckoutResult{}, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(lines) == 0 {
		return entity.CheckoutResult{}, entity.ErrEmptyCart
	}
	for _, l := range lines {
		if l.ProductStatus != entity.StatusActive {
			return entity.CheckoutResult{}, fmt.Errorf("%w: %s", entity.ErrProductUnavailable, l.ProductName)
		}
	}

	order := entity.Order{UserID: userID, Status: entity.OrderStatusPending, TotalAmount: decimal.Zero}
	if err := tx.CreateOrder(ctx, &order); err != nil {
		return entity.CheckoutResult{}, fmt.Errorf("failed to create order: %w", err)
	}

	var (
		shopOrders []entity.ShopOrder
		byShop     = make(map[string]int)
	)
	for _, l := range lines {
		i, ok := byShop[l.ShopID]
		if !ok {
			so := entity.ShopOrder{
				OrderID:   order.ID,
				ShopID:    l.ShopID,
				Status:    entity.OrderStatusPending,
				ShopTotal: decimal.Zero,
			}
			if err := tx.CreateShopOrder(ctx, &so); err != nil {
				return entity.CheckoutResult{}, fmt.Errorf("failed to create shop order: %w", err)
			}
			i = len(shopOrders)
			byShop[l.ShopID] = i
			shopOrders = append(shopOrders, so)
		}

		if s.reserveStock {
			ok, err := tx.ReserveStock(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return entity.CheckoutResult{}, fmt.Errorf("failed to reserve stock: %w", err)
			}
			if !ok {
				return entity.CheckoutResult{}, fmt.Errorf("%w: %s (available %d, requested %d)",
					entity.ErrInsufficientStock, l.ProductName, l.Stock, l.Quantity)
			}
		}

		d := entity.OrderDetail{
			OrderID:     order.ID,
			ShopOrderID: shopOrders[i].ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
		}
		if err := tx.CreateOrderDetail(ctx, &d); err != nil {
			return entity.CheckoutResult{}, fmt.Errorf("failed to create order detail: %w", err)
		}
		shopOrders[i].Items = append(shopOrders[i].Items, d)
		shopOrders[i].ShopTotal = shopOrders[i].ShopTotal.Add(d.LineTotal())
	}

	total := decimal.Zero
	for i := range shopOrders {
		if err := tx.SetShopOrderTotal(ctx, shopOrders[i].ID, shopOrders[i].ShopTotal); err != nil {
			return entity.CheckoutResult{}, fmt.Errorf("failed to set shop order total: %w", err)
		}
		total = total.Add(shopOrders[i].ShopTotal)
	}
	if err := tx.SetOrderTotal(ctx, order.ID, total); err != nil {
		return entity.CheckoutResult{}, fmt.Errorf("failed to set order total: %w", err)
	}
	if err := tx.ClearCart(ctx, cartID); err != nil {
		return entity.CheckoutResult{}, fmt.Errorf("failed to clear cart: %w", err)
	}

	return entity.CheckoutResult{OrderID: order.ID, TotalAmount: total, ShopOrders: shopOrders}, nil
}

func (s *CheckoutService) evictReserved(ctx context.Context, res entity.CheckoutResult) {
	var ids []string
	for _, so := range res.ShopOrders {
		for _, d := range so.Items {
			ids = append(ids, d.ProductID)
		}
	}
	if err := s.cache.Delete(ctx, ids...); err != nil {
		slog.Warn("Service: Product cache eviction failed", "product_ids", ids, "err", err)
	}
}
