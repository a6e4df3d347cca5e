package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/egannguyen/go-kafka-marketplace/internal/access"
	"github.com/egannguyen/go-kafka-marketplace/internal/cache"
	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	minPrice    = decimal.RequireFromString("0.01")
	priceLimit  = decimal.New(1, 8)
)

// CatalogService serves shops, products, categories and brands.
type CatalogService struct {
	shops    repository.ShopRepository
	products repository.ProductRepository
	taxonomy repository.TaxonomyRepository
	authz    *access.Authorizer
	cache    cache.ProductCache
}

func NewCatalogService(repos repository.Repositories, authz *access.Authorizer, productCache cache.ProductCache) *CatalogService {
	if productCache == nil {
		productCache = cache.Nop{}
	}
	return &CatalogService{
		shops:    repos.Shops,
		products: repos.Products,
		taxonomy: repos.Taxonomy,
		authz:    authz,
		cache:    productCache,
	}
}

// ProductQuery filters product listings.
type ProductQuery struct {
	ShopID     string
	CategoryID string
	BrandID    string
	Search     string
	Limit      int
	Offset     int
}

// ProductInput carries product fields from a request. Nil fields are absent.
type ProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Status      *string          `json:"status"`
	CategoryID  *string          `json:"category"`
	BrandID     *string          `json:"brand"`
	// ShopID is accepted for compatibility and ignored: products belong to the
	// creating manager's shop and never move.
	ShopID *string `json:"shop"`
}

// ImageInput describes an image attached to a product.
type ImageInput struct {
	ImageURL  string `json:"image"`
	IsFeature bool   `json:"is_feature"`
	AltText   string `json:"alt_text"`
}

// ShopInput carries shop fields from a request. Nil fields are absent.
type ShopInput struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) ([]entity.Product, error) {
	if q.Offset < 0 {
		return nil, entity.Invalid("offset must not be negative")
	}
	switch {
	case q.Limit < 0:
		return nil, entity.Invalid("limit must not be negative")
	case q.Limit == 0:
		q.Limit = defaultPageSize
	case q.Limit > maxPageSize:
		q.Limit = maxPageSize
	}

	products, err := s.products.List(ctx, repository.ProductFilter{
		ShopID:     q.ShopID,
		CategoryID: q.CategoryID,
		BrandID:    q.BrandID,
		Query:      strings.TrimSpace(q.Search),
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct reads through the product cache.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (entity.Product, error) {
	if p, ok, err := s.cache.Get(ctx, id); err != nil {
		slog.Warn("Service: Product cache read failed", "product_id", id, "err", err)
	} else if ok {
		return p, nil
	}

	p, err := s.products.Get(ctx, id)
	if err != nil {
		return entity.Product{}, err
	}
	if err := s.cache.Set(ctx, p); err != nil {
		slog.Warn("Service: Product cache write failed", "product_id", id, "err", err)
	}
	return p, nil
}

// CreateProduct adds a product to the caller's shop.
func (s *CatalogService) CreateProduct(ctx context.Context, id entity.Identity, in ProductInput) (entity.Product, error) {
	if id.Anonymous() {
		return entity.Product{}, fmt.Errorf("%w: create product", entity.ErrUnauthenticated)
	}
	m, ok, err := s.authz.Binding(ctx, id)
	if err != nil {
		return entity.Product{}, err
	}
	if !ok {
		return entity.Product{}, fmt.Errorf("%w: only shop managers can create products", entity.ErrPermission)
	}
	if err := s.authz.Require(ctx, id, access.ActionCreate, access.Resource{Kind: access.KindProduct, ShopID: m.ShopID}); err != nil {
		return entity.Product{}, err
	}

	p := entity.Product{ShopID: m.ShopID, Status: entity.StatusActive}
	if err := s.applyProduct(ctx, &p, in, true); err != nil {
		return entity.Product{}, err
	}

	slog.Info("Service: Creating product", "shop_id", p.ShopID, "name", p.Name)
	if err := s.products.Create(ctx, &p); err != nil {
		return entity.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	return s.products.Get(ctx, p.ID)
}

// ReplaceProduct overwrites every product field.
func (s *CatalogService) ReplaceProduct(ctx context.Context, id entity.Identity, productID string, in ProductInput) (entity.Product, error) {
	return s.updateProduct(ctx, id, productID, in, true)
}

// PatchProduct changes only the fields present in in.
func (s *CatalogService) PatchProduct(ctx context.Context, id entity.Identity, productID string, in ProductInput) (entity.Product, error) {
	return s.updateProduct(ctx, id, productID, in, false)
}

func (s *CatalogService) updateProduct(ctx context.Context, id entity.Identity, productID string, in ProductInput, full bool) (entity.Product, error) {
	p, err := s.ownedProduct(ctx, id, access.ActionUpdate, productID)
	if err != nil {
		return entity.Product{}, err
	}
	if full {
		p = entity.Product{ID: p.ID, ShopID: p.ShopID, Status: entity.StatusActive}
	}
	if err := s.applyProduct(ctx, &p, in, full); err != nil {
		return entity.Product{}, err
	}

	slog.Info("Service: Updating product", "product_id", productID, "full", full)
	if err := s.products.Update(ctx, &p); err != nil {
		return entity.Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	s.evict(ctx, productID)
	return s.products.Get(ctx, productID)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id entity.Identity, productID string) error {
	if _, err := s.ownedProduct(ctx, id, access.ActionDelete, productID); err != nil {
		return err
	}

	slog.Info("Service: Deleting product", "product_id", productID)
	if err := s.products.Delete(ctx, productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.evict(ctx, productID)
	return nil
}

func (s *CatalogService) AddProductImage(ctx context.Context, id entity.Identity, productID string, in ImageInput) (entity.ProductImage, error) {
	if _, err := s.ownedProduct(ctx, id, access.ActionUpdate, productID); err != nil {
		return entity.ProductImage{}, err
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return entity.ProductImage{}, entity.Invalid("image is required")
	}

	img := entity.ProductImage{ProductID: productID, ImageURL: in.ImageURL, IsFeature: in.IsFeature, AltText: in.AltText}
	if err := s.products.AddImage(ctx, &img); err != nil {
		return entity.ProductImage{}, fmt.Errorf("failed to add product image: %w", err)
	}
	s.evict(ctx, productID)
	return img, nil
}

// ownedProduct loads the product and checks that id may perform action on it.
func (s *CatalogService) ownedProduct(ctx context.Context, id entity.Identity, action access.Action, productID string) (entity.Product, error) {
	if id.Anonymous() {
		return entity.Product{}, fmt.Errorf("%w: %s product", entity.ErrUnauthenticated, action)
	}
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return entity.Product{}, err
	}
	if err := s.authz.Require(ctx, id, action, access.Resource{Kind: access.KindProduct, ShopID: p.ShopID}); err != nil {
		return entity.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) applyProduct(ctx context.Context, p *entity.Product, in ProductInput, full bool) error {
	if full {
		switch {
		case in.Name == nil:
			return entity.Invalid("name is required")
		case in.Price == nil:
			return entity.Invalid("price is required")
		}
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
		if p.Name == "" {
			return entity.Invalid("name must not be blank")
		}
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return err
		}
		p.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return entity.Invalid("stock must not be negative")
		}
		p.Stock = *in.Stock
	}
	if in.Status != nil {
		st := entity.Status(*in.Status)
		if !st.Valid() {
			return fmt.Errorf("%w: product status %q", entity.ErrInvalidStatus, *in.Status)
		}
		p.Status = st
	}
	if in.CategoryID != nil {
		if err := s.checkRef(ctx, "category", *in.CategoryID, s.taxonomy.CategoryExists); err != nil {
			return err
		}
		p.CategoryID = *in.CategoryID
	}
	if in.BrandID != nil {
		if err := s.checkRef(ctx, "brand", *in.BrandID, s.taxonomy.BrandExists); err != nil {
			return err
		}
		p.BrandID = *in.BrandID
	}
	return nil
}

func (s *CatalogService) checkRef(ctx context.Context, kind, id string, exists func(context.Context, string) (bool, error)) error {
	if id == "" {
		return nil
	}
	ok, err := exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", kind, err)
	}
	if !ok {
		return entity.Invalid("%s %q does not exist", kind, id)
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	switch {
	case price.LessThan(minPrice):
		return entity.Invalid("price must be at least %s", minPrice.StringFixed(2))
	case !price.Equal(price.Round(2)):
		return entity.Invalid("price must have at most two decimal places")
	case price.GreaterThanOrEqual(priceLimit):
		return entity.Invalid("price is too large")
	}
	return nil
}

func (s *CatalogService) evict(ctx context.Context, ids ...string) {
	if err := s.cache.Delete(ctx, ids...); err != nil {
		slog.Warn("Service: Product cache eviction failed", "product_ids", ids, "err", err)
	}
}

func (s *CatalogService) ListShops(ctx context.Context) ([]entity.Shop, error) {
	return s.shops.List(ctx)
}

func (s *CatalogService) GetShop(ctx context.Context, shopID string) (entity.Shop, error) {
	return s.shops.Get(ctx, shopID)
}

// ReplaceShop overwrites every shop field.
func (s *CatalogService) ReplaceShop(ctx context.Context, id entity.Identity, shopID string, in ShopInput) (entity.Shop, error) {
	return s.updateShop(ctx, id, shopID, in, true)
}

// PatchShop changes only the fields present in in.
func (s *CatalogService) PatchShop(ctx context.Context, id entity.Identity, shopID string, in ShopInput) (entity.Shop, error) {
	return s.updateShop(ctx, id, shopID, in, false)
}

func (s *CatalogService) updateShop(ctx context.Context, id entity.Identity, shopID string, in ShopInput, full bool) (entity.Shop, error) {
	shop, err := s.ownedShop(ctx, id, access.ActionUpdate, shopID)
	if err != nil {
		return entity.Shop{}, err
	}
	if full {
		if in.Name == nil || in.Slug == nil {
			return entity.Shop{}, entity.Invalid("name and slug are required")
		}
		shop = entity.Shop{ID: shop.ID, Status: entity.StatusActive}
	}

	if in.Name != nil {
		shop.Name = strings.TrimSpace(*in.Name)
		if shop.Name == "" {
			return entity.Shop{}, entity.Invalid("name must not be blank")
		}
	}
	if in.Slug != nil {
		if !slugPattern.MatchString(*in.Slug) {
			return entity.Shop{}, entity.Invalid("slug %q must be lowercase words joined by '-'", *in.Slug)
		}
		shop.Slug = *in.Slug
	}
	if in.Description != nil {
		shop.Description = *in.Description
	}
	if in.Status != nil {
		st := entity.Status(*in.Status)
		if !st.Valid() {
			return entity.Shop{}, fmt.Errorf("%w: shop status %q", entity.ErrInvalidStatus, *in.Status)
		}
		shop.Status = st
	}

	slog.Info("Service: Updating shop", "shop_id", shopID, "full", full)
	if err := s.shops.Update(ctx, &shop); err != nil {
		return entity.Shop{}, fmt.Errorf("failed to update shop: %w", err)
	}
	s.evictShop(ctx, shopID)
	return shop, nil
}

// DeleteShop removes the shop with its products and manager bindings.
func (s *CatalogService) DeleteShop(ctx context.Context, id entity.Identity, shopID string) error {
	if _, err := s.ownedShop(ctx, id, access.ActionDelete, shopID); err != nil {
		return err
	}
	s.evictShop(ctx, shopID)

	slog.Info("Service: Deleting shop", "shop_id", shopID)
	if err := s.shops.Delete(ctx, shopID); err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}
	return nil
}

func (s *CatalogService) ownedShop(ctx context.Context, id entity.Identity, action access.Action, shopID string) (entity.Shop, error) {
	if id.Anonymous() {
		return entity.Shop{}, fmt.Errorf("%w: %s shop", entity.ErrUnauthenticated, action)
	}
	shop, err := s.shops.Get(ctx, shopID)
	if err != nil {
		return entity.Shop{}, err
	}
	if err := s.authz.Require(ctx, id, action, access.Resource{Kind: access.KindShop, ShopID: shop.ID}); err != nil {
		return entity.Shop{}, err
	}
	return shop, nil
}

// evictShop drops cached views of the shop's products, which embed the shop name.
func (s *CatalogService) evictShop(ctx context.Context, shopID string) {
	products, err := s.products.List(ctx, repository.ProductFilter{ShopID: shopID})
	if err != nil {
		slog.Warn("Service: Listing shop products for eviction failed", "shop_id", shopID, "err", err)
		return
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	s.evict(ctx, ids...)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return s.taxonomy.ListCategories(ctx)
}

func (s *CatalogService) ListBrands(ctx context.Context) ([]entity.Brand, error) {
	return s.taxonomy.ListBrands(ctx)
}
