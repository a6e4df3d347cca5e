package repository

import (
	"context"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/shopspring/decimal"
)

// ShopRepository handles persistence for Shops.
type ShopRepository interface {
	List(ctx context.Context) ([]entity.Shop, error)
	Get(ctx context.Context, id string) (entity.Shop, error)
	Create(ctx context.Context, shop *entity.Shop) error
	Update(ctx context.Context, shop *entity.Shop) error
	// Delete removes the shop together with its products and manager bindings.
	Delete(ctx context.Context, id string) error
}

// ManagerRepository handles manager-to-shop bindings.
type ManagerRepository interface {
	// FindByUser reports the binding of userID; ok is false when the user manages no shop.
	FindByUser(ctx context.Context, userID string) (m entity.Manager, ok bool, err error)
	Create(ctx context.Context, m *entity.Manager) error
}

// TaxonomyRepository handles categories and brands.
type TaxonomyRepository interface {
	ListCategories(ctx context.Context) ([]entity.Category, error)
	ListBrands(ctx context.Context) ([]entity.Brand, error)
	CategoryExists(ctx context.Context, id string) (bool, error)
	BrandExists(ctx context.Context, id string) (bool, error)
	CreateCategory(ctx context.Context, c *entity.Category) error
	CreateBrand(ctx context.Context, b *entity.Brand) error
}

// ProductFilter narrows product listings. Zero values match everything.
type ProductFilter struct {
	ShopID     string
	CategoryID string
	BrandID    string
	Query      string
	Limit      int
	Offset     int
}

// ProductRepository handles persistence for Products and their images.
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]entity.Product, error)
	Get(ctx context.Context, id string) (entity.Product, error)
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	// Delete fails with entity.ErrConflict while order lines reference the product.
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, img *entity.ProductImage) error
}

// CartRepository handles the per-user cart aggregate.
type CartRepository interface {
	// GetOrCreate returns the user's cart with its items priced at the live product price.
	GetOrCreate(ctx context.Context, userID string) (entity.Cart, error)
	// AddItem inserts the product line or increases its quantity.
	AddItem(ctx context.Context, cartID, productID string, quantity int) error
	// RemoveItem fails with entity.ErrNotFound when the product is not in the cart.
	RemoveItem(ctx context.Context, cartID, productID string) error
}

// OrderRepository serves the order query layer and shop order fulfilment.
type OrderRepository interface {
	// ListByUser returns the user's orders newest first, expanded with shop orders and items.
	ListByUser(ctx context.Context, userID string) ([]entity.Order, error)
	GetByUser(ctx context.Context, userID, orderID string) (entity.Order, error)
	// ListShopOrders returns the shop's sub-orders newest first with their items.
	ListShopOrders(ctx context.Context, shopID string) ([]entity.ShopOrder, error)
	GetShopOrder(ctx context.Context, id string) (entity.ShopOrder, error)
	// UpdateShopOrder sets the status when status is non-nil and creates or replaces the
	// bound delivery info when d is non-nil, both in one write.
	UpdateShopOrder(ctx context.Context, id string, status *entity.OrderStatus, d *entity.DeliveryInfo) error
}

// CheckoutTx is the set of operations the checkout engine performs inside one
// transaction. Nothing written through it is visible before the transaction commits.
type CheckoutTx interface {
	// CartLines returns the user's cart and its lines in insertion order, locked for
	// the rest of the transaction. A missing cart yields no lines.
	CartLines(ctx context.Context, userID string) (cartID string, lines []entity.CheckoutLine, err error)
	CreateOrder(ctx context.Context, o *entity.Order) error
	CreateShopOrder(ctx context.Context, so *entity.ShopOrder) error
	CreateOrderDetail(ctx context.Context, d *entity.OrderDetail) error
	SetShopOrderTotal(ctx context.Context, shopOrderID string, total decimal.Decimal) error
	SetOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error
	// ReserveStock decrements stock when enough is available and reports whether it did.
	ReserveStock(ctx context.Context, productID string, quantity int) (bool, error)
	ClearCart(ctx context.Context, cartID string) error
}

// Transactor runs fn inside a single serializable transaction. When fn returns an
// error every write made through tx is rolled back.
type Transactor interface {
	WithinCheckout(ctx context.Context, fn func(ctx context.Context, tx CheckoutTx) error) error
}

// Repositories bundles one storage backend.
type Repositories struct {
	Shops    ShopRepository
	Managers ManagerRepository
	Taxonomy TaxonomyRepository
	Products ProductRepository
	Carts    CartRepository
	Orders   OrderRepository
	Checkout Transactor
}
