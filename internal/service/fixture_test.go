package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/egannguyen/go-kafka-marketplace/internal/access"
	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository/memory"
	"github.com/egannguyen/go-kafka-marketplace/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	alice    = entity.Identity{UserID: "alice"} // manages shop-a
	bob      = entity.Identity{UserID: "bob"}   // manages shop-b
	customer = entity.Identity{UserID: "carol"}
	anon     = entity.Identity{}
)

type published struct {
	topic string
	key   string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.topic
	}
	return out
}

type fixture struct {
	repos     repository.Repositories
	authz     *access.Authorizer
	publisher *recordingPublisher
	catalog   *service.CatalogService
	carts     *service.CartService
	checkout  *service.CheckoutService
	orders    *service.OrderService
}

func newFixture(t *testing.T, opts ...service.CheckoutOption) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.New().Repositories()

	for _, s := range []entity.Shop{
		{ID: "shop-a", Name: "Shop A", Slug: "shop-a", Status: entity.StatusActive},
		{ID: "shop-b", Name: "Shop B", Slug: "shop-b", Status: entity.StatusActive},
	} {
		require.NoError(t, repos.Shops.Create(ctx, &s))
	}
	require.NoError(t, repos.Managers.Create(ctx, &entity.Manager{UserID: alice.UserID, ShopID: "shop-a"}))
	require.NoError(t, repos.Managers.Create(ctx, &entity.Manager{UserID: bob.UserID, ShopID: "shop-b"}))
	require.NoError(t, repos.Taxonomy.CreateCategory(ctx, &entity.Category{ID: "cat-1", Name: "Tools"}))
	require.NoError(t, repos.Taxonomy.CreateBrand(ctx, &entity.Brand{ID: "brand-1", Name: "Acme"}))

	authz := access.NewAuthorizer(repos.Managers)
	pub := &recordingPublisher{}
	return &fixture{
		repos:     repos,
		authz:     authz,
		publisher: pub,
		catalog:   service.NewCatalogService(repos, authz, nil),
		carts:     service.NewCartService(repos.Carts, repos.Products),
		checkout:  service.NewCheckoutService(repos.Checkout, pub, opts...),
		orders:    service.NewOrderService(repos.Orders, authz, pub),
	}
}

func (f *fixture) product(t *testing.T, id, shopID, price string, stock int) entity.Product {
	t.Helper()
	p := entity.Product{
		ID:     id,
		ShopID: shopID,
		Name:   "Product " + id,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Status: entity.StatusActive,
	}
	require.NoError(t, f.repos.Products.Create(context.Background(), &p))
	return p
}

func (f *fixture) addToCart(t *testing.T, id entity.Identity, productID string, qty int) entity.Cart {
	t.Helper()
	cart, err := f.carts.AddItem(context.Background(), id, service.AddItemInput{ProductID: productID, Quantity: &qty})
	require.NoError(t, err)
	return cart
}

func ptr[T any](v T) *T { return &v }
