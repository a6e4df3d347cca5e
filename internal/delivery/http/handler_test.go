package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/egannguyen/go-kafka-marketplace/internal/access"
	"github.com/egannguyen/go-kafka-marketplace/internal/delivery/http"
	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/messaging"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository/memory"
	"github.com/egannguyen/go-kafka-marketplace/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t     *testing.T
	srv   *httptest.Server
	repos repository.Repositories
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	repos := memory.New().Repositories()

	for _, s := range []entity.Shop{
		{ID: "s1", Name: "Shop One", Slug: "shop-one", Status: entity.StatusActive},
		{ID: "s2", Name: "Shop Two", Slug: "shop-two", Status: entity.StatusActive},
	} {
		require.NoError(t, repos.Shops.Create(ctx, &s))
	}
	require.NoError(t, repos.Managers.Create(ctx, &entity.Manager{UserID: "m1", ShopID: "s1"}))
	require.NoError(t, repos.Managers.Create(ctx, &entity.Manager{UserID: "m2", ShopID: "s2"}))
	for _, p := range []entity.Product{
		{ID: "x", ShopID: "s1", Name: "Product X", Price: decimal.RequireFromString("10.00"), Stock: 10, Status: entity.StatusActive},
		{ID: "y", ShopID: "s2", Name: "Product Y", Price: decimal.RequireFromString("5.00"), Stock: 10, Status: entity.StatusActive},
	} {
		require.NoError(t, repos.Products.Create(ctx, &p))
	}

	authz := access.NewAuthorizer(repos.Managers)
	pub := messaging.LogPublisher{}
	h := http.NewHandler(
		service.NewCatalogService(repos, authz, nil),
		service.NewCartService(repos.Carts, repos.Products),
		service.NewCheckoutService(repos.Checkout, pub),
		service.NewOrderService(repos.Orders, authz, pub),
	)
	srv := httptest.NewServer(http.NewRouter(h, http.NewMetrics()))
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, repos: repos}
}

// do sends a request as user (empty for anonymous) and decodes a JSON response into out.
func (s *testServer) do(method, path, user string, body any, out any) int {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := stdhttp.NewRequest(method, s.srv.URL+path, rd)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(http.IdentityHeader, user)
	}

	resp, err := s.srv.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != stdhttp.StatusNoContent {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type errorBody struct {
	Error string `json:"error"`
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, 200, s.do("POST", "/cart/add_item", "buyer", map[string]any{"product_id": "x", "quantity": 2}, nil))
	assert.Equal(t, 200, s.do("POST", "/cart/add_item", "buyer", map[string]any{"product_id": "y", "quantity": 3}, nil))

	var cart entity.Cart
	require.Equal(t, 200, s.do("GET", "/cart", "buyer", nil, &cart))
	assert.Equal(t, "35.00", cart.TotalPrice.StringFixed(2))

	var res struct {
		Message         string `json:"message"`
		OrderID         string `json:"order_id"`
		TotalAmount     string `json:"total_amount"`
		ShopOrdersCount int    `json:"shop_orders_count"`
	}
	require.Equal(t, 201, s.do("POST", "/cart/checkout", "buyer", nil, &res))
	assert.Equal(t, "35.00", res.TotalAmount)
	assert.Equal(t, 2, res.ShopOrdersCount)
	assert.NotEmpty(t, res.Message)

	var order entity.Order
	require.Equal(t, 200, s.do("GET", "/orders/"+res.OrderID, "buyer", nil, &order))
	require.Len(t, order.ShopOrders, 2)
	assert.Equal(t, "20.00", order.ShopOrders[0].ShopTotal.StringFixed(2))
	assert.Equal(t, "15.00", order.ShopOrders[1].ShopTotal.StringFixed(2))

	require.Equal(t, 200, s.do("GET", "/cart", "buyer", nil, &cart))
	assert.Empty(t, cart.Items)

	var e errorBody
	assert.Equal(t, 400, s.do("POST", "/cart/checkout", "buyer", nil, &e))
	assert.Contains(t, e.Error, "empty")

	assert.Equal(t, 404, s.do("GET", "/orders/"+res.OrderID, "someone-else", nil, &e))
	assert.Equal(t, 401, s.do("GET", "/orders", "", nil, &e))
}

func TestCartErrors(t *testing.T) {
	s := newTestServer(t)
	var e errorBody

	assert.Equal(t, 401, s.do("GET", "/cart", "", nil, &e))
	assert.Equal(t, 400, s.do("POST", "/cart/add_item", "buyer", map[string]any{"product_id": "x"}, &e))
	assert.Contains(t, e.Error, "quantity")
	assert.Equal(t, 400, s.do("POST", "/cart/add_item", "buyer", map[string]any{"quantity": 1}, &e))
	assert.Equal(t, 404, s.do("POST", "/cart/add_item", "buyer", map[string]any{"product_id": "nope", "quantity": 1}, &e))
	assert.Equal(t, 404, s.do("POST", "/cart/remove_item", "buyer", map[string]any{"product_id": "x"}, &e))
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	req, err := stdhttp.NewRequest("POST", s.srv.URL+"/cart/add_item", strings.NewReader("{not json"))
	require.NoError(t, err)
	req.Header.Set(http.IdentityHeader, "buyer")

	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}

func TestProducts(t *testing.T) {
	s := newTestServer(t)

	var products []entity.Product
	require.Equal(t, 200, s.do("GET", "/products", "", nil, &products))
	assert.Len(t, products, 2)
	require.Equal(t, 200, s.do("GET", "/products?shop=s2", "", nil, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "y", products[0].ID)

	var e errorBody
	assert.Equal(t, 400, s.do("GET", "/products?limit=abc", "", nil, &e))

	var p entity.Product
	require.Equal(t, 201, s.do("POST", "/products", "m1", map[string]any{"name": "Z", "price": "3.50", "shop": "s2"}, &p))
	assert.Equal(t, "s1", p.ShopID, "shop comes from the manager binding")

	assert.Equal(t, 401, s.do("POST", "/products", "", map[string]any{"name": "Z", "price": "3.50"}, &e))
	assert.Equal(t, 403, s.do("POST", "/products", "buyer", map[string]any{"name": "Z", "price": "3.50"}, &e))
	assert.Equal(t, 403, s.do("PATCH", "/products/y", "m1", map[string]any{"name": "mine"}, &e))
	assert.Equal(t, 403, s.do("DELETE", "/products/y", "m1", nil, &e))

	require.Equal(t, 200, s.do("PATCH", "/products/"+p.ID, "m1", map[string]any{"stock": 9}, &p))
	assert.Equal(t, 9, p.Stock)

	var img entity.ProductImage
	require.Equal(t, 201, s.do("POST", "/products/"+p.ID+"/images", "m1", map[string]any{"image": "media/z.jpg", "is_feature": true}, &img))
	require.Equal(t, 200, s.do("GET", "/products/"+p.ID, "", nil, &p))
	require.Len(t, p.Images, 1)
	assert.Equal(t, "media/z.jpg", p.Images[0].ImageURL)

	assert.Equal(t, 204, s.do("DELETE", "/products/"+p.ID, "m1", nil, nil))
	assert.Equal(t, 404, s.do("GET", "/products/"+p.ID, "", nil, &e))
}

func TestShopsAndTaxonomy(t *testing.T) {
	s := newTestServer(t)

	var shops []entity.Shop
	require.Equal(t, 200, s.do("GET", "/shops", "", nil, &shops))
	assert.Len(t, shops, 2)

	var shop entity.Shop
	require.Equal(t, 200, s.do("PATCH", "/shops/s1", "m1", map[string]any{"description": "New text"}, &shop))
	assert.Equal(t, "New text", shop.Description)

	var e errorBody
	assert.Equal(t, 403, s.do("PUT", "/shops/s2", "m1", map[string]any{"name": "x", "slug": "x"}, &e))
	assert.Equal(t, 409, s.do("PATCH", "/shops/s1", "m1", map[string]any{"slug": "shop-two"}, &e))

	var cats []entity.Category
	require.Equal(t, 200, s.do("GET", "/categories", "", nil, &cats))
	assert.Empty(t, cats)
	var brands []entity.Brand
	require.Equal(t, 200, s.do("GET", "/brands", "", nil, &brands))
	assert.Empty(t, brands)
}

func TestVendorOrders(t *testing.T) {
	s := newTestServer(t)
	s.do("POST", "/cart/add_item", "buyer", map[string]any{"product_id": "x", "quantity": 2}, nil)
	s.do("POST", "/cart/add_item", "buyer", map[string]any{"product_id": "y", "quantity": 3}, nil)
	var res struct {
		OrderID string `json:"order_id"`
	}
	require.Equal(t, 201, s.do("POST", "/cart/checkout", "buyer", nil, &res))

	var subs []entity.ShopOrder
	require.Equal(t, 200, s.do("GET", "/vendor-orders", "m1", nil, &subs))
	require.Len(t, subs, 1)
	mine := subs[0]
	require.Equal(t, 200, s.do("GET", "/vendor-orders", "m2", nil, &subs))
	require.Len(t, subs, 1)
	theirs := subs[0]

	var e errorBody
	assert.Equal(t, 403, s.do("GET", "/vendor-orders", "buyer", nil, &e))
	assert.Equal(t, 403, s.do("GET", "/vendor-orders/"+theirs.ID, "m1", nil, &e))
	assert.Equal(t, 403, s.do("POST", "/vendor-orders/"+theirs.ID+"/update_status", "m1", map[string]string{"status": "shipped"}, &e))
	assert.Equal(t, 404, s.do("GET", "/vendor-orders/unknown", "m1", nil, &e))
	assert.Equal(t, 405, s.do("POST", "/vendor-orders", "m1", map[string]string{}, &e))

	assert.Equal(t, 400, s.do("POST", "/vendor-orders/"+mine.ID+"/update_status", "m1", map[string]string{"status": "archived"}, &e))
	assert.Contains(t, e.Error, "invalid status")

	var so entity.ShopOrder
	require.Equal(t, 200, s.do("GET", "/vendor-orders/"+mine.ID, "m1", nil, &so))
	assert.Equal(t, entity.OrderStatusPending, so.Status)

	require.Equal(t, 200, s.do("POST", "/vendor-orders/"+mine.ID+"/update_status", "m1", map[string]string{"status": "shipped"}, &so))
	assert.Equal(t, entity.OrderStatusShipped, so.Status)

	require.Equal(t, 200, s.do("PATCH", "/vendor-orders/"+mine.ID, "m1", map[string]any{
		"delivery_info": map[string]any{"tracking_number": "TRK-9", "carrier": "DHL", "shipping_date": "2024-05-01T09:00:00Z"},
	}, &so))
	require.NotNil(t, so.Delivery)
	assert.Equal(t, "TRK-9", so.Delivery.TrackingNumber)
	assert.Equal(t, 409, s.do("PUT", "/vendor-orders/"+theirs.ID, "m2", map[string]any{
		"delivery_info": map[string]any{"tracking_number": "TRK-9"},
	}, &e))

	require.Equal(t, 200, s.do("DELETE", "/vendor-orders/"+mine.ID, "m1", nil, &so))
	assert.Equal(t, entity.OrderStatusCancelled, so.Status)

	var order entity.Order
	require.Equal(t, 200, s.do("GET", "/orders/"+res.OrderID, "buyer", nil, &order))
	assert.Equal(t, entity.OrderStatusCancelled, order.ShopOrders[0].Status)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	var health map[string]string
	require.Equal(t, 200, s.do("GET", "/healthz", "", nil, &health))
	assert.Equal(t, "ok", health["status"])

	resp, err := s.srv.Client().Get(s.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), `marketplace_http_requests_total{handler="GET /healthz",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req, err := stdhttp.NewRequest("OPTIONS", s.srv.URL+"/products", nil)
	require.NoError(t, err)

	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), http.IdentityHeader)
}
