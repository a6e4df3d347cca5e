package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/service"
)

// Handler handles HTTP requests for the application.
type Handler struct {
	catalog  *service.CatalogService
	carts    *service.CartService
	checkout *service.CheckoutService
	orders   *service.OrderService
}

func NewHandler(catalog *service.CatalogService, carts *service.CartService, checkout *service.CheckoutService, orders *service.OrderService) *Handler {
	return &Handler{
		catalog:  catalog,
		carts:    carts,
		checkout: checkout,
		orders:   orders,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /products", h.handleListProducts)
	mux.HandleFunc("POST /products", h.handleCreateProduct)
	mux.HandleFunc("GET /products/{id}", h.handleGetProduct)
	mux.HandleFunc("PUT /products/{id}", h.handleReplaceProduct)
	mux.HandleFunc("PATCH /products/{id}", h.handlePatchProduct)
	mux.HandleFunc("DELETE /products/{id}", h.handleDeleteProduct)
	mux.HandleFunc("POST /products/{id}/images", h.handleAddProductImage)

	mux.HandleFunc("GET /shops", h.handleListShops)
	mux.HandleFunc("GET /shops/{id}", h.handleGetShop)
	mux.HandleFunc("PUT /shops/{id}", h.handleReplaceShop)
	mux.HandleFunc("PATCH /shops/{id}", h.handlePatchShop)
	mux.HandleFunc("DELETE /shops/{id}", h.handleDeleteShop)

	mux.HandleFunc("GET /categories", h.handleListCategories)
	mux.HandleFunc("GET /brands", h.handleListBrands)

	mux.HandleFunc("GET /cart", h.handleGetCart)
	mux.HandleFunc("POST /cart/add_item", h.handleAddCartItem)
	mux.HandleFunc("POST /cart/remove_item", h.handleRemoveCartItem)
	mux.HandleFunc("POST /cart/checkout", h.handleCheckout)

	mux.HandleFunc("GET /orders", h.handleListOrders)
	mux.HandleFunc("GET /orders/{id}", h.handleGetOrder)

	mux.HandleFunc("GET /vendor-orders", h.handleListVendorOrders)
	mux.HandleFunc("POST /vendor-orders", h.handleCreateVendorOrder)
	mux.HandleFunc("GET /vendor-orders/{id}", h.handleGetVendorOrder)
	mux.HandleFunc("PUT /vendor-orders/{id}", h.handleUpdateVendorOrder)
	mux.HandleFunc("PATCH /vendor-orders/{id}", h.handleUpdateVendorOrder)
	mux.HandleFunc("DELETE /vendor-orders/{id}", h.handleCancelVendorOrder)
	mux.HandleFunc("POST /vendor-orders/{id}/update_status", h.handleUpdateVendorOrderStatus)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return entity.Invalid("invalid request body: %v", err)
	}
	return nil
}
