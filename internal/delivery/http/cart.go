package http

import (
	"net/http"

	"github.com/egannguyen/go-kafka-marketplace/internal/service"
)

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), identityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var in service.AddItemInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.carts.AddItem(r.Context(), identityFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

type removeItemRequest struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	var req removeItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.carts.RemoveItem(r.Context(), identityFrom(r.Context()), req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

type checkoutResponse struct {
	Message         string `json:"message"`
	OrderID         string `json:"order_id"`
	TotalAmount     string `json:"total_amount"`
	ShopOrdersCount int    `json:"shop_orders_count"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	res, err := h.checkout.Checkout(r.Context(), identityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkoutResponse{
		Message:         "Order placed successfully",
		OrderID:         res.OrderID,
		TotalAmount:     res.TotalAmount.StringFixed(2),
		ShopOrdersCount: len(res.ShopOrders),
	})
}
