package http

import (
	"net/http"

	"github.com/egannguyen/go-kafka-marketplace/internal/service"
)

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), identityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), identityFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleListVendorOrders(w http.ResponseWriter, r *http.Request) {
	subs, err := h.orders.ListVendorOrders(r.Context(), identityFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// Shop orders only come into existence through checkout.
func (h *Handler) handleCreateVendorOrder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET")
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "vendor orders are created by checkout"})
}

func (h *Handler) handleGetVendorOrder(w http.ResponseWriter, r *http.Request) {
	so, err := h.orders.GetVendorOrder(r.Context(), identityFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, so)
}

func (h *Handler) handleUpdateVendorOrder(w http.ResponseWriter, r *http.Request) {
	var upd service.VendorOrderUpdate
	if err := decode(r, &upd); err != nil {
		writeError(w, r, err)
		return
	}
	so, err := h.orders.UpdateVendorOrder(r.Context(), identityFrom(r.Context()), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, so)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateVendorOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	so, err := h.orders.UpdateVendorOrderStatus(r.Context(), identityFrom(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, so)
}

func (h *Handler) handleCancelVendorOrder(w http.ResponseWriter, r *http.Request) {
	so, err := h.orders.CancelVendorOrder(r.Context(), identityFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, so)
}
