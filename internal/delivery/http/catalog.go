package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/service"
)

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.ProductQuery{
		ShopID:     q.Get("shop"),
		CategoryID: q.Get("category"),
		BrandID:    q.Get("brand"),
		Search:     q.Get("q"),
	}
	var err error
	if query.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, r, entity.Invalid("limit must be an integer"))
		return
	}
	if query.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, r, entity.Invalid("offset must be an integer"))
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.catalog.CreateProduct(r.Context(), identityFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleReplaceProduct(w http.ResponseWriter, r *http.Request) {
	h.updateProduct(w, r, h.catalog.ReplaceProduct)
}

func (h *Handler) handlePatchProduct(w http.ResponseWriter, r *http.Request) {
	h.updateProduct(w, r, h.catalog.PatchProduct)
}

type productUpdater = func(ctx context.Context, id entity.Identity, productID string, in service.ProductInput) (entity.Product, error)

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request, update productUpdater) {
	var in service.ProductInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := update(r.Context(), identityFrom(r.Context()), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), identityFrom(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddProductImage(w http.ResponseWriter, r *http.Request) {
	var in service.ImageInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	img, err := h.catalog.AddProductImage(r.Context(), identityFrom(r.Context()), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (h *Handler) handleListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.catalog.ListShops(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shops)
}

func (h *Handler) handleGetShop(w http.ResponseWriter, r *http.Request) {
	shop, err := h.catalog.GetShop(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shop)
}

func (h *Handler) handleReplaceShop(w http.ResponseWriter, r *http.Request) {
	h.updateShop(w, r, h.catalog.ReplaceShop)
}

func (h *Handler) handlePatchShop(w http.ResponseWriter, r *http.Request) {
	h.updateShop(w, r, h.catalog.PatchShop)
}

type shopUpdater = func(ctx context.Context, id entity.Identity, shopID string, in service.ShopInput) (entity.Shop, error)

func (h *Handler) updateShop(w http.ResponseWriter, r *http.Request, update shopUpdater) {
	var in service.ShopInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	shop, err := update(r.Context(), identityFrom(r.Context()), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shop)
}

func (h *Handler) handleDeleteShop(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteShop(r.Context(), identityFrom(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) handleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.ListBrands(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}
