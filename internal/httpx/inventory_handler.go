package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/MUR0612/smart-inventory/internal/inventory"
)

type InventoryHandler struct {
	Ledger *inventory.Ledger
	Log    *zap.Logger
}

type adjustReq struct {
	Adjustment *int `json:"adjustment"`
}

func (h *InventoryHandler) Register(r chi.Router) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Post("/products", h.createProduct)
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)

		r.Get("/stock", h.listStock)
		r.Get("/stock/{id}", h.getStock)
		r.Post("/stock/{id}/adjust", h.adjustStock)
		r.Post("/stock/{id}/set", h.setStock)
		r.Get("/low-stock", h.lowStock)
	})
}

func (h *InventoryHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req inventory.NewProduct
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	p, err := h.Ledger.CreateProduct(r.Context(), req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *InventoryHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Ledger.ListProducts(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *InventoryHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Ledger.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *InventoryHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req inventory.ProductUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	p, err := h.Ledger.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *InventoryHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Ledger.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted", "id": id})
}

func (h *InventoryHandler) listStock(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Ledger.ListStock(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *InventoryHandler) getStock(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Ledger.GetStock(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *InventoryHandler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if req.Adjustment == nil {
		writeError(w, h.Log, apperr.Validation("adjustment is required"))
		return
	}
	rec, err := h.Ledger.Adjust(r.Context(), chi.URLParam(r, "id"), *req.Adjustment)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *InventoryHandler) setStock(w http.ResponseWriter, r *http.Request) {
	qty, err := strconv.Atoi(r.URL.Query().Get("stock"))
	if err != nil {
		writeError(w, h.Log, apperr.Validation("stock query parameter must be an integer"))
		return
	}
	rec, err := h.Ledger.SetAbsolute(r.Context(), chi.URLParam(r, "id"), qty)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *InventoryHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Ledger.LowStock(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
