package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/MUR0612/smart-inventory/internal/orders"
	"github.com/MUR0612/smart-inventory/internal/saga"
)

type OrdersHandler struct {
	Saga *saga.Orchestrator
	Log  *zap.Logger
}

type statusReq struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}", h.updateOrder)
		r.Patch("/{id}/status", h.updateStatus)
		r.Get("/{id}/workflow", h.workflow)
		r.Delete("/{id}", h.cancelOrder)
		r.Delete("/{id}/delete", h.deleteOrder)
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req saga.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	o, err := h.Saga.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", key)
	}
	return n, nil
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	var f orders.ListFilter
	var err error
	if f.Skip, err = queryInt(r, "skip"); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if s := r.URL.Query().Get("status"); s != "" {
		if f.Status, err = orders.ParseStatus(s); err != nil {
			writeError(w, h.Log, apperr.Validation("%v", err))
			return
		}
	}
	list, err := h.Saga.ListOrders(r.Context(), f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	v, err := h.Saga.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *OrdersHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var d orders.Details
	if err := decodeJSON(r, &d); err != nil {
		writeError(w, h.Log, err)
		return
	}
	o, err := h.Saga.UpdateDetails(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	target, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeError(w, h.Log, apperr.Validation("%v", err))
		return
	}
	o, err := h.Saga.UpdateStatus(r.Context(), chi.URLParam(r, "id"), target, req.Notes)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) workflow(w http.ResponseWriter, r *http.Request) {
	wf, err := h.Saga.Workflow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Saga.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Saga.DeleteOrder(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted", "id": id})
}
