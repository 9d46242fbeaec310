package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/MUR0612/smart-inventory/internal/inventory"
	"github.com/MUR0612/smart-inventory/internal/orders"
	"github.com/MUR0612/smart-inventory/internal/saga"
	"github.com/MUR0612/smart-inventory/internal/stockclient"
)

type env struct {
	t      *testing.T
	router *chi.Mux
	ledger *inventory.Ledger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zaptest.NewLogger(t)
	ledger := inventory.NewLedger(inventory.NewMemoryStore(), nil, nil, log)
	t.Cleanup(ledger.Close)
	orch := saga.New(&stockclient.Local{Ledger: ledger}, orders.NewMemoryStore(), log)

	r := NewRouter(log)
	(&InventoryHandler{Ledger: ledger, Log: log}).Register(r)
	(&OrdersHandler{Saga: orch, Log: log}).Register(r)
	return &env{t: t, router: r, ledger: ledger}
}

func (e *env) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errResp struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (e *env) product(sku string, price string, stock, safety int) inventory.Product {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/inventory/products", map[string]any{
		"sku": sku, "name": "Item " + sku, "price": price, "stock": stock, "safety_stock": safety,
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[inventory.Product](e.t, rec)
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestInventoryEndpoints(t *testing.T) {
	e := newEnv(t)
	p := e.product("A-1", "10.00", 5, 2)

	rec := e.do(http.MethodPost, "/api/inventory/products", map[string]any{"sku": "A-1", "name": "dup"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodPost, "/api/inventory/stock/"+p.ID+"/adjust", map[string]int{"adjustment": -3})
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[inventory.StockRecord](t, rec)
	assert.Equal(t, 2, st.Quantity)
	assert.True(t, st.IsLowStock)

	rec = e.do(http.MethodPost, "/api/inventory/stock/"+p.ID+"/adjust", map[string]int{"adjustment": -3})
	require.Equal(t, http.StatusConflict, rec.Code)
	er := decode[errResp](t, rec)
	assert.Equal(t, "insufficient_stock", er.Error.Code)
	assert.EqualValues(t, 2, er.Error.Details["available"])

	rec = e.do(http.MethodPost, "/api/inventory/stock/"+p.ID+"/adjust", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/inventory/stock/"+p.ID+"/set?stock=9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, decode[inventory.StockRecord](t, rec).Quantity)
	rec = e.do(http.MethodPost, "/api/inventory/stock/"+p.ID+"/set?stock=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(http.MethodPost, "/api/inventory/stock/"+p.ID+"/set?stock=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, "/api/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]inventory.StockRecord](t, rec))

	rec = e.do(http.MethodPut, "/api/inventory/products/"+p.ID, map[string]any{"safety_stock": 20})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(http.MethodGet, "/api/inventory/stock", nil)
	require.Len(t, decode[[]inventory.StockRecord](t, rec), 1)
	rec = e.do(http.MethodGet, "/api/inventory/low-stock", nil)
	assert.Len(t, decode[[]inventory.StockRecord](t, rec), 1)

	rec = e.do(http.MethodDelete, "/api/inventory/products/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(http.MethodGet, "/api/inventory/stock/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errResp](t, rec).Error.Code)
}

func TestOrderScenario(t *testing.T) {
	e := newEnv(t)
	a := e.product("A", "10.00", 5, 2)

	rec := e.do(http.MethodPost, "/api/orders", map[string]any{
		"items":          []map[string]any{{"product_id": a.ID, "qty": 3}},
		"customer_name":  "Ann",
		"customer_email": "ann@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Total  string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "CREATED", created.Status)
	assert.Equal(t, "30", created.Total)

	st, err := e.ledger.GetStock(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Quantity)

	rec = e.do(http.MethodGet, "/api/orders/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Items []struct {
			ProductName string `json:"product_name"`
			ProductSKU  string `json:"product_sku"`
			Qty         int    `json:"qty"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Item A", view.Items[0].ProductName)
	assert.Equal(t, "A", view.Items[0].ProductSKU)

	rec = e.do(http.MethodPatch, "/api/orders/"+created.ID+"/status", map[string]string{"status": "SHIPPED"})
	require.Equal(t, http.StatusConflict, rec.Code)
	er := decode[errResp](t, rec)
	assert.Equal(t, "illegal_transition", er.Error.Code)
	assert.Equal(t, []any{"PAID", "CANCELLED"}, er.Error.Details["allowed"])

	rec = e.do(http.MethodPatch, "/api/orders/"+created.ID+"/status", map[string]string{"status": "paid", "notes": "card"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodGet, "/api/orders/"+created.ID+"/workflow", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	wf := decode[orders.Workflow](t, rec)
	assert.Equal(t, orders.StatusPaid, wf.CurrentStatus)
	assert.NotNil(t, wf.Timeline.PaidAt)

	rec = e.do(http.MethodPut, "/api/orders/"+created.ID, map[string]string{"shipping_address": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodDelete, "/api/orders/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st, err = e.ledger.GetStock(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Quantity)

	rec = e.do(http.MethodGet, "/api/orders?status=CANCELLED", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]orders.Summary](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].ItemCount)

	rec = e.do(http.MethodDelete, "/api/orders/"+created.ID+"/delete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(http.MethodGet, "/api/orders/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrderRejections(t *testing.T) {
	e := newEnv(t)
	a := e.product("A", "1", 1, 0)

	rec := e.do(http.MethodPost, "/api/orders", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/orders", map[string]any{
		"items": []map[string]any{{"product_id": a.ID, "qty": 2}},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "insufficient_stock", decode[errResp](t, rec).Error.Code)

	rec = e.do(http.MethodPost, "/api/orders", map[string]any{
		"items": []map[string]any{{"product_id": "ghost", "qty": 1}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rec = e.do(http.MethodGet, "/api/orders?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(http.MethodGet, "/api/orders?status=LOST", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
