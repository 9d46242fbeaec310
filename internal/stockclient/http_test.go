package stockclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/MUR0612/smart-inventory/internal/httpx"
	"github.com/MUR0612/smart-inventory/internal/inventory"
	"github.com/MUR0612/smart-inventory/internal/stockclient"
)

func inventoryServer(t *testing.T) (*stockclient.Client, *inventory.Ledger) {
	t.Helper()
	log := zaptest.NewLogger(t)
	ledger := inventory.NewLedger(inventory.NewMemoryStore(), nil, nil, log)
	t.Cleanup(ledger.Close)
	r := httpx.NewRouter(log)
	(&httpx.InventoryHandler{Ledger: ledger, Log: log}).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return stockclient.New(srv.URL+"/", time.Second), ledger
}

func TestClientAgainstInventoryAPI(t *testing.T) {
	c, ledger := inventoryServer(t)
	ctx := context.Background()
	p, err := ledger.CreateProduct(ctx, inventory.NewProduct{
		SKU: "A", Name: "Widget", Price: decimal.RequireFromString("10.00"), Stock: 5, SafetyStock: 2,
	})
	require.NoError(t, err)

	info, err := c.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", info.Name)
	assert.Equal(t, "A", info.SKU)
	assert.True(t, info.Price.Equal(decimal.NewFromInt(10)))

	lvl, err := c.Stock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, lvl.Quantity)
	assert.Equal(t, 2, lvl.SafetyStock)

	n, err := c.Adjust(ctx, p.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = c.Adjust(ctx, p.ID, -3)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	var detail *apperr.InsufficientStockError
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, 2, detail.Available)
	assert.Equal(t, 3, detail.Requested)
	assert.Equal(t, p.ID, detail.ProductID)

	_, err = c.Product(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = c.Adjust(ctx, "missing", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClientServerErrorsAreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "db down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := stockclient.New(srv.URL, time.Second).Stock(context.Background(), "p1")
	require.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "db down")
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := stockclient.New(srv.URL, 50*time.Millisecond).Adjust(context.Background(), "p1", -1)
	require.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := stockclient.New(url, time.Second).Product(context.Background(), "p1")
	assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
}

func TestLocalAdapter(t *testing.T) {
	ledger := inventory.NewLedger(inventory.NewMemoryStore(), nil, nil, zaptest.NewLogger(t))
	t.Cleanup(ledger.Close)
	ctx := context.Background()
	p, err := ledger.CreateProduct(ctx, inventory.NewProduct{SKU: "A", Name: "Widget", Price: decimal.NewFromInt(3), Stock: 1})
	require.NoError(t, err)

	l := &stockclient.Local{Ledger: ledger}
	info, err := l.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", info.Name)

	_, err = l.Adjust(ctx, p.ID, -2)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	n, err := l.Adjust(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	lvl, err := l.Stock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, lvl.Quantity)
}
