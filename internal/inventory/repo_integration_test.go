//go:build integration

package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/MUR0612/smart-inventory/internal/postgres/pgtest"
)

func TestPGStoreContract(t *testing.T) {
	pool := pgtest.Pool(t)
	testStoreContract(t, func(t *testing.T) Store {
		pgtest.Truncate(t, pool, "products")
		return &PGStore{DB: pool}
	})
}

func TestPGLedgerReservation(t *testing.T) {
	pool := pgtest.Pool(t)
	pgtest.Truncate(t, pool, "products")
	l := NewLedger(&PGStore{DB: pool}, nil, nil, zaptest.NewLogger(t))
	t.Cleanup(l.Close)
	ctx := context.Background()

	p, err := l.CreateProduct(ctx, NewProduct{SKU: "A", Name: "Widget", Price: decimal.RequireFromString("9.99"), Stock: 3, SafetyStock: 1})
	require.NoError(t, err)

	rec, err := l.Adjust(ctx, p.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Quantity)
	assert.True(t, rec.IsLowStock)

	_, err = l.Adjust(ctx, p.ID, -2)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	// the CHECK constraint backs the row lock
	_, err = pool.Exec(ctx, `UPDATE inventory SET stock = -1 WHERE product_id = $1`, p.ID)
	assert.Error(t, err)

	_, err = l.GetStock(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
