package orders

import (
	"context"
	"testing"
	"time"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract runs the behaviour every Store backend shares. newStore
// must hand back an empty store.
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	seed := func(t *testing.T, s Store, status Status, at time.Time, lines int) Order {
		t.Helper()
		o := Order{ID: uuid.NewString(), Status: status, CustomerName: "Ann", CreatedAt: at, UpdatedAt: at}
		for i := 0; i < lines; i++ {
			o.Lines = append(o.Lines, OrderLine{ProductID: uuid.NewString(), Qty: i + 1, UnitPrice: decimal.RequireFromString("2.50")})
		}
		o.Total = LinesTotal(o.Lines)
		require.NoError(t, s.Create(ctx, &o))
		return o
	}

	t.Run("create assigns line ids in order", func(t *testing.T) {
		s := newStore(t)
		o := seed(t, s, StatusCreated, t0, 3)
		assert.Positive(t, o.Lines[0].ID)
		assert.Less(t, o.Lines[0].ID, o.Lines[1].ID)
		assert.Less(t, o.Lines[1].ID, o.Lines[2].ID)

		got, err := s.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCreated, got.Status)
		assert.Equal(t, "Ann", got.CustomerName)
		assert.True(t, got.Total.Equal(decimal.RequireFromString("15")))
		assert.True(t, got.CreatedAt.Equal(t0))
		assert.Nil(t, got.PaidAt)
		require.Len(t, got.Lines, 3)
		for i, l := range got.Lines {
			assert.Equal(t, o.Lines[i].ID, l.ID)
			assert.Equal(t, o.Lines[i].ProductID, l.ProductID)
			assert.Equal(t, i+1, l.Qty)
			assert.True(t, l.UnitPrice.Equal(decimal.RequireFromString("2.50")))
		}

		dup := Order{ID: o.ID, Status: StatusCreated, CreatedAt: t0, UpdatedAt: t0}
		assert.ErrorIs(t, s.Create(ctx, &dup), apperr.ErrConflict)

		_, err = s.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = s.Get(ctx, "not-an-id")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("list pages newest first", func(t *testing.T) {
		s := newStore(t)
		old := seed(t, s, StatusPaid, t0, 1)
		mid := seed(t, s, StatusCreated, t0.Add(time.Minute), 2)
		newest := seed(t, s, StatusCreated, t0.Add(2*time.Minute), 3)

		ids := func(list []Summary) []string {
			out := make([]string, len(list))
			for i, o := range list {
				out[i] = o.ID
			}
			return out
		}

		all, err := s.List(ctx, ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{newest.ID, mid.ID, old.ID}, ids(all))
		assert.Equal(t, 3, all[0].ItemCount)
		assert.Equal(t, StatusPaid, all[2].Status)
		assert.True(t, all[0].Total.Equal(newest.Total))

		page, err := s.List(ctx, ListFilter{Skip: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{mid.ID}, ids(page))

		created, err := s.List(ctx, ListFilter{Status: StatusCreated, Skip: 1, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, []string{mid.ID}, ids(created))

		paid, err := s.List(ctx, ListFilter{Status: StatusPaid})
		require.NoError(t, err)
		assert.Equal(t, []string{old.ID}, ids(paid))

		empty, err := s.List(ctx, ListFilter{Skip: 10})
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("save keeps lines and total", func(t *testing.T) {
		s := newStore(t)
		o := seed(t, s, StatusCreated, t0, 1)

		o.Lines = nil
		o.Total = decimal.Zero
		require.NoError(t, o.Transition(StatusPaid, "paid", t0.Add(time.Hour)))
		require.NoError(t, s.Save(ctx, o))

		got, err := s.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, got.Status)
		require.NotNil(t, got.PaidAt)
		assert.True(t, got.PaidAt.Equal(t0.Add(time.Hour)))
		assert.Equal(t, "[2026-03-01T11:00:00Z] paid", got.Notes)
		assert.Len(t, got.Lines, 1)
		assert.True(t, got.Total.Equal(decimal.RequireFromString("2.50")))

		assert.ErrorIs(t, s.Save(ctx, Order{ID: uuid.NewString()}), apperr.ErrNotFound)
	})

	t.Run("delete takes the lines with it", func(t *testing.T) {
		s := newStore(t)
		o := seed(t, s, StatusCreated, t0, 2)
		keep := seed(t, s, StatusCreated, t0.Add(time.Minute), 1)

		require.NoError(t, s.Delete(ctx, o.ID))
		assert.ErrorIs(t, s.Delete(ctx, o.ID), apperr.ErrNotFound)
		_, err := s.Get(ctx, o.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		all, err := s.List(ctx, ListFilter{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, keep.ID, all[0].ID)
		assert.Equal(t, 1, all[0].ItemCount)
	})
}
