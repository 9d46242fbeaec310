package orders

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newOrder() *Order {
	return &Order{
		ID:        "o-1",
		Status:    StatusCreated,
		Total:     decimal.NewFromInt(30),
		CreatedAt: t0,
		UpdatedAt: t0,
		Lines:     []OrderLine{{ProductID: "p1", Qty: 3, UnitPrice: decimal.NewFromInt(10)}},
	}
}

func TestTransitionTable(t *testing.T) {
	all := []Status{StatusCreated, StatusPaid, StatusShipped, StatusCancelled, StatusRefunded}
	legal := map[[2]Status]bool{
		{StatusCreated, StatusPaid}:      true,
		{StatusCreated, StatusCancelled}: true,
		{StatusPaid, StatusShipped}:      true,
		{StatusPaid, StatusRefunded}:     true,
		{StatusShipped, StatusRefunded}:  true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusRefunded.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.False(t, CanTransition(Status(0), StatusCreated))
}

func TestIllegalTransitionListsAllowed(t *testing.T) {
	o := newOrder()
	err := o.Transition(StatusShipped, "skip payment", t0.Add(time.Hour))

	require.ErrorIs(t, err, apperr.ErrIllegalTransition)
	var ite *IllegalTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, []Status{StatusPaid, StatusCancelled}, ite.Allowed)
	assert.Contains(t, err.Error(), "[PAID, CANCELLED]")

	assert.Equal(t, StatusCreated, o.Status)
	assert.Empty(t, o.Notes)
	assert.Equal(t, t0, o.UpdatedAt)
}

func TestTransitionStampsTimestampsAndNotes(t *testing.T) {
	o := newOrder()
	paid := t0.Add(time.Hour)
	shipped := t0.Add(2 * time.Hour)

	require.NoError(t, o.Transition(StatusPaid, "card ok", paid))
	require.NoError(t, o.Transition(StatusShipped, "", shipped))

	assert.Equal(t, StatusShipped, o.Status)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, paid, *o.PaidAt)
	require.NotNil(t, o.ShippedAt)
	assert.Equal(t, shipped, *o.ShippedAt)
	assert.Equal(t, shipped, o.UpdatedAt)
	assert.Equal(t, "[2026-03-01T11:00:00Z] card ok", o.Notes)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(30)), "total is frozen")
	assert.Len(t, o.Lines, 1)

	require.NoError(t, o.Transition(StatusRefunded, "returned", shipped.Add(time.Hour)))
	assert.Equal(t, "[2026-03-01T11:00:00Z] card ok\n[2026-03-01T13:00:00Z] returned", o.Notes)

	err := o.Transition(StatusPaid, "", shipped)
	var ite *IllegalTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Empty(t, ite.Allowed)
}

func TestDescribe(t *testing.T) {
	o := newOrder()
	w := o.Describe()
	assert.Equal(t, StatusCreated, w.CurrentStatus)
	assert.Equal(t, []Status{StatusPaid, StatusCancelled}, w.ValidTransitions)
	assert.Nil(t, w.Timeline.PaidAt)

	w.ValidTransitions[0] = StatusRefunded
	assert.Equal(t, []Status{StatusPaid, StatusCancelled}, StatusCreated.AllowedNext(), "projection must not alias the table")

	b, err := json.Marshal(o.Describe())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"current_status":"CREATED"`)
	assert.Contains(t, string(b), `"valid_transitions":["PAID","CANCELLED"]`)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" paid ")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, s)

	_, err = ParseStatus("LOST")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)

	var got struct{ Status Status }
	require.NoError(t, json.Unmarshal([]byte(`{"Status":"REFUNDED"}`), &got))
	assert.Equal(t, StatusRefunded, got.Status)
	assert.Error(t, json.Unmarshal([]byte(`{"Status":"NOPE"}`), &got))
}

func TestLinesTotal(t *testing.T) {
	lines := []OrderLine{
		{Qty: 3, UnitPrice: decimal.RequireFromString("10.00")},
		{Qty: 2, UnitPrice: decimal.RequireFromString("0.15")},
	}
	assert.True(t, LinesTotal(lines).Equal(decimal.RequireFromString("30.30")))
}

func TestCancel(t *testing.T) {
	o := newOrder()
	require.NoError(t, o.Transition(StatusPaid, "", t0.Add(time.Minute)))
	assert.False(t, CanTransition(StatusPaid, StatusCancelled), "not a plain status move")

	require.NoError(t, o.Cancel("Order cancelled by user", t0.Add(2*time.Minute)))
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, "[2026-03-01T10:02:00Z] Order cancelled by user", o.Notes)
	assert.NotNil(t, o.PaidAt, "lifecycle timestamps are kept")

	err := o.Cancel("again", t0.Add(3*time.Minute))
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)

	shipped := newOrder()
	shipped.Status = StatusShipped
	err = shipped.Cancel("", t0)
	var ite *IllegalTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, []Status{StatusRefunded}, ite.Allowed)
	assert.Equal(t, StatusShipped, shipped.Status)
}
