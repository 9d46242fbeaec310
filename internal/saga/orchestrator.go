// Package saga coordinates order creation and cancellation across the stock
// ledger and the local order store. Stock is reserved with plain negative
// adjustments, so every failure after a reservation is undone by an explicit
// compensating release.
package saga

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/MUR0612/smart-inventory/internal/orders"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000

	cancelNote = "Order cancelled by user"
)

type ProductInfo struct {
	ID    string
	SKU   string
	Name  string
	Price decimal.Decimal
}

type StockLevel struct {
	ProductID   string
	Quantity    int
	SafetyStock int
}

// StockLedger is the stock-owning service as seen from the order side.
// Adjust returns the new quantity.
type StockLedger interface {
	Product(ctx context.Context, productID string) (ProductInfo, error)
	Stock(ctx context.Context, productID string) (StockLevel, error)
	Adjust(ctx context.Context, productID string, delta int) (int, error)
}

type LineRequest struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type CreateRequest struct {
	Items           []LineRequest `json:"items"`
	CustomerName    string        `json:"customer_name"`
	CustomerEmail   string        `json:"customer_email"`
	ShippingAddress string        `json:"shipping_address"`
	Notes           string        `json:"notes"`
}

type Orchestrator struct {
	ledger StockLedger
	store  orders.Store
	events *orders.Events
	log    *zap.Logger
	now    func() time.Time
}

type Option func(*Orchestrator)

func WithEvents(ev *orders.Events) Option { return func(o *Orchestrator) { o.events = ev } }

func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

func New(ledger StockLedger, store orders.Store, log *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		ledger: ledger,
		store:  store,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func validateCreate(req CreateRequest) error {
	if len(req.Items) == 0 {
		return apperr.Validation("order must contain at least one item")
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return apperr.Validation("item %d: product_id is required", i)
		}
		if it.Qty <= 0 {
			return apperr.Validation("item %d: qty must be > 0", i)
		}
	}
	return validateEmail(req.CustomerEmail)
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Validation("invalid customer_email %q", email)
	}
	return nil
}

// CreateOrder runs check, reserve, persist and, when persisting fails,
// compensate. Lines are handled strictly in request order.
func (s *Orchestrator) CreateOrder(ctx context.Context, req CreateRequest) (*orders.Order, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	lines, err := s.check(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	if err := s.reserve(ctx, lines); err != nil {
		return nil, err
	}

	now := s.now()
	o := &orders.Order{
		ID:              uuid.NewString(),
		Status:          orders.StatusCreated,
		Total:           orders.LinesTotal(lines),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		Notes:           strings.TrimSpace(req.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
		Lines:           lines,
	}
	if err := s.store.Create(ctx, o); err != nil {
		s.log.Error("persist order failed, releasing reserved stock",
			zap.String("order_id", o.ID), zap.Int("lines", len(lines)), zap.Error(err))
		s.release(ctx, lines)
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.log.Info("order created", zap.String("order_id", o.ID), zap.String("total", o.Total.StringFixed(2)))
	s.events.Created(o, now)
	return o, nil
}

// check reads every product and its stock without mutating anything and
// snapshots unit prices.
func (s *Orchestrator) check(ctx context.Context, items []LineRequest) ([]orders.OrderLine, error) {
	lines := make([]orders.OrderLine, 0, len(items))
	for _, it := range items {
		p, err := s.ledger.Product(ctx, it.ProductID)
		if r := result(err); r.Outcome != OutcomeOK {
			return nil, fmt.Errorf("check product %s: %w", it.ProductID, r.Err)
		}
		lvl, err := s.ledger.Stock(ctx, it.ProductID)
		if r := result(err); r.Outcome != OutcomeOK {
			return nil, fmt.Errorf("check stock %s: %w", it.ProductID, r.Err)
		}
		if it.Qty > lvl.Quantity {
			return nil, &apperr.InsufficientStockError{ProductID: it.ProductID, Requested: it.Qty, Available: lvl.Quantity}
		}
		lines = append(lines, orders.OrderLine{ProductID: it.ProductID, Qty: it.Qty, UnitPrice: p.Price})
	}
	return lines, nil
}

// reserve decrements line by line. On the first failure the lines already
// reserved are released and the original failure is returned.
func (s *Orchestrator) reserve(ctx context.Context, lines []orders.OrderLine) error {
	for i, l := range lines {
		_, err := s.ledger.Adjust(ctx, l.ProductID, -l.Qty)
		r := result(err)
		if r.Outcome == OutcomeOK {
			continue
		}
		s.log.Warn("reservation failed",
			zap.String("product_id", l.ProductID), zap.Int("qty", l.Qty),
			zap.Stringer("outcome", r.Outcome), zap.Int("compensating", i))
		s.release(ctx, lines[:i])
		return fmt.Errorf("reserve product %s: %w", l.ProductID, r.Err)
	}
	return nil
}

// release is the compensating action. It is best-effort: failures are logged
// and the remaining lines are still attempted.
func (s *Orchestrator) release(ctx context.Context, lines []orders.OrderLine) {
	s.compensate(ctx, lines, 1)
}

func (s *Orchestrator) rereserve(ctx context.Context, lines []orders.OrderLine) {
	s.compensate(ctx, lines, -1)
}

func (s *Orchestrator) compensate(ctx context.Context, lines []orders.OrderLine, sign int) {
	ctx = context.WithoutCancel(ctx)
	for _, l := range lines {
		if _, err := s.ledger.Adjust(ctx, l.ProductID, sign*l.Qty); err != nil {
			s.log.Error("compensation failed",
				zap.String("product_id", l.ProductID), zap.Int("delta", sign*l.Qty),
				zap.Stringer("outcome", classify(err)), zap.Error(err))
		}
	}
}

// CancelOrder releases every line and moves a CREATED or PAID order to
// CANCELLED. If any release or the final write fails, released lines are
// reserved again and the order keeps its status.
func (s *Orchestrator) CancelOrder(ctx context.Context, id string) (*orders.Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, &o, cancelNote)
}

func (s *Orchestrator) cancel(ctx context.Context, o *orders.Order, note string) (*orders.Order, error) {
	from := o.Status
	if !from.Cancellable() {
		return nil, &orders.IllegalTransitionError{From: from, To: orders.StatusCancelled, Allowed: from.AllowedNext()}
	}

	for i, l := range o.Lines {
		_, err := s.ledger.Adjust(ctx, l.ProductID, l.Qty)
		if r := result(err); r.Outcome != OutcomeOK {
			s.log.Warn("release failed, cancellation aborted",
				zap.String("order_id", o.ID), zap.String("product_id", l.ProductID),
				zap.Stringer("outcome", r.Outcome))
			s.rereserve(ctx, o.Lines[:i])
			return nil, fmt.Errorf("release product %s: %w", l.ProductID, r.Err)
		}
	}

	next := *o
	now := s.now()
	if err := next.Cancel(note, now); err != nil {
		s.rereserve(ctx, o.Lines)
		return nil, err
	}
	if err := s.store.Save(ctx, next); err != nil {
		s.log.Error("persist cancellation failed, re-reserving stock", zap.String("order_id", o.ID), zap.Error(err))
		s.rereserve(ctx, o.Lines)
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.log.Info("order cancelled", zap.String("order_id", o.ID), zap.Stringer("from", from))
	s.events.StatusChanged(&next, from, note, now)
	return &next, nil
}

// UpdateStatus applies a direct status change along the transition table. A
// legal move to CANCELLED goes through the cancellation path so reserved
// stock is released.
func (s *Orchestrator) UpdateStatus(ctx context.Context, id string, target orders.Status, note string) (*orders.Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == orders.StatusCancelled && orders.CanTransition(o.Status, target) {
		if strings.TrimSpace(note) == "" {
			note = cancelNote
		}
		return s.cancel(ctx, &o, note)
	}

	from := o.Status
	now := s.now()
	if err := o.Transition(target, note, now); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}
	s.log.Info("order status changed", zap.String("order_id", o.ID),
		zap.Stringer("from", from), zap.Stringer("to", target))
	s.events.StatusChanged(&o, from, note, now)
	return &o, nil
}

// UpdateDetails edits customer fields. Only CREATED orders accept edits.
func (s *Orchestrator) UpdateDetails(ctx context.Context, id string, d orders.Details) (*orders.Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != orders.StatusCreated {
		return nil, apperr.Conflict("order %s is %s; only CREATED orders can be edited", id, o.Status)
	}
	if d.CustomerEmail != nil {
		if err := validateEmail(strings.TrimSpace(*d.CustomerEmail)); err != nil {
			return nil, err
		}
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&o.CustomerName, d.CustomerName)
	set(&o.CustomerEmail, d.CustomerEmail)
	set(&o.ShippingAddress, d.ShippingAddress)
	set(&o.Notes, d.Notes)
	o.UpdatedAt = s.now()

	if err := s.store.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}
	return &o, nil
}

// DeleteOrder purges an order and its lines. It never touches stock.
func (s *Orchestrator) DeleteOrder(ctx context.Context, id string) error {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if o.Status == orders.StatusShipped {
		return apperr.Conflict("order %s has shipped and cannot be deleted", id)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("order deleted", zap.String("order_id", id), zap.Stringer("status", o.Status))
	s.events.Deleted(&o, s.now())
	return nil
}

func (s *Orchestrator) ListOrders(ctx context.Context, f orders.ListFilter) ([]orders.Summary, error) {
	if f.Skip < 0 {
		return nil, apperr.Validation("skip must be >= 0")
	}
	switch {
	case f.Limit < 0:
		return nil, apperr.Validation("limit must be >= 0")
	case f.Limit == 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}
	return s.store.List(ctx, f)
}

func (s *Orchestrator) Workflow(ctx context.Context, id string) (orders.Workflow, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return orders.Workflow{}, err
	}
	return o.Describe(), nil
}
