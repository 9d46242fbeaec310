package inventory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/MUR0612/smart-inventory/internal/notify"
	"github.com/MUR0612/smart-inventory/internal/redisx"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store owns products and their stock counters. AdjustStock and SetStock
// must each be a single atomic read-modify-write; AdjustStock returns
// *apperr.InsufficientStockError and leaves the counter untouched when the
// result would be negative.
type Store interface {
	CreateProduct(ctx context.Context, p Product) error
	GetProduct(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	UpdateProduct(ctx context.Context, id string, upd ProductUpdate, now time.Time) (Product, error)
	DeleteProduct(ctx context.Context, id string) (Product, error)
	AdjustStock(ctx context.Context, id string, delta int, now time.Time) (Adjustment, error)
	SetStock(ctx context.Context, id string, qty int, now time.Time) (Adjustment, error)
}

type Cache interface {
	Invalidate(ctx context.Context, keys ...string)
}

type Notifier interface {
	StockChanged(ctx context.Context, ev notify.StockChange)
	LowStock(ctx context.Context, ev notify.LowStockAlert)
	InventoryUpdated(ctx context.Context, ev notify.InventoryUpdate)
}

const (
	effectsBuffer = 1024
	effectTimeout = 3 * time.Second
)

type effect struct {
	ctx context.Context
	fn  func(ctx context.Context)
}

// Ledger is the only writer of stock counters. Cache invalidation and event
// fan-out run after the write commits, on a single goroutine in commit order,
// so a slow cache or broker never holds up the caller.
type Ledger struct {
	store    Store
	cache    Cache
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time

	effects chan effect
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
}

func NewLedger(store Store, cache Cache, notifier Notifier, log *zap.Logger) *Ledger {
	if cache == nil {
		cache = nopCache{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	l := &Ledger{
		store:    store,
		cache:    cache,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		effects:  make(chan effect, effectsBuffer),
		done:     make(chan struct{}),
	}
	go l.runEffects()
	return l
}

func (l *Ledger) runEffects() {
	defer close(l.done)
	for e := range l.effects {
		ctx, cancel := context.WithTimeout(e.ctx, effectTimeout)
		e.fn(ctx)
		cancel()
	}
}

// afterCommit queues best-effort work behind a committed write. It runs
// detached from the request's cancellation; a full queue drops it.
func (l *Ledger) afterCommit(ctx context.Context, op string, fn func(ctx context.Context)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.log.Warn("ledger closed, side effects dropped", zap.String("op", op))
		return
	}
	select {
	case l.effects <- effect{ctx: context.WithoutCancel(ctx), fn: fn}:
	default:
		l.log.Warn("side effect queue full, dropped", zap.String("op", op))
	}
}

// Flush blocks until every side effect queued before the call has run.
func (l *Ledger) Flush() {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		<-l.done
		return
	}
	ran := make(chan struct{})
	l.effects <- effect{ctx: context.Background(), fn: func(context.Context) { close(ran) }}
	l.mu.RUnlock()
	<-ran
}

// Close stops accepting side effects and waits for the queued ones to run.
func (l *Ledger) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.effects)
	}
	l.mu.Unlock()
	<-l.done
}

func (l *Ledger) GetStock(ctx context.Context, productID string) (StockRecord, error) {
	p, err := l.store.GetProduct(ctx, productID)
	if err != nil {
		return StockRecord{}, err
	}
	return p.StockRecord(), nil
}

// Adjust applies a signed delta. Once the write commits it queues the cache
// drop and a stock-change event, plus a low-stock event when the new
// quantity is at or below the safety threshold.
func (l *Ledger) Adjust(ctx context.Context, productID string, delta int) (StockRecord, error) {
	adj, err := l.store.AdjustStock(ctx, productID, delta, l.now())
	if err != nil {
		return StockRecord{}, err
	}
	rec := adj.Product.StockRecord()
	l.log.Info("stock adjusted",
		zap.String("product_id", productID),
		zap.Int("delta", delta),
		zap.Int("old", adj.OldQuantity),
		zap.Int("new", adj.NewQuantity),
	)

	l.afterCommit(ctx, "adjust", func(ctx context.Context) {
		l.cache.Invalidate(ctx, redisx.ProductKey(productID), redisx.KeyProductList)
		l.notifier.StockChanged(ctx, notify.StockChange{
			ProductID:  rec.ProductID,
			SKU:        rec.SKU,
			Name:       rec.Name,
			OldStock:   adj.OldQuantity,
			NewStock:   adj.NewQuantity,
			Adjustment: delta,
			IsLowStock: rec.IsLowStock,
			Timestamp:  adj.Product.UpdatedAt,
		})
		if rec.IsLowStock {
			l.lowStock(ctx, adj.Product)
		}
	})
	return rec, nil
}

// SetAbsolute replaces the counter outright. No stock-change event is
// emitted, only the low-stock alert when applicable.
func (l *Ledger) SetAbsolute(ctx context.Context, productID string, qty int) (StockRecord, error) {
	if qty < 0 {
		return StockRecord{}, apperr.Validation("stock cannot be negative")
	}
	if qty > MaxStock {
		return StockRecord{}, apperr.Validation("stock cannot exceed %d", MaxStock)
	}
	adj, err := l.store.SetStock(ctx, productID, qty, l.now())
	if err != nil {
		return StockRecord{}, err
	}
	l.log.Info("stock set", zap.String("product_id", productID), zap.Int("old", adj.OldQuantity), zap.Int("new", qty))

	l.afterCommit(ctx, "set", func(ctx context.Context) {
		l.cache.Invalidate(ctx, redisx.ProductKey(productID), redisx.KeyProductList)
		if adj.Product.IsLowStock() {
			l.lowStock(ctx, adj.Product)
		}
	})
	return adj.Product.StockRecord(), nil
}

func (l *Ledger) ListStock(ctx context.Context) ([]StockRecord, error) {
	ps, err := l.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StockRecord, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.StockRecord())
	}
	return out, nil
}

func (l *Ledger) LowStock(ctx context.Context) ([]StockRecord, error) {
	ps, err := l.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	var out []StockRecord
	for _, p := range ps {
		if p.IsLowStock() {
			out = append(out, p.StockRecord())
		}
	}
	return out, nil
}

func (l *Ledger) CreateProduct(ctx context.Context, in NewProduct) (Product, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.SKU == "":
		return Product{}, apperr.Validation("sku is required")
	case in.Name == "":
		return Product{}, apperr.Validation("name is required")
	case in.Price.IsNegative():
		return Product{}, apperr.Validation("price cannot be negative")
	case in.SafetyStock < 0:
		return Product{}, apperr.Validation("safety_stock cannot be negative")
	case in.Stock < 0:
		return Product{}, apperr.Validation("stock cannot be negative")
	case in.Stock > MaxStock || in.SafetyStock > MaxStock:
		return Product{}, apperr.Validation("stock and safety_stock cannot exceed %d", MaxStock)
	}

	now := l.now()
	p := Product{
		ID:          uuid.NewString(),
		SKU:         in.SKU,
		Name:        in.Name,
		Price:       in.Price.Round(2),
		SafetyStock: in.SafetyStock,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.store.CreateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	l.afterCommit(ctx, "create", func(ctx context.Context) {
		l.cache.Invalidate(ctx, redisx.KeyProductList)
		l.updated(ctx, notify.ActionCreated, p)
	})
	return p, nil
}

func (l *Ledger) GetProduct(ctx context.Context, id string) (Product, error) {
	return l.store.GetProduct(ctx, id)
}

func (l *Ledger) ListProducts(ctx context.Context) ([]Product, error) {
	return l.store.ListProducts(ctx)
}

func (l *Ledger) UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (Product, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return Product{}, apperr.Validation("name cannot be empty")
	}
	if upd.Price != nil {
		if upd.Price.IsNegative() {
			return Product{}, apperr.Validation("price cannot be negative")
		}
		rounded := upd.Price.Round(2)
		upd.Price = &rounded
	}
	if upd.SafetyStock != nil && (*upd.SafetyStock < 0 || *upd.SafetyStock > MaxStock) {
		return Product{}, apperr.Validation("safety_stock must be between 0 and %d", MaxStock)
	}

	p, err := l.store.UpdateProduct(ctx, id, upd, l.now())
	if err != nil {
		return Product{}, err
	}
	l.afterCommit(ctx, "update", func(ctx context.Context) {
		l.cache.Invalidate(ctx, redisx.ProductKey(id), redisx.KeyProductList)
		l.updated(ctx, notify.ActionUpdated, p)
	})
	return p, nil
}

func (l *Ledger) DeleteProduct(ctx context.Context, id string) error {
	p, err := l.store.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	l.afterCommit(ctx, "delete", func(ctx context.Context) {
		l.cache.Invalidate(ctx, redisx.ProductKey(id), redisx.KeyProductList)
		l.updated(ctx, notify.ActionDeleted, p)
	})
	return nil
}

func (l *Ledger) lowStock(ctx context.Context, p Product) {
	l.log.Warn("low stock", zap.String("product_id", p.ID), zap.Int("stock", p.Stock), zap.Int("safety_stock", p.SafetyStock))
	l.notifier.LowStock(ctx, notify.LowStockAlert{
		ProductID:    p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		CurrentStock: p.Stock,
		SafetyStock:  p.SafetyStock,
		Timestamp:    p.UpdatedAt,
	})
}

func (l *Ledger) updated(ctx context.Context, action string, p Product) {
	l.notifier.InventoryUpdated(ctx, notify.InventoryUpdate{
		Action:    action,
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Timestamp: l.now(),
	})
}

type nopCache struct{}

func (nopCache) Invalidate(context.Context, ...string) {}

type nopNotifier struct{}

func (nopNotifier) StockChanged(context.Context, notify.StockChange)        {}
func (nopNotifier) LowStock(context.Context, notify.LowStockAlert)          {}
func (nopNotifier) InventoryUpdated(context.Context, notify.InventoryUpdate) {}
