package inventory

import (
	"math"
	"time"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/shopspring/decimal"
)

// MaxStock is the largest counter the INTEGER stock column holds.
const MaxStock = math.MaxInt32

// nextStock applies delta to old. A negative result is insufficient stock;
// a delta or result past MaxStock is rejected as invalid input.
func nextStock(id string, old, delta int) (int, error) {
	if delta > MaxStock || delta < -MaxStock {
		return 0, apperr.Validation("adjustment must be between -%d and %d", MaxStock, MaxStock)
	}
	next := old + delta
	if next < 0 {
		return 0, &apperr.InsufficientStockError{ProductID: id, Requested: -delta, Available: old}
	}
	if next > MaxStock {
		return 0, apperr.Validation("stock for product %s would exceed %d", id, MaxStock)
	}
	return next, nil
}

// Product carries the catalog fields together with the current stock counter.
type Product struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	SafetyStock int             `json:"safety_stock"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p Product) IsLowStock() bool { return p.Stock <= p.SafetyStock }

func (p Product) StockRecord() StockRecord {
	return StockRecord{
		ProductID:   p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Quantity:    p.Stock,
		SafetyStock: p.SafetyStock,
		IsLowStock:  p.IsLowStock(),
	}
}

type StockRecord struct {
	ProductID   string `json:"product_id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Quantity    int    `json:"current_stock"`
	SafetyStock int    `json:"safety_stock"`
	IsLowStock  bool   `json:"is_low_stock"`
}

// Adjustment is the committed result of one read-modify-write on a counter.
type Adjustment struct {
	Product     Product
	OldQuantity int
	NewQuantity int
}

type NewProduct struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	SafetyStock int             `json:"safety_stock"`
	Stock       int             `json:"stock"`
}

type ProductUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	SafetyStock *int             `json:"safety_stock,omitempty"`
}
