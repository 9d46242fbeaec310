package saga

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MUR0612/smart-inventory/internal/orders"
)

type LineView struct {
	orders.OrderLine
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderView struct {
	orders.Order
	Lines []LineView `json:"items"`
}

// GetOrder returns the order with each line labelled from the ledger. A
// failed lookup degrades to a placeholder label instead of failing the read.
func (s *Orchestrator) GetOrder(ctx context.Context, id string) (OrderView, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return OrderView{}, err
	}
	v := OrderView{Order: o, Lines: make([]LineView, 0, len(o.Lines))}
	for _, l := range o.Lines {
		lv := LineView{
			OrderLine:   l,
			ProductName: fmt.Sprintf("Product %s", l.ProductID),
			ProductSKU:  "N/A",
			Subtotal:    l.Subtotal(),
		}
		if p, err := s.ledger.Product(ctx, l.ProductID); err == nil {
			lv.ProductName, lv.ProductSKU = p.Name, p.SKU
		} else {
			s.log.Debug("product lookup failed", zap.String("product_id", l.ProductID), zap.Error(err))
		}
		v.Lines = append(v.Lines, lv)
	}
	return v, nil
}
