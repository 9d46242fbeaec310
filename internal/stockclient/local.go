// Package stockclient adapts the stock ledger to the saga's StockLedger
// interface, either in process or over the inventory service's HTTP API.
package stockclient

import (
	"context"

	"github.com/MUR0612/smart-inventory/internal/inventory"
	"github.com/MUR0612/smart-inventory/internal/saga"
)

// Local calls an in-process ledger.
type Local struct {
	Ledger *inventory.Ledger
}

func (l *Local) Product(ctx context.Context, id string) (saga.ProductInfo, error) {
	p, err := l.Ledger.GetProduct(ctx, id)
	if err != nil {
		return saga.ProductInfo{}, err
	}
	return saga.ProductInfo{ID: p.ID, SKU: p.SKU, Name: p.Name, Price: p.Price}, nil
}

func (l *Local) Stock(ctx context.Context, id string) (saga.StockLevel, error) {
	rec, err := l.Ledger.GetStock(ctx, id)
	if err != nil {
		return saga.StockLevel{}, err
	}
	return saga.StockLevel{ProductID: rec.ProductID, Quantity: rec.Quantity, SafetyStock: rec.SafetyStock}, nil
}

func (l *Local) Adjust(ctx context.Context, id string, delta int) (int, error) {
	rec, err := l.Ledger.Adjust(ctx, id, delta)
	if err != nil {
		return 0, err
	}
	return rec.Quantity, nil
}
