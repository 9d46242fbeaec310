package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MUR0612/smart-inventory/internal/apperr"
)

// MemoryStore keeps products in process. One mutex serialises every
// mutation, which gives the same per-call atomicity as a row lock.
type MemoryStore struct {
	mu       sync.Mutex
	products map[string]Product
	bySKU    map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: map[string]Product{},
		bySKU:    map[string]string{},
	}
}

func (s *MemoryStore) CreateProduct(_ context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bySKU[p.SKU]; ok {
		return apperr.Conflict("sku %q already exists", p.SKU)
	}
	s.products[p.ID] = p
	s.bySKU[p.SKU] = p.ID
	return nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, apperr.NotFound("product %s", id)
	}
	return p, nil
}

func (s *MemoryStore) ListProducts(_ context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, id string, upd ProductUpdate, now time.Time) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, apperr.NotFound("product %s", id)
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.SafetyStock != nil {
		p.SafetyStock = *upd.SafetyStock
	}
	p.UpdatedAt = now
	s.products[id] = p
	return p, nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, apperr.NotFound("product %s", id)
	}
	delete(s.products, id)
	delete(s.bySKU, p.SKU)
	return p, nil
}

func (s *MemoryStore) AdjustStock(_ context.Context, id string, delta int, now time.Time) (Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return Adjustment{}, apperr.NotFound("product %s", id)
	}
	old := p.Stock
	next, err := nextStock(id, old, delta)
	if err != nil {
		return Adjustment{}, err
	}
	p.Stock = next
	p.UpdatedAt = now
	s.products[id] = p
	return Adjustment{Product: p, OldQuantity: old, NewQuantity: next}, nil
}

func (s *MemoryStore) SetStock(_ context.Context, id string, qty int, now time.Time) (Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return Adjustment{}, apperr.NotFound("product %s", id)
	}
	old := p.Stock
	p.Stock = qty
	p.UpdatedAt = now
	s.products[id] = p
	return Adjustment{Product: p, OldQuantity: old, NewQuantity: qty}, nil
}
