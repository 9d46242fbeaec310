package orders

import (
	"context"
	"sort"
	"sync"

	"github.com/MUR0612/smart-inventory/internal/apperr"
)

// Store persists orders with their lines. Create writes header and lines
// together and fills in line ids; Save rewrites only header fields.
type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, f ListFilter) ([]Summary, error)
	Save(ctx context.Context, o Order) error
	Delete(ctx context.Context, id string) error
}

type MemoryStore struct {
	mu     sync.Mutex
	orders map[string]Order
	lineID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: map[string]Order{}}
}

func cloneOrder(o Order) Order {
	o.Lines = append([]OrderLine(nil), o.Lines...)
	return o
}

func (s *MemoryStore) Create(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; ok {
		return apperr.Conflict("order %s already exists", o.ID)
	}
	for i := range o.Lines {
		s.lineID++
		o.Lines[i].ID = s.lineID
	}
	s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, apperr.NotFound("order %s", id)
	}
	return cloneOrder(o), nil
}

func (s *MemoryStore) List(_ context.Context, f ListFilter) ([]Summary, error) {
	s.mu.Lock()
	all := make([]Summary, 0, len(s.orders))
	for _, o := range s.orders {
		if f.Status != statusInvalid && o.Status != f.Status {
			continue
		}
		all = append(all, o.Summary())
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return page(all, f), nil
}

func page(all []Summary, f ListFilter) []Summary {
	if f.Skip >= len(all) {
		return []Summary{}
	}
	all = all[f.Skip:]
	if f.Limit > 0 && f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all
}

func (s *MemoryStore) Save(_ context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.orders[o.ID]
	if !ok {
		return apperr.NotFound("order %s", o.ID)
	}
	o.Lines = cur.Lines
	o.Total = cur.Total
	o.CreatedAt = cur.CreatedAt
	s.orders[o.ID] = o
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return apperr.NotFound("order %s", id)
	}
	delete(s.orders, id)
	return nil
}
