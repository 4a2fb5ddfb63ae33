// Package report keeps the outcome of migration runs so operators can tell a full
// migration from a partial one without reading logs.
package report

import (
	"context"
	"errors"
	"sync"

	"woocommerce/migrator/internal/domain"
)

var ErrNotFound = errors.New("report not found")

type Store interface {
	Save(ctx context.Context, report *domain.Report) error
	Get(ctx context.Context, id string) (*domain.Report, error)
	// List returns the newest reports first.
	List(ctx context.Context, limit int) ([]*domain.Report, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	limit   int
	order   []string
	reports map[string]*domain.Report
}

// NewMemoryStore keeps at most limit reports; older ones are evicted.
func NewMemoryStore(limit int) Store {
	if limit <= 0 {
		limit = 100
	}
	return &memoryStore{
		limit:   limit,
		reports: make(map[string]*domain.Report),
	}
}

func (s *memoryStore) Save(_ context.Context, report *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; !exists {
		s.order = append(s.order, report.ID)
	}
	s.reports[report.ID] = report

	for len(s.order) > s.limit {
		delete(s.reports, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *memoryStore) List(_ context.Context, limit int) ([]*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}

	out := make([]*domain.Report, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.reports[s.order[i]])
	}
	return out, nil
}
