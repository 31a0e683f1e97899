package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/postman/pkg/domain"
)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Report
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Report),
	}
}

func cloneReport(r *domain.Report) *domain.Report {
	c := *r
	c.ChangedIDs = slices.Clone(r.ChangedIDs)
	c.DirtyIDs = slices.Clone(r.DirtyIDs)
	return &c
}

// Save persists the report in memory.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	copied := cloneReport(report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[report.RequestID] = copied
	return nil
}

// Load retrieves a report from memory.
func (s *Store) Load(ctx context.Context, requestID string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[requestID]
	if !ok {
		return nil, domain.ErrReportNotFound
	}

	// Copy on read so callers can't mutate stored reports through the pointer
	return cloneReport(report), nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, requestID)
	return nil
}

// List returns stored report IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
