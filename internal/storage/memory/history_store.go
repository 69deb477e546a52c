package memory

import (
	"context"
	"sync"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/storage"
)

// DefaultHistoryLimit bounds the in-memory history when no limit is given.
const DefaultHistoryLimit = 1000

// HistoryStore is an in-memory implementation of storage.HistoryStore.
// It keeps at most limit points and drops the oldest beyond that.
type HistoryStore struct {
	mu     sync.RWMutex
	points []domain.HistoryPoint
	limit  int
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore(limit int) *HistoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryStore{limit: limit}
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

// Append adds a point, trimming the oldest when over the limit.
func (s *HistoryStore) Append(_ context.Context, p *domain.HistoryPoint) error {
	if p == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = append(s.points, *p)
	if over := len(s.points) - s.limit; over > 0 {
		s.points = append([]domain.HistoryPoint(nil), s.points[over:]...)
	}
	return nil
}

// LoadRecent returns up to limit most recent points, oldest first.
func (s *HistoryStore) LoadRecent(_ context.Context, limit int) ([]*domain.HistoryPoint, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.points) - limit
	if start < 0 {
		start = 0
	}
	result := make([]*domain.HistoryPoint, 0, len(s.points)-start)
	for _, p := range s.points[start:] {
		pointCopy := p
		result = append(result, &pointCopy)
	}
	return result, nil
}

// Len returns the number of stored points.
func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}
