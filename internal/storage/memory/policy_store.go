package memory

import (
	"context"
	"sort"
	"sync"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/storage"
)

// PolicyStore is an in-memory implementation of storage.PolicyStore.
type PolicyStore struct {
	mu   sync.RWMutex
	data map[string]*domain.GuardianPolicy // keyed by policy id
	seq  map[string]int                    // insertion order, breaks created_at ties
	next int
}

// NewPolicyStore creates a new in-memory policy store.
func NewPolicyStore() *PolicyStore {
	return &PolicyStore{
		data: make(map[string]*domain.GuardianPolicy),
		seq:  make(map[string]int),
	}
}

// Compile-time interface check.
var _ storage.PolicyStore = (*PolicyStore)(nil)

// Insert adds a new policy. Returns ErrDuplicateKey if the id exists.
func (s *PolicyStore) Insert(_ context.Context, p *domain.GuardianPolicy) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	policyCopy := *p
	s.data[p.ID] = &policyCopy
	s.seq[p.ID] = s.next
	s.next++
	return nil
}

// GetByID retrieves a policy. Returns ErrNotFound if not exists.
func (s *PolicyStore) GetByID(_ context.Context, id string) (*domain.GuardianPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	policyCopy := *p
	return &policyCopy, nil
}

// ListRecent returns up to limit policies, newest first.
func (s *PolicyStore) ListRecent(_ context.Context, limit int) ([]*domain.GuardianPolicy, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.GuardianPolicy, 0, len(s.data))
	for _, p := range s.data {
		policyCopy := *p
		result = append(result, &policyCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return s.seq[a.ID] > s.seq[b.ID]
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
