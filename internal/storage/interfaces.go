package storage

import (
	"context"

	"governor-xrpl-lab/internal/domain"
)

// HistoryStore persists fee history points for the horizon predictor.
// Writes are best-effort from the caller's point of view.
type HistoryStore interface {
	// Append adds a point to the history.
	Append(ctx context.Context, p *domain.HistoryPoint) error

	// LoadRecent returns up to limit most recent points, ordered oldest first.
	LoadRecent(ctx context.Context, limit int) ([]*domain.HistoryPoint, error)
}

// PolicyStore is an append-only audit log of guardian policies.
type PolicyStore interface {
	// Insert adds a new policy. Returns ErrDuplicateKey if the policy id exists.
	Insert(ctx context.Context, p *domain.GuardianPolicy) error

	// GetByID retrieves a policy by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.GuardianPolicy, error)

	// ListRecent returns up to limit policies, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.GuardianPolicy, error)
}
