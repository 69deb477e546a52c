package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/storage"
)

// PolicyStore implements storage.PolicyStore using PostgreSQL.
type PolicyStore struct {
	pool *Pool
}

// NewPolicyStore creates a new PolicyStore.
func NewPolicyStore(pool *Pool) *PolicyStore {
	return &PolicyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PolicyStore = (*PolicyStore)(nil)

const policyColumns = `id, mode, status, created_at, ledger_seq, median_fee, recommended_fee, load_factor`

// Insert adds a new policy. Returns ErrDuplicateKey if the id exists.
func (s *PolicyStore) Insert(ctx context.Context, p *domain.GuardianPolicy) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO guardian_policies (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		p.ID,
		string(p.Mode),
		string(p.Status),
		p.CreatedAt,
		p.Payload.LedgerSeq,
		p.Payload.MedianFee,
		p.Payload.RecommendedFee,
		p.Payload.LoadFactor,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert guardian policy: %w", err)
	}
	return nil
}

// GetByID retrieves a policy by id. Returns ErrNotFound if not exists.
func (s *PolicyStore) GetByID(ctx context.Context, id string) (*domain.GuardianPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM guardian_policies WHERE id = $1`

	p, err := scanPolicy(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get guardian policy: %w", err)
	}
	return p, nil
}

// ListRecent returns up to limit policies, newest first.
func (s *PolicyStore) ListRecent(ctx context.Context, limit int) ([]*domain.GuardianPolicy, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT ` + policyColumns + `
		FROM guardian_policies
		ORDER BY created_at DESC, inserted_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list guardian policies: %w", err)
	}
	defer rows.Close()

	var result []*domain.GuardianPolicy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guardian policy: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guardian policies: %w", err)
	}
	return result, nil
}

func scanPolicy(row pgx.Row) (*domain.GuardianPolicy, error) {
	var (
		p      domain.GuardianPolicy
		mode   string
		status string
	)
	err := row.Scan(
		&p.ID,
		&mode,
		&status,
		&p.CreatedAt,
		&p.Payload.LedgerSeq,
		&p.Payload.MedianFee,
		&p.Payload.RecommendedFee,
		&p.Payload.LoadFactor,
	)
	if err != nil {
		return nil, err
	}
	p.Mode = domain.GuardianMode(mode)
	p.Status = domain.PolicyStatus(status)
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}
