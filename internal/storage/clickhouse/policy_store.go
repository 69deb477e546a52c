package clickhouse

import (
	"context"
	"fmt"
	"time"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/storage"
)

// PolicyStore implements storage.PolicyStore on the guardian_modes table.
// Recommended fee is not kept in ClickHouse and reads back as zero.
type PolicyStore struct {
	conn *Conn
}

// NewPolicyStore creates a new PolicyStore.
func NewPolicyStore(conn *Conn) *PolicyStore {
	return &PolicyStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PolicyStore = (*PolicyStore)(nil)

// Insert adds a policy row. MergeTree does not enforce keys, so the id is checked first.
func (s *PolicyStore) Insert(ctx context.Context, p *domain.GuardianPolicy) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO guardian_modes (
			policy_id, created_ms, mode, status, ledger_seq, median_fee, load_factor
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	err = batch.Append(
		p.ID, uint64(p.CreatedAt.UnixMilli()), string(p.Mode), string(p.Status),
		uint64(p.Payload.LedgerSeq), p.Payload.MedianFee, p.Payload.LoadFactor,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByID retrieves a policy. Returns ErrNotFound if not exists.
func (s *PolicyStore) GetByID(ctx context.Context, id string) (*domain.GuardianPolicy, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT policy_id, created_ms, mode, status, ledger_seq, median_fee, load_factor
		FROM guardian_modes
		WHERE policy_id = ?
		LIMIT 1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query guardian mode: %w", err)
	}
	defer rows.Close()

	policies, err := scanPolicies(rows)
	if err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return nil, storage.ErrNotFound
	}
	return policies[0], nil
}

// ListRecent returns up to limit policies, newest first.
func (s *PolicyStore) ListRecent(ctx context.Context, limit int) ([]*domain.GuardianPolicy, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.conn.Query(ctx, `
		SELECT policy_id, created_ms, mode, status, ledger_seq, median_fee, load_factor
		FROM guardian_modes
		ORDER BY created_ms DESC, policy_id DESC
		LIMIT ?
	`, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query guardian modes: %w", err)
	}
	defer rows.Close()

	return scanPolicies(rows)
}

func (s *PolicyStore) exists(ctx context.Context, id string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM guardian_modes WHERE policy_id = ?`, id)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPolicies(rows rowScanner) ([]*domain.GuardianPolicy, error) {
	var result []*domain.GuardianPolicy
	for rows.Next() {
		var (
			p            domain.GuardianPolicy
			createdMs    uint64
			ledger       uint64
			mode, status string
		)
		err := rows.Scan(&p.ID, &createdMs, &mode, &status, &ledger, &p.Payload.MedianFee, &p.Payload.LoadFactor)
		if err != nil {
			return nil, fmt.Errorf("scan guardian mode: %w", err)
		}
		p.CreatedAt = time.UnixMilli(int64(createdMs)).UTC()
		p.Mode = domain.GuardianMode(mode)
		p.Status = domain.PolicyStatus(status)
		p.Payload.LedgerSeq = int64(ledger)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guardian modes: %w", err)
	}
	return result, nil
}
