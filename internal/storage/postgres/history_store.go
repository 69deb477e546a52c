package postgres

import (
	"context"
	"fmt"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/storage"
)

// HistoryStore implements storage.HistoryStore using PostgreSQL.
type HistoryStore struct {
	pool *Pool
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(pool *Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

// Append adds a history point.
func (s *HistoryStore) Append(ctx context.Context, p *domain.HistoryPoint) error {
	if p == nil {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO fee_history (ts, ledger_seq, median_fee, load_factor, band)
		VALUES ($1, $2, $3, $4, $5)
	`, p.Timestamp, p.LedgerSeq, p.MedianFee, p.LoadFactor, string(p.Band))
	if err != nil {
		return fmt.Errorf("insert fee history: %w", err)
	}
	return nil
}

// LoadRecent returns up to limit most recent points, oldest first.
func (s *HistoryStore) LoadRecent(ctx context.Context, limit int) ([]*domain.HistoryPoint, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx, `
		SELECT ts, ledger_seq, median_fee, load_factor, band
		FROM (
			SELECT id, ts, ledger_seq, median_fee, load_factor, band
			FROM fee_history
			ORDER BY id DESC
			LIMIT $1
		) recent
		ORDER BY id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("load fee history: %w", err)
	}
	defer rows.Close()

	var result []*domain.HistoryPoint
	for rows.Next() {
		var (
			p    domain.HistoryPoint
			band string
		)
		if err := rows.Scan(&p.Timestamp, &p.LedgerSeq, &p.MedianFee, &p.LoadFactor, &band); err != nil {
			return nil, fmt.Errorf("scan fee history: %w", err)
		}
		p.Band = domain.Band(band)
		p.Timestamp = p.Timestamp.UTC()
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fee history: %w", err)
	}
	return result, nil
}
