package clickhouse

import (
	"context"
	"fmt"
	"time"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/storage"
)

// HistoryStore implements storage.HistoryStore using ClickHouse.
type HistoryStore struct {
	conn *Conn
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(conn *Conn) *HistoryStore {
	return &HistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

// Append inserts one point.
func (s *HistoryStore) Append(ctx context.Context, p *domain.HistoryPoint) error {
	if p == nil {
		return storage.ErrInvalidInput
	}
	return s.AppendBulk(ctx, []*domain.HistoryPoint{p})
}

// AppendBulk inserts points in a single batch.
func (s *HistoryStore) AppendBulk(ctx context.Context, points []*domain.HistoryPoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO fee_history (ts_ms, ledger_seq, median_fee, load_factor, band)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if p == nil {
			return storage.ErrInvalidInput
		}
		err = batch.Append(
			uint64(p.Timestamp.UnixMilli()), uint64(p.LedgerSeq),
			p.MedianFee, p.LoadFactor, string(p.Band),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// LoadRecent returns up to limit most recent points, oldest first.
func (s *HistoryStore) LoadRecent(ctx context.Context, limit int) ([]*domain.HistoryPoint, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT ts_ms, ledger_seq, median_fee, load_factor, band
		FROM (
			SELECT ts_ms, ledger_seq, median_fee, load_factor, band
			FROM fee_history
			ORDER BY ts_ms DESC, ledger_seq DESC
			LIMIT ?
		)
		ORDER BY ts_ms ASC, ledger_seq ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query fee history: %w", err)
	}
	defer rows.Close()

	var result []*domain.HistoryPoint
	for rows.Next() {
		var (
			tsMs, ledger uint64
			p            domain.HistoryPoint
			band         string
		)
		if err := rows.Scan(&tsMs, &ledger, &p.MedianFee, &p.LoadFactor, &band); err != nil {
			return nil, fmt.Errorf("scan fee history: %w", err)
		}
		p.Timestamp = time.UnixMilli(int64(tsMs)).UTC()
		p.LedgerSeq = int64(ledger)
		p.Band = domain.Band(band)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fee history: %w", err)
	}
	return result, nil
}
