package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/storage"
	"governor-xrpl-lab/internal/storage/clickhouse"
)

func TestHistoryStore_AppendAndLoadRecent(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewHistoryStore(conn)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	var points []*domain.HistoryPoint
	for i := 0; i < 6; i++ {
		points = append(points, &domain.HistoryPoint{
			Timestamp:  base.Add(time.Duration(i) * 4 * time.Second),
			LedgerSeq:  int64(5000 + i),
			MedianFee:  int64(600 + 50*i),
			LoadFactor: 2.5,
			Band:       domain.BandElevated,
		})
	}
	require.NoError(t, store.AppendBulk(ctx, points[:5]))
	require.NoError(t, store.Append(ctx, points[5]))

	got, err := store.LoadRecent(ctx, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, int64(5002), got[0].LedgerSeq)
	assert.Equal(t, int64(5005), got[3].LedgerSeq)
	assert.Equal(t, int64(850), got[3].MedianFee)
	assert.Equal(t, domain.BandElevated, got[3].Band)
	assert.True(t, points[5].Timestamp.Equal(got[3].Timestamp))
}

func TestHistoryStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewHistoryStore(conn)

	assert.ErrorIs(t, store.Append(context.Background(), nil), storage.ErrInvalidInput)
	_, err := store.LoadRecent(context.Background(), -1)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
