// Package redisstore keeps a bounded fee history in a Redis list so that several
// governor replicas can share one warm predictor buffer.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/storage"
)

const (
	defaultKey      = "xrpl-governor:fee-history"
	defaultMaxItems = 1000
)

// Config describes the Redis connection and list layout.
type Config struct {
	Address  string `yaml:"address" env:"ADDRESS"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Key      string `yaml:"key" env:"KEY"`
	MaxItems int    `yaml:"max_items" env:"MAX_ITEMS"`
}

// HistoryStore implements storage.HistoryStore on a capped Redis list.
// The newest point sits at the head of the list.
type HistoryStore struct {
	client   *redis.Client
	key      string
	maxItems int64
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

// NewHistoryStore connects to Redis and verifies the connection.
func NewHistoryStore(ctx context.Context, cfg Config) (*HistoryStore, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return newHistoryStore(client, cfg), nil
}

func newHistoryStore(client *redis.Client, cfg Config) *HistoryStore {
	key := cfg.Key
	if key == "" {
		key = defaultKey
	}
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return &HistoryStore{client: client, key: key, maxItems: int64(maxItems)}
}

// Append pushes a point and trims the list to the configured size.
func (s *HistoryStore) Append(ctx context.Context, p *domain.HistoryPoint) error {
	if p == nil {
		return storage.ErrInvalidInput
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode history point: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, 0, s.maxItems-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append history: %w", err)
	}
	return nil
}

// LoadRecent returns up to limit most recent points, oldest first.
// Entries that fail to decode are skipped.
func (s *HistoryStore) LoadRecent(ctx context.Context, limit int) ([]*domain.HistoryPoint, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	values, err := s.client.LRange(ctx, s.key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load history: %w", err)
	}

	result := make([]*domain.HistoryPoint, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		var p domain.HistoryPoint
		if err := json.Unmarshal([]byte(values[i]), &p); err != nil {
			continue
		}
		result = append(result, &p)
	}
	return result, nil
}

// Close closes the Redis client.
func (s *HistoryStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
