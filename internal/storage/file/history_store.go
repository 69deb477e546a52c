// Package file persists fee history as an append-only JSON Lines file.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/storage"
)

// HistoryStore implements storage.HistoryStore on a local JSONL file.
type HistoryStore struct {
	mu   sync.Mutex
	path string
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

// NewHistoryStore creates the parent directory of path if needed.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history path: %w", storage.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &HistoryStore{path: path}, nil
}

// Path returns the backing file path.
func (s *HistoryStore) Path() string {
	return s.path
}

// Append writes one JSON line.
func (s *HistoryStore) Append(_ context.Context, p *domain.HistoryPoint) error {
	if p == nil {
		return storage.ErrInvalidInput
	}
	line, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode history point: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}

// LoadRecent returns up to limit most recent points, oldest first.
// A missing file yields no points; malformed lines are skipped.
func (s *HistoryStore) LoadRecent(_ context.Context, limit int) ([]*domain.HistoryPoint, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	var window []*domain.HistoryPoint
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var p domain.HistoryPoint
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			continue
		}
		window = append(window, &p)
		if len(window) > limit {
			window = window[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}
	return window, nil
}
