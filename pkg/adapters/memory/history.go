// Package memory provides in-memory adapter implementations, mainly for
// tests and single-process demos.
package memory

import (
	"context"
	"sync"
)

// HistoryStore implements ports.HistoryStore in memory.
// Safe for concurrent use.
type HistoryStore struct {
	mu      sync.RWMutex
	records []map[string]any
}

// NewHistoryStore creates an empty in-memory history.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Append adds a record. The record is shallow-copied so the caller cannot
// mutate stored state through the original map.
func (s *HistoryStore) Append(ctx context.Context, record map[string]any) error {
	copied := make(map[string]any, len(record))
	for k, v := range record {
		copied[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, copied)
	return nil
}

// List returns the records in insertion order.
func (s *HistoryStore) List(ctx context.Context) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]map[string]any, 0, len(s.records))
	for _, r := range s.records {
		copied := make(map[string]any, len(r))
		for k, v := range r {
			copied[k] = v
		}
		out = append(out, copied)
	}
	return out, nil
}

// Clear removes all records.
func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}
