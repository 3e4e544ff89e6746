// Package redis provides a Redis-backed order history adapter.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// HistoryStore implements ports.HistoryStore on a Redis list.
type HistoryStore struct {
	client *backend.Client
	key    string
	ttl    time.Duration
}

// Option configures the store.
type Option func(*HistoryStore)

// WithKey sets the Redis key holding the history list.
func WithKey(key string) Option {
	return func(s *HistoryStore) {
		s.key = key
	}
}

// WithTTL sets an expiration refreshed on every append. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *HistoryStore) {
		s.ttl = ttl
	}
}

// New creates a Redis history store from connection parameters.
func New(address, password string, db int, opts ...Option) *HistoryStore {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis history store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *HistoryStore {
	store := &HistoryStore{
		client: client,
		key:    "forno:orders:history",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Append pushes the JSON-encoded record onto the list tail.
func (s *HistoryStore) Append(ctx context.Context, record map[string]any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, s.key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}
	return nil
}

// List returns all records in insertion order.
func (s *HistoryStore) List(ctx context.Context) ([]map[string]any, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	records := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		var record map[string]any
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("corrupt history record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Clear deletes the history list.
func (s *HistoryStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
