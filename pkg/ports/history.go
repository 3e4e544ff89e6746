package ports

import "context"

// HistoryStore persists the running order history. Records are JSON-shaped
// maps so adapters can serialize them without knowing the order schema.
type HistoryStore interface {
	// Append adds a record to the end of the history.
	Append(ctx context.Context, record map[string]any) error

	// List returns all records in insertion order.
	List(ctx context.Context) ([]map[string]any, error)

	// Clear removes all records.
	Clear(ctx context.Context) error
}
