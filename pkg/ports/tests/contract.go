// Package tests provides reusable contract suites for port implementations.
package tests

import (
	"context"
	"testing"

	"github.com/aretw0/forno/pkg/ports"
)

// HistoryStoreContractTest verifies that an adapter complies with
// ports.HistoryStore semantics: append order, full listing, clearing.
func HistoryStoreContractTest(t *testing.T, store ports.HistoryStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Empty_List", func(t *testing.T) {
		records, err := store.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing empty store: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected empty history, got %d records", len(records))
		}
	})

	t.Run("Append_Preserves_Order", func(t *testing.T) {
		first := map[string]any{"order_id": "aaa11111", "pizza_type": "margherita"}
		second := map[string]any{"order_id": "bbb22222", "pizza_type": "pepperoni"}

		if err := store.Append(ctx, first); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if err := store.Append(ctx, second); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		records, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if got := records[0]["order_id"]; got != "aaa11111" {
			t.Errorf("first record order_id = %v, want aaa11111", got)
		}
		if got := records[1]["order_id"]; got != "bbb22222" {
			t.Errorf("second record order_id = %v, want bbb22222", got)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		records, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list after clear failed: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected empty history after clear, got %d records", len(records))
		}
	})
}
