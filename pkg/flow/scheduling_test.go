package flow

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forno/pkg/adapters/memory"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	return NewScheduler(memory.NewHistoryStore(),
		WithReceiptsDir(t.TempDir()),
		WithClock(fixedClock),
	)
}

func TestSaveOrderReceipt(t *testing.T) {
	dir := t.TempDir()
	s := NewScheduler(memory.NewHistoryStore(), WithReceiptsDir(dir), WithClock(fixedClock))

	out, err := s.SaveOrderReceipt(context.Background(), map[string]any{
		"order_id":   "abc12345",
		"order_data": `{"pizza_type": "margherita", "quantity": 2}`,
	})
	require.NoError(t, err)

	result := out.(map[string]any)
	assert.Equal(t, "saved", result["status"])

	path := filepath.Join(dir, "order_abc12345.json")
	assert.Equal(t, path, result["path"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var receipt map[string]any
	require.NoError(t, json.Unmarshal(data, &receipt))
	assert.Equal(t, "abc12345", receipt["order_id"])
	order := receipt["order"].(map[string]any)
	assert.Equal(t, "margherita", order["pizza_type"])
}

func TestSaveOrderReceipt_MissingOrderID(t *testing.T) {
	s := newTestScheduler(t)
	_, err := s.SaveOrderReceipt(context.Background(), map[string]any{})
	assert.Error(t, err)
}

func TestSaveOrderReceipt_InvalidOrderData(t *testing.T) {
	s := newTestScheduler(t)
	_, err := s.SaveOrderReceipt(context.Background(), map[string]any{
		"order_id":   "x",
		"order_data": "{broken",
	})
	assert.Error(t, err)
}

func TestCreateCalendarEvent(t *testing.T) {
	s := newTestScheduler(t)

	out, err := s.CreateCalendarEvent(context.Background(), map[string]any{
		"order_id":    "abc12345",
		"pizza_type":  "pepperoni",
		"eta_minutes": 40,
	})
	require.NoError(t, err)

	event := out.(map[string]any)
	assert.Equal(t, "created", event["status"])
	assert.NotEmpty(t, event["event_id"])
	assert.Equal(t, "Pizza delivery: pepperoni", event["summary"])

	start, err := time.Parse(time.RFC3339, event["start"].(string))
	require.NoError(t, err)
	assert.Equal(t, fixedClock().Add(40*time.Minute), start)

	end, err := time.Parse(time.RFC3339, event["end"].(string))
	require.NoError(t, err)
	assert.Equal(t, start.Add(15*time.Minute), end)
}

func TestScheduleDelivery_FullWorkflow(t *testing.T) {
	store := memory.NewHistoryStore()
	dir := t.TempDir()
	s := NewScheduler(store, WithReceiptsDir(dir), WithClock(fixedClock))

	out, err := s.ScheduleDelivery(context.Background(), map[string]any{
		"order_id":    "abc12345",
		"pizza_type":  "margherita",
		"eta_minutes": float64(35), // JSON-decoded numbers arrive as float64
		"total_price": 28.8,
	})
	require.NoError(t, err)

	result := out.(map[string]any)
	assert.Equal(t, "success", result["status"])

	details := result["details"].(map[string]any)
	receipt := details["receipt"].(map[string]any)
	assert.Equal(t, "saved", receipt["status"])

	calendar := details["calendar"].(map[string]any)
	assert.Equal(t, "created", calendar["status"])

	delivery := details["delivery"].(map[string]any)
	assert.Equal(t, "scheduled", delivery["status"])
	assert.Equal(t, 35, delivery["eta_minutes"])

	// The receipt landed on disk.
	_, err = os.Stat(filepath.Join(dir, "order_abc12345.json"))
	assert.NoError(t, err)

	// The order was recorded in the history.
	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "abc12345", records[0]["order_id"])
	assert.Equal(t, 28.8, records[0]["total_price"])
}

func TestGetOrderHistory(t *testing.T) {
	store := memory.NewHistoryStore()
	s := NewScheduler(store, WithClock(fixedClock))
	ctx := context.Background()

	out, err := s.GetOrderHistory(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, out.(map[string]any)["count"])

	require.NoError(t, store.Append(ctx, map[string]any{"order_id": "a"}))
	require.NoError(t, store.Append(ctx, map[string]any{"order_id": "b"}))

	out, err = s.GetOrderHistory(ctx, nil)
	require.NoError(t, err)
	result := out.(map[string]any)
	assert.EqualValues(t, 2, result["count"])
	assert.Len(t, result["orders"], 2)
}

func TestSendNotification_Defaults(t *testing.T) {
	s := newTestScheduler(t)

	out, err := s.SendNotification(context.Background(), map[string]any{
		"recipient": "customer",
		"message":   "Pizza on the way",
	})
	require.NoError(t, err)

	n := out.(map[string]any)
	assert.Equal(t, "sent", n["status"])
	assert.Equal(t, "sms", n["type"])
	assert.Equal(t, "customer", n["recipient"])
}

func TestRegisterTools(t *testing.T) {
	s := newTestScheduler(t)
	reg := newLocalRegistry()
	s.RegisterTools(reg)

	var names []string
	for _, d := range reg.List() {
		names = append(names, d.ToolName)
	}
	assert.Equal(t, []string{
		"create_calendar_event",
		"get_order_history",
		"save_order_receipt",
		"schedule_delivery",
		"send_notification",
	}, names)

	history, ok := reg.Get("get_order_history")
	require.True(t, ok)
	assert.True(t, history.ReadOnly)
}
