package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/forno/internal/logging"
	"github.com/aretw0/forno/pkg/domain"
	"github.com/aretw0/forno/pkg/ports"
	"github.com/aretw0/forno/pkg/registry"
)

// Scheduler bundles the delivery-side integrations: receipts on the
// filesystem, order history in a HistoryStore, and simulated notification
// and calendar services. It is constructed once by the process entry point
// and passed explicitly to whoever needs it; there is no ambient singleton.
type Scheduler struct {
	history     ports.HistoryStore
	receiptsDir string
	now         func() time.Time
	logger      *slog.Logger
}

// SchedulerOption configures the Scheduler.
type SchedulerOption func(*Scheduler)

// WithReceiptsDir sets the directory order receipts are written to.
func WithReceiptsDir(dir string) SchedulerOption {
	return func(s *Scheduler) {
		s.receiptsDir = dir
	}
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithSchedulerLogger configures a structured logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a Scheduler persisting history to the given store.
func NewScheduler(history ports.HistoryStore, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		history:     history,
		receiptsDir: "orders",
		now:         time.Now,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterTools adds the scheduling tools to a registry so they are
// callable by name next to the HTTP tools.
func (s *Scheduler) RegisterTools(reg *registry.Registry) {
	reg.RegisterFunc(domain.OperationDescriptor{
		ToolName: "schedule_delivery",
		Summary:  "Schedule pizza delivery: save the receipt, record the order in the history and create the delivery slot.",
		Parameters: []domain.ParameterDescriptor{
			{Name: "order_id", Location: domain.LocationBody, Type: domain.TypeString, Required: true, Description: "The order ID"},
			{Name: "pizza_type", Location: domain.LocationBody, Type: domain.TypeString, Required: true, Description: "Type of pizza ordered"},
			{Name: "eta_minutes", Location: domain.LocationBody, Type: domain.TypeInteger, Default: 30, Description: "Estimated delivery time in minutes"},
			{Name: "total_price", Location: domain.LocationBody, Type: domain.TypeNumber, Default: 0.0, Description: "Total order price"},
		},
	}, s.ScheduleDelivery)

	reg.RegisterFunc(domain.OperationDescriptor{
		ToolName: "create_calendar_event",
		Summary:  "Create a delivery event in the calendar.",
		Parameters: []domain.ParameterDescriptor{
			{Name: "order_id", Location: domain.LocationBody, Type: domain.TypeString, Required: true, Description: "Order ID for the delivery"},
			{Name: "pizza_type", Location: domain.LocationBody, Type: domain.TypeString, Required: true, Description: "Type of pizza ordered"},
			{Name: "eta_minutes", Location: domain.LocationBody, Type: domain.TypeInteger, Default: 30, Description: "Estimated delivery time"},
		},
	}, s.CreateCalendarEvent)

	reg.RegisterFunc(domain.OperationDescriptor{
		ToolName: "save_order_receipt",
		Summary:  "Save an order receipt to the receipts directory.",
		Parameters: []domain.ParameterDescriptor{
			{Name: "order_id", Location: domain.LocationBody, Type: domain.TypeString, Required: true, Description: "Order ID"},
			{Name: "order_data", Location: domain.LocationBody, Type: domain.TypeString, Required: true, Description: "JSON string of order data"},
		},
	}, s.SaveOrderReceipt)

	reg.RegisterFunc(domain.OperationDescriptor{
		ToolName: "get_order_history",
		Summary:  "Get the order history.",
		ReadOnly: true,
	}, s.GetOrderHistory)

	reg.RegisterFunc(domain.OperationDescriptor{
		ToolName: "send_notification",
		Summary:  "Send a notification to the customer via SMS, email or chat.",
		Parameters: []domain.ParameterDescriptor{
			{Name: "recipient", Location: domain.LocationBody, Type: domain.TypeString, Required: true, Description: "Phone, email, or channel"},
			{Name: "message", Location: domain.LocationBody, Type: domain.TypeString, Required: true, Description: "Notification message"},
			{Name: "notification_type", Location: domain.LocationBody, Type: domain.TypeString, Default: "sms", Description: "Type: sms, email, chat"},
		},
	}, s.SendNotification)
}

// ScheduleDelivery runs the complete delivery workflow: receipt, history
// record, calendar event and delivery slot.
func (s *Scheduler) ScheduleDelivery(ctx context.Context, args map[string]any) (any, error) {
	orderID := stringArg(args, "order_id", "unknown")
	eta := intArg(args, "eta_minutes", 30)

	details := map[string]any{}

	receipt, err := s.SaveOrderReceipt(ctx, map[string]any{
		"order_id":   orderID,
		"order_data": encodeArgs(args),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save receipt: %w", err)
	}
	details["receipt"] = receipt

	record := map[string]any{
		"order_id":     orderID,
		"pizza_type":   stringArg(args, "pizza_type", ""),
		"eta_minutes":  eta,
		"total_price":  floatArg(args, "total_price", 0),
		"status":       "confirmed",
		"scheduled_at": s.now().Format(time.RFC3339),
	}
	if err := s.history.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record order history: %w", err)
	}
	details["history"] = map[string]any{"status": "stored"}

	event, err := s.CreateCalendarEvent(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}
	details["calendar"] = event

	deliveryTime := s.now().Add(time.Duration(eta) * time.Minute)
	details["delivery"] = map[string]any{
		"status":         "scheduled",
		"order_id":       orderID,
		"scheduled_time": deliveryTime.Format(time.Kitchen),
		"eta_minutes":    eta,
	}

	s.logger.Info("delivery scheduled", "order_id", orderID, "eta_minutes", eta)
	return map[string]any{
		"status":  "success",
		"message": "Delivery scheduled",
		"details": details,
	}, nil
}

// CreateCalendarEvent simulates a calendar integration and returns the
// created event.
func (s *Scheduler) CreateCalendarEvent(ctx context.Context, args map[string]any) (any, error) {
	eta := intArg(args, "eta_minutes", 30)
	start := s.now().Add(time.Duration(eta) * time.Minute)

	return map[string]any{
		"status":   "created",
		"event_id": uuid.NewString(),
		"summary":  fmt.Sprintf("Pizza delivery: %s", stringArg(args, "pizza_type", "pizza")),
		"order_id": stringArg(args, "order_id", "unknown"),
		"start":    start.Format(time.RFC3339),
		"end":      start.Add(15 * time.Minute).Format(time.RFC3339),
	}, nil
}

// SaveOrderReceipt writes the order receipt as a JSON file under the
// receipts directory.
func (s *Scheduler) SaveOrderReceipt(ctx context.Context, args map[string]any) (any, error) {
	orderID := stringArg(args, "order_id", "")
	if orderID == "" {
		return nil, fmt.Errorf("order_id is required")
	}

	receipt := map[string]any{
		"order_id": orderID,
		"saved_at": s.now().Format(time.RFC3339),
	}
	if raw := stringArg(args, "order_data", ""); raw != "" {
		var orderData map[string]any
		if err := json.Unmarshal([]byte(raw), &orderData); err != nil {
			return nil, fmt.Errorf("invalid order_data: %w", err)
		}
		receipt["order"] = orderData
	}

	if err := os.MkdirAll(s.receiptsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipts dir: %w", err)
	}
	path := filepath.Join(s.receiptsDir, fmt.Sprintf("order_%s.json", orderID))
	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write receipt: %w", err)
	}

	return map[string]any{"status": "saved", "path": path}, nil
}

// GetOrderHistory lists the recorded orders.
func (s *Scheduler) GetOrderHistory(ctx context.Context, args map[string]any) (any, error) {
	records, err := s.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read order history: %w", err)
	}
	return map[string]any{
		"orders": records,
		"count":  len(records),
	}, nil
}

// SendNotification simulates a customer notification channel.
func (s *Scheduler) SendNotification(ctx context.Context, args map[string]any) (any, error) {
	return map[string]any{
		"status":    "sent",
		"type":      stringArg(args, "notification_type", "sms"),
		"recipient": stringArg(args, "recipient", ""),
		"message":   stringArg(args, "message", ""),
		"timestamp": s.now().Format(time.RFC3339),
	}, nil
}

func encodeArgs(args map[string]any) string {
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func stringArg(args map[string]any, name, fallback string) string {
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return fallback
}

func intArg(args map[string]any, name string, fallback int) int {
	switch v := args[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}

func floatArg(args map[string]any, name string, fallback float64) float64 {
	switch v := args[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return fallback
}
