// Package flow implements the two-stage ordering pipeline: an order-taking
// stage followed by a delivery-scheduling stage. The stages hand off a
// shared state; which concrete tool runs at each step is decided
// data-driven and deterministically, not by an agent loop.
package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/forno/internal/logging"
	"github.com/aretw0/forno/pkg/domain"
)

// Toolbox is the dispatch surface the pipeline drives.
// Implemented by registry.Registry.
type Toolbox interface {
	Call(ctx context.Context, name string, args map[string]any) domain.InvocationResult
}

// OrderRequest is the input to the order-taking stage.
type OrderRequest struct {
	PizzaType string
	Size      string
	Quantity  int
	Notes     string
	Recipient string // notification target, optional
}

// OrderInfo is the order confirmation decoded from the backend payload.
type OrderInfo struct {
	OrderID    string  `mapstructure:"order_id"`
	Status     string  `mapstructure:"status"`
	PizzaType  string  `mapstructure:"pizza_type"`
	Size       string  `mapstructure:"size"`
	Quantity   int     `mapstructure:"quantity"`
	TotalPrice float64 `mapstructure:"total_price"`
	EtaMinutes int     `mapstructure:"eta_minutes"`
	Notes      string  `mapstructure:"notes"`
}

// StepResult records a single tool call made by the pipeline.
type StepResult struct {
	Stage  string                  `json:"stage"`
	Tool   string                  `json:"tool"`
	Result domain.InvocationResult `json:"result"`
}

// State is the shared state handed from the order stage to the scheduling
// stage.
type State struct {
	Order     *OrderInfo   `json:"order,omitempty"`
	Steps     []StepResult `json:"steps"`
	Completed bool         `json:"completed"`
}

// Pipeline wires the two stages over a toolbox.
type Pipeline struct {
	tools         Toolbox
	orderToolName string
	logger        *slog.Logger
}

// PipelineOption configures the Pipeline.
type PipelineOption func(*Pipeline)

// WithOrderTool overrides the tool used to place the order
// (default "create_order").
func WithOrderTool(name string) PipelineOption {
	return func(p *Pipeline) {
		p.orderToolName = name
	}
}

// WithPipelineLogger configures a structured logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates the two-stage pipeline.
func NewPipeline(tools Toolbox, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		tools:         tools,
		orderToolName: "create_order",
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline: place the order, and if it confirmed with an
// order ID, schedule the delivery. A failed order stage ends the run with
// the failure recorded in the state; it is not an error of the pipeline
// itself.
func (p *Pipeline) Run(ctx context.Context, req OrderRequest) (*State, error) {
	state := &State{}

	if err := p.orderStage(ctx, state, req); err != nil {
		return state, err
	}
	if state.Order == nil || state.Order.OrderID == "" {
		// Nothing to schedule; mirror the conditional edge to the end node.
		return state, nil
	}
	if err := p.schedulingStage(ctx, state, req); err != nil {
		return state, err
	}
	state.Completed = true
	return state, nil
}

func (p *Pipeline) orderStage(ctx context.Context, state *State, req OrderRequest) error {
	args := map[string]any{
		"pizza_type": req.PizzaType,
	}
	if req.Size != "" {
		args["size"] = req.Size
	}
	if req.Quantity > 0 {
		args["quantity"] = req.Quantity
	}
	if req.Notes != "" {
		args["notes"] = req.Notes
	}

	result := p.call(ctx, state, "order", p.orderToolName, args)
	if !result.Ok {
		p.logger.Warn("order stage failed", "tool", p.orderToolName, "detail", result.Detail)
		return nil
	}

	var order OrderInfo
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &order,
		WeaklyTypedInput: true, // JSON numbers arrive as float64
	})
	if err != nil {
		return fmt.Errorf("failed to build order decoder: %w", err)
	}
	if err := decoder.Decode(result.Payload); err != nil {
		return fmt.Errorf("failed to decode order confirmation: %w", err)
	}
	state.Order = &order
	p.logger.Info("order placed", "order_id", order.OrderID, "pizza_type", order.PizzaType)
	return nil
}

func (p *Pipeline) schedulingStage(ctx context.Context, state *State, req OrderRequest) error {
	order := state.Order

	// schedule_delivery covers the rest of the workflow, calendar event
	// included, so the pipeline does not call create_calendar_event itself.
	p.call(ctx, state, "scheduling", "schedule_delivery", map[string]any{
		"order_id":    order.OrderID,
		"pizza_type":  order.PizzaType,
		"eta_minutes": order.EtaMinutes,
		"total_price": order.TotalPrice,
	})

	recipient := req.Recipient
	if recipient == "" {
		recipient = "customer"
	}
	p.call(ctx, state, "scheduling", "send_notification", map[string]any{
		"recipient": recipient,
		"message": fmt.Sprintf("Your %s pizza (order %s) will arrive in about %d minutes.",
			order.PizzaType, order.OrderID, order.EtaMinutes),
	})

	return nil
}

func (p *Pipeline) call(ctx context.Context, state *State, stage, tool string, args map[string]any) domain.InvocationResult {
	result := p.tools.Call(ctx, tool, args)
	state.Steps = append(state.Steps, StepResult{Stage: stage, Tool: tool, Result: result})
	return result
}
