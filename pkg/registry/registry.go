// Package registry manages the set of callable tools: HTTP tools derived
// from an OpenAPI document and locally implemented tools. It is the single
// data-driven dispatch point — a tool name plus an argument mapping in, a
// normalized invocation result out.
package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/forno/internal/logging"
	"github.com/aretw0/forno/pkg/domain"
)

// ToolFunc is the signature for a locally implemented tool. It receives a
// context and an argument mapping and returns a JSON-serializable result
// or an error.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// HTTPInvoker executes operation descriptors against an HTTP backend.
// Implemented by invoker.Invoker.
type HTTPInvoker interface {
	Invoke(ctx context.Context, desc domain.OperationDescriptor, baseURL string, args map[string]any) domain.InvocationResult
}

// Observer receives the outcome of every dispatched call. Implemented by
// observability.Metrics.
type Observer interface {
	ObserveInvocation(tool string, result domain.InvocationResult, elapsed time.Duration)
}

type entry struct {
	descriptor domain.OperationDescriptor
	fn         ToolFunc // nil for HTTP tools
}

// Registry is a thread-safe name-to-tool map.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]entry

	invoker  HTTPInvoker
	baseURL  string
	observer Observer
	logger   *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger configures a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithObserver registers an invocation observer (e.g. metrics).
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observer = o
	}
}

// New creates a registry dispatching HTTP tools through the given invoker
// against baseURL.
func New(inv HTTPInvoker, baseURL string, opts ...Option) *Registry {
	r := &Registry{
		tools:   make(map[string]entry),
		invoker: inv,
		baseURL: baseURL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterOperation adds an HTTP tool. An existing tool with the same name
// is overwritten.
func (r *Registry) RegisterOperation(desc domain.OperationDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[desc.ToolName] = entry{descriptor: desc}
}

// RegisterOperations adds a batch of HTTP tools.
func (r *Registry) RegisterOperations(descs []domain.OperationDescriptor) {
	for _, d := range descs {
		r.RegisterOperation(d)
	}
}

// RegisterFunc adds a locally implemented tool. The descriptor provides the
// name and parameter metadata used for listings and schema generation.
func (r *Registry) RegisterFunc(desc domain.OperationDescriptor, fn ToolFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[desc.ToolName] = entry{descriptor: desc, fn: fn}
}

// Get returns the descriptor for a tool name.
func (r *Registry) Get(name string) (domain.OperationDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	return e.descriptor, ok
}

// List returns all registered descriptors sorted by tool name.
func (r *Registry) List() []domain.OperationDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]domain.OperationDescriptor, 0, len(r.tools))
	for _, e := range r.tools {
		descs = append(descs, e.descriptor)
	}
	sort.Slice(descs, func(i, j int) bool {
		return descs[i].ToolName < descs[j].ToolName
	})
	return descs
}

// Call dispatches a tool by name. An unknown name yields a caller failure
// and issues no HTTP request. Local tool errors become failure results,
// never propagated faults.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) domain.InvocationResult {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn("unknown tool requested", "tool", name)
		return domain.CallerFailuref("Tool '%s' not found", name)
	}

	start := time.Now()
	var result domain.InvocationResult
	if e.fn != nil {
		result = r.callLocal(ctx, e, args)
	} else {
		result = r.invoker.Invoke(ctx, e.descriptor, r.baseURL, args)
	}

	if r.observer != nil {
		r.observer.ObserveInvocation(name, result, time.Since(start))
	}
	r.logger.Debug("tool call completed",
		"tool", name,
		"ok", result.Ok,
		"kind", string(result.Kind),
	)
	return result
}

func (r *Registry) callLocal(ctx context.Context, e entry, args map[string]any) domain.InvocationResult {
	payload, err := e.fn(ctx, args)
	if err != nil {
		return domain.TransportFailure(err)
	}
	return domain.Success(payload)
}
