package forno

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/forno/pkg/domain"
	"github.com/aretw0/forno/pkg/invoker"
	"github.com/aretw0/forno/pkg/openapi"
	"github.com/aretw0/forno/pkg/registry"
)

// Version is the release identifier. Overridden at build time via ldflags.
var Version = "0.1.0"

// Toolbox is the high-level entry point for the Forno library.
// It binds an OpenAPI document to a live registry of callable tools.
type Toolbox struct {
	document *openapi.Document
	registry *registry.Registry
	baseURL  string

	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	observer   registry.Observer
}

// Option defines a functional option for configuring the Toolbox.
type Option func(*Toolbox)

// WithHTTPClient sets the client used for both document fetching and
// tool invocation.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Toolbox) {
		t.httpClient = client
	}
}

// WithTimeout bounds each tool invocation.
func WithTimeout(d time.Duration) Option {
	return func(t *Toolbox) {
		t.timeout = d
	}
}

// WithLogger sets a structured logger for the toolbox and its registry.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Toolbox) {
		t.logger = logger
	}
}

// WithObserver registers an observer notified after every invocation.
func WithObserver(obs registry.Observer) Option {
	return func(t *Toolbox) {
		t.observer = obs
	}
}

// New builds a Toolbox from an already parsed document. Every extracted
// operation becomes a registered tool targeting baseURL.
func New(doc *openapi.Document, baseURL string, opts ...Option) (*Toolbox, error) {
	t := &Toolbox{
		document:   doc,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		timeout:    invoker.DefaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	descriptors, err := doc.Extract()
	if err != nil {
		return nil, fmt.Errorf("failed to extract operations: %w", err)
	}

	inv := invoker.New(
		invoker.WithHTTPClient(t.httpClient),
		invoker.WithTimeout(t.timeout),
		invoker.WithLogger(t.logger),
	)

	regOpts := []registry.Option{registry.WithLogger(t.logger)}
	if t.observer != nil {
		regOpts = append(regOpts, registry.WithObserver(t.observer))
	}
	t.registry = registry.New(inv, baseURL, regOpts...)
	t.registry.RegisterOperations(descriptors)

	return t, nil
}

// Load builds a Toolbox from raw JSON or YAML document bytes.
func Load(raw []byte, baseURL string, opts ...Option) (*Toolbox, error) {
	doc, err := openapi.Load(raw)
	if err != nil {
		return nil, err
	}
	return New(doc, baseURL, opts...)
}

// Discover fetches the OpenAPI document from docURL and builds a
// Toolbox whose tools target baseURL.
func Discover(ctx context.Context, docURL, baseURL string, opts ...Option) (*Toolbox, error) {
	t := &Toolbox{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(t)
	}

	doc, err := openapi.Fetch(ctx, t.httpClient, docURL)
	if err != nil {
		return nil, err
	}
	return New(doc, baseURL, opts...)
}

// Registry exposes the underlying tool registry, so adapters (MCP,
// workflows) can register additional local tools and dispatch calls.
func (t *Toolbox) Registry() *registry.Registry {
	return t.registry
}

// Document returns the parsed OpenAPI document.
func (t *Toolbox) Document() *openapi.Document {
	return t.document
}

// Tools lists the registered operation descriptors sorted by name.
func (t *Toolbox) Tools() []domain.OperationDescriptor {
	return t.registry.List()
}

// Call invokes a registered tool by name. It never returns an error:
// every failure is captured in the result.
func (t *Toolbox) Call(ctx context.Context, name string, args map[string]any) domain.InvocationResult {
	return t.registry.Call(ctx, name, args)
}
