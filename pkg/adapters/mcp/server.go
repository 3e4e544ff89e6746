// Package mcp exposes a tool registry as an MCP server, so any MCP
// client can discover and call the extracted API tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/forno/pkg/domain"
	"github.com/aretw0/forno/pkg/registry"
)

// Server wraps a tool registry and exposes it over MCP.
type Server struct {
	registry  *registry.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for tool call events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server publishing every tool in reg.
func NewServer(reg *registry.Registry, version string, opts ...Option) *Server {
	s := &Server{
		registry:  reg,
		logger:    slog.Default(),
		mcpServer: server.NewMCPServer("forno", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	for _, desc := range s.registry.List() {
		s.mcpServer.AddTool(toolFromDescriptor(desc), s.handlerFor(desc.ToolName))
	}
}

func (s *Server) handlerFor(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		result := s.registry.Call(ctx, name, args)
		rendered := result.Render()
		if !result.Ok {
			s.logger.Warn("tool call failed", "tool", name, "kind", string(result.Kind))
			return mcp.NewToolResultError(rendered), nil
		}
		return mcp.NewToolResultText(rendered), nil
	}
}

// toolFromDescriptor converts an operation descriptor into an MCP tool
// declaration, preserving requiredness, descriptions and defaults.
func toolFromDescriptor(desc domain.OperationDescriptor) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(desc.Summary),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:           desc.ToolName,
			ReadOnlyHint:    ptr(desc.ReadOnly),
			DestructiveHint: ptr(desc.Destructive),
		}),
	}
	for _, p := range desc.Parameters {
		opts = append(opts, parameterOption(p))
	}
	return mcp.NewTool(desc.ToolName, opts...)
}

func parameterOption(p domain.ParameterDescriptor) mcp.ToolOption {
	var props []mcp.PropertyOption
	if p.Required {
		props = append(props, mcp.Required())
	}
	if p.Description != "" {
		props = append(props, mcp.Description(p.Description))
	}

	switch p.Type {
	case domain.TypeInteger, domain.TypeNumber:
		if def, ok := numericDefault(p.Default); ok {
			props = append(props, mcp.DefaultNumber(def))
		}
		return mcp.WithNumber(p.Name, props...)
	case domain.TypeBoolean:
		if def, ok := p.Default.(bool); ok {
			props = append(props, mcp.DefaultBool(def))
		}
		return mcp.WithBoolean(p.Name, props...)
	case domain.TypeArray:
		return mcp.WithArray(p.Name, props...)
	case domain.TypeObject:
		return mcp.WithObject(p.Name, props...)
	default:
		if def, ok := p.Default.(string); ok {
			props = append(props, mcp.DefaultString(def))
		}
		return mcp.WithString(p.Name, props...)
	}
}

func numericDefault(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func ptr[T any](v T) *T {
	return &v
}
