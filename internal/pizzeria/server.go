// Package pizzeria hosts a small pizza ordering backend used by the demo
// workflow. It serves its own OpenAPI document at /openapi.json so the
// extractor can discover it the same way it would a remote service.
package pizzeria

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.json
var openapiDocument []byte

// OpenAPIDocument returns the raw OpenAPI description of this backend.
func OpenAPIDocument() []byte {
	return openapiDocument
}

// MenuItem describes one pizza on the menu.
type MenuItem struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Order is a placed order as stored and returned by the backend.
type Order struct {
	OrderID    string  `json:"order_id"`
	Status     string  `json:"status"`
	PizzaType  string  `json:"pizza_type"`
	Size       string  `json:"size"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
	ETAMinutes int     `json:"eta_minutes"`
	Notes      string  `json:"notes,omitempty"`
}

// OrderRequest is the body accepted by POST /orders.
type OrderRequest struct {
	PizzaType string `json:"pizza_type"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

var menu = map[string]MenuItem{
	"margherita": {
		Name:        "Margherita",
		Price:       12.00,
		Description: "Tomato, mozzarella, basil",
	},
	"pepperoni": {
		Name:        "Pepperoni",
		Price:       14.00,
		Description: "Tomato, mozzarella, pepperoni",
	},
	"quattro_formaggi": {
		Name:        "Quattro Formaggi",
		Price:       16.00,
		Description: "Four cheese blend",
	},
	"vegetarian": {
		Name:        "Vegetarian",
		Price:       13.00,
		Description: "Tomato, mozzarella, grilled vegetables",
	},
}

var sizeMultipliers = map[string]float64{
	"small":  0.8,
	"medium": 1.0,
	"large":  1.2,
}

// Server is the in-memory pizzeria backend.
type Server struct {
	mu     sync.Mutex
	orders map[string]*Order
	logger *slog.Logger
	newID  func() string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request-level events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithIDGenerator overrides order ID generation. Used in tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// New creates a pizzeria backend with an empty order book.
func New(opts ...Option) *Server {
	s := &Server{
		orders: make(map[string]*Order),
		logger: slog.Default(),
		newID: func() string {
			return uuid.NewString()[:8]
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for the backend, including the
// OpenAPI document and Prometheus metrics endpoints.
func (s *Server) Handler(reg prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(openapiDocument)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	r.Get("/menu", s.getMenu)
	r.Get("/menu/{pizza_type}", s.getMenuItem)
	r.Post("/orders", s.createOrder)
	r.Get("/orders/{order_id}", s.getOrder)
	r.Patch("/orders/{order_id}/cancel", s.cancelOrder)

	return r
}

func (s *Server) getMenu(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, menu)
}

func (s *Server) getMenuItem(w http.ResponseWriter, r *http.Request) {
	pizzaType := chi.URLParam(r, "pizza_type")
	item, ok := menu[pizzaType]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Pizza type '%s' not found", pizzaType))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("create order: invalid body", "err", err)
		return
	}

	item, ok := menu[req.PizzaType]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown pizza type '%s'", req.PizzaType))
		return
	}

	if req.Size == "" {
		req.Size = "large"
	}
	multiplier, ok := sizeMultipliers[req.Size]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown size '%s'", req.Size))
		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > 10 {
		writeError(w, http.StatusBadRequest, "Quantity must be between 1 and 10")
		return
	}

	order := &Order{
		OrderID:    s.newID(),
		Status:     "confirmed",
		PizzaType:  req.PizzaType,
		Size:       req.Size,
		Quantity:   req.Quantity,
		TotalPrice: round2(item.Price * multiplier * float64(req.Quantity)),
		ETAMinutes: 25 + 5*req.Quantity,
		Notes:      req.Notes,
	}

	s.mu.Lock()
	s.orders[order.OrderID] = order
	s.mu.Unlock()

	s.logger.Info("order placed",
		"order_id", order.OrderID,
		"pizza_type", order.PizzaType,
		"total", order.TotalPrice)
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	s.mu.Lock()
	order, ok := s.orders[orderID]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Order '%s' not found", orderID))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Order '%s' not found", orderID))
		return
	}
	if order.Status == "cancelled" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Order '%s' is already cancelled", orderID))
		return
	}
	order.Status = "cancelled"

	s.logger.Info("order cancelled", "order_id", orderID)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  fmt.Sprintf("Order %s has been cancelled", orderID),
		"order_id": orderID,
	})
}

// Run serves the backend on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string, reg prometheus.Gatherer) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(reg),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("pizzeria listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
