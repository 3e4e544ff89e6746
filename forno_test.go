package forno_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forno"
	"github.com/aretw0/forno/internal/pizzeria"
	"github.com/aretw0/forno/pkg/observability"
)

func startBackend(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(pizzeria.New().Handler(nil))
	t.Cleanup(ts.Close)
	return ts
}

func TestDiscover_ExtractsBackendTools(t *testing.T) {
	ts := startBackend(t)
	ctx := context.Background()

	tb, err := forno.Discover(ctx, ts.URL+"/openapi.json", ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "Pizza Legacy API", tb.Document().Title)

	var names []string
	for _, tool := range tb.Tools() {
		names = append(names, tool.ToolName)
	}
	assert.Equal(t, []string{
		"cancel_order",
		"create_order",
		"get_menu",
		"get_menu_item",
		"get_order",
	}, names)

	create, ok := tb.Registry().Get("create_order")
	require.True(t, ok)

	pizzaType, ok := create.Param("pizza_type")
	require.True(t, ok)
	assert.True(t, pizzaType.Required)

	size, ok := create.Param("size")
	require.True(t, ok)
	assert.False(t, size.Required)
	assert.Equal(t, "large", size.Default)

	quantity, ok := create.Param("quantity")
	require.True(t, ok)
	assert.EqualValues(t, 1, quantity.Default)
}

func TestToolbox_OrderRoundTrip(t *testing.T) {
	ts := startBackend(t)
	ctx := context.Background()

	tb, err := forno.Discover(ctx, ts.URL+"/openapi.json", ts.URL)
	require.NoError(t, err)

	created := tb.Call(ctx, "create_order", map[string]any{
		"pizza_type": "margherita",
		"quantity":   2,
	})
	require.True(t, created.Ok, created.Detail)

	payload := created.Payload.(map[string]any)
	orderID := payload["order_id"].(string)
	assert.Equal(t, "confirmed", payload["status"])
	assert.EqualValues(t, 28.8, payload["total_price"])

	fetched := tb.Call(ctx, "get_order", map[string]any{"order_id": orderID})
	require.True(t, fetched.Ok)
	assert.Equal(t, payload["order_id"], fetched.Payload.(map[string]any)["order_id"])

	cancelled := tb.Call(ctx, "cancel_order", map[string]any{"order_id": orderID})
	require.True(t, cancelled.Ok)
	assert.Contains(t, cancelled.Payload.(map[string]any)["message"], "has been cancelled")
}

func TestToolbox_ErrorsBecomeResults(t *testing.T) {
	ts := startBackend(t)
	ctx := context.Background()

	tb, err := forno.Discover(ctx, ts.URL+"/openapi.json", ts.URL)
	require.NoError(t, err)

	// Backend rejects the order: HTTP failure result, no fault.
	rejected := tb.Call(ctx, "create_order", map[string]any{"pizza_type": "anchovy"})
	assert.False(t, rejected.Ok)
	assert.Equal(t, 400, rejected.StatusCode)

	// Unknown tool: caller failure, no request.
	missing := tb.Call(ctx, "explode", nil)
	assert.False(t, missing.Ok)
	assert.Equal(t, "Tool 'explode' not found", missing.Detail)
}

func TestToolbox_ObserverWiring(t *testing.T) {
	ts := startBackend(t)
	ctx := context.Background()

	promReg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promReg)

	tb, err := forno.Discover(ctx, ts.URL+"/openapi.json", ts.URL,
		forno.WithObserver(metrics))
	require.NoError(t, err)

	tb.Call(ctx, "get_menu", nil)

	families, err := promReg.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "forno_tool_invocations_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLoad_FromRawDocument(t *testing.T) {
	tb, err := forno.Load(pizzeria.OpenAPIDocument(), "http://localhost:8000")
	require.NoError(t, err)
	assert.Len(t, tb.Tools(), 5)
}
