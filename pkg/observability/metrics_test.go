package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/forno/pkg/domain"
)

func TestObserveInvocation_Outcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveInvocation("get_menu", domain.Success(nil), 10*time.Millisecond)
	m.ObserveInvocation("get_menu", domain.Success(nil), 5*time.Millisecond)
	m.ObserveInvocation("get_order", domain.HTTPStatusFailure(404, "HTTP 404"), time.Millisecond)
	m.ObserveInvocation("get_order", domain.TransportFailure(errors.New("refused")), time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.invocations.WithLabelValues("get_menu", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.invocations.WithLabelValues("get_order", "http_status")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.invocations.WithLabelValues("get_order", "transport")))
}

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveInvocation("t", domain.Success(nil), time.Millisecond)

	families, err := reg.Gather()
	assert.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "forno_tool_invocations_total")
	assert.Contains(t, names, "forno_tool_duration_seconds")
}
