package metrics

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestRegistry_CounterConcurrent(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Inc(OrdersCreated)
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(50), r.Value(OrdersCreated))
	assert.Equal(t, float64(0), r.Value(OrdersFailed))
}

func TestRegistry_RegistersKnownCounters(t *testing.T) {
	r := NewRegistry()

	families, err := r.Gather()
	require.NoError(t, err)

	for _, name := range []string{
		"zayana_orders_created_total",
		"zayana_orders_failed_total",
		"zayana_cart_clear_failures_total",
		"zayana_idempotent_replays_total",
		"zayana_rate_limited_requests_total",
	} {
		f := findFamily(families, name)
		require.NotNil(t, f, name)
		assert.Equal(t, dto.MetricType_COUNTER, f.GetType())
	}
}

func TestRegistry_Observe(t *testing.T) {
	r := NewRegistry()
	r.Observe("order.create", 10*time.Millisecond)
	r.Observe("order.create", 30*time.Millisecond)
	r.Observe("cart.add", time.Millisecond)

	assert.Equal(t, uint64(2), r.Observations("order.create"))
	assert.Equal(t, uint64(1), r.Observations("cart.add"))

	families, err := r.Gather()
	require.NoError(t, err)
	f := findFamily(families, "zayana_operation_duration_seconds")
	require.NotNil(t, f)
	assert.Equal(t, dto.MetricType_HISTOGRAM, f.GetType())
	assert.Len(t, f.GetMetric(), 2)
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.Inc(IdempotentReplays)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "zayana_idempotent_replays_total 1")
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.Inc(CartClearFailures)
		r.Observe("x", time.Second)
		r.ObserveSince("x", StartTimer())
	})
	assert.Zero(t, r.Value(CartClearFailures))
	assert.Zero(t, r.Observations("x"))

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
