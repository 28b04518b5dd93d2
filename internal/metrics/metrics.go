package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "zayana"

// Names of the counters the application increments.
const (
	OrdersCreated      = "orders_created"
	OrdersFailed       = "orders_failed"
	CartClearFailures  = "cart_clear_failures"
	IdempotentReplays  = "idempotent_replays"
	RateLimitedRequest = "rate_limited_requests"
)

var counterHelp = map[string]string{
	OrdersCreated:      "Orders committed from a cart.",
	OrdersFailed:       "Order transactions that failed to commit.",
	CartClearFailures:  "Carts left uncleared after their order was committed.",
	IdempotentReplays:  "Requests rejected because their Idempotency-Key was already in use.",
	RateLimitedRequest: "Requests rejected by the rate limiter.",
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Registry owns the application's prometheus collectors. A nil *Registry
// ignores all calls.
type Registry struct {
	reg *prometheus.Registry

	mu        sync.Mutex
	counters  map[string]prometheus.Counter
	durations *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := &Registry{
		reg:      prometheus.NewRegistry(),
		counters: make(map[string]prometheus.Counter, len(counterHelp)),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of service operations in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		r.durations,
	)
	for name := range counterHelp {
		r.counter(name)
	}
	return r
}

// counter returns the named counter, registering it on first use.
func (r *Registry) counter(name string) prometheus.Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.counters[name]; ok {
		return c
	}
	help, ok := counterHelp[name]
	if !ok {
		help = name
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name + "_total",
		Help:      help,
	})
	r.reg.MustRegister(c)
	r.counters[name] = c
	return c
}

func (r *Registry) Inc(name string) {
	if r == nil {
		return
	}
	r.counter(name).Inc()
}

// Observe records one duration for the named operation.
func (r *Registry) Observe(operation string, d time.Duration) {
	if r == nil {
		return
	}
	r.durations.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveSince is meant to be deferred with a started Timer.
func (r *Registry) ObserveSince(operation string, t *Timer) {
	r.Observe(operation, t.Duration())
}

// Value returns the current value of the named counter.
func (r *Registry) Value(name string) float64 {
	if r == nil {
		return 0
	}
	var m dto.Metric
	if err := r.counter(name).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// Observations returns how many durations were recorded for operation.
func (r *Registry) Observations(operation string) uint64 {
	if r == nil {
		return 0
	}
	var m dto.Metric
	h, ok := r.durations.WithLabelValues(operation).(prometheus.Metric)
	if !ok || h.Write(&m) != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

// Gather exposes the registry for tests and embedding.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	if r == nil {
		return nil, nil
	}
	return r.reg.Gather()
}

// Handler serves the registry in the prometheus text format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
