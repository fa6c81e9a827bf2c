/*
Package metrics instruments reposystem with Prometheus metrics, grounded on
warren's pkg/metrics (package-level prometheus.New*Vec vars, registered
once at init). Unlike warren, which runs a Collector ticker loop against a
live cluster manager, reposystem has no running daemon: metrics are updated
event-driven, by the executor on each non-dry-run Apply and Undo
(AppliesTotal, ApplyDuration). ReposTotal, EdgesTotal and BindingsTotal are
registered but nothing sets them, so they stay at zero.

Serving /metrics is opt-in: set REPOSYSTEM_METRICS_ADDR and Serve starts a
promhttp handler, the same opt-in wiring warren's cmd/warren/main.go applies
for its own /metrics endpoint.
*/
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReposTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reposystem_repos_total",
		Help: "Total number of repos in the graph store.",
	})

	EdgesTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reposystem_edges_total",
		Help: "Total number of edges in the graph store.",
	})

	BindingsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reposystem_bindings_total",
		Help: "Total number of slot bindings.",
	})

	AppliesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reposystem_applies_total",
		Help: "Total number of apply invocations by result.",
	}, []string{"result"})

	ApplyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reposystem_apply_duration_seconds",
		Help:    "Duration of apply invocations.",
		Buckets: prometheus.DefBuckets,
	})

	PlansDerivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reposystem_plans_derived_total",
		Help: "Total number of plans derived.",
	})
)

func init() {
	prometheus.MustRegister(ReposTotal, EdgesTotal, BindingsTotal, AppliesTotal, ApplyDuration, PlansDerivedTotal)
}

// Serve starts a blocking promhttp server on addr. Callers typically run it
// in a goroutine guarded by REPOSYSTEM_METRICS_ADDR being set.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

// Timer is a helper for timing operations, grounded on warren's
// pkg/metrics.Timer (used by pkg/manager and pkg/reconciler around their own
// apply-like operations).
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer, started now.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
