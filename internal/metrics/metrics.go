// Package metrics exposes prometheus counters for bill saves, lifecycle
// transitions, imports and RPC latency.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fdbms"

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	saves       *prometheus.CounterVec
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	imports     *prometheus.CounterVec
	prints      *prometheus.CounterVec
	rpcs        *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, alongside the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_saves_total",
			Help:      "Bills saved, by kind and whether attachment data was stripped.",
		}, []string{"kind", "stripped"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transitions_total",
			Help:      "Bill lifecycle transitions, by kind and target status.",
		}, []string{"kind", "status"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Requests refused because a precondition did not hold.",
		}, []string{"operation"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_records_total",
			Help:      "Imported records, by collection and outcome.",
		}, []string{"collection", "outcome"}),
		prints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prints_total",
			Help:      "Bills sent to the printer, by result.",
		}, []string{"result"}),
		rpcs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency, by procedure and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.saves, m.transitions, m.rejections, m.imports, m.prints, m.rpcs,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Saved counts one bill save.
func (m *Metrics) Saved(kind string, stripped bool) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(kind, strconv.FormatBool(stripped)).Inc()
}

// Transitioned counts n bills moved to status.
func (m *Metrics) Transitioned(kind, status string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.transitions.WithLabelValues(kind, status).Add(float64(n))
}

// Rejected counts n refused requests for operation.
func (m *Metrics) Rejected(operation string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.rejections.WithLabelValues(operation).Add(float64(n))
}

// Imported counts the outcome of an import into collection.
func (m *Metrics) Imported(collection string, added, updated, removed, skipped int) {
	if m == nil {
		return
	}
	for outcome, n := range map[string]int{
		"added":   added,
		"updated": updated,
		"removed": removed,
		"skipped": skipped,
	} {
		if n > 0 {
			m.imports.WithLabelValues(collection, outcome).Add(float64(n))
		}
	}
}

// Printed counts the printer results of a batch.
func (m *Metrics) Printed(ok, failed int) {
	if m == nil {
		return
	}
	if ok > 0 {
		m.prints.WithLabelValues("ok").Add(float64(ok))
	}
	if failed > 0 {
		m.prints.WithLabelValues("failed").Add(float64(failed))
	}
}

// ObserveRPC records the latency of one RPC.
func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcs.WithLabelValues(procedure, code).Observe(d.Seconds())
}
