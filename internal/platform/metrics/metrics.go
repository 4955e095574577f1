// Package metrics collects and exposes Prometheus metrics for roster imports
// and projection lookups.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services report to. Nop satisfies it for tests and
// wiring without a registry.
type Recorder interface {
	RecordImport(dialect string, rows, rowErrors int)
	RecordImportFailure(reason string)
	RecordMatch(method string)
	RecordProjectionFetch(horizon, outcome string, duration time.Duration)
	RecordProjectionCache(horizon, result string)
	RecordCircuitState(dependency, state string)
}

type Collector struct {
	imports         *prometheus.CounterVec
	importFailures  *prometheus.CounterVec
	importedRows    *prometheus.CounterVec
	skippedRows     *prometheus.CounterVec
	matches         *prometheus.CounterVec
	fetches         *prometheus.CounterVec
	fetchLatency    *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	circuitOpenings *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_roster_imports_total",
			Help: "Completed roster uploads by dialect.",
		}, []string{"dialect"}),
		importFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_roster_import_failures_total",
			Help: "Rejected roster uploads by reason.",
		}, []string{"reason"}),
		importedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_roster_rows_imported_total",
			Help: "Roster rows stored by dialect.",
		}, []string{"dialect"}),
		skippedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_roster_rows_skipped_total",
			Help: "Roster rows skipped as unparsable by dialect.",
		}, []string{"dialect"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_roster_player_matches_total",
			Help: "Identity resolutions by method.",
		}, []string{"method"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_roster_projection_fetches_total",
			Help: "Projection provider fetches by horizon and outcome.",
		}, []string{"horizon", "outcome"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fantasy_roster_projection_fetch_seconds",
			Help:    "Projection provider fetch latency.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"horizon"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_roster_projection_cache_total",
			Help: "Projection cache lookups by horizon and result (hit, miss, stale).",
		}, []string{"horizon", "result"}),
		circuitOpenings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_roster_circuit_transitions_total",
			Help: "Circuit breaker transitions by dependency and new state.",
		}, []string{"dependency", "state"}),
	}

	reg.MustRegister(
		c.imports,
		c.importFailures,
		c.importedRows,
		c.skippedRows,
		c.matches,
		c.fetches,
		c.fetchLatency,
		c.cacheLookups,
		c.circuitOpenings,
	)
	return c
}

func (c *Collector) RecordImport(dialect string, rows, rowErrors int) {
	c.imports.WithLabelValues(dialect).Inc()
	c.importedRows.WithLabelValues(dialect).Add(float64(rows))
	c.skippedRows.WithLabelValues(dialect).Add(float64(rowErrors))
}

func (c *Collector) RecordImportFailure(reason string) {
	c.importFailures.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordMatch(method string) {
	c.matches.WithLabelValues(method).Inc()
}

func (c *Collector) RecordProjectionFetch(horizon, outcome string, duration time.Duration) {
	c.fetches.WithLabelValues(horizon, outcome).Inc()
	c.fetchLatency.WithLabelValues(horizon).Observe(duration.Seconds())
}

func (c *Collector) RecordProjectionCache(horizon, result string) {
	c.cacheLookups.WithLabelValues(horizon, result).Inc()
}

func (c *Collector) RecordCircuitState(dependency, state string) {
	c.circuitOpenings.WithLabelValues(dependency, state).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type nop struct{}

// Nop discards every observation.
var Nop Recorder = nop{}

func (nop) RecordImport(string, int, int) {}
func (nop) RecordImportFailure(string) {}
func (nop) RecordMatch(string) {}
func (nop) RecordProjectionFetch(string, string, time.Duration) {}
func (nop) RecordProjectionCache(string, string) {}
func (nop) RecordCircuitState(string, string) {}
