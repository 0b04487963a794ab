// Package metrics exposes Prometheus counters for sync cycles.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/bandsync/internal/models"
)

const namespace = "bandsync"

// CycleStats итоги одного цикла синхронизации
type CycleStats struct {
	Status    models.SyncStatus
	Duration  time.Duration
	Pulled    int
	Pushed    int
	Applied   int
	Merged    int
	Conflicts int
}

// Metrics набор метрик процесса
type Metrics struct {
	registry          *prometheus.Registry
	cycles            *prometheus.CounterVec
	cycleDuration     prometheus.Histogram
	entries           *prometheus.CounterVec
	conflicts         prometheus.Counter
	remoteRetries     *prometheus.CounterVec
	manifestConflicts prometheus.Counter
	lastSuccess       *prometheus.GaugeVec
}

// New creates metrics on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Sync cycles by resulting status.",
		}, []string{"status"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of sync cycles.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "entries_total",
			Help:      "Change log entries handled by sync, by direction.",
		}, []string{"direction"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "conflicts_total",
			Help:      "Conflicts reported to the user.",
		}),
		remoteRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cloud",
			Name:      "retries_total",
			Help:      "Retried remote calls by operation.",
		}, []string{"op"}),
		manifestConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "manifest",
			Name:      "write_conflicts_total",
			Help:      "Conditional writes lost to a concurrent writer.",
		}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last cycle that reached the remote.",
		}, []string{"group_id"}),
	}

	m.registry.MustRegister(
		m.cycles,
		m.cycleDuration,
		m.entries,
		m.conflicts,
		m.remoteRetries,
		m.manifestConflicts,
		m.lastSuccess,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry the metrics live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCycle records a finished sync cycle of groupID
func (m *Metrics) ObserveCycle(groupID string, s CycleStats) {
	if m == nil {
		return
	}

	m.cycles.WithLabelValues(string(s.Status)).Inc()
	m.cycleDuration.Observe(s.Duration.Seconds())
	m.entries.WithLabelValues("pulled").Add(float64(s.Pulled))
	m.entries.WithLabelValues("pushed").Add(float64(s.Pushed))
	m.entries.WithLabelValues("applied").Add(float64(s.Applied))
	m.entries.WithLabelValues("merged").Add(float64(s.Merged))
	m.conflicts.Add(float64(s.Conflicts))

	if s.Status == models.StatusUpToDate || s.Status == models.StatusConflictsDetected {
		m.lastSuccess.WithLabelValues(groupID).SetToCurrentTime()
	}
}

// RemoteRetry counts a retried remote call
func (m *Metrics) RemoteRetry(op string) {
	if m == nil {
		return
	}
	m.remoteRetries.WithLabelValues(op).Inc()
}

// ManifestConflict counts a lost conditional write
func (m *Metrics) ManifestConflict() {
	if m == nil {
		return
	}
	m.manifestConflicts.Inc()
}
