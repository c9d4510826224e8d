// Package metrics provides Prometheus metrics for the shuttle board.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors of one process.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Board
	ActiveRuns        *prometheus.GaugeVec
	ViewBuildDuration prometheus.Histogram
	BoardFramesTotal  *prometheus.CounterVec

	// Asset cache worker
	AssetRequestsTotal *prometheus.CounterVec

	// Snapshot publisher
	PublishTotal *prometheus.CounterVec

	// Preferences database
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBWaitSecondsTotal prometheus.Counter

	logger *slog.Logger

	// collectorStarted prevents spawning multiple collector goroutines
	collectorStarted atomic.Bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// New creates and registers all metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shuttle_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shuttle_http_request_duration_seconds",
				Help:    "HTTP request latency distribution",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ActiveRuns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shuttle_active_runs",
				Help: "Runs currently projected on the route",
			},
			[]string{"direction"},
		),
		ViewBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shuttle_view_build_duration_seconds",
			Help:    "Time to compute one board view",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		BoardFramesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shuttle_board_frames_total",
				Help: "Frames emitted by the board loop by trigger",
			},
			[]string{"trigger"},
		),
		AssetRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shuttle_asset_requests_total",
				Help: "Asset worker responses by source",
			},
			[]string{"source"},
		),
		PublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shuttle_snapshot_publish_total",
				Help: "Live snapshots published by outcome",
			},
			[]string{"status"},
		),
		DBConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shuttle_prefs_db_connections_open",
			Help: "Number of open preference database connections",
		}),
		DBConnectionsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shuttle_prefs_db_connections_in_use",
			Help: "Number of preference database connections currently in use",
		}),
		DBConnectionsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shuttle_prefs_db_connections_idle",
			Help: "Number of idle preference database connections",
		}),
		DBWaitSecondsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shuttle_prefs_db_wait_seconds_total",
			Help: "Total time blocked waiting for a preference database connection",
		}),
		logger: logger,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ActiveRuns,
		m.ViewBuildDuration,
		m.BoardFramesTotal,
		m.AssetRequestsTotal,
		m.PublishTotal,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
		m.DBConnectionsIdle,
		m.DBWaitSecondsTotal,
	)

	return m
}

// ObserveView records one computed view.
func (m *Metrics) ObserveView(direction string, activeRuns int, took time.Duration) {
	if m == nil {
		return
	}
	m.ActiveRuns.WithLabelValues(direction).Set(float64(activeRuns))
	m.ViewBuildDuration.Observe(took.Seconds())
}

// StartDBStatsCollector periodically copies db pool statistics into the
// DB gauges. It is idempotent; Shutdown stops it.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if db == nil {
		return
	}
	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	var lastWaitDuration time.Duration

	// Add before exposing cancel so Shutdown cannot miss the goroutine
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil && m.logger != nil {
				m.logger.Error("panic in DB stats collector", "error", r)
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats := db.Stats()
				m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
				m.DBConnectionsInUse.Set(float64(stats.InUse))
				m.DBConnectionsIdle.Set(float64(stats.Idle))

				waitDelta := stats.WaitDuration - lastWaitDuration
				if waitDelta > 0 {
					m.DBWaitSecondsTotal.Add(waitDelta.Seconds())
				}
				lastWaitDuration = stats.WaitDuration

			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the DB stats collector and waits for it to exit. Safe to
// call more than once.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
