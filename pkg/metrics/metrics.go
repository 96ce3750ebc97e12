// Package metrics provides scan metrics for pairscan using Prometheus.
//
// Each scan gets its own registry, so a process that runs several scans
// (tests, the benchmark driver) never collides on metric registration.
// The CLI exports the registry once, at exit, in the node-exporter
// textfile format.
//
// # Basic Usage
//
//	m := metrics.NewScanMetrics("pairscan")
//	timer := metrics.NewTimer("corr")
//	runScan()
//	m.ObserveScan("corr", "within", pairs, matches, timer.Stop())
//	_ = m.WriteTextfile("/var/lib/node_exporter/pairscan.prom")
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/pairscan/pkg/errors"
)

// ScanMetrics holds the counters and histograms recorded by the scanners.
type ScanMetrics struct {
	registry      *prometheus.Registry
	PairsExamined *prometheus.CounterVec   // candidate pairs evaluated
	Matches       *prometheus.CounterVec   // pairs that cleared the threshold
	ScanDuration  *prometheus.HistogramVec // wall time of the enumeration
	MatrixCells   *prometheus.GaugeVec     // rows × cols of each loaded table
	Workers       prometheus.Gauge         // size of the worker pool
}

// NewScanMetrics creates the metric set on a fresh registry.
func NewScanMetrics(namespace string) *ScanMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &ScanMetrics{
		registry: reg,
		PairsExamined: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pairs_examined_total",
				Help:      "Total number of candidate pairs evaluated",
			},
			[]string{"scanner", "mode"},
		),
		Matches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "matches_total",
				Help:      "Total number of pairs that cleared the threshold",
			},
			[]string{"scanner", "mode"},
		),
		ScanDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_seconds",
				Help:      "Wall time of the pair enumeration",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
			},
			[]string{"scanner", "mode"},
		),
		MatrixCells: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "matrix_cells",
				Help:      "Number of cells in each loaded table",
			},
			[]string{"role"},
		),
		Workers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "workers",
				Help:      "Number of scan goroutines",
			},
		),
	}
}

// Registry returns the registry holding the scan metrics.
func (m *ScanMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveScan records one completed enumeration.
func (m *ScanMetrics) ObserveScan(scanner, mode string, pairs, matches int64, d time.Duration) {
	m.PairsExamined.WithLabelValues(scanner, mode).Add(float64(pairs))
	m.Matches.WithLabelValues(scanner, mode).Add(float64(matches))
	m.ScanDuration.WithLabelValues(scanner, mode).Observe(d.Seconds())
}

// SetMatrix records the size of a loaded table under role ("source" or "target").
func (m *ScanMetrics) SetMatrix(role string, rows, cols int) {
	m.MatrixCells.WithLabelValues(role).Set(float64(rows) * float64(cols))
}

// WriteTextfile writes the registry in the Prometheus text format. The
// file is replaced atomically.
func (m *ScanMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to write metrics file").
			WithDetail("path", path)
	}
	return nil
}

// Timer measures elapsed time for an operation.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer's name.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It can be called
// more than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
