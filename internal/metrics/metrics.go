// Package metrics provides Prometheus metrics for scans.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/burace17/disk-analyzer/internal/report"
	"github.com/burace17/disk-analyzer/internal/tree"
)

// Metrics owns its registry so tests and multiple instances do not collide.
type Metrics struct {
	registry *prometheus.Registry

	scansTotal      *prometheus.CounterVec
	directoriesSeen prometheus.Counter
	filesSeen       prometheus.Counter
	bytesMeasured   prometheus.Counter
	directoryErrors *prometheus.CounterVec
	scanDuration    prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		scansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diskanalyzer_scans_total",
				Help: "Total number of scans by outcome",
			},
			[]string{"outcome"},
		),
		directoriesSeen: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "diskanalyzer_directories_scanned_total",
				Help: "Directories present in finished scan trees",
			},
		),
		filesSeen: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "diskanalyzer_files_scanned_total",
				Help: "Files present in finished scan trees",
			},
		),
		bytesMeasured: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "diskanalyzer_bytes_measured_total",
				Help: "Bytes measured by finished scans",
			},
		),
		directoryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diskanalyzer_directory_errors_total",
				Help: "Directories that could not be fully read, by kind",
			},
			[]string{"kind"},
		),
		scanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diskanalyzer_scan_duration_seconds",
				Help:    "Wall time of a scan",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
		),
	}
}

// ObserveScan records one finished scan tree.
func (m *Metrics) ObserveScan(root *tree.Directory, duration time.Duration) {
	m.scansTotal.WithLabelValues(string(report.OutcomeOf(root))).Inc()
	m.scanDuration.Observe(duration.Seconds())
	if root == nil {
		return
	}

	stats := tree.Collect(root)
	m.directoriesSeen.Add(float64(stats.Directories))
	m.filesSeen.Add(float64(stats.Files))
	m.bytesMeasured.Add(float64(stats.Bytes))

	_ = tree.Walk(root, func(d *tree.Directory, _ int) error {
		if err := d.Err(); err != nil {
			m.directoryErrors.WithLabelValues(errorLabel(err)).Inc()
		}
		return nil
	})
}

func errorLabel(err *tree.ReadError) string {
	if err.Kind == tree.KindCancelled {
		return "cancelled"
	}
	return string(err.IO)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
