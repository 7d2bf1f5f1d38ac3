// Package metrics provides Prometheus metrics for shuttlestats runs.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric exported by a shuttlestats run.
//
// A run is a batch job, so nothing is scraped: the registry is flushed to a
// node_exporter textfile at the end of the run via WriteTextfile.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	// Per-shuttle results
	submissions     *prometheus.GaugeVec
	tileUtilisation *prometheus.GaugeVec

	// Schedule
	nearestDeadlineDays prometheus.Gauge
	logAxis             prometheus.Gauge

	// Data quality
	skippedSubmissions prometheus.Counter

	// Loading
	loadDuration *prometheus.HistogramVec
	apiResponses *prometheus.CounterVec

	// Output
	chartsWritten prometheus.Counter
	lastRunUnix   prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide singleton

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "shuttlestats",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	shuttleLabels := []string{"shuttle_id", "shuttle"}

	m.submissions = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "submissions",
		Help:        "Cumulative number of submissions per shuttle at the end of the run",
		ConstLabels: m.constLabels,
	}, shuttleLabels)

	m.tileUtilisation = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tile_utilisation_percent",
		Help:        "Cumulative tile utilisation per shuttle as a percentage of capacity",
		ConstLabels: m.constLabels,
	}, shuttleLabels)

	m.nearestDeadlineDays = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "nearest_deadline_days",
		Help:        "Days until the nearest upcoming shuttle deadline",
		ConstLabels: m.constLabels,
	})

	m.logAxis = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "log_axis",
		Help:        "1 when charts were rendered with a logarithmic time axis",
		ConstLabels: m.constLabels,
	})

	m.skippedSubmissions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "skipped_submissions_total",
		Help:        "Submissions dropped because their shuttle id is unknown",
		ConstLabels: m.constLabels,
	})

	m.loadDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "load_duration_seconds",
		Help:        "Time spent loading the dataset by source kind",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"source"})

	m.apiResponses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "api_responses_total",
		Help:        "Responses received from the submission-stats API by status code",
		ConstLabels: m.constLabels,
	}, []string{"status_code"})

	m.chartsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "charts_written_total",
		Help:        "Chart images written to disk",
		ConstLabels: m.constLabels,
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_unix",
		Help:        "Unix timestamp of the last completed run",
		ConstLabels: m.constLabels,
	})
}

// ResetShuttles clears per-shuttle gauges so a re-run does not keep series
// for shuttles that disappeared from the data.
func (m *Manager) ResetShuttles() {
	m.submissions.Reset()
	m.tileUtilisation.Reset()
}

// SetSubmissions records the final cumulative count of one shuttle.
func (m *Manager) SetSubmissions(shuttleID int, name string, count int) {
	m.submissions.WithLabelValues(strconv.Itoa(shuttleID), name).Set(float64(count))
}

// SetTileUtilisation records the final utilisation percentage of one shuttle.
func (m *Manager) SetTileUtilisation(shuttleID int, name string, pct float64) {
	m.tileUtilisation.WithLabelValues(strconv.Itoa(shuttleID), name).Set(pct)
}

// SetNearestDeadlineDays records the distance to the nearest deadline.
func (m *Manager) SetNearestDeadlineDays(days float64) {
	m.nearestDeadlineDays.Set(days)
}

// SetLogAxis records whether the log axis was used.
func (m *Manager) SetLogAxis(enabled bool) {
	if enabled {
		m.logAxis.Set(1)
		return
	}
	m.logAxis.Set(0)
}

// AddSkippedSubmissions increments the unknown-shuttle counter.
func (m *Manager) AddSkippedSubmissions(n int) {
	if n > 0 {
		m.skippedSubmissions.Add(float64(n))
	}
}

// ObserveLoad records how long loading took for a source kind.
func (m *Manager) ObserveLoad(source string, d time.Duration) {
	m.loadDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RecordAPIResponse counts one API response by status code.
func (m *Manager) RecordAPIResponse(statusCode int) {
	m.apiResponses.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordChartWritten counts one written chart image.
func (m *Manager) RecordChartWritten() {
	m.chartsWritten.Inc()
}

// MarkRun stamps the completion time of a run.
func (m *Manager) MarkRun(at time.Time) {
	m.lastRunUnix.Set(float64(at.Unix()))
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry in the Prometheus text format to path,
// via a temp file and rename, for the node_exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteTextfile, path, err)
	}
	return nil
}

// Global returns the process-wide manager.
func Global() *Manager {
	return globalManager
}
