// Package metrics provides Prometheus metrics for the monitor loop.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Tick results used as the "result" label of ticks_total.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// MonitorMetrics contains all Prometheus metrics related to the monitor loop.
type MonitorMetrics struct {
	Ticks              *prometheus.CounterVec
	Alerts             *prometheus.CounterVec
	TickErrors         *prometheus.CounterVec
	Streak             prometheus.Gauge
	RecognitionSeconds prometheus.Histogram
	TickSeconds        prometheus.Histogram
}

// NewMonitorMetrics creates the monitor metrics and registers them with
// registry. It returns an error if registration fails.
func NewMonitorMetrics(registry *prometheus.Registry) (*MonitorMetrics, error) {
	m := &MonitorMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register monitor metrics: %w", err)
	}
	return m, nil
}

func (m *MonitorMetrics) initMetrics() {
	m.Ticks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "screen_alert_ticks_total",
		Help: "Total number of monitor ticks partitioned by result.",
	}, []string{"result"})

	m.Alerts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "screen_alert_alerts_total",
		Help: "Total number of confirmed alerts partitioned by the sound step that played.",
	}, []string{"step"})

	m.TickErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "screen_alert_tick_errors_total",
		Help: "Total number of failed ticks partitioned by pipeline stage.",
	}, []string{"stage"})

	m.Streak = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "screen_alert_match_streak",
		Help: "Current number of consecutive matching ticks.",
	})

	m.RecognitionSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "screen_alert_recognition_duration_seconds",
		Help:    "Duration of OCR recognition in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	m.TickSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "screen_alert_tick_duration_seconds",
		Help:    "Duration of a full tick from capture to alert in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
}

// Describe implements prometheus.Collector.
func (m *MonitorMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Ticks.Describe(ch)
	m.Alerts.Describe(ch)
	m.TickErrors.Describe(ch)
	m.Streak.Describe(ch)
	m.RecognitionSeconds.Describe(ch)
	m.TickSeconds.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *MonitorMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Ticks.Collect(ch)
	m.Alerts.Collect(ch)
	m.TickErrors.Collect(ch)
	m.Streak.Collect(ch)
	m.RecognitionSeconds.Collect(ch)
	m.TickSeconds.Collect(ch)
}

// The recording methods are no-ops on a nil *MonitorMetrics.

// RecordTick counts a tick with the given result.
func (m *MonitorMetrics) RecordTick(result string) {
	if m == nil {
		return
	}
	m.Ticks.WithLabelValues(result).Inc()
}

// RecordAlert counts an alert raised through step.
func (m *MonitorMetrics) RecordAlert(step string) {
	if m == nil {
		return
	}
	m.Alerts.WithLabelValues(step).Inc()
}

// RecordTickError counts a failure in stage.
func (m *MonitorMetrics) RecordTickError(stage string) {
	if m == nil {
		return
	}
	m.TickErrors.WithLabelValues(stage).Inc()
}

// SetStreak updates the consecutive hit gauge.
func (m *MonitorMetrics) SetStreak(hits int) {
	if m == nil {
		return
	}
	m.Streak.Set(float64(hits))
}

// ObserveRecognition records an OCR duration in seconds.
func (m *MonitorMetrics) ObserveRecognition(seconds float64) {
	if m == nil {
		return
	}
	m.RecognitionSeconds.Observe(seconds)
}

// ObserveTick records a tick duration in seconds.
func (m *MonitorMetrics) ObserveTick(seconds float64) {
	if m == nil {
		return
	}
	m.TickSeconds.Observe(seconds)
}
