// Package metrics records what a comparison run did, to be written as a
// node_exporter textfile after the run.
package metrics

import (
	"time"

	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sql_data_compare"

// Metrics stores the metrics of one run. A nil *Metrics records nothing.
type Metrics struct {
	reg *prometheus.Registry

	items            *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	connectionErrors *prometheus.CounterVec
	lastRunSuccess   prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
}

// NewMetrics creates a new set of metrics on its own registry.
func NewMetrics() *Metrics {
	var m Metrics
	m.reg = prometheus.NewRegistry()

	m.items = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_total",
		Help:      "Number of compared items by status.",
	}, []string{"status"})

	m.queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "query_duration_seconds",
		Help:      "Duration of successful query executions.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 4, 10),
	}, []string{"side", "kind"})

	m.connectionErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connection_errors_total",
		Help:      "Number of connections that could not be opened.",
	}, []string{"side", "kind"})

	m.lastRunSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_success",
		Help:      "1 if every item of the last run was equal, 0 otherwise.",
	})

	m.lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished.",
	})

	m.reg.MustRegister(
		m.items,
		m.queryDuration,
		m.connectionErrors,
		m.lastRunSuccess,
		m.lastRunTimestamp,
	)
	return &m
}

// ObserveOutcome counts one finished item.
func (m *Metrics) ObserveOutcome(status string) {
	if m == nil {
		return
	}
	m.items.WithLabelValues(status).Inc()
}

// ObserveQuery records the duration of a successful query.
func (m *Metrics) ObserveQuery(side, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(side, kind).Observe(d.Seconds())
}

// IncConnectionError counts a failed connection.
func (m *Metrics) IncConnectionError(side, kind string) {
	if m == nil {
		return
	}
	m.connectionErrors.WithLabelValues(side, kind).Inc()
}

// SetRunResult records the aggregate result of a run finished at at.
func (m *Metrics) SetRunResult(success bool, at time.Time) {
	if m == nil {
		return
	}
	if success {
		m.lastRunSuccess.Set(1)
	} else {
		m.lastRunSuccess.Set(0)
	}
	m.lastRunTimestamp.Set(float64(at.Unix()))
}

// Gatherer exposes the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.reg
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return errors.Trace(prometheus.WriteToTextfile(path, m.reg))
}
