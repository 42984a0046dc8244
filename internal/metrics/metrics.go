// Package metrics records per-run counters and exports them as a Prometheus textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flowtagger"

// Metrics holds the collectors of one run.
type Metrics struct {
	registry *prometheus.Registry

	lookupRows       *prometheus.CounterVec
	lookupDuplicates prometheus.Counter
	flowLogLines     *prometheus.CounterVec
	records          *prometheus.CounterVec
	lastRun          prometheus.Gauge
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookupRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_rows_total",
			Help:      "Lookup table data rows by result.",
		}, []string{"result"}),
		lookupDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_duplicates_total",
			Help:      "Lookup table rows that overwrote an earlier entry for the same port and protocol.",
		}),
		flowLogLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flowlog_lines_total",
			Help:      "Flow log lines by result.",
		}, []string{"result"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Classified flow records by whether a lookup entry matched.",
		}, []string{"tagged"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last successful run finished.",
		}),
	}
	m.registry.MustRegister(m.lookupRows, m.lookupDuplicates, m.flowLogLines, m.records, m.lastRun)
	return m
}

// Registry returns the registry holding the run's collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveLookup records the outcome of loading the lookup table.
func (m *Metrics) ObserveLookup(loaded, skipped, duplicates int) {
	m.lookupRows.WithLabelValues("loaded").Add(float64(loaded))
	m.lookupRows.WithLabelValues("skipped").Add(float64(skipped))
	m.lookupDuplicates.Add(float64(duplicates))
}

// ObserveScan records the outcome of scanning the flow log.
func (m *Metrics) ObserveScan(classified, discarded, untagged uint64) {
	m.flowLogLines.WithLabelValues("classified").Add(float64(classified))
	m.flowLogLines.WithLabelValues("discarded").Add(float64(discarded))
	m.records.WithLabelValues("true").Add(float64(classified - untagged))
	m.records.WithLabelValues("false").Add(float64(untagged))
}

// MarkRun sets the last run timestamp.
func (m *Metrics) MarkRun(t time.Time) {
	m.lastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
