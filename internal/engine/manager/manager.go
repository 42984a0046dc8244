package manager

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"FlowTagger/internal/config"
	"FlowTagger/internal/engine/aggregator"
	"FlowTagger/internal/engine/classifier"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/logging"
	"FlowTagger/internal/lookup"
	"FlowTagger/internal/metrics"
	"FlowTagger/internal/model"
	"FlowTagger/internal/notification"
	"FlowTagger/internal/report"
	"FlowTagger/internal/writer" // Registers the optional writers
	"FlowTagger/pkg/flowlog"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Inputs names the files of one run.
type Inputs struct {
	FlowLog     string
	LookupTable string
	OutputDir   string
}

// ScanStats summarizes one pass over the flow log.
type ScanStats struct {
	Lines      uint64
	Classified uint64
	Discarded  uint64
	Untagged   uint64
}

// Manager runs the tagging pipeline: load the lookup table, classify the flow
// log, aggregate, and hand the report to the writers. Stages run strictly in sequence.
type Manager struct {
	cfg      *config.Config
	log      logrus.FieldLogger
	loader   *lookup.Loader
	writers  []model.Writer
	notifier model.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
	newRunID func() string

	writersSet bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithWriters replaces the optional writers built from config.
func WithWriters(writers ...model.Writer) Option {
	return func(m *Manager) {
		m.writers = writers
		m.writersSet = true
	}
}

// WithNotifier replaces the notifier built from config.
func WithNotifier(n model.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithLogger sets the logger used by the manager and the lookup loader.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = l }
}

// WithClock sets the time source for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRunID sets the run id generator.
func WithRunID(fn func() string) Option {
	return func(m *Manager) { m.newRunID = fn }
}

// NewManager creates a Manager. Optional writers are built from cfg unless
// WithWriters is given.
func NewManager(cfg *config.Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg,
		metrics:  metrics.New(),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}

	// A logger given as option is shared with the loader; otherwise the loader
	// logs under its own component.
	m.loader = &lookup.Loader{Log: m.log}
	if m.log == nil {
		m.log = logging.WithComponent("manager")
	}
	if !m.writersSet {
		m.writers = factory.Create(cfg)
	}
	if m.notifier == nil && cfg.Notification.Enabled {
		m.notifier = notification.NewEmailNotifier(cfg.Notification.SMTP)
	}
	return m
}

// Metrics returns the collectors updated by Run.
func (m *Manager) Metrics() *metrics.Metrics {
	return m.metrics
}

// Run executes the pipeline once. Errors are fatal for the run; failures of
// optional writers, the metrics textfile and the notifier are only logged.
func (m *Manager) Run(ctx context.Context, in Inputs) (*model.Report, error) {
	// 1. Prepare the output directory
	if err := os.MkdirAll(in.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// 2. Load the lookup table
	table, lstats, err := m.loader.Load(in.LookupTable)
	if err != nil {
		return nil, err
	}
	m.metrics.ObserveLookup(lstats.Loaded, lstats.Skipped, lstats.Duplicates)
	m.log.WithFields(logrus.Fields{
		"entries":    len(table),
		"skipped":    lstats.Skipped,
		"duplicates": lstats.Duplicates,
	}).Debug("Lookup table loaded.")

	// 3. Classify and aggregate the flow log
	counts, sstats, err := m.scan(in.FlowLog, classifier.New(table))
	if err != nil {
		return nil, err
	}
	m.metrics.ObserveScan(sstats.Classified, sstats.Discarded, sstats.Untagged)
	m.log.WithFields(logrus.Fields{
		"lines":      sstats.Lines,
		"classified": sstats.Classified,
		"discarded":  sstats.Discarded,
		"untagged":   sstats.Untagged,
	}).Debug("Flow log processed.")

	// 4. Build and write the reports
	r := report.Build(counts, report.Meta{
		RunID:       m.newRunID(),
		GeneratedAt: m.now(),
		FlowLog:     in.FlowLog,
		LookupTable: in.LookupTable,
	})
	if err := writer.NewCSVWriter(in.OutputDir).Write(ctx, r); err != nil {
		return nil, err
	}
	m.writeSinks(ctx, r)

	// 5. Export metrics and notify
	m.metrics.MarkRun(m.now())
	if path := m.cfg.Metrics.Textfile; path != "" {
		if err := m.metrics.WriteTextfile(path); err != nil {
			m.log.WithError(err).Warn("Failed to export metrics.")
		}
	}
	if m.notifier != nil {
		if err := notification.NotifyReport(m.notifier, m.cfg.Notification.Subject, r, m.cfg.Notification.Top); err != nil {
			m.log.WithError(err).Warn("Failed to send run summary.")
		}
	}

	return r, nil
}

func (m *Manager) scan(path string, c *classifier.Classifier) (model.Counts, ScanStats, error) {
	var stats ScanStats

	reader, err := flowlog.NewReader(path)
	if err != nil {
		return model.Counts{}, stats, err
	}
	defer reader.Close()

	agg := aggregator.New()
	lines, err := reader.ReadLines(func(line string) {
		cl, ok := c.Classify(line)
		if !ok {
			stats.Discarded++
			return
		}
		if cl.Tag == model.Untagged {
			stats.Untagged++
		}
		agg.Add(cl)
	})
	stats.Lines = uint64(lines)
	stats.Classified = agg.Total()
	if err != nil {
		return model.Counts{}, stats, err
	}

	return agg.Snapshot(), stats, nil
}

func (m *Manager) writeSinks(ctx context.Context, r *model.Report) {
	for _, w := range m.writers {
		if err := w.Write(ctx, r); err != nil {
			m.log.WithError(err).Errorf("Error writing report with writer '%s'.", w.Name())
			continue
		}
		m.log.Debugf("Report written with writer '%s'.", w.Name())
	}
}

// Close releases the connections held by the optional writers.
func (m *Manager) Close() error {
	var firstErr error
	for _, w := range m.writers {
		c, ok := w.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close writer '%s': %w", w.Name(), err)
		}
	}
	return firstErr
}
