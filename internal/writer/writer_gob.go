package writer

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"FlowTagger/internal/config"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/model"
)

const (
	// SnapshotFile is the gob encoded report inside a snapshot directory.
	SnapshotFile = "report.gob"
	// SummaryFile is the JSON summary inside a snapshot directory.
	SummaryFile = "summary.json"

	snapshotTimeLayout = "2006-01-02_15-04-05"
)

func init() {
	factory.RegisterWriter("gob", func(def config.WriterDef) (model.Writer, error) {
		if def.Gob.RootPath == "" {
			return nil, fmt.Errorf("gob writer requires root_path")
		}
		return NewGobWriter(def.Gob.RootPath), nil
	})
}

// SummaryData holds the metadata for a snapshot.
type SummaryData struct {
	RunID                 string `json:"run_id"`
	FlowLog               string `json:"flow_log"`
	LookupTable           string `json:"lookup_table"`
	TotalRecords          uint64 `json:"total_records"`
	DistinctTags          int    `json:"distinct_tags"`
	DistinctPortProtocols int    `json:"distinct_port_protocols"`
	Timestamp             string `json:"timestamp"`
}

// GobWriter handles writing report snapshots to disk in gob format.
type GobWriter struct {
	rootPath string
}

// NewGobWriter creates a new snapshot writer rooted at rootPath.
func NewGobWriter(rootPath string) *GobWriter {
	return &GobWriter{rootPath: rootPath}
}

// Name returns the writer type.
func (w *GobWriter) Name() string {
	return "gob"
}

// SnapshotID returns the directory name a report is stored under. IDs sort in
// generation order.
func SnapshotID(r *model.Report) string {
	id := r.GeneratedAt.UTC().Format(snapshotTimeLayout)
	if r.RunID == "" {
		return id
	}
	short := r.RunID
	if len(short) > 8 {
		short = short[:8]
	}
	return id + "_" + short
}

// Write serializes the report and a JSON summary into a new snapshot directory.
func (w *GobWriter) Write(_ context.Context, r *model.Report) error {
	snapshotDir := filepath.Join(w.rootPath, SnapshotID(r))
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	filePath := filepath.Join(snapshotDir, SnapshotFile)
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file '%s': %w", filePath, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(r); err != nil {
		return fmt.Errorf("failed to encode report to gob for file '%s': %w", filePath, err)
	}

	summary := SummaryData{
		RunID:                 r.RunID,
		FlowLog:               r.FlowLog,
		LookupTable:           r.LookupTable,
		TotalRecords:          r.TotalRecords(),
		DistinctTags:          len(r.Tags),
		DistinctPortProtocols: len(r.PortProtocols),
		Timestamp:             r.GeneratedAt.UTC().Format(time.RFC3339),
	}
	summaryFilePath := filepath.Join(snapshotDir, SummaryFile)
	summaryFile, err := os.Create(summaryFilePath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	jsonEncoder := json.NewEncoder(summaryFile)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}

	return nil
}

// ReadSnapshot decodes the report stored in a snapshot directory.
func ReadSnapshot(dir string) (*model.Report, error) {
	file, err := os.Open(filepath.Join(dir, SnapshotFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var r model.Report
	if err := gob.NewDecoder(file).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot '%s': %w", dir, err)
	}
	return &r, nil
}
