// Package writer contains the report writers. The CSV writer is always used;
// the other writers register themselves with the factory and are enabled from config.
package writer

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"FlowTagger/internal/model"
)

const (
	// TagCountsFile is the name of the tag report inside the output directory.
	TagCountsFile = "tag_counts.csv"
	// PortProtocolCountsFile is the name of the port/protocol report inside the output directory.
	PortProtocolCountsFile = "port_protocol_counts.csv"
)

// CSVWriter writes the two CSV reports into an output directory.
type CSVWriter struct {
	outputDir string
}

// NewCSVWriter creates a CSV writer. The output directory must exist.
func NewCSVWriter(outputDir string) *CSVWriter {
	return &CSVWriter{outputDir: outputDir}
}

// Name returns the writer type.
func (w *CSVWriter) Name() string {
	return "csv"
}

// Write renders both reports. Each file is replaced atomically, so a failed
// write never leaves a truncated report behind.
func (w *CSVWriter) Write(_ context.Context, r *model.Report) error {
	if err := writeCSVAtomic(w.outputDir, TagCountsFile, TagCountRecords(r.Tags)); err != nil {
		return err
	}
	return writeCSVAtomic(w.outputDir, PortProtocolCountsFile, PortProtocolRecords(r.PortProtocols))
}

// TagCountRecords returns the tag report including its header row.
func TagCountRecords(rows []model.TagCount) [][]string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{"Tag", "Count"})
	for _, row := range rows {
		records = append(records, []string{row.Tag, strconv.FormatUint(row.Count, 10)})
	}
	return records
}

// PortProtocolRecords returns the port/protocol report including its header row.
func PortProtocolRecords(rows []model.PortProtocolCount) [][]string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{"Port", "Protocol", "Count"})
	for _, row := range rows {
		records = append(records, []string{row.Port, row.Protocol, strconv.FormatUint(row.Count, 10)})
	}
	return records
}

func writeCSVAtomic(dir, name string, records [][]string) (err error) {
	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	cw := csv.NewWriter(tmp)
	cw.UseCRLF = true
	if err = cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write report '%s': %w", path, err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("failed to set permissions on report '%s': %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report '%s': %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move report into place '%s': %w", path, err)
	}
	return nil
}
