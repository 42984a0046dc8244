// Package lookup loads the (destination port, protocol) to tag lookup table.
package lookup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"FlowTagger/internal/logging"
	"FlowTagger/internal/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	colPort     = "dstport"
	colProtocol = "protocol"
	colTag      = "tag"
)

var expectedColumns = []string{colPort, colProtocol, colTag}

var (
	// ErrHeaderMismatch is returned when the header is not exactly {dstport, protocol, tag}.
	ErrHeaderMismatch = errors.New("CSV header mismatch")
	// ErrEmptyTable is returned when the file has no header row.
	ErrEmptyTable = errors.New("lookup table has no header row")

	errMissingValue = errors.New("missing required value")
)

// Stats summarizes a load.
type Stats struct {
	Rows       int // Data rows read, header excluded
	Loaded     int
	Skipped    int
	Duplicates int // Rows that overwrote an earlier entry for the same key
}

// Loader parses lookup tables. The zero value logs through the global logger.
type Loader struct {
	Log logrus.FieldLogger
}

// Load opens the lookup table at path and parses it with a default Loader.
func Load(path string) (model.LookupTable, Stats, error) {
	return (&Loader{}).Load(path)
}

// Load opens the lookup table at path and parses it.
func (l *Loader) Load(path string) (model.LookupTable, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open lookup table: %w", err)
	}
	defer f.Close()

	table, stats, err := l.Read(f)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to load lookup table %s: %w", path, err)
	}
	return table, stats, nil
}

// Read parses a lookup table from r. Malformed rows are skipped with a warning;
// a bad header or an I/O error aborts the load.
func (l *Loader) Read(r io.Reader) (model.LookupTable, Stats, error) {
	log := l.Log
	if log == nil {
		log = logging.WithComponent("lookup")
	}

	// BOMOverride strips a UTF-8 BOM and switches to UTF-16 when one is present.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var stats Stats
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, ErrEmptyTable
	}
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, stats, err
	}

	table := make(model.LookupTable)
	// The header is row 1, so the first data row is row 2.
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			stats.Skipped++
			log.WithField("row", rowNum).Warnf("Skipping malformed row %d: %v", rowNum, parseErr.Err)
			continue
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read row %d: %w", rowNum, err)
		}

		key, tag, err := parseRow(record, len(header), index)
		if err != nil {
			stats.Skipped++
			log.WithField("row", rowNum).Warnf("Skipping malformed row %d: %v", rowNum, err)
			continue
		}

		if prev, ok := table[key]; ok {
			stats.Duplicates++
			log.WithFields(logrus.Fields{"row": rowNum, "previous": prev, "tag": tag}).
				Debugf("Duplicate lookup entry for %s/%s, keeping the later one", key.Port, key.Protocol)
		}
		table[key] = tag
		stats.Loaded++
	}

	return table, stats, nil
}

// NormalizeHeader trims, lowercases and removes byte-order marks from a header name.
func NormalizeHeader(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "\ufeff", ""))
}

// columnIndex maps each expected column to its position in the header.
func columnIndex(header []string) (map[string]int, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = NormalizeHeader(h)
	}

	got := append([]string(nil), normalized...)
	sort.Strings(got)
	want := append([]string(nil), expectedColumns...)
	sort.Strings(want)
	if strings.Join(got, "\x00") != strings.Join(want, "\x00") {
		return nil, fmt.Errorf("%w: expected fields %v, got %q", ErrHeaderMismatch, expectedColumns, header)
	}

	index := make(map[string]int, len(normalized))
	for i, name := range normalized {
		index[name] = i
	}
	return index, nil
}

func parseRow(record []string, width int, index map[string]int) (model.LookupKey, string, error) {
	if len(record) != width {
		return model.LookupKey{}, "", fmt.Errorf("expected %d fields, got %d", width, len(record))
	}

	port := strings.TrimSpace(record[index[colPort]])
	protocol := strings.ToLower(strings.TrimSpace(record[index[colProtocol]]))
	tag := strings.TrimSpace(record[index[colTag]])
	if port == "" || protocol == "" || tag == "" {
		return model.LookupKey{}, "", errMissingValue
	}

	return model.LookupKey{Port: port, Protocol: protocol}, tag, nil
}
