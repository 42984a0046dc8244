package flowlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reader reads a flow log one line at a time.
type Reader struct {
	file *os.File
	path string
}

// NewReader opens the flow log at filePath. Callers must Close it.
func NewReader(filePath string) (*Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow log: %w", err)
	}
	return &Reader{file: f, path: filePath}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadLines calls fn for every line in the log, without the line terminator,
// and returns the number of lines read. Lines may be of any length.
func (r *Reader) ReadLines(fn func(line string)) (int, error) {
	br := bufio.NewReaderSize(r.file, 64*1024)

	lines := 0
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines++
			fn(strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, fmt.Errorf("failed to read flow log '%s' after line %d: %w", r.path, lines, err)
		}
	}
}
