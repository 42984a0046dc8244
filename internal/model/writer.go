package model

import "context"

// Writer defines a generic interface for persisting a finished report.
// Writers holding connections also implement io.Closer.
type Writer interface {
	// Name identifies the writer in logs, e.g. "csv" or "clickhouse".
	Name() string

	// Write persists the report. The report must not be modified.
	Write(ctx context.Context, report *Report) error
}
