package writer

import (
	"context"
	"fmt"

	"FlowTagger/internal/config"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/logging"
	"FlowTagger/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createTagCountsTable = `
CREATE TABLE IF NOT EXISTS tag_counts (
    RunID       String,
    GeneratedAt DateTime,
    Tag         String,
    Count       UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(GeneratedAt)
ORDER BY (GeneratedAt, RunID, Tag);
`

const createPortProtocolCountsTable = `
CREATE TABLE IF NOT EXISTS port_protocol_counts (
    RunID       String,
    GeneratedAt DateTime,
    Port        String,
    Protocol    String,
    Count       UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(GeneratedAt)
ORDER BY (GeneratedAt, RunID, Port, Protocol);
`

func init() {
	factory.RegisterWriter("clickhouse", func(def config.WriterDef) (model.Writer, error) {
		return NewClickHouseWriter(context.Background(), def.ClickHouse)
	})
}

// ClickHouseWriter inserts the report rows into ClickHouse, one batch per table.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and makes sure both tables exist.
func NewClickHouseWriter(ctx context.Context, cfg config.ClickHouseConfig) (*ClickHouseWriter, error) {
	conn, err := connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range []string{createTagCountsTable, createPortProtocolCountsTable} {
		if err := conn.Exec(ctx, stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	logging.WithComponent("clickhouse").Info("Successfully connected to ClickHouse and ensured tables exist.")

	return &ClickHouseWriter{conn: conn}, nil
}

func connect(ctx context.Context, cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Name returns the writer type.
func (w *ClickHouseWriter) Name() string {
	return "clickhouse"
}

// Write inserts both reports of a run.
func (w *ClickHouseWriter) Write(ctx context.Context, r *model.Report) error {
	if err := w.insert(ctx, "INSERT INTO tag_counts", tagCountRows(r)); err != nil {
		return err
	}
	if err := w.insert(ctx, "INSERT INTO port_protocol_counts", portProtocolRows(r)); err != nil {
		return err
	}

	logging.WithComponent("clickhouse").Infof("Wrote %d tag rows and %d port/protocol rows for run '%s'",
		len(r.Tags), len(r.PortProtocols), r.RunID)
	return nil
}

func (w *ClickHouseWriter) insert(ctx context.Context, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := w.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			batch.Abort()
			return fmt.Errorf("failed to append row to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}

func tagCountRows(r *model.Report) [][]any {
	rows := make([][]any, 0, len(r.Tags))
	for _, t := range r.Tags {
		rows = append(rows, []any{r.RunID, r.GeneratedAt, t.Tag, t.Count})
	}
	return rows
}

func portProtocolRows(r *model.Report) [][]any {
	rows := make([][]any, 0, len(r.PortProtocols))
	for _, p := range r.PortProtocols {
		rows = append(rows, []any{r.RunID, r.GeneratedAt, p.Port, p.Protocol, p.Count})
	}
	return rows
}
