package writer

import (
	"context"
	"fmt"
	"time"

	"FlowTagger/internal/config"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/logging"
	"FlowTagger/internal/model"

	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// RunIDHeader carries the run id on published report messages.
const RunIDHeader = "Run-Id"

func init() {
	factory.RegisterWriter("nats", func(def config.WriterDef) (model.Writer, error) {
		return NewNATSWriter(def.NATS)
	})
}

// NATSWriter publishes each report as a protobuf encoded structpb.Struct.
type NATSWriter struct {
	nc      *nats.Conn
	subject string
}

// NewNATSWriter connects to the NATS server.
func NewNATSWriter(cfg config.NATSConfig) (*NATSWriter, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url, nats.Name("flowtagger"))
	if err != nil {
		return nil, err
	}
	logging.WithComponent("nats").Infof("Connected to NATS server at %s", url)
	return &NATSWriter{nc: nc, subject: cfg.Subject}, nil
}

// Name returns the writer type.
func (w *NATSWriter) Name() string {
	return "nats"
}

// Write publishes the report and waits until the server has received it.
func (w *NATSWriter) Write(ctx context.Context, r *model.Report) error {
	data, err := EncodeReport(r)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(w.subject)
	msg.Header.Set(RunIDHeader, r.RunID)
	msg.Data = data
	if err := w.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	if err := w.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (w *NATSWriter) Close() error {
	return w.nc.Drain()
}

// EncodeReport serializes a report to the protobuf wire format of structpb.Struct.
func EncodeReport(r *model.Report) ([]byte, error) {
	s, err := ReportStruct(r)
	if err != nil {
		return nil, err
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// ReportStruct converts a report to a structpb.Struct.
func ReportStruct(r *model.Report) (*structpb.Struct, error) {
	tags := make([]any, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, map[string]any{"tag": t.Tag, "count": t.Count})
	}
	ports := make([]any, 0, len(r.PortProtocols))
	for _, p := range r.PortProtocols {
		ports = append(ports, map[string]any{"port": p.Port, "protocol": p.Protocol, "count": p.Count})
	}

	s, err := structpb.NewStruct(map[string]any{
		"run_id":         r.RunID,
		"generated_at":   r.GeneratedAt.UTC().Format(time.RFC3339),
		"flow_log":       r.FlowLog,
		"lookup_table":   r.LookupTable,
		"total_records":  r.TotalRecords(),
		"tags":           tags,
		"port_protocols": ports,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert report: %w", err)
	}
	return s, nil
}
