// Package report turns frequency tables into ordered report rows.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"FlowTagger/internal/model"
)

// Meta carries the run metadata stored alongside the rows.
type Meta struct {
	RunID       string
	GeneratedAt time.Time
	FlowLog     string
	LookupTable string
}

// Build materializes both reports from the counts of one run.
func Build(counts model.Counts, meta Meta) *model.Report {
	return &model.Report{
		RunID:         meta.RunID,
		GeneratedAt:   meta.GeneratedAt,
		FlowLog:       meta.FlowLog,
		LookupTable:   meta.LookupTable,
		Tags:          TagRows(counts.Tags),
		PortProtocols: PortProtocolRows(counts.PortProtocols),
	}
}

// TagRows orders tags ascending, with Untagged always last.
func TagRows(tags model.TagCounts) []model.TagCount {
	rows := make([]model.TagCount, 0, len(tags))
	for tag, count := range tags {
		if tag == model.Untagged {
			continue
		}
		rows = append(rows, model.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Tag < rows[j].Tag })

	if count, ok := tags[model.Untagged]; ok {
		rows = append(rows, model.TagCount{Tag: model.Untagged, Count: count})
	}
	return rows
}

// PortProtocolRows orders rows by (port, protocol) as strings, so "10" sorts before "2".
func PortProtocolRows(ports model.PortProtocolCounts) []model.PortProtocolCount {
	rows := make([]model.PortProtocolCount, 0, len(ports))
	for key, count := range ports {
		rows = append(rows, model.PortProtocolCount{Port: key.Port, Protocol: key.Protocol, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Port != rows[j].Port {
			return rows[i].Port < rows[j].Port
		}
		return rows[i].Protocol < rows[j].Protocol
	})
	return rows
}

// TopTags returns at most limit rows of an ordered tag report. A truncated list
// keeps the Untagged row in the last slot. limit <= 0 returns all rows.
func TopTags(rows []model.TagCount, limit int) []model.TagCount {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	top := append([]model.TagCount(nil), rows[:limit]...)
	if last := rows[len(rows)-1]; last.Tag == model.Untagged {
		top[limit-1] = last
	}
	return top
}

// Markdown renders a short summary of the report. At most limit tag rows are
// listed; limit <= 0 lists all of them.
func Markdown(r *model.Report, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Flow tagging report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Flow log: `%s`\n", r.FlowLog)
	fmt.Fprintf(&b, "- Lookup table: `%s`\n", r.LookupTable)
	fmt.Fprintf(&b, "- Records classified: %d\n", r.TotalRecords())
	fmt.Fprintf(&b, "- Distinct tags: %d\n", len(r.Tags))
	fmt.Fprintf(&b, "- Distinct port/protocol pairs: %d\n\n", len(r.PortProtocols))

	rows := TopTags(r.Tags, limit)
	b.WriteString("| Tag | Count |\n|---|---:|\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(row.Tag), row.Count)
	}
	if len(rows) < len(r.Tags) {
		fmt.Fprintf(&b, "\n_%d more tags not shown._\n", len(r.Tags)-len(rows))
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
