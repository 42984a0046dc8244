// Package summary renders a run report as terminal tables.
package summary

import (
	"fmt"
	"strconv"

	"FlowTagger/internal/model"
	"FlowTagger/internal/report"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	countStyle  = cellStyle.Align(lipgloss.Right)
)

// Render returns the tag report as a table followed by run totals. At most limit
// tag rows are shown, Untagged among them; limit <= 0 shows all of them.
func Render(r *model.Report, limit int) string {
	rows := report.TopTags(r.Tags, limit)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Tag", "Count").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return countStyle
			default:
				return cellStyle
			}
		})
	for _, row := range rows {
		t.Row(row.Tag, strconv.FormatUint(row.Count, 10))
	}

	title := titleStyle.Render(fmt.Sprintf("%d records, %d tags, %d port/protocol pairs",
		r.TotalRecords(), len(r.Tags), len(r.PortProtocols)))
	body := lipgloss.JoinVertical(lipgloss.Left, title, t.String())
	if hidden := len(r.Tags) - len(rows); hidden > 0 {
		body += fmt.Sprintf("\n(%d more tags not shown)", hidden)
	}
	return body
}
