package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#BD93F9")).
				Background(lipgloss.Color("#44475A"))

	tableCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2"))

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6272A4"))

	tableTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))
)

// Table is a titled grid of cells
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Indent gives the leading indentation level of each row, if set
	Indent []int
}

// RenderTable renders t with padded columns. It returns "" when there are no headers.
func RenderTable(t Table) string {
	if len(t.Headers) == 0 {
		return ""
	}

	cells := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = append([]string(nil), row...)
		if i < len(t.Indent) && len(cells[i]) > 0 {
			cells[i][0] = strings.Repeat("  ", t.Indent[i]) + cells[i][0]
		}
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range cells {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], len(cell))
			}
		}
	}

	var out strings.Builder
	if t.Title != "" {
		out.WriteString(applyStyle(tableTitleStyle, t.Title))
		out.WriteString("\n")
	}
	out.WriteString(renderRow(t.Headers, widths, tableHeaderStyle))
	out.WriteString("\n")

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	out.WriteString(renderRow(rule, widths, tableBorderStyle))
	out.WriteString("\n")

	for _, row := range cells {
		out.WriteString(renderRow(row, widths, tableCellStyle))
		out.WriteString("\n")
	}
	return out.String()
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	var row strings.Builder
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		row.WriteString(applyStyle(style, fmt.Sprintf("%-*s", widths[i], cell)))
		if i < len(widths)-1 {
			row.WriteString(applyStyle(tableBorderStyle, " | "))
		}
	}
	return strings.TrimRight(row.String(), " ")
}
