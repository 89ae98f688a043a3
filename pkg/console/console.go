package console

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// SourcePosition is a 1-based location in a source file
type SourcePosition struct {
	File   string
	Line   int
	Column int
	// EndColumn marks the end of the highlighted span on Line, exclusive
	EndColumn int
}

// Finding is a positioned message rendered with source context
type Finding struct {
	Position SourcePosition
	Type     string // "error", "warning", "info"
	Message  string
	// Context holds source lines; ContextStart is the line number of Context[0]
	Context      []string
	ContextStart int
	Hint         string
}

// Styles for different finding types
var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	infoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	contextLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F8F8F2"))

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF5555")).
			Foreground(lipgloss.Color("#282A36"))

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#50FA7B"))
)

// isTTY checks if stdout is a terminal
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// applyStyle conditionally applies styling based on TTY status
func applyStyle(style lipgloss.Style, text string) string {
	if isTTY() {
		return style.Render(text)
	}
	return text
}

// ToRelativePath converts an absolute path to a relative path from the current working directory
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}

	wd, err := os.Getwd()
	if err != nil {
		return path
	}

	relPath, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}

	return relPath
}

// SourceContext returns up to radius lines on either side of line (1-based)
// and the line number of the first returned line
func SourceContext(lines []string, line, radius int) ([]string, int) {
	if line < 1 || line > len(lines) {
		return nil, 0
	}
	first := max(1, line-radius)
	last := min(len(lines), line+radius)
	return lines[first-1 : last], first
}

// FormatFinding renders a finding in the file:line:column form editors parse,
// followed by the source context with the span underlined
func FormatFinding(f Finding) string {
	var output strings.Builder

	var typeStyle lipgloss.Style
	var prefix string
	switch f.Type {
	case "warning":
		typeStyle = warningStyle
		prefix = "warning"
	case "info":
		typeStyle = infoStyle
		prefix = "info"
	default:
		typeStyle = errorStyle
		prefix = "error"
	}

	if f.Position.File != "" {
		location := fmt.Sprintf("%s:%d:%d:",
			ToRelativePath(f.Position.File),
			f.Position.Line,
			f.Position.Column)
		output.WriteString(applyStyle(filePathStyle, location))
		output.WriteString(" ")
	}

	output.WriteString(applyStyle(typeStyle, prefix+":"))
	output.WriteString(" ")
	output.WriteString(f.Message)
	output.WriteString("\n")

	if len(f.Context) > 0 && f.Position.Line > 0 {
		output.WriteString(renderContext(f, typeStyle))
	}

	if f.Hint != "" {
		output.WriteString("\n")
		output.WriteString(applyStyle(hintStyle, "hint: "))
		output.WriteString(f.Hint)
		output.WriteString("\n")
	}

	return output.String()
}

// renderContext renders source lines with line numbers, highlighting the span
func renderContext(f Finding, markStyle lipgloss.Style) string {
	var output strings.Builder

	start := max(f.ContextStart, 1)
	lineNumWidth := len(fmt.Sprintf("%d", start+len(f.Context)-1))

	for i, line := range f.Context {
		lineNum := start + i
		output.WriteString(applyStyle(lineNumberStyle, fmt.Sprintf("%*d", lineNumWidth, lineNum)))
		output.WriteString(" | ")

		if lineNum != f.Position.Line {
			output.WriteString(applyStyle(contextLineStyle, line))
			output.WriteString("\n")
			continue
		}

		from, to := spanColumns(f.Position, len(line))
		output.WriteString(applyStyle(contextLineStyle, line[:from]))
		output.WriteString(applyStyle(highlightStyle, line[from:to]))
		output.WriteString(applyStyle(contextLineStyle, line[to:]))
		output.WriteString("\n")

		width := max(to-from, 1)
		output.WriteString(strings.Repeat(" ", lineNumWidth+3+from))
		output.WriteString(applyStyle(markStyle, strings.Repeat("^", width)))
		output.WriteString("\n")
	}

	return output.String()
}

// spanColumns turns the 1-based columns of pos into 0-based byte bounds on a line of length n
func spanColumns(pos SourcePosition, n int) (int, int) {
	from := min(max(pos.Column-1, 0), n)
	to := from
	if pos.EndColumn > pos.Column {
		to = min(pos.EndColumn-1, n)
	}
	return from, to
}

// FormatSuccessMessage formats a success message with styling
func FormatSuccessMessage(message string) string {
	successStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#50FA7B"))

	return applyStyle(successStyle, "✓ ") + message
}

// FormatInfoMessage formats an informational message
func FormatInfoMessage(message string) string {
	return applyStyle(infoStyle, "ℹ ") + message
}

// FormatWarningMessage formats a warning message
func FormatWarningMessage(message string) string {
	return applyStyle(warningStyle, "⚠ ") + message
}

// FormatErrorMessage formats a simple error message (for stderr output)
func FormatErrorMessage(message string) string {
	return applyStyle(errorStyle, "✗ ") + message
}

// FormatVerboseMessage formats verbose debugging output
func FormatVerboseMessage(message string) string {
	verboseStyle := lipgloss.NewStyle().
		Italic(true).
		Foreground(lipgloss.Color("#6272A4"))

	return applyStyle(verboseStyle, "🔍 ") + message
}

// FormatProgressMessage formats a progress/activity message
func FormatProgressMessage(message string) string {
	progressStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F1FA8C"))

	return applyStyle(progressStyle, "🔨 ") + message
}

// FormatCountMessage formats a count/numeric status message
func FormatCountMessage(message string) string {
	countStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#8BE9FD"))

	return applyStyle(countStyle, "📊 ") + message
}
