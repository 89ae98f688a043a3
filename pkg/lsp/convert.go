// Package lsp converts diagnostics and symbols into go.lsp.dev/protocol
// values. Columns are translated from bytes to UTF-16 code units.
package lsp

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/githubnext/yamlls/pkg/position"
	"github.com/githubnext/yamlls/pkg/symbols"
	"github.com/githubnext/yamlls/pkg/validation"
	"go.lsp.dev/protocol"
)

// Converter maps byte positions of one text to LSP positions
type Converter struct {
	text  string
	lines *position.Index
}

// NewConverter returns a converter for text
func NewConverter(text string) *Converter {
	return &Converter{text: text, lines: position.NewIndex(text)}
}

// Position converts a byte position to an LSP position
func (c *Converter) Position(p position.Position) protocol.Position {
	start := c.lines.LineStart(p.Line)
	end := min(c.lines.Offset(p), c.lineEnd(p.Line))
	units := 0
	for _, r := range c.text[start:end] {
		units += utf16.RuneLen(r)
	}
	return protocol.Position{Line: uint32(p.Line), Character: uint32(units)}
}

// Range converts a byte range to an LSP range
func (c *Converter) Range(r position.Range) protocol.Range {
	return protocol.Range{Start: c.Position(r.Start), End: c.Position(r.End)}
}

// Offset converts an LSP position back to a byte offset, clamped to the line
func (c *Converter) Offset(p protocol.Position) int {
	line := int(p.Line)
	if line >= c.lines.LineCount() {
		return len(c.text)
	}
	off := c.lines.LineStart(line)
	lineEnd := c.lineEnd(line)
	units := 0
	for off < lineEnd && units < int(p.Character) {
		r, size := utf8.DecodeRuneInString(c.text[off:])
		units += utf16.RuneLen(r)
		off += size
	}
	return off
}

// lineEnd returns the offset of the terminator of line, or the text length on the last line
func (c *Converter) lineEnd(line int) int {
	if line+1 >= c.lines.LineCount() {
		return len(c.text)
	}
	end := c.lines.LineStart(line + 1)
	if end > 0 && c.text[end-1] == '\n' {
		end--
	}
	if end > 0 && c.text[end-1] == '\r' {
		end--
	}
	return max(end, c.lines.LineStart(line))
}

// Diagnostics converts validation diagnostics
func (c *Converter) Diagnostics(diags []validation.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, protocol.Diagnostic{
			Range:    c.Range(d.Range),
			Severity: severity(d.Severity),
			Source:   d.Source,
			Message:  d.Message,
		})
	}
	return out
}

func severity(s validation.Severity) protocol.DiagnosticSeverity {
	if s == validation.SeverityWarning {
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityError
}

// SymbolInformation converts an outline into flat symbol information for uri
func (c *Converter) SymbolInformation(uri string, syms []symbols.Symbol) []protocol.SymbolInformation {
	if syms == nil {
		return nil
	}
	out := make([]protocol.SymbolInformation, 0, len(syms))
	for _, s := range syms {
		out = append(out, protocol.SymbolInformation{
			Name: s.Name,
			Kind: protocol.SymbolKind(s.Kind),
			Location: protocol.Location{
				URI:   protocol.DocumentURI(uri),
				Range: c.Range(s.Range),
			},
			ContainerName: s.Container,
		})
	}
	return out
}
