package position

import (
	"fmt"
	"sort"
	"strings"
)

// Position is a 0-based line and byte column in source text
type Position struct {
	Line   int
	Column int
}

// String returns "line:column" using 1-based numbers, the form editors print
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Range is a half-open span of positions
type Range struct {
	Start Position
	End   Position
}

// Index maps byte offsets to line/column positions using precomputed line starts.
// The zero value is not usable; call NewIndex.
type Index struct {
	starts []int
	size   int
}

// NewIndex computes the line-start table for text. Lines end at "\n", "\r\n" or a lone "\r".
func NewIndex(text string) *Index {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return &Index{starts: starts, size: len(text)}
}

// Lines splits text at the same line breaks as NewIndex. Terminators are dropped.
func Lines(text string) []string {
	x := NewIndex(text)
	out := make([]string, len(x.starts))
	for i, start := range x.starts {
		end := x.size
		if i+1 < len(x.starts) {
			end = x.starts[i+1]
		}
		out[i] = strings.TrimRight(text[start:end], "\r\n")
	}
	return out
}

// LineCount returns the number of lines, counting a trailing empty line
func (x *Index) LineCount() int {
	return len(x.starts)
}

// LineStart returns the offset of the first byte of line, clamped to the table
func (x *Index) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= len(x.starts) {
		return x.size
	}
	return x.starts[line]
}

// Position converts offset to a line/column pair. Offsets outside [0, len(text)] are clamped.
func (x *Index) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > x.size {
		offset = x.size
	}
	// the last line whose start is <= offset
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	return Position{Line: line, Column: offset - x.starts[line]}
}

// Range converts a pair of offsets
func (x *Index) Range(start, end int) Range {
	return Range{Start: x.Position(start), End: x.Position(end)}
}

// Offset is the inverse of Position. Columns past the end of the line clamp to the next line start.
func (x *Index) Offset(p Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(x.starts) {
		return x.size
	}
	off := x.starts[p.Line] + max(p.Column, 0)
	limit := x.size
	if p.Line+1 < len(x.starts) {
		limit = x.starts[p.Line+1]
	}
	return min(off, limit)
}
