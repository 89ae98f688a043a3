package yamlraw

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
	"github.com/githubnext/yamlls/pkg/position"
)

// includeTag marks a scalar as a reference to another file
const includeTag = "!include"

// syntaxErrorPattern matches the "[line:column] message" head of goccy errors
var syntaxErrorPattern = regexp.MustCompile(`^\[(\d+):(\d+)\]\s*(.*)`)

// ParseAll splits src into documents and converts each one into a raw tree.
// It never fails. Documents are parsed one at a time, so a syntax error yields
// a document with no root and an Issue describing the error while the other
// documents of the stream are still converted.
func ParseAll(src []byte) []*Document {
	c := &converter{src: string(src), lines: position.NewIndex(string(src))}

	var docs []*Document
	for _, seg := range c.segments() {
		docs = append(docs, c.parseSegment(seg)...)
	}

	// An implicit document ends where the next one starts
	for i, doc := range docs {
		if i+1 < len(docs) && doc.End > docs[i+1].Start {
			doc.End = max(doc.Start, docs[i+1].Start)
		}
	}
	return docs
}

// segment is the text of one document: [start, end) beginning at line
type segment struct {
	start, end int
	line       int
}

// segments cuts the source at column-0 document markers. A "---" line opens a
// document unless only comments, directives and blank lines precede it in the
// current segment; a "..." line closes the current document.
func (c *converter) segments() []segment {
	var out []segment
	cur := segment{}
	content := false
	for line := 0; line < c.lines.LineCount(); line++ {
		start := c.lines.LineStart(line)
		text := c.lineText(line)
		switch {
		case isMarker(text, "---"):
			if content {
				cur.end = start
				out = append(out, cur)
				cur = segment{start: start, line: line}
			}
			content = true
		case isMarker(text, "..."):
			cur.end = start + len(text)
			out = append(out, cur)
			cur = segment{start: c.lines.LineStart(line + 1), line: line + 1}
			content = false
		default:
			trimmed := strings.TrimSpace(text)
			if trimmed != "" && !strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(text, "%") {
				content = true
			}
		}
	}
	if cur.start < len(c.src) || len(out) == 0 {
		cur.end = len(c.src)
		out = append(out, cur)
	}
	return out
}

func isMarker(line, marker string) bool {
	if !strings.HasPrefix(line, marker) {
		return false
	}
	return len(line) == len(marker) || line[len(marker)] == ' ' || line[len(marker)] == '\t'
}

func (c *converter) parseSegment(seg segment) []*Document {
	c.seg = seg
	file, err := parser.ParseBytes([]byte(c.src[seg.start:seg.end]), 0, parser.AllowDuplicateMapKey())
	if err != nil {
		return []*Document{c.failed(err)}
	}
	if file == nil {
		return nil
	}

	var docs []*Document
	for _, d := range file.Docs {
		c.issues = nil
		c.anchors = make(map[string]*Node)

		root := c.value(d.Body)
		if root == nil && d.Start == nil {
			// Nothing but whitespace or comments before a "---" or after a "...".
			continue
		}
		doc := &Document{Root: root, Issues: c.issues}
		doc.Start, doc.End = c.documentRange(d, root)
		docs = append(docs, doc)
	}
	return docs
}

type converter struct {
	src     string
	lines   *position.Index
	seg     segment
	issues  []Issue
	anchors map[string]*Node
}

// failed builds the single document reported for an unparsable segment
func (c *converter) failed(err error) *Document {
	msg := strings.TrimSpace(strings.SplitN(err.Error(), "\n", 2)[0])
	issue := Issue{Reason: msg, Start: c.seg.start}
	if m := syntaxErrorPattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		issue.Reason = strings.TrimSpace(m[3])
		issue.Start = min(max(c.offsetAt(line, col), c.seg.start), c.seg.end)
	}
	issue.End = max(issue.Start, min(c.lineEnd(issue.Start), c.seg.end))
	return &Document{Start: c.seg.start, End: c.seg.end, Issues: []Issue{issue}}
}

func (c *converter) documentRange(d *ast.DocumentNode, root *Node) (int, int) {
	start, end := c.seg.start, c.seg.end
	switch {
	case d.Start != nil:
		start = c.tokenStart(d.Start, "---")
	case root != nil:
		start = root.Start
	}
	if d.End != nil {
		end = c.tokenStart(d.End, "...") + 3
	}
	if root != nil {
		start = min(start, root.Start)
		end = max(end, root.End)
	}
	return start, min(max(start, end), len(c.src))
}

// value converts a node in value position. Implicit nulls ("key:" with
// nothing after it) come back as nil.
func (c *converter) value(n ast.Node) *Node {
	if n == nil {
		return nil
	}
	if nn, ok := n.(*ast.NullNode); ok && !c.isNullLiteral(nn.GetToken()) {
		return nil
	}
	return c.convert(n)
}

func (c *converter) convert(n ast.Node) *Node {
	switch n := n.(type) {
	case nil:
		return nil
	case *ast.DocumentNode:
		return c.value(n.Body)
	case *ast.MappingNode:
		return c.mapping(n)
	case *ast.MappingValueNode:
		return c.mapping(&ast.MappingNode{Values: []*ast.MappingValueNode{n}})
	case *ast.MappingKeyNode:
		return c.convert(n.Value)
	case *ast.SequenceNode:
		return c.sequence(n)
	case *ast.AnchorNode:
		v := c.value(n.Value)
		// Registered after conversion so an alias inside its own anchor
		// stays unresolved instead of forming a cycle.
		if name := n.Name; name != nil && name.GetToken() != nil {
			c.anchors[name.GetToken().Value] = v
		}
		if v != nil {
			v.Start = min(v.Start, c.tokenStart(n.Start, "&"))
		}
		return v
	case *ast.AliasNode:
		name := ""
		if n.Value != nil && n.Value.GetToken() != nil {
			name = n.Value.GetToken().Value
		}
		start := c.tokenStart(n.Start, "*")
		return &Node{
			Kind:   KindAnchorRef,
			Start:  start,
			End:    min(start+1+len(name), len(c.src)),
			Text:   name,
			Target: c.anchors[name],
		}
	case *ast.TagNode:
		return c.tag(n)
	case *ast.StringNode:
		return c.scalar(n.GetToken(), ScalarString, n.Value, nil)
	case *ast.MergeKeyNode:
		return c.scalar(n.GetToken(), ScalarString, "<<", nil)
	case *ast.LiteralNode:
		start := c.tokenStart(n.Start, "")
		text := ""
		if n.Value != nil {
			text = n.Value.Value
		}
		return &Node{Kind: KindScalar, Type: ScalarString, Text: text, Quoted: true, Start: start, End: c.blockEnd(start)}
	case *ast.IntegerNode:
		var parsed any
		switch v := n.Value.(type) {
		case int64, uint64:
			parsed = v
		case int:
			parsed = int64(v)
		}
		return c.scalar(n.GetToken(), ScalarInt, n.GetToken().Value, parsed)
	case *ast.FloatNode:
		return c.scalar(n.GetToken(), ScalarFloat, n.GetToken().Value, n.Value)
	case *ast.InfinityNode:
		return c.scalar(n.GetToken(), ScalarFloat, n.GetToken().Value, n.Value)
	case *ast.NanNode:
		return c.scalar(n.GetToken(), ScalarFloat, n.GetToken().Value, math.NaN())
	case *ast.BoolNode:
		return c.scalar(n.GetToken(), ScalarBool, n.GetToken().Value, n.Value)
	case *ast.NullNode:
		return c.scalar(n.GetToken(), ScalarNull, n.GetToken().Value, nil)
	case *ast.CommentGroupNode:
		return nil
	default:
		start := c.tokenStart(n.GetToken(), "")
		return &Node{Kind: KindUnknown, Start: start, End: start}
	}
}

func (c *converter) mapping(m *ast.MappingNode) *Node {
	out := &Node{Kind: KindMap}
	seen := make(map[string]bool, len(m.Values))
	for _, mv := range m.Values {
		entry := c.entry(mv)
		if entry == nil {
			continue
		}
		if seen[entry.Key.Text] {
			c.issues = append(c.issues, Issue{
				Reason:  DuplicateKeyReason,
				Start:   entry.Key.Start,
				End:     entry.Key.End,
				Warning: true,
			})
		}
		seen[entry.Key.Text] = true
		out.Mappings = append(out.Mappings, entry)
	}

	if m.IsFlowStyle && m.Start != nil {
		out.Start = c.tokenStart(m.Start, "{")
		out.End = out.Start + 1
		if m.End != nil {
			out.End = c.tokenStart(m.End, "}") + 1
		}
	} else if len(out.Mappings) > 0 {
		out.Start = out.Mappings[0].Start
	}
	for _, e := range out.Mappings {
		out.Start = min(out.Start, e.Start)
		out.End = max(out.End, e.End)
	}
	return out
}

func (c *converter) entry(mv *ast.MappingValueNode) *Node {
	if mv == nil || mv.Key == nil {
		return nil
	}
	var keyNode ast.Node = mv.Key
	key := c.convert(keyNode)
	if key == nil {
		start := c.tokenStart(keyNode.GetToken(), "")
		key = &Node{Kind: KindScalar, Type: ScalarNull, Start: start, End: start}
	}
	if key.Kind != KindScalar && key.End >= key.Start {
		key.Text = strings.TrimSpace(c.src[key.Start:key.End])
	}

	colon := key.End
	if mv.Start != nil {
		colon = max(key.End, c.tokenStart(mv.Start, ":"))
	}
	out := &Node{
		Kind:  KindMapping,
		Key:   key,
		Value: c.value(mv.Value),
		Start: key.Start,
		End:   min(colon+1, len(c.src)),
	}
	if out.Value != nil {
		out.End = max(out.End, out.Value.End)
	}
	return out
}

func (c *converter) sequence(s *ast.SequenceNode) *Node {
	out := &Node{Kind: KindSequence}
	if s.Start != nil {
		want := "-"
		if s.IsFlowStyle {
			want = "["
		}
		out.Start = c.tokenStart(s.Start, want)
		out.End = out.Start + 1
	}
	for _, item := range s.Values {
		v := c.value(item)
		if v == nil {
			// "-" with nothing after it: an explicit null, not a tokenizer artefact
			at := out.End
			if item != nil && item.GetToken() != nil {
				at = c.tokenStart(item.GetToken(), "")
			}
			v = &Node{Kind: KindScalar, Type: ScalarNull, Start: at, End: at}
		}
		out.Items = append(out.Items, v)
	}
	if s.IsFlowStyle && s.End != nil {
		out.End = c.tokenStart(s.End, "]") + 1
	}
	for _, item := range out.Items {
		out.Start = min(out.Start, item.Start)
		out.End = max(out.End, item.End)
	}
	return out
}

func (c *converter) tag(n *ast.TagNode) *Node {
	name := ""
	start := 0
	if n.Start != nil {
		name = n.Start.Value
		start = c.tokenStart(n.Start, "!")
	}
	inner := c.value(n.Value)

	if name == includeTag {
		out := &Node{Kind: KindIncludeRef, Start: start, End: start + len(name)}
		if inner != nil {
			out.Text = inner.Text
			out.End = max(out.End, inner.End)
		}
		return out
	}
	if inner == nil {
		return nil
	}
	if name == "!!str" && inner.Kind == KindScalar {
		inner.Type = ScalarString
		inner.Quoted = true
		inner.Parsed = nil
	}
	inner.Start = min(inner.Start, start)
	return inner
}

func (c *converter) scalar(tk *token.Token, typ ScalarType, text string, parsed any) *Node {
	start := c.tokenStart(tk, "")
	out := &Node{Kind: KindScalar, Type: typ, Text: text, Parsed: parsed, Start: start}
	if tk == nil {
		out.End = start
		return out
	}
	switch tk.Type {
	case token.DoubleQuoteType:
		out.Quoted = true
		out.End = c.quotedEnd(start, '"')
	case token.SingleQuoteType:
		out.Quoted = true
		out.End = c.quotedEnd(start, '\'')
	default:
		if strings.HasPrefix(c.src[start:], tk.Value) {
			out.End = start + len(tk.Value)
		} else {
			out.End = c.lineEnd(start)
		}
	}
	return out
}

func (c *converter) isNullLiteral(tk *token.Token) bool {
	if tk == nil || tk.Position == nil {
		return false
	}
	off := c.offsetAt(tk.Position.Line, tk.Position.Column)
	if off >= c.seg.end {
		return false
	}
	rest := c.src[off:c.seg.end]
	for _, lit := range []string{"null", "Null", "NULL", "~"} {
		if !strings.HasPrefix(rest, lit) {
			continue
		}
		if len(rest) == len(lit) || strings.IndexByte(" \t\r\n,]}#", rest[len(lit)]) >= 0 {
			return true
		}
	}
	return false
}

// tokenStart returns the byte offset of tk. goccy columns count runes, so the
// line is walked rather than indexed. When want is given and the computed
// offset does not start with it, the nearest occurrence on the same line wins.
func (c *converter) tokenStart(tk *token.Token, want string) int {
	if tk == nil || tk.Position == nil {
		return 0
	}
	off := c.offsetAt(tk.Position.Line, tk.Position.Column)
	if want == "" {
		switch tk.Type {
		case token.DoubleQuoteType:
			want = `"`
		case token.SingleQuoteType:
			want = "'"
		default:
			if r, _ := utf8.DecodeRuneInString(tk.Value); r != utf8.RuneError {
				want = string(r)
			}
		}
	}
	return c.align(off, want)
}

// offsetAt converts a 1-based line and rune column of the current segment to
// a byte offset in the whole source
func (c *converter) offsetAt(line, col int) int {
	off := c.lines.LineStart(c.seg.line + line - 1)
	for i := 1; i < col && off < len(c.src); i++ {
		if c.src[off] == '\n' || c.src[off] == '\r' {
			break
		}
		_, size := utf8.DecodeRuneInString(c.src[off:])
		off += size
	}
	return off
}

func (c *converter) align(off int, want string) int {
	off = min(max(off, 0), len(c.src))
	if want == "" || strings.HasPrefix(c.src[off:], want) {
		return off
	}
	lineStart := c.lines.LineStart(c.lines.Position(off).Line)
	lineEnd := c.lineEnd(off)
	best := -1
	for i := lineStart; i+len(want) <= lineEnd; i++ {
		if c.src[i:i+len(want)] != want {
			continue
		}
		if best < 0 || abs(i-off) < abs(best-off) {
			best = i
		}
	}
	if best < 0 {
		return off
	}
	return best
}

// lineEnd returns the offset of the line terminator on the line containing off
func (c *converter) lineEnd(off int) int {
	for i := off; i < len(c.src); i++ {
		if c.src[i] == '\n' || c.src[i] == '\r' {
			return i
		}
	}
	return len(c.src)
}

func (c *converter) quotedEnd(start int, quote byte) int {
	for i := start + 1; i < len(c.src); i++ {
		switch c.src[i] {
		case '\\':
			if quote == '"' {
				i++
			}
		case quote:
			if quote == '\'' && i+1 < len(c.src) && c.src[i+1] == '\'' {
				i++
				continue
			}
			return i + 1
		}
	}
	return len(c.src)
}

// blockEnd returns the end of a literal or folded block scalar whose header
// starts at header: the last non-blank line indented deeper than the header line.
func (c *converter) blockEnd(header int) int {
	line := c.lines.Position(header).Line
	indent := indentOf(c.lineText(line))
	end := c.lineEnd(header)
	for l := line + 1; l < c.lines.LineCount(); l++ {
		text := c.lineText(l)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if indentOf(text) <= indent {
			break
		}
		end = c.lines.LineStart(l) + len(text)
	}
	return end
}

func (c *converter) lineText(line int) string {
	start := c.lines.LineStart(line)
	return c.src[start:c.lineEnd(start)]
}

func indentOf(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
