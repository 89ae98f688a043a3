package parser

import (
	"github.com/githubnext/yamlls/pkg/jsonast"
	"github.com/githubnext/yamlls/pkg/position"
	"github.com/githubnext/yamlls/pkg/schema"
)

// Problem is a message attached to a byte range of the source
type Problem struct {
	Message    string
	Start, End int
}

// Document is one YAML document converted to the JSON-shaped AST, together
// with the errors and warnings found while reading it.
type Document struct {
	// Root is nil when no AST could be built
	Root jsonast.Node
	// Lines is shared by every document of a stream
	Lines    *position.Index
	Errors   []Problem
	Warnings []Problem
}

// Validate returns the sub-schemas of s that apply at the root of the document
func (d *Document) Validate(s *schema.Schema) []schema.SubSchema {
	if d.Root == nil || s == nil {
		return nil
	}
	return s.MatchSubSchemas(d.Root, d.Root.Start())
}

// ValidationProblems validates the document against s
func (d *Document) ValidationProblems(s *schema.Schema) []Problem {
	if d.Root == nil || s == nil {
		return nil
	}
	var out []Problem
	for _, p := range s.Validate(d.Root) {
		out = append(out, Problem{Message: p.Message, Start: p.Start, End: p.End})
	}
	return out
}

// NodeAtOffset returns the deepest node whose range contains offset, both
// ends inclusive. Among siblings that contain the offset the one ending last
// wins, so an enclosing node is preferred over one that merely touches it.
func (d *Document) NodeAtOffset(offset int) jsonast.Node {
	if d.Root == nil || !jsonast.Contains(d.Root, offset) {
		return nil
	}
	return nodeAt(d.Root, offset)
}

func nodeAt(n jsonast.Node, offset int) jsonast.Node {
	var best jsonast.Node
	for _, c := range jsonast.Children(n) {
		if !jsonast.Contains(c, offset) {
			continue
		}
		if best == nil || c.End() >= best.End() {
			best = c
		}
	}
	if best == nil {
		return n
	}
	return nodeAt(best, offset)
}

// NodeByIndentation returns the node a reader would consider to be at the
// line and indentation of offset. Nodes starting right of the cursor column
// are nested deeper and ignored; a node starting on the cursor line is
// preferred, otherwise the last one starting before it.
func (d *Document) NodeByIndentation(offset int) jsonast.Node {
	if d.Root == nil {
		return nil
	}
	target := d.Lines.Position(offset)
	if n, _ := d.byIndent(indentChildren(d.Root), target); n != nil {
		return n
	}
	return d.Root
}

func (d *Document) byIndent(nodes []jsonast.Node, target position.Position) (jsonast.Node, bool) {
	var cand, last jsonast.Node
	exact := false
	for _, n := range nodes {
		p := d.Lines.Position(n.Start())
		if p.Column > target.Column {
			continue
		}
		last = n
		switch {
		case p.Line == target.Line:
			cand, exact = n, true
		case p.Line < target.Line && !exact:
			cand = n
		}
	}
	if cand == nil {
		cand = last
	}
	if cand == nil {
		return nil, false
	}
	if sub, subExact := d.byIndent(indentChildren(cand), target); sub != nil && (subExact || !exact) {
		return sub, subExact
	}
	return cand, exact
}

// indentChildren is Children without property keys
func indentChildren(n jsonast.Node) []jsonast.Node {
	if p, ok := n.(*jsonast.Property); ok {
		return []jsonast.Node{p.Value}
	}
	return jsonast.Children(n)
}
