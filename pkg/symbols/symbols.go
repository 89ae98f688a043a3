// Package symbols builds a flat document outline from a parsed stream.
package symbols

import (
	"github.com/githubnext/yamlls/pkg/jsonast"
	"github.com/githubnext/yamlls/pkg/parser"
	"github.com/githubnext/yamlls/pkg/position"
)

// Kind uses the LSP symbol kind numbering
type Kind int

const (
	KindModule   Kind = 2
	KindVariable Kind = 13
	KindString   Kind = 15
	KindNumber   Kind = 16
	KindBoolean  Kind = 17
	KindArray    Kind = 18
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindVariable:
		return "variable"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Symbol is one property of a document
type Symbol struct {
	Name string
	Kind Kind
	// Range covers the whole property, Selection only its key
	Range     position.Range
	Selection position.Range
	// Container is the key of the enclosing property, empty at the top level
	Container string
}

// Collect returns one symbol per property of every document, in source
// order. It returns nil for a stream without documents.
func Collect(stream *parser.Stream) []Symbol {
	if stream == nil || len(stream.Documents) == 0 {
		return nil
	}
	out := []Symbol{}
	for _, doc := range stream.Documents {
		if doc.Root != nil {
			collect(doc, doc.Root, "", &out)
		}
	}
	return out
}

func collect(doc *parser.Document, n jsonast.Node, container string, out *[]Symbol) {
	switch n := n.(type) {
	case *jsonast.Array:
		for _, item := range n.Items {
			collect(doc, item, container, out)
		}
	case *jsonast.Object:
		for _, p := range n.Properties {
			*out = append(*out, Symbol{
				Name:      p.Key.Value,
				Kind:      kindOf(p.Value),
				Range:     doc.Lines.Range(p.Start(), p.End()),
				Selection: doc.Lines.Range(p.Key.Start(), p.Key.End()),
				Container: container,
			})
			collect(doc, p.Value, p.Key.Value, out)
		}
	}
}

func kindOf(n jsonast.Node) Kind {
	switch n.Kind() {
	case jsonast.ObjectKind:
		return KindModule
	case jsonast.ArrayKind:
		return KindArray
	case jsonast.StringKind:
		return KindString
	case jsonast.NumberKind:
		return KindNumber
	case jsonast.BooleanKind:
		return KindBoolean
	default:
		return KindVariable
	}
}
