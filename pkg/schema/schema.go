// Package schema validates JSON-shaped YAML documents against JSON schemas.
//
// Compilation and validation are delegated to
// github.com/santhosh-tekuri/jsonschema/v6. Validation errors are mapped back
// onto AST nodes so that every Problem carries a byte range.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/githubnext/yamlls/pkg/jsonast"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// inlineSchemaURL names schemas compiled from memory without a URL of their own
const inlineSchemaURL = "http://yamlls.invalid/schema.json"

// Schema is a compiled JSON schema together with its source document
type Schema struct {
	URL      string
	compiled *jsonschema.Schema
	doc      any
	printer  *message.Printer
}

// Problem is a validation failure located in the source text
type Problem struct {
	Message string
	// Pointer is the JSON pointer of the failing instance
	Pointer    string
	Start, End int
}

// Option configures compilation
type Option func(*options)

type options struct {
	printer *message.Printer
	loader  jsonschema.URLLoader
}

// WithPrinter sets the printer used to render validation messages
func WithPrinter(p *message.Printer) Option {
	return func(o *options) { o.printer = p }
}

// WithLoader sets the loader used to resolve remote $ref targets
func WithLoader(l jsonschema.URLLoader) Option {
	return func(o *options) { o.loader = l }
}

// Compile compiles a decoded schema document. An empty url uses a placeholder.
func Compile(url string, doc any, opts ...Option) (*Schema, error) {
	o := options{printer: message.NewPrinter(language.English)}
	for _, opt := range opts {
		opt(&o)
	}
	if url == "" {
		url = inlineSchemaURL
	}

	compiler := jsonschema.NewCompiler()
	if o.loader != nil {
		compiler.UseLoader(o.loader)
	}
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", url, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", url, err)
	}
	return &Schema{URL: url, compiled: compiled, doc: doc, printer: o.printer}, nil
}

// CompileJSON decodes and compiles a schema given as JSON text
func CompileJSON(url string, data []byte, opts ...Option) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}
	return Compile(url, doc, opts...)
}

// Document returns the decoded schema document
func (s *Schema) Document() any {
	return s.doc
}

// Validate checks root against the schema and returns one Problem per leaf
// validation error, in the order the validator reports them.
func (s *Schema) Validate(root jsonast.Node) []Problem {
	if root == nil {
		return nil
	}
	err := s.compiled.Validate(instance(root))
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Problem{{Message: err.Error(), Start: root.Start(), End: root.End()}}
	}
	var out []Problem
	s.collect(root, verr, &out)
	return out
}

func (s *Schema) collect(root jsonast.Node, e *jsonschema.ValidationError, out *[]Problem) {
	if len(e.Causes) > 0 {
		for _, cause := range e.Causes {
			s.collect(root, cause, out)
		}
		return
	}

	node := jsonast.Lookup(root, e.InstanceLocation)
	if node == nil {
		node = root
	}
	msg := e.ErrorKind.LocalizedString(s.printer)
	pointer := jsonast.EncodePointer(e.InstanceLocation)

	if k, ok := e.ErrorKind.(*kind.AdditionalProperties); ok {
		if obj, ok := node.(*jsonast.Object); ok {
			found := false
			for _, name := range k.Properties {
				if p := obj.Find(name); p != nil {
					found = true
					*out = append(*out, Problem{
						Message: msg,
						Pointer: jsonast.Pointer(p.Value),
						Start:   p.Key.Start(),
						End:     p.Key.End(),
					})
				}
			}
			if found {
				return
			}
		}
	}

	start, end := highlight(node)
	*out = append(*out, Problem{Message: msg, Pointer: pointer, Start: start, End: end})
}

// highlight picks the range reported for node. Containers that are the value
// of a property are reported on the key so the whole block is not underlined.
func highlight(node jsonast.Node) (int, int) {
	switch node.(type) {
	case *jsonast.Object, *jsonast.Array:
		if p, ok := node.Parent().(*jsonast.Property); ok {
			return p.Key.Start(), p.Key.End()
		}
	}
	return node.Start(), node.End()
}

// instance converts the AST to the value model the validator expects, with
// numbers as json.Number.
func instance(n jsonast.Node) any {
	switch n := n.(type) {
	case *jsonast.Object:
		m := make(map[string]any, len(n.Properties))
		for _, p := range n.Properties {
			m[p.Key.Value] = instance(p.Value)
		}
		return m
	case *jsonast.Array:
		out := make([]any, len(n.Items))
		for i, item := range n.Items {
			out[i] = instance(item)
		}
		return out
	case *jsonast.Property:
		return instance(n.Value)
	case *jsonast.String:
		return n.Value
	case *jsonast.Number:
		if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
			return n.Value
		}
		if i, ok := n.Int64(); ok {
			return json.Number(strconv.FormatInt(i, 10))
		}
		if n.IsInteger {
			// Out of int64 range; keep the digits so it stays an integer.
			return json.Number(strconv.FormatFloat(n.Value, 'f', 0, 64))
		}
		return json.Number(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *jsonast.Boolean:
		return n.Value
	default:
		return nil
	}
}
