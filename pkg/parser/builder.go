package parser

import (
	"strings"

	"github.com/githubnext/yamlls/pkg/jsonast"
	"github.com/githubnext/yamlls/pkg/yamlraw"
)

// booleanWords are the YAML 1.1 boolean spellings accepted in addition to
// the tokenizer's own true/false, compared case-insensitively.
var booleanWords = map[string]bool{
	"y":     true,
	"yes":   true,
	"on":    true,
	"true":  true,
	"n":     false,
	"no":    false,
	"off":   false,
	"false": false,
}

// Build translates one raw node into an AST node attached to parent.
// It returns nil for kinds that have no JSON counterpart; it never fails.
func Build(raw *yamlraw.Node, parent jsonast.Node) jsonast.Node {
	b := &builder{active: make(map[*yamlraw.Node]bool)}
	return b.build(raw, parent)
}

type builder struct {
	// alias targets currently being expanded
	active map[*yamlraw.Node]bool
}

func (b *builder) build(raw *yamlraw.Node, parent jsonast.Node) jsonast.Node {
	if raw == nil {
		return nil
	}

	switch raw.Kind {
	case yamlraw.KindMap:
		obj := jsonast.NewObject(parent, raw.Start, raw.End)
		for _, m := range raw.Mappings {
			if m == nil || m.Kind != yamlraw.KindMapping {
				continue
			}
			obj.AddProperty(b.property(m, obj))
		}
		return obj

	case yamlraw.KindMapping:
		return b.property(raw, parent)

	case yamlraw.KindSequence:
		arr := jsonast.NewArray(parent, raw.Start, raw.End)
		for i, item := range raw.Items {
			// Tokenizers emit a spurious trailing null for some block
			// sequences; keeping it would add a phantom element.
			if item == nil && i == len(raw.Items)-1 {
				break
			}
			var n jsonast.Node
			if item == nil {
				n = jsonast.NewNull(arr, raw.End, raw.End)
			} else {
				n = b.build(item, arr)
			}
			if n != nil {
				arr.AddItem(n)
			}
		}
		return arr

	case yamlraw.KindScalar:
		return b.scalar(raw, parent)

	case yamlraw.KindAnchorRef:
		var n jsonast.Node
		if raw.Target != nil && !b.active[raw.Target] {
			b.active[raw.Target] = true
			n = b.build(raw.Target, parent)
			delete(b.active, raw.Target)
		}
		if n == nil {
			return jsonast.NewNull(parent, raw.Start, raw.End)
		}
		// The expansion is addressed at the alias, not at the anchor it copies.
		jsonast.Walk(n, func(x jsonast.Node) bool {
			jsonast.SetRange(x, raw.Start, raw.End)
			return true
		})
		return n

	case yamlraw.KindIncludeRef:
		return jsonast.NewString(parent, raw.Text, raw.Start, raw.End)

	default:
		return nil
	}
}

// property builds a key/value pair. The key is always a String no matter what
// YAML node it was, and a missing value becomes a zero-width Null at the end
// of the mapping.
func (b *builder) property(raw *yamlraw.Node, parent jsonast.Node) *jsonast.Property {
	keyText, keyStart, keyEnd := "", raw.Start, raw.Start
	if raw.Key != nil {
		keyText, keyStart, keyEnd = raw.Key.Text, raw.Key.Start, raw.Key.End
	}
	key := jsonast.NewString(nil, keyText, keyStart, keyEnd)
	key.IsKey = true

	prop := jsonast.NewProperty(parent, key, raw.Start, raw.End)
	var value jsonast.Node
	if raw.Value != nil {
		value = b.build(raw.Value, prop)
	}
	if value == nil {
		value = jsonast.NewNull(prop, raw.End, raw.End)
	}
	prop.SetValue(value)
	return prop
}

func (b *builder) scalar(raw *yamlraw.Node, parent jsonast.Node) jsonast.Node {
	// Matched on the text whatever the scalar style
	if v, ok := booleanWords[strings.ToLower(raw.Text)]; ok {
		return jsonast.NewBoolean(parent, v, raw.Start, raw.End)
	}

	switch raw.Type {
	case yamlraw.ScalarNull:
		return jsonast.NewNull(parent, raw.Start, raw.End)
	case yamlraw.ScalarBool:
		return jsonast.NewBoolean(parent, raw.BoolValue(), raw.Start, raw.End)
	case yamlraw.ScalarInt:
		return jsonast.NewNumber(parent, raw.FloatValue(), true, raw.Start, raw.End)
	case yamlraw.ScalarFloat:
		return jsonast.NewNumber(parent, raw.FloatValue(), false, raw.Start, raw.End)
	default:
		return jsonast.NewString(parent, raw.Text, raw.Start, raw.End)
	}
}
