package schema

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/githubnext/yamlls/pkg/jsonast"
)

// SubSchema is a fragment of the schema document that applies to a node
type SubSchema struct {
	Node jsonast.Node
	// Pointer locates the fragment in the schema document, e.g. "#/properties/name"
	Pointer string
	Schema  map[string]any
}

type frame struct {
	ptr string
	m   map[string]any
}

// MatchSubSchemas returns the schema fragments that apply to each node on the
// path from root down to the node at offset, outermost first. Local $ref and
// allOf/anyOf/oneOf branches are expanded; every branch is reported.
func (s *Schema) MatchSubSchemas(root jsonast.Node, offset int) []SubSchema {
	rootMap, ok := s.doc.(map[string]any)
	if !ok || root == nil || !jsonast.Contains(root, offset) {
		return nil
	}

	frames := s.expand(frame{ptr: "#", m: rootMap}, map[string]bool{})
	var out []SubSchema
	node := root
	for node != nil {
		for _, f := range frames {
			out = append(out, SubSchema{Node: node, Pointer: f.ptr, Schema: f.m})
		}
		next, seg := childAt(node, offset)
		if next == nil {
			break
		}
		frames = s.children(frames, node, seg)
		node = next
	}
	return out
}

// childAt returns the value below node that contains offset and the segment addressing it
func childAt(node jsonast.Node, offset int) (jsonast.Node, string) {
	switch n := node.(type) {
	case *jsonast.Object:
		var best *jsonast.Property
		for _, p := range n.Properties {
			if jsonast.Contains(p, offset) && (best == nil || p.End() >= best.End()) {
				best = p
			}
		}
		if best != nil {
			return best.Value, best.Key.Value
		}
	case *jsonast.Array:
		var best jsonast.Node
		idx := 0
		for i, item := range n.Items {
			if jsonast.Contains(item, offset) && (best == nil || item.End() >= best.End()) {
				best, idx = item, i
			}
		}
		if best != nil {
			return best, strconv.Itoa(idx)
		}
	}
	return nil, ""
}

func (s *Schema) children(frames []frame, parent jsonast.Node, seg string) []frame {
	var out []frame
	add := func(ptr string, v any) {
		if m, ok := v.(map[string]any); ok {
			out = append(out, s.expand(frame{ptr: ptr, m: m}, map[string]bool{})...)
		}
	}

	for _, f := range frames {
		switch parent.(type) {
		case *jsonast.Object:
			matched := false
			if props, ok := f.m["properties"].(map[string]any); ok {
				if v, ok := props[seg]; ok {
					add(f.ptr+"/properties/"+escape(seg), v)
					matched = true
				}
			}
			if pats, ok := f.m["patternProperties"].(map[string]any); ok {
				for _, pat := range sortedKeys(pats) {
					if re, err := regexp.Compile(pat); err == nil && re.MatchString(seg) {
						add(f.ptr+"/patternProperties/"+escape(pat), pats[pat])
						matched = true
					}
				}
			}
			if !matched {
				add(f.ptr+"/additionalProperties", f.m["additionalProperties"])
			}

		case *jsonast.Array:
			idx, _ := strconv.Atoi(seg)
			if prefix, ok := f.m["prefixItems"].([]any); ok {
				if idx < len(prefix) {
					add(f.ptr+"/prefixItems/"+seg, prefix[idx])
					continue
				}
				add(f.ptr+"/items", f.m["items"])
				continue
			}
			switch items := f.m["items"].(type) {
			case map[string]any:
				add(f.ptr+"/items", items)
			case []any:
				if idx < len(items) {
					add(f.ptr+"/items/"+seg, items[idx])
				} else {
					add(f.ptr+"/additionalItems", f.m["additionalItems"])
				}
			}
		}
	}
	return out
}

// expand returns f followed by the fragments reachable through $ref and the
// allOf/anyOf/oneOf keywords
func (s *Schema) expand(f frame, visited map[string]bool) []frame {
	if visited[f.ptr] {
		return nil
	}
	visited[f.ptr] = true
	out := []frame{f}

	if ref, ok := f.m["$ref"].(string); ok && strings.HasPrefix(ref, "#") {
		if target, ok := s.resolve(ref).(map[string]any); ok {
			out = append(out, s.expand(frame{ptr: ref, m: target}, visited)...)
		}
	}
	for _, kw := range []string{"allOf", "anyOf", "oneOf"} {
		branches, _ := f.m[kw].([]any)
		for i, b := range branches {
			if m, ok := b.(map[string]any); ok {
				out = append(out, s.expand(frame{ptr: f.ptr + "/" + kw + "/" + strconv.Itoa(i), m: m}, visited)...)
			}
		}
	}
	return out
}

// resolve follows a local reference such as "#/definitions/port"
func (s *Schema) resolve(ref string) any {
	segments, err := jsonast.DecodePointer(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return nil
	}
	cur := s.doc
	for _, seg := range segments {
		switch v := cur.(type) {
		case map[string]any:
			cur = v[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(v) {
				return nil
			}
			cur = v[i]
		default:
			return nil
		}
	}
	return cur
}

func escape(seg string) string {
	return strings.TrimPrefix(jsonast.EncodePointer([]string{seg}), "/")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
