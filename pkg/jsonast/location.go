package jsonast

import (
	"errors"
	"strconv"
	"strings"
)

// LocationKind tells whether a Location holds a key, an index, or nothing
type LocationKind int

const (
	LocationNone LocationKind = iota
	LocationKey
	LocationIndex
)

// Location is how a node is addressed from its parent: a property key for
// object members, a zero-based index for array items.
type Location struct {
	Kind  LocationKind
	Key   string
	Index int
}

// KeyLocation addresses a property value by key
func KeyLocation(key string) Location { return Location{Kind: LocationKey, Key: key} }

// IndexLocation addresses an array item by index
func IndexLocation(i int) Location { return Location{Kind: LocationIndex, Index: i} }

// IsSet reports whether the location holds a key or index
func (l Location) IsSet() bool { return l.Kind != LocationNone }

// Segment renders the location as an unescaped pointer segment
func (l Location) Segment() string {
	switch l.Kind {
	case LocationKey:
		return l.Key
	case LocationIndex:
		return strconv.Itoa(l.Index)
	default:
		return ""
	}
}

// Path returns the segments leading from the root to n. Property nodes and
// keys contribute nothing; their values carry the key.
func Path(n Node) []string {
	var rev []string
	for cur := n; cur != nil; cur = cur.Parent() {
		if loc := cur.Location(); loc.IsSet() {
			rev = append(rev, loc.Segment())
		}
	}
	out := make([]string, len(rev))
	for i, s := range rev {
		out[len(rev)-1-i] = s
	}
	return out
}

// Pointer returns the RFC 6901 JSON pointer of n, "" for the root
func Pointer(n Node) string {
	return EncodePointer(Path(n))
}

// EncodePointer joins segments into an RFC 6901 pointer
func EncodePointer(segments []string) string {
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteByte('/')
		s = strings.ReplaceAll(s, "~", "~0")
		sb.WriteString(strings.ReplaceAll(s, "/", "~1"))
	}
	return sb.String()
}

// DecodePointer splits an RFC 6901 pointer (e.g. "/jobs/build/steps/0") into
// unescaped segments. "" and "/" both denote the root.
func DecodePointer(ptr string) ([]string, error) {
	if ptr == "" || ptr == "/" {
		return []string{}, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, errors.New("invalid json pointer: must start with '/'")
	}
	parts := strings.Split(ptr[1:], "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return parts, nil
}

// Lookup follows segments from root and returns the addressed value node, or
// nil if the path does not exist. Duplicate keys resolve to the last occurrence,
// matching how the tree is seen as JSON.
func Lookup(root Node, segments []string) Node {
	cur := root
	for _, seg := range segments {
		switch n := cur.(type) {
		case *Object:
			var found *Property
			for _, p := range n.Properties {
				if p.Key.Value == seg {
					found = p
				}
			}
			if found == nil {
				return nil
			}
			cur = found.Value
		case *Array:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(n.Items) {
				return nil
			}
			cur = n.Items[i]
		default:
			return nil
		}
	}
	return cur
}
