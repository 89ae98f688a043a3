package jsonast

// Walk calls fn for n and its descendants in source order. If fn returns
// false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Interface converts n to plain Go values: map[string]any, []any, string,
// int64 (integral numbers), float64, bool and nil. Duplicate keys keep the
// last value.
func Interface(n Node) any {
	switch n := n.(type) {
	case *Object:
		m := make(map[string]any, len(n.Properties))
		for _, p := range n.Properties {
			m[p.Key.Value] = Interface(p.Value)
		}
		return m
	case *Array:
		out := make([]any, len(n.Items))
		for i, item := range n.Items {
			out[i] = Interface(item)
		}
		return out
	case *Property:
		return Interface(n.Value)
	case *String:
		return n.Value
	case *Number:
		if i, ok := n.Int64(); ok {
			return i
		}
		return n.Value
	case *Boolean:
		return n.Value
	case *Null, nil:
		return nil
	default:
		panic("jsonast: unexpected node type")
	}
}
