// Package jsonast defines the JSON-shaped syntax tree built from YAML documents.
//
// Node is a closed set of seven variants. Consumers switch on the concrete type
// (or on Kind) and must handle every case. Each node records its byte range in
// the source text and a non-owning pointer to its parent so that features such
// as hover and completion can map an offset back to a path.
package jsonast

import (
	"fmt"
	"math"
)

// Kind identifies the variant of a Node
type Kind int

const (
	ObjectKind Kind = iota + 1
	ArrayKind
	PropertyKind
	StringKind
	NumberKind
	BooleanKind
	NullKind
)

func (k Kind) String() string {
	switch k {
	case ObjectKind:
		return "object"
	case ArrayKind:
		return "array"
	case PropertyKind:
		return "property"
	case StringKind:
		return "string"
	case NumberKind:
		return "number"
	case BooleanKind:
		return "boolean"
	case NullKind:
		return "null"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is one of *Object, *Array, *Property, *String, *Number, *Boolean or *Null.
type Node interface {
	Kind() Kind
	Parent() Node
	Start() int
	End() int
	Location() Location

	base() *nodeBase
}

type nodeBase struct {
	parent     Node
	start, end int
	location   Location
}

func (b *nodeBase) Parent() Node       { return b.parent }
func (b *nodeBase) Start() int         { return b.start }
func (b *nodeBase) End() int           { return b.end }
func (b *nodeBase) Location() Location { return b.location }
func (b *nodeBase) base() *nodeBase    { return b }

func newBase(parent Node, start, end int) nodeBase {
	if end < start {
		end = start
	}
	return nodeBase{parent: parent, start: start, end: end}
}

// SetLocation records how n is addressed from its parent
func SetLocation(n Node, loc Location) { n.base().location = loc }

// SetRange replaces the byte range of n. An end before start collapses to start.
func SetRange(n Node, start, end int) {
	b := n.base()
	b.start = start
	b.end = max(start, end)
}

// Cover widens the range of n so that it contains [start, end]
func Cover(n Node, start, end int) {
	b := n.base()
	b.start = min(b.start, start)
	b.end = max(b.end, end)
}

// An Object is a mapping; properties keep source order and may repeat keys.
type Object struct {
	nodeBase
	Properties []*Property
}

func (*Object) Kind() Kind { return ObjectKind }

// NewObject returns an empty object spanning [start, end]
func NewObject(parent Node, start, end int) *Object {
	return &Object{nodeBase: newBase(parent, start, end)}
}

// AddProperty appends p and extends the object to contain it
func (o *Object) AddProperty(p *Property) {
	p.parent = o
	o.Properties = append(o.Properties, p)
	Cover(o, p.start, p.end)
}

// Find returns the first property with the given key, or nil
func (o *Object) Find(key string) *Property {
	for _, p := range o.Properties {
		if p.Key.Value == key {
			return p
		}
	}
	return nil
}

// An Array is an ordered list of values
type Array struct {
	nodeBase
	Items []Node
}

func (*Array) Kind() Kind { return ArrayKind }

// NewArray returns an empty array spanning [start, end]
func NewArray(parent Node, start, end int) *Array {
	return &Array{nodeBase: newBase(parent, start, end)}
}

// AddItem appends n, sets its index location and extends the array to contain it
func (a *Array) AddItem(n Node) {
	b := n.base()
	b.parent = a
	b.location = IndexLocation(len(a.Items))
	a.Items = append(a.Items, n)
	Cover(a, b.start, b.end)
}

// A Property is one key/value member of an Object
type Property struct {
	nodeBase
	Key   *String
	Value Node
}

func (*Property) Kind() Kind { return PropertyKind }

// NewProperty returns a property for key. The value must be set with SetValue.
func NewProperty(parent Node, key *String, start, end int) *Property {
	p := &Property{nodeBase: newBase(parent, start, end), Key: key}
	key.parent = p
	Cover(p, key.start, key.end)
	return p
}

// SetValue attaches v, addressing it by the property key
func (p *Property) SetValue(v Node) {
	b := v.base()
	b.parent = p
	b.location = KeyLocation(p.Key.Value)
	p.Value = v
	Cover(p, b.start, b.end)
}

// A String is a string scalar. Keys are always Strings.
type String struct {
	nodeBase
	Value string
	IsKey bool
}

func (*String) Kind() Kind { return StringKind }

// NewString returns a string node with the given value
func NewString(parent Node, value string, start, end int) *String {
	return &String{nodeBase: newBase(parent, start, end), Value: value}
}

// A Number is a numeric scalar
type Number struct {
	nodeBase
	Value     float64
	IsInteger bool
}

func (*Number) Kind() Kind { return NumberKind }

// NewNumber returns a number node
func NewNumber(parent Node, value float64, isInteger bool, start, end int) *Number {
	return &Number{nodeBase: newBase(parent, start, end), Value: value, IsInteger: isInteger}
}

// Int64 returns the value as an int64 when n is an integer that fits. The
// upper bound is exclusive: float64(math.MaxInt64) is 2^63.
func (n *Number) Int64() (int64, bool) {
	if !n.IsInteger || n.Value < math.MinInt64 || n.Value >= math.MaxInt64 {
		return 0, false
	}
	return int64(n.Value), true
}

// A Boolean is a boolean scalar
type Boolean struct {
	nodeBase
	Value bool
}

func (*Boolean) Kind() Kind { return BooleanKind }

// NewBoolean returns a boolean node
func NewBoolean(parent Node, value bool, start, end int) *Boolean {
	return &Boolean{nodeBase: newBase(parent, start, end), Value: value}
}

// Null is the null scalar, also used for missing values
type Null struct {
	nodeBase
}

func (*Null) Kind() Kind { return NullKind }

// NewNull returns a null node
func NewNull(parent Node, start, end int) *Null {
	return &Null{nodeBase: newBase(parent, start, end)}
}

// Children returns the direct children of n in source order.
// A property's children are its key followed by its value.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Object:
		out := make([]Node, len(n.Properties))
		for i, p := range n.Properties {
			out[i] = p
		}
		return out
	case *Array:
		return n.Items
	case *Property:
		if n.Value == nil {
			return []Node{n.Key}
		}
		return []Node{n.Key, n.Value}
	case *String, *Number, *Boolean, *Null:
		return nil
	default:
		panic(fmt.Sprintf("jsonast: unexpected node type %T", n))
	}
}

// Contains reports whether offset lies within n, including both endpoints
func Contains(n Node, offset int) bool {
	return n.Start() <= offset && offset <= n.End()
}
