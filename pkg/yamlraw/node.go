// Package yamlraw exposes a YAML parse tree with byte offsets.
//
// The tree is deliberately loose: it mirrors YAML's own structure (maps of
// key/value mappings, sequences, scalars, alias references and !include
// references) and leaves JSON normalisation to the parser package. Trees are
// produced from text by ParseAll, which is backed by github.com/goccy/go-yaml,
// but they are plain structs and may be built by hand.
package yamlraw

// Kind is the structural kind of a raw node
type Kind int

const (
	KindUnknown Kind = iota
	KindMap
	KindMapping
	KindSequence
	KindScalar
	KindAnchorRef
	KindIncludeRef
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindScalar:
		return "scalar"
	case KindAnchorRef:
		return "anchor-ref"
	case KindIncludeRef:
		return "include-ref"
	default:
		return "unknown"
	}
}

// ScalarType is the primitive type the tokenizer inferred for a scalar
type ScalarType int

const (
	ScalarString ScalarType = iota
	ScalarNull
	ScalarBool
	ScalarInt
	ScalarFloat
)

// Node is one raw parse-tree node. Which fields are meaningful depends on Kind:
//
//	KindMap         Mappings
//	KindMapping     Key, Value (Value may be nil for "key:")
//	KindSequence    Items (entries may be nil)
//	KindScalar      Text, Type, Quoted, Parsed
//	KindAnchorRef   Text (alias name), Target (nil when unresolved)
//	KindIncludeRef  Text (the include argument)
//
// Start and End are byte offsets into the source text.
type Node struct {
	Kind       Kind
	Start, End int

	Mappings []*Node
	Key      *Node
	Value    *Node
	Items    []*Node
	Target   *Node

	// Text is the scalar value after unquoting. For non-scalar keys it is the
	// key's source text.
	Text string
	Type ScalarType
	// Quoted is set for quoted, block and !!str-tagged scalars
	Quoted bool
	// Parsed holds the tokenizer's decoded value (bool, int64, uint64 or float64)
	Parsed any
}

// Issue is a tokenizer-level finding attached to a document
type Issue struct {
	Reason     string
	Start, End int
	Warning    bool
}

// DuplicateKeyReason is the Issue reason used for repeated mapping keys
const DuplicateKeyReason = "duplicate key"

// Document is one "---"-delimited document of a stream
type Document struct {
	// Root is nil when the document is empty or could not be parsed
	Root       *Node
	Start, End int
	Issues     []Issue
}
