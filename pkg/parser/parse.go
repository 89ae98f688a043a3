// Package parser turns YAML text into a stream of JSON-shaped documents.
//
// Raw parse trees come from pkg/yamlraw; Build normalises them into
// pkg/jsonast nodes. Each document keeps its own error and warning lists so
// that the validation layer can merge them with schema problems.
package parser

import (
	"github.com/githubnext/yamlls/pkg/position"
	"github.com/githubnext/yamlls/pkg/yamlraw"
)

// Messages holds the texts the parser reports. Callers that localise pass
// their own table to New.
type Messages struct {
	// InvalidSymbol is reported when a document has no object, array or scalar
	InvalidSymbol string
}

// DefaultMessages are the English messages
var DefaultMessages = Messages{
	InvalidSymbol: "Expected a YAML object, array or literal",
}

// Stream holds the documents of one YAML text in source order
type Stream struct {
	Documents []*Document
	// Stream-wide findings; the parser does not produce any today
	Errors   []Problem
	Warnings []Problem
}

// Parser builds streams using a message table
type Parser struct {
	messages Messages
}

// New returns a parser reporting with messages. Empty entries fall back to DefaultMessages.
func New(messages Messages) *Parser {
	if messages.InvalidSymbol == "" {
		messages.InvalidSymbol = DefaultMessages.InvalidSymbol
	}
	return &Parser{messages: messages}
}

// Parse parses text with DefaultMessages
func Parse(text string) *Stream {
	return New(DefaultMessages).Parse(text)
}

// Parse converts every document of text. It never fails; unreadable
// documents come back with a nil Root and an explanatory error.
func (p *Parser) Parse(text string) *Stream {
	lines := position.NewIndex(text)
	stream := &Stream{}
	for _, raw := range yamlraw.ParseAll([]byte(text)) {
		stream.Documents = append(stream.Documents, p.document(raw, lines))
	}
	return stream
}

func (p *Parser) document(raw *yamlraw.Document, lines *position.Index) *Document {
	doc := &Document{Lines: lines}
	doc.Root = Build(raw.Root, nil)
	if doc.Root == nil {
		doc.Errors = append(doc.Errors, Problem{
			Message: p.messages.InvalidSymbol,
			Start:   raw.Start,
			End:     raw.End,
		})
	}

	for _, issue := range raw.Issues {
		problem := Problem{Message: issue.Reason, Start: issue.Start, End: issue.End}
		if issue.Warning || issue.Reason == yamlraw.DuplicateKeyReason {
			doc.Warnings = append(doc.Warnings, problem)
		} else {
			doc.Errors = append(doc.Errors, problem)
		}
	}
	return doc
}
