// Package validation merges parser findings and schema problems into
// positioned, deduplicated diagnostics.
package validation

import (
	"context"
	"fmt"

	"github.com/githubnext/yamlls/pkg/constants"
	"github.com/githubnext/yamlls/pkg/parser"
	"github.com/githubnext/yamlls/pkg/position"
	"github.com/githubnext/yamlls/pkg/schema"
)

// Source is the source name attached to every diagnostic
const Source = constants.DiagnosticSource

// Severity follows the LSP numbering
type Severity int

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic is a finding with a line/column range
type Diagnostic struct {
	Severity Severity
	Range    position.Range
	Message  string
	Source   string
}

// SchemaProvider finds the schema for a resource. A nil schema with a nil
// error means the resource has no schema.
type SchemaProvider interface {
	SchemaForResource(ctx context.Context, uri string) (*schema.Schema, error)
}

// SchemaTransform rewrites a schema before it is applied, e.g. to relax
// constraints for a family of resources
type SchemaTransform func(*schema.Schema) *schema.Schema

// Settings are the options applied by Configure
type Settings struct {
	Validate bool
}

// Validator turns document streams into diagnostics
type Validator struct {
	provider  SchemaProvider
	enabled   bool
	transform SchemaTransform
}

// Option configures a Validator
type Option func(*Validator)

// WithTransform installs a schema transform
func WithTransform(fn SchemaTransform) Option {
	return func(v *Validator) { v.transform = fn }
}

// New returns an enabled validator. provider may be nil, in which case only
// parser findings are reported.
func New(provider SchemaProvider, opts ...Option) *Validator {
	v := &Validator{provider: provider, enabled: true}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Configure applies settings
func (v *Validator) Configure(settings Settings) {
	v.enabled = settings.Validate
}

// Enabled reports whether validation is switched on
func (v *Validator) Enabled() bool {
	return v.enabled
}

// Validate resolves the schema for uri and diagnoses stream against it.
// When the schema cannot be loaded the parser findings are still returned
// together with the error.
func (v *Validator) Validate(ctx context.Context, uri string, stream *parser.Stream) ([]Diagnostic, error) {
	if !v.enabled || stream == nil {
		return []Diagnostic{}, nil
	}

	var s *schema.Schema
	var err error
	if v.provider != nil {
		s, err = v.provider.SchemaForResource(ctx, uri)
		if err != nil {
			err = fmt.Errorf("failed to load schema for %s: %w", uri, err)
			s = nil
		}
	}
	if s != nil && v.transform != nil {
		s = v.transform(s)
	}
	return Diagnose(stream, s), err
}

type entry struct {
	problem  parser.Problem
	severity Severity
}

type dedupKey struct {
	start, end int
	message    string
}

// Diagnose appends the schema problems of each document to its errors and
// returns the errors followed by the warnings of every document. Entries with
// the same range and message are reported once for the whole stream. A nil
// schema reports parser findings only.
func Diagnose(stream *parser.Stream, s *schema.Schema) []Diagnostic {
	out := []Diagnostic{}
	seen := make(map[dedupKey]bool)
	for _, doc := range stream.Documents {
		if s != nil {
			doc.Errors = append(doc.Errors, doc.ValidationProblems(s)...)
		}

		entries := make([]entry, 0, len(doc.Errors)+len(doc.Warnings))
		for _, p := range doc.Errors {
			entries = append(entries, entry{problem: p, severity: SeverityError})
		}
		for _, p := range doc.Warnings {
			entries = append(entries, entry{problem: p, severity: SeverityWarning})
		}

		for _, e := range entries {
			key := dedupKey{start: e.problem.Start, end: e.problem.End, message: e.problem.Message}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Diagnostic{
				Severity: e.severity,
				Range:    doc.Lines.Range(e.problem.Start, e.problem.End),
				Message:  e.problem.Message,
				Source:   Source,
			})
		}
	}
	return out
}
