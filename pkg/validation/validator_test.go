package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/githubnext/yamlls/pkg/parser"
	"github.com/githubnext/yamlls/pkg/position"
	"github.com/githubnext/yamlls/pkg/schema"
	"github.com/google/go-cmp/cmp"
)

type fakeProvider struct {
	schema *schema.Schema
	err    error
	uris   []string
}

func (f *fakeProvider) SchemaForResource(_ context.Context, uri string) (*schema.Schema, error) {
	f.uris = append(f.uris, uri)
	return f.schema, f.err
}

func handStream(text string, docs ...*parser.Document) *parser.Stream {
	lines := position.NewIndex(text)
	for _, d := range docs {
		d.Lines = lines
	}
	return &parser.Stream{Documents: docs}
}

func rng(sl, sc, el, ec int) position.Range {
	return position.Range{
		Start: position.Position{Line: sl, Column: sc},
		End:   position.Position{Line: el, Column: ec},
	}
}

func TestDiagnoseOrderingAndSeverity(t *testing.T) {
	text := "a: 1\nb: 2\n---\nc: 3\n"
	first := &parser.Document{
		Errors:   []parser.Problem{{Message: "bad a", Start: 0, End: 1}},
		Warnings: []parser.Problem{{Message: "duplicate key", Start: 5, End: 6}},
	}
	second := &parser.Document{
		Errors: []parser.Problem{{Message: "bad c", Start: 14, End: 15}},
	}

	got := Diagnose(handStream(text, first, second), nil)
	want := []Diagnostic{
		{Severity: SeverityError, Range: rng(0, 0, 0, 1), Message: "bad a", Source: Source},
		{Severity: SeverityWarning, Range: rng(1, 0, 1, 1), Message: "duplicate key", Source: Source},
		{Severity: SeverityError, Range: rng(3, 0, 3, 1), Message: "bad c", Source: Source},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diagnose() mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnoseDeduplicates(t *testing.T) {
	tests := []struct {
		name string
		docs []*parser.Document
		want []Severity
	}{
		{
			name: "identical errors in one document",
			docs: []*parser.Document{{
				Errors: []parser.Problem{
					{Message: "m", Start: 0, End: 1},
					{Message: "m", Start: 0, End: 1},
				},
			}},
			want: []Severity{SeverityError},
		},
		{
			name: "same range different message is kept",
			docs: []*parser.Document{{
				Errors: []parser.Problem{
					{Message: "m", Start: 0, End: 1},
					{Message: "n", Start: 0, End: 1},
				},
			}},
			want: []Severity{SeverityError, SeverityError},
		},
		{
			name: "duplicate across documents",
			docs: []*parser.Document{
				{Errors: []parser.Problem{{Message: "m", Start: 0, End: 1}}},
				{Errors: []parser.Problem{{Message: "m", Start: 0, End: 1}}},
			},
			want: []Severity{SeverityError},
		},
		{
			name: "removed error does not shift warning severity",
			docs: []*parser.Document{{
				Errors: []parser.Problem{
					{Message: "m", Start: 0, End: 1},
					{Message: "m", Start: 0, End: 1},
				},
				Warnings: []parser.Problem{
					{Message: "w1", Start: 2, End: 3},
					{Message: "w2", Start: 2, End: 3},
				},
			}},
			want: []Severity{SeverityError, SeverityWarning, SeverityWarning},
		},
		{
			name: "warning equal to an earlier error is dropped",
			docs: []*parser.Document{{
				Errors:   []parser.Problem{{Message: "m", Start: 0, End: 1}},
				Warnings: []parser.Problem{{Message: "m", Start: 0, End: 1}},
			}},
			want: []Severity{SeverityError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diagnose(handStream("abc\n", tt.docs...), nil)
			var severities []Severity
			for _, d := range got {
				severities = append(severities, d.Severity)
			}
			if diff := cmp.Diff(tt.want, severities); diff != "" {
				t.Errorf("severities mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateDisabled(t *testing.T) {
	provider := &fakeProvider{}
	v := New(provider)
	v.Configure(Settings{Validate: false})

	stream := parser.Parse("a: [\n")
	got, err := v.Validate(context.Background(), "file:///a.yaml", stream)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Validate() = %v, want an empty non-nil slice", got)
	}
	if len(provider.uris) != 0 {
		t.Error("disabled validator should not look up a schema")
	}
}

func TestValidateWithSchema(t *testing.T) {
	s, err := schema.CompileJSON("", []byte(`{"properties": {"port": {"type": "integer"}}}`))
	if err != nil {
		t.Fatalf("CompileJSON() error = %v", err)
	}
	provider := &fakeProvider{schema: s}
	v := New(provider)

	stream := parser.Parse("port: web\n---\nport: 80\n")
	got, err := v.Validate(context.Background(), "file:///svc.yaml", stream)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if diff := cmp.Diff([]string{"file:///svc.yaml"}, provider.uris); diff != "" {
		t.Errorf("provider calls mismatch (-want +got):\n%s", diff)
	}
	if len(got) != 1 {
		t.Fatalf("Validate() returned %d diagnostics, want 1: %v", len(got), got)
	}
	if got[0].Severity != SeverityError {
		t.Errorf("severity = %v, want error", got[0].Severity)
	}
	if want := rng(0, 6, 0, 9); got[0].Range != want {
		t.Errorf("range = %v, want %v", got[0].Range, want)
	}
	if n := len(stream.Documents[0].Errors); n != 1 {
		t.Errorf("schema problem should be appended to the document errors, got %d errors", n)
	}
}

func TestValidateSameSchemaProblemTwice(t *testing.T) {
	s, err := schema.CompileJSON("", []byte(`{"properties": {"port": {"type": "integer"}}}`))
	if err != nil {
		t.Fatalf("CompileJSON() error = %v", err)
	}
	stream := parser.Parse("port: web\n")
	doc := stream.Documents[0]
	doc.Errors = append(doc.Errors, doc.ValidationProblems(s)...)

	got := Diagnose(stream, s)
	if len(got) != 1 {
		t.Errorf("Diagnose() returned %d diagnostics, want 1", len(got))
	}
}

func TestValidateTransform(t *testing.T) {
	strict, err := schema.CompileJSON("", []byte(`{"type": "array"}`))
	if err != nil {
		t.Fatal(err)
	}
	loose, err := schema.CompileJSON("", []byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	called := false
	v := New(&fakeProvider{schema: strict}, WithTransform(func(*schema.Schema) *schema.Schema {
		called = true
		return loose
	}))

	got, err := v.Validate(context.Background(), "x.yaml", parser.Parse("a: 1\n"))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !called {
		t.Error("transform was not applied")
	}
	if len(got) != 0 {
		t.Errorf("Validate() = %v, want no diagnostics", got)
	}
}

func TestValidateProviderError(t *testing.T) {
	boom := errors.New("unreachable")
	v := New(&fakeProvider{err: boom})

	got, err := v.Validate(context.Background(), "x.yaml", parser.Parse("a: 1\nb\n"))
	if !errors.Is(err, boom) {
		t.Errorf("Validate() error = %v, want wrapped %v", err, boom)
	}
	if got == nil {
		t.Error("parser findings should still be returned")
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityError.String() != "error" || SeverityWarning.String() != "warning" {
		t.Errorf("unexpected severity names %q %q", SeverityError, SeverityWarning)
	}
}
