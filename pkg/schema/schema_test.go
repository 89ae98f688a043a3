package schema_test

import (
	"sort"
	"testing"

	"github.com/githubnext/yamlls/pkg/jsonast"
	"github.com/githubnext/yamlls/pkg/parser"
	"github.com/githubnext/yamlls/pkg/schema"
	"github.com/google/go-cmp/cmp"
)

const serverSchema = `{
  "type": "object",
  "$defs": {
    "port": {"type": "integer", "minimum": 1}
  },
  "properties": {
    "name": {"type": "string"},
    "port": {"$ref": "#/$defs/port"},
    "tags": {"type": "array", "items": {"type": "string"}}
  },
  "patternProperties": {
    "^x-": {"type": "string"}
  },
  "additionalProperties": false
}`

func compile(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.CompileJSON("", []byte(serverSchema))
	if err != nil {
		t.Fatalf("CompileJSON() error = %v", err)
	}
	return s
}

func root(t *testing.T, text string) jsonast.Node {
	t.Helper()
	stream := parser.Parse(text)
	if len(stream.Documents) != 1 || stream.Documents[0].Root == nil {
		t.Fatalf("Parse(%q) did not produce a single document", text)
	}
	return stream.Documents[0].Root
}

func TestCompileJSONInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed json", data: `{"type": `},
		{name: "bad keyword value", data: `{"type": 12}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := schema.CompileJSON("", []byte(tt.data)); err == nil {
				t.Error("CompileJSON() expected an error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	s := compile(t)

	tests := []struct {
		name   string
		text   string
		ranges [][2]int
	}{
		{
			name: "valid document",
			text: "name: web\nport: 80\nx-owner: ops\n",
		},
		{
			name:   "wrong scalar type",
			text:   "name: 5\nport: 80\n",
			ranges: [][2]int{{6, 7}},
		},
		{
			name:   "additional property reported on its key",
			text:   "name: web\nextra: x\n",
			ranges: [][2]int{{10, 15}},
		},
		{
			name:   "referenced definition",
			text:   "port: 0\n",
			ranges: [][2]int{{6, 7}},
		},
		{
			name:   "array item",
			text:   "tags:\n  - a\n  - 3\n",
			ranges: [][2]int{{16, 17}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := s.Validate(root(t, tt.text))
			var got [][2]int
			for _, p := range problems {
				if p.Message == "" {
					t.Errorf("problem at %d-%d has no message", p.Start, p.End)
				}
				got = append(got, [2]int{p.Start, p.End})
			}
			sort.Slice(got, func(i, j int) bool { return got[i][0] < got[j][0] })
			if diff := cmp.Diff(tt.ranges, got); diff != "" {
				t.Errorf("Validate() ranges mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateIntegerBounds(t *testing.T) {
	s, err := schema.CompileJSON("", []byte(`{
  "properties": {
    "max": {"type": "integer", "minimum": 0},
    "min": {"type": "integer", "maximum": 0},
    "big": {"type": "integer", "minimum": 0}
  }
}`))
	if err != nil {
		t.Fatalf("CompileJSON() error = %v", err)
	}

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "max int64", text: "max: 9223372036854775807\n"},
		{name: "min int64", text: "min: -9223372036854775808\n"},
		{name: "beyond int64", text: "big: 18446744073709551615\n"},
		{name: "negative below minimum", text: "max: -1\n", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Validate(root(t, tt.text)); len(got) != tt.want {
				t.Errorf("Validate() = %+v, want %d problems", got, tt.want)
			}
		})
	}
}

func TestValidateNestedContainerReportedOnKey(t *testing.T) {
	s, err := schema.CompileJSON("", []byte(`{"properties": {"tags": {"type": "object"}}}`))
	if err != nil {
		t.Fatalf("CompileJSON() error = %v", err)
	}
	problems := s.Validate(root(t, "tags:\n  - a\n"))
	if len(problems) != 1 {
		t.Fatalf("Validate() returned %d problems, want 1", len(problems))
	}
	if problems[0].Start != 0 || problems[0].End != 4 {
		t.Errorf("problem range = %d-%d, want 0-4", problems[0].Start, problems[0].End)
	}
	if problems[0].Pointer != "/tags" {
		t.Errorf("problem pointer = %q, want /tags", problems[0].Pointer)
	}
}

func TestMatchSubSchemas(t *testing.T) {
	s := compile(t)
	text := "name: web\nport: 80\nx-owner: ops\ntags:\n  - a\n"
	r := root(t, text)

	tests := []struct {
		name   string
		offset int
		want   []string
	}{
		{name: "root start", offset: 0, want: []string{"#", "#/properties/name"}},
		{name: "ref is followed", offset: 16, want: []string{"#", "#/properties/port", "#/$defs/port"}},
		{name: "pattern property", offset: 28, want: []string{"#", "#/patternProperties/^x-"}},
		{name: "array items", offset: 42, want: []string{"#", "#/properties/tags", "#/properties/tags/items"}},
		{name: "outside document", offset: 500, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, sub := range s.MatchSubSchemas(r, tt.offset) {
				got = append(got, sub.Pointer)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MatchSubSchemas(%d) mismatch (-want +got):\n%s", tt.offset, diff)
			}
		})
	}
}

func TestMatchSubSchemasCombinators(t *testing.T) {
	s, err := schema.CompileJSON("", []byte(`{
  "allOf": [{"properties": {"a": {"type": "string"}}}],
  "anyOf": [{"$ref": "#/allOf/0"}]
}`))
	if err != nil {
		t.Fatalf("CompileJSON() error = %v", err)
	}
	got := s.MatchSubSchemas(root(t, "a: b\n"), 0)
	var pointers []string
	for _, sub := range got {
		if sub.Node.Kind() == jsonast.ObjectKind {
			pointers = append(pointers, sub.Pointer)
		}
	}
	want := []string{"#", "#/allOf/0", "#/anyOf/0"}
	if diff := cmp.Diff(want, pointers); diff != "" {
		t.Errorf("root sub-schemas mismatch (-want +got):\n%s", diff)
	}
}
