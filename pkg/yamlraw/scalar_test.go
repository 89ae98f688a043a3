package yamlraw

import (
	"math"
	"testing"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{in: "10000", want: 10000, wantOK: true},
		{in: "-42", want: -42, wantOK: true},
		{in: "+7", want: 7, wantOK: true},
		{in: "1_000", want: 1000, wantOK: true},
		{in: "0x1F", want: 31, wantOK: true},
		{in: "0o17", want: 15, wantOK: true},
		{in: "0b101", want: 5, wantOK: true},
		{in: "-9223372036854775808", want: math.MinInt64, wantOK: true},
		{in: "9223372036854775808", want: math.MaxInt64, wantOK: false},
		{in: "abc", want: 0, wantOK: false},
		{in: "", want: 0, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseInt(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{in: "1.5", want: 1.5, wantOK: true},
		{in: "-2e3", want: -2000, wantOK: true},
		{in: ".inf", want: math.Inf(1), wantOK: true},
		{in: "-.Inf", want: math.Inf(-1), wantOK: true},
		{in: "1_0.5", want: 10.5, wantOK: true},
		{in: "x1", want: 0, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFloat(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseFloat(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if got, ok := ParseFloat(".nan"); !ok || !math.IsNaN(got) {
		t.Errorf("ParseFloat(.nan) = %v, %v", got, ok)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{in: "true", want: true, wantOK: true},
		{in: "False", want: false, wantOK: true},
		{in: "TRUE", want: true, wantOK: true},
		{in: "yes", want: false, wantOK: false},
		{in: "tRUE", want: false, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseBool(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseBool(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNodeValuesPreferParsed(t *testing.T) {
	n := &Node{Kind: KindScalar, Type: ScalarInt, Text: "0x10", Parsed: int64(99)}
	if got := n.IntValue(); got != 99 {
		t.Errorf("IntValue() = %d, want the parsed value 99", got)
	}
	n.Parsed = nil
	if got := n.IntValue(); got != 16 {
		t.Errorf("IntValue() = %d, want 16 from the text", got)
	}
	if got := n.FloatValue(); got != 16 {
		t.Errorf("FloatValue() = %v, want 16", got)
	}

	b := &Node{Kind: KindScalar, Type: ScalarBool, Text: "True"}
	if !b.BoolValue() {
		t.Error("BoolValue() = false, want true")
	}
}

func TestKindString(t *testing.T) {
	if KindAnchorRef.String() != "anchor-ref" || Kind(42).String() != "unknown" {
		t.Errorf("unexpected kind names %q %q", KindAnchorRef, Kind(42))
	}
}
