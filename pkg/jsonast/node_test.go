package jsonast

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// authors:
//   - name: Josh
//   - email: jp
func buildAuthors() (*Object, *String) {
	root := NewObject(nil, 0, 0)
	key := NewString(nil, "authors", 0, 7)
	key.IsKey = true
	prop := NewProperty(root, key, 0, 8)
	arr := NewArray(prop, 11, 11)

	first := NewObject(arr, 13, 23)
	nameKey := NewString(nil, "name", 13, 17)
	nameProp := NewProperty(first, nameKey, 13, 18)
	nameProp.SetValue(NewString(nameProp, "Josh", 19, 23))
	first.AddProperty(nameProp)
	arr.AddItem(first)

	second := NewObject(arr, 28, 37)
	emailKey := NewString(nil, "email", 28, 33)
	emailProp := NewProperty(second, emailKey, 28, 34)
	email := NewString(emailProp, "jp", 35, 37)
	emailProp.SetValue(email)
	second.AddProperty(emailProp)
	arr.AddItem(second)

	prop.SetValue(arr)
	root.AddProperty(prop)
	return root, email
}

func TestPathAndPointer(t *testing.T) {
	root, email := buildAuthors()

	if diff := cmp.Diff([]string{"authors", "1", "email"}, Path(email)); diff != "" {
		t.Errorf("Path() mismatch (-want +got):\n%s", diff)
	}
	if got := Pointer(email); got != "/authors/1/email" {
		t.Errorf("Pointer() = %q, want %q", got, "/authors/1/email")
	}
	if got := Pointer(root); got != "" {
		t.Errorf("Pointer(root) = %q, want empty", got)
	}
	if got := Lookup(root, []string{"authors", "1", "email"}); got != email {
		t.Errorf("Lookup() = %v, want the email node", got)
	}
	if got := Lookup(root, []string{"authors", "5"}); got != nil {
		t.Errorf("Lookup() out of range = %v, want nil", got)
	}
}

func TestRangesContainChildren(t *testing.T) {
	root, _ := buildAuthors()
	Walk(root, func(n Node) bool {
		for _, c := range Children(n) {
			if c.Start() < n.Start() || c.End() > n.End() {
				t.Errorf("%s [%d,%d] escapes parent %s [%d,%d]", c.Kind(), c.Start(), c.End(), n.Kind(), n.Start(), n.End())
			}
			if c.Parent() != n {
				t.Errorf("%s at %d has wrong parent", c.Kind(), c.Start())
			}
		}
		return true
	})
	if root.Start() != 0 || root.End() != 37 {
		t.Errorf("root range = [%d,%d], want [0,37]", root.Start(), root.End())
	}
}

func TestPointerEscaping(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		pointer  string
	}{
		{name: "root", segments: []string{}, pointer: ""},
		{name: "plain", segments: []string{"jobs", "build", "0"}, pointer: "/jobs/build/0"},
		{name: "slash", segments: []string{"a/b"}, pointer: "/a~1b"},
		{name: "tilde", segments: []string{"m~n"}, pointer: "/m~0n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodePointer(tt.segments); got != tt.pointer {
				t.Errorf("EncodePointer() = %q, want %q", got, tt.pointer)
			}
			got, err := DecodePointer(tt.pointer)
			if err != nil {
				t.Fatalf("DecodePointer() error: %v", err)
			}
			if diff := cmp.Diff(tt.segments, got); diff != "" {
				t.Errorf("DecodePointer() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := DecodePointer("no-slash"); err == nil {
		t.Error("expected error for pointer without leading slash")
	}
}

func TestInterface(t *testing.T) {
	root, _ := buildAuthors()
	want := map[string]any{
		"authors": []any{
			map[string]any{"name": "Josh"},
			map[string]any{"email": "jp"},
		},
	}
	if diff := cmp.Diff(want, Interface(root)); diff != "" {
		t.Errorf("Interface() mismatch (-want +got):\n%s", diff)
	}

	n := NewNumber(nil, 42, true, 0, 2)
	if got := Interface(n); got != int64(42) {
		t.Errorf("Interface(integer) = %#v, want int64(42)", got)
	}
	f := NewNumber(nil, 1.5, false, 0, 3)
	if got := Interface(f); got != 1.5 {
		t.Errorf("Interface(float) = %#v, want 1.5", got)
	}
}

func TestObjectFindFirstDuplicate(t *testing.T) {
	root := NewObject(nil, 0, 0)
	for i, v := range []string{"one", "two"} {
		p := NewProperty(root, NewString(nil, "k", i*10, i*10+1), i*10, i*10+2)
		p.SetValue(NewString(p, v, i*10+3, i*10+6))
		root.AddProperty(p)
	}
	if got := len(root.Properties); got != 2 {
		t.Fatalf("len(Properties) = %d, want 2", got)
	}
	if got := root.Find("k").Value.(*String).Value; got != "one" {
		t.Errorf("Find() = %q, want first occurrence", got)
	}
	if got := Lookup(root, []string{"k"}).(*String).Value; got != "two" {
		t.Errorf("Lookup() = %q, want last occurrence", got)
	}
}

func TestKindString(t *testing.T) {
	if got := ObjectKind.String(); got != "object" {
		t.Errorf("ObjectKind.String() = %q", got)
	}
	if got := Kind(99).String(); got != "Kind(99)" {
		t.Errorf("Kind(99).String() = %q", got)
	}
}

func TestNumberInt64(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		isInteger bool
		want      int64
		wantOK    bool
	}{
		{name: "small integer", value: 42, isInteger: true, want: 42, wantOK: true},
		{name: "min int64", value: math.MinInt64, isInteger: true, want: math.MinInt64, wantOK: true},
		{name: "max int64 rounds to 2^63", value: math.MaxInt64, isInteger: true, wantOK: false},
		{name: "largest float below 2^63", value: math.Nextafter(math.MaxInt64, 0), isInteger: true, want: int64(math.Nextafter(math.MaxInt64, 0)), wantOK: true},
		{name: "float", value: 1.5, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NewNumber(nil, tt.value, tt.isInteger, 0, 0).Int64()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Int64() = %d, %v; want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}

	big := Interface(NewNumber(nil, math.MaxInt64, true, 0, 0))
	if f, ok := big.(float64); !ok || f <= 0 {
		t.Errorf("Interface() of 2^63 = %v (%T), want a positive float64", big, big)
	}
}
