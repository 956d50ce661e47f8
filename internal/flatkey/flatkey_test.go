package flatkey

import (
	"reflect"
	"testing"

	"github.com/recast-io/recast/internal/value"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    KeyParts
		wantErr bool
	}{
		{
			name:  "single ident",
			input: "foo",
			want:  KeyParts{IdentPart("foo")},
		},
		{
			name:  "idents and index",
			input: "foo.bar[5].baz",
			want:  KeyParts{IdentPart("foo"), IdentPart("bar"), IndexPart(5), IdentPart("baz")},
		},
		{
			name:  "underscore ident",
			input: "foo.bar_baz[0]",
			want:  KeyParts{IdentPart("foo"), IdentPart("bar_baz"), IndexPart(0)},
		},
		{
			name:  "double quoted",
			input: `foo["bar baz"]`,
			want:  KeyParts{IdentPart("foo"), IdentPart("bar baz")},
		},
		{
			name:  "single quoted",
			input: `foo['bar\'s']`,
			want:  KeyParts{IdentPart("foo"), IdentPart("bar's")},
		},
		{
			name:  "leading bracket",
			input: `["foo"][1]`,
			want:  KeyParts{IdentPart("foo"), IndexPart(1)},
		},
		{name: "dot before bracket", input: "foo.[", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "leading dot", input: ".foo", wantErr: true},
		{name: "trailing dot", input: "foo.", wantErr: true},
		{name: "unterminated index", input: "foo[1", wantErr: true},
		{name: "unterminated quote", input: `foo["bar`, wantErr: true},
		{name: "negative index", input: "foo[-1]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	input := "foo[\"京\\\"\tasdf\"][0]"

	parsed, err := Parse(input)
	if err != nil {
		t.Fatal(err)
	}

	want := KeyParts{IdentPart("foo"), IdentPart("京\"\tasdf"), IndexPart(0)}
	if !reflect.DeepEqual(parsed, want) {
		t.Fatalf("got %#v, want %#v", parsed, want)
	}
	if got := parsed.String(); got != input {
		t.Errorf("render = %q, want %q", got, input)
	}
}

func mustJSON(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.FromJSON([]byte(s))
	if err != nil {
		t.Fatalf("FromJSON(%q): %v", s, err)
	}
	return v
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		prefix string
		want   string
	}{
		{
			name:   "nested map with array",
			input:  `{"foo":{"bar":["baz","qux"]}}`,
			prefix: "data",
			want:   `{"data":{},"data.foo":{},"data.foo.bar":[],"data.foo.bar[0]":"baz","data.foo.bar[1]":"qux"}`,
		},
		{
			name:   "array value",
			input:  `["foo","bar","baz"]`,
			prefix: "array",
			want:   `{"array":[],"array[0]":"foo","array[1]":"bar","array[2]":"baz"}`,
		},
		{
			name:   "primitive value",
			input:  `"foo"`,
			prefix: "data",
			want:   `{"data":"foo"}`,
		},
		{
			name:   "non bare keys quoted",
			input:  `{"a b":1}`,
			prefix: "data",
			want:   `{"data":{},"data[\"a b\"]":1}`,
		},
		{
			name:   "keys keep walk order",
			input:  `{"zeta":1,"alpha":{"b":2,"a":3}}`,
			prefix: "data",
			want:   `{"data":{},"data.zeta":1,"data.alpha":{},"data.alpha.b":2,"data.alpha.a":3}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Flatten(mustJSON(t, tt.input), tt.prefix)
			if s := string(value.ToJSON(got)); s != tt.want {
				t.Errorf("got %s, want %s", s, tt.want)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "flat paths",
			input: `{"data":{},"data.foo":{},"data.foo.bar":[],"data.foo.bar[0]":"baz","data.foo.bar[1]":"qux"}`,
			want:  `{"data":{"foo":{"bar":["baz","qux"]}}}`,
		},
		{
			name:  "inside arrays",
			input: `[{"foo.bar":1,"foo[\"bar-baz\"]":2}]`,
			want:  `[{"foo":{"bar":1,"bar-baz":2}}]`,
		},
		{
			name:  "unparseable key stays literal",
			input: `{"a..b":1}`,
			want:  `{"a..b":1}`,
		},
		{
			name:  "index pads with null",
			input: `{"a[2]":1}`,
			want:  `{"a":[null,null,1]}`,
		},
		{
			name:  "scalar unchanged",
			input: `42`,
			want:  `42`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(mustJSON(t, tt.input))
			if s := string(value.ToJSON(got)); s != tt.want {
				t.Errorf("got %s, want %s", s, tt.want)
			}
		})
	}
}

func TestFlattenExpandInverse(t *testing.T) {
	input := mustJSON(t, `{"foo":{"bar":["baz",{"qux":[]}]},"empty":{}}`)

	flat := Flatten(input, "data")
	expanded := Expand(flat)

	obj, ok := expanded.AsObject()
	if !ok {
		t.Fatalf("expanded to %s", expanded)
	}
	got, ok := obj.Get("data")
	if !ok {
		t.Fatal("missing prefix key")
	}
	if !got.Equal(input) {
		t.Errorf("got %s, want %s", got, input)
	}
}
