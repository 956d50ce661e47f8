package query

import (
	"errors"
	"testing"

	"github.com/recast-io/recast/internal/value"
)

const storeDoc = `{
	"store": {
		"book": [
			{"category": "reference", "author": "Nigel Rees", "title": "Sayings of the Century", "price": 8.95},
			{"category": "fiction", "author": "Evelyn Waugh", "title": "Sword of Honour", "price": 12.99},
			{"category": "fiction", "author": "Herman Melville", "title": "Moby Dick", "isbn": "0-553-21311-3", "price": 8.99},
			{"category": "fiction", "author": "J. R. R. Tolkien", "title": "The Lord of the Rings", "isbn": "0-395-19395-8", "price": 22.99}
		],
		"bicycle": {"color": "red", "price": 19.95}
	}
}`

func mustJSON(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.FromJSON([]byte(s))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	return v
}

func mustParse(t *testing.T, expr string) *Path {
	t.Helper()
	p, err := Parse(expr)
	if err != nil {
		t.Fatalf("Parse(%q): %v", expr, err)
	}
	return p
}

func selectJSON(t *testing.T, expr, doc string) []string {
	t.Helper()
	matches := mustParse(t, expr).Select(mustJSON(t, doc))
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = string(value.ToJSON(m))
	}
	return out
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{
			name: "root",
			expr: "$",
			want: []string{`{"a":1,"b":[2,3]}`},
		},
		{
			name: "child name",
			expr: "$.a",
			want: []string{"1"},
		},
		{
			name: "index",
			expr: "$.b[0]",
			want: []string{"2"},
		},
		{
			name: "wildcard",
			expr: "$.b[*]",
			want: []string{"2", "3"},
		},
		{
			name: "union",
			expr: `$["a","b"]`,
			want: []string{"1", "[2,3]"},
		},
		{
			name: "no match",
			expr: "$.missing",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectJSON(t, tt.expr, `{"a":1,"b":[2,3]}`)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("match %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSelectStore(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{
			name: "all authors deep",
			expr: "$..author",
			want: []string{`"Nigel Rees"`, `"Evelyn Waugh"`, `"Herman Melville"`, `"J. R. R. Tolkien"`},
		},
		{
			name: "filter by price",
			expr: "$.store.book[?(@.price < 10)].title",
			want: []string{`"Sayings of the Century"`, `"Moby Dick"`},
		},
		{
			name: "filter existence",
			expr: "$.store.book[?(@.isbn)].title",
			want: []string{`"Moby Dick"`, `"The Lord of the Rings"`},
		},
		{
			name: "filter string equality",
			expr: "$.store.book[?(@.category == 'fiction')].author",
			want: []string{`"Evelyn Waugh"`, `"Herman Melville"`, `"J. R. R. Tolkien"`},
		},
		{
			name: "slice",
			expr: "$.store.book[1:3].price",
			want: []string{"12.99", "8.99"},
		},
		{
			name: "regex filter",
			expr: "$.store.book[?(@.title =~ /^Sword/)].author",
			want: []string{`"Evelyn Waugh"`},
		},
		{
			name: "in filter",
			expr: "$.store.book[?(@.category in ['reference'])].price",
			want: []string{"8.95"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectJSON(t, tt.expr, storeDoc)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("match %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want error
	}{
		{name: "empty", expr: "", want: ErrSyntax},
		{name: "missing root", expr: ".a", want: ErrSyntax},
		{name: "trailing dot", expr: "$.", want: ErrSyntax},
		{name: "unterminated bracket", expr: "$[0", want: ErrSyntax},
		{name: "empty bracket", expr: "$[]", want: ErrSyntax},
		{name: "negative index", expr: "$[-1]", want: ErrNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMutate(t *testing.T) {
	t.Run("replace matches", func(t *testing.T) {
		p := mustParse(t, "$.b[*]")
		got := p.Mutate(mustJSON(t, `{"a":1,"b":[2,3]}`), func(v value.Value) (value.Value, bool) {
			return value.Str("x"), true
		})
		if s := string(value.ToJSON(got)); s != `{"a":1,"b":["x","x"]}` {
			t.Errorf("got %s", s)
		}
	})

	t.Run("excise from array keeps order", func(t *testing.T) {
		p := mustParse(t, "$.b[?(@.v > 1)]")
		doc := mustJSON(t, `{"a":1,"b":[{"v":1},{"v":2},{"v":3},{"v":1}]}`)
		got := p.Mutate(doc, func(v value.Value) (value.Value, bool) {
			return value.Value{}, false
		})
		if s := string(value.ToJSON(got)); s != `{"a":1,"b":[{"v":1},{"v":1}]}` {
			t.Errorf("got %s", s)
		}
	})

	t.Run("excise object keys", func(t *testing.T) {
		p := mustParse(t, "$.secrets")
		got := p.Mutate(mustJSON(t, `{"id":1,"secrets":{"token":"t"}}`), func(v value.Value) (value.Value, bool) {
			return value.Value{}, false
		})
		if s := string(value.ToJSON(got)); s != `{"id":1}` {
			t.Errorf("got %s", s)
		}
	})

	t.Run("excised root becomes null", func(t *testing.T) {
		p := mustParse(t, "$")
		got := p.Mutate(mustJSON(t, `{"a":1}`), func(v value.Value) (value.Value, bool) {
			return value.Value{}, false
		})
		if !got.IsNull() {
			t.Errorf("got %s", got)
		}
	})

	t.Run("key with separator bytes does not alias nested path", func(t *testing.T) {
		doc := value.NewObject()
		inner := value.NewObject()
		inner.Set("b", value.Int(1))
		doc.Set("a", value.Obj(inner))
		doc.Set("a\x00kb", value.Int(2))

		p := mustParse(t, "$.a.b")
		got := p.Mutate(value.Obj(doc), func(v value.Value) (value.Value, bool) {
			return value.Str("x"), true
		})
		if s := string(value.ToJSON(got)); s != "{\"a\":{\"b\":\"x\"},\"a\\u0000kb\":2}" {
			t.Errorf("got %s", s)
		}
	})

	t.Run("nested matches resolve innermost first", func(t *testing.T) {
		p := mustParse(t, "$..a")
		got := p.Mutate(mustJSON(t, `{"a":{"a":1}}`), func(v value.Value) (value.Value, bool) {
			return value.Arr(v), true
		})
		if s := string(value.ToJSON(got)); s != `{"a":[{"a":[1]}]}` {
			t.Errorf("got %s", s)
		}
	})
}
