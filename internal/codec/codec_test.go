package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/recast-io/recast/internal/value"
)

func mustJSON(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.FromJSON([]byte(s))
	if err != nil {
		t.Fatalf("FromJSON(%q): %v", s, err)
	}
	return v
}

func decodeString(t *testing.T, f Format, input string, opts Options) value.Value {
	t.Helper()
	v, err := Decode(f, strings.NewReader(input), opts)
	if err != nil {
		t.Fatalf("Decode(%s): %v", f, err)
	}
	return v
}

func encodeString(t *testing.T, f Format, v value.Value, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(f, &buf, v, opts); err != nil {
		t.Fatalf("Encode(%s): %v", f, err)
	}
	return buf.String()
}

func TestFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{name: "json", want: JSON},
		{name: "yaml", want: YAML},
		{name: "yml", want: YAML},
		{name: "TOML", want: TOML},
		{name: "csv", want: CSV},
		{name: "msgpack", want: Msgpack},
		{name: "gron", want: Gron},
		{name: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromName(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Fatalf("expected ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromName(%q): %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFromPath(t *testing.T) {
	if f, err := FromPath("dir/config.yml"); err != nil || f != YAML {
		t.Errorf("got %v, %v", f, err)
	}
	if _, err := FromPath("noext"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := FromPath("file.xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestEncodeJSON(t *testing.T) {
	v := mustJSON(t, `{"z":1,"a":[2]}`)

	if got := encodeString(t, JSON, v, Options{Compact: true}); got != "{\"z\":1,\"a\":[2]}\n" {
		t.Errorf("compact: got %q", got)
	}

	want := "{\n  \"z\": 1,\n  \"a\": [\n    2\n  ]\n}\n"
	if got := encodeString(t, JSON, v, Options{}); got != want {
		t.Errorf("pretty: got %q, want %q", got, want)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "single document", input: `{"a": 1}`, want: `{"a":1}`},
		{name: "concatenated stream", input: `{"a":1}{"b":2}`, want: `[{"a":1},{"b":2}]`},
		{name: "newline delimited", input: "1\n2\n3\n", want: `[1,2,3]`},
		{name: "empty input", input: "", want: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := decodeString(t, JSON, tt.input, Options{})
			if got := string(value.ToJSON(v)); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := Decode(JSON, strings.NewReader(`{"a":`), Options{}); err == nil {
		t.Error("expected error for truncated document")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "scalars", json: `{"s":"x","n":3,"f":1.5,"b":true,"nil":null}`},
		{name: "key order preserved", json: `{"z":1,"m":2,"a":3}`},
		{name: "nested", json: `{"a":[{"z":1,"y":[2]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustJSON(t, tt.json)
			out := encodeString(t, YAML, v, Options{})
			back := decodeString(t, YAML, out, Options{})
			if got := string(value.ToJSON(back)); got != tt.json {
				t.Errorf("got %s, want %s", got, tt.json)
			}
		})
	}
}

func TestTOML(t *testing.T) {
	v := decodeString(t, TOML, "b = \"x\"\na = 1\n\n[t]\nc = true\n", Options{})
	// keys come back sorted, order is not recoverable from the decoder
	if got := string(value.ToJSON(v)); got != `{"a":1,"b":"x","t":{"c":true}}` {
		t.Errorf("decode: got %s", got)
	}

	out := encodeString(t, TOML, v, Options{})
	back := decodeString(t, TOML, out, Options{})
	if !back.Equal(v) {
		t.Errorf("round trip: got %s", value.ToJSON(back))
	}

	var buf bytes.Buffer
	if err := Encode(TOML, &buf, value.Int(1), Options{}); !errors.Is(err, ErrTOMLTable) {
		t.Errorf("expected ErrTOMLTable, got %v", err)
	}
}

func TestCSV(t *testing.T) {
	t.Run("decode with headers", func(t *testing.T) {
		v := decodeString(t, CSV, "a,b\n1,x\n2,y\n", Options{})
		if got := string(value.ToJSON(v)); got != `[{"a":"1","b":"x"},{"a":"2","b":"y"}]` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("decode without headers", func(t *testing.T) {
		v := decodeString(t, CSV, "1,x\n2,y\n", Options{NoHeaders: true})
		if got := string(value.ToJSON(v)); got != `[["1","x"],["2","y"]]` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("encode objects", func(t *testing.T) {
		v := mustJSON(t, `[{"a":"1","b":"x"},{"a":"2"}]`)
		if got := encodeString(t, CSV, v, Options{}); got != "a,b\n1,x\n2,\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("encode objects without headers", func(t *testing.T) {
		v := mustJSON(t, `[{"a":"1","b":"x"}]`)
		if got := encodeString(t, CSV, v, Options{NoHeaders: true}); got != "1,x\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("encode arrays", func(t *testing.T) {
		v := mustJSON(t, `[["1","x"],[2,true]]`)
		if got := encodeString(t, CSV, v, Options{}); got != "1,x\n2,true\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("scalar wraps to one row", func(t *testing.T) {
		if got := encodeString(t, CSV, value.Str("x"), Options{}); got != "x\n" {
			t.Errorf("got %q", got)
		}
	})
}

func TestMsgpackRoundTrip(t *testing.T) {
	v := mustJSON(t, `{"a":[1,-2,1.5,"x",true,null]}`)
	out := encodeString(t, Msgpack, v, Options{})
	back := decodeString(t, Msgpack, out, Options{})
	if got := string(value.ToJSON(back)); got != `{"a":[1,-2,1.5,"x",true,null]}` {
		t.Errorf("got %s", got)
	}
}

func TestGronEncode(t *testing.T) {
	v := mustJSON(t, `{"foo":{"bar":["baz","qux"]}}`)
	want := `json = {};
json.foo = {};
json.foo.bar = [];
json.foo.bar[0] = "baz";
json.foo.bar[1] = "qux";
`
	if got := encodeString(t, Gron, v, Options{}); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGronDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "round trip",
			input: `json = {};
json.foo = {};
json.foo.bar = [];
json.foo.bar[0] = "baz";
json.foo.bar[1] = "qux";
`,
			want: `{"foo":{"bar":["baz","qux"]}}`,
		},
		{
			name:  "semicolon optional",
			input: "json = {}\njson.a = 1\n",
			want:  `{"a":1}`,
		},
		{
			name:  "quoted key with equals sign",
			input: "json[\"a=b\"] = 1;\n",
			want:  `{"a=b":1}`,
		},
		{
			name:  "blank lines skipped",
			input: "\njson.a = 1;\n\n",
			want:  `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := decodeString(t, Gron, tt.input, Options{})
			if got := string(value.ToJSON(v)); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGronDecodeErrors(t *testing.T) {
	for _, input := range []string{"json.a\n", "json.a = \n", "= 1\n"} {
		if _, err := Decode(Gron, strings.NewReader(input), Options{}); !errors.Is(err, ErrGronStatement) {
			t.Errorf("Decode(%q): expected ErrGronStatement, got %v", input, err)
		}
	}
}
