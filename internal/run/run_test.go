package run

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/recast-io/recast/internal/codec"
	"github.com/recast-io/recast/internal/config"
	"github.com/recast-io/recast/internal/transform"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRun(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		files    map[string]string
		cfg      config.Config
		want     string
		wantCode int
	}{
		{
			name:  "json to compact json",
			files: map[string]string{"in.json": `{"b": 2, "a": 1}`},
			cfg:   config.Config{To: "json", Compact: true},
			want:  `{"b":2,"a":1}` + "\n",
		},
		{
			name:  "yaml to json with transform",
			files: map[string]string{"in.yaml": "items:\n  - 3\n  - 1\n  - 2\n"},
			cfg: config.Config{
				To:         "json",
				Compact:    true,
				Transforms: []string{`select("$.items[*]")`, "sort"},
			},
			want: `[1,2,3]` + "\n",
		},
		{
			name:  "json to gron",
			files: map[string]string{"in.json": `{"a":[1,"x"]}`},
			cfg:   config.Config{To: "gron"},
			want:  "json = {};\njson.a = [];\njson.a[0] = 1;\njson.a[1] = \"x\";\n",
		},
		{
			name: "multiple files keep input order",
			files: map[string]string{
				"a.json": `{"n":1}`,
				"b.json": `{"n":2}`,
			},
			cfg:  config.Config{To: "json", Compact: true},
			want: `{"n":1}` + "\n" + `{"n":2}` + "\n",
		},
		{
			name:  "explicit input format overrides extension",
			files: map[string]string{"in.txt": `[1,2]`},
			cfg:   config.Config{From: "json", To: "json", Compact: true},
			want:  `[1,2]` + "\n",
		},
		{
			name:     "undecodable input",
			files:    map[string]string{"in.json": `{"a":`},
			cfg:      config.Config{To: "json"},
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(tempDir, strings.ReplaceAll(tt.name, " ", "_"))
			if err := os.MkdirAll(dir, 0o700); err != nil {
				t.Fatalf("failed to create dir: %v", err)
			}

			names := make([]string, 0, len(tt.files))
			for name := range tt.files {
				names = append(names, name)
			}
			// map order is random, sort so "multiple files" is deterministic
			sort.Strings(names)

			cfg := tt.cfg
			for _, name := range names {
				cfg.Files = append(cfg.Files, writeFile(t, dir, name, tt.files[name]))
			}
			cfg.Output = filepath.Join(dir, "out")
			cfg.Color = config.ColorNever

			r, result := New(&cfg)
			if result != nil {
				t.Fatalf("unexpected result: %+v", result)
			}

			code := r.Run(context.Background())
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d", code, tt.wantCode)
			}
			if tt.wantCode != 0 {
				return
			}

			got, err := os.ReadFile(cfg.Output)
			if err != nil {
				t.Fatalf("failed to read output: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewCompileError(t *testing.T) {
	cfg := &config.Config{
		Files:      []string{"-"},
		To:         "json",
		Transforms: []string{"nope"},
	}

	_, result := New(cfg)
	if result == nil {
		t.Fatal("expected error result")
	}
	if !strings.Contains(result.Message, "unknown transformation") {
		t.Errorf("message = %q", result.Message)
	}
}

func TestInputFormat(t *testing.T) {
	tests := []struct {
		name string
		from string
		file string
		want codec.Format
	}{
		{name: "stdin defaults to json", file: "-", want: codec.JSON},
		{name: "extension detection", file: "data.yaml", want: codec.YAML},
		{name: "explicit from wins", from: "toml", file: "data.yaml", want: codec.TOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Runner{cfg: &config.Config{From: tt.from}}

			got, err := r.inputFormat(tt.file)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("format = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrintDefinitions(t *testing.T) {
	var buf bytes.Buffer
	printDefinitions(&buf, transform.Builtin(), false)

	out := buf.String()
	if !strings.Contains(out, "TRANSFORMATIONS:") {
		t.Error("missing heading")
	}
	if !strings.Contains(out, "select(query)") {
		t.Error("missing select definition")
	}
	if !strings.Contains(out, "[aliases: j, jp, jsonpath]") {
		t.Error("missing select aliases")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{name: "empty", text: "", width: 10, want: nil},
		{name: "single line", text: "one two", width: 10, want: []string{"one two"}},
		{name: "breaks on words", text: "aaa bbb ccc", width: 7, want: []string{"aaa bbb", "ccc"}},
		{name: "long word kept whole", text: "short averyverylongword", width: 5, want: []string{"short", "averyverylongword"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrap(tt.text, tt.width); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrap() = %v, want %v", got, tt.want)
			}
		})
	}
}
