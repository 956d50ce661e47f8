// Package config parses command-line arguments for the recast tool.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/recast-io/recast/internal/codec"
	"github.com/recast-io/recast/internal/exit"
)

var (
	ErrNoArguments  = errors.New("no arguments provided")
	ErrInvalidColor = errors.New("color mode must be auto, always or never")
)

// ColorMode controls colored output for transform listings.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Config represents the complete configuration for the recast tool.
type Config struct {
	// Input files, "-" reads stdin.
	Files []string
	// From overrides input format detection, empty means detect from the
	// file extension (stdin defaults to json).
	From string
	// To is the output format name.
	To string
	// Transforms are the pipeline expressions, applied in order.
	Transforms []string
	// Output is the output file, empty means stdout.
	Output string

	Compact        bool
	CSVNoHeaders   bool
	Color          ColorMode
	ListTransforms bool
}

// transformsFlag implements flag.Value for repeatable -T flags.
type transformsFlag []string

func (t *transformsFlag) String() string {
	return strings.Join(*t, ",")
}

func (t *transformsFlag) Set(value string) error {
	*t = append(*t, value)
	return nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.From != "" {
		if _, err := codec.FromName(c.From); err != nil {
			return err
		}
	}
	if _, err := codec.FromName(c.To); err != nil {
		return err
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w, got: %s", ErrInvalidColor, c.Color)
	}

	for _, file := range c.Files {
		if file == "-" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("input file %s not found: %w", file, err)
		}
	}

	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Suppress the default usage and error output since we handle both
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		from           string
		to             string
		transforms     transformsFlag
		output         string
		compact        bool
		csvNoHeaders   bool
		colorMode      string
		listTransforms bool
	)

	fs.StringVar(&from, "f", "", "Input format (overrides file extension detection)")
	fs.StringVar(&from, "from", "", "Input format (overrides file extension detection)")
	fs.StringVar(&to, "t", "json", "Output format")
	fs.StringVar(&to, "to", "json", "Output format")
	fs.Var(&transforms, "T", "Transformation pipeline (can be used multiple times)")
	fs.Var(&transforms, "transform", "Transformation pipeline (can be used multiple times)")
	fs.StringVar(&output, "o", "", "Output file (default stdout)")
	fs.StringVar(&output, "out", "", "Output file (default stdout)")
	fs.BoolVar(&compact, "compact", false, "Compact JSON output")
	fs.BoolVar(&csvNoHeaders, "csv-no-headers", false, "Treat CSV rows as arrays instead of header-keyed objects")
	fs.StringVar(&colorMode, "color", "auto", "Colored output: auto, always or never")
	fs.BoolVar(&listTransforms, "list-transforms", false, "List available transformations and exit")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	files := fs.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	config := &Config{
		Files:          files,
		From:           from,
		To:             to,
		Transforms:     transforms,
		Output:         output,
		Compact:        compact,
		CSVNoHeaders:   csvNoHeaders,
		Color:          ColorMode(colorMode),
		ListTransforms: listTransforms,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `recast - transform and transcode structured data

Usage: recast [options] [file1] [file2] ...

Reads one document per input file (no files or "-" reads stdin), applies the
transformation pipeline and re-encodes the result.

Options:
  -f, -from FORMAT     Input format (default: detect from file extension, stdin is json)
  -t, -to FORMAT       Output format (default: json)
  -T, -transform EXPR  Transformation pipeline (can be used multiple times, applied in order)
  -o, -out FILE        Output file (default: stdout)
  -compact             Compact JSON output
  -csv-no-headers      Treat CSV rows as arrays instead of header-keyed objects
  -color MODE          Colored output: auto, always or never (default: auto)
  -list-transforms     List available transformations and exit
  -h, -help            Show this help message

Formats: json, yaml, toml, csv, msgpack, gron

Examples:
  recast data.yaml                            # YAML to pretty JSON
  recast -t yaml data.json                    # JSON to YAML
  recast -T 'select("$.items[*]")' data.json  # filter with jsonpath
  recast -T flatten -T 'sort(order="desc")' data.json
  cat data.json | recast -t gron              # gron-style flat output
  recast -list-transforms                     # show the transformation reference`
}
