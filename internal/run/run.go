// Package run executes the recast pipeline: decode inputs, apply the
// transformation chain and encode the result.
package run

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/recast-io/recast/internal/codec"
	"github.com/recast-io/recast/internal/config"
	"github.com/recast-io/recast/internal/exit"
	"github.com/recast-io/recast/internal/transform"
)

// Runner holds the compiled pipeline for a single invocation.
type Runner struct {
	cfg   *config.Config
	chain *transform.Chain
	to    codec.Format
}

// New compiles the transformation chain and resolves the output format.
// Returns an exit result describing the failure when compilation fails.
func New(cfg *config.Config) (*Runner, *exit.Result) {
	chain, err := transform.Compile(cfg.Transforms...)
	if err != nil {
		return nil, exit.Errorf("Error: %v", err)
	}

	to, err := codec.FromName(cfg.To)
	if err != nil {
		return nil, exit.Errorf("Error: %v", err)
	}

	return &Runner{cfg: cfg, chain: chain, to: to}, nil
}

type fileResult struct {
	data []byte
	err  error
}

// Run processes all input files and returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	if r.cfg.ListTransforms {
		printDefinitions(os.Stdout, transform.Builtin(), r.useColor())
		return 0
	}

	out, closeOut, err := r.output()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeOut()

	results := make([]fileResult, len(r.cfg.Files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))

	for i, file := range r.cfg.Files {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(i int, file string) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = r.processFile(file)
		}(i, file)
	}

	wg.Wait()

	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", ctx.Err())
		return 1
	}

	exitCode := 0
	for i, res := range results {
		if res.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", r.cfg.Files[i], res.err)
			exitCode = 1
			continue
		}
		if _, err := out.Write(res.data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	return exitCode
}

// processFile decodes, transforms and encodes a single input file.
func (r *Runner) processFile(file string) fileResult {
	from, err := r.inputFormat(file)
	if err != nil {
		return fileResult{err: err}
	}

	in, closeIn, err := openInput(file)
	if err != nil {
		return fileResult{err: err}
	}
	defer closeIn()

	opts := codec.Options{Compact: r.cfg.Compact, NoHeaders: r.cfg.CSVNoHeaders}

	v, err := codec.Decode(from, in, opts)
	if err != nil {
		return fileResult{err: err}
	}

	v = r.chain.Apply(v)

	var buf bytes.Buffer
	if err := codec.Encode(r.to, &buf, v, opts); err != nil {
		return fileResult{err: err}
	}

	return fileResult{data: buf.Bytes()}
}

// inputFormat resolves the input format for a file: an explicit -from flag
// wins, stdin defaults to json, files detect from the extension.
func (r *Runner) inputFormat(file string) (codec.Format, error) {
	if r.cfg.From != "" {
		return codec.FromName(r.cfg.From)
	}
	if file == "-" {
		return codec.JSON, nil
	}
	return codec.FromPath(file)
}

func (r *Runner) output() (io.Writer, func(), error) {
	if r.cfg.Output == "" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(r.cfg.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func openInput(file string) (io.Reader, func(), error) {
	if file == "-" {
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
