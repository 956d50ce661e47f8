// Package codec decodes and encodes value trees in the supported data
// formats.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/recast-io/recast/internal/value"
)

var ErrUnknownFormat = errors.New("unknown format")

// Format identifies a supported data format.
type Format uint8

const (
	JSON Format = iota
	YAML
	TOML
	CSV
	Msgpack
	Gron
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	case CSV:
		return "csv"
	case Msgpack:
		return "msgpack"
	case Gron:
		return "gron"
	}
	return "unknown"
}

// FromName resolves a format by name.
func FromName(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "csv":
		return CSV, nil
	case "msgpack":
		return Msgpack, nil
	case "gron":
		return Gron, nil
	}
	return JSON, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FromPath resolves a format from a file extension.
func FromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return JSON, fmt.Errorf("%w: no file extension on %q", ErrUnknownFormat, path)
	}
	f, err := FromName(ext)
	if err != nil {
		return JSON, fmt.Errorf("%w: file extension %q", ErrUnknownFormat, ext)
	}
	return f, nil
}

// Options tunes encoding and the CSV header convention.
type Options struct {
	// Compact suppresses indentation for JSON output.
	Compact bool
	// NoHeaders treats CSV rows as plain arrays instead of header-keyed
	// objects.
	NoHeaders bool
}

// Decode reads a single document in the given format.
func Decode(f Format, r io.Reader, opts Options) (value.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return value.Value{}, err
	}

	switch f {
	case JSON:
		return decodeJSON(data)
	case YAML:
		return decodeYAML(data)
	case TOML:
		return decodeTOML(data)
	case CSV:
		return decodeCSV(data, opts.NoHeaders)
	case Msgpack:
		return decodeMsgpack(data)
	case Gron:
		return decodeGron(data)
	}
	return value.Value{}, fmt.Errorf("%w: %d", ErrUnknownFormat, f)
}

// Encode writes v in the given format.
func Encode(f Format, w io.Writer, v value.Value, opts Options) error {
	switch f {
	case JSON:
		return encodeJSON(w, v, opts.Compact)
	case YAML:
		return encodeYAML(w, v)
	case TOML:
		return encodeTOML(w, v)
	case CSV:
		return encodeCSV(w, v, opts.NoHeaders)
	case Msgpack:
		return encodeMsgpack(w, v)
	case Gron:
		return encodeGron(w, v)
	}
	return fmt.Errorf("%w: %d", ErrUnknownFormat, f)
}

// decodeJSON reads one or more concatenated JSON documents. A single
// document decodes to itself, a stream decodes to an array of documents.
func decodeJSON(data []byte) (value.Value, error) {
	docs, err := value.DecodeJSONStream(bytes.NewReader(data))
	if err != nil {
		return value.Value{}, err
	}
	switch len(docs) {
	case 0:
		return value.Null(), nil
	case 1:
		return docs[0], nil
	}
	return value.Arr(docs...), nil
}

func encodeJSON(w io.Writer, v value.Value, compact bool) error {
	var out []byte
	if compact {
		out = value.ToJSON(v)
	} else {
		var err error
		out, err = value.ToJSONIndent(v)
		if err != nil {
			return err
		}
	}
	out = append(out, '\n')
	_, err := w.Write(out)
	return err
}
