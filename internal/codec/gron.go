package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/recast-io/recast/internal/flatkey"
	"github.com/recast-io/recast/internal/value"
)

var ErrGronStatement = errors.New("gron: invalid statement")

// encodeGron writes one assignment per flattened key, in the style of
// gron: `json.foo[0] = "bar";`.
func encodeGron(w io.Writer, v value.Value) error {
	flat := flatkey.Flatten(v, "json")
	obj, _ := flat.AsObject()

	bw := bufio.NewWriter(w)
	var err error
	obj.Range(func(k string, el value.Value) bool {
		if _, err = fmt.Fprintf(bw, "%s = %s;\n", k, value.ToJSON(el)); err != nil {
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// decodeGron parses assignments back into a flat object, expands it and
// unwraps the synthetic root. The trailing semicolon is optional.
func decodeGron(data []byte) (value.Value, error) {
	flat := value.NewObject()

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		path, raw, err := splitStatement(line)
		if err != nil {
			return value.Value{}, err
		}
		v, err := value.FromJSON([]byte(raw))
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %q: %v", ErrGronStatement, line, err)
		}
		flat.Set(path, v)
	}
	if err := sc.Err(); err != nil {
		return value.Value{}, err
	}

	expanded := flatkey.Expand(value.Obj(flat))
	if obj, ok := expanded.AsObject(); ok && obj.Len() == 1 {
		_, root := obj.At(0)
		return root, nil
	}
	return expanded, nil
}

// splitStatement splits `path = value[;]` at the first '=' outside of a
// quoted section of the path.
func splitStatement(line string) (string, string, error) {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '=':
			if inString {
				continue
			}
			path := strings.TrimSpace(line[:i])
			raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line[i+1:]), ";"))
			if path == "" || raw == "" {
				return "", "", fmt.Errorf("%w: %q", ErrGronStatement, line)
			}
			return path, raw, nil
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrGronStatement, line)
}
