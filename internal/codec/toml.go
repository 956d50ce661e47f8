package codec

import (
	"errors"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/recast-io/recast/internal/value"
)

var ErrTOMLTable = errors.New("toml: top level value must be an object")

// decodeTOML lifts a TOML document. Key order is not recoverable from the
// decoder, keys come back lexicographically sorted.
func decodeTOML(data []byte) (value.Value, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return value.Value{}, err
	}
	return value.FromAny(raw)
}

func encodeTOML(w io.Writer, v value.Value) error {
	if _, ok := v.AsObject(); !ok {
		return ErrTOMLTable
	}
	return toml.NewEncoder(w).Encode(v.Interface())
}
