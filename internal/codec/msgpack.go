package codec

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/recast-io/recast/internal/value"
)

// decodeMsgpack lifts a MessagePack document. Map order is not
// representable in the wire format, keys come back lexicographically
// sorted.
func decodeMsgpack(data []byte) (value.Value, error) {
	var raw any
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return value.Value{}, err
	}
	return value.FromAny(raw)
}

func encodeMsgpack(w io.Writer, v value.Value) error {
	out, err := msgpack.Marshal(v.Interface())
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
