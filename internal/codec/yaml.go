package codec

import (
	"fmt"
	"io"
	"time"

	yaml "github.com/goccy/go-yaml"

	"github.com/recast-io/recast/internal/value"
)

func decodeYAML(data []byte) (value.Value, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return value.Value{}, err
	}
	return fromYAML(raw)
}

// fromYAML lifts the decoder's output, keeping mapping order via MapSlice.
func fromYAML(x any) (value.Value, error) {
	switch t := x.(type) {
	case yaml.MapSlice:
		obj := value.NewObject()
		for _, item := range t {
			v, err := fromYAML(item.Value)
			if err != nil {
				return value.Value{}, err
			}
			obj.Set(yamlKey(item.Key), v)
		}
		return value.Obj(obj), nil
	case []any:
		out := make([]value.Value, len(t))
		for i, el := range t {
			v, err := fromYAML(el)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = v
		}
		return value.Arr(out...), nil
	case time.Time:
		return value.Str(t.Format(time.RFC3339)), nil
	}
	return value.FromAny(x)
}

func yamlKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", k)
}

func encodeYAML(w io.Writer, v value.Value) error {
	out, err := yaml.Marshal(toYAML(v))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func toYAML(v value.Value) any {
	if arr, ok := v.AsArray(); ok {
		out := make([]any, len(arr))
		for i, el := range arr {
			out[i] = toYAML(el)
		}
		return out
	}
	if obj, ok := v.AsObject(); ok {
		out := make(yaml.MapSlice, 0, obj.Len())
		obj.Range(func(k string, el value.Value) bool {
			out = append(out, yaml.MapItem{Key: k, Value: toYAML(el)})
			return true
		})
		return out
	}
	return v.Interface()
}
