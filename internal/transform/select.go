package transform

import (
	"math"
	"reflect"

	"github.com/theory/jsonpath"

	"github.com/recast-io/recast/internal/value"
)

// selectQuery filters a value with a JSONPath query. The result is always
// an array of matches.
type selectQuery struct {
	path *jsonpath.Path
}

func newSelect(expr string) (*selectQuery, error) {
	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &selectQuery{path: path}, nil
}

func (s *selectQuery) Apply(v value.Value) value.Value {
	// The engine works on plain maps and slices, which lose object key
	// order. Containers are tracked by identity while lowering so matches
	// can resolve back to the original ordered values.
	idx := make(map[identKey]value.Value)
	data := lower(v, idx)

	results := s.path.Select(data)
	out := make([]value.Value, 0, len(results))
	for _, r := range results {
		out = append(out, lift(r, idx))
	}
	return value.Arr(out...)
}

type identKey struct {
	kind uint8
	ptr  uintptr
}

const (
	identSlice uint8 = 1
	identMap   uint8 = 2
)

func lower(v value.Value, idx map[identKey]value.Value) any {
	if b, ok := v.AsBool(); ok {
		return b
	}
	if n, ok := v.AsNumber(); ok {
		if u, ok := n.Uint64(); ok {
			if u <= math.MaxInt64 {
				return int64(u)
			}
			return float64(u)
		}
		if i, ok := n.Int64(); ok {
			return i
		}
		return n.Float64()
	}
	if s, ok := v.AsStr(); ok {
		return s
	}
	if arr, ok := v.AsArray(); ok {
		out := make([]any, len(arr))
		for i, el := range arr {
			out[i] = lower(el, idx)
		}
		// Empty slices may share a backing pointer, only non-empty ones
		// have a usable identity.
		if len(out) > 0 {
			idx[identKey{identSlice, reflect.ValueOf(out).Pointer()}] = v
		}
		return out
	}
	if obj, ok := v.AsObject(); ok {
		out := make(map[string]any, obj.Len())
		obj.Range(func(k string, el value.Value) bool {
			out[k] = lower(el, idx)
			return true
		})
		idx[identKey{identMap, reflect.ValueOf(out).Pointer()}] = v
		return out
	}
	return nil
}

func lift(r any, idx map[identKey]value.Value) value.Value {
	switch t := r.(type) {
	case map[string]any:
		if orig, ok := idx[identKey{identMap, reflect.ValueOf(t).Pointer()}]; ok {
			return orig.Clone()
		}
	case []any:
		if len(t) > 0 {
			if orig, ok := idx[identKey{identSlice, reflect.ValueOf(t).Pointer()}]; ok {
				return orig.Clone()
			}
		}
	}
	v, err := value.FromAny(r)
	if err != nil {
		return value.Null()
	}
	return v
}
