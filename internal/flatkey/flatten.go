package flatkey

import (
	"github.com/recast-io/recast/internal/value"
)

// Flatten converts v into a single-level object mapping key paths to leaf
// values. Every container on the way down contributes an empty-container
// marker entry so Expand can rebuild empty objects and arrays. Entries come
// out in depth-first walk order, so Expand restores the original key order.
func Flatten(v value.Value, prefix string) value.Value {
	f := &flattener{vals: make(map[string]value.Value)}
	f.push(IdentPart(prefix))
	f.walk(v)
	f.pop()

	obj := value.NewObject()
	for _, k := range f.keys {
		obj.Set(k, f.vals[k])
	}
	return value.Obj(obj)
}

type flattener struct {
	stack []string
	keys  []string
	vals  map[string]value.Value
}

func (f *flattener) push(p KeyPart) {
	f.stack = append(f.stack, p.String())
}

func (f *flattener) pop() {
	f.stack = f.stack[:len(f.stack)-1]
}

func (f *flattener) key() string {
	var b []byte
	for i, s := range f.stack {
		if i > 0 && s[0] != '[' {
			b = append(b, '.')
		}
		b = append(b, s...)
	}
	return string(b)
}

func (f *flattener) insert(v value.Value) {
	k := f.key()
	if _, ok := f.vals[k]; !ok {
		f.keys = append(f.keys, k)
	}
	f.vals[k] = v
}

func (f *flattener) walk(v value.Value) {
	switch v.Kind() {
	case value.KindArray:
		f.insert(value.Arr())
		arr, _ := v.AsArray()
		for i, e := range arr {
			f.push(IndexPart(i))
			f.walk(e)
			f.pop()
		}
	case value.KindObject:
		f.insert(value.Obj(nil))
		obj, _ := v.AsObject()
		obj.Range(func(k string, e value.Value) bool {
			f.push(IdentPart(k))
			f.walk(e)
			f.pop()
			return true
		})
	default:
		f.insert(v)
	}
}

// Expand reverses Flatten: keys of a top-level object are parsed as key
// paths and rebuilt into nested structure, with all per-key fragments deep
// merged together. Keys that do not parse as paths stay as literal keys.
// Arrays expand element-wise, scalars pass through.
func Expand(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindObject:
		obj, _ := v.AsObject()
		result := value.Null()
		obj.Range(func(key string, val value.Value) bool {
			var fragment value.Value
			if parts, err := Parse(key); err == nil {
				fragment = build(parts, val)
			} else {
				o := value.NewObject()
				o.Set(key, val)
				fragment = value.Obj(o)
			}
			result.DeepMerge(&fragment)
			return true
		})
		return result
	case value.KindArray:
		arr, _ := v.AsArray()
		out := make([]value.Value, len(arr))
		for i, e := range arr {
			out[i] = Expand(e)
		}
		return value.Arr(out...)
	}
	return v
}

func build(parts KeyParts, v value.Value) value.Value {
	if len(parts) == 0 {
		return v
	}
	head := parts[0]
	inner := build(parts[1:], v)
	if head.Kind == PartIdent {
		o := value.NewObject()
		o.Set(head.Ident, inner)
		return value.Obj(o)
	}
	arr := make([]value.Value, head.Index+1)
	arr[head.Index] = inner
	return value.Arr(arr...)
}
