package transform

import (
	"regexp"
	"strconv"

	"github.com/recast-io/recast/internal/flatkey"
	"github.com/recast-io/recast/internal/query"
	"github.com/recast-io/recast/internal/value"
)

// Transform turns one value into another. Implementations are total: all
// fallible work happens at construction time, Apply degrades to a no-op on
// variant mismatch instead of failing.
type Transform interface {
	Apply(v value.Value) value.Value
}

// Chain folds a value through its members in order.
type Chain struct {
	inner []Transform
}

// NewChain returns a chain over the given transformations.
func NewChain(ts ...Transform) *Chain {
	return &Chain{inner: ts}
}

// Apply implements Transform.
func (c *Chain) Apply(v value.Value) value.Value {
	for _, t := range c.inner {
		v = t.Apply(v)
	}
	return v
}

// Len returns the number of member transformations.
func (c *Chain) Len() int { return len(c.inner) }

// mutate replaces every query match with the result of running a chain on
// it.
type mutate struct {
	path  *query.Path
	chain *Chain
}

func (m *mutate) Apply(v value.Value) value.Value {
	return m.path.Mutate(v, func(matched value.Value) (value.Value, bool) {
		return m.chain.Apply(matched), true
	})
}

// deleteMatches replaces every query match with null, keeping the shape of
// the surrounding container.
type deleteMatches struct {
	path *query.Path
}

func (d *deleteMatches) Apply(v value.Value) value.Value {
	return d.path.Mutate(v, func(value.Value) (value.Value, bool) {
		return value.Null(), true
	})
}

// removeMatches excises every query match, shrinking the surrounding
// container.
type removeMatches struct {
	path *query.Path
}

func (r *removeMatches) Apply(v value.Value) value.Value {
	return r.path.Mutate(v, func(value.Value) (value.Value, bool) {
		return value.Value{}, false
	})
}

// flatten removes one level of nesting. A single-element array or object
// unwraps to its sole content, a longer array concatenates child arrays.
type flatten struct{}

func (flatten) Apply(v value.Value) value.Value {
	if arr, ok := v.AsArray(); ok {
		if len(arr) == 1 {
			return arr[0]
		}
		var out []value.Value
		for _, el := range arr {
			out = append(out, el.ToArray()...)
		}
		return value.Arr(out...)
	}
	if obj, ok := v.AsObject(); ok && obj.Len() == 1 {
		var sole value.Value
		obj.Range(func(_ string, val value.Value) bool {
			sole = val
			return false
		})
		return sole
	}
	return v
}

// flattenKeys flattens the value into a one-level object with flat keys.
type flattenKeys struct {
	prefix string
}

func (f *flattenKeys) Apply(v value.Value) value.Value {
	return flatkey.Flatten(v, f.prefix)
}

// expandKeys expands flat keys back into nested form.
type expandKeys struct{}

func (expandKeys) Apply(v value.Value) value.Value {
	return flatkey.Expand(v)
}

// removeEmptyValues drops null, empty-array and empty-object children. The
// top level value itself is kept even when empty.
type removeEmptyValues struct{}

func (t removeEmptyValues) Apply(v value.Value) value.Value {
	if arr, ok := v.AsArray(); ok {
		out := make([]value.Value, 0, len(arr))
		for _, el := range arr {
			el = t.Apply(el)
			if !el.IsEmpty() {
				out = append(out, el)
			}
		}
		return value.Arr(out...)
	}
	if obj, ok := v.AsObject(); ok {
		out := value.NewObject()
		obj.Range(func(k string, el value.Value) bool {
			el = t.Apply(el)
			if !el.IsEmpty() {
				out.Set(k, el)
			}
			return true
		})
		return value.Obj(out)
	}
	return v
}

// deepMerge merges all elements of a top-level array left to right.
// Non-arrays pass through.
type deepMerge struct{}

func (deepMerge) Apply(v value.Value) value.Value {
	arr, ok := v.AsArray()
	if !ok {
		return v
	}
	acc := value.Arr()
	for i := range arr {
		acc.DeepMerge(&arr[i])
	}
	return acc
}

// keys extracts object keys as an array.
type keys struct{}

func (keys) Apply(v value.Value) value.Value {
	out := []value.Value{}
	if obj, ok := v.AsObject(); ok {
		obj.Range(func(k string, _ value.Value) bool {
			out = append(out, value.Str(k))
			return true
		})
	}
	return value.Arr(out...)
}

// values extracts array elements or object values as an array.
type values struct{}

func (values) Apply(v value.Value) value.Value {
	if arr, ok := v.AsArray(); ok {
		return value.Arr(arr...)
	}
	out := []value.Value{}
	if obj, ok := v.AsObject(); ok {
		obj.Range(func(_ string, el value.Value) bool {
			out = append(out, el)
			return true
		})
	}
	return value.Arr(out...)
}

// deleteKeys drops matching keys from a top-level object. Non-objects pass
// through, nested objects are not touched.
type deleteKeys struct {
	re *regexp.Regexp
}

func (d *deleteKeys) Apply(v value.Value) value.Value {
	obj, ok := v.AsObject()
	if !ok {
		return v
	}
	out := value.NewObject()
	obj.Range(func(k string, el value.Value) bool {
		if !d.re.MatchString(k) {
			out.Set(k, el)
		}
		return true
	})
	return value.Obj(out)
}

// arraysToObjects converts arrays into objects keyed by stringified index,
// recursively.
type arraysToObjects struct{}

func (t arraysToObjects) Apply(v value.Value) value.Value {
	if arr, ok := v.AsArray(); ok {
		out := value.NewObject()
		for i, el := range arr {
			out.Set(strconv.Itoa(i), t.Apply(el))
		}
		return value.Obj(out)
	}
	if obj, ok := v.AsObject(); ok {
		out := value.NewObject()
		obj.Range(func(k string, el value.Value) bool {
			out.Set(k, t.Apply(el))
			return true
		})
		return value.Obj(out)
	}
	return v
}

// replaceString rewrites string values with a regex replacement template.
// limit caps the number of replacements per string, 0 means unlimited.
type replaceString struct {
	re          *regexp.Regexp
	replacement string
	limit       int
}

func (r *replaceString) Apply(v value.Value) value.Value {
	s, ok := v.AsStr()
	if !ok {
		return v
	}
	return value.Str(r.replace(s))
}

func (r *replaceString) replace(s string) string {
	matches := r.re.FindAllStringSubmatchIndex(s, r.limit)
	if matches == nil {
		return s
	}
	var out []byte
	last := 0
	for _, m := range matches {
		out = append(out, s[last:m[0]]...)
		out = r.re.ExpandString(out, r.replacement, s, m)
		last = m[1]
	}
	return string(append(out, s[last:]...))
}

// wrapArray wraps the value in a one-element array.
type wrapArray struct{}

func (wrapArray) Apply(v value.Value) value.Value {
	return value.Arr(v)
}

// wrapObject wraps the value in a one-key object.
type wrapObject struct {
	key string
}

func (w *wrapObject) Apply(v value.Value) value.Value {
	return value.Obj(v.IntoObject(w.key))
}

type insertKind uint8

const (
	insertNone insertKind = iota
	insertObjectKey
	insertArrayIndex
)

// insert sets a string key on an object or splices a numeric index into an
// array. An index past the end appends. A key that does not match the
// container kind is a no-op.
type insert struct {
	kind insertKind
	key  string
	idx  uint64
	val  value.Value
}

func newInsert(key value.Value, val value.Value) *insert {
	ins := &insert{val: val}
	if s, ok := key.AsStr(); ok {
		ins.kind = insertObjectKey
		ins.key = s
	} else if n, ok := key.AsNumber(); ok {
		if u, ok := n.Uint64(); ok {
			ins.kind = insertArrayIndex
			ins.idx = u
		}
	}
	return ins
}

func (ins *insert) Apply(v value.Value) value.Value {
	if obj, ok := v.AsObject(); ok && ins.kind == insertObjectKey {
		out := obj.Clone()
		out.Set(ins.key, ins.val.Clone())
		return value.Obj(out)
	}
	if arr, ok := v.AsArray(); ok && ins.kind == insertArrayIndex {
		i := int(ins.idx)
		if ins.idx > uint64(len(arr)) {
			i = len(arr)
		}
		out := make([]value.Value, 0, len(arr)+1)
		out = append(out, arr[:i]...)
		out = append(out, ins.val.Clone())
		out = append(out, arr[i:]...)
		return value.Arr(out...)
	}
	return v
}
