package transform

import "github.com/recast-io/recast/internal/value"

// Visitor hooks into the recursive collection walk. VisitKey sees object
// keys, VisitValue sees array elements and object entry values.
type Visitor interface {
	VisitKey(key string) string
	VisitValue(v value.Value) value.Value
}

// KeyVisitor applies a transformation to object keys only. The key passes
// through the chain as a string value and is coerced back to text.
type KeyVisitor struct {
	chain *Chain
}

// NewKeyVisitor returns a Visitor rewriting keys through chain.
func NewKeyVisitor(chain *Chain) *KeyVisitor {
	return &KeyVisitor{chain: chain}
}

func (kv *KeyVisitor) VisitKey(key string) string {
	return kv.chain.Apply(value.Str(key)).IntoString()
}

func (kv *KeyVisitor) VisitValue(v value.Value) value.Value { return v }

// ValueVisitor applies a transformation to array elements and object entry
// values.
type ValueVisitor struct {
	chain *Chain
}

// NewValueVisitor returns a Visitor rewriting values through chain.
func NewValueVisitor(chain *Chain) *ValueVisitor {
	return &ValueVisitor{chain: chain}
}

func (vv *ValueVisitor) VisitKey(key string) string { return key }

func (vv *ValueVisitor) VisitValue(v value.Value) value.Value {
	return vv.chain.Apply(v)
}

// visit drives a Visitor over the value bottom-up: children are rebuilt
// before the visitor sees them. maxDepth bounds the walk, negative means
// unbounded and 0 exposes only the outermost collection's children.
type visit struct {
	visitor  Visitor
	maxDepth int64
}

func newVisit(visitor Visitor, maxDepth int64) *visit {
	return &visit{visitor: visitor, maxDepth: maxDepth}
}

func (t *visit) Apply(v value.Value) value.Value {
	return t.walk(v, 0)
}

func (t *visit) walk(v value.Value, depth int64) value.Value {
	if t.maxDepth >= 0 && depth > t.maxDepth {
		return v
	}

	if arr, ok := v.AsArray(); ok {
		out := make([]value.Value, len(arr))
		for i, el := range arr {
			out[i] = t.visitor.VisitValue(t.walk(el, depth+1))
		}
		return value.Arr(out...)
	}

	if obj, ok := v.AsObject(); ok {
		out := value.NewObject()
		obj.Range(func(k string, el value.Value) bool {
			out.Set(t.visitor.VisitKey(k), t.visitor.VisitValue(t.walk(el, depth+1)))
			return true
		})
		return value.Obj(out)
	}

	return v
}
