// Package value provides the canonical in-memory representation for decoded
// documents: a tagged union of null, bool, number, string, array and object,
// with a total order, structural equality and hashing.
//
// Objects preserve key insertion order; this is significant for round-tripping
// documents and for gron-style output.
package value

import "hash/fnv"

// Kind identifies the variant stored in a Value. The declaration order is the
// canonical variant rank used by Compare.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns a human-readable variant name, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// Value is one node of a document tree. The zero Value is null.
//
// Values are owned data: transforms consume and return them, they are never
// shared between concurrent consumers.
type Value struct {
	kind Kind
	b    bool
	num  Number
	str  string
	arr  []Value
	obj  *Object
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Num returns a numeric value.
func Num(n Number) Value {
	return Value{kind: KindNumber, num: n}
}

// Int returns a numeric value from a signed integer.
func Int(i int64) Value {
	return Num(NewInt(i))
}

// Uint returns a numeric value from an unsigned integer.
func Uint(u uint64) Value {
	return Num(NewUint(u))
}

// Float returns a numeric value from a float. NaN and infinities are not
// representable and yield null.
func Float(f float64) Value {
	n, ok := NewFloat(f)
	if !ok {
		return Null()
	}
	return Num(n)
}

// Str returns a string value.
func Str(s string) Value {
	return Value{kind: KindString, str: s}
}

// Arr returns an array value owning elems.
func Arr(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

// Obj returns an object value owning o. A nil o yields an empty object.
func Obj(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// Kind reports the variant stored in v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean payload, if any.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsNumber returns the numeric payload, if any.
func (v Value) AsNumber() (Number, bool) {
	if v.kind != KindNumber {
		return Number{}, false
	}
	return v.num, true
}

// AsStr returns the string payload, if any.
func (v Value) AsStr() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsArray returns the array payload, if any. The slice aliases v.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsObject returns the object payload, if any. The object aliases v.
func (v Value) AsObject() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// IsEmpty reports whether v is null, an empty array or an empty object.
// Other falsy-looking values (false, 0, "") are not empty.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindArray:
		return len(v.arr) == 0
	case KindObject:
		return v.obj.Len() == 0
	}
	return false
}

// ToArray converts v into an array. Arrays yield their elements, any other
// value becomes a one-element array.
func (v Value) ToArray() []Value {
	if v.kind == KindArray {
		return v.arr
	}
	return []Value{v}
}

// IntoObject converts v into an object. Objects yield their payload, any
// other value becomes a one-entry object under key.
func (v Value) IntoObject(key string) *Object {
	if v.kind == KindObject {
		return v.obj
	}
	o := NewObject()
	o.Set(key, v)
	return o
}

// IntoString returns the textual representation of v, without quotes for
// strings. Containers render as compact JSON.
func (v Value) IntoString() string {
	if v.kind == KindString {
		return v.str
	}
	return v.String()
}

// String renders v as compact JSON text.
func (v Value) String() string {
	return string(appendJSON(nil, v))
}

// Clone returns a deep copy of v sharing no storage with it.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		arr := make([]Value, len(v.arr))
		for i := range v.arr {
			arr[i] = v.arr[i].Clone()
		}
		return Value{kind: KindArray, arr: arr}
	case KindObject:
		return Value{kind: KindObject, obj: v.obj.Clone()}
	}
	return v
}

// take moves the value out of v, leaving null behind.
func (v *Value) take() Value {
	out := *v
	*v = Value{}
	return out
}

// Equal reports structural equality. Numbers compare equal only within the
// same internal representation; see Number.Equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num.Equal(o.num)
	case KindString:
		return v.str == o.str
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.equal(o.obj)
	}
	return false
}

// Compare orders two values. Variants rank null < bool < number < string <
// object < array; within a variant the comparison is structural. Objects
// compare by length, then by (key, value) pair in iteration order; arrays by
// length, then element-wise.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		return cmpInt(int(v.kind), int(o.kind))
	}
	switch v.kind {
	case KindNull:
		return 0
	case KindBool:
		return cmpBool(v.b, o.b)
	case KindNumber:
		return v.num.Compare(o.num)
	case KindString:
		return cmpString(v.str, o.str)
	case KindArray:
		if c := cmpInt(len(v.arr), len(o.arr)); c != 0 {
			return c
		}
		for i := range v.arr {
			if c := v.arr[i].Compare(o.arr[i]); c != 0 {
				return c
			}
		}
		return 0
	case KindObject:
		return v.obj.compare(o.obj)
	}
	return 0
}

// Variant terminator bytes keep container and scalar boundaries unambiguous
// when hashing nested structures.
const (
	hashNull   = 0xF9
	hashBool   = 0xFA
	hashNumber = 0xFB
	hashString = 0xFC
	hashArray  = 0xFD
	hashKeySep = 0xFE
	hashObject = 0xFF
)

// Hash returns a structural hash of v. Equal values hash identically;
// numbers hash by representation variant, with +0.0 and -0.0 normalized.
func (v Value) Hash() uint64 {
	h := fnv.New64a()
	v.hashInto(h)
	return h.Sum64()
}

type byteWriter interface {
	Write(p []byte) (int, error)
}

func (v Value) hashInto(h byteWriter) {
	switch v.kind {
	case KindNull:
		h.Write([]byte{hashNull})
	case KindBool:
		b := byte(0)
		if v.b {
			b = 1
		}
		h.Write([]byte{b, hashBool})
	case KindNumber:
		v.num.hashInto(h)
		h.Write([]byte{hashNumber})
	case KindString:
		h.Write([]byte(v.str))
		h.Write([]byte{hashString})
	case KindArray:
		for _, e := range v.arr {
			e.hashInto(h)
		}
		h.Write([]byte{hashArray})
	case KindObject:
		for i := range v.obj.keys {
			h.Write([]byte(v.obj.keys[i]))
			h.Write([]byte{hashKeySep})
			v.obj.vals[i].hashInto(h)
		}
		h.Write([]byte{hashObject})
	}
}

// DeepMerge merges other into v in place. Objects union their keys and
// recurse on shared ones; arrays pad the shorter side with nulls and merge
// element-wise; a null right-hand side is a no-op; any other combination
// replaces v wholesale.
//
// Merged-away parts of other are left behind as null. Callers must not read
// other afterward as meaningful data.
func (v *Value) DeepMerge(other *Value) {
	switch {
	case v.kind == KindObject && other.kind == KindObject:
		lhs, rhs := v.obj, other.obj
		for i := range rhs.keys {
			key := rhs.keys[i]
			if j, ok := lhs.idx[key]; ok {
				lhs.vals[j].DeepMerge(&rhs.vals[i])
			} else {
				lhs.Set(key, rhs.vals[i].take())
			}
		}
	case v.kind == KindArray && other.kind == KindArray:
		for len(v.arr) < len(other.arr) {
			v.arr = append(v.arr, Null())
		}
		for i := range other.arr {
			v.arr[i].DeepMerge(&other.arr[i])
		}
	case other.kind == KindNull:
		// left side wins
	default:
		*v = other.take()
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpBool(a, b bool) int {
	switch {
	case !a && b:
		return -1
	case a && !b:
		return 1
	}
	return 0
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
