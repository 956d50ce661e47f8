package value

import "sort"

// Object is an insertion-ordered string-keyed map of values.
type Object struct {
	keys []string
	vals []Value
	idx  map[string]int
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{idx: make(map[string]int)}
}

// Len reports the number of entries.
func (o *Object) Len() int {
	return len(o.keys)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.idx[key]
	if !ok {
		return Value{}, false
	}
	return o.vals[i], true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.idx[key]
	return ok
}

// Set stores v under key. An existing entry keeps its position, a new one is
// appended.
func (o *Object) Set(key string, v Value) {
	if i, ok := o.idx[key]; ok {
		o.vals[i] = v
		return
	}
	o.idx[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Delete removes key, preserving the order of the remaining entries.
func (o *Object) Delete(key string) bool {
	i, ok := o.idx[key]
	if !ok {
		return false
	}
	o.keys = append(o.keys[:i], o.keys[i+1:]...)
	o.vals = append(o.vals[:i], o.vals[i+1:]...)
	delete(o.idx, key)
	for j := i; j < len(o.keys); j++ {
		o.idx[o.keys[j]] = j
	}
	return true
}

// Keys returns the keys in iteration order. The slice must not be modified.
func (o *Object) Keys() []string {
	return o.keys
}

// At returns the entry at position i.
func (o *Object) At(i int) (string, Value) {
	return o.keys[i], o.vals[i]
}

// SetValueAt replaces the value at position i, keeping its key.
func (o *Object) SetValueAt(i int, v Value) {
	o.vals[i] = v
}

// Range calls fn for each entry in order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	for i := range o.keys {
		if !fn(o.keys[i], o.vals[i]) {
			return
		}
	}
}

// Sort reorders entries by cmp. The sort is stable.
func (o *Object) Sort(cmp func(k1 string, v1 Value, k2 string, v2 Value) int) {
	type entry struct {
		k string
		v Value
	}
	entries := make([]entry, len(o.keys))
	for i := range o.keys {
		entries[i] = entry{o.keys[i], o.vals[i]}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return cmp(entries[a].k, entries[a].v, entries[b].k, entries[b].v) < 0
	})
	for i, e := range entries {
		o.keys[i] = e.k
		o.vals[i] = e.v
		o.idx[e.k] = i
	}
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	out := &Object{
		keys: append([]string(nil), o.keys...),
		vals: make([]Value, len(o.vals)),
		idx:  make(map[string]int, len(o.idx)),
	}
	for i := range o.vals {
		out.vals[i] = o.vals[i].Clone()
	}
	for k, i := range o.idx {
		out.idx[k] = i
	}
	return out
}

func (o *Object) equal(other *Object) bool {
	if len(o.keys) != len(other.keys) {
		return false
	}
	for i := range o.keys {
		if o.keys[i] != other.keys[i] || !o.vals[i].Equal(other.vals[i]) {
			return false
		}
	}
	return true
}

func (o *Object) compare(other *Object) int {
	if c := cmpInt(len(o.keys), len(other.keys)); c != 0 {
		return c
	}
	for i := range o.keys {
		if c := cmpString(o.keys[i], other.keys[i]); c != 0 {
			return c
		}
		if c := o.vals[i].Compare(other.vals[i]); c != 0 {
			return c
		}
	}
	return 0
}
