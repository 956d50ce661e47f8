package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/recast-io/recast/internal/value"
)

// Order is the direction a ValueSorter sorts in.
type Order uint8

const (
	OrderAsc Order = iota
	OrderDesc
)

// ParseOrder parses "asc" or "desc", case-insensitive.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "asc":
		return OrderAsc, nil
	case "desc":
		return OrderDesc, nil
	}
	return OrderAsc, fmt.Errorf("invalid sort order `%s`", s)
}

func (o Order) String() string {
	if o == OrderDesc {
		return "desc"
	}
	return "asc"
}

// ValueSorter recursively sorts arrays and objects. Arrays sort by element
// value, objects by key then entry value. Children are sorted before their
// parent so the result is stable and sorting is idempotent. maxDepth bounds
// the recursion: negative means unbounded, 0 sorts only the outermost
// collection.
type ValueSorter struct {
	order    Order
	maxDepth int64
}

// NewValueSorter returns a sorter with the given order and depth bound.
func NewValueSorter(order Order, maxDepth int64) *ValueSorter {
	return &ValueSorter{order: order, maxDepth: maxDepth}
}

// Apply implements Transform. Non-collection values pass through.
func (s *ValueSorter) Apply(v value.Value) value.Value {
	return s.walk(v, 0)
}

func (s *ValueSorter) walk(v value.Value, depth int64) value.Value {
	if s.maxDepth >= 0 && depth > s.maxDepth {
		return v
	}

	if arr, ok := v.AsArray(); ok {
		out := make([]value.Value, len(arr))
		for i, el := range arr {
			out[i] = s.walk(el, depth+1)
		}
		sort.SliceStable(out, func(i, j int) bool {
			return s.cmp(out[i].Compare(out[j]))
		})
		return value.Arr(out...)
	}

	if obj, ok := v.AsObject(); ok {
		out := value.NewObject()
		obj.Range(func(k string, el value.Value) bool {
			out.Set(k, s.walk(el, depth+1))
			return true
		})
		out.Sort(func(k1 string, v1 value.Value, k2 string, v2 value.Value) int {
			c := strings.Compare(k1, k2)
			if c == 0 {
				c = v1.Compare(v2)
			}
			if s.order == OrderDesc {
				c = -c
			}
			return c
		})
		return value.Obj(out)
	}

	return v
}

func (s *ValueSorter) cmp(c int) bool {
	if s.order == OrderDesc {
		return c > 0
	}
	return c < 0
}
