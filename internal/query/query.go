// Package query compiles a JSONPath-flavored expression into a matcher over
// document trees and supports both selection and in-place mutation of the
// matched nodes.
package query

import (
	"strings"

	"github.com/recast-io/recast/internal/value"
)

// Path is a compiled query expression.
type Path struct {
	segs []segment
}

// Parse compiles a query expression. Expressions start at the document root
// with '$' and chain child ('.name', '[0]'), descendant ('..'), wildcard,
// union, slice and filter segments.
func Parse(expr string) (*Path, error) {
	segs, err := compile(expr)
	if err != nil {
		return nil, err
	}
	return &Path{segs: segs}, nil
}

type located struct {
	path string
	node value.Value
}

// Select returns copies of all nodes matched by p, in document order.
func (p *Path) Select(doc value.Value) []value.Value {
	matches := p.locate(doc)
	out := make([]value.Value, len(matches))
	for i, m := range matches {
		out[i] = m.node.Clone()
	}
	return out
}

// Mutate rewrites every node matched by p. The replace callback returns the
// replacement value; returning false instead excises the node from its
// parent container. Nested matches resolve innermost first. The root
// matching with keep=false yields null.
func (p *Path) Mutate(doc value.Value, replace func(value.Value) (value.Value, bool)) value.Value {
	matches := p.locate(doc)
	targets := make(map[string]bool, len(matches))
	for _, m := range matches {
		targets[m.path] = true
	}

	out, keep := mutateNode(doc, "", targets, replace)
	if !keep {
		return value.Null()
	}
	return out
}

func mutateNode(v value.Value, path string, targets map[string]bool, replace func(value.Value) (value.Value, bool)) (value.Value, bool) {
	switch v.Kind() {
	case value.KindArray:
		arr, _ := v.AsArray()
		out := make([]value.Value, 0, len(arr))
		for i, e := range arr {
			ev, keep := mutateNode(e, childPath(path, indexStep(i)), targets, replace)
			if keep {
				out = append(out, ev)
			}
		}
		v = value.Arr(out...)
	case value.KindObject:
		obj, _ := v.AsObject()
		result := value.NewObject()
		obj.Range(func(k string, e value.Value) bool {
			ev, keep := mutateNode(e, childPath(path, keyStep(k)), targets, replace)
			if keep {
				result.Set(k, ev)
			}
			return true
		})
		v = value.Obj(result)
	}

	if targets[path] {
		return replace(v)
	}
	return v, true
}

// locate returns matched nodes with their encoded paths, in document order
// and deduplicated.
func (p *Path) locate(doc value.Value) []located {
	var matches []located
	seen := make(map[string]bool)
	emit := func(path string, node value.Value) {
		if seen[path] {
			return
		}
		seen[path] = true
		matches = append(matches, located{path: path, node: node})
	}
	eval(p.segs, doc, "", emit)
	return matches
}

func eval(segs []segment, node value.Value, path string, emit func(string, value.Value)) {
	if len(segs) == 0 {
		emit(path, node)
		return
	}

	seg := segs[0]
	forEachChild(node, func(st step, child value.Value) {
		if selMatch(seg.sels, st, child) {
			eval(segs[1:], child, childPath(path, st), emit)
		}
		if seg.deep {
			eval(segs, child, childPath(path, st), emit)
		}
	})
}

// selMatch checks if any selector in sels matches the given step and child.
func selMatch(sels []selector, st step, child value.Value) bool {
	for _, s := range sels {
		if s.match(st, child) {
			return true
		}
	}
	return false
}

func forEachChild(node value.Value, fn func(st step, child value.Value)) {
	switch node.Kind() {
	case value.KindArray:
		arr, _ := node.AsArray()
		for i, e := range arr {
			fn(indexStep(i), e)
		}
	case value.KindObject:
		obj, _ := node.AsObject()
		obj.Range(func(k string, e value.Value) bool {
			fn(keyStep(k), e)
			return true
		})
	}
}

func childPath(parent string, st step) string {
	var b strings.Builder
	b.WriteString(parent)
	b.WriteByte(0)
	b.WriteString(st.String())
	return b.String()
}
