package transform

import (
	"fmt"

	"github.com/recast-io/recast/internal/value"
)

// argMatch is a resolved argument: either a concrete value or a nested
// pipeline expression.
type argMatch struct {
	value   value.Value
	matches []*DefinitionMatch
	isExpr  bool
}

// DefinitionMatch is a call site resolved against a registry: the canonical
// definition name plus its resolved arguments.
type DefinitionMatch struct {
	name string
	args map[string]argMatch
}

// Name returns the canonical definition name.
func (m *DefinitionMatch) Name() string { return m.name }

// IsPresent reports whether the argument was supplied or defaulted.
func (m *DefinitionMatch) IsPresent(name string) bool {
	_, ok := m.args[name]
	return ok
}

// Value returns the argument value. The second return is false when the
// argument is absent or holds a nested expression.
func (m *DefinitionMatch) Value(name string) (value.Value, bool) {
	a, ok := m.args[name]
	if !ok || a.isExpr {
		return value.Value{}, false
	}
	return a.value, true
}

// Expr returns the nested pipeline expression bound to the argument.
func (m *DefinitionMatch) Expr(name string) ([]*DefinitionMatch, bool) {
	a, ok := m.args[name]
	if !ok || !a.isExpr {
		return nil, false
	}
	return a.matches, true
}

// MapValue calls fn with the argument value when present. It is a no-op for
// absent arguments and an error for expression arguments.
func (m *DefinitionMatch) MapValue(name string, fn func(value.Value) error) error {
	a, ok := m.args[name]
	if !ok {
		return nil
	}
	if a.isExpr {
		return fmt.Errorf("argument `%s`: expected value, got expression", name)
	}
	return fn(a.value)
}

// MapExpr calls fn with the nested expression when present. It is a no-op
// for absent arguments and an error for value arguments.
func (m *DefinitionMatch) MapExpr(name string, fn func([]*DefinitionMatch) error) error {
	a, ok := m.args[name]
	if !ok {
		return nil
	}
	if !a.isExpr {
		return fmt.Errorf("argument `%s`: expected expression, got value", name)
	}
	return fn(a.matches)
}

// StrValue returns the argument as a string.
func (m *DefinitionMatch) StrValue(name string) (string, error) {
	var s string
	err := m.requireValue(name, func(v value.Value) error {
		got, ok := v.AsStr()
		if !ok {
			return fmt.Errorf("argument `%s`: expected string, got %s", name, v.Kind())
		}
		s = got
		return nil
	})
	return s, err
}

// BoolValue returns the argument as a bool.
func (m *DefinitionMatch) BoolValue(name string) (bool, error) {
	var b bool
	err := m.requireValue(name, func(v value.Value) error {
		got, ok := v.AsBool()
		if !ok {
			return fmt.Errorf("argument `%s`: expected bool, got %s", name, v.Kind())
		}
		b = got
		return nil
	})
	return b, err
}

// NumberValue returns the argument as a number.
func (m *DefinitionMatch) NumberValue(name string) (value.Number, error) {
	var n value.Number
	err := m.requireValue(name, func(v value.Value) error {
		got, ok := v.AsNumber()
		if !ok {
			return fmt.Errorf("argument `%s`: expected number, got %s", name, v.Kind())
		}
		n = got
		return nil
	})
	return n, err
}

// IntValue returns the argument as an int64.
func (m *DefinitionMatch) IntValue(name string) (int64, error) {
	n, err := m.NumberValue(name)
	if err != nil {
		return 0, err
	}
	i, ok := n.Int64()
	if !ok {
		return 0, fmt.Errorf("argument `%s`: expected integer, got %s", name, n)
	}
	return i, nil
}

// UintValue returns the argument as a uint64.
func (m *DefinitionMatch) UintValue(name string) (uint64, error) {
	n, err := m.NumberValue(name)
	if err != nil {
		return 0, err
	}
	u, ok := n.Uint64()
	if !ok {
		return 0, fmt.Errorf("argument `%s`: expected non-negative integer, got %s", name, n)
	}
	return u, nil
}

func (m *DefinitionMatch) requireValue(name string, fn func(value.Value) error) error {
	a, ok := m.args[name]
	if !ok {
		return fmt.Errorf("argument `%s`: missing", name)
	}
	if a.isExpr {
		return fmt.Errorf("argument `%s`: expected value, got expression", name)
	}
	return fn(a.value)
}
