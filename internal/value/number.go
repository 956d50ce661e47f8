package value

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

type numKind uint8

const (
	numUint numKind = iota
	numInt
	numFloat
)

// Number holds one of three numeric representations: an unsigned integer for
// non-negative integers, a signed integer for negative integers, or a float.
//
// Equality is representation-sensitive: 1, -1 and 1.0 all live in distinct
// variants and Number values only compare equal within the same variant.
// Compare falls back to float comparison across variants.
type Number struct {
	kind numKind
	u    uint64
	i    int64
	f    float64
}

// NewUint returns a number holding a non-negative integer.
func NewUint(u uint64) Number {
	return Number{kind: numUint, u: u}
}

// NewInt returns a number holding i. Non-negative inputs normalize to the
// unsigned variant.
func NewInt(i int64) Number {
	if i >= 0 {
		return Number{kind: numUint, u: uint64(i)}
	}
	return Number{kind: numInt, i: i}
}

// NewFloat returns a number holding f. NaN and infinities are rejected.
func NewFloat(f float64) (Number, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}, false
	}
	return Number{kind: numFloat, f: f}, true
}

// ParseNumber converts a JSON numeric literal into a Number. Integer
// literals that fit stay integral; everything else becomes a float.
func ParseNumber(s string) (Number, error) {
	if !strings.ContainsAny(s, ".eE") {
		if strings.HasPrefix(s, "-") {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return NewInt(i), nil
			}
		} else if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return NewUint(u), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, err
	}
	n, ok := NewFloat(f)
	if !ok {
		return Number{}, strconv.ErrRange
	}
	return n, nil
}

// IsUint reports whether n holds a non-negative integer.
func (n Number) IsUint() bool { return n.kind == numUint }

// IsInt reports whether n holds a negative integer.
func (n Number) IsInt() bool { return n.kind == numInt }

// IsFloat reports whether n holds a float.
func (n Number) IsFloat() bool { return n.kind == numFloat }

// Uint64 returns the unsigned payload, if that is the stored variant.
func (n Number) Uint64() (uint64, bool) {
	if n.kind != numUint {
		return 0, false
	}
	return n.u, true
}

// Int64 returns n as a signed integer when it holds an integer that fits.
func (n Number) Int64() (int64, bool) {
	switch n.kind {
	case numUint:
		if n.u <= math.MaxInt64 {
			return int64(n.u), true
		}
	case numInt:
		return n.i, true
	}
	return 0, false
}

// Float64 returns n as a float, converting integral variants.
func (n Number) Float64() float64 {
	switch n.kind {
	case numUint:
		return float64(n.u)
	case numInt:
		return float64(n.i)
	}
	return n.f
}

// Equal reports representation-sensitive equality.
func (n Number) Equal(o Number) bool {
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case numUint:
		return n.u == o.u
	case numInt:
		return n.i == o.i
	}
	return n.f == o.f
}

// Compare orders two numbers numerically, comparing exactly within a variant
// and via floats across variants. Incomparable floats order as equal.
func (n Number) Compare(o Number) int {
	if n.kind == o.kind {
		switch n.kind {
		case numUint:
			return cmpUint64(n.u, o.u)
		case numInt:
			return cmpInt64(n.i, o.i)
		}
	}
	a, b := n.Float64(), o.Float64()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String renders n as a JSON numeric literal.
func (n Number) String() string {
	switch n.kind {
	case numUint:
		return strconv.FormatUint(n.u, 10)
	case numInt:
		return strconv.FormatInt(n.i, 10)
	}
	s := strconv.FormatFloat(n.f, 'g', -1, 64)
	// integral floats keep a float marker so they re-decode as floats
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (n Number) hashInto(h byteWriter) {
	var buf [9]byte
	buf[0] = byte(n.kind)
	switch n.kind {
	case numUint:
		binary.LittleEndian.PutUint64(buf[1:], n.u)
	case numInt:
		binary.LittleEndian.PutUint64(buf[1:], uint64(n.i))
	case numFloat:
		f := n.f
		if f == 0 {
			f = 0 // collapse -0.0 into +0.0
		}
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(f))
	}
	h.Write(buf[:])
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
