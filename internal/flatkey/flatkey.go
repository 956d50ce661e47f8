// Package flatkey implements dotted key paths for flattening nested
// documents into single-level objects and expanding them back.
//
// A key path is a sequence of parts: bare identifiers joined with dots,
// quoted identifiers in brackets, and numeric array indexes in brackets:
//
//	foo.bar_baz[0]["not a bare ident"]
package flatkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrSyntax = errors.New("invalid key path")

// PartKind discriminates key path parts.
type PartKind uint8

const (
	PartIdent PartKind = iota
	PartIndex
)

// KeyPart is one step of a key path: an object key or an array index.
type KeyPart struct {
	Kind  PartKind
	Ident string
	Index int
}

// IdentPart returns an object key part.
func IdentPart(s string) KeyPart {
	return KeyPart{Kind: PartIdent, Ident: s}
}

// IndexPart returns an array index part.
func IndexPart(i int) KeyPart {
	return KeyPart{Kind: PartIndex, Index: i}
}

// String renders the part. Identifiers made of ASCII letters, digits and
// underscores render bare, anything else renders bracket-quoted with interior
// double quotes escaped.
func (p KeyPart) String() string {
	if p.Kind == PartIndex {
		return "[" + strconv.Itoa(p.Index) + "]"
	}
	if isBareIdent(p.Ident) {
		return p.Ident
	}
	return `["` + strings.ReplaceAll(p.Ident, `"`, `\"`) + `"]`
}

// KeyParts is a full key path.
type KeyParts []KeyPart

// String renders the path. Bare identifiers after the first part get a
// leading dot, bracket parts attach directly.
func (ps KeyParts) String() string {
	var b strings.Builder
	for i, p := range ps {
		s := p.String()
		if i > 0 && s[0] != '[' {
			b.WriteByte('.')
		}
		b.WriteString(s)
	}
	return b.String()
}

// Parse scans a key path. Parsing and rendering round-trip: for any parts ps,
// Parse(ps.String()) yields ps again.
func Parse(key string) (KeyParts, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrSyntax)
	}

	var parts KeyParts
	i := 0
	for i < len(key) {
		if key[i] == '[' {
			part, n, err := parseBracket(key[i:])
			if err != nil {
				return nil, fmt.Errorf("%w at offset %d", err, i)
			}
			parts = append(parts, part)
			i += n
		} else {
			start := i
			for i < len(key) && isIdentByte(key[i]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrSyntax, key[i], i)
			}
			parts = append(parts, IdentPart(key[start:i]))
		}

		if i >= len(key) {
			break
		}
		switch key[i] {
		case '[':
			// next part attaches directly
		case '.':
			i++
			if i >= len(key) || !isIdentByte(key[i]) {
				return nil, fmt.Errorf("%w: dot must be followed by an identifier at offset %d", ErrSyntax, i)
			}
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrSyntax, key[i], i)
		}
	}
	return parts, nil
}

func parseBracket(s string) (KeyPart, int, error) {
	// s[0] == '['
	if len(s) < 2 {
		return KeyPart{}, 0, fmt.Errorf("%w: unterminated bracket", ErrSyntax)
	}
	switch {
	case s[1] == '"' || s[1] == '\'':
		quote := s[1]
		j := 2
		for j < len(s) {
			if s[j] == '\\' && j+1 < len(s) && s[j+1] == quote {
				j += 2
				continue
			}
			if s[j] == quote {
				break
			}
			j++
		}
		if j >= len(s) || j+1 >= len(s) || s[j+1] != ']' {
			return KeyPart{}, 0, fmt.Errorf("%w: unterminated quoted key", ErrSyntax)
		}
		ident := strings.ReplaceAll(s[2:j], `\`+string(quote), string(quote))
		return IdentPart(ident), j + 2, nil
	case s[1] >= '0' && s[1] <= '9':
		j := 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j >= len(s) || s[j] != ']' {
			return KeyPart{}, 0, fmt.Errorf("%w: unterminated index", ErrSyntax)
		}
		idx, err := strconv.Atoi(s[1:j])
		if err != nil {
			return KeyPart{}, 0, fmt.Errorf("%w: index out of range", ErrSyntax)
		}
		return IndexPart(idx), j + 1, nil
	}
	return KeyPart{}, 0, fmt.Errorf("%w: expected quoted key or index after '['", ErrSyntax)
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

func isBareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}
