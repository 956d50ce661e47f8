// Package funcsig parses transformation pipeline expressions of the form
//
//	flatten.sort(order="desc") remove_empty_values
//
// A pipeline is one or more function signatures separated by dots or
// whitespace. Arguments are positional or named, and each argument is either
// a JSON literal or a nested pipeline expression.
package funcsig

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrSyntax = errors.New("invalid expression")

// TermKind discriminates argument terms.
type TermKind uint8

const (
	// TermLiteral is a JSON literal; the raw text is kept for the caller
	// to decode.
	TermLiteral TermKind = iota
	// TermExpr is a nested pipeline of function signatures.
	TermExpr
)

// ExprTerm is the right-hand side of an argument.
type ExprTerm struct {
	Kind    TermKind
	Literal string
	Expr    []FuncSig
}

// Literal returns a literal term holding raw JSON text.
func Literal(raw string) ExprTerm {
	return ExprTerm{Kind: TermLiteral, Literal: raw}
}

// Expr returns a nested expression term.
func Expr(sigs ...FuncSig) ExprTerm {
	return ExprTerm{Kind: TermExpr, Expr: sigs}
}

// String renders the term back to expression syntax.
func (t ExprTerm) String() string {
	if t.Kind == TermLiteral {
		return t.Literal
	}
	parts := make([]string, len(t.Expr))
	for i, sig := range t.Expr {
		parts[i] = sig.String()
	}
	return strings.Join(parts, ".")
}

// FuncArg is one argument of a function signature. Name is empty for
// positional arguments.
type FuncArg struct {
	Name string
	Term ExprTerm
}

// Positional returns a positional argument.
func Positional(term ExprTerm) FuncArg {
	return FuncArg{Term: term}
}

// Named returns a named argument.
func Named(name string, term ExprTerm) FuncArg {
	return FuncArg{Name: name, Term: term}
}

func (a FuncArg) String() string {
	if a.Name == "" {
		return a.Term.String()
	}
	return a.Name + "=" + a.Term.String()
}

// FuncSig is a function call with arguments.
type FuncSig struct {
	Name string
	Args []FuncArg
}

func (s FuncSig) String() string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.String()
	}
	return s.Name + "(" + strings.Join(args, ", ") + ")"
}

// Parse scans a pipeline expression into its function signatures.
func Parse(input string) ([]FuncSig, error) {
	s := &scanner{input: input}
	s.skipSpace()
	if s.eof() {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	var sigs []FuncSig
	for {
		sig, err := s.funcSig()
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)

		hadSpace := s.skipSpace()
		if s.eof() {
			return sigs, nil
		}
		if s.peek() == '.' {
			s.pos++
			s.skipSpace()
			continue
		}
		if hadSpace && isIdentByte(s.peek()) {
			continue
		}
		return nil, s.errorf("unexpected character %q", s.peek())
	}
}

type scanner struct {
	input string
	pos   int
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.input)
}

func (s *scanner) peek() byte {
	return s.input[s.pos]
}

func (s *scanner) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrSyntax, fmt.Sprintf(format, args...), s.pos)
}

func (s *scanner) skipSpace() bool {
	start := s.pos
	for !s.eof() {
		switch s.peek() {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return s.pos > start
		}
	}
	return s.pos > start
}

func (s *scanner) ident() (string, error) {
	start := s.pos
	for !s.eof() && isIdentByte(s.peek()) {
		s.pos++
	}
	if s.pos == start {
		if s.eof() {
			return "", s.errorf("expected identifier, found end of input")
		}
		return "", s.errorf("expected identifier, found %q", s.peek())
	}
	return s.input[start:s.pos], nil
}

func (s *scanner) funcSig() (FuncSig, error) {
	name, err := s.ident()
	if err != nil {
		return FuncSig{}, err
	}
	return s.funcSigTail(name)
}

// funcSigTail finishes a signature whose name is already consumed.
func (s *scanner) funcSigTail(name string) (FuncSig, error) {
	sig := FuncSig{Name: name}
	if s.eof() || s.peek() != '(' {
		return sig, nil
	}
	s.pos++ // '('
	s.skipSpace()
	if !s.eof() && s.peek() == ')' {
		s.pos++
		return sig, nil
	}
	for {
		arg, err := s.funcArg()
		if err != nil {
			return FuncSig{}, err
		}
		sig.Args = append(sig.Args, arg)

		s.skipSpace()
		if s.eof() {
			return FuncSig{}, s.errorf("unterminated argument list")
		}
		switch s.peek() {
		case ',':
			s.pos++
			s.skipSpace()
		case ')':
			s.pos++
			return sig, nil
		default:
			return FuncSig{}, s.errorf("expected ',' or ')', found %q", s.peek())
		}
	}
}

func (s *scanner) funcArg() (FuncArg, error) {
	s.skipSpace()
	if s.eof() {
		return FuncArg{}, s.errorf("expected argument, found end of input")
	}

	c := s.peek()
	switch {
	case c == '"' || c == '\'':
		raw, err := s.stringLiteral()
		if err != nil {
			return FuncArg{}, err
		}
		return Positional(Literal(raw)), nil
	case c == '[' || c == '{':
		raw, err := s.containerLiteral()
		if err != nil {
			return FuncArg{}, err
		}
		return Positional(Literal(raw)), nil
	case c == '-' || (c >= '0' && c <= '9'):
		raw, err := s.numberLiteral()
		if err != nil {
			return FuncArg{}, err
		}
		return Positional(Literal(raw)), nil
	case isIdentByte(c):
		name, err := s.ident()
		if err != nil {
			return FuncArg{}, err
		}
		switch name {
		case "true", "false", "null":
			return Positional(Literal(name)), nil
		}
		s.skipSpace()
		if !s.eof() && s.peek() == '=' {
			s.pos++
			s.skipSpace()
			term, err := s.exprTerm()
			if err != nil {
				return FuncArg{}, err
			}
			return Named(name, term), nil
		}
		term, err := s.exprTail(name)
		if err != nil {
			return FuncArg{}, err
		}
		return Positional(term), nil
	}
	return FuncArg{}, s.errorf("unexpected character %q", c)
}

// exprTerm parses the right-hand side of a named argument: a literal or a
// nested expression.
func (s *scanner) exprTerm() (ExprTerm, error) {
	if s.eof() {
		return ExprTerm{}, s.errorf("expected value, found end of input")
	}
	c := s.peek()
	switch {
	case c == '"' || c == '\'':
		raw, err := s.stringLiteral()
		if err != nil {
			return ExprTerm{}, err
		}
		return Literal(raw), nil
	case c == '[' || c == '{':
		raw, err := s.containerLiteral()
		if err != nil {
			return ExprTerm{}, err
		}
		return Literal(raw), nil
	case c == '-' || (c >= '0' && c <= '9'):
		raw, err := s.numberLiteral()
		if err != nil {
			return ExprTerm{}, err
		}
		return Literal(raw), nil
	case isIdentByte(c):
		name, err := s.ident()
		if err != nil {
			return ExprTerm{}, err
		}
		switch name {
		case "true", "false", "null":
			return Literal(name), nil
		}
		return s.exprTail(name)
	}
	return ExprTerm{}, s.errorf("unexpected character %q", c)
}

// exprTail parses a dot-chained nested expression whose first signature name
// is already consumed.
func (s *scanner) exprTail(name string) (ExprTerm, error) {
	sig, err := s.funcSigTail(name)
	if err != nil {
		return ExprTerm{}, err
	}
	sigs := []FuncSig{sig}
	for {
		save := s.pos
		s.skipSpace()
		if s.eof() || s.peek() != '.' {
			s.pos = save
			return Expr(sigs...), nil
		}
		s.pos++
		s.skipSpace()
		next, err := s.funcSig()
		if err != nil {
			return ExprTerm{}, err
		}
		sigs = append(sigs, next)
	}
}

// stringLiteral scans a quoted string and returns it as raw JSON string
// text. Double-quoted strings pass through verbatim, single-quoted strings
// are re-encoded.
func (s *scanner) stringLiteral() (string, error) {
	quote := s.peek()
	start := s.pos
	s.pos++
	for !s.eof() {
		c := s.peek()
		if c == '\\' {
			s.pos += 2
			continue
		}
		if c == quote {
			s.pos++
			raw := s.input[start:s.pos]
			if quote == '"' {
				return raw, nil
			}
			content := strings.ReplaceAll(raw[1:len(raw)-1], `\'`, `'`)
			encoded, err := json.Marshal(content)
			if err != nil {
				return "", s.errorf("invalid string literal")
			}
			return string(encoded), nil
		}
		s.pos++
	}
	return "", fmt.Errorf("%w: unterminated string at offset %d", ErrSyntax, start)
}

// containerLiteral scans a balanced array or object literal and returns its
// raw text. The content is not validated here, the caller decodes it as
// JSON.
func (s *scanner) containerLiteral() (string, error) {
	start := s.pos
	depth := 0
	for !s.eof() {
		switch s.peek() {
		case '[', '{':
			depth++
			s.pos++
		case ']', '}':
			depth--
			s.pos++
			if depth == 0 {
				return s.input[start:s.pos], nil
			}
		case '"':
			if _, err := s.stringLiteral(); err != nil {
				return "", err
			}
		default:
			s.pos++
		}
	}
	return "", fmt.Errorf("%w: unterminated %q at offset %d", ErrSyntax, s.input[start], start)
}

func (s *scanner) numberLiteral() (string, error) {
	start := s.pos
	if s.peek() == '-' {
		s.pos++
	}
	digits := 0
	for !s.eof() && s.peek() >= '0' && s.peek() <= '9' {
		s.pos++
		digits++
	}
	if digits == 0 {
		return "", s.errorf("malformed number")
	}
	if !s.eof() && s.peek() == '.' {
		s.pos++
		for !s.eof() && s.peek() >= '0' && s.peek() <= '9' {
			s.pos++
		}
	}
	if !s.eof() && (s.peek() == 'e' || s.peek() == 'E') {
		s.pos++
		if !s.eof() && (s.peek() == '+' || s.peek() == '-') {
			s.pos++
		}
		for !s.eof() && s.peek() >= '0' && s.peek() <= '9' {
			s.pos++
		}
	}
	return s.input[start:s.pos], nil
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}
