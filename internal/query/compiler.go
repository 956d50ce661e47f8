package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/recast-io/recast/internal/value"
)

const (
	litNum litKind = iota + 1
	litStr
	litRegex
	litArray
)

var filterRe = regexp.MustCompile(`^@((?:\.[-\w]+)+)?\s*(==|!=|<=|>=|<|>|=~|!~|in|nin)?\s*(.*)$`)

// selector defines the interface for query selectors that can match a single
// step from a parent node to a child.
type selector interface {
	match(st step, v value.Value) bool
}

type litKind uint8

type segment struct {
	deep bool       // true for '..' descendant operator
	sels []selector // list of selectors for this segment (e.g. name, index, filter)
}

// step is one edge of a document path: an object key or an array index.
type step struct {
	key     string
	index   int
	isIndex bool
}

func keyStep(k string) step {
	return step{key: k}
}

func indexStep(i int) step {
	return step{index: i, isIndex: true}
}

// String encodes the step for path identity. Keys are length-prefixed so
// keys containing separator bytes cannot alias a nested path.
func (s step) String() string {
	if s.isIndex {
		return "#" + strconv.Itoa(s.index)
	}
	return "k" + strconv.Itoa(len(s.key)) + ":" + s.key
}

type (
	nameSel     string
	wildcardSel struct{}
	indexSel    int
	sliceSel    struct{ start, end, step int }
)

type filterSel struct {
	path   []string
	cmp    comparison
	exists bool // true for existence check like [?(@.isbn)]
}

type comparison struct {
	op    string
	num   float64
	str   string
	regex *regexp.Regexp
	arr   []value.Value
	kind  litKind
}

func (n nameSel) match(st step, _ value.Value) bool {
	return !st.isArray() && st.key == string(n)
}

func (wildcardSel) match(_ step, _ value.Value) bool {
	return true
}

func (i indexSel) match(st step, _ value.Value) bool {
	return st.isArray() && st.index == int(i)
}

func (s sliceSel) match(st step, _ value.Value) bool {
	if !st.isArray() {
		return false
	}

	stp := s.step
	if stp == 0 {
		stp = 1
	}

	if stp > 0 {
		if st.index < s.start || st.index >= s.end {
			return false
		}
		return (st.index-s.start)%stp == 0
	}
	// Descending slice, e.g. [5:1:-1]
	return st.index >= s.start && st.index < s.end && (st.index-s.start)%s.step == 0
}

func (st step) isArray() bool {
	return st.isIndex
}

func (f filterSel) match(_ step, v value.Value) bool {
	target, found := f.extractTarget(v)

	if f.exists {
		return found
	}
	if !found {
		return false
	}
	return f.evaluateComparison(target)
}

func (f filterSel) extractTarget(v value.Value) (value.Value, bool) {
	current := v
	for _, p := range f.path {
		obj, ok := current.AsObject()
		if !ok {
			return value.Value{}, false
		}
		child, ok := obj.Get(p)
		if !ok {
			return value.Value{}, false
		}
		current = child
	}
	return current, true
}

func (f filterSel) evaluateComparison(target value.Value) bool {
	switch f.cmp.kind {
	case litNum:
		return f.evaluateNumericComparison(target)
	case litStr:
		return f.evaluateStringComparison(target)
	case litRegex:
		return f.evaluateRegexComparison(target)
	case litArray:
		return f.evaluateArrayComparison(target)
	}
	return false
}

func (f filterSel) evaluateNumericComparison(target value.Value) bool {
	num, ok := target.AsNumber()
	if !ok {
		return false
	}
	v := num.Float64()

	switch f.cmp.op {
	case "==":
		return v == f.cmp.num
	case "!=":
		return v != f.cmp.num
	case "<":
		return v < f.cmp.num
	case "<=":
		return v <= f.cmp.num
	case ">":
		return v > f.cmp.num
	case ">=":
		return v >= f.cmp.num
	}
	return false
}

func (f filterSel) evaluateStringComparison(target value.Value) bool {
	s, ok := target.AsStr()
	if !ok {
		return false
	}

	switch f.cmp.op {
	case "==":
		return s == f.cmp.str
	case "!=":
		return s != f.cmp.str
	}
	return false
}

func (f filterSel) evaluateRegexComparison(target value.Value) bool {
	s, ok := target.AsStr()
	if !ok {
		return false
	}

	m := f.cmp.regex.MatchString(s)
	switch f.cmp.op {
	case "=~":
		return m
	case "!~":
		return !m
	}
	return false
}

func (f filterSel) evaluateArrayComparison(target value.Value) bool {
	found := false
	for _, item := range f.cmp.arr {
		if compareValues(target, item) {
			found = true
			break
		}
	}

	switch f.cmp.op {
	case "in":
		return found
	case "nin":
		return !found
	}
	return false
}

// compareValues compares two values for equality. Numbers compare
// numerically so filter literals match regardless of representation.
func compareValues(a, b value.Value) bool {
	na, aok := a.AsNumber()
	nb, bok := b.AsNumber()
	if aok && bok {
		return na.Compare(nb) == 0
	}
	return a.Equal(b)
}

func compile(expr string) ([]segment, error) {
	if err := validateExpression(expr); err != nil {
		return nil, err
	}

	if expr == "$" {
		return []segment{}, nil
	}

	i := 1 // current parsing index in expr, after '$'
	var segs []segment

	for i < len(expr) {
		seg, newIndex, err := parseSegment(expr, i)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
		i = newIndex
	}

	if len(segs) == 0 && expr != "$" {
		return nil, fmt.Errorf("%w: expression parsed to no segments but was not '$'", ErrSyntax)
	}
	return segs, nil
}

func validateExpression(expr string) error {
	if expr == "" {
		return fmt.Errorf("%w: expression cannot be empty", ErrSyntax)
	}
	if expr[0] != '$' || (len(expr) > 1 && expr[1] != '.' && expr[1] != '[') {
		return fmt.Errorf("%w: expression must start with '$', '$.', or '$['", ErrSyntax)
	}
	return nil
}

func parseSegment(expr string, i int) (segment, int, error) {
	if i >= len(expr) {
		return segment{}, i, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}

	if expr[i] == '.' {
		return parseDotSegment(expr, i)
	}
	if expr[i] == '[' {
		return parseBracketSegment(expr, i)
	}

	return segment{}, i, fmt.Errorf("%w: unexpected token '%c' at position %d, expected '.' or '['", ErrSyntax, expr[i], i)
}

func parseDotSegment(expr string, i int) (segment, int, error) {
	seg := segment{}

	if i+1 < len(expr) && expr[i+1] == '.' { // descendant '..'
		seg.deep = true
		i += 2
	} else { // child '.'
		i++
	}

	if i >= len(expr) { // path cannot end with '.' or '..'
		return segment{}, i, fmt.Errorf("%w: path segment cannot end with '.' or '..'", ErrSyntax)
	}

	if expr[i] == '[' { // descendant bracket, e.g. '..[0]'
		if !seg.deep {
			return segment{}, i, fmt.Errorf("%w: unexpected '[' after '.'", ErrSyntax)
		}
		bseg, newIndex, err := parseBracketSegment(expr, i)
		if err != nil {
			return segment{}, i, err
		}
		bseg.deep = true
		return bseg, newIndex, nil
	}

	if expr[i] == '*' { // wildcard
		seg.sels = append(seg.sels, wildcardSel{})
		i++
	} else { // name selector
		name, newIndex, err := parseName(expr, i)
		if err != nil {
			return segment{}, i, err
		}
		seg.sels = append(seg.sels, nameSel(name))
		i = newIndex
	}

	return seg, i, nil
}

func parseName(expr string, i int) (string, int, error) {
	start := i
	for i < len(expr) && idRune(expr[i]) {
		i++
	}
	if start == i { // name cannot be empty
		return "", i, fmt.Errorf("%w: name selector cannot be empty after '.'", ErrSyntax)
	}
	return expr[start:i], i, nil
}

func parseBracketSegment(expr string, i int) (segment, int, error) {
	i++ // consume '['
	if i >= len(expr) {
		return segment{}, i, fmt.Errorf("%w: unterminated bracket selector, missing ']'", ErrSyntax)
	}

	// Filter expression [?(...)]
	if i+1 < len(expr) && expr[i] == '?' && expr[i+1] == '(' {
		return parseFilterSegment(expr, i)
	}

	// Union / slice / index / quoted names
	return parseUnionSegment(expr, i)
}

func parseFilterSegment(expr string, i int) (segment, int, error) {
	tempEnd := findMatchingBracket(expr, i-1)
	if tempEnd == -1 {
		return segment{}, i, fmt.Errorf("%w: unterminated filter expression, missing ']' for '[?(...)'", ErrSyntax)
	}

	fullContent := expr[i:tempEnd]
	i = tempEnd + 1

	if !strings.HasPrefix(fullContent, "?(") || !strings.HasSuffix(fullContent, ")") {
		return segment{}, i, fmt.Errorf("%w: malformed filter structure, expected '[?(<expression>)]' but got '[%s]'", ErrSyntax, fullContent)
	}
	if len(fullContent) < 4 { // Smallest valid is "?()"
		return segment{}, i, fmt.Errorf("%w: filter expression body is too short in '[%s]'", ErrSyntax, fullContent)
	}

	inside := fullContent[2 : len(fullContent)-1] // Extract content between "?(" and ")"
	fs, err := parseFilter(strings.TrimSpace(inside))
	if err != nil {
		return segment{}, i, fmt.Errorf("parsing filter body '%s': %w", inside, err)
	}

	seg := segment{}
	seg.sels = append(seg.sels, fs)
	return seg, i, nil
}

func parseUnionSegment(expr string, i int) (segment, int, error) {
	startContentForBracket := i
	endContentInBracket := strings.IndexByte(expr[i:], ']')
	if endContentInBracket == -1 {
		return segment{}, i, fmt.Errorf("%w: unterminated bracket selector, missing ']' for content starting at '%s'", ErrSyntax, expr[startContentForBracket:])
	}

	contentInBracket := expr[startContentForBracket : startContentForBracket+endContentInBracket]
	i = startContentForBracket + endContentInBracket + 1

	if strings.TrimSpace(contentInBracket) == "" {
		return segment{}, i, fmt.Errorf("%w: empty bracket selector '[]'", ErrSyntax)
	}

	parts := strings.Split(contentInBracket, ",")

	seg := segment{}
	for _, part := range parts {
		sel, err := parseUnionPart(part)
		if err != nil {
			return segment{}, i, err
		}
		seg.sels = append(seg.sels, sel)
	}

	return seg, i, nil
}

func parseUnionPart(part string) (selector, error) {
	p := strings.TrimSpace(part)
	if p == "" {
		return nil, fmt.Errorf("%w: empty part in union selector", ErrSyntax)
	}

	if p == "*" { // wildcard
		return wildcardSel{}, nil
	}

	if isQuotedName(p) {
		return nameSel(p[1 : len(p)-1]), nil
	}

	if strings.Contains(p, ":") {
		return parseSlice(p)
	}

	if idx, err := strconv.Atoi(p); err == nil {
		if idx < 0 {
			return nil, fmt.Errorf("%w: negative array index (%d)", ErrNotSupported, idx)
		}
		return indexSel(idx), nil
	}

	return nil, fmt.Errorf("%w: invalid content '%s' in bracket selector", ErrSyntax, p)
}

func isQuotedName(s string) bool {
	return (len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'') ||
		(len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"')
}

func parseSlice(p string) (selector, error) {
	sliceBounds := strings.Split(p, ":")
	if len(sliceBounds) > 3 {
		return nil, fmt.Errorf("%w: too many colons in slice '%s'", ErrSyntax, p)
	}

	s := sliceSel{
		start: 0,
		end:   1 << 30, // effectively "no upper bound"
		step:  1,
	}

	if err := parseSliceBound(&s.start, sliceBounds[0], "start", p); err != nil {
		return nil, err
	}

	if len(sliceBounds) > 1 {
		if err := parseSliceBound(&s.end, sliceBounds[1], "end", p); err != nil {
			return nil, err
		}
	}

	if len(sliceBounds) == 3 {
		if err := parseSliceBound(&s.step, sliceBounds[2], "step", p); err != nil {
			return nil, err
		}
		if s.step == 0 {
			return nil, fmt.Errorf("%w: slice step cannot be zero in '%s'", ErrSyntax, p)
		}
	}

	if s.start < 0 || (len(sliceBounds) > 1 && sliceBounds[1] != "" && s.end < 0) {
		return nil, fmt.Errorf("%w: negative slice indices ('%s')", ErrNotSupported, p)
	}

	return s, nil
}

func parseSliceBound(target *int, valueStr, boundType, fullSlice string) error {
	trimmed := strings.TrimSpace(valueStr)
	if trimmed == "" {
		return nil
	}

	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return fmt.Errorf("%w: slice %s '%s' in '%s' is not a number", ErrSyntax, boundType, trimmed, fullSlice)
	}

	*target = v
	return nil
}

// findMatchingBracket finds the matching closing bracket for an opening
// bracket at position start.
func findMatchingBracket(expr string, start int) int {
	if start >= len(expr) || expr[start] != '[' {
		return -1
	}

	bracketDepth := 0
	inSingleQuote := false
	inDoubleQuote := false

	for i := start; i < len(expr); i++ {
		c := expr[i]

		// Handle escape sequences in quoted strings
		if i > 0 && expr[i-1] == '\\' {
			continue
		}

		// Handle quoted strings
		if c == '\'' && !inDoubleQuote {
			inSingleQuote = !inSingleQuote
			continue
		}
		if c == '"' && !inSingleQuote {
			inDoubleQuote = !inDoubleQuote
			continue
		}

		// Skip bracket tracking inside quoted strings
		if inSingleQuote || inDoubleQuote {
			continue
		}

		// Track bracket depth
		switch c {
		case '[':
			bracketDepth++
		case ']':
			bracketDepth--
			if bracketDepth == 0 {
				return i
			}
		}
	}

	return -1
}

// idRune checks if a byte is valid for unquoted names after '.'.
func idRune(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '-'
}

// parseFilter compiles a single atomic comparison filter expression.
func parseFilter(s string) (filterSel, error) {
	s = strings.TrimSpace(s)
	m := filterRe.FindStringSubmatch(s)
	if m == nil {
		return filterSel{}, fmt.Errorf("%w: filter expression '%s' must be like '@.path <op> <literal>' or '@.path'", ErrNotSupported, s)
	}

	path, op, literal := m[1], m[2], m[3]
	if path == "" {
		return filterSel{}, fmt.Errorf("%w: filter expression '%s' must have a path starting with @", ErrSyntax, s)
	}

	fs := filterSel{path: strings.Split(path[1:], ".")}

	if op == "" {
		fs.exists = true
		return fs, nil
	}

	cmp, err := parseComparison(op, literal)
	if err != nil {
		return filterSel{}, err
	}

	fs.cmp = cmp
	return fs, nil
}

func parseComparison(op, literal string) (comparison, error) {
	if op == "in" || op == "nin" {
		return parseArrayComparison(op, literal)
	}

	if f, err := strconv.ParseFloat(literal, 64); err == nil {
		return parseNumericComparison(op, f, literal)
	}

	if cmp, ok := parseStringComparison(op, literal); ok {
		return cmp, nil
	}

	if cmp, err := parseRegexComparison(op, literal); err == nil {
		return cmp, nil
	}

	return comparison{}, fmt.Errorf("%w: unsupported literal format '%s'", ErrNotSupported, literal)
}

func parseNumericComparison(op string, v float64, literal string) (comparison, error) {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return comparison{op: op, num: v, kind: litNum}, nil
	default:
		return comparison{}, fmt.Errorf("%w: operator '%s' not valid for numeric literal '%s'", ErrNotSupported, op, literal)
	}
}

func parseStringComparison(op, literal string) (comparison, bool) {
	isSingleQuoted := len(literal) >= 2 && literal[0] == '\'' && literal[len(literal)-1] == '\''
	isDoubleQuoted := len(literal) >= 2 && literal[0] == '"' && literal[len(literal)-1] == '"'

	if !isSingleQuoted && !isDoubleQuoted {
		return comparison{}, false
	}

	switch op {
	case "==", "!=":
		return comparison{op: op, str: literal[1 : len(literal)-1], kind: litStr}, true
	default:
		return comparison{}, false
	}
}

func parseRegexComparison(op, literal string) (comparison, error) {
	if len(literal) < 2 || literal[0] != '/' {
		return comparison{}, fmt.Errorf("not a regex literal")
	}

	lastSlash := strings.LastIndexByte(literal[1:], '/')
	if lastSlash == -1 {
		return comparison{}, fmt.Errorf("unterminated regex literal")
	}

	lastSlash++ // Adjust for the offset
	pat := literal[1:lastSlash]
	flags := literal[lastSlash+1:]

	if op != "=~" && op != "!~" {
		return comparison{}, fmt.Errorf("%w: operator '%s' not valid for regex literal %s", ErrNotSupported, op, literal)
	}

	goFlags, err := processRegexFlags(flags, literal)
	if err != nil {
		return comparison{}, err
	}

	fullPattern := pat
	if goFlags != "" {
		fullPattern = "(?" + goFlags + ")" + pat
	}

	re, err := regexp.Compile(fullPattern)
	if err != nil {
		return comparison{}, fmt.Errorf("compiling regex literal %s: %w", literal, err)
	}

	return comparison{op: op, regex: re, kind: litRegex}, nil
}

func parseArrayComparison(op, literal string) (comparison, error) {
	literal = strings.TrimSpace(literal)
	if !strings.HasPrefix(literal, "[") || !strings.HasSuffix(literal, "]") {
		return comparison{}, fmt.Errorf("%w: array literal '%s' must be enclosed in square brackets", ErrSyntax, literal)
	}

	content := strings.TrimSpace(literal[1 : len(literal)-1])
	if content == "" {
		return comparison{op: op, arr: []value.Value{}, kind: litArray}, nil
	}

	var arr []value.Value
	parts := splitArrayElements(content)

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		v, err := parseArrayElement(part)
		if err != nil {
			return comparison{}, fmt.Errorf("parsing array element '%s': %w", part, err)
		}
		arr = append(arr, v)
	}

	return comparison{op: op, arr: arr, kind: litArray}, nil
}

// splitArrayElements splits array content by commas, respecting quoted strings
func splitArrayElements(content string) []string {
	if content == "" {
		return nil
	}

	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := byte(0)

	for i, c := range []byte(content) {
		switch {
		case !inQuotes && (c == '\'' || c == '"'):
			inQuotes = true
			quoteChar = c
			current.WriteByte(c)
		case inQuotes && c == quoteChar:
			// Simple escape handling: only check immediate backslash
			escaped := i > 0 && content[i-1] == '\\'
			if !escaped {
				inQuotes = false
			}
			current.WriteByte(c)
		case !inQuotes && c == ',':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

func parseArrayElement(element string) (value.Value, error) {
	element = strings.TrimSpace(element)

	if n, err := value.ParseNumber(element); err == nil {
		return value.Num(n), nil
	}

	if element == "true" {
		return value.Bool(true), nil
	}
	if element == "false" {
		return value.Bool(false), nil
	}

	if element == "null" {
		return value.Null(), nil
	}

	if len(element) >= 2 {
		if (element[0] == '\'' && element[len(element)-1] == '\'') ||
			(element[0] == '"' && element[len(element)-1] == '"') {
			return value.Str(element[1 : len(element)-1]), nil
		}
	}

	return value.Value{}, fmt.Errorf("unsupported array element format: %s", element)
}

func processRegexFlags(flags, literal string) (string, error) {
	var goFlags string

	// Process supported regex flags
	for _, flag := range []string{"s", "i", "m"} {
		if strings.Contains(flags, flag) {
			goFlags += flag
		}
	}

	for _, fchar := range flags {
		if fchar != 's' && fchar != 'i' && fchar != 'm' {
			return "", fmt.Errorf("%w: unsupported regex flag '%c' in %s", ErrNotSupported, fchar, literal)
		}
	}

	return goFlags, nil
}
