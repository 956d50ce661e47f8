package query

import "errors"

var (
	// ErrSyntax indicates a query expression syntax error during compilation.
	ErrSyntax = errors.New("query: syntax error")

	// ErrNotSupported indicates a query feature that is not supported.
	ErrNotSupported = errors.New("query: feature not supported")
)
