package schema

import (
	"errors"
	"fmt"
)

var (
	ErrNoTypes          = errors.New("schema: document has no types")
	ErrTypeRefTooDeep   = errors.New("schema: type reference exceeds wrapper depth")
	ErrMalformedTypeRef = errors.New("schema: malformed type reference")
	ErrUnknownType      = errors.New("schema: reference to undeclared type")
	ErrInvalidKind      = errors.New("schema: invalid type kind")
)

// ParseError reports where in the document parsing failed.
type ParseError struct {
	Path string // e.g. "Query.hero(episode)"
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema: parse: %v", e.Err)
	}
	return fmt.Sprintf("schema: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(path string, err error) error { return &ParseError{Path: path, Err: err} }
