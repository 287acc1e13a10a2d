package query

import (
	"errors"
	"fmt"

	"github.com/hanpama/gqlclient/schema"
)

var (
	ErrUnknownField             = errors.New("query: unknown field")
	ErrUnknownArgument          = errors.New("query: unknown argument")
	ErrUnknownDirective         = errors.New("query: unknown directive")
	ErrUnknownDirectiveArgument = errors.New("query: unknown directive argument")
	ErrLeafSelection            = errors.New("query: selection on leaf field")
	ErrPrecondition             = errors.New("query: preparation precondition not met")
	ErrUnsupportedSelection     = errors.New("query: unsupported selection item")
	ErrUnknownInput             = errors.New("query: unknown input")
)

// ValidationError describes a selection that does not match the schema.
// Err is one of the ErrUnknown* sentinels or ErrLeafSelection.
type ValidationError struct {
	Name   string // offending field, argument or directive
	Parent string // type, field or directive it was looked up on
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Parent == "" {
		return fmt.Sprintf("%v %q", e.Err, e.Name)
	}
	return fmt.Sprintf("%v %q on %s", e.Err, e.Name, e.Parent)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// UnknownInputError is returned when an operation is given an argument it
// does not declare and variable validation is enabled.
type UnknownInputError struct {
	Input     string
	Operation string
	Kind      schema.OperationType
}

func (e *UnknownInputError) Error() string {
	return fmt.Sprintf("query: input `%s` not supported for %s operation `%s`", e.Input, e.Kind, e.Operation)
}

func (e *UnknownInputError) Unwrap() error { return ErrUnknownInput }

func precondition(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrPrecondition}, args...)...)
}
