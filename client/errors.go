package client

import (
	"errors"
	"fmt"

	"github.com/hanpama/gqlclient/schema"
)

var (
	ErrUnknownOperation        = errors.New("client: unknown operation")
	ErrSubscriptionUnsupported = errors.New("client: backend does not support subscriptions")
	ErrNotStream               = errors.New("client: response is not a stream")
	ErrNoSchema                = errors.New("client: no schema or schema provider configured")
)

// done is the error type of the Done sentinel.
type done int

func (done) Error() string { return "client: no more messages" }

// Done is returned by Response.Next and Stream.Next when a subscription
// has no more messages.
const Done done = 0

// UnknownOperationError is returned when a service proxy has no operation
// of the requested name.
type UnknownOperationError struct {
	Kind schema.OperationType
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("client: no %s operation named `%s`", e.Kind, e.Name)
}

func (e *UnknownOperationError) Unwrap() error { return ErrUnknownOperation }
