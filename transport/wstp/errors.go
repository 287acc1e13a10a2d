package wstp

import "errors"

var (
	ErrClosed      = errors.New("wstp: connection closed")
	ErrNoAck       = errors.New("wstp: server did not acknowledge the connection")
	ErrDuplicateID = errors.New("wstp: subscription id already in use")
	ErrNoResult    = errors.New("wstp: operation completed without a result")

	ErrSlowConsumer = errors.New("wstp: subscription buffer full")
)
