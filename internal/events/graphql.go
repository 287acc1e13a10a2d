package events

import "time"

// OperationStart is emitted before a built operation is handed to a backend.
type OperationStart struct {
	Query         string
	OperationName string
	OperationType string
}

// OperationFinish is emitted once the backend and post plugins returned.
// Errors holds the GraphQL errors of the response, Err a transport or
// plugin failure.
type OperationFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Err           error
	Duration      time.Duration
}
