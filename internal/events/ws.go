package events

import "time"

// SubscribeStart is emitted when a websocket transport sends a subscribe message.
type SubscribeStart struct {
	ID            string
	URL           string
	OperationName string
}

// SubscribeFinish is emitted when the server completes the operation or
// the caller closes it.
type SubscribeFinish struct {
	ID       string
	URL      string
	Messages int
	Err      error
	Duration time.Duration
}
