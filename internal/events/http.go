package events

import (
	"net/http"
	"time"
)

// HTTPClientStart is emitted before an HTTP transport posts a request.
type HTTPClientStart struct {
	Request *http.Request
}

// HTTPClientFinish is emitted after the response body was read.
// Status is zero when the round trip failed.
type HTTPClientFinish struct {
	Request  *http.Request
	Status   int
	Err      error
	Duration time.Duration
}
