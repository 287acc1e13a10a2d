package client

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/hanpama/gqlclient/schema"
)

// Payload is a decoded GraphQL response body.
type Payload = map[string]any

// Request is a built operation ready to be sent.
type Request struct {
	Query         string
	Variables     map[string]any
	OperationName string
	OperationType schema.OperationType

	// Opaque values handed through to the backend.
	ContextValue any
	RootValue    any

	// Subscription only.
	SubscriptionID string
	Options        map[string]any
}

// Body is the JSON body transports post.
func (r *Request) Body() map[string]any {
	body := map[string]any{"query": r.Query}
	if r.Variables != nil {
		body["variables"] = r.Variables
	} else {
		body["variables"] = map[string]any{}
	}
	if r.OperationName != "" {
		body["operationName"] = r.OperationName
	}
	return body
}

// Location points into the query text.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError is one entry of a response's errors list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e *GraphQLError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".") + ": " + e.Message
}

// Response wraps a backend payload with the request that produced it.
// A subscription response carries a stream instead; read it with Next or All.
type Response struct {
	Request    *Request
	Raw        Payload
	Data       map[string]any
	Errors     []*GraphQLError
	Extensions map[string]any

	stream Stream
}

// NewResponse pulls data, errors and extensions out of raw.
func NewResponse(req *Request, raw Payload) *Response {
	resp := &Response{Request: req, Raw: raw}
	if raw == nil {
		return resp
	}
	resp.Data, _ = raw["data"].(map[string]any)
	resp.Extensions, _ = raw["extensions"].(map[string]any)
	resp.Errors = decodeErrors(raw["errors"])
	return resp
}

// NewStreamResponse wraps a subscription stream.
func NewStreamResponse(req *Request, stream Stream) *Response {
	return &Response{Request: req, stream: stream}
}

func (r *Response) IsStream() bool { return r.stream != nil }

// Err joins the response's GraphQL errors, or returns nil.
func (r *Response) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Next returns the next subscription message. It returns Done once the
// stream is exhausted and ErrNotStream for a plain response.
func (r *Response) Next(ctx context.Context) (*Response, error) {
	if r.stream == nil {
		return nil, ErrNotStream
	}
	payload, err := r.stream.Next(ctx)
	if err != nil {
		return nil, err
	}
	return NewResponse(r.Request, payload), nil
}

// All iterates over the remaining subscription messages. Iteration ends at
// Done, on the first error (which is yielded) or when the loop breaks; the
// stream is closed in every case.
func (r *Response) All(ctx context.Context) iter.Seq2[*Response, error] {
	return func(yield func(*Response, error) bool) {
		if r.stream == nil {
			yield(nil, ErrNotStream)
			return
		}
		defer r.stream.Close()
		for {
			msg, err := r.Next(ctx)
			if errors.Is(err, Done) {
				return
			}
			if !yield(msg, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the subscription stream, if any.
func (r *Response) Close() error {
	if r.stream == nil {
		return nil
	}
	return r.stream.Close()
}

func decodeErrors(v any) []*GraphQLError {
	switch errs := v.(type) {
	case []*GraphQLError:
		return errs
	case []any:
		out := make([]*GraphQLError, 0, len(errs))
		for _, e := range errs {
			out = append(out, decodeError(e))
		}
		return out
	}
	return nil
}

func decodeError(v any) *GraphQLError {
	m, ok := v.(map[string]any)
	if !ok {
		return &GraphQLError{Message: fmt.Sprint(v)}
	}
	e := &GraphQLError{}
	e.Message, _ = m["message"].(string)
	e.Path, _ = m["path"].([]any)
	e.Extensions, _ = m["extensions"].(map[string]any)
	if locs, ok := m["locations"].([]any); ok {
		for _, l := range locs {
			lm, _ := l.(map[string]any)
			e.Locations = append(e.Locations, Location{Line: toInt(lm["line"]), Column: toInt(lm["column"])})
		}
	}
	return e
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
