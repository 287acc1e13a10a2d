package httptp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/hanpama/gqlclient/client"
	"github.com/hanpama/gqlclient/internal/eventbus"
	"github.com/hanpama/gqlclient/internal/events"
	"github.com/hanpama/gqlclient/internal/reqid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Transport posts queries and mutations to a GraphQL endpoint as JSON.
// It does not support subscriptions; pair it with wstp for those.
type Transport struct {
	endpoint string
	opts     *Options
}

func New(endpoint string, opts ...Option) *Transport {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	return &Transport{endpoint: endpoint, opts: o}
}

var (
	_ client.Backend     = (*Transport)(nil)
	_ client.SchemaKeyer = (*Transport)(nil)
)

func (t *Transport) ExecuteQuery(ctx context.Context, req *client.Request) (client.Payload, error) {
	return t.post(ctx, req)
}

func (t *Transport) ExecuteMutation(ctx context.Context, req *client.Request) (client.Payload, error) {
	return t.post(ctx, req)
}

func (t *Transport) ExecuteSubscription(context.Context, *client.Request) (client.Stream, error) {
	return nil, client.ErrSubscriptionUnsupported
}

// SchemaKey is the endpoint URL.
func (t *Transport) SchemaKey() string { return t.endpoint }

func (t *Transport) String() string { return t.endpoint }

func (t *Transport) post(ctx context.Context, req *client.Request) (payload client.Payload, err error) {
	body, err := json.Marshal(req.Body())
	if err != nil {
		return nil, fmt.Errorf("httptp: encode request: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok && t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("httptp: %w", err)
	}
	for k, vs := range t.opts.Header {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/graphql-response+json, application/json")
	}
	if id, ok := reqid.FromContext(ctx); ok {
		httpReq.Header.Set("X-Request-Id", strconv.FormatInt(id, 16))
	}

	start := time.Now()
	status := 0
	eventbus.Publish(ctx, events.HTTPClientStart{Request: httpReq})
	defer func() {
		eventbus.Publish(ctx, events.HTTPClientFinish{
			Request:  httpReq,
			Status:   status,
			Err:      err,
			Duration: time.Since(start),
		})
	}()

	resp, err := t.opts.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httptp: read response: %w", err)
	}

	decodeErr := json.Unmarshal(raw, &payload)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok && (decodeErr != nil || !isGraphQLResponse(payload)) {
		return nil, &StatusError{Code: resp.StatusCode, Body: raw}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("httptp: decode response: %w", decodeErr)
	}
	return payload, nil
}

// isGraphQLResponse reports whether p has the shape of a GraphQL result,
// which servers may send along with 4xx statuses.
func isGraphQLResponse(p client.Payload) bool {
	if p == nil {
		return false
	}
	_, hasData := p["data"]
	_, hasErrors := p["errors"]
	return hasData || hasErrors
}
