package httptp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlclient/client"
	"github.com/hanpama/gqlclient/internal/eventbus"
	"github.com/hanpama/gqlclient/internal/events"
	"github.com/hanpama/gqlclient/internal/schematest"
	"github.com/hanpama/gqlclient/query"
	"github.com/hanpama/gqlclient/schema"
)

func TestExecuteQuery(t *testing.T) {
	var got map[string]any
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":{"version":"1.2.3"}}`)
	}))
	defer srv.Close()

	tp := New(srv.URL, WithHeader("Authorization", "Bearer token"))
	payload, err := tp.ExecuteQuery(context.Background(), &client.Request{
		Query:         "query version { version }",
		OperationName: "version",
	})
	require.NoError(t, err)
	require.Equal(t, client.Payload{"data": map[string]any{"version": "1.2.3"}}, payload)
	require.Equal(t, map[string]any{
		"query":         "query version { version }",
		"variables":     map[string]any{},
		"operationName": "version",
	}, got)
	require.Equal(t, "Bearer token", header.Get("Authorization"))
	require.Equal(t, "application/json", header.Get("Content-Type"))
}

func TestGraphQLErrorWithBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"errors":[{"message":"Cannot query field \"wings\""}]}`)
	}))
	defer srv.Close()

	payload, err := New(srv.URL).ExecuteMutation(context.Background(), &client.Request{Query: "{ wings }"})
	require.NoError(t, err)
	resp := client.NewResponse(nil, payload)
	require.EqualError(t, resp.Err(), `Cannot query field "wings"`)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ExecuteQuery(context.Background(), &client.Request{Query: "{ version }"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusBadGateway, se.Code)
	require.Contains(t, string(se.Body), "upstream down")
	require.EqualError(t, err, "httptp: unexpected status 502 Bad Gateway")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, WithTimeout(20*time.Millisecond)).ExecuteQuery(context.Background(), &client.Request{Query: "{ version }"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubscriptionsUnsupported(t *testing.T) {
	_, err := New("http://localhost").ExecuteSubscription(context.Background(), &client.Request{})
	require.ErrorIs(t, err, client.ErrSubscriptionUnsupported)
	require.Equal(t, "http://localhost", New("http://localhost").SchemaKey())
}

func TestPublishesEvents(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	defer eventbus.Use(nil)

	var finish events.HTTPClientFinish
	started := 0
	eventbus.SubscribeTo(bus, func(context.Context, events.HTTPClientStart) { started++ })
	eventbus.SubscribeTo(bus, func(_ context.Context, e events.HTTPClientFinish) { finish = e })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{}}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ExecuteQuery(context.Background(), &client.Request{Query: "{ version }"})
	require.NoError(t, err)
	require.Equal(t, 1, started)
	require.Equal(t, http.StatusOK, finish.Status)
	require.NoError(t, finish.Err)
}

// The client introspects through the transport and then calls an operation.
func TestClientOverHTTP(t *testing.T) {
	var operations []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query         string `json:"query"`
			OperationName string `json:"operationName"`
		}
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		operations = append(operations, body.OperationName)
		if body.OperationName == schema.IntrospectionOperationName {
			w.Write(schematest.StarWars)
			return
		}
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		io.WriteString(w, `{"data":{"hero":{"name":"R2-D2"}}}`)
	}))
	defer srv.Close()

	c := client.New(New(srv.URL), client.WithSettings(query.DefaultSettings()))
	ctx := context.Background()
	q, err := c.Query(ctx)
	require.NoError(t, err)
	resp, err := q.MustOperation("hero").Call(ctx, client.Select("name"), client.Input("episode", "EMPIRE"))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"name": "R2-D2"}, resp.Data["hero"])
	require.Equal(t, []string{schema.IntrospectionOperationName, "hero"}, operations)
}
