package wstp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hanpama/gqlclient/client"
	"github.com/hanpama/gqlclient/internal/schematest"
	"github.com/hanpama/gqlclient/schema"
)

// mockServer speaks just enough graphql-transport-ws for the tests. The
// operation name picks the behaviour.
type mockServer struct {
	t         testing.TB
	wg        sync.WaitGroup
	ack       bool
	init      chan map[string]any
	completed chan string
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	Subprotocols:    []string{Subprotocol},
}

func newWebsocketTest(t testing.TB, ack bool) (*mockServer, string, func()) {
	ws := &mockServer{
		t:         t,
		ack:       ack,
		init:      make(chan map[string]any, 1),
		completed: make(chan string, 16),
	}
	srv := httptest.NewServer(http.HandlerFunc(ws.handle))
	return ws, strings.Replace(srv.URL, "http", "ws", 1), func() {
		srv.Close()
		ws.wg.Wait()
	}
}

func (ws *mockServer) handle(w http.ResponseWriter, r *http.Request) {
	ws.wg.Add(1)
	defer ws.wg.Done()
	conn, err := upgrader.Upgrade(w, r, nil)
	if !assert.NoError(ws.t, err) {
		return
	}
	defer conn.Close()

	send := func(m message) {
		raw, _ := json.Marshal(m)
		conn.WriteMessage(websocket.TextMessage, raw)
	}
	next := func(id, data string) {
		send(message{ID: id, Type: msgNext, Payload: []byte(`{"data":` + data + `}`)})
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var m message
		if !assert.NoError(ws.t, json.Unmarshal(raw, &m)) {
			return
		}
		switch m.Type {
		case msgConnectionInit:
			var p map[string]any
			if len(m.Payload) > 0 {
				json.Unmarshal(m.Payload, &p)
			}
			ws.init <- p
			if !ws.ack {
				return
			}
			send(message{Type: msgPing})
			send(message{Type: msgConnectionAck})
		case msgSubscribe:
			var p subscribePayload
			json.Unmarshal(m.Payload, &p)
			switch p.OperationName {
			case "reviewAdded":
				for _, stars := range []string{"1", "2", "3"} {
					next(m.ID, `{"reviewAdded":{"stars":`+stars+`}}`)
				}
				send(message{ID: m.ID, Type: msgComplete})
			case "version":
				next(m.ID, `{"version":"1.0"}`)
				send(message{ID: m.ID, Type: msgComplete})
			case "broken":
				send(message{ID: m.ID, Type: msgError, Payload: []byte(`[{"message":"boom"}]`)})
			case "forever":
				next(m.ID, `{"tick":1}`)
			}
		case msgComplete:
			ws.completed <- m.ID
		}
	}
}

func dial(t *testing.T, url string, opts ...Option) *Conn {
	t.Helper()
	c, err := Dial(context.Background(), url, opts...)
	require.NoError(t, err)
	return c
}

func TestSubscription(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ws, url, cleanup := newWebsocketTest(t, true)
	defer cleanup()

	c := dial(t, url, WithInitPayload(map[string]any{"token": "secret"}))
	defer c.Close()
	require.Equal(t, map[string]any{"token": "secret"}, <-ws.init)

	s, err := c.Subscribe(context.Background(), &client.Request{Query: "subscription { reviewAdded { stars } }", OperationName: "reviewAdded"})
	require.NoError(t, err)
	defer s.Close()

	var got []any
	for {
		p, err := s.Next(context.Background())
		if errors.Is(err, client.Done) {
			break
		}
		require.NoError(t, err)
		got = append(got, p["data"].(map[string]any)["reviewAdded"].(map[string]any)["stars"])
	}
	require.Equal(t, []any{float64(1), float64(2), float64(3)}, got)
}

func TestExecuteQuery(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	_, url, cleanup := newWebsocketTest(t, true)
	defer cleanup()

	c := dial(t, url)
	defer c.Close()

	p, err := c.ExecuteQuery(context.Background(), &client.Request{Query: "query version { version }", OperationName: "version"})
	require.NoError(t, err)
	require.Equal(t, client.Payload{"data": map[string]any{"version": "1.0"}}, p)

	p, err = c.ExecuteMutation(context.Background(), &client.Request{Query: "mutation broken { broken }", OperationName: "broken"})
	require.NoError(t, err)
	require.EqualError(t, client.NewResponse(nil, p).Err(), "boom")
}

func TestCloseStreamCompletesOperation(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ws, url, cleanup := newWebsocketTest(t, true)
	defer cleanup()

	c := dial(t, url)
	defer c.Close()

	s, err := c.Subscribe(context.Background(), &client.Request{OperationName: "forever", SubscriptionID: "op-1"})
	require.NoError(t, err)
	_, err = s.Next(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	select {
	case id := <-ws.completed:
		require.Equal(t, "op-1", id)
	case <-time.After(time.Second):
		t.Fatal("server did not receive complete")
	}
	_, err = s.Next(context.Background())
	require.ErrorIs(t, err, client.Done)
}

func TestDuplicateSubscriptionID(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	_, url, cleanup := newWebsocketTest(t, true)
	defer cleanup()

	c := dial(t, url)
	defer c.Close()

	s, err := c.Subscribe(context.Background(), &client.Request{OperationName: "forever", SubscriptionID: "same"})
	require.NoError(t, err)
	defer s.Close()
	_, err = c.Subscribe(context.Background(), &client.Request{OperationName: "forever", SubscriptionID: "same"})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestSlowSubscriberIsEnded(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ws, url, cleanup := newWebsocketTest(t, true)
	defer cleanup()

	c := dial(t, url, WithBuffer(1))
	defer c.Close()

	s, err := c.Subscribe(context.Background(), &client.Request{OperationName: "reviewAdded", SubscriptionID: "slow"})
	require.NoError(t, err)
	defer s.Close()

	select {
	case id := <-ws.completed:
		require.Equal(t, "slow", id)
	case <-time.After(time.Second):
		t.Fatal("server did not receive complete")
	}
	p, err := s.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, float64(1), p["data"].(map[string]any)["reviewAdded"].(map[string]any)["stars"])
	_, err = s.Next(context.Background())
	require.ErrorIs(t, err, ErrSlowConsumer)

	p, err = c.ExecuteQuery(context.Background(), &client.Request{OperationName: "version"})
	require.NoError(t, err)
	require.Equal(t, client.Payload{"data": map[string]any{"version": "1.0"}}, p)
}

func TestConnCloseEndsStreams(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	_, url, cleanup := newWebsocketTest(t, true)
	defer cleanup()

	c := dial(t, url)
	s, err := c.Subscribe(context.Background(), &client.Request{OperationName: "forever"})
	require.NoError(t, err)
	_, err = s.Next(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Close())
	_, err = s.Next(context.Background())
	require.ErrorIs(t, err, ErrClosed)
	require.NoError(t, s.Close())

	_, err = c.Subscribe(context.Background(), &client.Request{OperationName: "forever"})
	require.ErrorIs(t, err, ErrClosed)
}

func TestDialWithoutAck(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	_, url, cleanup := newWebsocketTest(t, false)
	defer cleanup()

	_, err := Dial(context.Background(), url, WithAckTimeout(time.Second))
	require.ErrorIs(t, err, ErrNoAck)
}

func TestClientSubscription(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	_, url, cleanup := newWebsocketTest(t, true)
	defer cleanup()

	conn := dial(t, url)
	defer conn.Close()
	s, err := schema.Parse(schematest.StarWars)
	require.NoError(t, err)

	ctx := context.Background()
	sub, err := client.New(conn, client.WithSchema(s)).Subscription(ctx)
	require.NoError(t, err)
	resp, err := sub.MustOperation("reviewAdded").Call(ctx, client.Select("stars"))
	require.NoError(t, err)

	n := 0
	for msg, err := range resp.All(ctx) {
		require.NoError(t, err)
		require.Contains(t, msg.Data, "reviewAdded")
		n++
	}
	require.Equal(t, 3, n)
}
