package wstp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hanpama/gqlclient/client"
	"github.com/hanpama/gqlclient/internal/eventbus"
	"github.com/hanpama/gqlclient/internal/events"
)

// Conn is one websocket connection multiplexing any number of operations.
// A single reader goroutine routes server messages by operation id.
type Conn struct {
	url    string
	opts   *Options
	ws     *websocket.Conn
	logger log.Logger

	writeMu sync.Mutex

	mu     sync.Mutex
	subs   map[string]*subscription
	closed bool
	err    error

	done chan struct{}
}

var (
	_ client.Backend     = (*Conn)(nil)
	_ client.SchemaKeyer = (*Conn)(nil)
)

// Dial connects to url and completes the connection_init handshake.
func Dial(ctx context.Context, url string, opts ...Option) (*Conn, error) {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	dialer := *o.Dialer
	dialer.Subprotocols = []string{Subprotocol}

	ws, _, err := dialer.DialContext(ctx, url, o.Header)
	if err != nil {
		return nil, fmt.Errorf("wstp: dial %s: %w", url, err)
	}
	c := &Conn{
		url:    url,
		opts:   o,
		ws:     ws,
		logger: log.With(o.Logger, "component", "wstp", "url", url),
		subs:   make(map[string]*subscription),
		done:   make(chan struct{}),
	}
	if err := c.handshake(ctx); err != nil {
		ws.Close()
		return nil, err
	}
	go c.readLoop()
	return c, nil
}

func (c *Conn) handshake(ctx context.Context) error {
	init := message{Type: msgConnectionInit}
	if c.opts.InitPayload != nil {
		raw, err := json.Marshal(c.opts.InitPayload)
		if err != nil {
			return fmt.Errorf("wstp: encode init payload: %w", err)
		}
		init.Payload = raw
	}
	if err := c.write(init); err != nil {
		return err
	}

	deadline := time.Now().Add(c.opts.AckTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.ws.SetReadDeadline(deadline)
	defer c.ws.SetReadDeadline(time.Time{})
	for {
		m, err := c.read()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNoAck, err)
		}
		switch m.Type {
		case msgConnectionAck:
			level.Debug(c.logger).Log("msg", "connection acknowledged")
			return nil
		case msgPing:
			if err := c.write(message{Type: msgPong}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: got %q", ErrNoAck, m.Type)
		}
	}
}

func (c *Conn) read() (message, error) {
	var m message
	_, raw, err := c.ws.ReadMessage()
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("wstp: decode message: %w", err)
	}
	return m, nil
}

func (c *Conn) write(m message) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("wstp: encode message: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, raw)
}

func (c *Conn) readLoop() {
	defer close(c.done)
	for {
		m, err := c.read()
		if err != nil {
			c.shutdown(err)
			return
		}
		switch m.Type {
		case msgPing:
			if err := c.write(message{Type: msgPong}); err != nil {
				c.shutdown(err)
				return
			}
		case msgPong:
		case msgNext:
			var p client.Payload
			if err := json.Unmarshal(m.Payload, &p); err != nil {
				c.finish(m.ID, fmt.Errorf("wstp: decode payload: %w", err))
				continue
			}
			c.deliver(m.ID, p)
		case msgError:
			var errs []any
			if err := json.Unmarshal(m.Payload, &errs); err != nil {
				c.finish(m.ID, fmt.Errorf("wstp: decode errors: %w", err))
				continue
			}
			c.deliver(m.ID, client.Payload{"errors": errs})
			c.finish(m.ID, nil)
		case msgComplete:
			c.finish(m.ID, nil)
		default:
			level.Warn(c.logger).Log("msg", "unexpected message", "type", m.Type, "id", m.ID)
		}
	}
}

func (c *Conn) lookup(id string) *subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs[id]
}

// deliver hands p to the subscription id. A subscription whose buffer is
// full is ended with ErrSlowConsumer and completed on the server.
func (c *Conn) deliver(id string, p client.Payload) {
	s := c.lookup(id)
	if s == nil {
		return
	}
	select {
	case s.msgs <- p:
		s.count.Add(1)
	case <-s.stopped:
	default:
		level.Warn(c.logger).Log("msg", "subscription buffer full, ending it", "id", id, "buffer", cap(s.msgs))
		c.finish(id, ErrSlowConsumer)
		if err := c.write(message{ID: id, Type: msgComplete}); err != nil {
			level.Debug(c.logger).Log("msg", "failed to complete operation", "id", id, "err", err)
		}
	}
}

// finish ends the operation id on behalf of the server. Only the reader
// goroutine closes message channels.
func (c *Conn) finish(id string, err error) {
	c.mu.Lock()
	s := c.subs[id]
	delete(c.subs, id)
	c.mu.Unlock()
	if s != nil {
		s.end(err)
	}
}

// shutdown fails every open operation once the connection is gone.
func (c *Conn) shutdown(err error) {
	c.mu.Lock()
	if c.closed {
		err = ErrClosed
	}
	c.closed = true
	if c.err == nil {
		c.err = err
	}
	subs := c.subs
	c.subs = make(map[string]*subscription)
	c.mu.Unlock()

	if err != ErrClosed {
		level.Debug(c.logger).Log("msg", "connection lost", "err", err)
	}
	for _, s := range subs {
		s.end(err)
	}
}

// Subscribe starts an operation and returns its message stream. At most
// Options.Buffer messages are held for a stream; when the consumer falls
// further behind the stream ends with ErrSlowConsumer.
func (c *Conn) Subscribe(ctx context.Context, req *client.Request) (client.Stream, error) {
	id := req.SubscriptionID
	if id == "" {
		id = uuid.NewString()
	}
	raw, err := json.Marshal(subscribePayload{
		Query:         req.Query,
		Variables:     req.Variables,
		OperationName: req.OperationName,
		Extensions:    req.Options,
	})
	if err != nil {
		return nil, fmt.Errorf("wstp: encode subscribe: %w", err)
	}

	s := &subscription{
		id:      id,
		conn:    c,
		start:   time.Now(),
		ctx:     ctx,
		msgs:    make(chan client.Payload, max(c.opts.Buffer, 1)),
		stopped: make(chan struct{}),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if _, dup := c.subs[id]; dup {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	c.subs[id] = s
	c.mu.Unlock()

	eventbus.Publish(ctx, events.SubscribeStart{ID: id, URL: c.url, OperationName: req.OperationName})
	if err := c.write(message{ID: id, Type: msgSubscribe, Payload: raw}); err != nil {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
		s.report(err)
		return nil, err
	}
	return s, nil
}

func (c *Conn) ExecuteSubscription(ctx context.Context, req *client.Request) (client.Stream, error) {
	return c.Subscribe(ctx, req)
}

func (c *Conn) ExecuteQuery(ctx context.Context, req *client.Request) (client.Payload, error) {
	return c.single(ctx, req)
}

func (c *Conn) ExecuteMutation(ctx context.Context, req *client.Request) (client.Payload, error) {
	return c.single(ctx, req)
}

// single runs a one-result operation and returns its first message.
func (c *Conn) single(ctx context.Context, req *client.Request) (client.Payload, error) {
	s, err := c.Subscribe(ctx, req)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	p, err := s.Next(ctx)
	if errors.Is(err, client.Done) {
		return nil, ErrNoResult
	}
	return p, err
}

// Err returns the error that ended the connection, if any.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SchemaKey is the websocket URL.
func (c *Conn) SchemaKey() string { return c.url }

func (c *Conn) String() string { return c.url }

// Close ends every open operation and closes the connection. It waits for
// the reader goroutine to exit.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.done
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := c.ws.Close()
	<-c.done
	return err
}
