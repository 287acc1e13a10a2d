package wstp

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kit/log/level"

	"github.com/hanpama/gqlclient/client"
	"github.com/hanpama/gqlclient/internal/eventbus"
	"github.com/hanpama/gqlclient/internal/events"
)

// subscription is the client side of one operation. It implements
// client.Stream.
type subscription struct {
	id    string
	conn  *Conn
	start time.Time
	ctx   context.Context

	msgs    chan client.Payload
	stopped chan struct{}
	count   atomic.Int64

	endOnce  sync.Once
	stopOnce sync.Once
	reported sync.Once
	finished atomic.Bool
	err      error
}

// end is called by the reader when the server finished the operation or
// the connection went away.
func (s *subscription) end(err error) {
	s.endOnce.Do(func() {
		s.err = err
		s.finished.Store(true)
		close(s.msgs)
		s.report(err)
	})
}

func (s *subscription) report(err error) {
	s.reported.Do(func() {
		eventbus.Publish(s.ctx, events.SubscribeFinish{
			ID:       s.id,
			URL:      s.conn.url,
			Messages: int(s.count.Load()),
			Err:      err,
			Duration: time.Since(s.start),
		})
	})
}

func (s *subscription) Next(ctx context.Context) (client.Payload, error) {
	select {
	case <-s.stopped:
		return nil, client.Done
	default:
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.stopped:
		return nil, client.Done
	case p, ok := <-s.msgs:
		if ok {
			return p, nil
		}
		if s.err != nil {
			return nil, s.err
		}
		return nil, client.Done
	}
}

// Close stops the operation. The server is told to complete it unless it
// already did.
func (s *subscription) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopped)
		if s.finished.Load() {
			return
		}
		c := s.conn
		c.mu.Lock()
		_, open := c.subs[s.id]
		delete(c.subs, s.id)
		closed := c.closed
		c.mu.Unlock()
		if open && !closed {
			if err = c.write(message{ID: s.id, Type: msgComplete}); err != nil {
				level.Debug(c.logger).Log("msg", "failed to complete operation", "id", s.id, "err", err)
			}
		}
		s.report(nil)
	})
	return err
}
