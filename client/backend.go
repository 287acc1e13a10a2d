package client

import (
	"context"
	"sync"
)

// Backend executes built requests. Transport failures are returned as is;
// the client neither wraps nor retries them.
type Backend interface {
	ExecuteQuery(ctx context.Context, req *Request) (Payload, error)
	ExecuteMutation(ctx context.Context, req *Request) (Payload, error)
	// ExecuteSubscription returns a stream of message payloads. Backends
	// without subscription support return ErrSubscriptionUnsupported.
	ExecuteSubscription(ctx context.Context, req *Request) (Stream, error)
}

// AsyncBackend is implemented by backends with their own non-blocking
// execution. Async proxies fall back to running a Backend on a goroutine.
type AsyncBackend interface {
	ExecuteQueryAsync(ctx context.Context, req *Request) *Future[Payload]
	ExecuteMutationAsync(ctx context.Context, req *Request) *Future[Payload]
	ExecuteSubscriptionAsync(ctx context.Context, req *Request) *Future[Stream]
}

// SchemaKeyer is implemented by backends that can name the schema they
// talk to, typically by endpoint URL.
type SchemaKeyer interface {
	SchemaKey() string
}

// Stream yields subscription messages one at a time. Next returns Done
// when the server completed the operation.
type Stream interface {
	Next(ctx context.Context) (Payload, error)
	Close() error
}

// SliceStream replays fixed payloads. Useful for tests and for backends
// that buffer a whole subscription.
type SliceStream struct {
	mu       sync.Mutex
	payloads []Payload
	closed   bool
}

func NewSliceStream(payloads ...Payload) *SliceStream {
	return &SliceStream{payloads: payloads}
}

func (s *SliceStream) Next(ctx context.Context) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.payloads) == 0 {
		return nil, Done
	}
	p := s.payloads[0]
	s.payloads = s.payloads[1:]
	return p, nil
}

func (s *SliceStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// ChanStream adapts a channel of payloads. The producer closes the channel
// to finish the stream; errs, if non-nil, carries a terminal error.
type ChanStream struct {
	C      <-chan Payload
	Errs   <-chan error
	OnStop func() error
	once   sync.Once
}

func (s *ChanStream) Next(ctx context.Context) (Payload, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case p, ok := <-s.C:
		if ok {
			return p, nil
		}
	}
	if s.Errs != nil {
		select {
		case err, ok := <-s.Errs:
			if ok && err != nil {
				return nil, err
			}
		default:
		}
	}
	return nil, Done
}

func (s *ChanStream) Close() error {
	var err error
	s.once.Do(func() {
		if s.OnStop != nil {
			err = s.OnStop()
		}
	})
	return err
}
