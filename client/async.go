package client

import (
	"context"

	"github.com/go-kit/log"

	"github.com/hanpama/gqlclient/query"
	"github.com/hanpama/gqlclient/schema"
)

// AsyncServiceProxy is the non-blocking counterpart of ServiceProxy. Calls
// return a Future; plugins still run in order around the backend call.
type AsyncServiceProxy struct {
	table[*AsyncOperationProxy]
	pipeline
	backend Backend
}

// NewAsyncServiceProxy binds every field of the kind's root type to
// backend. When backend implements AsyncBackend its async methods are used.
func NewAsyncServiceProxy(kind schema.OperationType, backend Backend, s *schema.Schema, settings query.Settings, plugins []Plugin, logger log.Logger) *AsyncServiceProxy {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	sp := &AsyncServiceProxy{
		pipeline: pipeline{kind: kind, plugins: plugins, logger: logger},
		backend:  backend,
	}
	sp.table = newTable(kind, s, settings, func(o *operation) *AsyncOperationProxy {
		return &AsyncOperationProxy{operation: o, service: sp}
	})
	return sp
}

// Send runs req through the plugin pipeline without blocking the caller.
func (sp *AsyncServiceProxy) Send(ctx context.Context, req *Request) *Future[*Response] {
	return Go(func() (*Response, error) {
		ctx, req, start, err := sp.begin(ctx, req)
		if err != nil {
			return nil, err
		}
		fut := sp.execute(ctx, req)
		resp, err := fut.Await(ctx)
		if err != nil && ctx.Err() != nil {
			go discard(fut)
		}
		return sp.end(ctx, req, resp, err, start)
	})
}

// discard waits for a result the caller gave up on and closes it.
func discard(fut *Future[*Response]) {
	resp, err := fut.Await(context.Background())
	if err == nil && resp != nil {
		resp.Close()
	}
}

func (sp *AsyncServiceProxy) execute(ctx context.Context, req *Request) *Future[*Response] {
	ab, ok := sp.backend.(AsyncBackend)
	if !ok {
		return Go(func() (*Response, error) {
			return execute(ctx, sp.pipeline.kind, sp.backend, req)
		})
	}
	wrap := func(p Payload) (*Response, error) { return NewResponse(req, p), nil }
	switch sp.pipeline.kind {
	case schema.OperationMutation:
		return Then(ab.ExecuteMutationAsync(ctx, req), wrap)
	case schema.OperationSubscription:
		return Then(ab.ExecuteSubscriptionAsync(ctx, req), func(s Stream) (*Response, error) {
			return NewStreamResponse(req, s), nil
		})
	default:
		return Then(ab.ExecuteQueryAsync(ctx, req), wrap)
	}
}

// AsyncOperationProxy calls one root field asynchronously.
type AsyncOperationProxy struct {
	*operation
	service *AsyncServiceProxy
}

// Call builds a request from opts and sends it. Build errors resolve the
// returned future immediately.
func (op *AsyncOperationProxy) Call(ctx context.Context, opts ...RequestOption) *Future[*Response] {
	req, err := op.CreateRequest(opts...)
	if err != nil {
		return Resolved[*Response](nil, err)
	}
	return op.service.Send(ctx, req)
}

func (op *AsyncOperationProxy) String() string {
	return "Async" + kindLabel(op.kind) + "Proxy(`" + op.field.Name + "`)"
}
