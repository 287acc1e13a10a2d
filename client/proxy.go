package client

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/hanpama/gqlclient/internal/eventbus"
	"github.com/hanpama/gqlclient/internal/events"
	"github.com/hanpama/gqlclient/internal/reqid"
	"github.com/hanpama/gqlclient/query"
	"github.com/hanpama/gqlclient/schema"
)

// pipeline wraps backend execution with plugins, logging and events.
type pipeline struct {
	kind    schema.OperationType
	plugins []Plugin
	logger  log.Logger
}

func (p *pipeline) begin(ctx context.Context, req *Request) (context.Context, *Request, time.Time, error) {
	ctx, id := reqid.NewContext(ctx)
	start := time.Now()
	if eventbus.Enabled() {
		eventbus.Publish(ctx, events.OperationStart{
			Query:         req.Query,
			OperationName: req.OperationName,
			OperationType: p.kind.String(),
		})
	}
	level.Debug(p.logger).Log("msg", "sending operation", "type", p.kind, "operation", req.OperationName, "request_id", id)
	out, err := ApplyPre(ctx, p.plugins, req)
	if err != nil {
		p.finish(ctx, req, nil, err, start)
		return ctx, nil, start, err
	}
	return ctx, out, start, nil
}

func (p *pipeline) end(ctx context.Context, req *Request, resp *Response, err error, start time.Time) (*Response, error) {
	if err == nil {
		resp, err = ApplyPost(ctx, p.plugins, resp)
	}
	p.finish(ctx, req, resp, err, start)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (p *pipeline) finish(ctx context.Context, req *Request, resp *Response, err error, start time.Time) {
	elapsed := time.Since(start)
	if err != nil {
		level.Warn(p.logger).Log("msg", "operation failed", "type", p.kind, "operation", req.OperationName, "err", err)
	}
	if !eventbus.Enabled() {
		return
	}
	e := events.OperationFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: p.kind.String(),
		Err:           err,
		Duration:      elapsed,
	}
	if resp != nil {
		for _, gqlErr := range resp.Errors {
			e.Errors = append(e.Errors, gqlErr)
		}
	}
	eventbus.Publish(ctx, e)
}

// ServiceProxy exposes the fields of one root type as callable operations.
// A schema without that root type yields an empty proxy.
type ServiceProxy struct {
	table[*OperationProxy]
	pipeline
	backend Backend
}

// NewServiceProxy binds every field of the kind's root type to backend.
func NewServiceProxy(kind schema.OperationType, backend Backend, s *schema.Schema, settings query.Settings, plugins []Plugin, logger log.Logger) *ServiceProxy {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	sp := &ServiceProxy{
		pipeline: pipeline{kind: kind, plugins: plugins, logger: logger},
		backend:  backend,
	}
	sp.table = newTable(kind, s, settings, func(o *operation) *OperationProxy {
		return &OperationProxy{operation: o, service: sp}
	})
	return sp
}

// Send runs req through the pre plugins, the backend and the post plugins.
func (sp *ServiceProxy) Send(ctx context.Context, req *Request) (*Response, error) {
	ctx, req, start, err := sp.begin(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := execute(ctx, sp.pipeline.kind, sp.backend, req)
	return sp.end(ctx, req, resp, err, start)
}

func execute(ctx context.Context, kind schema.OperationType, backend Backend, req *Request) (*Response, error) {
	switch kind {
	case schema.OperationMutation:
		payload, err := backend.ExecuteMutation(ctx, req)
		if err != nil {
			return nil, err
		}
		return NewResponse(req, payload), nil
	case schema.OperationSubscription:
		stream, err := backend.ExecuteSubscription(ctx, req)
		if err != nil {
			return nil, err
		}
		return NewStreamResponse(req, stream), nil
	default:
		payload, err := backend.ExecuteQuery(ctx, req)
		if err != nil {
			return nil, err
		}
		return NewResponse(req, payload), nil
	}
}

// OperationProxy calls one root field.
type OperationProxy struct {
	*operation
	service *ServiceProxy
}

// Call builds a request from opts and sends it.
func (op *OperationProxy) Call(ctx context.Context, opts ...RequestOption) (*Response, error) {
	req, err := op.CreateRequest(opts...)
	if err != nil {
		return nil, err
	}
	return op.service.Send(ctx, req)
}

func (op *OperationProxy) String() string {
	return kindLabel(op.kind) + "Proxy(`" + op.field.Name + "`)"
}
