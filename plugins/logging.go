package plugins

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/hanpama/gqlclient/client"
	"github.com/hanpama/gqlclient/internal/reqid"
)

type logging struct {
	logger log.Logger
}

// Logging logs every request and response at debug level and responses
// carrying GraphQL errors at warn level.
func Logging(logger log.Logger) client.Plugin {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &logging{logger: log.With(logger, "component", "gqlclient")}
}

func (p *logging) with(ctx context.Context, req *client.Request) log.Logger {
	l := p.logger
	if req != nil {
		l = log.With(l, "type", req.OperationType, "operation", req.OperationName)
	}
	if id, ok := reqid.FromContext(ctx); ok {
		l = log.With(l, "request_id", id)
	}
	return l
}

func (p *logging) Pre(ctx context.Context, req *client.Request) (*client.Request, error) {
	level.Debug(p.with(ctx, req)).Log("msg", "request", "query", req.Query, "variables", len(req.Variables))
	return req, nil
}

func (p *logging) Post(ctx context.Context, resp *client.Response) (*client.Response, error) {
	l := p.with(ctx, resp.Request)
	if resp.IsStream() {
		level.Debug(l).Log("msg", "subscription started")
		return resp, nil
	}
	if err := resp.Err(); err != nil {
		level.Warn(l).Log("msg", "response has errors", "count", len(resp.Errors), "err", err)
		return resp, nil
	}
	level.Debug(l).Log("msg", "response", "fields", len(resp.Data))
	return resp, nil
}
