package client

import "context"

// Plugin intercepts every request before it is sent and every response
// after it arrives. Plugins transform the value they are given and must
// not touch client or schema state. A returned error aborts the call.
type Plugin interface {
	Pre(ctx context.Context, req *Request) (*Request, error)
	Post(ctx context.Context, resp *Response) (*Response, error)
}

// PluginFuncs builds a Plugin from optional hooks.
type PluginFuncs struct {
	PreFunc  func(ctx context.Context, req *Request) (*Request, error)
	PostFunc func(ctx context.Context, resp *Response) (*Response, error)
}

func (p PluginFuncs) Pre(ctx context.Context, req *Request) (*Request, error) {
	if p.PreFunc == nil {
		return req, nil
	}
	return p.PreFunc(ctx, req)
}

func (p PluginFuncs) Post(ctx context.Context, resp *Response) (*Response, error) {
	if p.PostFunc == nil {
		return resp, nil
	}
	return p.PostFunc(ctx, resp)
}

// ApplyPre runs every plugin's Pre hook in order, feeding each result
// into the next.
func ApplyPre(ctx context.Context, plugins []Plugin, req *Request) (*Request, error) {
	var err error
	for _, p := range plugins {
		if req, err = p.Pre(ctx, req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// ApplyPost runs every plugin's Post hook in order.
func ApplyPost(ctx context.Context, plugins []Plugin, resp *Response) (*Response, error) {
	var err error
	for _, p := range plugins {
		if resp, err = p.Post(ctx, resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
