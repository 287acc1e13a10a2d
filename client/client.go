package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-kit/log"

	"github.com/hanpama/gqlclient/query"
	"github.com/hanpama/gqlclient/schema"
)

// Options configures a Client.
type Options struct {
	Schema   *schema.Schema
	Provider schema.Provider
	Settings query.Settings
	Plugins  []Plugin
	Logger   log.Logger
	Cache    schema.Cache
}

// Option mutates Options.
type Option func(*Options)

// WithSchema uses s instead of loading a schema.
func WithSchema(s *schema.Schema) Option {
	return func(o *Options) { o.Schema = s }
}

// WithSchemaProvider loads the schema from p. Without it the schema is
// introspected through the backend.
func WithSchemaProvider(p schema.Provider) Option {
	return func(o *Options) { o.Provider = p }
}

func WithSettings(s query.Settings) Option {
	return func(o *Options) { o.Settings = s }
}

// WithPlugins appends plugins; they run in the order given.
func WithPlugins(p ...Plugin) Option {
	return func(o *Options) { o.Plugins = append(o.Plugins, p...) }
}

func WithLogger(l log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithCache shares parsed schemas between clients with the same provider key.
func WithCache(c schema.Cache) Option {
	return func(o *Options) { o.Cache = c }
}

// core holds what Client and AsyncClient have in common: options and the
// lazily loaded schema.
type core struct {
	backend Backend
	opts    Options
	loader  *schema.Loader

	mu     sync.Mutex
	schema *schema.Schema
}

func newCore(backend Backend, opts []Option) *core {
	o := Options{Settings: query.DefaultSettings()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = log.NewNopLogger()
	}
	if o.Provider == nil && backend != nil {
		o.Provider = NewBackendProvider(backend)
	}
	return &core{
		backend: backend,
		opts:    o,
		loader:  schema.NewLoader(o.Cache, log.With(o.Logger, "component", "schema")),
		schema:  o.Schema,
	}
}

// loadSchema returns the memoised schema, loading it on first use. A
// failed load is not remembered.
func (c *core) loadSchema(ctx context.Context) (*schema.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.schema != nil {
		return c.schema, nil
	}
	if c.opts.Provider == nil {
		return nil, ErrNoSchema
	}
	s, err := c.loader.Load(ctx, c.opts.Provider)
	if err != nil {
		return nil, err
	}
	c.schema = s
	return s, nil
}

func (c *core) Backend() Backend         { return c.backend }
func (c *core) Settings() query.Settings { return c.opts.Settings }
func (c *core) Plugins() []Plugin        { return append([]Plugin(nil), c.opts.Plugins...) }

// Client is the entry point: it loads the schema once and hands out one
// service proxy per operation kind.
type Client struct {
	*core

	proxyMu sync.Mutex
	proxies map[schema.OperationType]*ServiceProxy
}

// New creates a Client for backend.
func New(backend Backend, opts ...Option) *Client {
	return &Client{
		core:    newCore(backend, opts),
		proxies: make(map[schema.OperationType]*ServiceProxy),
	}
}

// Schema returns the client's schema, loading it on first call.
func (c *Client) Schema(ctx context.Context) (*schema.Schema, error) {
	return c.loadSchema(ctx)
}

func (c *Client) Query(ctx context.Context) (*ServiceProxy, error) {
	return c.service(ctx, schema.OperationQuery)
}

func (c *Client) Mutation(ctx context.Context) (*ServiceProxy, error) {
	return c.service(ctx, schema.OperationMutation)
}

func (c *Client) Subscription(ctx context.Context) (*ServiceProxy, error) {
	return c.service(ctx, schema.OperationSubscription)
}

func (c *Client) service(ctx context.Context, kind schema.OperationType) (*ServiceProxy, error) {
	s, err := c.loadSchema(ctx)
	if err != nil {
		return nil, err
	}
	c.proxyMu.Lock()
	defer c.proxyMu.Unlock()
	if sp, ok := c.proxies[kind]; ok {
		return sp, nil
	}
	sp := NewServiceProxy(kind, c.backend, s, c.opts.Settings, c.opts.Plugins, c.opts.Logger)
	c.proxies[kind] = sp
	return sp, nil
}

func (c *Client) String() string {
	return fmt.Sprintf("Client(backend=`%v`)", c.backend)
}

// AsyncClient mirrors Client with futures. Backends implementing
// AsyncBackend are driven through their async methods.
type AsyncClient struct {
	*core

	proxyMu sync.Mutex
	proxies map[schema.OperationType]*AsyncServiceProxy
}

func NewAsync(backend Backend, opts ...Option) *AsyncClient {
	return &AsyncClient{
		core:    newCore(backend, opts),
		proxies: make(map[schema.OperationType]*AsyncServiceProxy),
	}
}

func (c *AsyncClient) Schema(ctx context.Context) *Future[*schema.Schema] {
	c.mu.Lock()
	s := c.schema
	c.mu.Unlock()
	if s != nil {
		return Resolved(s, nil)
	}
	return Go(func() (*schema.Schema, error) { return c.loadSchema(ctx) })
}

func (c *AsyncClient) Query(ctx context.Context) *Future[*AsyncServiceProxy] {
	return c.service(ctx, schema.OperationQuery)
}

func (c *AsyncClient) Mutation(ctx context.Context) *Future[*AsyncServiceProxy] {
	return c.service(ctx, schema.OperationMutation)
}

func (c *AsyncClient) Subscription(ctx context.Context) *Future[*AsyncServiceProxy] {
	return c.service(ctx, schema.OperationSubscription)
}

func (c *AsyncClient) service(ctx context.Context, kind schema.OperationType) *Future[*AsyncServiceProxy] {
	return Then(c.Schema(ctx), func(s *schema.Schema) (*AsyncServiceProxy, error) {
		c.proxyMu.Lock()
		defer c.proxyMu.Unlock()
		if sp, ok := c.proxies[kind]; ok {
			return sp, nil
		}
		sp := NewAsyncServiceProxy(kind, c.backend, s, c.opts.Settings, c.opts.Plugins, c.opts.Logger)
		c.proxies[kind] = sp
		return sp, nil
	})
}

func (c *AsyncClient) String() string {
	return fmt.Sprintf("AsyncClient(backend=`%v`)", c.backend)
}
