package httptp

import (
	"net/http"
	"time"
)

// Options configures the HTTP transport.
//
// Defaults:
// - HTTPClient: http.DefaultClient
// - Timeout:    30s (used only if the context has no deadline)
type Options struct {
	HTTPClient *http.Client
	Header     http.Header
	Timeout    time.Duration
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		HTTPClient: http.DefaultClient,
		Header:     make(http.Header),
		Timeout:    30 * time.Second,
	}
}

func WithHTTPClient(c *http.Client) Option { return func(o *Options) { o.HTTPClient = c } }
func WithTimeout(d time.Duration) Option    { return func(o *Options) { o.Timeout = d } }

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(o *Options) { o.Header.Add(key, value) }
}
