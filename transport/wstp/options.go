package wstp

import (
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/gorilla/websocket"
)

// Options configures a websocket connection.
//
// Defaults:
// - Dialer:     websocket.DefaultDialer
// - AckTimeout: 10s
// - Buffer:     16 messages per subscription
type Options struct {
	Dialer      *websocket.Dialer
	Header      http.Header
	InitPayload map[string]any
	AckTimeout  time.Duration
	Buffer      int
	Logger      log.Logger
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Dialer:     websocket.DefaultDialer,
		Header:     make(http.Header),
		AckTimeout: 10 * time.Second,
		Buffer:     16,
		Logger:     log.NewNopLogger(),
	}
}

func WithDialer(d *websocket.Dialer) Option   { return func(o *Options) { o.Dialer = d } }
func WithAckTimeout(d time.Duration) Option   { return func(o *Options) { o.AckTimeout = d } }
func WithLogger(l log.Logger) Option          { return func(o *Options) { o.Logger = l } }
func WithInitPayload(p map[string]any) Option { return func(o *Options) { o.InitPayload = p } }
func WithHeader(key, value string) Option     { return func(o *Options) { o.Header.Add(key, value) } }
func WithBuffer(n int) Option                 { return func(o *Options) { o.Buffer = n } }
