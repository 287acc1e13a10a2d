package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/hanpama/gqlclient/client"
	"github.com/hanpama/gqlclient/internal/eventbus"
	"github.com/hanpama/gqlclient/internal/otel"
	"github.com/hanpama/gqlclient/plugins"
	"github.com/hanpama/gqlclient/schema"
	"github.com/hanpama/gqlclient/transport/httptp"
)

type globals struct {
	configFile   string
	endpoint     string
	wsEndpoint   string
	schemaFile   string
	headers      []string
	otelEndpoint string
	logLevel     string
	metrics      bool

	cfg      config
	logger   log.Logger
	registry *prometheus.Registry
	shutdown func(context.Context) error
}

func rootCommand() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:          "gqlclient [global options] <subcommand>",
		Short:        "Typed GraphQL client",
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return g.teardown(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&g.configFile, "config", "", "YAML config file")
	f.StringVar(&g.endpoint, "endpoint", "", "HTTP GraphQL endpoint")
	f.StringVar(&g.wsEndpoint, "ws-endpoint", "", "WebSocket GraphQL endpoint for subscriptions")
	f.StringVar(&g.schemaFile, "schema-file", "", "Introspection result to use instead of introspecting the endpoint")
	f.StringArrayVar(&g.headers, "header", nil, "Header sent with every request, as 'Key: Value'. Repeatable")
	f.StringVar(&g.otelEndpoint, "otel.endpoint", "", "OTLP collector endpoint")
	f.StringVar(&g.logLevel, "log.level", "info", "Log level: debug, info, warn or error")
	f.BoolVar(&g.metrics, "metrics", false, "Print client metrics after the command finished")

	cmd.AddCommand(
		introspectCommand(g),
		schemaCommand(g),
		buildCommand(g),
		runCommand(g),
		subscribeCommand(g),
	)
	return cmd
}

func (g *globals) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(g.configFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("endpoint", &cfg.Endpoint, g.endpoint)
	override("ws-endpoint", &cfg.WSEndpoint, g.wsEndpoint)
	override("schema-file", &cfg.SchemaFile, g.schemaFile)
	override("otel.endpoint", &cfg.OTelEndpoint, g.otelEndpoint)
	if flags.Changed("log.level") {
		cfg.LogLevel = g.logLevel
	}
	for _, h := range g.headers {
		k, v, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q, want 'Key: Value'", h)
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	g.cfg = cfg

	if g.logger, err = newLogger(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
		return err
	}
	if g.metrics {
		g.registry = prometheus.NewRegistry()
	}

	eventbus.Use(eventbus.New())
	g.shutdown, err = otel.Setup(cfg.OTelEndpoint, "gqlclient")
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	return nil
}

func (g *globals) teardown(cmd *cobra.Command) error {
	if g.shutdown != nil {
		if err := g.shutdown(context.Background()); err != nil {
			level.Warn(g.logger).Log("msg", "otel shutdown failed", "err", err)
		}
	}
	if g.registry == nil {
		return nil
	}
	mfs, err := g.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
			return err
		}
	}
	return nil
}

func (g *globals) httpTransport() (*httptp.Transport, error) {
	if g.cfg.Endpoint == "" {
		return nil, fmt.Errorf("--endpoint is required")
	}
	opts := []httptp.Option{}
	for k, v := range g.cfg.Headers {
		opts = append(opts, httptp.WithHeader(k, v))
	}
	return httptp.New(g.cfg.Endpoint, opts...), nil
}

// schemaProvider picks the schema source: a file if given, otherwise
// introspection over HTTP. It returns nil when neither is configured.
func (g *globals) schemaProvider() schema.Provider {
	if g.cfg.SchemaFile != "" {
		return schema.NewFileProvider(g.cfg.SchemaFile)
	}
	if g.cfg.Endpoint != "" {
		tp, _ := g.httpTransport()
		return client.NewBackendProvider(tp)
	}
	return nil
}

func (g *globals) loadSchema(ctx context.Context) (*schema.Schema, error) {
	p := g.schemaProvider()
	if p == nil {
		return nil, fmt.Errorf("one of --schema-file or --endpoint is required")
	}
	return schema.NewLoader(nil, g.logger).Load(ctx, p)
}

func (g *globals) plugins() []client.Plugin {
	ps := []client.Plugin{plugins.SyntaxCheck(), plugins.Logging(g.logger)}
	if g.registry != nil {
		ps = append(ps, plugins.NewMetrics(g.registry))
	}
	return ps
}

func (g *globals) newClient(backend client.Backend, s *schema.Schema) *client.Client {
	return client.New(backend,
		client.WithSchema(s),
		client.WithSettings(g.cfg.Settings),
		client.WithPlugins(g.plugins()...),
		client.WithLogger(g.logger),
	)
}
