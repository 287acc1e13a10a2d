package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/yaml.v3"

	"github.com/hanpama/gqlclient/query"
)

// config is the optional YAML file passed with --config. Flags given on
// the command line take precedence over it.
type config struct {
	Endpoint     string            `yaml:"endpoint"`
	WSEndpoint   string            `yaml:"ws_endpoint"`
	SchemaFile   string            `yaml:"schema_file"`
	Headers      map[string]string `yaml:"headers"`
	LogLevel     string            `yaml:"log_level"`
	OTelEndpoint string            `yaml:"otel_endpoint"`
	Settings     query.Settings    `yaml:"settings"`
}

func defaultConfig() config {
	return config{
		LogLevel: "info",
		Settings: query.DefaultSettings(),
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	var allow level.Option
	switch lvl {
	case "debug":
		allow = level.AllowDebug()
	case "info", "":
		allow = level.AllowInfo()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = log.With(l, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(l, allow), nil
}
