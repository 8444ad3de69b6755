package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/obslog"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/obsmetrics"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/obstrace"
	wodruntime "github.com/SergeiGolos/wod-wiki-runtime/internal/runtime"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/statement"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/wodconfig"
)

// loadScript reads and decodes the YAML script at path, validating it
// before returning.
func loadScript(path string) (statement.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return statement.Script{}, fmt.Errorf("read script: %w", err)
	}
	script, err := statement.LoadYAML(data)
	if err != nil {
		return statement.Script{}, err
	}
	if errs := script.Validate(); len(errs) > 0 {
		return statement.Script{}, fmt.Errorf("invalid script: %v", errs)
	}
	return script, nil
}

// buildRuntime assembles a ScriptRuntime wired to the same ambient stack
// every subcommand shares: layered wodconfig, the bracketed text logger,
// and (when enabled) Prometheus metrics.
func buildRuntime(flags *globalFlags, script statement.Script) (*wodruntime.ScriptRuntime, error) {
	cfg, err := wodconfig.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(obslog.NewTextHandler(os.Stderr, "RUNTIME", level)).With("component", "Wodctl")

	opts := []wodruntime.Option{
		wodruntime.WithLogger(logger),
		wodruntime.WithMaxIterations(cfg.MaxIterations),
		wodruntime.WithMatchCacheSize(cfg.MatchCacheSize),
	}
	if cfg.MetricsEnabled {
		opts = append(opts, wodruntime.WithMetrics(obsmetrics.NewMetrics(prometheus.DefaultRegisterer)))
	}
	if cfg.TracingEnabled {
		if _, err := obstrace.NewProvider(context.Background(), obstrace.ProviderConfig{}); err != nil {
			return nil, fmt.Errorf("start trace provider: %w", err)
		}
	}

	rt := wodruntime.New(script, opts...)
	return rt, nil
}
