// Package cli assembles a full runtime (engine, sink, observability) from a
// manifest plus command-line overrides, so every command builds it the same
// way.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	espalier "github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/config"
	"github.com/aretw0/espalier/internal/observability"
	"github.com/aretw0/espalier/pkg/adapters/file"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/ports"
)

// RunOptions carries the flags shared by the commands.
type RunOptions struct {
	ManifestPath string
	LogPath      string // file sink override
	RedisAddr    string // redis sink override; wins over LogPath
}

// Runtime is an assembled engine with its observability attachments.
type Runtime struct {
	Engine   *espalier.Engine
	Manifest *config.Manifest
	Registry *prometheus.Registry
	Tracer   *observability.Tracer
	Sink     ports.EventSink
}

// BuildRuntime loads the manifest, picks the event sink and wires metrics and
// tracing into a ready engine.
func BuildRuntime(opts RunOptions, logger *slog.Logger) (*Runtime, error) {
	manifest, err := config.Load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}

	sink := selectSink(opts, manifest)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	tracer := observability.NewTracer(0)

	engineOpts := []espalier.Option{
		espalier.WithLogger(logger),
		espalier.WithObserver(observability.NewFanout(metrics, tracer)),
	}
	if sink != nil {
		engineOpts = append(engineOpts, espalier.WithEventSink(sink))
	}

	engine, err := espalier.New(opts.ManifestPath, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	return &Runtime{
		Engine:   engine,
		Manifest: manifest,
		Registry: registry,
		Tracer:   tracer,
		Sink:     sink,
	}, nil
}

// selectSink resolves the persistence backend: flags override the manifest,
// redis wins over the file log, and nothing configured means no persistence.
func selectSink(opts RunOptions, manifest *config.Manifest) ports.EventSink {
	if opts.RedisAddr != "" {
		return redis.New(opts.RedisAddr, "", 0)
	}
	if opts.LogPath != "" {
		return file.New(opts.LogPath)
	}
	if cfg := manifest.Serve.Redis; cfg.Addr != "" {
		var redisOpts []redis.Option
		if cfg.Prefix != "" {
			redisOpts = append(redisOpts, redis.WithPrefix(cfg.Prefix))
		}
		return redis.New(cfg.Addr, cfg.Password, cfg.DB, redisOpts...)
	}
	if manifest.Serve.Log != "" {
		return file.New(manifest.Serve.Log)
	}
	return nil
}
