package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/giobyte8/thumbvariants/internal/cache"
	"github.com/giobyte8/thumbvariants/internal/codec"
	"github.com/giobyte8/thumbvariants/internal/config"
	"github.com/giobyte8/thumbvariants/internal/storage"
	"github.com/giobyte8/thumbvariants/internal/telemetry"
	thumbsgen "github.com/giobyte8/thumbvariants/internal/thumbs_gen"
)

const redisKeyPrefix = "thumbnailer:"

// deps holds the collaborators shared by every command.
type deps struct {
	settings  config.Settings
	registry  *config.FieldRegistry
	storage   storage.Storage
	generator thumbsgen.ThumbsGenerator
	telemetry *telemetry.TelemetrySvc
}

func prepareDeps(ctx context.Context) (*deps, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	registry, err := config.LoadFieldRegistry(settings.FieldsConfigPath)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewLocalStorage(settings.StorageRoot, settings.StorageBaseURL)
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.NewTelemetrySvc(ctx, telemetry.Config{
		OtelEnabled:      settings.OtelEnabled,
		OtelGrpcEndpoint: settings.OtelGrpcEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry services: %w", err)
	}

	generator := thumbsgen.NewCodecThumbsGenerator(
		codec.NewImagingCodec(settings.JPEGQuality),
		store,
		tel,
	)

	return &deps{
		settings:  settings,
		registry:  registry,
		storage:   store,
		generator: generator,
		telemetry: tel,
	}, nil
}

// Builds the URL cache selected by CACHE_BACKEND. The returned func
// releases its resources.
func prepareCache(ctx context.Context, s config.Settings) (cache.Cache, func(), error) {
	switch s.CacheBackend {
	case config.CacheBackendRedis:
		rc, err := cache.NewRedisCacheWithURL(s.RedisURL, redisKeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		if err := rc.Ping(ctx); err != nil {
			slog.Warn("Redis is not reachable, URLs will be computed on every lookup", "error", err)
		}

		closeFn := func() {
			if err := rc.Close(); err != nil {
				slog.Error("Failed to close redis client", "error", err)
			}
		}
		return rc, closeFn, nil

	case config.CacheBackendMemory:
		mc, err := cache.NewMemoryCache(s.CacheSize)
		if err != nil {
			return nil, nil, err
		}
		return mc, func() {}, nil

	default:
		return cache.NewNoopCache(), func() {}, nil
	}
}

func (d *deps) shutdown(ctx context.Context) {
	if err := d.telemetry.Shutdown(ctx); err != nil {
		slog.Error("Failed to shutdown telemetry services", "error", err)
	}
}
