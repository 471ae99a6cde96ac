// Package urls resolves cache friendly URLs of thumbnails.
package urls

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/giobyte8/thumbvariants/internal/cache"
	"github.com/giobyte8/thumbvariants/internal/naming"
	"github.com/giobyte8/thumbvariants/internal/telemetry"
	"github.com/giobyte8/thumbvariants/internal/telemetry/metrics"
)

const (
	DefaultCacheTTL = 24 * time.Hour

	cacheBusterParam = "cbust"
)

type Config struct {
	// How long a resolved URL stays cached
	CacheTTL time.Duration

	// Appended as '?cbust=<token>' when non empty
	CacheBuster string
}

// Options tune a single lookup.
type Options struct {
	SSL       bool
	UseCache  bool
	CacheBust bool
}

// DefaultOptions matches the common case: cached, cache busted, plain
// http.
func DefaultOptions() Options {
	return Options{UseCache: true, CacheBust: true}
}

type Resolver struct {
	cache     cache.Cache
	config    Config
	telemetry *telemetry.TelemetrySvc
}

func NewResolver(
	c cache.Cache,
	config Config,
	telemetry *telemetry.TelemetrySvc,
) *Resolver {
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}

	return &Resolver{
		cache:     c,
		config:    config,
		telemetry: telemetry,
	}
}

// Resolve returns the URL of thumbnail 'thumbName' of the original
// served at originalURL. thumbnailFormat is the field's format override.
//
// Cached and freshly computed URLs are identical, the cache only saves
// work.
func (r *Resolver) Resolve(
	ctx context.Context,
	originalURL string,
	thumbName string,
	thumbnailFormat string,
	opts Options,
) string {
	var key string
	if opts.UseCache {
		key = cacheKey(originalURL, thumbName, opts.SSL)
		if cached, ok := r.cache.Get(ctx, key); ok && cached != "" {
			r.telemetry.Metrics().Increment(metrics.URLCacheHit, nil)
			return cached
		}
		r.telemetry.Metrics().Increment(metrics.URLCacheMiss, nil)
	}

	thumbURL := r.build(originalURL, thumbName, thumbnailFormat, opts)

	if key != "" {
		r.cache.Set(ctx, key, thumbURL, r.config.CacheTTL)
	}
	return thumbURL
}

func (r *Resolver) build(
	originalURL string,
	thumbName string,
	thumbnailFormat string,
	opts Options,
) string {
	base := naming.URLBase(originalURL)
	format := naming.ResolveOutputFormat(thumbnailFormat, base)
	thumbBase := naming.ThumbFilename(base, thumbName, format)

	// Strip the query string, then swap the last path segment
	u, _, _ := strings.Cut(originalURL, "?")
	thumbURL := thumbBase
	if i := strings.LastIndex(u, "/"); i >= 0 {
		thumbURL = u[:i+1] + thumbBase
	}

	if opts.CacheBust && r.config.CacheBuster != "" {
		thumbURL = fmt.Sprintf(
			"%s?%s=%s",
			thumbURL,
			cacheBusterParam,
			r.config.CacheBuster,
		)
	}

	if opts.SSL {
		if rest, ok := strings.CutPrefix(thumbURL, "http://"); ok {
			thumbURL = "https://" + rest
		}
	}

	return thumbURL
}

// SSL lookups are kept apart from plain ones.
func cacheKey(originalURL, thumbName string, ssl bool) string {
	suffix := ""
	if ssl {
		suffix = "_ssl"
	}

	return strings.TrimSpace(
		fmt.Sprintf("Thumbcache_%s_%s%s", originalURL, thumbName, suffix),
	)
}
