package urls

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giobyte8/thumbvariants/internal/cache"
	"github.com/giobyte8/thumbvariants/internal/telemetry"
	"github.com/giobyte8/thumbvariants/internal/telemetry/metrics"
)

// countingCache records calls made to the wrapped cache.
type countingCache struct {
	cache.Cache
	gets, sets int
	lastTTL    time.Duration
}

func (c *countingCache) Get(ctx context.Context, key string) (string, bool) {
	c.gets++
	return c.Cache.Get(ctx, key)
}

func (c *countingCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.sets++
	c.lastTTL = ttl
	c.Cache.Set(ctx, key, value, ttl)
}

func newResolver(t *testing.T, cfg Config) (*Resolver, *countingCache, *metrics.RecorderMetricsSvc) {
	t.Helper()
	mem, err := cache.NewMemoryCache(100)
	require.NoError(t, err)

	cc := &countingCache{Cache: mem}
	rec := metrics.NewRecorderMetricsSvc(nil)
	return NewResolver(cc, cfg, telemetry.NewTelemetrySvcWith(rec)), cc, rec
}

func TestResolveBuildsThumbnailURL(t *testing.T) {
	r, _, _ := newResolver(t, Config{})
	ctx := context.Background()

	tests := []struct {
		name     string
		original string
		format   string
		opts     Options
		want     string
	}{
		{
			name:     "inferred format",
			original: "http://cdn.example.com/media/photo.png",
			want:     "http://cdn.example.com/media/photo_small.png",
		},
		{
			name:     "format override",
			original: "http://cdn.example.com/media/photo.PNG",
			format:   "JPEG",
			want:     "http://cdn.example.com/media/photo_small.jpeg",
		},
		{
			name:     "query string dropped",
			original: "http://cdn.example.com/media/photo.png?X-Amz-Signature=abc",
			want:     "http://cdn.example.com/media/photo_small.png",
		},
		{
			name:     "ssl",
			original: "http://cdn.example.com/media/photo.png",
			opts:     Options{SSL: true},
			want:     "https://cdn.example.com/media/photo_small.png",
		},
		{
			name:     "already https",
			original: "https://cdn.example.com/photo.png",
			opts:     Options{SSL: true},
			want:     "https://cdn.example.com/photo_small.png",
		},
		{
			name:     "relative url",
			original: "/media/photo.png",
			want:     "/media/photo_small.png",
		},
		{
			name:     "bare filename",
			original: "photo.png",
			want:     "photo_small.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(ctx, tt.original, "small", tt.format, tt.opts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveCacheBuster(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newResolver(t, Config{CacheBuster: "v42"})

	assert.Equal(
		t,
		"https://cdn.example.com/photo_small.png?cbust=v42",
		r.Resolve(ctx, "http://cdn.example.com/photo.png", "small", "", Options{CacheBust: true, SSL: true}),
	)
	assert.Equal(
		t,
		"http://cdn.example.com/photo_small.png",
		r.Resolve(ctx, "http://cdn.example.com/photo.png", "small", "", Options{}),
	)

	noToken, _, _ := newResolver(t, Config{})
	assert.Equal(
		t,
		"http://cdn.example.com/photo_small.png",
		noToken.Resolve(ctx, "http://cdn.example.com/photo.png", "small", "", Options{CacheBust: true}),
	)
}

func TestResolveUsesCache(t *testing.T) {
	ctx := context.Background()
	r, cc, rec := newResolver(t, Config{CacheBuster: "1", CacheTTL: time.Hour})
	opts := DefaultOptions()

	first := r.Resolve(ctx, "http://cdn/m/photo.png", "small", "", opts)
	second := r.Resolve(ctx, "http://cdn/m/photo.png", "small", "", opts)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, cc.gets)
	assert.Equal(t, 1, cc.sets)
	assert.Equal(t, time.Hour, cc.lastTTL)
	assert.Equal(t, 1, rec.Count(metrics.URLCacheHit))
	assert.Equal(t, 1, rec.Count(metrics.URLCacheMiss))
}

func TestResolveReturnsCachedValueVerbatim(t *testing.T) {
	ctx := context.Background()
	r, cc, _ := newResolver(t, Config{})

	cc.Cache.Set(ctx, cacheKey("http://cdn/photo.png", "small", false), "http://elsewhere/x.png", time.Hour)
	assert.Equal(t, "http://elsewhere/x.png", r.Resolve(ctx, "http://cdn/photo.png", "small", "", DefaultOptions()))
}

func TestResolveKeepsSSLEntriesApart(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newResolver(t, Config{})

	plain := r.Resolve(ctx, "http://cdn/photo.png", "small", "", Options{UseCache: true})
	secure := r.Resolve(ctx, "http://cdn/photo.png", "small", "", Options{UseCache: true, SSL: true})

	assert.Equal(t, "http://cdn/photo_small.png", plain)
	assert.Equal(t, "https://cdn/photo_small.png", secure)
}

func TestResolveWithoutCache(t *testing.T) {
	ctx := context.Background()
	r, cc, _ := newResolver(t, Config{})

	r.Resolve(ctx, "http://cdn/photo.png", "small", "", Options{})
	assert.Zero(t, cc.gets)
	assert.Zero(t, cc.sets)
}

func TestColdAndWarmCacheAgree(t *testing.T) {
	ctx := context.Background()
	cfg := Config{CacheBuster: "abc"}
	warm, _, _ := newResolver(t, cfg)
	cold := NewResolver(cache.NewNoopCache(), cfg, telemetry.Noop())

	for _, opts := range []Options{DefaultOptions(), {UseCache: true, SSL: true, CacheBust: true}} {
		warm.Resolve(ctx, "http://cdn/a/b.jpg", "thumb", "png", opts)
		assert.Equal(
			t,
			cold.Resolve(ctx, "http://cdn/a/b.jpg", "thumb", "png", opts),
			warm.Resolve(ctx, "http://cdn/a/b.jpg", "thumb", "png", opts),
		)
	}
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "Thumbcache_http://cdn/p.png_small", cacheKey("http://cdn/p.png", "small", false))
	assert.Equal(t, "Thumbcache_http://cdn/p.png_small_ssl", cacheKey("http://cdn/p.png", "small", true))
}
