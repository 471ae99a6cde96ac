// Package config loads service settings from the environment and the
// thumbnail field registry from YAML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

type AMQPSettings struct {
	URI                  string
	Exchange             string
	OriginalSavedQueue   string
	OriginalDeletedQueue string
}

type Settings struct {
	StorageRoot      string
	StorageBaseURL   string
	FieldsConfigPath string
	DatabasePath     string

	CacheBackend string
	RedisURL     string
	CacheSize    int
	URLCacheTTL  time.Duration
	CacheBuster  string

	JPEGQuality  int
	RegenWorkers int

	AMQP AMQPSettings

	OtelEnabled      bool
	OtelGrpcEndpoint string
}

// LoadSettings reads settings from environment variables. Values
// required by every command are validated here, the rest by the
// command needing them.
func LoadSettings() (Settings, error) {
	s := Settings{
		StorageRoot:      os.Getenv("STORAGE_ROOT"),
		StorageBaseURL:   os.Getenv("STORAGE_BASE_URL"),
		FieldsConfigPath: envOr("FIELDS_CONFIG", "fields.yaml"),
		DatabasePath:     os.Getenv("DATABASE_PATH"),
		CacheBackend:     strings.ToLower(envOr("CACHE_BACKEND", CacheBackendMemory)),
		RedisURL:         os.Getenv("REDIS_URL"),
		CacheBuster:      os.Getenv("MEDIA_CACHE_BUSTER"),
		OtelEnabled:      os.Getenv("OTEL_ENABLED") == "true",
		OtelGrpcEndpoint: os.Getenv("OTEL_COLLECTOR_GRPC_ENDPOINT"),
		AMQP: AMQPSettings{
			URI:                  amqpURI(),
			Exchange:             os.Getenv("AMQP_EXCHANGE"),
			OriginalSavedQueue:   os.Getenv("AMQP_QUEUE_ORIGINAL_SAVED"),
			OriginalDeletedQueue: os.Getenv("AMQP_QUEUE_ORIGINAL_DELETED"),
		},
	}

	if s.StorageRoot == "" {
		return s, fmt.Errorf("missing required environment variable STORAGE_ROOT")
	}

	var err error
	if s.CacheSize, err = envInt("CACHE_SIZE", 0); err != nil {
		return s, err
	}
	if s.JPEGQuality, err = envInt("THUMBNAIL_JPEG_QUALITY", 0); err != nil {
		return s, err
	}
	if s.RegenWorkers, err = envInt("REGEN_WORKERS", 0); err != nil {
		return s, err
	}

	ttlSeconds, err := envInt("THUMBNAIL_URL_CACHE_TIME", 3600*24)
	if err != nil {
		return s, err
	}
	s.URLCacheTTL = time.Duration(ttlSeconds) * time.Second

	switch s.CacheBackend {
	case CacheBackendRedis:
		if s.RedisURL == "" {
			return s, fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
		}
	case CacheBackendMemory, CacheBackendNone:
	default:
		return s, fmt.Errorf("unknown CACHE_BACKEND %q", s.CacheBackend)
	}

	return s, nil
}

func amqpURI() string {
	host := os.Getenv("RABBITMQ_HOST")
	if host == "" {
		return ""
	}

	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		os.Getenv("RABBITMQ_USER"),
		os.Getenv("RABBITMQ_PASS"),
		host,
		envOr("RABBITMQ_PORT", "5672"),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non negative integer, got %q", key, v)
	}
	return n, nil
}
