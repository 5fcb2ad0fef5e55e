// Package config loads application settings from an optional TOML file
// with environment overrides. Every tunable of the search pipeline is
// represented here so deployments can adjust quotas and cache behavior
// without rebuilding.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/git-ranked/gitranked/pkg/errors"
)

// Cache backend names accepted in [CacheConfig].
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Environment variables recognized by [Load].
const (
	EnvToken    = "GITHUB_TOKEN"
	EnvListen   = "GITRANKED_LISTEN"
	EnvRedisURL = "GITRANKED_REDIS_URL"
	EnvConfig   = "GITRANKED_CONFIG"
)

// Duration wraps time.Duration so TOML files can use "5m" style values.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the full application configuration.
type Config struct {
	// GitHubToken is the shared server token used for anonymous searches.
	GitHubToken string `toml:"github_token"`

	// Listen is the HTTP server bind address.
	Listen string `toml:"listen"`

	RateLimit RateLimitConfig `toml:"ratelimit"`
	Cache     CacheConfig     `toml:"cache"`
	Search    SearchConfig    `toml:"search"`
	Location  LocationConfig  `toml:"location"`
}

// RateLimitConfig tunes the anonymous request gate.
type RateLimitConfig struct {
	Ceiling  int      `toml:"ceiling"`
	Window   Duration `toml:"window"`
	Capacity int      `toml:"capacity"`
}

// CacheConfig selects and tunes the result cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	RedisURL string   `toml:"redis_url"`
	Capacity int      `toml:"capacity"`
	TTL      Duration `toml:"ttl"`

	// Prefix namespaces keys when several instances share one redis
	// database.
	Prefix string `toml:"prefix"`
}

// SearchConfig tunes the aggregation pipeline.
type SearchConfig struct {
	PageSize           int  `toml:"page_size"`
	FetchSize          int  `toml:"fetch_size"`
	MaxAccumulate      int  `toml:"max_accumulate"`
	KeepPartial        bool `toml:"keep_partial"`
	HydrateConcurrency int  `toml:"hydrate_concurrency"`
}

// LocationConfig tunes the geocoding client.
type LocationConfig struct {
	TTL Duration `toml:"ttl"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Listen: ":8080",
		RateLimit: RateLimitConfig{
			Ceiling:  100,
			Window:   Duration{time.Hour},
			Capacity: 10000,
		},
		Cache: CacheConfig{
			Backend:  BackendMemory,
			Capacity: 100,
			TTL:      Duration{5 * time.Minute},
			Prefix:   "gitranked:",
		},
		Search: SearchConfig{
			PageSize:           50,
			FetchSize:          50,
			MaxAccumulate:      1000,
			HydrateConcurrency: 8,
		},
		Location: LocationConfig{
			TTL: Duration{24 * time.Hour},
		},
	}
}

// Load builds the configuration: defaults, then the TOML file (explicit
// path, or GITRANKED_CONFIG when path is empty), then environment
// overrides. A missing explicit file is an error; no file at all is not.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "loading config %s", path)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvToken); v != "" {
		c.GitHubToken = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = BackendRedis
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "redis cache backend requires a redis_url")
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}

	for name, v := range map[string]int{
		"ratelimit.ceiling":     c.RateLimit.Ceiling,
		"ratelimit.capacity":    c.RateLimit.Capacity,
		"cache.capacity":        c.Cache.Capacity,
		"search.page_size":      c.Search.PageSize,
		"search.fetch_size":     c.Search.FetchSize,
		"search.max_accumulate": c.Search.MaxAccumulate,
	} {
		if v < 1 {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "%s must be positive, got %d", name, v)
		}
	}
	if c.RateLimit.Window.Duration <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "ratelimit.window must be positive")
	}
	if c.Cache.TTL.Duration <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "cache.ttl must be positive")
	}
	return nil
}

// String renders a redacted one-line summary for startup logs.
func (c *Config) String() string {
	token := "unset"
	if c.GitHubToken != "" {
		token = "set"
	}
	return fmt.Sprintf("listen=%s token=%s cache=%s ttl=%s limit=%d/%s",
		c.Listen, token, c.Cache.Backend, c.Cache.TTL.Duration, c.RateLimit.Ceiling, c.RateLimit.Window.Duration)
}
