// Package config loads moviegraph settings.
//
// Settings come from three layers, later layers winning:
//
//  1. [Default]
//  2. a TOML file ([Load])
//  3. MOVIEGRAPH_* environment variables, one per key ([EnvVar])
//
// Command-line flags are applied by the CLI on top of the result.
//
// Example file:
//
//	[server]
//	addr = ":8080"
//	rate_limit = 120
//
//	[render]
//	edges = true
//
//	[cache]
//	backend = "redis"
//
//	[redis]
//	addr = "localhost:6379"
package config

import (
	"time"

	"github.com/matzehuels/moviegraph/pkg/force"
	"github.com/matzehuels/moviegraph/pkg/pipeline"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Mongo  MongoConfig  `toml:"mongo"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
	RateLimit       int           `toml:"rate_limit"` // requests per minute per IP, 0 disables
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// RenderConfig holds output defaults. Requests may override Format and Edges.
type RenderConfig struct {
	Format        string        `toml:"format"`
	Edges         bool          `toml:"edges"`
	Width         float64       `toml:"width"`
	Height        float64       `toml:"height"`
	Scale         float64       `toml:"scale"`
	PrimaryPrefix string        `toml:"primary_prefix"`
	Timeout       time.Duration `toml:"timeout"`
}

// LayoutConfig holds force simulation parameters.
type LayoutConfig struct {
	Steps        int     `toml:"steps"`
	SizeRatio    float64 `toml:"size_ratio"`
	Charge       float64 `toml:"charge"`
	LinkDistance float64 `toml:"link_distance"`
	Gravity      float64 `toml:"gravity"`
	Theta        float64 `toml:"theta"`
	Seed         uint64  `toml:"seed"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend string        `toml:"backend"` // none, file or redis
	Dir     string        `toml:"dir"`     // file backend; empty means the user cache dir
	TTL     time.Duration `toml:"ttl"`
	Prefix  string        `toml:"prefix"` // key namespace
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures the ratings store. An empty URI disables it.
type MongoConfig struct {
	URI      string        `toml:"uri"`
	Database string        `toml:"database"`
	Timeout  time.Duration `toml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    8 << 20,
			RateLimit:       120,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Render: RenderConfig{
			Format:        pipeline.DefaultFormat,
			Width:         force.DefaultCanvasWidth,
			Height:        force.DefaultCanvasHeight,
			Scale:         pipeline.DefaultScale,
			PrimaryPrefix: "m",
			Timeout:       pipeline.DefaultTimeout,
		},
		Layout: LayoutConfig{
			Steps:        force.DefaultSteps,
			SizeRatio:    force.DefaultSizeRatio,
			Charge:       force.DefaultCharge,
			LinkDistance: force.DefaultLinkDistance,
			Gravity:      force.DefaultGravity,
			Theta:        force.DefaultTheta,
			Seed:         force.DefaultSeed,
		},
		Cache: CacheConfig{
			Backend: CacheNone,
			TTL:     pipeline.DefaultCacheTTL,
			Prefix:  "moviegraph:",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Mongo: MongoConfig{
			Database: "moviegraph",
			Timeout:  10 * time.Second,
		},
	}
}

// Load reads path over the defaults and applies the environment.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg, err := load(path)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// PipelineOptions converts the render and layout sections into pipeline options.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Format:        c.Render.Format,
		Edges:         c.Render.Edges,
		Scale:         c.Render.Scale,
		Width:         c.Render.Width,
		Height:        c.Render.Height,
		SizeRatio:     c.Layout.SizeRatio,
		Steps:         c.Layout.Steps,
		Charge:        c.Layout.Charge,
		LinkDistance:  c.Layout.LinkDistance,
		Gravity:       c.Layout.Gravity,
		Theta:         c.Layout.Theta,
		Seed:          c.Layout.Seed,
		PrimaryPrefix: c.Render.PrimaryPrefix,
		Timeout:       c.Render.Timeout,
		CacheTTL:      c.Cache.TTL,
	}
}
