package config

import (
	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
)

// Validate checks the configuration as a whole. Render and layout values
// are checked by the pipeline itself so both stay in one place.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	opts := c.PipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return mgerrors.Wrap(mgerrors.ErrCodeInvalidConfig, err, "render settings")
	}
	return nil
}

func (c *Config) validateServer() error {
	s := c.Server
	switch {
	case s.Addr == "":
		return mgerrors.New(mgerrors.ErrCodeInvalidConfig, "server.addr is required")
	case s.MaxBodyBytes <= 0:
		return mgerrors.New(mgerrors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive, got %d", s.MaxBodyBytes)
	case s.RateLimit < 0:
		return mgerrors.New(mgerrors.ErrCodeInvalidConfig, "server.rate_limit must not be negative, got %d", s.RateLimit)
	case s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0:
		return mgerrors.New(mgerrors.ErrCodeInvalidConfig, "server timeouts must not be negative")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Redis.Addr == "" {
			return mgerrors.New(mgerrors.ErrCodeInvalidConfig, "redis.addr is required when cache.backend = \"redis\"")
		}
	default:
		return mgerrors.New(mgerrors.ErrCodeInvalidConfig, "cache.backend must be none, file or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return mgerrors.New(mgerrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}
