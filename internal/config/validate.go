package config

import (
	"fmt"
	"net"
	"slices"
	"strconv"
	"time"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validDrivers   = []string{"sqlite", "postgres"}
)

// validateConfig validates the configuration and returns an error if invalid.
func validateConfig(c *Config) error {
	for _, validate := range []func() error{
		func() error { return validateServerConfig(c.Server) },
		func() error { return validateStorageConfig(c.Storage) },
		func() error { return validateSamplerConfig(c.Sampler) },
		func() error { return validateCacheConfig(c.Cache) },
		func() error { return validateLogConfig(c.Log) },
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateServerConfig validates server configuration.
func validateServerConfig(s ServerConfig) error {
	if s.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	// Validate address format
	host, portStr, err := net.SplitHostPort(s.Addr)
	if err != nil {
		return fmt.Errorf("server.addr invalid format: %w", err)
	}

	// Validate port range
	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("server.addr invalid port: %w", err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("server.addr port out of range (1-65535)")
		}
	}

	// Validate host if specified
	if host != "" && host != "0.0.0.0" && host != "localhost" {
		if ip := net.ParseIP(host); ip == nil {
			if _, err := net.LookupHost(host); err != nil {
				return fmt.Errorf("server.addr invalid host: %s", host)
			}
		}
	}

	// Validate timeouts
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be greater than 0")
	}
	if s.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be greater than 0")
	}
	if s.IdleTimeout <= 0 {
		return fmt.Errorf("server.idle_timeout must be greater than 0")
	}
	if s.ReadTimeout > 5*time.Minute {
		return fmt.Errorf("server.read_timeout too large (max 5m)")
	}
	if s.WriteTimeout > 5*time.Minute {
		return fmt.Errorf("server.write_timeout too large (max 5m)")
	}
	if s.IdleTimeout > 30*time.Minute {
		return fmt.Errorf("server.idle_timeout too large (max 30m)")
	}
	if s.ReadTimeout < time.Second {
		return fmt.Errorf("server.read_timeout too small (min 1s)")
	}
	if s.WriteTimeout < time.Second {
		return fmt.Errorf("server.write_timeout too small (min 1s)")
	}

	// Validate JWT configuration
	if err := validateJWTConfig(s.JWT); err != nil {
		return fmt.Errorf("server.jwt: %w", err)
	}

	return nil
}

// validateJWTConfig validates JWT configuration.
func validateJWTConfig(j JWTConfig) error {
	if j.Secret == "" {
		return fmt.Errorf("secret is required")
	}
	if len(j.Secret) < 32 {
		return fmt.Errorf("secret too short (min 32 chars)")
	}
	if j.TTL < time.Minute {
		return fmt.Errorf("ttl too small (min 1m)")
	}
	if j.TTL > 30*24*time.Hour {
		return fmt.Errorf("ttl too large (max 720h)")
	}
	return nil
}

// validateStorageConfig validates storage configuration.
func validateStorageConfig(s StorageConfig) error {
	if !slices.Contains(validDrivers, s.Driver) {
		return fmt.Errorf("storage.driver must be one of %v", validDrivers)
	}
	if s.DSN == "" {
		return fmt.Errorf("storage.dsn cannot be empty")
	}

	// Validate connection pool settings
	if s.MaxOpenConns <= 0 {
		return fmt.Errorf("storage.max_open_conns must be greater than 0")
	}
	if s.MaxIdleConns < 0 {
		return fmt.Errorf("storage.max_idle_conns cannot be negative")
	}
	if s.MaxIdleConns > s.MaxOpenConns {
		return fmt.Errorf("storage.max_idle_conns cannot be greater than max_open_conns")
	}
	if s.ConnMaxLifetime <= 0 {
		return fmt.Errorf("storage.conn_max_lifetime must be greater than 0")
	}
	if s.MaxOpenConns > 1000 {
		return fmt.Errorf("storage.max_open_conns too large (max 1000)")
	}
	if s.ConnMaxLifetime > 24*time.Hour {
		return fmt.Errorf("storage.conn_max_lifetime too large (max 24h)")
	}
	if s.ConnMaxLifetime < time.Minute {
		return fmt.Errorf("storage.conn_max_lifetime too small (min 1m)")
	}

	return nil
}

// validateSamplerConfig validates health sampler configuration.
func validateSamplerConfig(s SamplerConfig) error {
	if s.Interval < 10*time.Second {
		return fmt.Errorf("sampler.interval too small (min 10s)")
	}
	if s.Interval > 24*time.Hour {
		return fmt.Errorf("sampler.interval too large (max 24h)")
	}
	if s.ProbeTimeout < time.Second {
		return fmt.Errorf("sampler.probe_timeout too small (min 1s)")
	}
	if s.ProbeTimeout >= s.Interval {
		return fmt.Errorf("sampler.probe_timeout must be smaller than sampler.interval")
	}
	if s.JitterFraction < 0 || s.JitterFraction > 0.5 {
		return fmt.Errorf("sampler.jitter_fraction out of range (0-0.5)")
	}
	return nil
}

// validateCacheConfig validates cache configuration.
func validateCacheConfig(c CacheConfig) error {
	if c.SummaryTTL < time.Second {
		return fmt.Errorf("cache.summary_ttl too small (min 1s)")
	}
	if c.SummaryTTL > time.Hour {
		return fmt.Errorf("cache.summary_ttl too large (max 1h)")
	}
	return nil
}

// validateLogConfig validates log configuration.
func validateLogConfig(l LogConfig) error {
	if !slices.Contains(validLogLevels, l.Level) {
		return fmt.Errorf("log.level must be one of %v", validLogLevels)
	}
	return nil
}
