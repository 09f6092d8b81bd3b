package config

import "github.com/spf13/viper"

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.jwt.ttl", "24h")

	// Storage defaults
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "vigil.db")
	v.SetDefault("storage.max_open_conns", 32)
	v.SetDefault("storage.max_idle_conns", 8)
	v.SetDefault("storage.conn_max_lifetime", "1h")

	// Sampler defaults
	v.SetDefault("sampler.interval", "5m")
	v.SetDefault("sampler.probe_timeout", "5s")
	v.SetDefault("sampler.jitter_fraction", 0.1)

	// Cache defaults
	v.SetDefault("cache.summary_ttl", "30s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}
