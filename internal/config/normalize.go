package config

import "strings"

// normalizeConfig normalizes configuration values.
func normalizeConfig(c *Config) {
	// Normalize log level and storage driver to lowercase
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
}
