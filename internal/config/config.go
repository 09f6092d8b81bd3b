package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete configuration schema for the Vigil
// monitoring dashboard.
//
// Configuration sources (in order of precedence):
//  1. Defaults
//  2. Configuration file (optional)
//  3. Environment variables (VIGIL_ prefix)
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Sampler SamplerConfig `mapstructure:"sampler" yaml:"sampler"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	JWT          JWTConfig     `mapstructure:"jwt" yaml:"jwt"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret" yaml:"secret"`
	TTL    time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type StorageConfig struct {
	// Driver selects the database backend: "sqlite" or "postgres".
	Driver          string        `mapstructure:"driver" yaml:"driver"`
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// SamplerConfig controls the periodic health sampling pass.
type SamplerConfig struct {
	// Interval is the fixed period between sampling passes.
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`

	// ProbeTimeout bounds a single reachability probe so one
	// unreachable server cannot stall the whole pass.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`

	// JitterFraction spreads tick start times by up to this fraction
	// of the interval (0 disables jitter).
	JitterFraction float64 `mapstructure:"jitter_fraction" yaml:"jitter_fraction"`
}

// CacheConfig controls the advisory dashboard-summary cache.
type CacheConfig struct {
	SummaryTTL time.Duration `mapstructure:"summary_ttl" yaml:"summary_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error, fatal, panic
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"` // human-readable console output
}

// Load loads configuration from defaults, configuration file,
// and environment variables, then validates the result.
//
// The function fails fast on:
//   - Invalid configuration file
//   - Invalid or missing required configuration values
func Load() (*Config, error) {
	v := viper.New()

	// Register default values
	setDefaults(v)

	// Environment variable support
	v.SetEnvPrefix("VIGIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(false)
	v.AutomaticEnv()

	// Optional configuration file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Cross-platform config directory
	if configDir := getConfigDir(); configDir != "" {
		v.AddConfigPath(configDir)
	}

	// Read configuration file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	}

	// Explicitly bind nested keys that have env mapping issues.
	// Only bind when the variable is actually set, preserving the
	// precedence order for file configuration otherwise.
	if _, exists := os.LookupEnv("VIGIL_SERVER_JWT_SECRET"); exists {
		v.BindEnv("server.jwt.secret", "VIGIL_SERVER_JWT_SECRET")
	}
	if _, exists := os.LookupEnv("VIGIL_STORAGE_DSN"); exists {
		v.BindEnv("storage.dsn", "VIGIL_STORAGE_DSN")
	}

	// Unmarshal configuration into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Normalize configuration
	normalizeConfig(&cfg)

	// Validate final configuration
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// getConfigDir returns the appropriate config directory for the current OS
func getConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "vigil")
		}
		return ""
	}

	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".vigil")
	}
	return ""
}
