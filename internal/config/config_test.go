package config

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// defaultConfig returns a config built from defaults with the one value
// that has no default, the JWT secret, filled in.
func defaultConfig(t *testing.T) *Config {
	t.Helper()

	t.Setenv("VIGIL_SERVER_JWT_SECRET", testSecret)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := defaultConfig(t)

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Server.JWT.TTL != 24*time.Hour {
		t.Errorf("Server.JWT.TTL = %v, want 24h", cfg.Server.JWT.TTL)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, "sqlite")
	}
	if cfg.Sampler.Interval != 5*time.Minute {
		t.Errorf("Sampler.Interval = %v, want 5m", cfg.Sampler.Interval)
	}
	if cfg.Sampler.ProbeTimeout != 5*time.Second {
		t.Errorf("Sampler.ProbeTimeout = %v, want 5s", cfg.Sampler.ProbeTimeout)
	}
	if cfg.Cache.SummaryTTL != 30*time.Second {
		t.Errorf("Cache.SummaryTTL = %v, want 30s", cfg.Cache.SummaryTTL)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatal("Load() without a JWT secret should fail validation")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("VIGIL_SERVER_JWT_SECRET", testSecret)
	t.Setenv("VIGIL_SERVER_ADDR", ":9090")
	t.Setenv("VIGIL_STORAGE_DSN", "/tmp/override.db")
	t.Setenv("VIGIL_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Storage.DSN != "/tmp/override.db" {
		t.Errorf("Storage.DSN = %q, want %q", cfg.Storage.DSN, "/tmp/override.db")
	}
	// Normalization lowercases the level before validation.
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{
				Addr:         ":8080",
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
				JWT:          JWTConfig{Secret: testSecret, TTL: 24 * time.Hour},
			},
			Storage: StorageConfig{
				Driver:          "sqlite",
				DSN:             "vigil.db",
				MaxOpenConns:    32,
				MaxIdleConns:    8,
				ConnMaxLifetime: time.Hour,
			},
			Sampler: SamplerConfig{
				Interval:       5 * time.Minute,
				ProbeTimeout:   5 * time.Second,
				JitterFraction: 0.1,
			},
			Cache: CacheConfig{SummaryTTL: 30 * time.Second},
			Log:   LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "empty addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: "server.addr",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Addr = ":70000" },
			wantErr: "server.addr",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Server.JWT.Secret = "short" },
			wantErr: "secret too short",
		},
		{
			name:    "jwt ttl too small",
			mutate:  func(c *Config) { c.Server.JWT.TTL = time.Second },
			wantErr: "ttl too small",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "oracle" },
			wantErr: "storage.driver",
		},
		{
			name:    "empty dsn",
			mutate:  func(c *Config) { c.Storage.DSN = "" },
			wantErr: "storage.dsn",
		},
		{
			name:    "idle conns above open conns",
			mutate:  func(c *Config) { c.Storage.MaxIdleConns = 64 },
			wantErr: "max_idle_conns",
		},
		{
			name:    "sampler interval too small",
			mutate:  func(c *Config) { c.Sampler.Interval = time.Second },
			wantErr: "sampler.interval",
		},
		{
			name: "probe timeout not below interval",
			mutate: func(c *Config) {
				c.Sampler.Interval = 10 * time.Second
				c.Sampler.ProbeTimeout = 10 * time.Second
			},
			wantErr: "probe_timeout",
		},
		{
			name:    "jitter fraction out of range",
			mutate:  func(c *Config) { c.Sampler.JitterFraction = 0.9 },
			wantErr: "jitter_fraction",
		},
		{
			name:    "summary ttl too large",
			mutate:  func(c *Config) { c.Cache.SummaryTTL = 2 * time.Hour },
			wantErr: "summary_ttl",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validateConfig() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("validateConfig() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateConfig() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeConfig(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{Driver: "SQLite"},
		Log:     LogConfig{Level: "INFO"},
	}

	normalizeConfig(cfg)

	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, "sqlite")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}
