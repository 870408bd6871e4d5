package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root service configuration.
type Config struct {
	Listen  string        `yaml:"listen"`
	Store   StoreConfig   `yaml:"store"`
	Cache   CacheConfig   `yaml:"cache"`
	RAG     RAGConfig     `yaml:"rag"`
	Auth    AuthConfig    `yaml:"auth"`
	Limits  LimitsConfig  `yaml:"limits"`
	Observe ObserveConfig `yaml:"observe"`
}

// StoreConfig selects and configures the cache store backend.
type StoreConfig struct {
	// Backend is one of "memory", "redis", "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig configures the caching policy.
type CacheConfig struct {
	// Enabled turns caching on. Default: true
	Enabled *bool `yaml:"enabled"`

	// DefaultTTL is the entry lifetime when callers pass none.
	// Default: 1h
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// MaxTTL caps caller-supplied TTLs. Default: 24h
	MaxTTL time.Duration `yaml:"max_ttl"`

	// SingleFlight coalesces concurrent misses for the same key.
	// Default: true
	SingleFlight *bool `yaml:"single_flight"`
}

// RAGConfig configures the retrieval pipeline.
type RAGConfig struct {
	// TopK is the number of nearest matches requested. Default: 5
	TopK int `yaml:"top_k"`

	// MinScore is the relevance threshold. Default: 0.5
	MinScore float64 `yaml:"min_score"`

	// ExcerptLength bounds source excerpts in runes. Default: 500
	ExcerptLength int `yaml:"excerpt_length"`

	// FallbackAnswer replaces generation when no document clears the
	// threshold. Empty uses the built-in default.
	FallbackAnswer string `yaml:"fallback_answer"`

	// DocumentsPath is a JSON corpus file loaded into the in-memory
	// index at startup. Empty starts with an empty index.
	DocumentsPath string `yaml:"documents_path"`
}

// AuthConfig configures request authentication.
type AuthConfig struct {
	// Enabled turns authentication on. Default: false (local use)
	Enabled bool `yaml:"enabled"`

	// APIKeys are the accepted client keys.
	APIKeys []APIKeyConfig `yaml:"api_keys"`

	JWT JWTConfig `yaml:"jwt"`
}

// APIKeyConfig is one configured API key. The plaintext key is hashed
// before registration; only the hash survives startup.
type APIKeyConfig struct {
	ID        string   `yaml:"id"`
	Key       string   `yaml:"key"`
	Principal string   `yaml:"principal"`
	Roles     []string `yaml:"roles"`
}

// JWTConfig configures admin bearer tokens.
type JWTConfig struct {
	Secret   string `yaml:"secret"`
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

// LimitsConfig configures the request guards.
type LimitsConfig struct {
	// RequestTimeout bounds one answer request. Default: 60s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Rate is allowed answer requests per second. Default: 10
	Rate float64 `yaml:"rate"`

	// Burst is the rate limiter burst size. Default: 20
	Burst int `yaml:"burst"`
}

// ObserveConfig configures telemetry.
type ObserveConfig struct {
	ServiceName string         `yaml:"service_name"`
	Tracing     ExporterConfig `yaml:"tracing"`
	Metrics     ExporterConfig `yaml:"metrics"`
	Logging     LoggingConfig  `yaml:"logging"`
}

// ExporterConfig configures one telemetry exporter.
type ExporterConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Exporter  string  `yaml:"exporter"`
	SamplePct float64 `yaml:"sample_pct"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads, env-expands, parses, and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses raw YAML configuration.
func Parse(data []byte) (*Config, error) {
	expanded, err := ExpandEnvStrict(string(data))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Store.Redis.Addr == "" {
		c.Store.Redis.Addr = "localhost:6379"
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = "ragcache.db"
	}
	if c.Cache.Enabled == nil {
		enabled := true
		c.Cache.Enabled = &enabled
	}
	if c.Cache.DefaultTTL <= 0 {
		c.Cache.DefaultTTL = time.Hour
	}
	if c.Cache.MaxTTL <= 0 {
		c.Cache.MaxTTL = 24 * time.Hour
	}
	if c.Cache.SingleFlight == nil {
		sf := true
		c.Cache.SingleFlight = &sf
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = 5
	}
	if c.RAG.MinScore <= 0 {
		c.RAG.MinScore = 0.5
	}
	if c.RAG.ExcerptLength <= 0 {
		c.RAG.ExcerptLength = 500
	}
	if c.Limits.RequestTimeout <= 0 {
		c.Limits.RequestTimeout = 60 * time.Second
	}
	if c.Limits.Rate <= 0 {
		c.Limits.Rate = 10
	}
	if c.Limits.Burst <= 0 {
		c.Limits.Burst = 20
	}
	if c.Observe.ServiceName == "" {
		c.Observe.ServiceName = "ragcache"
	}
	if c.Observe.Logging.Level == "" {
		c.Observe.Logging.Level = "info"
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}

	if c.RAG.MinScore > 1 {
		return fmt.Errorf("config: rag.min_score %v out of range [0,1]", c.RAG.MinScore)
	}

	if c.Auth.Enabled {
		if len(c.Auth.APIKeys) == 0 && c.Auth.JWT.Secret == "" {
			return fmt.Errorf("config: auth enabled but no api_keys or jwt.secret configured")
		}
		for i, key := range c.Auth.APIKeys {
			if key.Key == "" {
				return fmt.Errorf("config: auth.api_keys[%d]: empty key", i)
			}
		}
	}

	return nil
}
