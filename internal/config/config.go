package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the shopdex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Search    SearchConfig    `yaml:"search"`
	Recommend RecommendConfig `yaml:"recommend"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Database drivers.
const (
	DriverValkey = "valkey"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, memory (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CatalogConfig holds catalog storage and access settings.
type CatalogConfig struct {
	KeyPrefix      string        `yaml:"key_prefix"`
	SeedFile       string        `yaml:"seed_file"`
	FetchTimeoutMs int           `yaml:"fetch_timeout_ms"` // 0 = caller deadline only
	Cache          CacheConfig   `yaml:"cache"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// CacheConfig holds snapshot cache settings.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"`
}

// BreakerConfig holds catalog circuit breaker settings.
type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold"`
	OpenTimeoutSec   int `yaml:"open_timeout_sec"`
	HalfOpenRequests int `yaml:"half_open_requests"`
}

// SearchConfig holds query processing settings.
type SearchConfig struct {
	UnicodeFold bool `yaml:"unicode_fold"`
}

// RecommendConfig holds personalization settings.
type RecommendConfig struct {
	BehaviorTTLHours int `yaml:"behavior_ttl_hours"`
	TopTags          int `yaml:"top_tags"`
}

// FetchTimeout returns the catalog fetch timeout.
func (c CatalogConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMs) * time.Millisecond
}

// BehaviorTTL returns the sliding expiry of recorded behavior.
func (c RecommendConfig) BehaviorTTL() time.Duration {
	return time.Duration(c.BehaviorTTLHours) * time.Hour
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverValkey
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Catalog.KeyPrefix == "" {
		c.Catalog.KeyPrefix = "shopdex:"
	}
	if c.Catalog.Cache.TTLSec <= 0 {
		c.Catalog.Cache.TTLSec = 30
	}
	if c.Catalog.Breaker.FailureThreshold <= 0 {
		c.Catalog.Breaker.FailureThreshold = 5
	}
	if c.Catalog.Breaker.OpenTimeoutSec <= 0 {
		c.Catalog.Breaker.OpenTimeoutSec = 30
	}
	if c.Catalog.Breaker.HalfOpenRequests <= 0 {
		c.Catalog.Breaker.HalfOpenRequests = 1
	}
	if c.Recommend.BehaviorTTLHours <= 0 {
		c.Recommend.BehaviorTTLHours = 720
	}
	if c.Recommend.TopTags <= 0 {
		c.Recommend.TopTags = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverValkey, DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case DriverMemory:
		// no connection settings
	default:
		return fmt.Errorf("database.driver must be valkey, redis or memory, got %q", c.Database.Driver)
	}
	if c.Catalog.FetchTimeoutMs < 0 {
		return fmt.Errorf("catalog.fetch_timeout_ms must not be negative, got %d", c.Catalog.FetchTimeoutMs)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
