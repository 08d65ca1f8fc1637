// Package config loads the gateway configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the trawl gateway configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Backend BackendConfig `yaml:"backend"`
	Cache   CacheConfig   `yaml:"cache"`
	Search  SearchConfig  `yaml:"search"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

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

// BackendConfig holds search engine connection settings.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	QueryTimeoutMS int    `yaml:"query_timeout_ms"`
}

// CacheConfig holds the query-result cache store settings. Cache
// operations use a timeout well below the backend query timeout so a
// slow cache store can never delay the primary response path.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	TimeoutMS        int      `yaml:"timeout_ms"`
	// MaxEntries bounds how many superseded entries one fingerprint keeps.
	MaxEntries int `yaml:"max_entries_per_fingerprint"`
}

// SearchConfig holds result shaping settings.
type SearchConfig struct {
	PageSize int `yaml:"page_size"`
	// FacetFields lists the attributes clients may facet on. Field names
	// end up in compiled SQL, so only listed fields are accepted.
	FacetFields []string `yaml:"facet_fields"`
	// MultiValuedFields lists array-typed attributes that need the
	// group-by facet query shape.
	MultiValuedFields []string `yaml:"multi_valued_fields"`
	// TermMappedFields lists fields whose integer values resolve to
	// display strings through the term table.
	TermMappedFields []string `yaml:"term_mapped_fields"`
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		// Result pages can take as long as one backend query.
		c.HTTP.WriteTimeoutSec = 70
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Backend.QueryTimeoutMS <= 0 {
		// Slightly above the engine-side max_query_time of 60s.
		c.Backend.QueryTimeoutMS = 65000
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Cache.TimeoutMS <= 0 {
		c.Cache.TimeoutMS = 2000
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 16
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 10
	}
	if len(c.Search.FacetFields) == 0 {
		c.Search.FacetFields = []string{"collection", "file_types", "extractor"}
	}
	if len(c.Search.MultiValuedFields) == 0 {
		c.Search.MultiValuedFields = []string{"file_types"}
	}
	if len(c.Search.TermMappedFields) == 0 {
		c.Search.TermMappedFields = []string{"file_types"}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required")
	}
	if c.Cache.TimeoutMS >= c.Backend.QueryTimeoutMS {
		return fmt.Errorf(
			"cache.timeout_ms (%d) must be below backend.query_timeout_ms (%d)",
			c.Cache.TimeoutMS, c.Backend.QueryTimeoutMS,
		)
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
