package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:    HTTPConfig{Port: 8080},
		Backend: BackendConfig{BaseURL: "http://localhost:9308", QueryTimeoutMS: 65000},
		Cache:   CacheConfig{Addrs: []string{"localhost:6379"}, TimeoutMS: 2000},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}

	cfg.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestValidate_MissingBackendURL(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.BaseURL = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing backend base_url")
	}
}

func TestValidate_MissingCacheAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing cache addrs")
	}
}

func TestValidate_CacheTimeoutAboveQueryTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.TimeoutMS = 65000

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when cache timeout reaches query timeout")
	}

	expected := "cache.timeout_ms (65000) must be below backend.query_timeout_ms (65000)"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 70 {
		t.Errorf("expected WriteTimeoutSec=70, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Backend.QueryTimeoutMS != 65000 {
		t.Errorf("expected QueryTimeoutMS=65000, got %d", cfg.Backend.QueryTimeoutMS)
	}
	if cfg.Cache.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Cache.ReadinessTimeout)
	}
	if cfg.Cache.TimeoutMS != 2000 {
		t.Errorf("expected TimeoutMS=2000, got %d", cfg.Cache.TimeoutMS)
	}
	if cfg.Cache.MaxEntries != 16 {
		t.Errorf("expected MaxEntries=16, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Search.PageSize != 10 {
		t.Errorf("expected PageSize=10, got %d", cfg.Search.PageSize)
	}
	if len(cfg.Search.FacetFields) != 3 || cfg.Search.FacetFields[0] != "collection" {
		t.Errorf("unexpected FacetFields default: %v", cfg.Search.FacetFields)
	}
	if len(cfg.Search.MultiValuedFields) != 1 || cfg.Search.MultiValuedFields[0] != "file_types" {
		t.Errorf("unexpected MultiValuedFields default: %v", cfg.Search.MultiValuedFields)
	}
	if len(cfg.Search.TermMappedFields) != 1 || cfg.Search.TermMappedFields[0] != "file_types" {
		t.Errorf("unexpected TermMappedFields default: %v", cfg.Search.TermMappedFields)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Backend: BackendConfig{QueryTimeoutMS: 30000},
		Cache:   CacheConfig{ReadinessTimeout: 15, TimeoutMS: 500, MaxEntries: 4},
		Search:  SearchConfig{PageSize: 25, FacetFields: []string{"collection"}},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Backend.QueryTimeoutMS != 30000 {
		t.Errorf("expected QueryTimeoutMS=30000, got %d", cfg.Backend.QueryTimeoutMS)
	}
	if cfg.Cache.MaxEntries != 4 {
		t.Errorf("expected MaxEntries=4, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Search.PageSize != 25 {
		t.Errorf("expected PageSize=25, got %d", cfg.Search.PageSize)
	}
	if len(cfg.Search.FacetFields) != 1 || cfg.Search.FacetFields[0] != "collection" {
		t.Errorf("unexpected FacetFields: %v", cfg.Search.FacetFields)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TRAWL_TEST_PASSWORD", "s3cret")

	in := []byte("password: ${TRAWL_TEST_PASSWORD}\nport: ${TRAWL_TEST_PORT:-8080}\n")
	out := string(expandEnvVars(in))

	expected := "password: s3cret\nport: 8080\n"
	if out != expected {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, expected)
	}
}

func TestExpandEnvVars_SetVarBeatsDefault(t *testing.T) {
	t.Setenv("TRAWL_TEST_PORT", "9090")

	out := string(expandEnvVars([]byte("port: ${TRAWL_TEST_PORT:-8080}")))
	if out != "port: 9090" {
		t.Errorf("expected env value to win over default, got %q", out)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
http:
  port: 8080
backend:
  base_url: "http://localhost:9308"
cache:
  addrs:
    - "localhost:6379"
`
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Backend.BaseURL != "http://localhost:9308" {
		t.Errorf("unexpected backend url %q", cfg.Backend.BaseURL)
	}
	// Defaults apply on load.
	if cfg.Search.PageSize != 10 {
		t.Errorf("expected default PageSize=10, got %d", cfg.Search.PageSize)
	}
}
