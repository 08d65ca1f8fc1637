package trawl

import (
	"time"

	"go.uber.org/zap"

	searchuc "github.com/trawlhq/trawl/internal/usecase/search"
)

// clientConfig collects Option settings.
type clientConfig struct {
	backendURL   string
	queryTimeout time.Duration

	cacheAddrs    []string
	cacheUsername string
	cachePassword string
	cacheTimeout  time.Duration
	cacheEntries  int

	pageSize          int
	multiValuedFields []string
	termMappedFields  []string

	logger *zap.Logger
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		queryTimeout:      65 * time.Second,
		cacheTimeout:      2 * time.Second,
		cacheEntries:      16,
		pageSize:          searchuc.DefaultPageSize,
		multiValuedFields: []string{"file_types"},
		termMappedFields:  []string{"file_types"},
		logger:            zap.NewNop(),
	}
}

// Option configures a Client.
type Option func(*clientConfig)

// WithBackend sets the search engine base URL. Required.
func WithBackend(baseURL string) Option {
	return func(c *clientConfig) { c.backendURL = baseURL }
}

// WithQueryTimeout bounds one backend query round trip.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.queryTimeout = d }
}

// WithRedis enables the result cache and term tables on a Redis store.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	}
}

// WithRedisCluster enables the result cache on a multi-node store.
func WithRedisCluster(addrs []string, username, password string) Option {
	return func(c *clientConfig) {
		c.cacheAddrs = addrs
		c.cacheUsername = username
		c.cachePassword = password
	}
}

// WithCacheTimeout bounds each cache store operation. Keep it well below
// the query timeout; on expiry the client degrades to a direct query.
func WithCacheTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.cacheTimeout = d }
}

// WithCacheEntries bounds how many superseded entries one query
// fingerprint retains.
func WithCacheEntries(n int) Option {
	return func(c *clientConfig) { c.cacheEntries = n }
}

// WithPageSize sets the result page size.
func WithPageSize(n int) Option {
	return func(c *clientConfig) { c.pageSize = n }
}

// WithMultiValuedFields names array-typed attributes that need the
// group-by facet query shape.
func WithMultiValuedFields(fields ...string) Option {
	return func(c *clientConfig) { c.multiValuedFields = fields }
}

// WithTermMappedFields names integer fields whose ids resolve to display
// strings through the term tables.
func WithTermMappedFields(fields ...string) Option {
	return func(c *clientConfig) { c.termMappedFields = fields }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
