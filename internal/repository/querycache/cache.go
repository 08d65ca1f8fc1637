// Package querycache wraps the search backend with a content-addressed,
// append-only result cache.
package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const keyPrefix = "trawl:qcache:"

// backend is the consumer interface for the search engine (ISP).
type backend interface {
	SearchSQL(ctx context.Context, sql string) ([]byte, error)
}

// store is the consumer interface for the cache store (ISP).
type store interface {
	LPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
}

// entry is one persisted cache record. Entries are never updated in
// place; a newer entry for the same fingerprint supersedes older ones.
type entry struct {
	QueryString string          `json:"query_string"`
	Payload     json.RawMessage `json:"result_payload"`
	DurationMS  int64           `json:"duration_ms"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Metrics are the instrumentation hooks, all nil-safe.
type Metrics struct {
	// CacheTotal is a counter vec with label "result" ("hit"/"miss").
	CacheTotal      *prometheus.CounterVec
	WriteFailures   prometheus.Counter
	BackendDuration prometheus.Histogram
}

// Options tune cache behavior.
type Options struct {
	// Timeout bounds each cache store operation. Must stay well below
	// the backend query timeout; on expiry the executor degrades to a
	// direct backend call.
	Timeout time.Duration
	// MaxEntries bounds how many entries one fingerprint retains.
	MaxEntries int
}

// CachedExecutor executes compiled SQL through the cache. Stateless per
// call; safe for concurrent use. Two concurrent misses for the same
// fingerprint both hit the backend and both persist an entry — benign,
// since reads pick the newest matching entry.
type CachedExecutor struct {
	backend    backend
	store      store
	timeout    time.Duration
	maxEntries int64
	metrics    Metrics
	logger     *zap.Logger
}

// New creates a caching executor.
func New(b backend, s store, opts Options, m Metrics, logger *zap.Logger) *CachedExecutor {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	maxEntries := int64(opts.MaxEntries)
	if maxEntries <= 0 {
		maxEntries = 16
	}
	return &CachedExecutor{
		backend:    b,
		store:      s,
		timeout:    timeout,
		maxEntries: maxEntries,
		metrics:    m,
		logger:     logger,
	}
}

// Execute returns the raw backend payload for sql, from cache when a
// previous entry matches both the fingerprint and the exact query text.
// On a miss the backend response is persisted unconditionally, even when
// logically empty; persistence failure is logged and swallowed — the
// fetched response is authoritative and is returned regardless.
func (c *CachedExecutor) Execute(ctx context.Context, sql string) ([]byte, error) {
	fingerprint := Fingerprint(sql)
	key := keyPrefix + fingerprint

	if payload, ok := c.lookup(ctx, key, sql); ok {
		c.incCache("hit")
		c.logger.Debug("query cache hit", zap.String("fingerprint", fingerprint))
		return payload, nil
	}
	c.incCache("miss")

	start := time.Now()
	payload, err := c.backend.SearchSQL(ctx, sql)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	if c.metrics.BackendDuration != nil {
		c.metrics.BackendDuration.Observe(elapsed.Seconds())
	}

	c.persist(ctx, key, sql, payload, elapsed)
	return payload, nil
}

// Fingerprint returns the cache fingerprint of compiled query text.
func Fingerprint(sql string) string {
	h := sha256.Sum256([]byte(sql))
	return hex.EncodeToString(h[:])
}

// lookup scans the fingerprint's entries newest-first for one whose exact
// query text matches. The text comparison guards against fingerprint
// collisions. Store errors degrade to a miss.
func (c *CachedExecutor) lookup(ctx context.Context, key, sql string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	items, err := c.store.LRange(ctx, key, 0, c.maxEntries-1)
	if err != nil {
		c.logger.Warn("query cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	for _, item := range items {
		var e entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			c.logger.Warn("query cache entry undecodable", zap.String("key", key), zap.Error(err))
			continue
		}
		if e.QueryString == sql {
			return e.Payload, true
		}
	}
	return nil, false
}

// persist appends a new entry and trims superseded ones. Detached from
// request cancellation: a write already in flight when the caller gives
// up may still complete.
func (c *CachedExecutor) persist(ctx context.Context, key, sql string, payload []byte, elapsed time.Duration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	data, err := json.Marshal(entry{
		QueryString: sql,
		Payload:     payload,
		DurationMS:  elapsed.Milliseconds(),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		c.recordWriteFailure(key, err)
		return
	}
	if err := c.store.LPush(ctx, key, string(data)); err != nil {
		c.recordWriteFailure(key, err)
		return
	}
	if err := c.store.LTrim(ctx, key, 0, c.maxEntries-1); err != nil {
		// The entry itself is in; the trim will catch up next write.
		c.logger.Warn("query cache trim failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedExecutor) recordWriteFailure(key string, err error) {
	if c.metrics.WriteFailures != nil {
		c.metrics.WriteFailures.Inc()
	}
	c.logger.Warn("query cache write failed", zap.String("key", key), zap.Error(err))
}

func (c *CachedExecutor) incCache(result string) {
	if c.metrics.CacheTotal != nil {
		c.metrics.CacheTotal.WithLabelValues(result).Inc()
	}
}
