// Package db defines the storage contracts for the gateway's auxiliary
// store (query-result cache entries and term display tables).
package db

import (
	"context"
	"time"
)

// Store is the auxiliary store facade. Consumers depend on the narrow
// sub-interfaces (ISP), not on Store itself.
type Store interface {
	Pinger
	ListStore
	HashStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ListStore provides append-only list operations. The query cache relies
// on LPush/LRange ordering: newest entry first.
type ListStore interface {
	LPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
}

// HashStore provides hash field operations for term display tables.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HMGet returns the present fields only; missing fields are absent
	// from the result map.
	HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error)
}
