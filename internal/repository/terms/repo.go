// Package terms maps integer term ids to display strings per field.
// The indexing pipeline fills the tables; the facet aggregator reads them.
package terms

import (
	"context"
	"fmt"
	"strconv"

	"github.com/trawlhq/trawl/internal/db"
)

const keyPrefix = "trawl:terms:"

// store is the consumer interface for term tables (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error)
}

// Repo reads and writes term display tables.
type Repo struct {
	store store
}

// Compile-time check against the full store facade.
var _ store = (db.Store)(nil)

// New creates a term repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Resolve batch-looks-up display strings for term ids of one field.
// Unknown ids are absent from the result; the caller falls back to a
// synthetic display string.
func (r *Repo) Resolve(ctx context.Context, field string, ids []uint64) (map[uint64]string, error) {
	if len(ids) == 0 {
		return map[uint64]string{}, nil
	}

	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = strconv.FormatUint(id, 10)
	}

	found, err := r.store.HMGet(ctx, keyPrefix+field, fields...)
	if err != nil {
		return nil, fmt.Errorf("resolve terms for %s: %w", field, err)
	}

	out := make(map[uint64]string, len(found))
	for idStr, display := range found {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			continue
		}
		out[id] = display
	}
	return out, nil
}

// Put writes display strings for term ids of one field.
func (r *Repo) Put(ctx context.Context, field string, terms map[uint64]string) error {
	if len(terms) == 0 {
		return nil
	}
	fields := make(map[string]string, len(terms))
	for id, display := range terms {
		fields[strconv.FormatUint(id, 10)] = display
	}
	if err := r.store.HSet(ctx, keyPrefix+field, fields); err != nil {
		return fmt.Errorf("put terms for %s: %w", field, err)
	}
	return nil
}
