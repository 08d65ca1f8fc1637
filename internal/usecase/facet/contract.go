package facet

import "context"

// Executor runs compiled SQL against the search backend through the
// query-result cache.
type Executor interface {
	Execute(ctx context.Context, sql string) ([]byte, error)
}

// TermResolver batch-resolves integer term ids to display strings.
type TermResolver interface {
	Resolve(ctx context.Context, field string, ids []uint64) (map[uint64]string, error)
}
