package search

import "context"

// Executor runs compiled SQL against the search backend, transparently
// short-circuited by the query-result cache.
type Executor interface {
	Execute(ctx context.Context, sql string) ([]byte, error)
}
