package document

import "context"

// Executor runs compiled SQL against the search backend through the
// query-result cache.
type Executor interface {
	Execute(ctx context.Context, sql string) ([]byte, error)
}
