package manticore

import (
	"encoding/json"
	"fmt"

	"github.com/trawlhq/trawl/internal/domain"
)

// Result is the raw backend response envelope for a /sql query.
type Result[T any] struct {
	Hits         Hits[T]                `json:"hits"`
	TimedOut     bool                   `json:"timed_out"`
	Took         uint64                 `json:"took"`
	Aggregations map[string]Aggregation `json:"aggregations,omitempty"`
}

// Hits is the hit envelope.
type Hits[T any] struct {
	Hits          []Hit[T] `json:"hits"`
	Total         uint64   `json:"total"`
	TotalRelation string   `json:"total_relation"`
}

// Hit is one result row.
type Hit[T any] struct {
	Source T      `json:"_source"`
	Score  uint64 `json:"_score"`
}

// Aggregation is one FACET aggregation result.
type Aggregation struct {
	Buckets []Bucket `json:"buckets"`
}

// Bucket is one aggregation bucket. Key keeps its raw JSON form because
// the engine emits strings for text attributes and numbers for integer
// attributes; classification happens in the facet aggregator.
type Bucket struct {
	Key json.RawMessage `json:"key"`
	// doc_count counts rows, including several pages of one document.
	RowCount uint64 `json:"doc_count"`
	// The distinct-document count is emitted under the aggregate's
	// verbatim SQL expression name.
	DocCount uint64 `json:"count(distinct content_hash)"`
}

// Decode parses a raw /sql response payload into a typed Result.
func Decode[T any](payload []byte) (*Result[T], error) {
	var res Result[T]
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	return &res, nil
}
