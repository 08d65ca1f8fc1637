// Package result holds the aggregates returned to search consumers.
package result

import (
	"github.com/trawlhq/trawl/internal/domain/document"
	"github.com/trawlhq/trawl/internal/domain/highlight"
	"github.com/trawlhq/trawl/internal/domain/query"
)

// Item is one document on a result page.
type Item struct {
	Collection  string           `json:"collection"`
	ContentHash string           `json:"content_hash"`
	Title       string           `json:"title"`
	TextSpans   []highlight.Span `json:"text_spans"`
	TitleSpans  []highlight.Span `json:"title_spans"`
	IndexInPage int              `json:"index_in_page"`
}

// DocumentID returns the item's document identifier. It fails when the
// backend row carried an empty collection or content hash.
func (it Item) DocumentID() (document.ID, error) {
	return document.NewID(it.Collection, it.ContentHash)
}

// Page is one page of search results with its neighbor identifiers.
// PrevID/NextID are nil on the first/last page respectively. Items never
// exceeds the configured page size.
type Page struct {
	Query     query.Query  `json:"query"`
	Items     []Item       `json:"items"`
	PrevID    *document.ID `json:"prev_id,omitempty"`
	NextID    *document.ID `json:"next_id,omitempty"`
	PageIndex int          `json:"page_index"`
}

// FacetEntry is one facet bucket: a display string, the raw filterable
// value, and the distinct-document count.
type FacetEntry struct {
	Display string      `json:"display"`
	Value   query.Value `json:"value"`
	Count   uint64      `json:"count"`
}

// Facet is the reconciled bucket list for one field, sorted by count
// descending then display ascending. Values selected in the originating
// query are always present, with Count 0 when the backend dropped them.
type Facet struct {
	Query   query.Query  `json:"query"`
	Field   string       `json:"field"`
	Entries []FacetEntry `json:"entries"`
}

// TextSource describes one text extraction source of a document.
type TextSource struct {
	Extractor string `json:"extractor"`
	MinPage   uint32 `json:"min_page"`
	MaxPage   uint32 `json:"max_page"`
}

// SourceHit is the highlighted text of one document page for a find query.
type SourceHit struct {
	Extractor string           `json:"extractor"`
	PageID    uint32           `json:"page_id"`
	Spans     []highlight.Span `json:"spans"`
}

// SourceHitCount is the per-page match count for a find query.
type SourceHitCount struct {
	Extractor string `json:"extractor"`
	PageID    uint32 `json:"page_id"`
	Hits      int    `json:"hits"`
}
