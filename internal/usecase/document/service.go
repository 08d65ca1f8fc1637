// Package document serves per-document text sources and in-document search.
package document

import (
	"context"

	"github.com/trawlhq/trawl/internal/db/manticore"
	"github.com/trawlhq/trawl/internal/domain/document"
	"github.com/trawlhq/trawl/internal/domain/highlight"
	"github.com/trawlhq/trawl/internal/domain/result"
)

// Service answers document-scoped queries: which extraction sources a
// document has, and where a find term matches inside it.
type Service struct {
	executor Executor
}

// New creates a Service over the given executor.
func New(executor Executor) *Service {
	return &Service{executor: executor}
}

type sourceRow struct {
	Extractor string `json:"extractor"`
	MinPage   uint32 `json:"min_page"`
	MaxPage   uint32 `json:"max_page"`
}

// TextSources lists the document's extraction sources with their page
// ranges. A document nobody indexed yields an empty list, not an error.
func (s *Service) TextSources(ctx context.Context, id document.ID) ([]result.TextSource, error) {
	payload, err := s.executor.Execute(ctx, manticore.TextSourcesSQL(id))
	if err != nil {
		return nil, err
	}
	res, err := manticore.Decode[sourceRow](payload)
	if err != nil {
		return nil, err
	}

	sources := make([]result.TextSource, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		sources = append(sources, result.TextSource{
			Extractor: hit.Source.Extractor,
			MinPage:   hit.Source.MinPage,
			MaxPage:   hit.Source.MaxPage,
		})
	}
	return sources, nil
}

type hitRow struct {
	Extractor string `json:"extractor"`
	PageID    uint32 `json:"page_id"`
	Text      string `json:"text"`
}

// SourceHits returns the fully highlighted text of one page from one
// extraction source for the find term.
func (s *Service) SourceHits(ctx context.Context, id document.ID, find, extractor string, pageID uint32) ([]result.SourceHit, error) {
	payload, err := s.executor.Execute(ctx, manticore.SourceHitsSQL(id, find, extractor, pageID))
	if err != nil {
		return nil, err
	}
	res, err := manticore.Decode[hitRow](payload)
	if err != nil {
		return nil, err
	}

	hits := make([]result.SourceHit, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		hits = append(hits, result.SourceHit{
			Extractor: hit.Source.Extractor,
			PageID:    hit.Source.PageID,
			Spans:     highlight.Decompose(hit.Source.Text),
		})
	}
	return hits, nil
}

// SourceHitCounts returns the match count on every page of the document
// for the find term, across all extraction sources.
func (s *Service) SourceHitCounts(ctx context.Context, id document.ID, find string) ([]result.SourceHitCount, error) {
	payload, err := s.executor.Execute(ctx, manticore.SourceHitCountsSQL(id, find))
	if err != nil {
		return nil, err
	}
	res, err := manticore.Decode[hitRow](payload)
	if err != nil {
		return nil, err
	}

	counts := make([]result.SourceHitCount, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		counts = append(counts, result.SourceHitCount{
			Extractor: hit.Source.Extractor,
			PageID:    hit.Source.PageID,
			Hits:      highlight.HitCount(highlight.Decompose(hit.Source.Text)),
		})
	}
	return counts, nil
}
