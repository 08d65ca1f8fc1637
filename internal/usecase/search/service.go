// Package search produces paginated, highlighted document result lists.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/trawlhq/trawl/internal/db/manticore"
	"github.com/trawlhq/trawl/internal/domain"
	"github.com/trawlhq/trawl/internal/domain/highlight"
	"github.com/trawlhq/trawl/internal/domain/query"
	"github.com/trawlhq/trawl/internal/domain/result"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// Service handles paginated document list retrieval.
type Service struct {
	executor Executor
	pageSize int
}

// New creates a search service.
func New(executor Executor, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{executor: executor, pageSize: pageSize}
}

// PageSize returns the fixed result page size.
func (s *Service) PageSize() int { return s.pageSize }

// pageRow is the backend row shape of the result-list query.
type pageRow struct {
	Collection         string   `json:"collection"`
	ContentHash        string   `json:"content_hash"`
	PageIDs            string   `json:"page_ids"`
	Filenames          string   `json:"filenames"`
	HighlightText      string   `json:"highlight_text"`
	HighlightFilenames string   `json:"highlight_filenames"`
	FileTypes          []uint64 `json:"file_types"`
}

// FetchPage returns one page of results plus the identifiers of the
// documents directly before and after the page boundary.
//
// Ranking is not guaranteed stable across separate backend calls, so the
// neighbors cannot be derived by offset arithmetic in a second query.
// Instead the window is widened by one row on each open side (the overlap
// fetch): the extra rows come from the same call that produced the page,
// which keeps the neighbor identifiers consistent with what the caller
// sees, at the cost of at most two extra rows.
func (s *Service) FetchPage(ctx context.Context, q query.Query, pageIndex int) (result.Page, error) {
	if pageIndex < 0 {
		return result.Page{}, fmt.Errorf("%w: negative page index %d", domain.ErrInvalidQuery, pageIndex)
	}

	offset := uint64(pageIndex) * uint64(s.pageSize)
	limit := uint64(s.pageSize) + 1
	dropFirst := false
	if pageIndex > 0 {
		dropFirst = true
		offset--
		limit += 2
	}

	payload, err := s.executor.Execute(ctx, manticore.ResultsPageSQL(q, limit, offset))
	if err != nil {
		return result.Page{}, fmt.Errorf("fetch results page: %w", err)
	}
	res, err := manticore.Decode[pageRow](payload)
	if err != nil {
		return result.Page{}, fmt.Errorf("fetch results page: %w", err)
	}

	items := make([]result.Item, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		items = append(items, itemFromRow(hit.Source))
	}

	page := result.Page{Query: q, PageIndex: pageIndex}

	// A malformed boundary row (no collection or hash) loses its neighbor
	// link rather than producing a zero-value identifier.
	if dropFirst && len(items) > 0 {
		if prev, err := items[0].DocumentID(); err == nil {
			page.PrevID = &prev
		}
		items = items[1:]
	}
	if len(items) > s.pageSize {
		if next, err := items[s.pageSize].DocumentID(); err == nil {
			page.NextID = &next
		}
		items = items[:s.pageSize]
	}
	for i := range items {
		items[i].IndexInPage = i
	}
	page.Items = items

	return page, nil
}

// countRow is the backend row shape of the hit-count query.
type countRow struct {
	TotalCount uint64 `json:"total_count"`
}

// HitCount returns the number of distinct documents matching the query.
func (s *Service) HitCount(ctx context.Context, q query.Query) (uint64, error) {
	payload, err := s.executor.Execute(ctx, manticore.HitCountSQL(q))
	if err != nil {
		return 0, fmt.Errorf("fetch hit count: %w", err)
	}
	res, err := manticore.Decode[countRow](payload)
	if err != nil {
		return 0, fmt.Errorf("fetch hit count: %w", err)
	}
	if len(res.Hits.Hits) == 0 {
		return 0, nil
	}
	return res.Hits.Hits[0].Source.TotalCount, nil
}

// itemFromRow shapes one backend row into a result item. The title is the
// document's first filename; when the highlighter marked a match in some
// filename, that line becomes the displayed title instead.
func itemFromRow(row pageRow) result.Item {
	title, _, _ := strings.Cut(row.Filenames, "\n")

	titleLine := title
	for _, line := range strings.Split(row.HighlightFilenames, "\n") {
		if strings.Contains(line, highlight.OpenMarker) {
			titleLine = line
			break
		}
	}

	return result.Item{
		Collection:  row.Collection,
		ContentHash: row.ContentHash,
		Title:       title,
		TextSpans:   highlight.Decompose(row.HighlightText),
		TitleSpans:  highlight.Decompose(titleLine),
	}
}
