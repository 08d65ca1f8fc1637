// Package facet aggregates filterable field values over a search query.
package facet

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/trawlhq/trawl/internal/db/manticore"
	"github.com/trawlhq/trawl/internal/domain"
	"github.com/trawlhq/trawl/internal/domain/query"
	"github.com/trawlhq/trawl/internal/domain/result"
)

// Service computes facet bucket lists. Counting for a field always ignores
// the query's own filter on that field, so already-selected values keep
// their counts visible while the selection narrows every other field.
type Service struct {
	executor    Executor
	terms       TermResolver
	multiValued map[string]struct{}
	termMapped  map[string]struct{}
}

// New creates a Service. multiValued names array-attribute fields that
// need the GROUP BY shape; termMapped names integer fields whose ids
// resolve to display strings through the term resolver.
func New(executor Executor, terms TermResolver, multiValued, termMapped []string) *Service {
	return &Service{
		executor:    executor,
		terms:       terms,
		multiValued: toSet(multiValued),
		termMapped:  toSet(termMapped),
	}
}

func toSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Aggregate computes the reconciled facet for field under q.
func (s *Service) Aggregate(ctx context.Context, q query.Query, field string) (*result.Facet, error) {
	working := q.WithoutFilter(field)

	var (
		entries []result.FacetEntry
		err     error
	)
	if _, ok := s.multiValued[field]; ok {
		entries, err = s.groupEntries(ctx, working, field)
	} else {
		entries, err = s.bucketEntries(ctx, working, field)
	}
	if err != nil {
		return nil, err
	}

	entries = reconcile(entries, q.Filter(field))
	if _, ok := s.termMapped[field]; ok {
		if err := s.resolveDisplays(ctx, field, entries); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Display < entries[j].Display
	})

	return &result.Facet{Query: q, Field: field, Entries: entries}, nil
}

// bucketEntries runs the single-valued shape and reads the FACET
// aggregation named after the field.
func (s *Service) bucketEntries(ctx context.Context, q query.Query, field string) ([]result.FacetEntry, error) {
	payload, err := s.executor.Execute(ctx, manticore.FacetBucketSQL(q, field))
	if err != nil {
		return nil, err
	}
	res, err := manticore.Decode[struct{}](payload)
	if err != nil {
		return nil, err
	}

	agg, ok := res.Aggregations[field]
	if !ok {
		return nil, nil
	}
	entries := make([]result.FacetEntry, 0, len(agg.Buckets))
	seen := make(map[string]struct{}, len(agg.Buckets))
	for _, b := range agg.Buckets {
		if _, dup := seen[string(b.Key)]; dup {
			continue
		}
		seen[string(b.Key)] = struct{}{}
		v, err := classify(field, b.Key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, result.FacetEntry{Display: v.Display(), Value: v, Count: b.DocCount})
	}
	return entries, nil
}

type groupRow struct {
	Term     json.RawMessage `json:"term"`
	DocCount uint64          `json:"doc_count"`
}

// groupEntries runs the multi-valued shape, which unrolls array attributes
// into one source row per element.
func (s *Service) groupEntries(ctx context.Context, q query.Query, field string) ([]result.FacetEntry, error) {
	payload, err := s.executor.Execute(ctx, manticore.FacetGroupSQL(q, field))
	if err != nil {
		return nil, err
	}
	res, err := manticore.Decode[groupRow](payload)
	if err != nil {
		return nil, err
	}

	entries := make([]result.FacetEntry, 0, len(res.Hits.Hits))
	seen := make(map[string]struct{}, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		row := hit.Source
		if _, dup := seen[string(row.Term)]; dup {
			continue
		}
		seen[string(row.Term)] = struct{}{}
		v, err := classify(field, row.Term)
		if err != nil {
			return nil, err
		}
		entries = append(entries, result.FacetEntry{Display: v.Display(), Value: v, Count: row.DocCount})
	}
	return entries, nil
}

// classify turns a raw bucket key into a filter value. The engine emits
// strings for text attributes and non-negative numbers for integers;
// anything else is a contract violation.
func classify(field string, raw json.RawMessage) (query.Value, error) {
	var v query.Value
	if err := v.UnmarshalJSON(raw); err != nil {
		return query.Value{}, fmt.Errorf("%w: field %q key %s", domain.ErrUnexpectedFacetValue, field, raw)
	}
	return v, nil
}

// resolveDisplays replaces integer ids with their display strings. Ids the
// resolver does not know keep their decimal rendering.
func (s *Service) resolveDisplays(ctx context.Context, field string, entries []result.FacetEntry) error {
	ids := make([]uint64, 0, len(entries))
	for _, e := range entries {
		if id, ok := e.Value.Int(); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	names, err := s.terms.Resolve(ctx, field, ids)
	if err != nil {
		return err
	}
	for i := range entries {
		if id, ok := entries[i].Value.Int(); ok {
			if name, found := names[id]; found {
				entries[i].Display = name
			}
		}
	}
	return nil
}

// reconcile appends zero-count entries for selected values the backend
// dropped, so a selection never disappears from its own facet.
func reconcile(entries []result.FacetEntry, selected []query.Value) []result.FacetEntry {
	for _, v := range selected {
		present := false
		for _, e := range entries {
			if e.Value.Compare(v) == 0 {
				present = true
				break
			}
		}
		if !present {
			entries = append(entries, result.FacetEntry{Display: v.Display(), Value: v, Count: 0})
		}
	}
	return entries
}
