// Package trawl provides an embedded Go client for the trawl document
// search gateway: deterministic query compilation, a content-addressed
// result cache, overlap-fetch pagination and facet aggregation over a
// Manticore-compatible backend, without running the HTTP server.
//
//	client, _ := trawl.New(ctx,
//	    trawl.WithBackend("http://127.0.0.1:9308"),
//	    trawl.WithRedis("127.0.0.1:6379", ""),
//	)
//	defer client.Close()
//
//	q := query.New("subpoena", "enron").
//	    WithFilter("file_types", query.IntValue(3))
//	page, _ := client.Search(ctx, q, 0)
package trawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trawlhq/trawl/internal/db"
	"github.com/trawlhq/trawl/internal/db/manticore"
	dbRedis "github.com/trawlhq/trawl/internal/db/redis"
	"github.com/trawlhq/trawl/internal/domain/document"
	"github.com/trawlhq/trawl/internal/domain/query"
	"github.com/trawlhq/trawl/internal/domain/result"
	"github.com/trawlhq/trawl/internal/repository/querycache"
	termsrepo "github.com/trawlhq/trawl/internal/repository/terms"
	documentuc "github.com/trawlhq/trawl/internal/usecase/document"
	facetuc "github.com/trawlhq/trawl/internal/usecase/facet"
	searchuc "github.com/trawlhq/trawl/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the trawl embedded entry point.
type Client struct {
	store     db.Store
	terms     *termsrepo.Repo
	searchSvc *searchuc.Service
	facetSvc  *facetuc.Service
	docSvc    *documentuc.Service
}

// New creates a Client and connects to the backend and, when configured,
// the cache store. The provided context bounds the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o(cfg)
	}

	if cfg.backendURL == "" {
		return nil, errors.New("trawl: backend URL required (use WithBackend)")
	}

	backend, err := manticore.NewClient(manticore.Config{
		BaseURL: cfg.backendURL,
		Timeout: cfg.queryTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("trawl: %w", err)
	}

	var store db.Store
	if len(cfg.cacheAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Username: cfg.cacheUsername,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("trawl: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("trawl: cache store not ready: %w", err)
		}
		store = s
	}

	var executor searchuc.Executor = directExecutor{backend: backend}
	if store != nil {
		executor = querycache.New(backend, store, querycache.Options{
			Timeout:    cfg.cacheTimeout,
			MaxEntries: cfg.cacheEntries,
		}, querycache.Metrics{}, cfg.logger)
	}

	c := &Client{
		store:     store,
		searchSvc: searchuc.New(executor, cfg.pageSize),
		docSvc:    documentuc.New(executor),
	}
	if store != nil {
		c.terms = termsrepo.New(store)
	}
	c.facetSvc = facetuc.New(executor, facetResolver{repo: c.terms},
		cfg.multiValuedFields, cfg.termMappedFields)
	return c, nil
}

// Close releases the cache store connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Search fetches one page of results for q.
func (c *Client) Search(ctx context.Context, q query.Query, page int) (result.Page, error) {
	return c.searchSvc.FetchPage(ctx, q, page)
}

// Count returns the total number of distinct matching documents.
func (c *Client) Count(ctx context.Context, q query.Query) (uint64, error) {
	return c.searchSvc.HitCount(ctx, q)
}

// Facet aggregates field values over q.
func (c *Client) Facet(ctx context.Context, q query.Query, field string) (*result.Facet, error) {
	return c.facetSvc.Aggregate(ctx, q, field)
}

// TextSources lists a document's extraction sources.
func (c *Client) TextSources(ctx context.Context, id document.ID) ([]result.TextSource, error) {
	return c.docSvc.TextSources(ctx, id)
}

// SourceHits returns highlighted text for one page of one source.
func (c *Client) SourceHits(
	ctx context.Context, id document.ID, find, extractor string, pageID uint32,
) ([]result.SourceHit, error) {
	return c.docSvc.SourceHits(ctx, id, find, extractor, pageID)
}

// SourceHitCounts returns per-page match counts across a document.
func (c *Client) SourceHitCounts(ctx context.Context, id document.ID, find string) ([]result.SourceHitCount, error) {
	return c.docSvc.SourceHitCounts(ctx, id, find)
}

// PutTerms seeds display strings for integer term ids of one field.
// Requires a configured cache store.
func (c *Client) PutTerms(ctx context.Context, field string, terms map[uint64]string) error {
	if c.terms == nil {
		return errors.New("trawl: term tables require a cache store (use WithRedis)")
	}
	return c.terms.Put(ctx, field, terms)
}

// directExecutor bypasses the cache when no store is configured.
type directExecutor struct {
	backend *manticore.Client
}

func (d directExecutor) Execute(ctx context.Context, sql string) ([]byte, error) {
	return d.backend.SearchSQL(ctx, sql)
}

// facetResolver adapts the optional term repository; without a store
// every id keeps its decimal display form.
type facetResolver struct {
	repo *termsrepo.Repo
}

func (r facetResolver) Resolve(ctx context.Context, field string, ids []uint64) (map[uint64]string, error) {
	if r.repo == nil {
		return map[uint64]string{}, nil
	}
	return r.repo.Resolve(ctx, field, ids)
}
