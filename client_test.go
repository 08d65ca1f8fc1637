package trawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trawlhq/trawl/internal/domain/query"
)

func TestNew_RequiresBackend(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error for missing backend URL")
	}
}

func TestClient_SearchWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"hits": {"total": 1, "hits": [
				{"_score": 100, "_source": {
					"collection": "enron",
					"content_hash": "deadbeef",
					"page_ids": "1",
					"filenames": "memo.pdf",
					"highlight_text": "a match",
					"highlight_filenames": "",
					"file_types": [3]
				}}
			]}
		}`))
	}))
	defer srv.Close()

	client, err := New(context.Background(), WithBackend(srv.URL), WithPageSize(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	page, err := client.Search(context.Background(), query.New("memo"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ContentHash != "deadbeef" {
		t.Errorf("items: %+v", page.Items)
	}
	if page.Items[0].Title != "memo.pdf" {
		t.Errorf("Title = %q", page.Items[0].Title)
	}
}

func TestClient_CountWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"total":1,"hits":[{"_source":{"total_count":7}}]}}`))
	}))
	defer srv.Close()

	client, err := New(context.Background(), WithBackend(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	n, err := client.Count(context.Background(), query.New("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("Count = %d, want 7", n)
	}
}

func TestClient_PutTermsRequiresStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := New(context.Background(), WithBackend(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.PutTerms(context.Background(), "file_types", map[uint64]string{3: "PDF"}); err == nil {
		t.Fatal("expected error without a cache store")
	}
}
