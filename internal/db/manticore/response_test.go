package manticore

import (
	"errors"
	"testing"

	"github.com/trawlhq/trawl/internal/domain"
)

func TestDecode_Hits(t *testing.T) {
	type row struct {
		Collection  string `json:"collection"`
		ContentHash string `json:"content_hash"`
	}

	payload := []byte(`{
		"took": 12,
		"timed_out": false,
		"hits": {
			"total": 2,
			"total_relation": "eq",
			"hits": [
				{"_score": 1563, "_source": {"collection": "enron", "content_hash": "aa"}},
				{"_score": 1201, "_source": {"collection": "enron", "content_hash": "bb"}}
			]
		}
	}`)

	res, err := Decode[row](payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Took != 12 || res.Hits.Total != 2 {
		t.Errorf("envelope fields: took=%d total=%d", res.Took, res.Hits.Total)
	}
	if len(res.Hits.Hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(res.Hits.Hits))
	}
	if res.Hits.Hits[0].Source.ContentHash != "aa" || res.Hits.Hits[0].Score != 1563 {
		t.Errorf("first hit: %+v", res.Hits.Hits[0])
	}
}

func TestDecode_Aggregations(t *testing.T) {
	payload := []byte(`{
		"hits": {"hits": [], "total": 0},
		"aggregations": {
			"extractor": {
				"buckets": [
					{"key": "pdftotext", "doc_count": 40, "count(distinct content_hash)": 17},
					{"key": 3, "doc_count": 9, "count(distinct content_hash)": 5}
				]
			}
		}
	}`)

	res, err := Decode[struct{}](payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agg, ok := res.Aggregations["extractor"]
	if !ok {
		t.Fatal("aggregation missing")
	}
	if len(agg.Buckets) != 2 {
		t.Fatalf("buckets = %d", len(agg.Buckets))
	}
	if string(agg.Buckets[0].Key) != `"pdftotext"` || agg.Buckets[0].DocCount != 17 {
		t.Errorf("first bucket: %+v", agg.Buckets[0])
	}
	if string(agg.Buckets[1].Key) != "3" || agg.Buckets[1].RowCount != 9 {
		t.Errorf("second bucket: %+v", agg.Buckets[1])
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode[struct{}]([]byte("not json"))
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}
