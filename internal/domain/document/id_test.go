package document

import (
	"encoding/json"
	"testing"
)

func TestNewID_Validation(t *testing.T) {
	if _, err := NewID("", "abc"); err == nil {
		t.Error("expected error for empty collection")
	}
	if _, err := NewID("enron", ""); err == nil {
		t.Error("expected error for empty content hash")
	}
	id, err := NewID("enron", "deadbeef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Collection() != "enron" || id.ContentHash() != "deadbeef" {
		t.Errorf("unexpected fields: %q %q", id.Collection(), id.ContentHash())
	}
}

func TestID_EncodeParseRoundTrip(t *testing.T) {
	tests := []struct {
		collection, hash string
	}{
		{"enron", "deadbeef"},
		{"court-records", "0a1b2c3d4e5f"},
		{"with space", "hash/with+chars="},
	}
	for _, tc := range tests {
		id, err := NewID(tc.collection, tc.hash)
		if err != nil {
			t.Fatalf("NewID(%q, %q): %v", tc.collection, tc.hash, err)
		}
		parsed, err := ParseID(id.Encode())
		if err != nil {
			t.Fatalf("ParseID(%q): %v", id.Encode(), err)
		}
		if parsed != id {
			t.Errorf("round trip mismatch: got %+v, want %+v", parsed, id)
		}
	}
}

func TestParseID_Invalid(t *testing.T) {
	for _, token := range []string{
		"not base64 !!",
		"bm90IGpzb24", // valid base64, not JSON
		"e30",         // empty object fails validation
		"eyJjb2xsZWN0aW9uIjoieCJ9", // missing content_hash
	} {
		if _, err := ParseID(token); err == nil {
			t.Errorf("ParseID(%q): expected error", token)
		}
	}
}

func TestID_JSONRoundTrip(t *testing.T) {
	id, _ := NewID("enron", "deadbeef")
	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"collection":"enron","content_hash":"deadbeef"}`
	if string(data) != want {
		t.Errorf("marshal: got %s, want %s", data, want)
	}

	var back ID
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != id {
		t.Errorf("round trip mismatch: got %+v", back)
	}
}

func TestID_IsZero(t *testing.T) {
	var zero ID
	if !zero.IsZero() {
		t.Error("zero ID should report IsZero")
	}
	id, _ := NewID("a", "b")
	if id.IsZero() {
		t.Error("populated ID should not report IsZero")
	}
}
