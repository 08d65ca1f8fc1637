// Package document holds the document identity value type.
package document

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ID identifies one document version: a (collection, content hash) pair.
// Content-addressed and never mutated once issued.
type ID struct {
	collection  string
	contentHash string
}

// NewID validates and creates an ID.
func NewID(collection, contentHash string) (ID, error) {
	if collection == "" {
		return ID{}, fmt.Errorf("collection is required")
	}
	if contentHash == "" {
		return ID{}, fmt.Errorf("content hash is required")
	}
	return ID{collection: collection, contentHash: contentHash}, nil
}

// Collection returns the collection name.
func (id ID) Collection() string { return id.collection }

// ContentHash returns the content hash.
func (id ID) ContentHash() string { return id.contentHash }

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return id.collection == "" && id.contentHash == "" }

// jsonID is the wire form of an ID.
type jsonID struct {
	Collection  string `json:"collection"`
	ContentHash string `json:"content_hash"`
}

// MarshalJSON renders the ID as an object.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonID{Collection: id.collection, ContentHash: id.contentHash})
}

// UnmarshalJSON decodes and validates the object form.
func (id *ID) UnmarshalJSON(data []byte) error {
	var raw jsonID
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewID(raw.Collection, raw.ContentHash)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Encode returns a compact URL-safe token for embedding in navigable state.
// Round-trips through ParseID.
func (id ID) Encode() string {
	data, _ := json.Marshal(jsonID{Collection: id.collection, ContentHash: id.contentHash})
	return base64.RawURLEncoding.EncodeToString(data)
}

// ParseID decodes a token produced by Encode.
func ParseID(token string) (ID, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ID{}, fmt.Errorf("decode document id: %w", err)
	}
	var raw jsonID
	if err := json.Unmarshal(data, &raw); err != nil {
		return ID{}, fmt.Errorf("parse document id: %w", err)
	}
	return NewID(raw.Collection, raw.ContentHash)
}
