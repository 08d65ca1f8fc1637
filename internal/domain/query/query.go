// Package query holds the immutable search query value types.
package query

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

type valueKind uint8

const (
	kindString valueKind = iota
	kindInt
)

// Value is a single facet filter value: either a string or an unsigned
// integer. The two variants are closed; nothing else is representable.
type Value struct {
	kind valueKind
	str  string
	num  uint64
}

// StringValue creates a string-variant Value.
func StringValue(s string) Value { return Value{kind: kindString, str: s} }

// IntValue creates an integer-variant Value.
func IntValue(i uint64) Value { return Value{kind: kindInt, num: i} }

// IsInt reports whether the value holds an integer.
func (v Value) IsInt() bool { return v.kind == kindInt }

// Str returns the string payload; ok is false for integer values.
func (v Value) Str() (s string, ok bool) { return v.str, v.kind == kindString }

// Int returns the integer payload; ok is false for string values.
func (v Value) Int() (i uint64, ok bool) { return v.num, v.kind == kindInt }

// Display returns a human-readable rendering: the string itself, or the
// decimal form of the integer.
func (v Value) Display() string {
	if v.kind == kindInt {
		return strconv.FormatUint(v.num, 10)
	}
	return v.str
}

// Compare defines a total order over values: all strings sort before all
// integers, strings ascending bytewise, integers ascending numerically.
// Used for canonical (deterministic) query compilation and sort tie-breaks.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		if v.kind == kindString {
			return -1
		}
		return 1
	}
	if v.kind == kindString {
		switch {
		case v.str < o.str:
			return -1
		case v.str > o.str:
			return 1
		}
		return 0
	}
	switch {
	case v.num < o.num:
		return -1
	case v.num > o.num:
		return 1
	}
	return 0
}

// MarshalJSON renders the value as a bare JSON string or number.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == kindInt {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts a JSON string or a non-negative JSON number.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("facet value must be a string or unsigned integer: %w", err)
	}
	*v = IntValue(n)
	return nil
}

// Query is an immutable search request: free text, selected collections,
// and facet filters. Mutating methods return copies.
type Query struct {
	text        string
	collections []string
	filters     map[string][]Value
}

// New creates a Query from free text and selected collection names. The
// collection set is canonical: sorted, deduplicated, blanks dropped.
func New(text string, collections ...string) Query {
	cols := append([]string(nil), collections...)
	sort.Strings(cols)
	out := cols[:0]
	for i, c := range cols {
		if c == "" || (i > 0 && c == cols[i-1]) {
			continue
		}
		out = append(out, c)
	}
	return Query{text: text, collections: out}
}

// Text returns the free-text term.
func (q Query) Text() string { return q.text }

// Collections returns the selected collection names in sorted order.
func (q Query) Collections() []string {
	return append([]string(nil), q.collections...)
}

// WithFilter returns a copy with the given values added to the filter set
// for field. Duplicates are dropped; empty value lists are a no-op.
func (q Query) WithFilter(field string, values ...Value) Query {
	if len(values) == 0 {
		return q
	}
	out := q.clone()
	merged := append(append([]Value(nil), out.filters[field]...), values...)
	out.filters[field] = canonicalValues(merged)
	return out
}

// WithoutFilter returns a copy with any filter on field removed.
func (q Query) WithoutFilter(field string) Query {
	out := q.clone()
	delete(out.filters, field)
	return out
}

// FilterFields returns the filtered field names in sorted order.
func (q Query) FilterFields() []string {
	fields := make([]string, 0, len(q.filters))
	for f := range q.filters {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Filter returns the canonical (sorted, deduplicated) value set for field.
func (q Query) Filter(field string) []Value {
	return append([]Value(nil), q.filters[field]...)
}

func (q Query) clone() Query {
	filters := make(map[string][]Value, len(q.filters))
	for f, vs := range q.filters {
		filters[f] = append([]Value(nil), vs...)
	}
	return Query{
		text:        q.text,
		collections: append([]string(nil), q.collections...),
		filters:     filters,
	}
}

// canonicalValues sorts by Value.Compare and removes duplicates.
func canonicalValues(vs []Value) []Value {
	sort.Slice(vs, func(i, j int) bool { return vs[i].Compare(vs[j]) < 0 })
	out := vs[:0]
	for i, v := range vs {
		if i == 0 || v.Compare(vs[i-1]) != 0 {
			out = append(out, v)
		}
	}
	return out
}

// jsonQuery is the wire form of a Query.
type jsonQuery struct {
	Text        string             `json:"text"`
	Collections []string           `json:"collections,omitempty"`
	Filters     map[string][]Value `json:"filters,omitempty"`
}

// MarshalJSON renders the query in its canonical wire form.
func (q Query) MarshalJSON() ([]byte, error) {
	filters := q.filters
	if len(filters) == 0 {
		filters = nil
	}
	return json.Marshal(jsonQuery{
		Text:        q.text,
		Collections: q.collections,
		Filters:     filters,
	})
}

// UnmarshalJSON decodes the wire form, canonicalizing collections and
// filter value sets regardless of their original order.
func (q *Query) UnmarshalJSON(data []byte) error {
	var raw jsonQuery
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := New(raw.Text, raw.Collections...)
	for field, vs := range raw.Filters {
		out = out.WithFilter(field, vs...)
	}
	*q = out
	return nil
}
