package query

import (
	"encoding/json"
	"reflect"
	"testing"
)

// --- Value tests ---

func TestValue_Variants(t *testing.T) {
	s := StringValue("pdf")
	if s.IsInt() {
		t.Error("string value should not report IsInt")
	}
	if v, ok := s.Str(); !ok || v != "pdf" {
		t.Errorf("Str() = %q, %v", v, ok)
	}
	if _, ok := s.Int(); ok {
		t.Error("Int() on string value should not be ok")
	}

	i := IntValue(42)
	if !i.IsInt() {
		t.Error("int value should report IsInt")
	}
	if v, ok := i.Int(); !ok || v != 42 {
		t.Errorf("Int() = %d, %v", v, ok)
	}
}

func TestValue_Display(t *testing.T) {
	if got := StringValue("email").Display(); got != "email" {
		t.Errorf("Display() = %q", got)
	}
	if got := IntValue(7).Display(); got != "7" {
		t.Errorf("Display() = %q", got)
	}
}

func TestValue_Compare_StringsBeforeInts(t *testing.T) {
	tests := []struct {
		a, b Value
		want int
	}{
		{StringValue("a"), StringValue("b"), -1},
		{StringValue("b"), StringValue("a"), 1},
		{StringValue("a"), StringValue("a"), 0},
		{IntValue(1), IntValue(2), -1},
		{IntValue(2), IntValue(1), 1},
		{IntValue(5), IntValue(5), 0},
		{StringValue("zzz"), IntValue(0), -1},
		{IntValue(0), StringValue("zzz"), 1},
	}
	for _, tc := range tests {
		if got := tc.a.Compare(tc.b); got != tc.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestValue_JSON(t *testing.T) {
	data, err := json.Marshal(StringValue("pdf"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"pdf"` {
		t.Errorf("string value marshal = %s", data)
	}

	data, err = json.Marshal(IntValue(3))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "3" {
		t.Errorf("int value marshal = %s", data)
	}

	var v Value
	if err := json.Unmarshal([]byte(`"docx"`), &v); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if s, ok := v.Str(); !ok || s != "docx" {
		t.Errorf("unmarshal string: got %v", v)
	}

	if err := json.Unmarshal([]byte("12"), &v); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if i, ok := v.Int(); !ok || i != 12 {
		t.Errorf("unmarshal number: got %v", v)
	}

	for _, bad := range []string{"-1", "1.5", "true", "[1]", "{}"} {
		if err := json.Unmarshal([]byte(bad), &v); err == nil {
			t.Errorf("unmarshal %s: expected error", bad)
		}
	}
}

// --- Query tests ---

func TestQuery_CollectionsSorted(t *testing.T) {
	q := New("subpoena", "zeta", "alpha", "mid")
	want := []string{"alpha", "mid", "zeta"}
	if got := q.Collections(); !reflect.DeepEqual(got, want) {
		t.Errorf("Collections() = %v, want %v", got, want)
	}
}

func TestQuery_CollectionsCanonical(t *testing.T) {
	q := New("subpoena", "zeta", "", "alpha", "zeta")
	want := []string{"alpha", "zeta"}
	if got := q.Collections(); !reflect.DeepEqual(got, want) {
		t.Errorf("Collections() = %v, want %v", got, want)
	}
}

func TestQuery_WithFilter_SortsAndDedupes(t *testing.T) {
	q := New("x").WithFilter("file_types",
		IntValue(9), IntValue(3), IntValue(9), IntValue(1))

	got := q.Filter("file_types")
	want := []Value{IntValue(1), IntValue(3), IntValue(9)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

func TestQuery_WithFilter_Immutable(t *testing.T) {
	base := New("x").WithFilter("a", StringValue("one"))
	derived := base.WithFilter("a", StringValue("two"))

	if len(base.Filter("a")) != 1 {
		t.Errorf("base mutated: %v", base.Filter("a"))
	}
	if len(derived.Filter("a")) != 2 {
		t.Errorf("derived missing values: %v", derived.Filter("a"))
	}
}

func TestQuery_WithFilter_EmptyNoOp(t *testing.T) {
	q := New("x")
	if got := q.WithFilter("a"); len(got.FilterFields()) != 0 {
		t.Errorf("empty WithFilter added a field: %v", got.FilterFields())
	}
}

func TestQuery_WithoutFilter(t *testing.T) {
	q := New("x").
		WithFilter("a", StringValue("v")).
		WithFilter("b", IntValue(1))

	got := q.WithoutFilter("a")
	if len(got.Filter("a")) != 0 {
		t.Error("filter on a should be removed")
	}
	if len(got.Filter("b")) != 1 {
		t.Error("filter on b should remain")
	}
	if len(q.Filter("a")) != 1 {
		t.Error("original query mutated")
	}
}

func TestQuery_FilterFieldsSorted(t *testing.T) {
	q := New("x").
		WithFilter("zeta", IntValue(1)).
		WithFilter("alpha", IntValue(2))

	want := []string{"alpha", "zeta"}
	if got := q.FilterFields(); !reflect.DeepEqual(got, want) {
		t.Errorf("FilterFields() = %v, want %v", got, want)
	}
}

func TestQuery_JSONRoundTrip_Canonicalizes(t *testing.T) {
	raw := `{
		"text": "fraud",
		"collections": ["zeta", "alpha"],
		"filters": {"file_types": [9, 3, 3], "domain": ["b.com", "a.com"]}
	}`

	var q Query
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if q.Text() != "fraud" {
		t.Errorf("Text() = %q", q.Text())
	}
	if got := q.Collections(); !reflect.DeepEqual(got, []string{"alpha", "zeta"}) {
		t.Errorf("Collections() = %v", got)
	}
	if got := q.Filter("file_types"); !reflect.DeepEqual(got, []Value{IntValue(3), IntValue(9)}) {
		t.Errorf("file_types = %v", got)
	}

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Query
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal marshaled form: %v", err)
	}
	if !reflect.DeepEqual(back.Filter("domain"), q.Filter("domain")) {
		t.Errorf("round trip mismatch: %v vs %v", back.Filter("domain"), q.Filter("domain"))
	}
}

func TestQuery_MarshalOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(New("plain"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"text":"plain"}` {
		t.Errorf("marshal = %s", data)
	}
}
