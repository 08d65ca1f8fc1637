// Package highlight decomposes backend highlight markup into typed spans.
package highlight

import "strings"

// Markers wrapped around matching substrings by the backend highlighter.
// Chosen to be unlikely to occur in document content.
const (
	OpenMarker  = "<trawl_em>"
	CloseMarker = "</trawl_em>"
)

// Span is one run of text with a uniform highlight state. Index is the
// 0-based ordinal of the span among highlighted spans in its text block,
// assigned left to right; it stays 0 on non-highlighted spans.
type Span struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"is_highlighted"`
	Index       int    `json:"index"`
}

// Decompose splits highlighted backend text into ordered spans. It never
// fails: malformed markup degrades to literal text, so the caller always
// gets a usable span list. An empty (after sanitation) input yields nil.
func Decompose(text string) []Span {
	spans := scan(sanitize(text))
	index := 0
	for i := range spans {
		if spans[i].Highlighted {
			spans[i].Index = index
			index++
		}
	}
	return spans
}

// HitCount returns the number of highlighted spans.
func HitCount(spans []Span) int {
	n := 0
	for _, s := range spans {
		if s.Highlighted {
			n++
		}
	}
	return n
}

// sanitize collapses mangled replacement-character runs left over from
// snippet truncation of multi-byte sequences, collapses doubled interior
// spaces, and trims surrounding whitespace.
func sanitize(text string) string {
	text = strings.ReplaceAll(text, "���", "�")
	text = strings.ReplaceAll(text, "��", "�")
	text = strings.ReplaceAll(text, "  ", " ")
	return strings.TrimSpace(text)
}

// scan walks the text once, tracking highlight depth. Nested openers are
// tolerated even though the backend never emits them; a closer without a
// matching opener is kept as literal text.
func scan(text string) []Span {
	if text == "" {
		return nil
	}
	// No opener at all: return the text verbatim, stray closers included.
	if !strings.Contains(text, OpenMarker) {
		return []Span{{Text: text}}
	}

	var (
		spans  []Span
		buffer strings.Builder
		depth  int
		pos    int
	)

	flush := func(highlighted bool) {
		if buffer.Len() == 0 {
			return
		}
		// Merge into the previous span when the state matches, so a stray
		// literal closer or repeated markers cannot fragment the output.
		if n := len(spans); n > 0 && spans[n-1].Highlighted == highlighted {
			spans[n-1].Text += buffer.String()
		} else {
			spans = append(spans, Span{Text: buffer.String(), Highlighted: highlighted})
		}
		buffer.Reset()
	}

	for pos < len(text) {
		open := strings.Index(text[pos:], OpenMarker)
		closing := strings.Index(text[pos:], CloseMarker)
		if open < 0 && closing < 0 {
			break
		}

		// Consume the nearer marker.
		isOpen := closing < 0 || (open >= 0 && open < closing)
		markerPos := pos
		if isOpen {
			markerPos += open
		} else {
			markerPos += closing
		}

		buffer.WriteString(text[pos:markerPos])
		flush(depth > 0)

		if isOpen {
			depth++
			pos = markerPos + len(OpenMarker)
			continue
		}
		pos = markerPos + len(CloseMarker)
		if depth > 0 {
			depth--
		} else {
			// No matching opener: the closer is document content.
			buffer.WriteString(CloseMarker)
		}
	}

	if pos < len(text) {
		buffer.WriteString(text[pos:])
	}
	// Unbalanced openers leave depth > 0; the tail is then highlighted.
	flush(depth > 0)

	return spans
}
