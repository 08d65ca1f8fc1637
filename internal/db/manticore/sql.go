package manticore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trawlhq/trawl/internal/domain/document"
	"github.com/trawlhq/trawl/internal/domain/highlight"
	"github.com/trawlhq/trawl/internal/domain/query"
)

// FacetLimit caps facet aggregations at the top buckets by document count.
const FacetLimit = 21

// pagesTable holds one row per extracted text page; doc_meta (see
// FromClause) holds one row per document with denormalized filename and
// type attributes.
const pagesTable = "doc_pages"

// FromClause joins text pages with per-document metadata.
const FromClause = `
    FROM doc_pages
    LEFT JOIN doc_meta
    ON doc_pages.collection = doc_meta.collection
    AND doc_pages.content_hash = doc_meta.content_hash
`

// OptionsClause bounds engine-side query execution time.
const OptionsClause = "OPTION agent_query_timeout=60000,max_query_time=60000"

// QuoteString renders a SQL string literal, doubling embedded quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// escapeMatchText neutralizes the engine's field-selector operator in
// user-entered match text.
func escapeMatchText(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "@", "\\@")
}

// valueLiteral renders a facet value as a SQL literal: quoted for strings,
// verbatim for integers.
func valueLiteral(v query.Value) string {
	if i, ok := v.Int(); ok {
		return strconv.FormatUint(i, 10)
	}
	s, _ := v.Str()
	return QuoteString(s)
}

// WhereClause compiles the query into a WHERE clause: a MATCH predicate,
// a collection membership clause when the query selects collections, and
// one membership clause per non-empty facet filter, joined with AND.
// Output is canonical — collection names, field names and value sets are
// emitted in sorted order, so semantically equal queries compile to
// byte-identical text. The compiled text doubles as the cache fingerprint
// input. Extra terms are appended verbatim after the filter clauses.
func WhereClause(q query.Query, extra ...string) string {
	terms := []string{fmt.Sprintf(
		"\n        WHERE MATCH(%s, %s)\n    ",
		QuoteString(escapeMatchText(q.Text())), pagesTable,
	)}

	if cols := q.Collections(); len(cols) > 0 {
		literals := make([]string, len(cols))
		for i, c := range cols {
			literals[i] = QuoteString(c)
		}
		// Qualified: both joined tables carry a collection column.
		terms = append(terms, fmt.Sprintf(
			"doc_pages.collection IN (%s)", strings.Join(literals, ", ")))
	}

	for _, field := range q.FilterFields() {
		values := q.Filter(field)
		if len(values) == 0 {
			continue
		}
		literals := make([]string, len(values))
		for i, v := range values {
			literals[i] = valueLiteral(v)
		}
		terms = append(terms, fmt.Sprintf("%s IN (%s)", field, strings.Join(literals, ", ")))
	}
	terms = append(terms, extra...)

	return strings.Join(terms, "\n        AND ")
}

// snippetHighlight trims matches to one short snippet for result lists.
func snippetHighlight(field string) string {
	return fmt.Sprintf(`HIGHLIGHT({
            limit=400,
            limit_words=100,
            limit_snippets=1,
            html_strip_mode=strip,
            before_match=%s,
            after_match=%s,
            around=50
        }, %s)`,
		QuoteString(highlight.OpenMarker), QuoteString(highlight.CloseMarker), field)
}

// fullHighlight marks every match in the full page text.
func fullHighlight() string {
	return fmt.Sprintf(`highlight({
                limit=0,
                force_all_words=1,
                html_strip_mode=retain,
                around=0,
                before_match=%s,
                after_match=%s,
                force_snippets=1
            })`,
		QuoteString(highlight.OpenMarker), QuoteString(highlight.CloseMarker))
}

// ResultsPageSQL compiles the grouped result-list query for one window of
// documents with snippet highlighting.
func ResultsPageSQL(q query.Query, limit, offset uint64) string {
	return fmt.Sprintf(`
    SELECT doc_pages.collection AS collection,
        content_hash,
        group_concat(page_id) AS page_ids,
        doc_meta.filenames AS filenames,
        %s AS highlight_text,
        %s AS highlight_filenames,
        doc_meta.file_types AS file_types
    %s
    %s
    GROUP BY content_hash
    LIMIT %d OFFSET %d
    %s
    ;`,
		snippetHighlight("page_text"), snippetHighlight("filenames"),
		FromClause, WhereClause(q), limit, offset, OptionsClause)
}

// HitCountSQL compiles the distinct-document count query.
func HitCountSQL(q query.Query) string {
	return fmt.Sprintf(`
        SELECT count(distinct content_hash) AS total_count
        %s
        %s
        %s
        ;`, FromClause, WhereClause(q), OptionsClause)
}

// FacetBucketSQL compiles the single-valued facet shape: a zero-row SELECT
// carrying a FACET aggregation capped at the top buckets.
func FacetBucketSQL(q query.Query, field string) string {
	return fmt.Sprintf(`
        SELECT content_hash
        %s
        %s
        LIMIT 0
        %s
        FACET %s DISTINCT content_hash ORDER BY count(distinct content_hash) DESC LIMIT %d
        ;`, FromClause, WhereClause(q), OptionsClause, field, FacetLimit)
}

// FacetGroupSQL compiles the multi-valued facet shape: GROUP BY unrolls
// array attributes into one row per element.
func FacetGroupSQL(q query.Query, field string) string {
	return fmt.Sprintf(`
        SELECT groupby() term, count(distinct content_hash) AS doc_count
        %s
        %s
        GROUP BY %s
        ORDER BY doc_count DESC LIMIT %d
        %s
        ;`, FromClause, WhereClause(q), field, FacetLimit, OptionsClause)
}

// SourceHitsSQL compiles the per-page full-text hit query for one document
// page from one extraction source.
func SourceHitsSQL(id document.ID, find, extractor string, pageID uint32) string {
	return fmt.Sprintf(`
            SELECT
                extractor,
                page_id,
                %s AS text
            FROM %s
            WHERE content_hash = %s AND collection = %s AND extractor = %s AND page_id = %d
            AND MATCH(%s)
            LIMIT 1000
            %s
        ;`,
		fullHighlight(), pagesTable,
		QuoteString(id.ContentHash()), QuoteString(id.Collection()),
		QuoteString(extractor), pageID,
		QuoteString(escapeMatchText(find)), OptionsClause)
}

// SourceHitCountsSQL compiles the all-pages hit query for one document.
func SourceHitCountsSQL(id document.ID, find string) string {
	return fmt.Sprintf(`
        SELECT
            extractor,
            page_id,
            %s AS text
        FROM %s
        WHERE content_hash = %s AND collection = %s
        AND MATCH(%s)
        LIMIT 1000
        %s
        ;`,
		fullHighlight(), pagesTable,
		QuoteString(id.ContentHash()), QuoteString(id.Collection()),
		QuoteString(escapeMatchText(find)), OptionsClause)
}

// TextSourcesSQL compiles the extraction-source summary query for one
// document: per extractor, the page range it produced.
func TextSourcesSQL(id document.ID) string {
	return fmt.Sprintf(`
        SELECT extractor, min(page_id) AS min_page, max(page_id) AS max_page
        FROM %s
        WHERE content_hash = %s AND collection = %s
        GROUP BY extractor
        LIMIT 1000
        %s
        ;`,
		pagesTable,
		QuoteString(id.ContentHash()), QuoteString(id.Collection()),
		OptionsClause)
}
