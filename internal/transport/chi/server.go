// Package chi exposes the search gateway over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/trawlhq/trawl/internal/domain"
	"github.com/trawlhq/trawl/internal/domain/document"
	"github.com/trawlhq/trawl/internal/domain/query"
	documentuc "github.com/trawlhq/trawl/internal/usecase/document"
	facetuc "github.com/trawlhq/trawl/internal/usecase/facet"
	healthuc "github.com/trawlhq/trawl/internal/usecase/health"
	searchuc "github.com/trawlhq/trawl/internal/usecase/search"
)

// errorCode is the machine-readable error identifier in error responses.
type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeInvalidQuery       errorCode = "invalid_query"
	codeUnknownFacetField  errorCode = "unknown_facet_field"
	codeDocumentNotFound   errorCode = "document_not_found"
	codeBackendUnavailable errorCode = "backend_unavailable"
	codeBackendMalformed   errorCode = "backend_malformed"
	codeInternalError      errorCode = "internal_error"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the search use cases.
type Server struct {
	search        *searchuc.Service
	facets        *facetuc.Service
	documents     *documentuc.Service
	health        *healthuc.Service
	facetFields   map[string]struct{}
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. facetFields is the allow-list of
// attributes clients may facet on; field names flow into compiled SQL, so
// anything outside the list is rejected before it reaches the compiler.
func NewServer(
	search *searchuc.Service,
	facets *facetuc.Service,
	documents *documentuc.Service,
	health *healthuc.Service,
	facetFields []string,
	logger *zap.Logger,
) *Server {
	allowed := make(map[string]struct{}, len(facetFields))
	for _, f := range facetFields {
		allowed[f] = struct{}{}
	}
	s := &Server{
		search:      search,
		facets:      facets,
		documents:   documents,
		health:      health,
		facetFields: allowed,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusBadGateway, codeBackendUnavailable),
		sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway, codeBackendMalformed),
		sentinelHandler(domain.ErrUnexpectedFacetValue, http.StatusBadGateway, codeBackendMalformed),
	}
	return s
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r chirouter.Router) {
	r.Post("/api/search", s.SearchPage)
	r.Post("/api/search/count", s.SearchCount)
	r.Post("/api/facets/{field}", s.FacetField)
	r.Get("/api/documents/{docID}/sources", s.DocumentSources)
	r.Post("/api/documents/{docID}/hits", s.DocumentHits)
	r.Post("/api/documents/{docID}/hit-counts", s.DocumentHitCounts)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// searchRequest is the body of POST /api/search and /api/search/count.
type searchRequest struct {
	Query query.Query `json:"query"`
	Page  int         `json:"page"`
}

// SearchPage handles POST /api/search.
func (s *Server) SearchPage(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	page, err := s.search.FetchPage(r.Context(), req.Query, req.Page)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// SearchCount handles POST /api/search/count.
func (s *Server) SearchCount(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	total, err := s.search.HitCount(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]uint64{"total": total})
}

// facetRequest is the body of POST /api/facets/{field}.
type facetRequest struct {
	Query query.Query `json:"query"`
}

// FacetField handles POST /api/facets/{field}.
func (s *Server) FacetField(w http.ResponseWriter, r *http.Request) {
	field := chirouter.URLParam(r, "field")
	if _, ok := s.facetFields[field]; !ok {
		writeError(w, http.StatusBadRequest, codeUnknownFacetField, "unknown facet field: "+field)
		return
	}

	var req facetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	facet, err := s.facets.Aggregate(r.Context(), req.Query, field)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, facet)
}

// DocumentSources handles GET /api/documents/{docID}/sources.
func (s *Server) DocumentSources(w http.ResponseWriter, r *http.Request) {
	id, ok := s.docID(w, r)
	if !ok {
		return
	}

	sources, err := s.documents.TextSources(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

// hitsRequest is the body of POST /api/documents/{docID}/hits.
type hitsRequest struct {
	Find      string `json:"find"`
	Extractor string `json:"extractor"`
	PageID    uint32 `json:"page_id"`
}

// DocumentHits handles POST /api/documents/{docID}/hits.
func (s *Server) DocumentHits(w http.ResponseWriter, r *http.Request) {
	id, ok := s.docID(w, r)
	if !ok {
		return
	}

	var req hitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Find == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "find term is required")
		return
	}

	hits, err := s.documents.SourceHits(r.Context(), id, req.Find, req.Extractor, req.PageID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

// hitCountsRequest is the body of POST /api/documents/{docID}/hit-counts.
type hitCountsRequest struct {
	Find string `json:"find"`
}

// DocumentHitCounts handles POST /api/documents/{docID}/hit-counts.
func (s *Server) DocumentHitCounts(w http.ResponseWriter, r *http.Request) {
	id, ok := s.docID(w, r)
	if !ok {
		return
	}

	var req hitCountsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Find == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "find term is required")
		return
	}

	counts, err := s.documents.SourceHitCounts(r.Context(), id, req.Find)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// docID parses the {docID} URL parameter. Writes the error response and
// returns ok=false when the identifier does not decode.
func (s *Server) docID(w http.ResponseWriter, r *http.Request) (document.ID, bool) {
	id, err := document.ParseID(chirouter.URLParam(r, "docID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid document id")
		return document.ID{}, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrDocumentNotFound,
		domain.ErrBackendUnavailable,
		domain.ErrMalformedResponse,
		domain.ErrUnexpectedFacetValue,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
