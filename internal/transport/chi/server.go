package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// maxBodyBytes bounds the POST /query body.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorResponseCodeBadRequest),
	}
	return s
}

// QueryTags handles GET /query_tags.
func (s *Server) QueryTags(w http.ResponseWriter, r *http.Request) {
	var hint string
	if err := runtime.BindQueryParameter("form", true, true, "hint", r.URL.Query(), &hint); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid format for parameter hint")
		return
	}
	var limit int
	if err := runtime.BindQueryParameter("form", true, true, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid format for parameter limit")
		return
	}
	if limit < 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "limit must not be negative")
		return
	}

	tags, err := s.search.MatchingTags(r.Context(), hint, limit)
	if err != nil {
		s.requestLogger(r).Error("tag autocomplete failed",
			zap.String("hint", hint),
			zap.Int("limit", limit),
			zap.Error(err),
		)
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Tags == nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "tags is required")
		return
	}

	q := query.New(req.Query, *req.Tags)
	docs, err := s.search.Search(r.Context(), q)
	if err != nil {
		text, hasText := q.Text()
		s.requestLogger(r).Error("document search failed",
			zap.String("mode", string(q.Mode())),
			zap.Bool("has_query", hasText),
			zap.String("query", text),
			zap.Strings("tags", q.Tags()),
			zap.Error(err),
		)
		s.handleDomainError(w, err)
		return
	}

	items := make([]DocumentPreview, len(docs))
	for i := range docs {
		items[i] = previewToResponse(docs[i])
	}
	writeJSON(w, http.StatusOK, QueryResponse{Documents: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return logpkg.FromContextOr(r.Context(), s.logger)
}

func previewToResponse(p domdoc.Preview) DocumentPreview {
	return DocumentPreview{
		UUID:  p.UUID(),
		Title: p.Title(),
		Tags:  p.Tags(),
		Short: p.Short(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
