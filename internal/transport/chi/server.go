package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/synthsearch/internal/domain"
	"github.com/kailas-cloud/synthsearch/internal/logger"
	healthuc "github.com/kailas-cloud/synthsearch/internal/usecase/health"
)

// PathPrefix is the mount point of the data source API.
const PathPrefix = "/synth-search/poc"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ErrorResponse mirrors the FastAPI error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is the root route body.
type MessageResponse struct {
	Message string `json:"message"`
}

// DataSourceListResponse lists registered collections.
type DataSourceListResponse struct {
	Items []string `json:"items"`
}

// DataSourceMatch is one similarity hit.
type DataSourceMatch struct {
	Collection string  `json:"collection"`
	Score      float64 `json:"score"`
}

// DataSourceSearchResponse lists similarity hits, best first.
type DataSourceSearchResponse struct {
	Items []DataSourceMatch `json:"items"`
}

// DataSourceResponse carries a stored profile.
type DataSourceResponse struct {
	Collection string `json:"collection"`
	Context    string `json:"context"`
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Server exposes the query synthesis API.
type Server struct {
	greeter       Greeter
	sources       DataSources
	translator    Translator
	executor      Executor
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	greeter Greeter,
	sources DataSources,
	translator Translator,
	executor Executor,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		greeter:    greeter,
		sources:    sources,
		translator: translator,
		executor:   executor,
		health:     health,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrParse, http.StatusUnprocessableEntity),
		sentinelHandler(domain.ErrTranslation, http.StatusBadGateway),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusBadGateway),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway),
		sentinelHandler(domain.ErrConnection, http.StatusServiceUnavailable),
		sentinelHandler(domain.ErrStore, http.StatusInternalServerError),
	}
	return s
}

// Routes mounts every handler on r.
func (s *Server) Routes(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route(PathPrefix, func(r chi.Router) {
		r.Post("/add-data-source", s.AddDataSource)
		r.Get("/prompt-to-query", s.PromptToQuery)
		r.Get("/prompt-to-data", s.PromptToData)
		r.Get("/data-sources", s.ListDataSources)
		r.Get("/data-sources/search", s.SearchDataSources)
		r.Get("/data-sources/{name}", s.GetDataSource)
		r.Delete("/data-sources/{name}", s.DeleteDataSource)
	})
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Info("Sending ping prompt to language model")
	msg, err := s.greeter.Greet(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// AddDataSource handles POST /add-data-source.
func (s *Server) AddDataSource(w http.ResponseWriter, r *http.Request) {
	params, ok := requireParams(w, r, "db_name", "collection_or_table_name", "db_type")
	if !ok {
		return
	}

	text, err := s.sources.Register(r.Context(),
		params["db_name"], params["collection_or_table_name"], params["db_type"])
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.handleDomainError(w, r, err)
			return
		}
		logger.FromContext(r.Context()).Error("Data source registration failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, text)
}

// PromptToQuery handles GET /prompt-to-query.
func (s *Server) PromptToQuery(w http.ResponseWriter, r *http.Request) {
	params, ok := requireParams(w, r, "collection_name", "query_prompt", "library_name")
	if !ok {
		return
	}

	q, err := s.translator.Translate(r.Context(),
		params["collection_name"], params["query_prompt"], params["library_name"])
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// PromptToData handles GET /prompt-to-data.
func (s *Server) PromptToData(w http.ResponseWriter, r *http.Request) {
	params, ok := requireParams(w, r, "db_name", "collection_name", "query_prompt", "library_name")
	if !ok {
		return
	}

	res, err := s.executor.Run(r.Context(),
		params["db_name"], params["collection_name"], params["query_prompt"], params["library_name"])
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	docs := res.Documents
	if docs == nil {
		docs = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// ListDataSources handles GET /data-sources.
func (s *Server) ListDataSources(w http.ResponseWriter, r *http.Request) {
	names, err := s.sources.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, DataSourceListResponse{Items: names})
}

// SearchDataSources handles GET /data-sources/search.
func (s *Server) SearchDataSources(w http.ResponseWriter, r *http.Request) {
	params, ok := requireParams(w, r, "query_prompt")
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	matches, err := s.sources.Search(r.Context(), params["query_prompt"], limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]DataSourceMatch, len(matches))
	for i, m := range matches {
		items[i] = DataSourceMatch{Collection: m.Collection, Score: m.Score}
	}
	writeJSON(w, http.StatusOK, DataSourceSearchResponse{Items: items})
}

// GetDataSource handles GET /data-sources/{name}.
func (s *Server) GetDataSource(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	text, err := s.sources.Profile(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DataSourceResponse{Collection: name, Context: text})
}

// DeleteDataSource handles DELETE /data-sources/{name}.
func (s *Server) DeleteDataSource(w http.ResponseWriter, r *http.Request) {
	if err := s.sources.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

// requireParams reads required query parameters, answering 400 on the first missing one.
func requireParams(w http.ResponseWriter, r *http.Request, names ...string) (map[string]string, bool) {
	q := r.URL.Query()
	out := make(map[string]string, len(names))
	for _, name := range names {
		v := q.Get(name)
		if strings.TrimSpace(v) == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("query parameter %q is required", name))
			return nil, false
		}
		out[name] = v
	}
	return out, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}

	sentinels := []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrParse,
		domain.ErrTranslation,
		domain.ErrModelUnavailable,
		domain.ErrEmbeddingProvider,
		domain.ErrConnection,
		domain.ErrStore,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			if errors.Is(err, domain.ErrValidation) {
				return err.Error()
			}
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))

	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
