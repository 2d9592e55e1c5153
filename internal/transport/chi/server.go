// Package chi is the thin HTTP adapter over the search and health
// services: route registration, parameter parsing, and error mapping.
package chi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/calder-labs/prizedex/internal/domain"
	"github.com/calder-labs/prizedex/internal/domain/search/intent"
	healthuc "github.com/calder-labs/prizedex/internal/usecase/health"
	searchuc "github.com/calder-labs/prizedex/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search API.
type Server struct {
	search *searchuc.Service
	health *healthuc.Service
	logger *zap.Logger

	defaultPageSize int
	maxPageSize     int

	errorHandlers []errorHandler
}

// NewServer creates the HTTP server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		search:          search,
		health:          health,
		logger:          logger,
		defaultPageSize: intent.DefaultPageSize,
		maxPageSize:     intent.MaxPageSize,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest),
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests),
	}
	return s
}

// WithPagination overrides the default and maximum page sizes.
func (s *Server) WithPagination(defaultSize, maxSize int) *Server {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.handleWelcome)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/search/name", s.handleSearchName)
	r.Get("/search/category", s.handleSearchCategory)
	r.Get("/search/year", s.handleSearchYear)
	r.Get("/search/motivation", s.handleSearchMotivation)
	r.Get("/search", s.handleSearch)
}

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Prize Search API!",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// handleSearchName handles GET /search/name?q=&fuzzy=&page=&size=.
// fuzzy defaults to true; whether fuzzy means edit-distance matching or
// substring containment is a deployment-level choice.
func (s *Server) handleSearchName(w http.ResponseWriter, r *http.Request) {
	fuzzy := true
	if v := r.URL.Query().Get("fuzzy"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "fuzzy must be a boolean")
			return
		}
		fuzzy = parsed
	}

	in, err := intent.NewName(r.URL.Query().Get("q"), fuzzy)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.execute(w, r, in)
}

// handleSearchCategory handles GET /search/category?q=&page=&size=&sort_by=.
func (s *Server) handleSearchCategory(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("q")

	var in intent.Intent
	var err error
	if sortBy := r.URL.Query().Get("sort_by"); sortBy != "" {
		if category == "" {
			writeError(w, http.StatusBadRequest, "category is required")
			return
		}
		in, err = intent.NewComposite("", category, "", sortBy)
	} else {
		in, err = intent.NewCategory(category)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.execute(w, r, in)
}

// handleSearchYear handles GET /search/year?q= for an exact year and
// GET /search/year?start=&end= for an inclusive range. A request with
// only one of start/end is a malformed range, not open-ended.
func (s *Server) handleSearchYear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	var in intent.Intent
	switch {
	case q != "":
		year, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be an integer")
			return
		}
		in, err = intent.NewYear(year)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}

	case start != "" && end != "":
		from, err := strconv.Atoi(start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be an integer")
			return
		}
		to, err := strconv.Atoi(end)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be an integer")
			return
		}
		in, err = intent.NewYearRange(from, to)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}

	case start != "" || end != "":
		writeError(w, http.StatusBadRequest, "year range requires both start and end")
		return

	default:
		writeError(w, http.StatusBadRequest, "q or start/end is required")
		return
	}

	s.execute(w, r, in)
}

// handleSearchMotivation handles GET /search/motivation?q=&page=&size=.
func (s *Server) handleSearchMotivation(w http.ResponseWriter, r *http.Request) {
	in, err := intent.NewMotivation(r.URL.Query().Get("q"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.execute(w, r, in)
}

// handleSearch handles GET /search?name=&category=&year=&sort=field:order.
// Omitted constraints are unconstrained; no constraints matches everything.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	in, err := intent.NewComposite(
		params.Get("name"),
		params.Get("category"),
		params.Get("year"),
		params.Get("sort"),
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.execute(w, r, in)
}

// execute applies pagination, runs the query, and writes the result.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, in intent.Intent) {
	in, err := s.applyPagination(r, in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	prizes, err := s.search.Search(r.Context(), clientKey(r), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if prizes == nil {
		prizes = []domain.Prize{}
	}
	writeJSON(w, http.StatusOK, prizes)
}

// applyPagination parses page/size query params. Values below 1 are
// rejected rather than clamped.
func (s *Server) applyPagination(r *http.Request, in intent.Intent) (intent.Intent, error) {
	page := 1
	size := s.defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return intent.Intent{}, errInvalid("page must be an integer")
		}
		page = parsed
	}
	if v := r.URL.Query().Get("size"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return intent.Intent{}, errInvalid("size must be an integer")
		}
		size = parsed
	}
	if size > s.maxPageSize {
		return intent.Intent{}, errInvalid("size exceeds maximum of " + strconv.Itoa(s.maxPageSize))
	}

	return in.WithPagination(page, size)
}

func errInvalid(msg string) error {
	return &invalidError{msg: msg}
}

// invalidError carries a message and unwraps to domain.ErrInvalidQuery.
type invalidError struct {
	msg string
}

func (e *invalidError) Error() string { return e.msg }
func (e *invalidError) Unwrap() error { return domain.ErrInvalidQuery }

// clientKey identifies the requester for rate limiting: the API key when
// present, otherwise the remote address without port.
func clientKey(r *http.Request) string {
	if key := r.Header.Get("X-Api-Key"); key != "" {
		return key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("request error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// safeDomainMessage returns the full message for client errors and the
// bare sentinel text otherwise, without exposing internals.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidQuery) || errors.Is(err, domain.ErrRateLimited) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrIndexNotFound,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
