package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopdex/internal/domain"
	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/shopdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shopdex/internal/usecase/search"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// CatalogWriter applies catalog writes.
type CatalogWriter interface {
	Upsert(ctx context.Context, id string, attrs domprod.Attrs) (bool, error)
	Delete(ctx context.Context, id string) error
}

// Server implements ServerInterface.
type Server struct {
	engine        searchuc.Engine
	catalog       CatalogWriter
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server. catalog can be nil, which disables
// the write routes.
func NewServer(engine searchuc.Engine, catalog CatalogWriter, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		engine:  engine,
		catalog: catalog,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeProductNotFound),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrCollaboratorUnavailable,
			http.StatusServiceUnavailable, ErrorResponseCodeCatalogUnavailable),
		sentinelHandler(domain.ErrBehaviorTrackingDisabled,
			http.StatusNotImplemented, ErrorResponseCodeBehaviorTrackingDisabled),
	}
	return s
}

// SearchProducts handles GET /api/v1/search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request, params SearchProductsParams) {
	res, err := s.engine.Search(r.Context(), params.Q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rankedToResponse(res))
}

// GetSimilarProducts handles GET /api/v1/products/{id}/similar.
func (s *Server) GetSimilarProducts(w http.ResponseWriter, r *http.Request, id string) {
	res, err := s.engine.SimilarProducts(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rankedToResponse(res))
}

// GetRecommendations handles GET /api/v1/recommendations.
func (s *Server) GetRecommendations(w http.ResponseWriter, r *http.Request, params GetRecommendationsParams) {
	var userID string
	if params.UserID != nil {
		userID = *params.UserID
	}
	res, err := s.engine.Recommendations(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rankedToResponse(res))
}

// TrackEvent handles POST /api/v1/products/{id}/events.
func (s *Server) TrackEvent(w http.ResponseWriter, r *http.Request, id string) {
	var req TrackEventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.engine.TrackBehavior(r.Context(), req.UserID, id, behavior.Action(req.Action)); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// UpsertProduct handles PUT /api/v1/products/{id}.
func (s *Server) UpsertProduct(w http.ResponseWriter, r *http.Request, id string) {
	if s.catalog == nil {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeBadRequest, "catalog is read-only")
		return
	}

	var req UpsertProductRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := s.catalog.Upsert(r.Context(), id, domprod.Attrs{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Rating:      req.Rating,
		Tags:        req.Tags,
		Stock:       req.Stock,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, UpsertProductResponse{ID: id, Created: created})
}

// DeleteProduct handles DELETE /api/v1/products/{id}.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request, id string) {
	if s.catalog == nil {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeBadRequest, "catalog is read-only")
		return
	}
	if err := s.catalog.Delete(r.Context(), id); err != nil {
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

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// WriteBadRequest is the ErrorHandlerFunc for parameter binding failures.
func WriteBadRequest(w http.ResponseWriter, _ *http.Request, err error) {
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid parameter "+pe.ParamName)
		return
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid request")
}

func rankedToResponse(res []result.Result) RankedListResponse {
	items := make([]RankedProduct, len(res))
	for i, r := range res {
		items[i] = RankedProduct{ID: r.ID(), Score: r.Score()}
	}
	return RankedListResponse{Items: items, Count: len(items)}
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
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrCollaboratorUnavailable,
		domain.ErrBehaviorTrackingDisabled,
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

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		log = log.With(zap.String("request_id", reqID))
	}
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
