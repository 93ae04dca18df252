package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode identifies an API error class.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest               ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized             ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed         ErrorResponseCode = "validation_failed"
	ErrorResponseCodeProductNotFound          ErrorResponseCode = "product_not_found"
	ErrorResponseCodeCatalogUnavailable       ErrorResponseCode = "catalog_unavailable"
	ErrorResponseCodeBehaviorTrackingDisabled ErrorResponseCode = "behavior_tracking_disabled"
	ErrorResponseCodeInternalError            ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// RankedProduct is one ranked entry.
type RankedProduct struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// RankedListResponse wraps a ranked list.
type RankedListResponse struct {
	Items []RankedProduct `json:"items"`
	Count int             `json:"count"`
}

// TrackEventRequest is the body of POST /api/v1/products/{id}/events.
type TrackEventRequest struct {
	UserID string `json:"user_id"`
	Action string `json:"action"`
}

// UpsertProductRequest is the body of PUT /api/v1/products/{id}.
type UpsertProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Rating      float64  `json:"rating"`
	Tags        []string `json:"tags"`
	Stock       int      `json:"stock"`
}

// UpsertProductResponse reports whether the product was new.
type UpsertProductResponse struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SearchProductsParams are the query parameters of GET /api/v1/search.
type SearchProductsParams struct {
	Q string `form:"q" json:"q"`
}

// GetRecommendationsParams are the query parameters of GET /api/v1/recommendations.
type GetRecommendationsParams struct {
	UserID *string `form:"user_id,omitempty" json:"user_id,omitempty"`
}

// ServerInterface is the set of HTTP operations.
type ServerInterface interface {
	// (GET /api/v1/search)
	SearchProducts(w http.ResponseWriter, r *http.Request, params SearchProductsParams)
	// (GET /api/v1/products/{id}/similar)
	GetSimilarProducts(w http.ResponseWriter, r *http.Request, id string)
	// (GET /api/v1/recommendations)
	GetRecommendations(w http.ResponseWriter, r *http.Request, params GetRecommendationsParams)
	// (POST /api/v1/products/{id}/events)
	TrackEvent(w http.ResponseWriter, r *http.Request, id string)
	// (PUT /api/v1/products/{id})
	UpsertProduct(w http.ResponseWriter, r *http.Request, id string)
	// (DELETE /api/v1/products/{id})
	DeleteProduct(w http.ResponseWriter, r *http.Request, id string)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ServerOptions configures HandlerWithOptions.
type ServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError is passed to ErrorHandlerFunc when a parameter
// fails to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

type wrapper struct {
	handler ServerInterface
	onError func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts si on the router in options.
func HandlerWithOptions(si ServerInterface, options ServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	onError := options.ErrorHandlerFunc
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wr := &wrapper{handler: si, onError: onError}

	r.Get("/api/v1/search", wr.searchProducts)
	r.Get("/api/v1/products/{id}/similar", wr.withProductID(si.GetSimilarProducts))
	r.Get("/api/v1/recommendations", wr.getRecommendations)
	r.Post("/api/v1/products/{id}/events", wr.withProductID(si.TrackEvent))
	r.Put("/api/v1/products/{id}", wr.withProductID(si.UpsertProduct))
	r.Delete("/api/v1/products/{id}", wr.withProductID(si.DeleteProduct))
	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)
	return r
}

func (wr *wrapper) searchProducts(w http.ResponseWriter, r *http.Request) {
	var params SearchProductsParams
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &params.Q); err != nil {
		wr.onError(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	wr.handler.SearchProducts(w, r, params)
}

func (wr *wrapper) getRecommendations(w http.ResponseWriter, r *http.Request) {
	var params GetRecommendationsParams
	if err := runtime.BindQueryParameter("form", true, false, "user_id", r.URL.Query(), &params.UserID); err != nil {
		wr.onError(w, r, &InvalidParamFormatError{ParamName: "user_id", Err: err})
		return
	}
	wr.handler.GetRecommendations(w, r, params)
}

func (wr *wrapper) withProductID(
	next func(w http.ResponseWriter, r *http.Request, id string),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			wr.onError(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
			return
		}
		next(w, r, id)
	}
}
