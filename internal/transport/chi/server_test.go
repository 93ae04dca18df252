package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopdex/internal/domain"
	"github.com/kailas-cloud/shopdex/internal/domain/behavior"
	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/shopdex/internal/usecase/health"
)

// --- Mocks ---

type mockEngine struct {
	searchFn    func(ctx context.Context, q string) ([]result.Result, error)
	similarFn   func(ctx context.Context, id string) ([]result.Result, error)
	recommendFn func(ctx context.Context, userID string) ([]result.Result, error)
	trackFn     func(ctx context.Context, userID, productID string, action behavior.Action) error
}

func (m *mockEngine) Search(ctx context.Context, q string) ([]result.Result, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return nil, nil
}

func (m *mockEngine) SimilarProducts(ctx context.Context, id string) ([]result.Result, error) {
	if m.similarFn != nil {
		return m.similarFn(ctx, id)
	}
	return nil, nil
}

func (m *mockEngine) Recommendations(ctx context.Context, userID string) ([]result.Result, error) {
	if m.recommendFn != nil {
		return m.recommendFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockEngine) TrackBehavior(ctx context.Context, userID, productID string, action behavior.Action) error {
	if m.trackFn != nil {
		return m.trackFn(ctx, userID, productID, action)
	}
	return nil
}

type mockWriter struct {
	upsertFn func(ctx context.Context, id string, attrs domprod.Attrs) (bool, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockWriter) Upsert(ctx context.Context, id string, attrs domprod.Attrs) (bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, id, attrs)
	}
	return true, nil
}

func (m *mockWriter) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type openBreaker struct{}

func (openBreaker) Open() bool { return true }

func newTestRouter(engine *mockEngine, writer CatalogWriter, health *healthuc.Service) http.Handler {
	if health == nil {
		health = healthuc.New(nil, nil)
	}
	srv := NewServer(engine, writer, health, zap.NewNop())
	return HandlerWithOptions(srv, ServerOptions{
		BaseRouter:       chi.NewRouter(),
		ErrorHandlerFunc: WriteBadRequest,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) RankedListResponse {
	t.Helper()
	var resp RankedListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

// --- Tests ---

func TestSearchProducts_OK(t *testing.T) {
	var gotQuery string
	engine := &mockEngine{searchFn: func(_ context.Context, q string) ([]result.Result, error) {
		gotQuery = q
		return []result.Result{result.New("a", 2.5), result.New("b", 1)}, nil
	}}
	h := newTestRouter(engine, nil, nil)

	rr := do(t, h, http.MethodGet, "/api/v1/search?q=wireless+mouse+under+%2450", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if gotQuery != "wireless mouse under $50" {
		t.Errorf("query = %q", gotQuery)
	}
	resp := decodeList(t, rr)
	if resp.Count != 2 || resp.Items[0].ID != "a" || resp.Items[0].Score != 2.5 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSearchProducts_MissingQueryIsEmpty(t *testing.T) {
	h := newTestRouter(&mockEngine{}, nil, nil)

	rr := do(t, h, http.MethodGet, "/api/v1/search", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeList(t, rr)
	if resp.Count != 0 || resp.Items == nil {
		t.Errorf("expected empty non-nil list, got %+v", resp)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorResponseCode
	}{
		{"not found", fmt.Errorf("product %q: %w", "x", domain.ErrNotFound),
			http.StatusNotFound, ErrorResponseCodeProductNotFound},
		{"unavailable", fmt.Errorf("%w: list: boom", domain.ErrCollaboratorUnavailable),
			http.StatusServiceUnavailable, ErrorResponseCodeCatalogUnavailable},
		{"invalid", fmt.Errorf("bad: %w", domain.ErrInvalidInput),
			http.StatusBadRequest, ErrorResponseCodeValidationFailed},
		{"internal", errors.New("boom"),
			http.StatusInternalServerError, ErrorResponseCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{similarFn: func(context.Context, string) ([]result.Result, error) {
				return nil, tt.err
			}}
			h := newTestRouter(engine, nil, nil)

			rr := do(t, h, http.MethodGet, "/api/v1/products/p1/similar", "")
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			resp := decodeError(t, rr)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if tt.wantCode == ErrorResponseCodeInternalError && resp.Message != "internal error" {
				t.Errorf("internal message leaked: %q", resp.Message)
			}
		})
	}
}

func TestGetSimilarProducts_PassesID(t *testing.T) {
	var gotID string
	engine := &mockEngine{similarFn: func(_ context.Context, id string) ([]result.Result, error) {
		gotID = id
		return []result.Result{result.New("b", 0.5)}, nil
	}}
	h := newTestRouter(engine, nil, nil)

	rr := do(t, h, http.MethodGet, "/api/v1/products/kb-01/similar", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if gotID != "kb-01" {
		t.Errorf("id = %q", gotID)
	}
}

func TestGetRecommendations_UserID(t *testing.T) {
	var gotUser string
	engine := &mockEngine{recommendFn: func(_ context.Context, userID string) ([]result.Result, error) {
		gotUser = userID
		return []result.Result{result.New("a", 4.5)}, nil
	}}
	h := newTestRouter(engine, nil, nil)

	rr := do(t, h, http.MethodGet, "/api/v1/recommendations?user_id=u-1", "")
	if rr.Code != http.StatusOK || gotUser != "u-1" {
		t.Fatalf("status = %d, user = %q", rr.Code, gotUser)
	}

	rr = do(t, h, http.MethodGet, "/api/v1/recommendations", "")
	if rr.Code != http.StatusOK || gotUser != "" {
		t.Fatalf("anonymous: status = %d, user = %q", rr.Code, gotUser)
	}
}

func TestTrackEvent(t *testing.T) {
	var got struct {
		user, product string
		action        behavior.Action
	}
	engine := &mockEngine{trackFn: func(_ context.Context, userID, productID string, action behavior.Action) error {
		got.user, got.product, got.action = userID, productID, action
		return nil
	}}
	h := newTestRouter(engine, nil, nil)

	rr := do(t, h, http.MethodPost, "/api/v1/products/p1/events", `{"user_id":"u1","action":"purchase"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if got.user != "u1" || got.product != "p1" || got.action != behavior.Purchase {
		t.Errorf("got %+v", got)
	}
}

func TestTrackEvent_BadBody(t *testing.T) {
	h := newTestRouter(&mockEngine{}, nil, nil)

	rr := do(t, h, http.MethodPost, "/api/v1/products/p1/events", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestTrackEvent_Disabled(t *testing.T) {
	engine := &mockEngine{trackFn: func(context.Context, string, string, behavior.Action) error {
		return domain.ErrBehaviorTrackingDisabled
	}}
	h := newTestRouter(engine, nil, nil)

	rr := do(t, h, http.MethodPost, "/api/v1/products/p1/events", `{"user_id":"u1","action":"view"}`)
	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != ErrorResponseCodeBehaviorTrackingDisabled {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestUpsertProduct(t *testing.T) {
	var gotAttrs domprod.Attrs
	writer := &mockWriter{upsertFn: func(_ context.Context, id string, attrs domprod.Attrs) (bool, error) {
		gotAttrs = attrs
		return id == "new", nil
	}}
	h := newTestRouter(&mockEngine{}, writer, nil)

	body := `{"title":"Mouse","price":2999,"rating":4.2,"tags":["mouse"],"stock":3}`
	rr := do(t, h, http.MethodPut, "/api/v1/products/new", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if gotAttrs.Title != "Mouse" || gotAttrs.Price != 2999 || len(gotAttrs.Tags) != 1 {
		t.Errorf("attrs = %+v", gotAttrs)
	}

	rr = do(t, h, http.MethodPut, "/api/v1/products/old", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("replace status = %d", rr.Code)
	}
}

func TestUpsertProduct_Invalid(t *testing.T) {
	writer := &mockWriter{upsertFn: func(context.Context, string, domprod.Attrs) (bool, error) {
		return false, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}}
	h := newTestRouter(&mockEngine{}, writer, nil)

	rr := do(t, h, http.MethodPut, "/api/v1/products/p1", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestWriteRoutes_ReadOnly(t *testing.T) {
	h := newTestRouter(&mockEngine{}, nil, nil)

	if rr := do(t, h, http.MethodPut, "/api/v1/products/p1", `{}`); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT status = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, "/api/v1/products/p1", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d", rr.Code)
	}
}

func TestDeleteProduct(t *testing.T) {
	writer := &mockWriter{deleteFn: func(_ context.Context, id string) error {
		if id == "missing" {
			return domain.ErrNotFound
		}
		return nil
	}}
	h := newTestRouter(&mockEngine{}, writer, nil)

	if rr := do(t, h, http.MethodDelete, "/api/v1/products/p1", ""); rr.Code != http.StatusNoContent {
		t.Errorf("status = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, "/api/v1/products/missing", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing status = %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestRouter(&mockEngine{}, nil, nil)
	rr := do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}

	h = newTestRouter(&mockEngine{}, nil, healthuc.New(nil, openBreaker{}))
	rr = do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded status = %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(&mockEngine{}, nil, nil)
	rr := do(t, h, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestWriteBadRequest(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteBadRequest(rr, nil, &InvalidParamFormatError{ParamName: "q", Err: errors.New("bad")})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Message != "invalid parameter q" {
		t.Errorf("message = %q", resp.Message)
	}
}
