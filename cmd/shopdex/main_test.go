package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopdex/internal/config"
	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
)

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestWideEventMiddleware_SetsRequestID(t *testing.T) {
	h := chiMiddleware.RequestID(wideEventMiddleware(zap.NewNop())(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) },
	)))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestBuild_MemoryDriver(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	content := `
- id: m1
  title: Wireless Mouse
  price: 2999
  rating: 4.3
  tags: [mouse, wireless]
- id: k1
  title: Wireless Keyboard
  price: 4999
  rating: 4.1
  tags: [keyboard, wireless]
`
	if err := os.WriteFile(seed, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{
		HTTP:     config.HTTPConfig{Port: 8080},
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Catalog:  config.CatalogConfig{Cache: config.CacheConfig{Enabled: true}},
	}
	cfg.ApplyDefaults()

	ctx := context.Background()
	a, err := build(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer a.close()

	if _, err := a.writer.Seed(ctx, seed); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	res, err := a.engine.Search(ctx, "wireless mouse")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) == 0 || res[0].ID() != "m1" {
		t.Errorf("Search() = %v", res)
	}

	// Writes through the catalog service invalidate the snapshot cache.
	if _, err := a.writer.Upsert(ctx, "m2", domprod.Attrs{Title: "Gaming Mouse", Rating: 5, Tags: []string{"mouse"}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	res, _ = a.engine.Search(ctx, "gaming")
	if len(res) != 1 || res[0].ID() != "m2" {
		t.Errorf("Search(gaming) = %v", res)
	}

	if err := a.engine.TrackBehavior(ctx, "u1", "m1", "purchase"); err != nil {
		t.Fatalf("TrackBehavior: %v", err)
	}
	recs, err := a.engine.Recommendations(ctx, "u1")
	if err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
	for _, r := range recs {
		if r.ID() == "m1" {
			t.Error("personalized recommendations must skip interacted products")
		}
	}

	if report := a.health.Check(ctx); report.Status != "ok" {
		t.Errorf("health = %+v", report)
	}
}

func TestBuild_UnknownDriver(t *testing.T) {
	cfg := config.Config{Database: config.DatabaseConfig{Driver: "mongo"}}
	if _, err := build(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error")
	}
}
