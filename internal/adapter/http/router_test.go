package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/amlsynth/internal/adapter/http/handler"
	apimiddleware "github.com/iho/amlsynth/internal/adapter/http/middleware"
	"github.com/iho/amlsynth/internal/domain"
	"github.com/iho/amlsynth/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("expected default registry in exposition")
	}
}

func TestNewRouter_RateLimiterBlocksExcessRuns(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1)
	}))

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", strings.NewReader(`{}`))
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post(); code != http.StatusCreated {
		t.Fatalf("expected first run to be created, got %d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second run to be throttled, got %d", code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/r1", nil)
	req.RemoteAddr = "1.2.3.4:1234"
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected reads not to be throttled, got %d", rec.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs/", strings.NewReader(`{"seed":5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.reserveCalled || !store.completeCalled {
		t.Fatalf("expected idempotency store to be used, got %+v", store)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/runs/",
		"GET /api/v1/runs/{id}",
		"GET /api/v1/runs/{id}/entries",
		"GET /api/v1/runs/{id}/accounts",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler: handler.NewHealthHandler(nil),
		RunHandler:    handler.NewRunHandler(stubRunService{}, usecase.GenerateOptions{}, zerolog.Nop()),
		Logger:        zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubRunService struct{}

func (stubRunService) CreateRun(ctx context.Context, opts usecase.GenerateOptions) (*domain.Dataset, error) {
	return &domain.Dataset{RunID: "r1", Seed: opts.Seed}, nil
}

func (stubRunService) GetRun(ctx context.Context, runID string) (*domain.Dataset, error) {
	return &domain.Dataset{RunID: runID}, nil
}

func (stubRunService) ListEntries(ctx context.Context, runID string, f usecase.EntryFilter) ([]domain.LedgerEntry, error) {
	return []domain.LedgerEntry{}, nil
}

func (stubRunService) ListAccounts(ctx context.Context, runID string) ([]*domain.Account, error) {
	return []*domain.Account{}, nil
}

type stubIdempotencyStore struct {
	reserveCalled  bool
	completeCalled bool
}

func (s *stubIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, []byte, error) {
	s.reserveCalled = true
	return true, nil, nil
}

func (s *stubIdempotencyStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.completeCalled = true
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
