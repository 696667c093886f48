package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/rolloff-rates/internal/auth"
	"github.com/octobees/rolloff-rates/internal/cache"
	"github.com/octobees/rolloff-rates/internal/config"
	"github.com/octobees/rolloff-rates/internal/dto"
	"github.com/octobees/rolloff-rates/internal/entity"
	"github.com/octobees/rolloff-rates/internal/handler"
	"github.com/octobees/rolloff-rates/internal/ratesapi"
	"github.com/octobees/rolloff-rates/internal/render"
	"github.com/octobees/rolloff-rates/internal/repository"
	"github.com/octobees/rolloff-rates/internal/service"
)

type upstreamStub struct {
	posts int
}

func (u *upstreamStub) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	switch path {
	case "/companies":
		return []byte(`[{"id":"c1","name":"Acme"}]`), nil
	case "/cities":
		return []byte(`[{"city":"Austin","state":"TX"}]`), nil
	default:
		return []byte(`[]`), nil
	}
}

func (u *upstreamStub) Post(ctx context.Context, path string) ([]byte, error) {
	u.posts++
	return []byte(`{"message":"Scrape started."}`), nil
}

type leadsRepo struct{}

func (leadsRepo) Create(ctx context.Context, lead *entity.Lead) error {
	lead.ID = uuid.New()
	lead.CreatedAt = time.Now()
	return nil
}

func (leadsRepo) List(ctx context.Context, filter dto.LeadListFilter) ([]entity.Lead, error) {
	return []entity.Lead{}, nil
}

func (leadsRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	return nil, repository.ErrLeadNotFound
}

type usersRepo struct{}

func (usersRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, repository.ErrUserNotFound
}

func (usersRepo) Create(ctx context.Context, email, passwordHash, role string) (*entity.User, error) {
	return nil, repository.ErrEmailDuplicate
}

type testServer struct {
	e        *echo.Echo
	upstream *upstreamStub
	store    *cache.MemoryStore
	token    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	upstream := &upstreamStub{}
	store := cache.NewMemoryStore()
	client := ratesapi.NewClient(upstream, store, time.Hour)
	renderer, err := render.New(render.DefaultOptions())
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.GenerateToken("admin-1", "ops@example.com", auth.RoleAdmin)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	cities := service.NewCityService(client)
	cfg := &config.Config{
		StaticDir:       t.TempDir(),
		RateLimitLeads:  config.RateLimitConfig{Requests: 10, Interval: time.Minute},
		RateLimitScrape: config.RateLimitConfig{Requests: 1, Interval: time.Minute},
	}

	e := echo.New()
	e.Renderer = renderer
	Register(e, cfg, jwtManager, Handlers{
		Auth:    handler.NewAuthHandler(service.NewAuthService(usersRepo{}, jwtManager)),
		City:    handler.NewCityHandler(cities, renderer),
		Catalog: handler.NewCatalogHandler(cities),
		Leads:   handler.NewLeadHandler(service.NewLeadService(leadsRepo{}, nil, "US")),
		Admin:   handler.NewAdminHandler(service.NewAdminService(client, nil), service.NewLeadService(leadsRepo{}, nil, "US")),
	})

	if err := os.WriteFile(filepath.Join(cfg.StaticDir, "sitemap.xml"), []byte("<urlset></urlset>"), 0o644); err != nil {
		t.Fatalf("write static file: %v", err)
	}
	return &testServer{e: e, upstream: upstream, store: store, token: token}
}

func (s *testServer) do(method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestRegister_PublicRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := map[string]struct {
		method, target, body string
		expectCode           int
		wantBody             string
	}{
		"health":       {method: http.MethodGet, target: "/healthz", expectCode: http.StatusOK},
		"companies":    {method: http.MethodGet, target: "/api/companies", expectCode: http.StatusOK, wantBody: `"name":"Acme"`},
		"prices":       {method: http.MethodGet, target: "/api/prices", expectCode: http.StatusOK, wantBody: `"data":[]`},
		"cities":       {method: http.MethodGet, target: "/api/cities", expectCode: http.StatusOK, wantBody: `"city":"Austin"`},
		"city json":    {method: http.MethodGet, target: "/api/city/Austin?state=TX", expectCode: http.StatusOK, wantBody: `"unavailable":true`},
		"city page":    {method: http.MethodGet, target: "/dumpsters/austin/tx", expectCode: http.StatusNotFound, wantBody: "<h1>"},
		"fragment":     {method: http.MethodGet, target: "/fragments/form", expectCode: http.StatusOK, wantBody: `id="rolloff-rates-form"`},
		"lead invalid": {method: http.MethodPost, target: "/leads", body: `{"name":"Pat"}`, expectCode: http.StatusBadRequest, wantBody: `"missing":["email","phone"]`},
		"lead":         {method: http.MethodPost, target: "/leads", body: `{"name":"Pat","email":"pat@example.com","phone":"(201) 555-0123"}`, expectCode: http.StatusCreated},
		"login":        {method: http.MethodPost, target: "/auth/login", body: `{"email":"x@example.com","password":"nope"}`, expectCode: http.StatusUnauthorized},
		"static":       {method: http.MethodGet, target: "/sitemap.xml", expectCode: http.StatusOK, wantBody: "<urlset>"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := srv.do(tt.method, tt.target, tt.body, "")
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, rec.Code, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("expected body to contain %q, got %s", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRegister_AdminRoutes(t *testing.T) {
	srv := newTestServer(t)

	if rec := srv.do(http.MethodGet, "/admin/leads", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodGet, "/admin/leads", "", srv.token); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodGet, "/admin/leads/"+uuid.NewString(), "", srv.token); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown lead, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodPost, "/admin/static/generate", "", srv.token); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without generator, got %d", rec.Code)
	}

	// warm the cache, then scrape: upstream is called and the cache emptied
	srv.do(http.MethodGet, "/api/companies", "", "")
	if srv.store.Len() == 0 {
		t.Fatalf("expected cached companies")
	}
	rec := srv.do(http.MethodPost, "/admin/scrape", "", srv.token)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Scrape started.") {
		t.Fatalf("unexpected scrape response %d: %s", rec.Code, rec.Body.String())
	}
	if srv.upstream.posts != 1 || srv.store.Len() != 0 {
		t.Fatalf("expected one upstream post and an empty cache, got posts=%d len=%d", srv.upstream.posts, srv.store.Len())
	}
	if rec := srv.do(http.MethodPost, "/admin/scrape", "", srv.token); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected scrape rate limit, got %d", rec.Code)
	}

	if rec := srv.do(http.MethodPost, "/admin/cache/clear", "", srv.token); rec.Code != http.StatusOK {
		t.Fatalf("expected cache clear 200, got %d", rec.Code)
	}
}
