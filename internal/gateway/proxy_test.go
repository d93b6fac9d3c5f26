package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/authui/internal/config"
	"github.com/authui/internal/guard"
)

// backend records the last request it received
type backend struct {
	server *httptest.Server
	name   string
	last   *http.Request
	body   string
}

func newBackend(t *testing.T, name string) *backend {
	t.Helper()
	b := &backend{name: name}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.last = r
		b.body = string(data)
		w.Header().Set("X-Backend", name)
		w.Header().Set("Connection", "close")
		if strings.HasSuffix(r.URL.Path, "/login") {
			http.SetCookie(w, &http.Cookie{Name: "JWT", Value: "token"})
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(name))
	}))
	t.Cleanup(b.server.Close)
	return b
}

func setupTestProxy(t *testing.T, authEnabled bool, opts config.Options) (*Proxy, *backend, *backend) {
	t.Helper()
	upstream := newBackend(t, "upstream")
	authui := newBackend(t, "authui")

	cfg := &Config{
		UpstreamURL: upstream.server.URL,
		AuthUIURL:   authui.server.URL,
		JWTSecret:   "test-secret",
		AuthEnabled: authEnabled,
	}
	authCfg := config.Resolve(opts)
	logger := discardLogger()
	router := NewRouter(cfg, authCfg, logger)
	return NewProxy(router, guard.New(authCfg), cfg, logger), upstream, authui
}

func sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token := createTestJWT(t, "test-secret", jwt.MapClaims{
		"user": map[string]interface{}{"id": "github_123"},
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	return &http.Cookie{Name: jwtCookieName, Value: token}
}

func TestProxy_HealthCheck(t *testing.T) {
	proxy, upstream, _ := setupTestProxy(t, true, config.Options{})

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/api/health", nil)
			w := httptest.NewRecorder()

			proxy.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type application/json, got %q", ct)
			}
			if upstream.last != nil {
				t.Error("health check must not reach upstream")
			}
		})
	}
}

func TestProxy_HealthCheck_Body(t *testing.T) {
	proxy, _, _ := setupTestProxy(t, false, config.Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	proxy.ServeHTTP(w, req)

	expectedBody := `{"status":"healthy","service":"gateway"}`
	if w.Body.String() != expectedBody {
		t.Errorf("expected body %q, got %q", expectedBody, w.Body.String())
	}
}

func TestProxy_Guard(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		accept       string
		signedIn     bool
		wantStatus   int
		wantLocation string
		wantBackend  string
	}{
		{
			name:         "anonymous page load redirects to sign-in",
			method:       http.MethodGet,
			path:         "/dashboard",
			accept:       "text/html",
			wantStatus:   http.StatusFound,
			wantLocation: "/auth/sign-in?redirect=%2Fdashboard",
		},
		{
			name:         "anonymous root redirects without continuation",
			method:       http.MethodGet,
			path:         "/",
			accept:       "text/html",
			wantStatus:   http.StatusFound,
			wantLocation: "/auth/sign-in",
		},
		{
			name:       "anonymous API call is unauthorized",
			method:     http.MethodGet,
			path:       "/api/orders",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "anonymous form post is unauthorized",
			method:     http.MethodPost,
			path:       "/orders",
			accept:     "text/html",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:        "signed-in page load is forwarded",
			method:      http.MethodGet,
			path:        "/dashboard",
			accept:      "text/html",
			signedIn:    true,
			wantStatus:  http.StatusOK,
			wantBackend: "upstream",
		},
		{
			name:        "auth page always goes to authui",
			method:      http.MethodGet,
			path:        "/auth/sign-in",
			accept:      "text/html",
			wantStatus:  http.StatusOK,
			wantBackend: "authui",
		},
		{
			name:        "signed-in auth page is left to authui",
			method:      http.MethodGet,
			path:        "/auth/sign-in",
			accept:      "text/html",
			signedIn:    true,
			wantStatus:  http.StatusOK,
			wantBackend: "authui",
		},
		{
			name:        "oauth callback goes to authui",
			method:      http.MethodGet,
			path:        "/oauth/github/callback",
			wantStatus:  http.StatusOK,
			wantBackend: "authui",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proxy, _, _ := setupTestProxy(t, true, config.Options{})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.signedIn {
				req.AddCookie(sessionCookie(t))
			}
			w := httptest.NewRecorder()
			proxy.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantLocation != "" && w.Header().Get("Location") != tt.wantLocation {
				t.Errorf("Location = %q, want %q", w.Header().Get("Location"), tt.wantLocation)
			}
			if tt.wantBackend != "" && w.Header().Get("X-Backend") != tt.wantBackend {
				t.Errorf("served by %q, want %q", w.Header().Get("X-Backend"), tt.wantBackend)
			}
		})
	}
}

func TestProxy_UnauthorizedBody(t *testing.T) {
	proxy, _, _ := setupTestProxy(t, true, config.Options{})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	proxy.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["redirect"] != "/auth/sign-in?redirect=%2Freports" {
		t.Errorf("redirect = %q", body["redirect"])
	}
}

func TestProxy_AuthDisabledStillGuards(t *testing.T) {
	proxy, upstream, _ := setupTestProxy(t, false, config.Options{})

	// A session cookie is ignored when sessions are switched off
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(sessionCookie(t))
	w := httptest.NewRecorder()
	proxy.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected status %d, got %d", http.StatusFound, w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/auth/sign-in?redirect=%2Fsecret" {
		t.Errorf("Location = %q", loc)
	}
	if upstream.last != nil {
		t.Error("protected request reached upstream")
	}

	// Auth pages stay reachable
	signIn := httptest.NewRequest(http.MethodGet, "/auth/sign-in", nil)
	w = httptest.NewRecorder()
	proxy.ServeHTTP(w, signIn)
	if w.Code != http.StatusOK || w.Header().Get("X-Backend") != "authui" {
		t.Errorf("sign-in: status %d from %q", w.Code, w.Header().Get("X-Backend"))
	}
}

func TestProxy_AuthDisabledWithoutMiddlewareForwards(t *testing.T) {
	proxy, upstream, _ := setupTestProxy(t, false, config.Options{Middleware: config.DisabledMiddleware()})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	proxy.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if upstream.last == nil || upstream.last.URL.Path != "/dashboard" {
		t.Error("request was not forwarded upstream")
	}
}

func TestProxy_MiddlewareDisabled(t *testing.T) {
	proxy, _, _ := setupTestProxy(t, true, config.Options{Middleware: config.DisabledMiddleware()})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	proxy.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestProxy_ForwardsRequest(t *testing.T) {
	proxy, upstream, _ := setupTestProxy(t, false, config.Options{Middleware: config.DisabledMiddleware()})

	req := httptest.NewRequest(http.MethodPost, "/api/orders?page=2", strings.NewReader(`{"item":"book"}`))
	req.Host = "shop.example.com"
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("Keep-Alive", "timeout=5")
	req.Header.Set("Referer", "https://elsewhere.example/")
	w := httptest.NewRecorder()
	proxy.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	got := upstream.last
	if got == nil {
		t.Fatal("upstream received nothing")
	}
	if got.Method != http.MethodPost || got.URL.Path != "/api/orders" || got.URL.RawQuery != "page=2" {
		t.Errorf("forwarded %s %s?%s", got.Method, got.URL.Path, got.URL.RawQuery)
	}
	if upstream.body != `{"item":"book"}` {
		t.Errorf("body = %q", upstream.body)
	}
	if got.Host != "shop.example.com" {
		t.Errorf("Host = %q, want the original host", got.Host)
	}
	if xff := got.Header.Get("X-Forwarded-For"); xff != "203.0.113.7" {
		t.Errorf("X-Forwarded-For = %q, want first hop only", xff)
	}
	if got.Header.Get("Keep-Alive") != "" {
		t.Error("hop-by-hop header was forwarded")
	}
	if got.Header.Get("X-Forwarded-Proto") != "http" {
		t.Errorf("X-Forwarded-Proto = %q", got.Header.Get("X-Forwarded-Proto"))
	}
	if w.Header().Get("Connection") != "" {
		t.Error("hop-by-hop response header was copied")
	}
}

func TestProxy_OAuthLoginRemembersOrigin(t *testing.T) {
	proxy, _, authui := setupTestProxy(t, true, config.Options{})

	req := httptest.NewRequest(http.MethodGet, "/oauth/github/login?from=%2Fdashboard", nil)
	req.Host = "gateway.local"
	req.Header.Set("X-Forwarded-Host", "app.example.com")
	w := httptest.NewRecorder()
	proxy.ServeHTTP(w, req)

	if authui.last == nil || authui.last.Host != "app.example.com" {
		t.Fatalf("authui saw host %v", authui.last)
	}

	var origin *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == originCookieName {
			origin = c
		}
	}
	if origin == nil || origin.Value != "app.example.com" {
		t.Fatalf("origin cookie = %v", origin)
	}

	// The callback arrives without X-Forwarded-Host
	callback := httptest.NewRequest(http.MethodGet, "/oauth/github/callback?code=abc", nil)
	callback.Host = "gateway.local"
	callback.AddCookie(origin)
	proxy.ServeHTTP(httptest.NewRecorder(), callback)

	if authui.last.Host != "app.example.com" {
		t.Errorf("callback Host = %q, want remembered origin", authui.last.Host)
	}
}

func TestProxy_UpstreamDown(t *testing.T) {
	proxy, upstream, _ := setupTestProxy(t, false, config.Options{Middleware: config.DisabledMiddleware()})
	upstream.server.Close()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	proxy.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected status %d, got %d", http.StatusBadGateway, w.Code)
	}
}
