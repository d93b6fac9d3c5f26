package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/authui/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRouter(t *testing.T, opts config.Options) *Router {
	t.Helper()
	cfg := &Config{
		UpstreamURL: "http://app:3000",
		AuthUIURL:   "http://authui:8082",
	}
	return NewRouter(cfg, config.Resolve(opts), discardLogger())
}

func TestRouter_Target(t *testing.T) {
	router := setupTestRouter(t, config.Options{})

	tests := []struct {
		name     string
		method   string
		path     string
		wantURL  string
		wantAuth bool
	}{
		{"oauth login", http.MethodGet, "/oauth/github/login", "http://authui:8082", true},
		{"oauth callback", http.MethodGet, "/oauth/github/callback", "http://authui:8082", true},
		{"avatar", http.MethodGet, "/avatar/abc.png", "http://authui:8082", true},
		{"auth ui config", http.MethodGet, "/api/auth-ui/config", "http://authui:8082", true},
		{"register", http.MethodPost, "/api/auth-ui/register", "http://authui:8082", true},
		{"current user", http.MethodGet, "/api/me", "http://authui:8082", true},
		{"sign-in page", http.MethodGet, "/auth/sign-in", "http://authui:8082", true},
		{"sign-up page", http.MethodGet, "/auth/sign-up", "http://authui:8082", true},
		{"reset page", http.MethodGet, "/auth/reset", "http://authui:8082", true},
		{"profile page", http.MethodGet, "/auth/profile", "http://authui:8082", true},
		{"sign-out", http.MethodGet, "/auth/sign-out", "http://authui:8082", true},
		{"root", http.MethodGet, "/", "http://app:3000", false},
		{"app page", http.MethodGet, "/dashboard", "http://app:3000", false},
		{"app api", http.MethodPost, "/api/orders", "http://app:3000", false},
		{"unknown auth subpath", http.MethodGet, "/auth/other", "http://app:3000", false},
		{"prefix without slash", http.MethodGet, "/oauthx", "http://app:3000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			gotURL, gotAuth := router.Target(req)
			if gotURL != tt.wantURL {
				t.Errorf("Target() url = %q, want %q", gotURL, tt.wantURL)
			}
			if gotAuth != tt.wantAuth {
				t.Errorf("Target() authTraffic = %v, want %v", gotAuth, tt.wantAuth)
			}
		})
	}
}

func TestRouter_CustomAuthPages(t *testing.T) {
	router := setupTestRouter(t, config.Options{
		Routes: config.RouteOptions{SignIn: "/login", SignUp: "/join"},
	})

	tests := []struct {
		path string
		want bool
	}{
		{"/login", true},
		{"/join", true},
		{"/auth/sign-in", false},
		{"/auth/profile", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := router.IsAuthTraffic(tt.path); got != tt.want {
				t.Errorf("IsAuthTraffic(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
