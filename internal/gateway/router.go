package gateway

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/authui/internal/apipaths"
	"github.com/authui/internal/config"
)

// Router decides whether a request belongs to the authui server or to
// the upstream application
type Router struct {
	authUIURL   string
	upstreamURL string
	authPages   map[string]bool
	logger      *slog.Logger
}

// NewRouter creates a router for the configured auth pages
func NewRouter(cfg *Config, authCfg config.Config, logger *slog.Logger) *Router {
	pages := map[string]bool{}
	for _, p := range []string{
		authCfg.Routes.SignIn,
		authCfg.Routes.SignUp,
		authCfg.Routes.SignOut,
		authCfg.Routes.Profile,
		authCfg.Routes.Reset,
	} {
		if p != "" {
			pages[p] = true
		}
	}
	return &Router{
		authUIURL:   cfg.AuthUIURL,
		upstreamURL: cfg.UpstreamURL,
		authPages:   pages,
		logger:      logger,
	}
}

// Target returns the base URL for the request and whether it is auth traffic
func (r *Router) Target(req *http.Request) (baseURL string, authTraffic bool) {
	path := req.URL.Path
	if r.IsAuthTraffic(path) {
		r.logger.Debug("router: auth route", "path", path, "target", r.authUIURL)
		return r.authUIURL, true
	}
	r.logger.Debug("router: upstream route", "path", path, "target", r.upstreamURL)
	return r.upstreamURL, false
}

// IsAuthTraffic reports whether path is served by authui: the OAuth and
// avatar handlers, the auth UI API, the current-user endpoint and the
// configured auth pages
func (r *Router) IsAuthTraffic(path string) bool {
	switch {
	case strings.HasPrefix(path, apipaths.OAuthPrefix):
		return true
	case strings.HasPrefix(path, apipaths.AvatarPrefix):
		return true
	case strings.HasPrefix(path, apipaths.AuthUIPrefix):
		return true
	case path == apipaths.Me:
		return true
	default:
		return r.authPages[path]
	}
}
