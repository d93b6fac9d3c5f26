package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/authui/internal/apipaths"
	"github.com/authui/internal/guard"
	"github.com/authui/internal/httputil"
)

const originCookieName = "_gateway_origin"

// hopByHopHeaders are not forwarded in either direction
var hopByHopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Proxy guards upstream requests and forwards everything to its target
type Proxy struct {
	router    *Router
	guard     *guard.Guard
	config    *Config
	transport http.RoundTripper
	logger    *slog.Logger
}

// NewProxy creates a proxy. A nil guard forwards every request.
func NewProxy(router *Router, g *guard.Guard, cfg *Config, logger *slog.Logger) *Proxy {
	return &Proxy{
		router:    router,
		guard:     g,
		config:    cfg,
		transport: http.DefaultTransport,
		logger:    logger,
	}
}

// ServeHTTP evaluates the guard, resolves the target and forwards the request
func (p *Proxy) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Handle gateway health check directly
	// Support both GET and HEAD methods (Docker healthcheck uses HEAD)
	if (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.URL.Path == apipaths.Health {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"gateway"}`))
		return
	}

	p.logger.DebugContext(req.Context(), "gateway: incoming request",
		"method", req.Method,
		"path", req.URL.Path,
		"host", req.Host,
		"has_cookie", req.Header.Get("Cookie") != "",
	)

	baseURL, authTraffic := p.router.Target(req)
	if !authTraffic && p.checkGuard(w, req) {
		return
	}

	p.forward(w, req, baseURL, authTraffic)
}

// checkGuard applies the route guard and reports whether it answered
// the request itself
func (p *Proxy) checkGuard(w http.ResponseWriter, req *http.Request) bool {
	if p.guard == nil {
		return false
	}

	path := req.URL.Path
	d := p.guard.Evaluate(path, p.config.Authenticated(req))
	switch d.Action {
	case guard.RedirectToSignIn:
		isPageLoad := req.Method == http.MethodGet || req.Method == http.MethodHead
		p.logger.InfoContext(req.Context(), "gateway: sign-in required",
			"path", path,
			"has_cookie", req.Header.Get("Cookie") != "",
			"has_auth_header", req.Header.Get("Authorization") != "",
		)
		if !isPageLoad || httputil.WantsJSONRequest(req) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":    "Authentication required",
				"redirect": d.Location,
			})
			return true
		}
		http.Redirect(w, req, d.Location, http.StatusFound)
		return true
	case guard.RedirectAfterSignIn:
		http.Redirect(w, req, d.Location, http.StatusFound)
		return true
	default:
		return false
	}
}

func (p *Proxy) forward(w http.ResponseWriter, req *http.Request, baseURL string, authTraffic bool) {
	targetURL, err := url.Parse(baseURL)
	if err != nil || targetURL.Host == "" {
		p.logger.ErrorContext(req.Context(), "gateway: invalid target URL",
			"base", baseURL,
			"error", err,
		)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Build outgoing request: same method, path, query, body
	outReq := req.Clone(req.Context())
	outReq.RequestURI = ""
	outReq.URL.Scheme = targetURL.Scheme
	outReq.URL.Host = targetURL.Host
	if req.Body != nil {
		outReq.Body = req.Body
		outReq.ContentLength = req.ContentLength
		outReq.GetBody = req.GetBody
	}
	for _, h := range hopByHopHeaders {
		outReq.Header.Del(h)
	}

	// Keep only the original client IP so the chain cannot grow without bound
	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		if firstIP := strings.TrimSpace(strings.Split(xff, ",")[0]); firstIP != "" {
			outReq.Header.Set("X-Forwarded-For", firstIP)
		}
	}

	forwardedHost := p.forwardedHost(req, authTraffic)
	outReq.Header.Set("X-Forwarded-Host", forwardedHost)
	// go-pkgz/auth checks cookies against the request Host, so it must
	// match the host the browser sees
	outReq.Host = forwardedHost

	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		outReq.Header.Set("X-Forwarded-Proto", proto)
	} else if req.TLS != nil {
		outReq.Header.Set("X-Forwarded-Proto", "https")
	} else {
		outReq.Header.Set("X-Forwarded-Proto", "http")
	}

	// Remember the origin host across the OAuth round trip; the provider
	// callback carries no usable Referer
	if authTraffic && strings.HasPrefix(req.URL.Path, apipaths.OAuthPrefix) && strings.HasSuffix(req.URL.Path, "/login") {
		http.SetCookie(w, &http.Cookie{
			Name:     originCookieName,
			Value:    forwardedHost,
			Path:     "/",
			MaxAge:   300, // 5 minutes (just long enough for OAuth flow)
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	p.logger.DebugContext(req.Context(), "gateway: forwarding request",
		"target", baseURL,
		"path", req.URL.Path,
		"forwarded_host", forwardedHost,
		"auth_traffic", authTraffic,
	)

	resp, err := p.transport.RoundTrip(outReq)
	if err != nil {
		// Client disconnect (context canceled) is normal; avoid noisy ERROR logs
		if errors.Is(err, context.Canceled) || req.Context().Err() == context.Canceled {
			p.logger.DebugContext(req.Context(), "gateway: upstream request canceled by client",
				"target", baseURL,
			)
		} else {
			p.logger.ErrorContext(req.Context(), "gateway: upstream request failed",
				"target", baseURL,
				"path", req.URL.Path,
				"error", err,
			)
		}
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if authTraffic && resp.Header.Get("Set-Cookie") != "" {
		cookies := resp.Header["Set-Cookie"]
		p.logger.InfoContext(req.Context(), "gateway: auth response with cookies",
			"cookie_count", len(cookies),
			"has_jwt", containsCookieName(cookies, jwtCookieName),
		)
	}

	// Copy response headers (exclude hop-by-hop)
	for k, vv := range resp.Header {
		if isHopByHop(k) {
			continue
		}
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

// forwardedHost is the host the browser addressed: X-Forwarded-Host
// when set, else the request Host. Auth traffic may also recover it from
// the origin cookie set at OAuth login or from the Referer (dev servers
// proxying through Vite).
func (p *Proxy) forwardedHost(req *http.Request, authTraffic bool) string {
	if host := req.Header.Get("X-Forwarded-Host"); host != "" {
		return host
	}
	if !authTraffic {
		return req.Host
	}
	if strings.HasPrefix(req.URL.Path, apipaths.OAuthPrefix) {
		if cookie, err := req.Cookie(originCookieName); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	if referer := req.Header.Get("Referer"); referer != "" {
		if refURL, err := url.Parse(referer); err == nil && refURL.Host != "" {
			return refURL.Host
		}
	}
	return req.Host
}

func isHopByHop(header string) bool {
	for _, h := range hopByHopHeaders {
		if strings.EqualFold(h, header) {
			return true
		}
	}
	return false
}

// containsCookieName checks if any Set-Cookie header contains the given cookie name
func containsCookieName(cookies []string, name string) bool {
	for _, cookie := range cookies {
		if strings.HasPrefix(cookie, name+"=") {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
