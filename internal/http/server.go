package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/authui/internal/config"
	"github.com/authui/internal/db"
	"github.com/authui/internal/guard"
	"github.com/authui/internal/idp"
	"github.com/authui/internal/locale"
	"github.com/authui/internal/session"
)

// RegistrationStore records registration intents
type RegistrationStore interface {
	CreateRegistrationIntent(intent *db.RegistrationIntent) error
}

// Deps are the collaborators of the HTTP server. Session and
// Registrations may be nil.
type Deps struct {
	Settings      *config.Settings
	AuthConfig    config.Config
	Guard         *guard.Guard
	IdP           *idp.Client
	Session       *session.Service
	Locales       *locale.Bundle
	Registrations RegistrationStore
	Registerer    prometheus.Registerer
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
}

// Server wraps the HTTP server
type Server struct {
	settings      *config.Settings
	authConfig    config.Config
	guard         *guard.Guard
	idp           *idp.Client
	session       *session.Service
	locales       *locale.Bundle
	registrations RegistrationStore
	gatherer      prometheus.Gatherer
	metrics       *httpMetrics
	logger        *slog.Logger
	engine        *gin.Engine
	httpServer    *http.Server
}

// NewServer creates a new HTTP server
func NewServer(deps Deps) *Server {
	cfg := deps.Settings

	// Set Gin mode based on environment
	switch cfg.Environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.IdP == nil {
		deps.IdP = idp.NewClient("", 0, logger)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		settings:      cfg,
		authConfig:    deps.AuthConfig,
		guard:         deps.Guard,
		idp:           deps.IdP,
		session:       deps.Session,
		locales:       deps.Locales,
		registrations: deps.Registrations,
		gatherer:      deps.Gatherer,
		metrics:       newHTTPMetrics(deps.Registerer),
		logger:        logger,
		engine:        engine,
	}

	// Middleware - order matters
	engine.Use(securityHeadersMiddleware())
	engine.Use(corsMiddleware(cfg.CORS.AllowedOrigins))
	engine.Use(cacheControlMiddleware(deps.AuthConfig))
	engine.Use(loggerMiddleware(logger))
	engine.Use(s.metrics.middleware())
	engine.Use(jsonBodyLimitMiddleware(maxBodySize))
	engine.Use(requestCacheMiddleware())
	engine.Use(s.sessionMiddleware())

	// Request body size limit
	engine.MaxMultipartMemory = maxBodySize

	// Setup routes
	s.setupRoutes()

	return s
}

const (
	maxBodySize     = 1 << 20          // 1MB max request body
	readTimeout     = 30 * time.Second // 30s for reading request
	writeTimeout    = 30 * time.Second
	idleTimeout     = 120 * time.Second // 2 minutes idle
	shutdownTimeout = 30 * time.Second
)

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	addr := s.settings.ServerAddress
	if addr == "" {
		addr = ":8080"
	}

	// Configure server with timeouts
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.engine,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a running server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ShutdownTimeout is how long callers should wait for in-flight requests
func ShutdownTimeout() time.Duration {
	return shutdownTimeout
}

// indexFile returns the SPA entry point when WEB_DIR has one
func (s *Server) indexFile() string {
	if s.settings.WebDir == "" {
		return ""
	}
	index := filepath.Join(s.settings.WebDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return ""
	}
	return index
}

// securityHeadersMiddleware adds security-related HTTP headers
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent MIME type sniffing
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		// Prevent clickjacking
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		// Enable XSS protection
		c.Writer.Header().Set("X-XSS-Protection", "1; mode=block")
		// Referrer policy
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// HSTS (only if using HTTPS)
		if c.Request.TLS != nil {
			c.Writer.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// corsMiddleware adds CORS headers with configurable origin
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is in allowed list
		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, Accept-Language")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// cacheControlMiddleware sets appropriate cache headers based on content type
func cacheControlMiddleware(cfg config.Config) gin.HandlerFunc {
	noCache := map[string]bool{}
	for _, p := range []string{cfg.Routes.SignIn, cfg.Routes.SignUp, cfg.Routes.SignOut, cfg.Routes.Profile, cfg.Routes.Reset} {
		noCache[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		switch {
		case strings.HasPrefix(path, "/api/"), strings.HasPrefix(path, session.AuthMountPath+"/"), noCache[path]:
			// API and auth endpoints - no caching for dynamic data
			c.Writer.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Writer.Header().Set("Pragma", "no-cache")
			c.Writer.Header().Set("Expires", "0")
		case strings.HasPrefix(path, "/assets/"):
			// Static assets - long-term caching with immutable flag
			c.Writer.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}

		c.Next()
	}
}

// jsonBodyLimitMiddleware limits the size of JSON request bodies to prevent DoS
func jsonBodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to JSON requests
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodDelete && c.Request.Method != http.MethodOptions {
			contentType := c.GetHeader("Content-Type")
			if strings.Contains(contentType, "application/json") {
				if c.Request.ContentLength > maxBytes {
					c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
						Error: "Request body too large",
					})
					return
				}
				// Wrap the request body with MaxBytesReader
				c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
			}
		}
		c.Next()
	}
}

// loggerMiddleware logs HTTP requests
func loggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.InfoContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"remote_addr", c.Request.RemoteAddr,
		)
	}
}

// requestCacheMiddleware lets identity provider lookups made while
// serving one request share a single outbound call
func requestCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(idp.WithRequestCache(c.Request.Context()))
		c.Next()
	}
}
