package http

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/authui/internal/apipaths"
	"github.com/authui/internal/session"
)

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Mount auth routes (login, logout, callbacks)
	// go-pkgz/auth expects paths relative to mount point, so we strip the prefix
	if s.session != nil {
		authHandler, avatarHandler := s.session.Handlers()
		if authHandler != nil {
			s.engine.Any(session.AuthMountPath+"/*path", wrapAuthHandler(authHandler, session.AuthMountPath))
		}
		if avatarHandler != nil {
			s.engine.Any(session.AvatarMountPath+"/*path", wrapAuthHandler(avatarHandler, session.AvatarMountPath))
		}
	}

	// Health check endpoint (no auth required)
	s.engine.GET(apipaths.Health, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "authui",
		})
	})

	s.engine.GET(apipaths.Metrics, gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api")
	{
		// User info endpoint
		api.GET("/me", s.getCurrentUser)

		s.setupAuthUIRoutes(api)
	}

	s.setupPageRoutes()

	// Serve frontend static files
	if s.settings.WebDir != "" {
		s.engine.Static("/assets", filepath.Join(s.settings.WebDir, "assets"))
	}

	guarded := s.guardMiddleware()
	s.engine.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
			return
		}
		guarded(c)
		if c.IsAborted() {
			return
		}
		if index := s.indexFile(); index != "" {
			c.File(index)
			return
		}
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	})
}

func (s *Server) setupAuthUIRoutes(api *gin.RouterGroup) {
	authUI := api.Group("/auth-ui")
	{
		authUI.GET("/config", s.getAuthUIConfig)
		authUI.GET("/connectors", s.getConnectors)
		authUI.GET("/password-policy", s.getPasswordPolicy)
		authUI.POST("/register", s.register)
		authUI.POST("/validate/:form", s.validateForm)
	}
}

// setupPageRoutes registers the auth pages behind the route guard. A
// path configured for two pages is served by the first one.
func (s *Server) setupPageRoutes() {
	routes := s.authConfig.Routes
	pages := []struct {
		path    string
		handler gin.HandlerFunc
	}{
		{routes.SignIn, s.servePage(pageSignIn)},
		{routes.SignUp, s.servePage(pageSignUp)},
		{routes.Reset, s.servePage(pageReset)},
		{routes.Profile, s.servePage(pageProfile)},
		{routes.SignOut, s.signOut},
	}

	guarded := s.engine.Group("", s.guardMiddleware())
	seen := map[string]bool{}
	for _, p := range pages {
		if p.path == "" || seen[p.path] {
			if p.path != "" {
				s.logger.Warn("auth page path used twice, keeping the first", "path", p.path)
			}
			continue
		}
		seen[p.path] = true
		guarded.GET(p.path, p.handler)
	}
}

// wrapAuthHandler wraps an http.Handler for use with Gin, stripping the prefix
// go-pkgz/auth expects paths relative to where it's mounted
func wrapAuthHandler(handler http.Handler, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Strip the prefix from the URL path for the handler
		originalPath := c.Request.URL.Path
		c.Request.URL.Path = strings.TrimPrefix(originalPath, prefix)

		// Serve using the wrapped handler
		handler.ServeHTTP(c.Writer, c.Request)

		// Restore original path (in case anything else needs it)
		c.Request.URL.Path = originalPath
	}
}
