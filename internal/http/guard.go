package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authui/internal/guard"
	"github.com/authui/internal/httputil"
)

// guardMiddleware applies the route guard to page requests
func (s *Server) guardMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.guard == nil {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		d := s.guard.Evaluate(path, authenticated(c))

		switch d.Action {
		case guard.RedirectToSignIn:
			s.logger.DebugContext(c.Request.Context(), "guard redirect to sign-in", "path", path, "location", d.Location)
			if httputil.WantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, GuardResponse{
					Error:    "Authentication required",
					Redirect: d.Location,
				})
				return
			}
			c.Redirect(http.StatusFound, d.Location)
			c.Abort()
		case guard.RedirectAfterSignIn:
			s.logger.DebugContext(c.Request.Context(), "guard redirect after sign-in", "path", path, "location", d.Location)
			c.Redirect(http.StatusFound, d.Location)
			c.Abort()
		default:
			c.Next()
		}
	}
}
