package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-pkgz/auth/token"
)

const userContextKey = "user"

// sessionMiddleware resolves the session cookie, if any, and stores the
// user in the gin context. It never rejects a request.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	if s.session == nil {
		// Auth disabled - every request is anonymous
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		handler := s.session.Trace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := s.session.CurrentUser(r); ok {
				c.Set(userContextKey, u)
			}
			// Update request in gin context
			c.Request = r
		}))
		handler.ServeHTTP(c.Writer, c.Request)

		if c.Writer.Written() {
			c.Abort()
			return
		}
		c.Next()
	}
}

// getUserFromContext extracts the authenticated user from context
func getUserFromContext(c *gin.Context) (token.User, bool) {
	if user, exists := c.Get(userContextKey); exists {
		if u, ok := user.(token.User); ok {
			return u, true
		}
	}
	return token.User{}, false
}

// authenticated reports whether the request carries a valid session.
// A missing session service means no one is signed in.
func authenticated(c *gin.Context) bool {
	_, ok := getUserFromContext(c)
	return ok
}

// getCurrentUser returns the authenticated user info
func (s *Server) getCurrentUser(c *gin.Context) {
	user, exists := getUserFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Not authenticated",
			Details: "Please sign in to continue",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"picture": user.Picture,
	})
}

// signOut clears the session cookies and sends the user to the
// configured after-sign-out page
func (s *Server) signOut(c *gin.Context) {
	if s.session != nil {
		s.session.SignOut(c.Writer)
	}
	if user, ok := getUserFromContext(c); ok {
		s.logger.InfoContext(c.Request.Context(), "user signed out", "user_id", user.ID)
	}
	c.Redirect(http.StatusFound, s.authConfig.Redirects.AfterSignOut)
}
