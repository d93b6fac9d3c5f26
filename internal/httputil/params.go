package httputil

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// RedirectParam is the query parameter carrying the post sign-in continuation
const RedirectParam = "redirect"

// SafeLocalPath returns p when it is a same-origin absolute path, else "".
// Scheme-relative ("//host") and backslash forms are rejected so a
// continuation can never leave the site.
func SafeLocalPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") {
		return ""
	}
	if strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") || strings.ContainsAny(p, "\r\n") {
		return ""
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return p
}

// GetRedirectOrDefault gets the continuation from the `redirect` query
// parameter, falling back to defaultPath when absent or unsafe
func GetRedirectOrDefault(c *gin.Context, defaultPath string) string {
	if p := SafeLocalPath(c.Query(RedirectParam)); p != "" {
		return p
	}
	return defaultPath
}

// WantsJSON reports whether the client prefers a JSON response to an HTML redirect
func WantsJSON(c *gin.Context) bool {
	return WantsJSONRequest(c.Request)
}

// WantsJSONRequest is WantsJSON for a plain net/http request
func WantsJSONRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
