package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/authui/internal/apipaths"
	"github.com/authui/internal/config"
	"github.com/authui/internal/httputil"
	"github.com/authui/internal/session"
)

// Auth pages served behind the guard
const (
	pageSignIn  = "sign-in"
	pageSignUp  = "sign-up"
	pageReset   = "reset"
	pageProfile = "profile"
)

var pageTitles = map[string]string{
	pageSignIn:  "signInTitle",
	pageSignUp:  "signUpTitle",
	pageReset:   "resetTitle",
	pageProfile: "profile",
}

// ProviderLink is a social login button on an auth page
type ProviderLink struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	URL   string `json:"url"`
}

// PageUser is the signed-in user shown on the profile page
type PageUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// PageModel is what an auth page renders when no SPA bundle is deployed
type PageModel struct {
	Page      string              `json:"page"`
	Title     string              `json:"title"`
	Locale    string              `json:"locale"`
	Redirect  string              `json:"redirect"`
	Routes    config.Routes       `json:"routes"`
	Legal     config.LegalOptions `json:"legal"`
	Providers []ProviderLink      `json:"providers"`
	User      *PageUser           `json:"user,omitempty"`
	Messages  map[string]string   `json:"messages"`
}

// servePage serves the SPA entry point when there is one, otherwise the
// page model as JSON
func (s *Server) servePage(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if index := s.indexFile(); index != "" {
			c.File(index)
			return
		}
		c.JSON(http.StatusOK, s.pageModel(c, page))
	}
}

func (s *Server) pageModel(c *gin.Context, page string) PageModel {
	loc := s.requestLocale(c)
	messages := map[string]string{}
	if s.locales != nil {
		messages = s.locales.Messages(loc)
	}
	title := pageTitles[page]
	if msg, ok := messages[title]; ok {
		title = msg
	}

	continuation := httputil.GetRedirectOrDefault(c, s.authConfig.Redirects.AfterSignIn)
	m := PageModel{
		Page:      page,
		Title:     title,
		Locale:    loc,
		Redirect:  continuation,
		Routes:    s.authConfig.Routes,
		Legal:     s.authConfig.Legal,
		Providers: s.providerLinks(continuation),
		Messages:  messages,
	}

	if u, ok := getUserFromContext(c); ok {
		m.User = &PageUser{ID: u.ID, Name: u.Name, Email: u.Email, Picture: u.Picture}
	}
	return m
}

// providerLinks lists the login URLs of every registered provider. The
// continuation travels as `from` so the provider callback returns there.
func (s *Server) providerLinks(continuation string) []ProviderLink {
	links := []ProviderLink{}
	if s.session == nil {
		return links
	}

	from := "?from=" + url.QueryEscape(continuation)
	for _, p := range s.authConfig.EnabledSocialProviders() {
		if !s.session.HasProvider(p.Name) {
			continue
		}
		links = append(links, ProviderLink{
			Name:  p.Name,
			Label: p.Label,
			Icon:  p.Icon,
			URL:   apipaths.OAuthLogin(p.Name) + from,
		})
	}
	if s.session.HasProvider(session.DevProvider) {
		links = append(links, ProviderLink{
			Name:  session.DevProvider,
			Label: "Continue with Dev",
			Icon:  "i-heroicons-code-bracket",
			URL:   apipaths.OAuthLogin(session.DevProvider) + from,
		})
	}
	return links
}
