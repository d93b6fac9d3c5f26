package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authui/internal/apipaths"
	"github.com/authui/internal/config"
	"github.com/authui/internal/db"
	"github.com/authui/internal/domain"
	"github.com/authui/internal/validation"
)

const registerMessage = "Please proceed to the identity provider for registration"

// AuthUIConfigResponse is the public auth UI configuration plus the
// messages for the request's locale
type AuthUIConfigResponse struct {
	config.Config
	Locale           string            `json:"locale"`
	SupportedLocales []string          `json:"supportedLocales"`
	Messages         map[string]string `json:"messages"`
}

// getAuthUIConfig returns the resolved configuration the UI renders from
func (s *Server) getAuthUIConfig(c *gin.Context) {
	cfg := s.authConfig
	cfg.SocialProviders = cfg.EnabledSocialProviders()

	loc := s.requestLocale(c)
	resp := AuthUIConfigResponse{
		Config:           cfg,
		Locale:           loc,
		SupportedLocales: []string{loc},
		Messages:         map[string]string{},
	}
	if s.locales != nil {
		resp.SupportedLocales = s.locales.Supported()
		resp.Messages = s.locales.Messages(loc)
	}

	c.JSON(http.StatusOK, resp)
}

// requestLocale picks the locale from ?locale= when supported, otherwise
// from Accept-Language
func (s *Server) requestLocale(c *gin.Context) string {
	if s.locales == nil {
		return s.authConfig.Locale
	}
	if requested := c.Query("locale"); requested != "" {
		for _, l := range s.locales.Supported() {
			if l == requested {
				return l
			}
		}
	}
	return s.locales.Negotiate(c.GetHeader("Accept-Language"))
}

// getConnectors returns the identity provider's social connectors
func (s *Server) getConnectors(c *gin.Context) {
	c.JSON(http.StatusOK, s.idp.Connectors(c.Request.Context()))
}

// getPasswordPolicy returns the identity provider's password policy
func (s *Server) getPasswordPolicy(c *gin.Context) {
	c.JSON(http.StatusOK, s.idp.PasswordPolicy(c.Request.Context()))
}

// register validates a registration request and hands back the identity
// provider page that completes it
func (s *Server) register(c *gin.Context) {
	var req validation.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: "Request body must be a JSON object",
		})
		return
	}

	if err := validation.ValidateRegistration(req); err != nil {
		s.respondValidationError(c, err)
		return
	}

	redirectURL, err := s.idp.RegistrationURL()
	if err != nil {
		s.logger.ErrorContext(c.Request.Context(), "registration requested without identity provider endpoint", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Registration failed",
			Details: domain.PublicMessage(err),
		})
		return
	}

	if s.registrations != nil {
		intent := db.NewRegistrationIntent(req.Email, req.Name, redirectURL)
		if err := s.registrations.CreateRegistrationIntent(intent); err != nil {
			s.logger.WarnContext(c.Request.Context(), "failed to record registration intent", "error", err)
		}
	}

	c.JSON(http.StatusOK, RegisterResponse{
		Success:     true,
		Message:     registerMessage,
		RedirectURL: redirectURL,
	})
}

// validateForm checks one of the auth forms without submitting it
func (s *Server) validateForm(c *gin.Context) {
	var err error
	switch form := c.Param("form"); form {
	case apipaths.FormSignIn:
		var f validation.SignInForm
		if !s.bindForm(c, &f) {
			return
		}
		err = validation.ValidateSignIn(f)
	case apipaths.FormSignUp:
		var f validation.SignUpForm
		if !s.bindForm(c, &f) {
			return
		}
		err = validation.ValidateSignUp(f)
		if err == nil {
			name := ""
			if f.Name != nil {
				name = *f.Name
			}
			policy := s.idp.PasswordPolicy(c.Request.Context())
			err = validation.CheckPasswordPolicy(f.Password, policy, validation.UserInfo{Email: f.Email, Name: name})
		}
	case apipaths.FormReset:
		var f validation.PasswordResetForm
		if !s.bindForm(c, &f) {
			return
		}
		err = validation.ValidatePasswordReset(f)
	default:
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Unknown form",
			Details: form,
		})
		return
	}

	if err != nil {
		s.respondValidationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (s *Server) bindForm(c *gin.Context, form interface{}) bool {
	if err := c.ShouldBindJSON(form); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: "Request body must be a JSON object",
		})
		return false
	}
	return true
}

func (s *Server) respondValidationError(c *gin.Context, err error) {
	if resp, ok := newValidationErrorResponse(err); ok {
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request data",
		Details: domain.PublicMessage(err),
	})
}
