package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-pkgz/auth"
	"github.com/go-pkgz/auth/avatar"
	authlogger "github.com/go-pkgz/auth/logger"
	"github.com/go-pkgz/auth/token"

	"github.com/authui/internal/config"
	"github.com/authui/internal/logger"
)

// DevProvider is the provider name go-pkgz/auth uses for its local
// development login server.
const DevProvider = "dev"

// Mount points of the go-pkgz/auth handlers. They live outside /auth so
// the configured auth pages can use that prefix.
const (
	AuthMountPath   = "/oauth"
	AvatarMountPath = "/avatar"
)

// Options configures the session service
type Options struct {
	Settings config.AuthSettings
	// Providers are the social providers switched on in the auth UI
	// config; only those with credentials are registered.
	Providers []config.SocialProvider
	// Mock registers the development login provider
	Mock bool
}

// Service issues and reads JWT cookie sessions through go-pkgz/auth
type Service struct {
	auth      *auth.Service
	providers []string
	settings  config.AuthSettings
	mock      bool
	logger    *slog.Logger
}

// New creates the session service and registers every usable provider
func New(opts Options, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	settings := opts.Settings

	baseURL := strings.TrimRight(settings.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	authService := auth.NewService(auth.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return settings.JWTSecret, nil
		}),
		TokenDuration:   time.Hour * 24,     // Token valid for 24 hours
		CookieDuration:  time.Hour * 24 * 7, // Cookie valid for 7 days
		Issuer:          settings.Issuer,
		URL:             baseURL + AuthMountPath, // callback URLs include the mount prefix
		AvatarStore:     avatar.NewNoOp(),
		AvatarRoutePath: AvatarMountPath,
		SecureCookies:   settings.SecureCookie,
		DisableXSRF:     true,
		Validator: token.ValidatorFunc(func(_ string, claims token.Claims) bool {
			return claims.User != nil && claims.User.ID != ""
		}),
		Logger: authlogger.Func(logger.Printf(log, "session")),
	})

	s := &Service{
		auth:     authService,
		settings: settings,
		mock:     opts.Mock,
		logger:   log,
	}

	credentials := settings.Credentials()
	for _, p := range opts.Providers {
		if !p.Enabled {
			continue
		}
		creds, ok := credentials[p.Name]
		if !ok || !creds.Configured() {
			log.Warn("social provider enabled without credentials, skipping", "provider", p.Name)
			continue
		}
		authService.AddProvider(p.Name, creds.ClientID, creds.ClientSecret)
		s.providers = append(s.providers, p.Name)
	}

	if opts.Mock {
		authService.AddDevProvider(settings.DevHost, settings.DevPort)
		s.providers = append(s.providers, DevProvider)
	}

	sort.Strings(s.providers)
	return s
}

// Providers returns the names of the registered login providers
func (s *Service) Providers() []string {
	out := make([]string, len(s.providers))
	copy(out, s.providers)
	return out
}

// HasProvider reports whether name is a registered login provider
func (s *Service) HasProvider(name string) bool {
	for _, p := range s.providers {
		if p == name {
			return true
		}
	}
	return false
}

// Trace wraps next so the user from a valid session cookie, if any, is
// placed into the request context. Requests are never rejected.
func (s *Service) Trace(next http.Handler) http.Handler {
	m := s.auth.Middleware()
	return m.Trace(next)
}

// CurrentUser returns the user of a request that went through Trace
func (s *Service) CurrentUser(r *http.Request) (token.User, bool) {
	u, err := token.GetUserInfo(r)
	if err != nil {
		return token.User{}, false
	}
	return u, true
}

// Authenticated reports whether the request carries a valid session
func (s *Service) Authenticated(r *http.Request) bool {
	_, ok := s.CurrentUser(r)
	return ok
}

// IssueSession sets the session cookies for user as a completed login does
func (s *Service) IssueSession(w http.ResponseWriter, user token.User) error {
	_, err := s.auth.TokenService().Set(w, token.Claims{User: &user})
	return err
}

// SignOut clears the session cookies
func (s *Service) SignOut(w http.ResponseWriter) {
	s.auth.TokenService().Reset(w)
}

// Handlers returns the login/callback/logout handler and the avatar
// proxy, both expecting paths relative to their mount points.
func (s *Service) Handlers() (authHandler, avatarHandler http.Handler) {
	return s.auth.Handlers()
}

// RunDevProvider serves the development login page until ctx is done.
// It does nothing unless mock mode is on.
func (s *Service) RunDevProvider(ctx context.Context) error {
	if !s.mock {
		return nil
	}
	devAuth, err := s.auth.DevAuth()
	if err != nil {
		return err
	}
	if devAuth == nil {
		return errors.New("dev provider not registered")
	}

	s.logger.Warn("mock auth provider running, do not use in production",
		"host", s.settings.DevHost,
		"port", s.settings.DevPort,
	)
	go func() {
		<-ctx.Done()
		devAuth.Shutdown()
	}()
	devAuth.Run(ctx)
	return nil
}
