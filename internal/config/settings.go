package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/authui/internal/domain"
	"github.com/caarlos0/env/v11"
)

// DefaultJWTSecret is the placeholder used when JWT_SECRET is unset
const DefaultJWTSecret = "change-me-in-production-secret-key"

var (
	ErrJWTSecretRequired = errors.New("JWT_SECRET is required when AUTH_ENABLED is true")
	ErrDefaultJWTSecret  = errors.New("JWT_SECRET must not use the built-in default in production")
)

// Settings holds the process-level configuration read from the environment
type Settings struct {
	Environment           string        `env:"APP_ENV" envDefault:"production"`
	LogJSON               string        `env:"LOG_JSON"`
	ServerAddress         string        `env:"SERVER_ADDRESS" envDefault:":8080"`
	DatabasePath          string        `env:"DATABASE_PATH" envDefault:"./data/authui.db"`
	WebDir                string        `env:"WEB_DIR"`
	ConfigFile            string        `env:"AUTH_CONFIG_FILE"`
	RegistrationRetention time.Duration `env:"REGISTRATION_RETENTION" envDefault:"720h"`
	Auth                  AuthSettings
	IdP                   IdPSettings
	CORS                  CORSSettings
	Overrides             OverrideSettings
}

// AuthSettings configures the session cookies and OAuth providers
type AuthSettings struct {
	Enabled      bool                `env:"AUTH_ENABLED" envDefault:"false"`
	JWTSecret    string              `env:"JWT_SECRET" envDefault:"change-me-in-production-secret-key"`
	BaseURL      string              `env:"AUTH_BASE_URL" envDefault:"http://localhost:8080"`
	SecureCookie bool                `env:"AUTH_SECURE_COOKIE" envDefault:"false"`
	Issuer       string              `env:"AUTH_ISSUER" envDefault:"authui"`
	DevHost      string              `env:"AUTH_DEV_HOST" envDefault:"localhost"`
	DevPort      int                 `env:"AUTH_DEV_PORT" envDefault:"8084"`
	GitHub       ProviderCredentials `envPrefix:"GITHUB_"`
	Google       ProviderCredentials `envPrefix:"GOOGLE_"`
	Microsoft    ProviderCredentials `envPrefix:"MICROSOFT_"`
	Facebook     ProviderCredentials `envPrefix:"FACEBOOK_"`
}

// ProviderCredentials are the OAuth client credentials for one provider
type ProviderCredentials struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
}

// Configured reports whether both id and secret are present
func (p ProviderCredentials) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Credentials returns the provider credentials keyed by provider name
func (a AuthSettings) Credentials() map[string]ProviderCredentials {
	return map[string]ProviderCredentials{
		"github":    a.GitHub,
		"google":    a.Google,
		"microsoft": a.Microsoft,
		"facebook":  a.Facebook,
	}
}

// IdPSettings locates the identity provider's public API
type IdPSettings struct {
	Endpoint      string        `env:"IDP_ENDPOINT"`
	LogtoEndpoint string        `env:"LOGTO_ENDPOINT"`
	Timeout       time.Duration `env:"IDP_TIMEOUT" envDefault:"5s"`
}

// ResolvedEndpoint returns the first configured endpoint without a trailing slash
func (i IdPSettings) ResolvedEndpoint() string {
	endpoint := i.Endpoint
	if endpoint == "" {
		endpoint = i.LogtoEndpoint
	}
	return strings.TrimRight(endpoint, "/")
}

// CORSSettings holds CORS configuration
type CORSSettings struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000,http://localhost:8080"`
}

// OverrideSettings let the environment override the options file
type OverrideSettings struct {
	Middleware       string `env:"AUTH_MIDDLEWARE"`
	ProtectByDefault string `env:"AUTH_PROTECT_BY_DEFAULT"`
	ExceptionRoutes  string `env:"AUTH_EXCEPTION_ROUTES"`
	Mock             string `env:"AUTH_MOCK"`
}

// Load loads process settings from environment variables with defaults
func Load() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, domain.WrapConfigInvalid("environment", err)
	}
	s.CORS.AllowedOrigins = parseCommaSeparatedList(strings.Join(s.CORS.AllowedOrigins, ","))
	return &s, nil
}

// JSONLogs reports whether logs should be written as JSON. Unless
// LOG_JSON says otherwise, development logs are text and the rest JSON.
func (s *Settings) JSONLogs() bool {
	if s.LogJSON != "" {
		return s.LogJSON == "true"
	}
	return s.Environment != "development"
}

// IsProduction reports whether the process runs in production
func (s *Settings) IsProduction() bool {
	return s.Environment == "production"
}

// ValidateSecrets rejects session signing secrets anyone could know.
// Only enabled auth is checked; an empty secret is always an error and
// the built-in default is an error in production.
func (s *Settings) ValidateSecrets() error {
	if !s.Auth.Enabled {
		return nil
	}
	if strings.TrimSpace(s.Auth.JWTSecret) == "" {
		return domain.WrapConfigInvalid("JWT_SECRET", ErrJWTSecretRequired)
	}
	if s.IsProduction() && s.Auth.JWTSecret == DefaultJWTSecret {
		return domain.WrapConfigInvalid("JWT_SECRET", ErrDefaultJWTSecret)
	}
	return nil
}

// AuthConfig reads the options file (if any), applies environment
// overrides and resolves the result.
func (s *Settings) AuthConfig() (Config, error) {
	opts, err := LoadOptions(s.ConfigFile)
	if err != nil {
		return Config{}, err
	}
	if err := s.Overrides.Apply(&opts); err != nil {
		return Config{}, err
	}
	return Resolve(opts), nil
}

// LoadOptions reads YAML options from path. An empty path yields empty options.
func LoadOptions(path string) (Options, error) {
	if path == "" {
		return Options{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, domain.WrapConfigInvalid(path, err)
	}
	opts, err := ParseOptions(data)
	if err != nil {
		return Options{}, domain.WrapConfigInvalid(path, err)
	}
	return opts, nil
}

// Apply writes the non-empty overrides into opts
func (o OverrideSettings) Apply(opts *Options) error {
	if o.Mock != "" {
		mock, err := strconv.ParseBool(o.Mock)
		if err != nil {
			return domain.WrapConfigInvalid("AUTH_MOCK", err)
		}
		opts.Mock = mock
	}

	if o.Middleware != "" {
		enabled, err := strconv.ParseBool(o.Middleware)
		if err != nil {
			return domain.WrapConfigInvalid("AUTH_MIDDLEWARE", err)
		}
		if !enabled {
			opts.Middleware = DisabledMiddleware()
			return nil
		}
		if opts.Middleware != nil && opts.Middleware.Disabled {
			opts.Middleware = nil
		}
	}

	if o.ProtectByDefault == "" && o.ExceptionRoutes == "" {
		return nil
	}
	if opts.Middleware == nil {
		opts.Middleware = &MiddlewareOptions{}
	}
	if opts.Middleware.Disabled {
		return nil
	}

	if o.ProtectByDefault != "" {
		protect, err := strconv.ParseBool(o.ProtectByDefault)
		if err != nil {
			return domain.WrapConfigInvalid("AUTH_PROTECT_BY_DEFAULT", fmt.Errorf("%q: %w", o.ProtectByDefault, err))
		}
		opts.Middleware.ProtectByDefault = &protect
	}
	if o.ExceptionRoutes != "" {
		opts.Middleware.ExceptionRoutes = parseCommaSeparatedList(o.ExceptionRoutes)
	}
	return nil
}

// parseCommaSeparatedList splits a comma-separated string into a slice
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return []string{}
	}

	items := strings.Split(s, ",")
	result := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}

	return result
}
