package gateway

import (
	"errors"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/authui/internal/config"
	"github.com/authui/internal/domain"
)

// Config holds gateway configuration
type Config struct {
	ListenAddress  string `env:"GATEWAY_LISTEN_ADDRESS" envDefault:":8080"`     // Address to listen on (e.g. :8080)
	UpstreamURL    string `env:"UPSTREAM_URL"`                                  // Application behind the guard (e.g. http://app:3000)
	AuthUIURL      string `env:"AUTHUI_URL" envDefault:"http://localhost:8082"` // authui server serving auth pages and OAuth handlers
	JWTSecret      string `env:"JWT_SECRET"`                                    // JWT secret to validate session cookies (same as authui)
	AuthEnabled    bool   `env:"AUTH_ENABLED" envDefault:"false"`               // Whether session tokens are accepted
	AuthConfigFile string `env:"AUTH_CONFIG_FILE"`                              // Auth UI options file shared with authui
	Overrides      config.OverrideSettings
}

var (
	ErrUpstreamURLRequired = errors.New("UPSTREAM_URL is required")
	ErrJWTSecretRequired   = errors.New("JWT_SECRET is required when AUTH_ENABLED is true")
)

// LoadConfig loads gateway configuration from environment
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, domain.WrapConfigInvalid("environment", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.UpstreamURL = strings.TrimRight(c.UpstreamURL, "/")
	c.AuthUIURL = strings.TrimRight(c.AuthUIURL, "/")
	if c.UpstreamURL == "" {
		return ErrUpstreamURLRequired
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return ErrJWTSecretRequired
	}
	return nil
}

// AuthUIConfig resolves the same auth UI configuration the authui server uses
func (c *Config) AuthUIConfig() (config.Config, error) {
	opts, err := config.LoadOptions(c.AuthConfigFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := c.Overrides.Apply(&opts); err != nil {
		return config.Config{}, err
	}
	return config.Resolve(opts), nil
}
