package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Options is the user-supplied, possibly partial auth UI configuration.
// Zero values mean "not provided" and are filled in by Resolve.
type Options struct {
	Mock            bool                         `yaml:"mock,omitempty"`
	Routes          RouteOptions                 `yaml:"routes,omitempty"`
	ComponentPrefix string                       `yaml:"componentPrefix,omitempty"`
	Redirects       RedirectOptions              `yaml:"redirects,omitempty"`
	Middleware      *MiddlewareOptions           `yaml:"middleware,omitempty"`
	Legal           *LegalOptions                `yaml:"legal,omitempty"`
	SocialProviders []SocialProvider             `yaml:"socialProviders,omitempty"`
	Locale          string                       `yaml:"locale,omitempty"`
	Messages        map[string]map[string]string `yaml:"messages,omitempty"`
	Icons           map[string]string            `yaml:"icons,omitempty"`
}

// RouteOptions holds optional overrides for the auth page paths
type RouteOptions struct {
	SignIn  string `yaml:"signIn,omitempty"`
	SignUp  string `yaml:"signUp,omitempty"`
	SignOut string `yaml:"signOut,omitempty"`
	Profile string `yaml:"profile,omitempty"`
	Reset   string `yaml:"reset,omitempty"`
}

// RedirectOptions holds optional post sign-in / sign-out destinations
type RedirectOptions struct {
	AfterSignIn  string `yaml:"afterSignIn,omitempty"`
	AfterSignOut string `yaml:"afterSignOut,omitempty"`
}

// MiddlewareOptions configures the route guard. In YAML it is either the
// literal false (guard disabled) or a mapping.
type MiddlewareOptions struct {
	Disabled         bool     `yaml:"-"`
	ProtectByDefault *bool    `yaml:"protectByDefault,omitempty"`
	Name             string   `yaml:"name,omitempty"`
	ExceptionRoutes  []string `yaml:"exceptionRoutes,omitempty"`
}

// DisabledMiddleware returns options that turn the route guard off
func DisabledMiddleware() *MiddlewareOptions {
	return &MiddlewareOptions{Disabled: true}
}

// UnmarshalYAML accepts `false`, `true` or a mapping
func (m *MiddlewareOptions) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var enabled bool
		if err := value.Decode(&enabled); err != nil {
			return fmt.Errorf("middleware must be false or a mapping: %w", err)
		}
		*m = MiddlewareOptions{Disabled: !enabled}
		return nil
	}

	type plain MiddlewareOptions
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*m = MiddlewareOptions(p)
	m.Disabled = false
	return nil
}

// MarshalYAML writes the disabled sentinel back as `false`
func (m MiddlewareOptions) MarshalYAML() (interface{}, error) {
	if m.Disabled {
		return false, nil
	}
	type plain MiddlewareOptions
	return plain(m), nil
}

// LegalOptions lists the legal document paths shown during sign-up
type LegalOptions struct {
	TermsOfService string `yaml:"termsOfService,omitempty" json:"termsOfService,omitempty"`
	PrivacyPolicy  string `yaml:"privacyPolicy,omitempty" json:"privacyPolicy,omitempty"`
	CookiePolicy   string `yaml:"cookiePolicy,omitempty" json:"cookiePolicy,omitempty"`
}

// SocialProvider is a configured social sign-in button
type SocialProvider struct {
	Name    string `yaml:"name" json:"name"`
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
	Icon    string `yaml:"icon,omitempty" json:"icon,omitempty"`
	Enabled bool   `yaml:"enabled" json:"enabled"`
}

// UnmarshalYAML accepts either a bare provider name or a mapping.
// Mappings without an explicit `enabled` key are enabled.
func (p *SocialProvider) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*p = SocialProvider{Name: value.Value, Enabled: true}
		return nil
	}

	type plain SocialProvider
	decoded := plain{Enabled: true}
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*p = SocialProvider(decoded)
	return nil
}

// ParseOptions decodes auth UI options from YAML
func ParseOptions(data []byte) (Options, error) {
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
