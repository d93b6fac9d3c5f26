package config

import (
	"encoding/json"
	"strings"
)

// Default route paths and redirect targets
const (
	DefaultSignInPath      = "/auth/sign-in"
	DefaultSignUpPath      = "/auth/sign-up"
	DefaultSignOutPath     = "/auth/sign-out"
	DefaultProfilePath     = "/auth/profile"
	DefaultResetPath       = "/auth/reset"
	DefaultRedirect        = "/"
	DefaultComponentPrefix = "A"
	DefaultMiddlewareName  = "auth"
	DefaultLocale          = "en"
)

// Config is the fully resolved auth UI configuration. Build it once with
// Resolve and treat it as read-only afterwards.
type Config struct {
	Mock            bool                         `json:"mock"`
	Routes          Routes                       `json:"routes"`
	ComponentPrefix string                       `json:"componentPrefix"`
	Redirects       Redirects                    `json:"redirects"`
	Middleware      Middleware                   `json:"middleware"`
	Legal           LegalOptions                 `json:"legal"`
	SocialProviders []SocialProvider             `json:"socialProviders"`
	Locale          string                       `json:"locale"`
	Messages        map[string]map[string]string `json:"-"`
	Icons           map[string]string            `json:"icons"`
}

// Routes are the resolved auth page paths
type Routes struct {
	SignIn  string `json:"signIn"`
	SignUp  string `json:"signUp"`
	SignOut string `json:"signOut"`
	Profile string `json:"profile"`
	Reset   string `json:"reset"`
}

// Redirects are the resolved post sign-in / sign-out destinations
type Redirects struct {
	AfterSignIn  string `json:"afterSignIn"`
	AfterSignOut string `json:"afterSignOut"`
}

// Middleware is the resolved route guard configuration
type Middleware struct {
	Disabled         bool     `json:"-"`
	ProtectByDefault bool     `json:"protectByDefault"`
	Name             string   `json:"name"`
	ExceptionRoutes  []string `json:"exceptionRoutes"`
}

// MarshalJSON renders a disabled guard as `false`
func (m Middleware) MarshalJSON() ([]byte, error) {
	if m.Disabled {
		return []byte("false"), nil
	}
	type plain Middleware
	return json.Marshal(plain(m))
}

// defaultIcons mirrors the icon set the UI components expect
var defaultIcons = map[string]string{
	"authSignIn":    "i-heroicons-arrow-right-on-rectangle",
	"authSignOut":   "i-heroicons-arrow-left-on-rectangle",
	"authUser":      "i-heroicons-user-circle",
	"authProfile":   "i-heroicons-user",
	"authSettings":  "i-heroicons-cog-6-tooth",
	"authSecurity":  "i-heroicons-shield-check",
	"authPassword":  "i-heroicons-key",
	"authEmail":     "i-heroicons-envelope",
	"authSocial":    "i-heroicons-globe-alt",
	"authProvider":  "i-heroicons-arrow-right-on-rectangle",
	"authGoogle":    "i-simple-icons-google",
	"authGitHub":    "i-simple-icons-github",
	"authMicrosoft": "i-simple-icons-microsoft",
}

// providerDisplayNames covers providers whose name is not simply capitalized
var providerDisplayNames = map[string]string{
	"github":    "GitHub",
	"gitlab":    "GitLab",
	"linkedin":  "LinkedIn",
	"battlenet": "Battle.net",
}

// Defaults returns the fixed default options
func Defaults() Options {
	protect := true
	return Options{
		Mock: false,
		Routes: RouteOptions{
			SignIn:  DefaultSignInPath,
			SignUp:  DefaultSignUpPath,
			SignOut: DefaultSignOutPath,
			Profile: DefaultProfilePath,
			Reset:   DefaultResetPath,
		},
		ComponentPrefix: DefaultComponentPrefix,
		Redirects: RedirectOptions{
			AfterSignIn:  DefaultRedirect,
			AfterSignOut: DefaultRedirect,
		},
		Middleware: &MiddlewareOptions{
			ProtectByDefault: &protect,
			Name:             DefaultMiddlewareName,
			ExceptionRoutes:  []string{},
		},
		Locale: DefaultLocale,
	}
}

// Resolve fills every absent field of opts with its default. Nested
// objects are merged one level deep; `middleware: false` resolves to a
// disabled guard.
func Resolve(opts Options) Config {
	def := Defaults()

	cfg := Config{
		Mock: opts.Mock,
		Routes: Routes{
			SignIn:  or(opts.Routes.SignIn, def.Routes.SignIn),
			SignUp:  or(opts.Routes.SignUp, def.Routes.SignUp),
			SignOut: or(opts.Routes.SignOut, def.Routes.SignOut),
			Profile: or(opts.Routes.Profile, def.Routes.Profile),
			Reset:   or(opts.Routes.Reset, def.Routes.Reset),
		},
		ComponentPrefix: or(opts.ComponentPrefix, def.ComponentPrefix),
		Redirects: Redirects{
			AfterSignIn:  or(opts.Redirects.AfterSignIn, def.Redirects.AfterSignIn),
			AfterSignOut: or(opts.Redirects.AfterSignOut, def.Redirects.AfterSignOut),
		},
		Locale:   or(opts.Locale, def.Locale),
		Messages: opts.Messages,
		Icons:    resolveIcons(opts.Icons),
	}

	cfg.Middleware = resolveMiddleware(opts.Middleware, def.Middleware)

	if opts.Legal != nil {
		cfg.Legal = *opts.Legal
	}

	cfg.SocialProviders = make([]SocialProvider, 0, len(opts.SocialProviders))
	for _, p := range opts.SocialProviders {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			continue
		}
		cfg.SocialProviders = append(cfg.SocialProviders, SocialProvider{
			Name:    name,
			Label:   or(p.Label, "Continue with "+displayName(name)),
			Icon:    or(p.Icon, "i-simple-icons-"+name),
			Enabled: p.Enabled,
		})
	}

	return cfg
}

func resolveMiddleware(opts, def *MiddlewareOptions) Middleware {
	if opts != nil && opts.Disabled {
		return Middleware{Disabled: true, Name: def.Name, ExceptionRoutes: []string{}}
	}
	if opts == nil {
		opts = &MiddlewareOptions{}
	}

	m := Middleware{
		ProtectByDefault: *def.ProtectByDefault,
		Name:             or(opts.Name, def.Name),
		ExceptionRoutes:  opts.ExceptionRoutes,
	}
	if opts.ProtectByDefault != nil {
		m.ProtectByDefault = *opts.ProtectByDefault
	}
	if m.ExceptionRoutes == nil {
		m.ExceptionRoutes = []string{}
	}
	return m
}

func resolveIcons(overrides map[string]string) map[string]string {
	icons := make(map[string]string, len(defaultIcons)+len(overrides))
	for k, v := range defaultIcons {
		icons[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			icons[k] = v
		}
	}
	return icons
}

func displayName(provider string) string {
	if name, ok := providerDisplayNames[provider]; ok {
		return name
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// AuthRoutes returns the paths reachable without a session: sign-in,
// sign-up and password reset. Empty paths are skipped.
func (c Config) AuthRoutes() []string {
	return nonEmpty(c.Routes.SignIn, c.Routes.SignUp, c.Routes.Reset)
}

// LegalRoutes returns the configured legal document paths
func (c Config) LegalRoutes() []string {
	return nonEmpty(c.Legal.TermsOfService, c.Legal.PrivacyPolicy, c.Legal.CookiePolicy)
}

// AuthURL returns the path for one of sign-in, sign-up, profile or reset
func (c Config) AuthURL(kind string) string {
	switch kind {
	case "sign-in":
		return c.Routes.SignIn
	case "sign-up":
		return c.Routes.SignUp
	case "sign-out":
		return c.Routes.SignOut
	case "profile":
		return c.Routes.Profile
	case "reset":
		return c.Routes.Reset
	default:
		return ""
	}
}

// EnabledSocialProviders returns the social providers switched on in config
func (c Config) EnabledSocialProviders() []SocialProvider {
	enabled := make([]SocialProvider, 0, len(c.SocialProviders))
	for _, p := range c.SocialProviders {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
