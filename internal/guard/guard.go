package guard

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/authui/internal/config"
)

// Action is the outcome of a guard evaluation
type Action int

const (
	// Allow lets the request through
	Allow Action = iota
	// RedirectToSignIn sends an unauthenticated visitor to the sign-in page
	RedirectToSignIn
	// RedirectAfterSignIn moves an authenticated visitor off an auth page
	RedirectAfterSignIn
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case RedirectToSignIn:
		return "redirect_sign_in"
	case RedirectAfterSignIn:
		return "redirect_after_sign_in"
	default:
		return "unknown"
	}
}

// Class is how a path was classified during evaluation
type Class struct {
	AuthRoute  bool `json:"authRoute"`
	LegalRoute bool `json:"legalRoute"`
	Exception  bool `json:"exception"`
	Protected  bool `json:"protected"`
}

// Decision is the result of evaluating one path
type Decision struct {
	Action   Action
	Location string
	Class    Class
}

// Redirect reports whether the decision requires a redirect
func (d Decision) Redirect() bool {
	return d.Action != Allow
}

// Guard decides per request whether a path needs a session. It holds
// only read-only state and is safe for concurrent use.
type Guard struct {
	disabled         bool
	protectByDefault bool
	name             string
	signIn           string
	afterSignIn      string
	authRoutes       []string
	legalRoutes      []string
	exceptions       []Pattern
	metrics          *Metrics
}

// Option configures a Guard
type Option func(*Guard)

// WithMetrics records every decision in m
func WithMetrics(m *Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// New builds a guard from resolved configuration. Exception patterns are
// compiled once here; invalid ones are logged and never match.
func New(cfg config.Config, opts ...Option) *Guard {
	g := &Guard{
		disabled:         cfg.Middleware.Disabled,
		protectByDefault: cfg.Middleware.ProtectByDefault,
		name:             cfg.Middleware.Name,
		signIn:           cfg.Routes.SignIn,
		afterSignIn:      cfg.Redirects.AfterSignIn,
		authRoutes:       cfg.AuthRoutes(),
		legalRoutes:      cfg.LegalRoutes(),
	}
	if g.signIn == "" {
		g.signIn = config.DefaultSignInPath
	}
	if g.afterSignIn == "" {
		g.afterSignIn = config.DefaultRedirect
	}

	g.exceptions = make([]Pattern, 0, len(cfg.Middleware.ExceptionRoutes))
	for _, raw := range cfg.Middleware.ExceptionRoutes {
		p := CompilePattern(raw)
		if p.Err() != nil {
			slog.Warn("guard: exception route does not compile and will never match",
				"guard", g.name,
				"pattern", raw,
				"error", p.Err(),
			)
		}
		g.exceptions = append(g.exceptions, p)
	}

	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the configured middleware name
func (g *Guard) Name() string {
	return g.name
}

// Disabled reports whether the guard lets everything through
func (g *Guard) Disabled() bool {
	return g.disabled
}

// Classify reports how path is treated without considering the session
func (g *Guard) Classify(path string) Class {
	c := Class{
		AuthRoute:  contains(g.authRoutes, path),
		LegalRoute: contains(g.legalRoutes, path),
		Exception:  g.isException(path),
	}

	if g.protectByDefault {
		c.Protected = !c.AuthRoute && !c.LegalRoute && !c.Exception
	} else {
		c.Protected = !c.AuthRoute && !c.LegalRoute && c.Exception
	}
	return c
}

// Evaluate decides what to do with a request for path given whether the
// caller holds a valid session.
func (g *Guard) Evaluate(path string, authenticated bool) Decision {
	d := g.evaluate(path, authenticated)
	if g.metrics != nil {
		g.metrics.observe(g.name, d)
	}
	return d
}

func (g *Guard) evaluate(path string, authenticated bool) Decision {
	if g.disabled {
		return Decision{Action: Allow}
	}

	class := g.Classify(path)

	if authenticated {
		if class.AuthRoute && path != g.afterSignIn {
			return Decision{Action: RedirectAfterSignIn, Location: g.afterSignIn, Class: class}
		}
		return Decision{Action: Allow, Class: class}
	}

	if class.Protected && path != g.signIn {
		return Decision{Action: RedirectToSignIn, Location: SignInLocation(g.signIn, path), Class: class}
	}
	return Decision{Action: Allow, Class: class}
}

func (g *Guard) isException(path string) bool {
	for _, p := range g.exceptions {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// SignInLocation builds the sign-in URL carrying path as the `redirect`
// continuation. Returning to "/" needs no continuation.
func SignInLocation(signIn, path string) string {
	if path == "/" {
		return signIn
	}
	return signIn + "?redirect=" + EncodeURIComponent(path)
}

// EncodeURIComponent escapes s the way browsers' encodeURIComponent does:
// everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ) is percent-encoded.
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return uriComponentFixups.Replace(escaped)
}

var uriComponentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
