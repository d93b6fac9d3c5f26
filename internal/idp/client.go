package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/authui/internal/domain"
)

const (
	// SignInExperiencePath is the provider's public sign-in experience API
	SignInExperiencePath = "/api/sign-in-exp"
	// DefaultTimeout bounds every outbound call
	DefaultTimeout = 5 * time.Second

	connectorsFetchError = "Failed to fetch connectors"
)

// Client talks to the identity provider's public API. Every method other
// than SignInExperience swallows failures and returns a fallback.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *Metrics
}

// Option configures a Client
type Option func(*Client)

// WithMetrics counts lookups in m
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient replaces the underlying HTTP client. A client without a
// timeout gets the one passed to NewClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the provider at endpoint. An empty
// endpoint yields a client that always falls back.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Timeout <= 0 {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
	return c
}

// Endpoint returns the provider base URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Configured reports whether an endpoint is set
func (c *Client) Configured() bool {
	return c.endpoint != ""
}

// RegistrationURL returns the provider page that starts registration
func (c *Client) RegistrationURL() (string, error) {
	if !c.Configured() {
		return "", domain.ErrEndpointNotConfigured
	}
	return c.endpoint + "/sign-in?first_screen=register", nil
}

// SignInExperience fetches the provider's sign-in experience. Under a
// context prepared with WithRequestCache the result, including a
// failure, is reused for the rest of the request.
func (c *Client) SignInExperience(ctx context.Context) (*SignInExperience, error) {
	cache := cacheFrom(ctx)
	if cache == nil {
		return c.fetch(ctx)
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.done {
		c.metrics.observe(OutcomeCached)
		return cache.exp, cache.err
	}
	cache.exp, cache.err = c.fetch(ctx)
	cache.done = true
	return cache.exp, cache.err
}

func (c *Client) fetch(ctx context.Context) (*SignInExperience, error) {
	if !c.Configured() {
		c.metrics.observe(OutcomeNotConfigured)
		return nil, domain.ErrEndpointNotConfigured
	}

	url := c.endpoint + SignInExperiencePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.metrics.observe(OutcomeError)
		return nil, domain.WrapProviderUnavailable(c.endpoint, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(OutcomeError)
		return nil, domain.WrapProviderUnavailable(c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.observe(OutcomeBadStatus)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domain.WrapProviderResponse(resp.StatusCode, fmt.Errorf("%s", strings.TrimSpace(string(body))))
	}

	var exp SignInExperience
	if err := json.NewDecoder(resp.Body).Decode(&exp); err != nil {
		c.metrics.observe(OutcomeError)
		return nil, domain.WrapProviderUnavailable(c.endpoint, fmt.Errorf("failed to decode response: %w", err))
	}

	c.metrics.observe(OutcomeSuccess)
	return &exp, nil
}

// Connectors returns the provider's enabled social connectors. It never
// fails: on any problem the list is empty, and Error is set when the
// provider could not be reached or read.
func (c *Client) Connectors(ctx context.Context) ConnectorsResult {
	exp, err := c.SignInExperience(ctx)
	if err != nil {
		result := ConnectorsResult{Connectors: []Connector{}}
		switch {
		case errors.Is(err, domain.ErrEndpointNotConfigured):
			c.logger.Warn("identity provider endpoint not configured, cannot detect social connectors")
		case errors.Is(err, domain.ErrProviderResponse):
			c.logger.Warn("failed to fetch sign-in experience", "endpoint", c.endpoint, "error", err)
		default:
			c.logger.Error("error fetching social connectors", "endpoint", c.endpoint, "error", err)
			result.Error = connectorsFetchError
		}
		return result
	}

	connectors := make([]Connector, 0, len(exp.SocialConnectors))
	for _, sc := range exp.SocialConnectors {
		connectors = append(connectors, sc.ToConnector())
	}

	policy := DefaultPasswordPolicy()
	if exp.PasswordPolicy != nil {
		policy = *exp.PasswordPolicy
	}
	fromCache := false
	return ConnectorsResult{
		Connectors:     connectors,
		PasswordPolicy: &policy,
		FromCache:      &fromCache,
	}
}

// PasswordPolicy returns the provider's password policy, or
// DefaultPasswordPolicy when it is unavailable for any reason.
func (c *Client) PasswordPolicy(ctx context.Context) PasswordPolicy {
	exp, err := c.SignInExperience(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrEndpointNotConfigured) {
			c.logger.Warn("failed to fetch password policy, using default", "endpoint", c.endpoint, "error", err)
		}
		return DefaultPasswordPolicy()
	}
	if exp.PasswordPolicy == nil {
		return DefaultPasswordPolicy()
	}
	return *exp.PasswordPolicy
}
