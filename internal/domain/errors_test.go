package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapValidationError(t *testing.T) {
	tests := []struct {
		name              string
		field             string
		cause             error
		expectedPublicMsg string
	}{
		{
			name:              "with cause error",
			field:             "email",
			cause:             errors.New("must be a valid email address"),
			expectedPublicMsg: "validation failed for email: must be a valid email address",
		},
		{
			name:              "with nil cause",
			field:             "password",
			cause:             nil,
			expectedPublicMsg: "validation failed for password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapValidationError(tt.field, tt.cause)
			require.Error(t, err)

			var domainErr *DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Contains(t, err.Error(), "VALIDATION_FAILED")
			assert.Equal(t, tt.expectedPublicMsg, PublicMessage(err))
			assert.True(t, errors.Is(err, ErrValidationFailed))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "email", Rule: "email", Message: "must be a valid email address"},
		{Field: "password", Rule: "min", Message: "must be at least 8 characters"},
	}}

	assert.True(t, err.Has("email"))
	assert.True(t, err.Has("password"))
	assert.False(t, err.Has("name"))
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Invalid request data", PublicMessage(err))
	assert.True(t, strings.HasPrefix(err.Error(), "VALIDATION_FAILED: email:"))
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedMsg string
	}{
		{"domain error with message", &DomainError{Code: "TEST_ERROR", Message: "test message"}, "test message"},
		{"endpoint not configured", ErrEndpointNotConfigured, "identity provider endpoint not configured"},
		{"non-domain error", errors.New("some random error"), "An error occurred"},
		{"nil error returns generic message", nil, "An error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, PublicMessage(tt.err))
		})
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		validation     bool
		provider       bool
		infrastructure bool
	}{
		{"validation", WrapValidationError("email", nil), true, false, false},
		{"provider unavailable", WrapProviderUnavailable("http://idp", errors.New("dial tcp")), false, true, false},
		{"provider response", WrapProviderResponse(502, nil), false, true, false},
		{"endpoint missing", ErrEndpointNotConfigured, false, true, false},
		{"database", WrapDatabaseOperation("insert", errors.New("locked")), false, false, true},
		{"nil", nil, false, false, false},
		{"plain", errors.New("x"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.provider, IsProviderError(tt.err))
			assert.Equal(t, tt.infrastructure, IsInfrastructureError(tt.err))
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapProviderUnavailable("http://idp", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrProviderUnavailable))
	assert.False(t, errors.Is(err, ErrProviderResponse))
}
