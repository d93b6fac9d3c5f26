package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// Domain Error Types
// ============================================================================

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on the error code so sentinels work with errors.Is
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// FieldError describes one offending input field
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries the per-field failures of a rejected input
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Code, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is(err, ErrValidationFailed) succeed
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Has reports whether the given field failed
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ============================================================================
// Common Domain Errors
// ============================================================================

var (
	// Validation Errors
	ErrValidationFailed = &DomainError{
		Code:    "VALIDATION_FAILED",
		Message: "validation failed",
	}
	ErrRequiredFieldMissing = &DomainError{
		Code:    "REQUIRED_FIELD_MISSING",
		Message: "required field is missing",
	}

	// Configuration Errors
	ErrConfigInvalid = &DomainError{
		Code:    "CONFIG_INVALID",
		Message: "configuration is invalid",
	}
	ErrEndpointNotConfigured = &DomainError{
		Code:    "ENDPOINT_NOT_CONFIGURED",
		Message: "identity provider endpoint not configured",
	}

	// Identity Provider Errors
	ErrProviderUnavailable = &DomainError{
		Code:    "PROVIDER_UNAVAILABLE",
		Message: "identity provider unavailable",
	}
	ErrProviderResponse = &DomainError{
		Code:    "PROVIDER_BAD_RESPONSE",
		Message: "identity provider returned an unexpected response",
	}

	// Session Errors
	ErrNotAuthenticated = &DomainError{
		Code:    "NOT_AUTHENTICATED",
		Message: "not authenticated",
	}

	// Infrastructure Errors
	ErrDatabaseOperation = &DomainError{
		Code:    "DATABASE_OPERATION_FAILED",
		Message: "database operation failed",
	}
	ErrNetworkOperation = &DomainError{
		Code:    "NETWORK_OPERATION_FAILED",
		Message: "network operation failed",
	}
)

// ============================================================================
// Error Wrapping Helpers
// ============================================================================

// WrapValidationError wraps an error as a validation failure for a field
func WrapValidationError(field string, cause error) error {
	msg := fmt.Sprintf("validation failed for %s", field)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &DomainError{
		Code:    ErrValidationFailed.Code,
		Message: msg,
		Cause:   cause,
	}
}

// WrapConfigInvalid wraps an error as a configuration problem
func WrapConfigInvalid(source string, cause error) error {
	return &DomainError{
		Code:    ErrConfigInvalid.Code,
		Message: fmt.Sprintf("invalid configuration in %s", source),
		Cause:   cause,
	}
}

// WrapProviderUnavailable wraps a transport failure talking to the identity provider
func WrapProviderUnavailable(endpoint string, cause error) error {
	return &DomainError{
		Code:    ErrProviderUnavailable.Code,
		Message: fmt.Sprintf("identity provider unavailable: %s", endpoint),
		Cause:   cause,
	}
}

// WrapProviderResponse wraps a non-2xx or undecodable identity provider response
func WrapProviderResponse(status int, cause error) error {
	return &DomainError{
		Code:    ErrProviderResponse.Code,
		Message: fmt.Sprintf("identity provider responded with status %d", status),
		Cause:   cause,
	}
}

// WrapDatabaseOperation wraps an error as a database operation failure
func WrapDatabaseOperation(operation string, cause error) error {
	return &DomainError{
		Code:    ErrDatabaseOperation.Code,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Cause:   cause,
	}
}

// ============================================================================
// Error Checking Helpers
// ============================================================================

// PublicMessage returns a message that is safe to show to end users
func PublicMessage(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return "Invalid request data"
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "An error occurred"
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return true
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrValidationFailed.Code ||
			domainErr.Code == ErrRequiredFieldMissing.Code
	}
	return false
}

// IsProviderError checks if an error came from talking to the identity provider
func IsProviderError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrProviderUnavailable.Code ||
			domainErr.Code == ErrProviderResponse.Code ||
			domainErr.Code == ErrEndpointNotConfigured.Code
	}
	return false
}

// IsInfrastructureError checks if an error is an infrastructure error
func IsInfrastructureError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrDatabaseOperation.Code ||
			domainErr.Code == ErrNetworkOperation.Code
	}
	return false
}
