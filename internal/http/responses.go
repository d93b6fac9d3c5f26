package http

import "github.com/authui/internal/domain"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ValidationErrorResponse lists the offending fields of a rejected request
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields"`
}

// GuardResponse tells a JSON client where to go instead of redirecting it
type GuardResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// RegisterResponse is the result of a successful registration request
type RegisterResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirectUrl"`
}

func newValidationErrorResponse(err error) (ValidationErrorResponse, bool) {
	verr, ok := err.(*domain.ValidationError)
	if !ok {
		return ValidationErrorResponse{}, false
	}
	return ValidationErrorResponse{Error: domain.PublicMessage(err), Fields: verr.Fields}, true
}
