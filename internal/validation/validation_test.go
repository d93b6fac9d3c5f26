package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authui/internal/domain"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// fieldRules flattens a validation error into field -> rule
func fieldRules(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected *domain.ValidationError, got %v", err)
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Rule
	}
	return out
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name      string
		req       RegisterRequest
		wantRules map[string]string
	}{
		{
			name: "valid",
			req:  RegisterRequest{Email: "ada@example.com", Password: "longenough"},
		},
		{
			name: "valid with name",
			req:  RegisterRequest{Email: "ada@example.com", Password: "longenough", Name: "Ada"},
		},
		{
			name:      "bad email and short password",
			req:       RegisterRequest{Email: "not-an-email", Password: "short"},
			wantRules: map[string]string{"email": "email", "password": "min"},
		},
		{
			name:      "missing fields",
			req:       RegisterRequest{},
			wantRules: map[string]string{"email": "required", "password": "required"},
		},
		{
			name:      "password exactly seven",
			req:       RegisterRequest{Email: "ada@example.com", Password: "1234567"},
			wantRules: map[string]string{"password": "min"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.req)
			if tt.wantRules == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantRules, fieldRules(t, err))
			assert.True(t, domain.IsValidationError(err))
			assert.Equal(t, "Invalid request data", domain.PublicMessage(err))
		})
	}
}

func TestValidateRegistration_Messages(t *testing.T) {
	err := ValidateRegistration(RegisterRequest{Email: "not-an-email", Password: "short"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, domain.FieldError{Field: "email", Rule: "email", Message: "Please enter a valid email address"}, verr.Fields[0])
	assert.Equal(t, domain.FieldError{Field: "password", Rule: "min", Message: "Password must be at least 8 characters"}, verr.Fields[1])
}

func TestValidateSignIn(t *testing.T) {
	assert.NoError(t, ValidateSignIn(SignInForm{Email: "a@b.co", Password: "x"}))
	assert.Equal(t,
		map[string]string{"email": "required", "password": "required"},
		fieldRules(t, ValidateSignIn(SignInForm{})),
	)
}

func TestValidateSignUp(t *testing.T) {
	valid := SignUpForm{
		Email:           "ada@example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	}

	tests := []struct {
		name      string
		mutate    func(f *SignUpForm)
		wantRules map[string]string
	}{
		{name: "valid", mutate: func(f *SignUpForm) {}},
		{name: "valid with name and terms", mutate: func(f *SignUpForm) {
			f.Name = strPtr("Ada")
			f.AcceptTerms = boolPtr(true)
		}},
		{name: "no uppercase", mutate: func(f *SignUpForm) {
			f.Password, f.ConfirmPassword = "secret123", "secret123"
		}, wantRules: map[string]string{"password": "uppercase_letter"}},
		{name: "no lowercase", mutate: func(f *SignUpForm) {
			f.Password, f.ConfirmPassword = "SECRET123", "SECRET123"
		}, wantRules: map[string]string{"password": "lowercase_letter"}},
		{name: "no digit", mutate: func(f *SignUpForm) {
			f.Password, f.ConfirmPassword = "SecretSecret", "SecretSecret"
		}, wantRules: map[string]string{"password": "digit"}},
		{name: "mismatch", mutate: func(f *SignUpForm) {
			f.ConfirmPassword = "Secret124"
		}, wantRules: map[string]string{"confirmPassword": "eqfield"}},
		{name: "empty name", mutate: func(f *SignUpForm) {
			f.Name = strPtr("")
		}, wantRules: map[string]string{"name": "min"}},
		{name: "terms declined", mutate: func(f *SignUpForm) {
			f.AcceptTerms = boolPtr(false)
		}, wantRules: map[string]string{"acceptTerms": "eq"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			err := ValidateSignUp(form)
			if tt.wantRules == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantRules, fieldRules(t, err))
		})
	}
}

func TestValidateSignUp_MismatchMessage(t *testing.T) {
	err := ValidateSignUp(SignUpForm{Email: "a@b.co", Password: "Secret123", ConfirmPassword: "nope"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "Passwords do not match", verr.Fields[0].Message)
}

func TestValidatePasswordReset(t *testing.T) {
	assert.NoError(t, ValidatePasswordReset(PasswordResetForm{Email: "a@b.co"}))
	assert.Equal(t, map[string]string{"email": "email"}, fieldRules(t, ValidatePasswordReset(PasswordResetForm{Email: "nope"})))
}

func TestStruct_NonStruct(t *testing.T) {
	err := Struct("not a struct")
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}
