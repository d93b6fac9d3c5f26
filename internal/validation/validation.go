package validation

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/authui/internal/domain"
)

// RegisterRequest is the body of a registration call
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name,omitempty"`
}

// SignInForm is the sign-in form
type SignInForm struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

// SignUpForm is the sign-up form. Name and AcceptTerms are optional but
// validated when present.
type SignUpForm struct {
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8,uppercase_letter,lowercase_letter,digit"`
	ConfirmPassword string  `json:"confirmPassword" validate:"required,eqfield=Password"`
	Name            *string `json:"name,omitempty" validate:"omitnil,min=1"`
	AcceptTerms     *bool   `json:"acceptTerms,omitempty" validate:"omitnil,eq=true"`
}

// PasswordResetForm is the password reset request form
type PasswordResetForm struct {
	Email string `json:"email" validate:"required,email"`
}

// messages maps "field.rule" (or just "rule") to the user-facing text
var messages = map[string]string{
	"email.required":            "Email is required",
	"email.email":               "Please enter a valid email address",
	"password.required":         "Password is required",
	"password.min":              "Password must be at least 8 characters",
	"password.uppercase_letter": "Password must contain at least one uppercase letter",
	"password.lowercase_letter": "Password must contain at least one lowercase letter",
	"password.digit":            "Password must contain at least one number",
	"confirmPassword.required":  "Please confirm your password",
	"confirmPassword.eqfield":   "Passwords do not match",
	"name.min":                  "Name is required",
	"acceptTerms.eq":            "You must accept the terms and conditions",
	"required":                  "This field is required",
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// engine returns the shared validator, configured to report JSON field
// names and to know the password character rules.
func engine() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("uppercase_letter", containsRune(unicode.IsUpper))
		_ = v.RegisterValidation("lowercase_letter", containsRune(unicode.IsLower))
		_ = v.RegisterValidation("digit", containsRune(unicode.IsDigit))
		validate = v
	})
	return validate
}

// Engine exposes the configured validator so transports can bind with it
func Engine() *validator.Validate {
	return engine()
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func containsRune(pred func(rune) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), pred) >= 0
	}
}

// ValidateRegistration checks a registration request: a valid email and
// a password of at least 8 characters.
func ValidateRegistration(req RegisterRequest) error {
	return Struct(req)
}

// ValidateSignIn checks the sign-in form
func ValidateSignIn(form SignInForm) error {
	return Struct(form)
}

// ValidateSignUp checks the sign-up form
func ValidateSignUp(form SignUpForm) error {
	return Struct(form)
}

// ValidatePasswordReset checks the password reset form
func ValidatePasswordReset(form PasswordResetForm) error {
	return Struct(form)
}

// Struct validates any tagged struct and converts failures to a
// *domain.ValidationError keyed by JSON field name.
func Struct(s interface{}) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.WrapValidationError("request", err)
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return &domain.ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	return "Invalid value"
}
