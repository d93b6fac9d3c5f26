package apipaths

// Single API surface paths. Used by routes, by the gateway router and by authctl.

const (
	Health         = "/api/health"
	Me             = "/api/me"
	Metrics        = "/metrics"
	AuthUIPrefix   = "/api/auth-ui/"
	AuthUIConfig   = "/api/auth-ui/config"
	Connectors     = "/api/auth-ui/connectors"
	PasswordPolicy = "/api/auth-ui/password-policy"
	Register       = "/api/auth-ui/register"
	ValidatePrefix = "/api/auth-ui/validate/"
	OAuthPrefix    = "/oauth/"
	AvatarPrefix   = "/avatar/"
	FormSignIn     = "sign-in"
	FormSignUp     = "sign-up"
	FormReset      = "reset"
)

func ValidateForm(form string) string { return ValidatePrefix + form }
func OAuthLogin(provider string) string { return OAuthPrefix + provider + "/login" }
func OAuthLogout(provider string) string { return OAuthPrefix + provider + "/logout" }
