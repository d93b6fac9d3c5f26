package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/authui/internal/domain"
	"github.com/authui/internal/idp"
)

// UserInfo is the personal data a password must not contain when the
// policy rejects user info.
type UserInfo struct {
	Email string
	Name  string
}

// CheckPasswordPolicy checks password against the provider's policy:
// length bounds, number of character types and rejected words. Breach
// lookups (pwned) are left to the identity provider.
func CheckPasswordPolicy(password string, policy idp.PasswordPolicy, user UserInfo) error {
	var fields []domain.FieldError
	fail := func(rule, msg string) {
		fields = append(fields, domain.FieldError{Field: "password", Rule: rule, Message: msg})
	}

	length := utf8.RuneCountInString(password)
	if policy.Length.Min > 0 && length < policy.Length.Min {
		fail("min", fmt.Sprintf("Password must be at least %d characters", policy.Length.Min))
	}
	if policy.Length.Max > 0 && length > policy.Length.Max {
		fail("max", fmt.Sprintf("Password must be at most %d characters", policy.Length.Max))
	}

	if n := characterTypes(password); n < policy.CharacterTypes.Min {
		fail("characterTypes", fmt.Sprintf("Password must contain at least %d of: lowercase letters, uppercase letters, digits, symbols", policy.CharacterTypes.Min))
	}

	if policy.Rejects.RepetitionAndSequence && hasRepetitionOrSequence(password) {
		fail("repetitionAndSequence", "Password must not contain repeated or sequential characters")
	}

	lower := strings.ToLower(password)
	if policy.Rejects.UserInfo {
		for _, part := range userInfoParts(user) {
			if strings.Contains(lower, part) {
				fail("userInfo", "Password must not contain your personal information")
				break
			}
		}
	}
	for _, word := range policy.Rejects.Words {
		if word != "" && strings.Contains(lower, strings.ToLower(word)) {
			fail("words", "Password contains a restricted word")
			break
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}

func characterTypes(password string) int {
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	n := 0
	for _, has := range []bool{lower, upper, digit, symbol} {
		if has {
			n++
		}
	}
	return n
}

// hasRepetitionOrSequence reports runs of three identical or consecutive
// characters, such as "aaa", "abc" or "321".
func hasRepetitionOrSequence(password string) bool {
	runes := []rune(password)
	for i := 2; i < len(runes); i++ {
		a, b, c := runes[i-2], runes[i-1], runes[i]
		if a == b && b == c {
			return true
		}
		if b-a == c-b && (b-a == 1 || b-a == -1) {
			return true
		}
	}
	return false
}

// userInfoParts returns the lowercased fragments of user data that are
// long enough to be meaningful.
func userInfoParts(user UserInfo) []string {
	var parts []string
	if local, _, ok := strings.Cut(user.Email, "@"); ok && len(local) >= 3 {
		parts = append(parts, strings.ToLower(local))
	}
	for _, p := range strings.Fields(user.Name) {
		if len(p) >= 3 {
			parts = append(parts, strings.ToLower(p))
		}
	}
	return parts
}
