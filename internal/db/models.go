package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RegistrationIntent records a registration request that passed
// validation and was handed off to the identity provider. Passwords are
// never stored.
type RegistrationIntent struct {
	ID          string    `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Name        string    `json:"name,omitempty" db:"name"`
	RedirectURL string    `json:"redirect_url" db:"redirect_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewRegistrationIntent creates an intent with a new UUID and timestamp
func NewRegistrationIntent(email, name, redirectURL string) *RegistrationIntent {
	return &RegistrationIntent{
		ID:          uuid.New().String(),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Name:        strings.TrimSpace(name),
		RedirectURL: redirectURL,
		CreatedAt:   time.Now().UTC(),
	}
}
