package dto

import (
	"time"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// RegisterRequest payload for team registration.
type RegisterRequest struct {
	TeamName  string `json:"team_name"`
	TeamSlug  string `json:"team_slug"`
	AdminName string `json:"admin_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest payload for password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MagicLinkRequest payload for requesting a sign-in link.
type MagicLinkRequest struct {
	Email       string `json:"email"`
	CallbackURL string `json:"callbackUrl"`
}

// CreateTokenRequest payload for minting a named API token.
type CreateTokenRequest struct {
	Name      string         `json:"name"`
	Scopes    []domain.Scope `json:"scopes"`
	ExpiresAt *time.Time     `json:"expires_at"`
}

// AuthResponse standard response for auth endpoints. Token is the raw
// bearer secret; it is shown exactly once.
type AuthResponse struct {
	Token     string     `json:"token"`
	TokenID   string     `json:"token_id"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// TokenSummary describes a stored token without its secret.
type TokenSummary struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Prefix     string         `json:"prefix"`
	Scopes     []domain.Scope `json:"scopes"`
	ExpiresAt  *time.Time     `json:"expires_at"`
	LastUsedAt *time.Time     `json:"last_used_at"`
	CreatedAt  time.Time      `json:"created_at"`
}
