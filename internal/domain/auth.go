package domain

import "time"

// Scope names a capability granted to an API token.
type Scope string

const (
	ScopeDataroomsRead  Scope = "datarooms:read"
	ScopeDataroomsWrite Scope = "datarooms:write"
	ScopeInvestorsRead  Scope = "investors:read"
	ScopeInvestorsWrite Scope = "investors:write"
	ScopeBilling        Scope = "billing"
)

// APIToken is the stored record for an opaque bearer secret. The raw
// secret is never persisted; only its SHA-256 hash is kept.
type APIToken struct {
	ID         string
	TeamID     string
	UserID     string
	Name       string
	TokenHash  string
	Prefix     string
	Scopes     []Scope
	ExpiresAt  *time.Time
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// HasScope reports whether the token was granted the given scope.
func (t *APIToken) HasScope(scope Scope) bool {
	for _, s := range t.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
