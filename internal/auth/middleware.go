package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/repository"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated API caller: the token's owning
// team and user plus the granted scopes.
type Principal struct {
	TokenID string
	TeamID  string
	User    *domain.User
	Scopes  []domain.Scope
}

// HasScope reports whether the caller was granted the scope.
func (p *Principal) HasScope(scope domain.Scope) bool {
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	validator *TokenValidator
	users     repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(validator *TokenValidator, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	result := m.validator.ValidateBearer(c.Context(), c.Get("Authorization"))
	if !result.Valid {
		return apperrors.NewUnauthorized(result.Error)
	}

	user, err := m.users.GetByID(c.Context(), result.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusActive {
		return apperrors.NewForbidden("user suspended")
	}

	c.Locals(principalKey, &Principal{
		TokenID: result.TokenID,
		TeamID:  result.TeamID,
		User:    user,
		Scopes:  result.Scopes,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
