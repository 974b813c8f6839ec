package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fundvault/dataroom-service/internal/domain"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

// RequireScope ensures the authenticated token carries one of the
// allowed scopes. With no arguments it only requires authentication.
func RequireScope(allowed ...domain.Scope) fiber.Handler {
	allowedSet := make(map[domain.Scope]struct{}, len(allowed))
	for _, scope := range allowed {
		allowedSet[scope] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		for _, scope := range principal.Scopes {
			if _, exists := allowedSet[scope]; exists {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("insufficient scope")
	}
}
