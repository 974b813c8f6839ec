package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fundvault/dataroom-service/internal/auth"
	"github.com/fundvault/dataroom-service/internal/flags"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

// FlagsHandler exposes the caller's resolved feature flags.
type FlagsHandler struct {
	resolver *flags.Resolver
}

// NewFlagsHandler constructs handler.
func NewFlagsHandler(resolver *flags.Resolver) *FlagsHandler {
	return &FlagsHandler{resolver: resolver}
}

// GetFlags GET /flags.
func (h *FlagsHandler) GetFlags(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	resolved := h.resolver.GetFeatureFlags(c.Context(), principal.TeamID)
	return c.JSON(fiber.Map{"data": resolved})
}
