package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fundvault/dataroom-service/internal/api/dto"
	"github.com/fundvault/dataroom-service/internal/auth"
	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/service"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

var knownScopes = map[domain.Scope]struct{}{
	domain.ScopeDataroomsRead:  {},
	domain.ScopeDataroomsWrite: {},
	domain.ScopeInvestorsRead:  {},
	domain.ScopeInvestorsWrite: {},
	domain.ScopeBilling:        {},
}

// AuthHandler manages login, magic links and API tokens.
type AuthHandler struct {
	service   *service.AuthService
	datarooms *service.DataroomService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, dataroomService *service.DataroomService) *AuthHandler {
	return &AuthHandler{service: authService, datarooms: dataroomService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TeamName == "" || req.TeamSlug == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("team_name, team_slug, email, password required", nil)
	}

	_, secret, token, err := h.service.RegisterTeam(c.Context(), req.TeamName, req.TeamSlug, req.AdminName, req.Email, req.Password, c.IP())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     secret,
		TokenID:   token.ID,
		ExpiresAt: token.ExpiresAt,
	}})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email, password required", nil)
	}

	_, secret, token, err := h.service.LoginAdmin(c.Context(), req.Email, req.Password, c.IP())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     secret,
		TokenID:   token.ID,
		ExpiresAt: token.ExpiresAt,
	}})
}

// RequestMagicLink POST /auth/magic-link/request. Responds identically
// for known and unknown emails.
func (h *AuthHandler) RequestMagicLink(c *fiber.Ctx) error {
	var req dto.MagicLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	if err := h.service.RequestMagicLink(c.Context(), req.Email, req.CallbackURL, c.IP()); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"status": "sent"}})
}

// EmailCallback GET /api/auth/callback/email. Consumes a magic link
// token. Viewer verification links carry a /view/ callback and mark the
// viewer verified instead of minting a token.
func (h *AuthHandler) EmailCallback(c *fiber.Ctx) error {
	token := c.Query("token")
	email := c.Query("email")
	callbackURL := c.Query("callbackUrl")
	if token == "" || email == "" {
		return apperrors.NewValidationError("token, email required", nil)
	}

	if slug, ok := viewSlugFromCallback(callbackURL); ok {
		if err := h.datarooms.VerifyViewer(c.Context(), token, email, slug); err != nil {
			return err
		}
		return c.Redirect(callbackURL, http.StatusFound)
	}

	_, secret, apiToken, err := h.service.VerifyMagicLink(c.Context(), token, email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     secret,
		TokenID:   apiToken.ID,
		ExpiresAt: apiToken.ExpiresAt,
	}})
}

// CreateToken POST /auth/tokens.
func (h *AuthHandler) CreateToken(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || len(req.Scopes) == 0 {
		return apperrors.NewValidationError("name, scopes required", nil)
	}
	for _, scope := range req.Scopes {
		if _, known := knownScopes[scope]; !known {
			return apperrors.NewValidationError("unknown scope", map[string]any{"scope": string(scope)})
		}
	}

	secret, token, err := h.service.CreateAPIToken(c.Context(), principal.User, req.Name, req.Scopes, req.ExpiresAt)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     secret,
		TokenID:   token.ID,
		ExpiresAt: token.ExpiresAt,
	}})
}

// ListTokens GET /auth/tokens.
func (h *AuthHandler) ListTokens(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	tokens, err := h.service.ListAPITokens(c.Context(), principal.TeamID)
	if err != nil {
		return err
	}
	items := make([]dto.TokenSummary, 0, len(tokens))
	for i := range tokens {
		items = append(items, tokenSummary(&tokens[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func tokenSummary(token *domain.APIToken) dto.TokenSummary {
	return dto.TokenSummary{
		ID:         token.ID,
		Name:       token.Name,
		Prefix:     token.Prefix,
		Scopes:     token.Scopes,
		ExpiresAt:  token.ExpiresAt,
		LastUsedAt: token.LastUsedAt,
		CreatedAt:  token.CreatedAt,
	}
}

func viewSlugFromCallback(callbackURL string) (string, bool) {
	const prefix = "/view/"
	if !strings.HasPrefix(callbackURL, prefix) {
		return "", false
	}
	slug := strings.TrimPrefix(callbackURL, prefix)
	if idx := strings.IndexAny(slug, "/?"); idx >= 0 {
		slug = slug[:idx]
	}
	return slug, slug != ""
}
