package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/fundvault/dataroom-service/internal/auth"
	"github.com/fundvault/dataroom-service/internal/repository"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

var unsubscribeContexts = map[string]struct{}{
	string(auth.UnsubscribeDataroom):     {},
	string(auth.UnsubscribeYearInReview): {},
}

// UnsubscribeHandler processes signed opt-out links from notification
// emails. The token itself authorizes the action; no login is required.
type UnsubscribeHandler struct {
	tokens  *auth.UnsubscribeTokens
	viewers repository.ViewerRepository
	users   repository.UserRepository
}

// NewUnsubscribeHandler constructs handler.
func NewUnsubscribeHandler(tokens *auth.UnsubscribeTokens, viewers repository.ViewerRepository, users repository.UserRepository) *UnsubscribeHandler {
	return &UnsubscribeHandler{tokens: tokens, viewers: viewers, users: users}
}

// Unsubscribe GET /unsubscribe/:context/:token. Tokens carry either a
// viewer ID or an admin user ID; the viewer table is tried first and
// the user table second, so both recipient kinds can opt out through
// the same link shape.
func (h *UnsubscribeHandler) Unsubscribe(c *fiber.Ctx) error {
	ctxName := c.Params("context")
	if _, known := unsubscribeContexts[ctxName]; !known {
		return apperrors.NewNotFound("unsubscribe context", nil)
	}

	claims, err := h.tokens.Parse(c.Params("token"))
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired unsubscribe link")
	}

	now := time.Now()
	err = h.viewers.MarkUnsubscribed(c.Context(), claims.ViewerID, now)
	if errors.Is(err, pgx.ErrNoRows) {
		err = h.users.MarkUnsubscribed(c.Context(), claims.ViewerID, now)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("recipient", nil)
		}
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"status":  "unsubscribed",
		"context": ctxName,
	}})
}
