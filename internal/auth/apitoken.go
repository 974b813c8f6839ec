package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/repository"
)

// Validation is the outcome of a bearer-token check. Expected failures
// (missing header, unknown token, expiry) come back as Valid=false with
// a reason; they are never surfaced as errors.
type Validation struct {
	Valid   bool
	TokenID string
	TeamID  string
	UserID  string
	Scopes  []domain.Scope
	Error   string
}

// HashToken produces the canonical one-way digest stored for a secret.
func HashToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// GenerateSecret returns a new random bearer secret and its hash. Only
// the hash may be persisted.
func GenerateSecret(prefix string) (string, string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	secret := prefix + hex.EncodeToString(buf)
	return secret, HashToken(secret), nil
}

// TokenValidator resolves bearer credentials against stored token records.
type TokenValidator struct {
	tokens repository.APITokenRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewTokenValidator constructs a validator.
func NewTokenValidator(tokens repository.APITokenRepository, logger *zap.Logger) *TokenValidator {
	return &TokenValidator{tokens: tokens, logger: logger, now: time.Now}
}

// ValidateBearer checks an Authorization header value and, on success,
// records the current time as the token's last use. Expired tokens do
// not get their last-used timestamp touched.
func (v *TokenValidator) ValidateBearer(ctx context.Context, authHeader string) Validation {
	if authHeader == "" {
		return Validation{Error: "missing authorization header"}
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return Validation{Error: "invalid authorization header"}
	}

	record, err := v.tokens.GetByHash(ctx, HashToken(parts[1]))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Validation{Error: "token not found"}
		}
		v.logger.Error("token lookup failed", zap.Error(err))
		return Validation{Error: "internal error"}
	}

	if record.ExpiresAt != nil && v.now().After(*record.ExpiresAt) {
		return Validation{Error: "token expired"}
	}

	if err := v.tokens.TouchLastUsed(ctx, record.ID, v.now()); err != nil {
		v.logger.Warn("failed to update token last_used_at", zap.String("token_id", record.ID), zap.Error(err))
	}

	return Validation{
		Valid:   true,
		TokenID: record.ID,
		TeamID:  record.TeamID,
		UserID:  record.UserID,
		Scopes:  record.Scopes,
	}
}
