package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fundvault/dataroom-service/internal/repository"
)

// ErrSigningSecretMissing is returned when magic-link issuance is
// attempted without a configured secret. Issuance fails closed rather
// than producing an unsigned token.
var ErrSigningSecretMissing = errors.New("magic link signing secret not configured")

// MagicLink issues and verifies time-boxed passwordless login tokens.
// The raw token travels in the callback URL; only an HMAC binding the
// token to the target email is stored server side.
type MagicLink struct {
	secret  string
	ttl     time.Duration
	baseURL string
	store   repository.MagicLinkRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewMagicLink constructs the issuer/verifier. An empty secret is a
// legal construction state; Issue and Verify then fail closed.
func NewMagicLink(secret, baseURL string, ttlMinutes int, store repository.MagicLinkRepository, logger *zap.Logger) *MagicLink {
	if ttlMinutes <= 0 {
		ttlMinutes = 20
	}
	return &MagicLink{
		secret:  secret,
		ttl:     time.Duration(ttlMinutes) * time.Minute,
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Issue persists a hashed token record and returns the callback URL
// embedding the raw token, target email and redirect destination.
func (m *MagicLink) Issue(ctx context.Context, email, callbackURL string) (string, error) {
	if m.secret == "" {
		return "", ErrSigningSecretMissing
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	record := &repository.MagicLinkToken{
		Email:     strings.ToLower(email),
		TokenHash: m.hash(token, email),
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.store.Create(ctx, record); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("token", token)
	params.Set("email", email)
	params.Set("callbackUrl", callbackURL)
	return fmt.Sprintf("%s/api/auth/callback/email?%s", m.baseURL, params.Encode()), nil
}

// Verify checks a presented token against its stored record. It returns
// the record only when the token is genuine, bound to the same email,
// unexpired and not yet consumed; the record is consumed on success.
func (m *MagicLink) Verify(ctx context.Context, token, email string) (*repository.MagicLinkToken, bool) {
	if m.secret == "" {
		return nil, false
	}

	expected := m.hash(token, email)
	record, err := m.store.GetByHash(ctx, expected)
	if err != nil {
		return nil, false
	}

	if !hmac.Equal([]byte(record.TokenHash), []byte(expected)) {
		return nil, false
	}
	if !strings.EqualFold(record.Email, email) {
		return nil, false
	}
	if record.ConsumedAt != nil {
		return nil, false
	}
	if m.now().After(record.ExpiresAt) {
		return nil, false
	}

	if err := m.store.MarkConsumed(ctx, record.ID, m.now()); err != nil {
		m.logger.Warn("failed to consume magic link token", zap.String("token_id", record.ID), zap.Error(err))
		return nil, false
	}
	return record, true
}

// hash binds the raw token to the target identity under the server secret.
func (m *MagicLink) hash(token, email string) string {
	mac := hmac.New(sha256.New, []byte(m.secret))
	mac.Write([]byte(token))
	mac.Write([]byte("|"))
	mac.Write([]byte(strings.ToLower(email)))
	return hex.EncodeToString(mac.Sum(nil))
}
