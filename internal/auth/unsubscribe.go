package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// UnsubscribeContext distinguishes the notification stream a token opts
// out of; it becomes a path segment in the unsubscribe URL.
type UnsubscribeContext string

const (
	UnsubscribeDataroom     UnsubscribeContext = "dataroom"
	UnsubscribeYearInReview UnsubscribeContext = "year-in-review"
)

// UnsubscribeClaims is the signed payload embedded in unsubscribe URLs.
type UnsubscribeClaims struct {
	ViewerID   string  `json:"viewerId"`
	TeamID     string  `json:"teamId"`
	DataroomID *string `json:"dataroomId,omitempty"`
	jwt.RegisteredClaims
}

// UnsubscribeTokens signs and parses unsubscribe payloads.
type UnsubscribeTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewUnsubscribeTokens builds a manager with the given TTL in days
// (default 90).
func NewUnsubscribeTokens(secret string, ttlDays int) *UnsubscribeTokens {
	if ttlDays <= 0 {
		ttlDays = 90
	}
	return &UnsubscribeTokens{secret: []byte(secret), ttl: time.Duration(ttlDays) * 24 * time.Hour}
}

// Generate signs a token for the viewer. Fails closed without a secret.
func (u *UnsubscribeTokens) Generate(viewerID, teamID string, dataroomID *string) (string, error) {
	if len(u.secret) == 0 {
		return "", ErrSigningSecretMissing
	}
	claims := &UnsubscribeClaims{
		ViewerID:   viewerID,
		TeamID:     teamID,
		DataroomID: dataroomID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(u.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.secret)
}

// Parse validates a token and returns its claims.
func (u *UnsubscribeTokens) Parse(tokenStr string) (*UnsubscribeClaims, error) {
	if len(u.secret) == 0 {
		return nil, ErrSigningSecretMissing
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &UnsubscribeClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return u.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*UnsubscribeClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// URL builds the unsubscribe endpoint for the given context.
func (u *UnsubscribeTokens) URL(baseURL string, ctx UnsubscribeContext, token string) string {
	return fmt.Sprintf("%s/unsubscribe/%s/%s", baseURL, ctx, token)
}
