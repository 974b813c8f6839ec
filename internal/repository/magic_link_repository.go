package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MagicLinkToken is the stored, hashed side of a passwordless login
// token. The raw token only ever exists inside the callback URL.
type MagicLinkToken struct {
	ID         string
	Email      string
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// MagicLinkRepository manages magic-link token persistence.
type MagicLinkRepository interface {
	Create(ctx context.Context, token *MagicLinkToken) error
	GetByHash(ctx context.Context, hash string) (*MagicLinkToken, error)
	MarkConsumed(ctx context.Context, id string, at time.Time) error
}

type magicLinkRepository struct {
	pool *pgxpool.Pool
}

// NewMagicLinkRepository constructs repository.
func NewMagicLinkRepository(pool *pgxpool.Pool) MagicLinkRepository {
	return &magicLinkRepository{pool: pool}
}

func (r *magicLinkRepository) Create(ctx context.Context, token *MagicLinkToken) error {
	const query = `
        INSERT INTO magic_link_tokens (email, token_hash, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		token.Email,
		token.TokenHash,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *magicLinkRepository) GetByHash(ctx context.Context, hash string) (*MagicLinkToken, error) {
	const query = `
        SELECT id, email, token_hash, expires_at, consumed_at, created_at
        FROM magic_link_tokens WHERE token_hash=$1`
	var token MagicLinkToken
	if err := r.pool.QueryRow(ctx, query, hash).Scan(
		&token.ID,
		&token.Email,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.ConsumedAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *magicLinkRepository) MarkConsumed(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE magic_link_tokens SET consumed_at=$1
        WHERE id=$2 AND consumed_at IS NULL`
	_, err := r.pool.Exec(ctx, query, at, id)
	return err
}
