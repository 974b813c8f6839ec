package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// APITokenRepository manages stored bearer-token records. Lookup is by
// hash only; the raw secret never reaches this layer.
type APITokenRepository interface {
	Create(ctx context.Context, token *domain.APIToken) error
	GetByHash(ctx context.Context, hash string) (*domain.APIToken, error)
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
	ListByTeam(ctx context.Context, teamID string) ([]domain.APIToken, error)
}

type apiTokenRepository struct {
	pool *pgxpool.Pool
}

// NewAPITokenRepository constructs repository.
func NewAPITokenRepository(pool *pgxpool.Pool) APITokenRepository {
	return &apiTokenRepository{pool: pool}
}

func (r *apiTokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	const query = `
        INSERT INTO api_tokens (team_id, user_id, name, token_hash, prefix, scopes, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		token.TeamID,
		token.UserID,
		token.Name,
		token.TokenHash,
		token.Prefix,
		scopesToStrings(token.Scopes),
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *apiTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	const query = `
        SELECT id, team_id, user_id, name, token_hash, prefix, scopes, expires_at, last_used_at, created_at
        FROM api_tokens WHERE token_hash=$1`
	return r.scanToken(r.pool.QueryRow(ctx, query, hash))
}

func (r *apiTokenRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE api_tokens SET last_used_at=$1
        WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, at, id)
	return err
}

func (r *apiTokenRepository) ListByTeam(ctx context.Context, teamID string) ([]domain.APIToken, error) {
	const query = `
        SELECT id, team_id, user_id, name, token_hash, prefix, scopes, expires_at, last_used_at, created_at
        FROM api_tokens WHERE team_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.APIToken
	for rows.Next() {
		var token domain.APIToken
		var scopes []string
		if err := rows.Scan(&token.ID, &token.TeamID, &token.UserID, &token.Name, &token.TokenHash, &token.Prefix, &scopes, &token.ExpiresAt, &token.LastUsedAt, &token.CreatedAt); err != nil {
			return nil, err
		}
		token.Scopes = scopesFromStrings(scopes)
		result = append(result, token)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *apiTokenRepository) scanToken(row rowScanner) (*domain.APIToken, error) {
	var token domain.APIToken
	var scopes []string
	if err := row.Scan(
		&token.ID,
		&token.TeamID,
		&token.UserID,
		&token.Name,
		&token.TokenHash,
		&token.Prefix,
		&scopes,
		&token.ExpiresAt,
		&token.LastUsedAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	token.Scopes = scopesFromStrings(scopes)
	return &token, nil
}

func scopesToStrings(scopes []domain.Scope) []string {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		out = append(out, string(s))
	}
	return out
}

func scopesFromStrings(values []string) []domain.Scope {
	out := make([]domain.Scope, 0, len(values))
	for _, v := range values {
		out = append(out, domain.Scope(v))
	}
	return out
}
