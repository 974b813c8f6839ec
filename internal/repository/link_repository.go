package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// LinkRepository manages persistence for view links.
type LinkRepository interface {
	Create(ctx context.Context, link *domain.ViewLink) error
	Update(ctx context.Context, link *domain.ViewLink) error
	GetByID(ctx context.Context, id string) (*domain.ViewLink, error)
	GetBySlug(ctx context.Context, slug string) (*domain.ViewLink, error)
	ListByDataroom(ctx context.Context, dataroomID string) ([]domain.ViewLink, error)
}

type linkRepository struct {
	pool *pgxpool.Pool
}

// NewLinkRepository constructs repository.
func NewLinkRepository(pool *pgxpool.Pool) LinkRepository {
	return &linkRepository{pool: pool}
}

func (r *linkRepository) Create(ctx context.Context, link *domain.ViewLink) error {
	const query = `
        INSERT INTO view_links (dataroom_id, slug, allowed_emails, require_email, require_verify, expires_at, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		link.DataroomID,
		link.Slug,
		link.AllowedEmails,
		link.RequireEmail,
		link.RequireVerify,
		link.ExpiresAt,
		link.IsActive,
	).Scan(&link.ID, &link.CreatedAt, &link.UpdatedAt)
}

func (r *linkRepository) Update(ctx context.Context, link *domain.ViewLink) error {
	const query = `
        UPDATE view_links SET allowed_emails=$1, require_email=$2, require_verify=$3, expires_at=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		link.AllowedEmails,
		link.RequireEmail,
		link.RequireVerify,
		link.ExpiresAt,
		link.IsActive,
		link.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *linkRepository) GetByID(ctx context.Context, id string) (*domain.ViewLink, error) {
	const query = `
        SELECT id, dataroom_id, slug, allowed_emails, require_email, require_verify, expires_at, is_active, created_at, updated_at
        FROM view_links WHERE id=$1`
	return scanLink(r.pool.QueryRow(ctx, query, id))
}

func (r *linkRepository) GetBySlug(ctx context.Context, slug string) (*domain.ViewLink, error) {
	const query = `
        SELECT id, dataroom_id, slug, allowed_emails, require_email, require_verify, expires_at, is_active, created_at, updated_at
        FROM view_links WHERE slug=$1`
	return scanLink(r.pool.QueryRow(ctx, query, slug))
}

func (r *linkRepository) ListByDataroom(ctx context.Context, dataroomID string) ([]domain.ViewLink, error) {
	const query = `
        SELECT id, dataroom_id, slug, allowed_emails, require_email, require_verify, expires_at, is_active, created_at, updated_at
        FROM view_links WHERE dataroom_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, dataroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ViewLink
	for rows.Next() {
		var link domain.ViewLink
		if err := rows.Scan(&link.ID, &link.DataroomID, &link.Slug, &link.AllowedEmails, &link.RequireEmail, &link.RequireVerify, &link.ExpiresAt, &link.IsActive, &link.CreatedAt, &link.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, link)
	}
	return result, rows.Err()
}

func scanLink(row rowScanner) (*domain.ViewLink, error) {
	var link domain.ViewLink
	if err := row.Scan(
		&link.ID,
		&link.DataroomID,
		&link.Slug,
		&link.AllowedEmails,
		&link.RequireEmail,
		&link.RequireVerify,
		&link.ExpiresAt,
		&link.IsActive,
		&link.CreatedAt,
		&link.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &link, nil
}
