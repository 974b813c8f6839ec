package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// ViewerRepository manages viewers and their recorded views.
type ViewerRepository interface {
	UpsertByEmail(ctx context.Context, viewer *domain.Viewer) error
	GetByID(ctx context.Context, id string) (*domain.Viewer, error)
	MarkVerified(ctx context.Context, id string, at time.Time) error
	MarkUnsubscribed(ctx context.Context, id string, at time.Time) error
	RecordView(ctx context.Context, view *domain.View) error
	CountViewsByLink(ctx context.Context, linkID string) (int64, error)
}

type viewerRepository struct {
	pool *pgxpool.Pool
}

// NewViewerRepository constructs repository.
func NewViewerRepository(pool *pgxpool.Pool) ViewerRepository {
	return &viewerRepository{pool: pool}
}

func (r *viewerRepository) UpsertByEmail(ctx context.Context, viewer *domain.Viewer) error {
	const query = `
        INSERT INTO viewers (team_id, email)
        VALUES ($1,$2)
        ON CONFLICT (team_id, email) DO UPDATE SET email=EXCLUDED.email
        RETURNING id, verified_at, unsubscribed_at, created_at`
	return r.pool.QueryRow(ctx, query,
		viewer.TeamID,
		viewer.Email,
	).Scan(&viewer.ID, &viewer.VerifiedAt, &viewer.UnsubscribedAt, &viewer.CreatedAt)
}

func (r *viewerRepository) GetByID(ctx context.Context, id string) (*domain.Viewer, error) {
	const query = `
        SELECT id, team_id, email, verified_at, unsubscribed_at, created_at
        FROM viewers WHERE id=$1`
	var viewer domain.Viewer
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&viewer.ID,
		&viewer.TeamID,
		&viewer.Email,
		&viewer.VerifiedAt,
		&viewer.UnsubscribedAt,
		&viewer.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &viewer, nil
}

func (r *viewerRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE viewers SET verified_at=$1
        WHERE id=$2 AND verified_at IS NULL`
	_, err := r.pool.Exec(ctx, query, at, id)
	return err
}

func (r *viewerRepository) MarkUnsubscribed(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE viewers SET unsubscribed_at=COALESCE(unsubscribed_at, $1)
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *viewerRepository) RecordView(ctx context.Context, view *domain.View) error {
	const query = `
        INSERT INTO views (link_id, viewer_id, document_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		view.LinkID,
		view.ViewerID,
		view.DocumentID,
	).Scan(&view.ID, &view.CreatedAt)
}

func (r *viewerRepository) CountViewsByLink(ctx context.Context, linkID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM views WHERE link_id=$1`
	var count int64
	if err := r.pool.QueryRow(ctx, query, linkID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
