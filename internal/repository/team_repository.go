package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// TeamRepository manages persistence for teams.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Team, error)
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (name, slug, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		team.Name,
		team.Slug,
		team.IsActive,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE teams SET name=$1, slug=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		team.Name,
		team.Slug,
		team.IsActive,
		team.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `
        SELECT id, name, slug, is_active, created_at, updated_at
        FROM teams WHERE id=$1`
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Slug,
		&team.IsActive,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetBySlug(ctx context.Context, slug string) (*domain.Team, error) {
	const query = `
        SELECT id, name, slug, is_active, created_at, updated_at
        FROM teams WHERE slug=$1`
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, slug).Scan(
		&team.ID,
		&team.Name,
		&team.Slug,
		&team.IsActive,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}
