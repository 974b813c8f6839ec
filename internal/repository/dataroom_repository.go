package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// DataroomRepository manages persistence for datarooms.
type DataroomRepository interface {
	Create(ctx context.Context, dataroom *domain.Dataroom) error
	Update(ctx context.Context, dataroom *domain.Dataroom) error
	GetByID(ctx context.Context, id string) (*domain.Dataroom, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.Dataroom, error)
}

type dataroomRepository struct {
	pool *pgxpool.Pool
}

// NewDataroomRepository constructs repository.
func NewDataroomRepository(pool *pgxpool.Pool) DataroomRepository {
	return &dataroomRepository{pool: pool}
}

func (r *dataroomRepository) Create(ctx context.Context, dataroom *domain.Dataroom) error {
	const query = `
        INSERT INTO datarooms (team_id, name, description, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		dataroom.TeamID,
		dataroom.Name,
		dataroom.Description,
		dataroom.IsActive,
	).Scan(&dataroom.ID, &dataroom.CreatedAt, &dataroom.UpdatedAt)
}

func (r *dataroomRepository) Update(ctx context.Context, dataroom *domain.Dataroom) error {
	const query = `
        UPDATE datarooms SET name=$1, description=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		dataroom.Name,
		dataroom.Description,
		dataroom.IsActive,
		dataroom.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *dataroomRepository) GetByID(ctx context.Context, id string) (*domain.Dataroom, error) {
	const query = `
        SELECT id, team_id, name, description, is_active, created_at, updated_at
        FROM datarooms WHERE id=$1`
	var dataroom domain.Dataroom
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&dataroom.ID,
		&dataroom.TeamID,
		&dataroom.Name,
		&dataroom.Description,
		&dataroom.IsActive,
		&dataroom.CreatedAt,
		&dataroom.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dataroom, nil
}

func (r *dataroomRepository) ListByTeam(ctx context.Context, teamID string) ([]domain.Dataroom, error) {
	const query = `
        SELECT id, team_id, name, description, is_active, created_at, updated_at
        FROM datarooms WHERE team_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Dataroom
	for rows.Next() {
		var dataroom domain.Dataroom
		if err := rows.Scan(&dataroom.ID, &dataroom.TeamID, &dataroom.Name, &dataroom.Description, &dataroom.IsActive, &dataroom.CreatedAt, &dataroom.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, dataroom)
	}
	return result, rows.Err()
}
