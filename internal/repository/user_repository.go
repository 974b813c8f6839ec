package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// UserRepository defines persistence access for admin users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.User, error)
	MarkUnsubscribed(ctx context.Context, id string, at time.Time) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (team_id, name, email, password_hash, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.TeamID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, status=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Status,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, team_id, name, email, password_hash, status, unsubscribed_at, created_at, updated_at
        FROM users WHERE id=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.TeamID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Status,
		&user.UnsubscribedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, team_id, name, email, password_hash, status, unsubscribed_at, created_at, updated_at
        FROM users WHERE email=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.TeamID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Status,
		&user.UnsubscribedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByTeam(ctx context.Context, teamID string) ([]domain.User, error) {
	const query = `
        SELECT id, team_id, name, email, password_hash, status, unsubscribed_at, created_at, updated_at
        FROM users WHERE team_id=$1 AND status='ACTIVE'`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.TeamID, &user.Name, &user.Email, &user.PasswordHash, &user.Status, &user.UnsubscribedAt, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) MarkUnsubscribed(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE users SET unsubscribed_at=COALESCE(unsubscribed_at, $1), updated_at=NOW()
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
