package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// InvestorRepository manages persistence for investors (LPs).
type InvestorRepository interface {
	Create(ctx context.Context, investor *domain.Investor) error
	Update(ctx context.Context, investor *domain.Investor) error
	GetByID(ctx context.Context, id string) (*domain.Investor, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.Investor, error)
	UpdateKycStatus(ctx context.Context, id string, status domain.KycStatus) error
}

type investorRepository struct {
	pool *pgxpool.Pool
}

// NewInvestorRepository constructs repository.
func NewInvestorRepository(pool *pgxpool.Pool) InvestorRepository {
	return &investorRepository{pool: pool}
}

func (r *investorRepository) Create(ctx context.Context, investor *domain.Investor) error {
	const query = `
        INSERT INTO investors (team_id, name, email, kyc_status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		investor.TeamID,
		investor.Name,
		investor.Email,
		investor.KycStatus,
	).Scan(&investor.ID, &investor.CreatedAt, &investor.UpdatedAt)
}

func (r *investorRepository) Update(ctx context.Context, investor *domain.Investor) error {
	const query = `
        UPDATE investors SET name=$1, email=$2, kyc_status=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		investor.Name,
		investor.Email,
		investor.KycStatus,
		investor.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *investorRepository) GetByID(ctx context.Context, id string) (*domain.Investor, error) {
	const query = `
        SELECT id, team_id, name, email, kyc_status, created_at, updated_at
        FROM investors WHERE id=$1`
	var investor domain.Investor
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&investor.ID,
		&investor.TeamID,
		&investor.Name,
		&investor.Email,
		&investor.KycStatus,
		&investor.CreatedAt,
		&investor.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &investor, nil
}

func (r *investorRepository) ListByTeam(ctx context.Context, teamID string) ([]domain.Investor, error) {
	const query = `
        SELECT id, team_id, name, email, kyc_status, created_at, updated_at
        FROM investors WHERE team_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Investor
	for rows.Next() {
		var investor domain.Investor
		if err := rows.Scan(&investor.ID, &investor.TeamID, &investor.Name, &investor.Email, &investor.KycStatus, &investor.CreatedAt, &investor.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, investor)
	}
	return result, rows.Err()
}

func (r *investorRepository) UpdateKycStatus(ctx context.Context, id string, status domain.KycStatus) error {
	const query = `
        UPDATE investors SET kyc_status=$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
