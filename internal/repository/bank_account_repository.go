package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// BankAccountRepository manages linked investor bank accounts.
type BankAccountRepository interface {
	Upsert(ctx context.Context, account *domain.BankAccount) error
	GetByInvestor(ctx context.Context, investorID string) (*domain.BankAccount, error)
}

type bankAccountRepository struct {
	pool *pgxpool.Pool
}

// NewBankAccountRepository constructs repository.
func NewBankAccountRepository(pool *pgxpool.Pool) BankAccountRepository {
	return &bankAccountRepository{pool: pool}
}

func (r *bankAccountRepository) Upsert(ctx context.Context, account *domain.BankAccount) error {
	const query = `
        INSERT INTO bank_accounts (investor_id, institution, mask, provider_ref, status)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (investor_id) DO UPDATE
        SET institution=EXCLUDED.institution, mask=EXCLUDED.mask, provider_ref=EXCLUDED.provider_ref, status=EXCLUDED.status, updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		account.InvestorID,
		account.Institution,
		account.Mask,
		account.ProviderRef,
		account.Status,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *bankAccountRepository) GetByInvestor(ctx context.Context, investorID string) (*domain.BankAccount, error) {
	const query = `
        SELECT id, investor_id, institution, mask, provider_ref, status, created_at, updated_at
        FROM bank_accounts WHERE investor_id=$1`
	var account domain.BankAccount
	if err := r.pool.QueryRow(ctx, query, investorID).Scan(
		&account.ID,
		&account.InvestorID,
		&account.Institution,
		&account.Mask,
		&account.ProviderRef,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
