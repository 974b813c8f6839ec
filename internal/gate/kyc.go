package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/repository"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

// KycStatusNotFound marks an investor record that does not exist.
const KycStatusNotFound domain.KycStatus = "NOT_FOUND"

// Result is the outcome of a KYC check.
type Result struct {
	Allowed bool
	Status  domain.KycStatus
	Message string
}

// KYC gates transactional actions on an investor's verification status.
type KYC struct {
	investors repository.InvestorRepository
}

// NewKYC constructs the gate.
func NewKYC(investors repository.InvestorRepository) *KYC {
	return &KYC{investors: investors}
}

// Check resolves the investor's status against the approved set. A
// missing investor blocks with a NOT_FOUND status rather than erroring;
// the returned error is reserved for infrastructure failures.
func (g *KYC) Check(ctx context.Context, investorID string) (Result, error) {
	investor, err := g.investors.GetByID(ctx, investorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Result{
				Allowed: false,
				Status:  KycStatusNotFound,
				Message: "investor not found",
			}, nil
		}
		return Result{}, err
	}

	if investor.KycStatus.Approved() {
		return Result{Allowed: true, Status: investor.KycStatus}, nil
	}

	return Result{
		Allowed: false,
		Status:  investor.KycStatus,
		Message: fmt.Sprintf("KYC verification incomplete: status is %s", investor.KycStatus),
	}, nil
}

// EnforceForTransaction raises a domain failure exactly when Check
// would block. Callers that need to branch use Check; callers that want
// fail-fast use this.
func (g *KYC) EnforceForTransaction(ctx context.Context, investorID string) error {
	result, err := g.Check(ctx, investorID)
	if err != nil {
		return err
	}
	if !result.Allowed {
		if result.Status == KycStatusNotFound {
			return apperrors.NewNotFound("investor", map[string]any{"investor_id": investorID})
		}
		return apperrors.NewForbidden(result.Message)
	}
	return nil
}
