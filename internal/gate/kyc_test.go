package gate

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/fundvault/dataroom-service/internal/domain"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

type fakeInvestorRepo struct {
	byID map[string]*domain.Investor
}

func (f *fakeInvestorRepo) Create(_ context.Context, _ *domain.Investor) error { return nil }
func (f *fakeInvestorRepo) Update(_ context.Context, _ *domain.Investor) error { return nil }

func (f *fakeInvestorRepo) GetByID(_ context.Context, id string) (*domain.Investor, error) {
	investor, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return investor, nil
}

func (f *fakeInvestorRepo) ListByTeam(_ context.Context, _ string) ([]domain.Investor, error) {
	return nil, nil
}

func (f *fakeInvestorRepo) UpdateKycStatus(_ context.Context, _ string, _ domain.KycStatus) error {
	return nil
}

func gateWith(status domain.KycStatus) *KYC {
	return NewKYC(&fakeInvestorRepo{byID: map[string]*domain.Investor{
		"inv-1": {ID: "inv-1", TeamID: "team-1", KycStatus: status},
	}})
}

func TestCheckStatusTable(t *testing.T) {
	cases := []struct {
		status  domain.KycStatus
		allowed bool
	}{
		{domain.KycStatusPending, false},
		{domain.KycStatusApproved, true},
		{domain.KycStatusVerified, true},
		{domain.KycStatusRejected, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			result, err := gateWith(tc.status).Check(context.Background(), "inv-1")
			require.NoError(t, err)
			require.Equal(t, tc.allowed, result.Allowed)
			require.Equal(t, tc.status, result.Status)
			if tc.allowed {
				require.Empty(t, result.Message)
			} else {
				require.Contains(t, result.Message, string(tc.status))
			}
		})
	}
}

func TestCheckMissingInvestorBlocksWithoutError(t *testing.T) {
	result, err := gateWith(domain.KycStatusApproved).Check(context.Background(), "inv-unknown")
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.Equal(t, KycStatusNotFound, result.Status)
}

func TestEnforceForTransactionRaisesExactlyWhenBlocked(t *testing.T) {
	require.NoError(t, gateWith(domain.KycStatusVerified).EnforceForTransaction(context.Background(), "inv-1"))

	err := gateWith(domain.KycStatusPending).EnforceForTransaction(context.Background(), "inv-1")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestEnforceForTransactionMissingInvestorIsNotFound(t *testing.T) {
	err := gateWith(domain.KycStatusApproved).EnforceForTransaction(context.Background(), "inv-unknown")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "NOT_FOUND", domainErr.Code)
}
