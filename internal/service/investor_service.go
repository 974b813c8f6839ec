package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fundvault/dataroom-service/internal/config"
	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/events"
	"github.com/fundvault/dataroom-service/internal/gate"
	"github.com/fundvault/dataroom-service/internal/ratelimit"
	"github.com/fundvault/dataroom-service/internal/repository"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

// InvestorService coordinates investor records, KYC and bank linking.
type InvestorService struct {
	investors      repository.InvestorRepository
	bankAccounts   repository.BankAccountRepository
	kyc            *gate.KYC
	billingLimiter *ratelimit.Limiter
	dispatcher     events.Dispatcher
	bankCfg        config.BankLinkConfig
	logger         *zap.Logger
}

// InvestorDependencies bundles requirements for the investor service.
type InvestorDependencies struct {
	InvestorRepo    repository.InvestorRepository
	BankAccountRepo repository.BankAccountRepository
	KYC             *gate.KYC
	BillingLimiter  *ratelimit.Limiter
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// BankLinkResult reports the outcome of a linking attempt.
type BankLinkResult struct {
	Status  domain.BankLinkStatus
	Account *domain.BankAccount
	Message string
}

// TransactionReceipt acknowledges a gated transaction initiation. The
// actual money movement is delegated to the payment provider.
type TransactionReceipt struct {
	ID          string
	InvestorID  string
	AmountCents int64
	Currency    string
	Kind        string
	InitiatedAt time.Time
}

// NewInvestorService builds the service.
func NewInvestorService(cfg config.Config, deps InvestorDependencies) *InvestorService {
	return &InvestorService{
		investors:      deps.InvestorRepo,
		bankAccounts:   deps.BankAccountRepo,
		kyc:            deps.KYC,
		billingLimiter: deps.BillingLimiter,
		dispatcher:     deps.Dispatcher,
		bankCfg:        cfg.BankLink,
		logger:         deps.Logger,
	}
}

// CreateInvestor registers a new investor with a pending KYC status.
func (s *InvestorService) CreateInvestor(ctx context.Context, teamID, name, email string) (*domain.Investor, error) {
	investor := &domain.Investor{
		TeamID:    teamID,
		Name:      name,
		Email:     email,
		KycStatus: domain.KycStatusPending,
	}
	if err := s.investors.Create(ctx, investor); err != nil {
		return nil, err
	}
	return investor, nil
}

// ListInvestors lists the team's investors.
func (s *InvestorService) ListInvestors(ctx context.Context, teamID string) ([]domain.Investor, error) {
	return s.investors.ListByTeam(ctx, teamID)
}

// GetInvestor fetches an investor and checks tenant ownership.
func (s *InvestorService) GetInvestor(ctx context.Context, teamID, investorID string) (*domain.Investor, error) {
	investor, err := s.investors.GetByID(ctx, investorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("investor", nil)
		}
		return nil, err
	}
	if investor.TeamID != teamID {
		return nil, apperrors.NewNotFound("investor", nil)
	}
	return investor, nil
}

// UpdateKycStatus moves an investor to a new verification state.
func (s *InvestorService) UpdateKycStatus(ctx context.Context, teamID, investorID string, status domain.KycStatus, actorUserID string) (*domain.Investor, error) {
	investor, err := s.GetInvestor(ctx, teamID, investorID)
	if err != nil {
		return nil, err
	}
	oldStatus := investor.KycStatus
	if err := s.investors.UpdateKycStatus(ctx, investorID, status); err != nil {
		return nil, err
	}
	investor.KycStatus = status

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventKycStatusChanged,
		TeamID:    teamID,
		Actor:     events.Actor{Type: events.ActorAdmin, UserID: &actorUserID},
		Timestamp: time.Now(),
		Payload: events.KycStatusChangedPayload{
			InvestorID: investorID,
			OldStatus:  oldStatus,
			NewStatus:  status,
		},
	})
	return investor, nil
}

// CheckKyc exposes the gate's result-returning form after a tenant check.
func (s *InvestorService) CheckKyc(ctx context.Context, teamID, investorID string) (gate.Result, error) {
	if _, err := s.GetInvestor(ctx, teamID, investorID); err != nil {
		return gate.Result{}, err
	}
	return s.kyc.Check(ctx, investorID)
}

// LinkBankAccount attempts to link an investor bank account through the
// configured provider. Without provider credentials it reports a
// not-configured status instead of failing the request.
func (s *InvestorService) LinkBankAccount(ctx context.Context, teamID, investorID, institution, mask, providerRef string) (*BankLinkResult, error) {
	investor, err := s.GetInvestor(ctx, teamID, investorID)
	if err != nil {
		return nil, err
	}

	if !s.bankCfg.Configured() {
		return &BankLinkResult{
			Status:  domain.BankLinkNotConfigured,
			Message: "bank linking not configured",
		}, nil
	}

	account := &domain.BankAccount{
		InvestorID:  investor.ID,
		Institution: institution,
		Mask:        mask,
		ProviderRef: providerRef,
		Status:      domain.BankLinkLinked,
	}
	if err := s.bankAccounts.Upsert(ctx, account); err != nil {
		return nil, err
	}
	return &BankLinkResult{Status: account.Status, Account: account}, nil
}

// GetBankLinkStatus reports the investor's current linking state.
func (s *InvestorService) GetBankLinkStatus(ctx context.Context, teamID, investorID string) (*BankLinkResult, error) {
	if _, err := s.GetInvestor(ctx, teamID, investorID); err != nil {
		return nil, err
	}
	if !s.bankCfg.Configured() {
		return &BankLinkResult{
			Status:  domain.BankLinkNotConfigured,
			Message: "bank linking not configured",
		}, nil
	}

	account, err := s.bankAccounts.GetByInvestor(ctx, investorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &BankLinkResult{Status: domain.BankLinkPending}, nil
		}
		return nil, err
	}
	return &BankLinkResult{Status: account.Status, Account: account}, nil
}

// InitiateTransaction starts a capital call or distribution for an
// investor. The KYC gate fails fast; the billing limiter bounds
// initiation frequency per investor.
func (s *InvestorService) InitiateTransaction(ctx context.Context, teamID, investorID string, amountCents int64, currency, kind string) (*TransactionReceipt, error) {
	if _, err := s.GetInvestor(ctx, teamID, investorID); err != nil {
		return nil, err
	}

	if res := s.billingLimiter.Check(ctx, investorID); !res.Success {
		return nil, apperrors.NewTooManyRequests("too many transaction attempts")
	}

	if err := s.kyc.EnforceForTransaction(ctx, investorID); err != nil {
		return nil, err
	}

	link, err := s.GetBankLinkStatus(ctx, teamID, investorID)
	if err != nil {
		return nil, err
	}
	if link.Status != domain.BankLinkLinked {
		return nil, apperrors.NewValidationError("no linked bank account", map[string]any{
			"status": string(link.Status),
		})
	}

	receipt := &TransactionReceipt{
		ID:          uuid.NewString(),
		InvestorID:  investorID,
		AmountCents: amountCents,
		Currency:    currency,
		Kind:        kind,
		InitiatedAt: time.Now(),
	}
	s.logger.Info("transaction initiated",
		zap.String("investor_id", investorID),
		zap.String("kind", kind),
		zap.Int64("amount_cents", amountCents),
	)
	return receipt, nil
}
