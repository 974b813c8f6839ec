package dto

import (
	"time"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// CreateInvestorRequest payload.
type CreateInvestorRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateKycRequest payload.
type UpdateKycRequest struct {
	Status domain.KycStatus `json:"status"`
}

// InvestorSummary response.
type InvestorSummary struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	KycStatus domain.KycStatus `json:"kyc_status"`
	CreatedAt time.Time        `json:"created_at"`
}

// KycCheckResponse reports the gate outcome.
type KycCheckResponse struct {
	Allowed bool             `json:"allowed"`
	Status  domain.KycStatus `json:"status"`
	Message string           `json:"message,omitempty"`
}

// LinkBankAccountRequest payload.
type LinkBankAccountRequest struct {
	Institution string `json:"institution"`
	Mask        string `json:"mask"`
	ProviderRef string `json:"provider_ref"`
}

// BankLinkResponse reports linking state.
type BankLinkResponse struct {
	Status      domain.BankLinkStatus `json:"status"`
	Institution string                `json:"institution,omitempty"`
	Mask        string                `json:"mask,omitempty"`
	Message     string                `json:"message,omitempty"`
}

// InitiateTransactionRequest payload.
type InitiateTransactionRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Kind        string `json:"kind"`
}

// TransactionReceiptResponse acknowledges a gated initiation.
type TransactionReceiptResponse struct {
	ID          string    `json:"id"`
	InvestorID  string    `json:"investor_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Kind        string    `json:"kind"`
	InitiatedAt time.Time `json:"initiated_at"`
}

// NewInvestorSummary maps the domain model.
func NewInvestorSummary(i *domain.Investor) InvestorSummary {
	return InvestorSummary{
		ID:        i.ID,
		Name:      i.Name,
		Email:     i.Email,
		KycStatus: i.KycStatus,
		CreatedAt: i.CreatedAt,
	}
}
