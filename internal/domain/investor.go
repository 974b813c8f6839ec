package domain

import "time"

// KycStatus enumerates verification states for an investor.
type KycStatus string

const (
	KycStatusPending  KycStatus = "PENDING"
	KycStatusApproved KycStatus = "APPROVED"
	KycStatusVerified KycStatus = "VERIFIED"
	KycStatusRejected KycStatus = "REJECTED"
)

// ApprovedKycStatuses is the single source of truth for statuses that
// permit transactional actions. The KYC gate must consult this set
// rather than re-declaring it.
var ApprovedKycStatuses = map[KycStatus]struct{}{
	KycStatusApproved: {},
	KycStatusVerified: {},
}

// Approved reports whether the status allows transactions.
func (s KycStatus) Approved() bool {
	_, ok := ApprovedKycStatuses[s]
	return ok
}

// Investor is a limited partner tracked by a team.
type Investor struct {
	ID        string
	TeamID    string
	Name      string
	Email     string
	KycStatus KycStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BankLinkStatus describes the state of an investor's linked bank account.
type BankLinkStatus string

const (
	BankLinkNotConfigured BankLinkStatus = "NOT_CONFIGURED"
	BankLinkPending       BankLinkStatus = "PENDING"
	BankLinkLinked        BankLinkStatus = "LINKED"
)

// BankAccount holds the provider-side reference for an investor's
// linked account. The provider access token is stored opaque.
type BankAccount struct {
	ID          string
	InvestorID  string
	Institution string
	Mask        string
	ProviderRef string
	Status      BankLinkStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
