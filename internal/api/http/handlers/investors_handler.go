package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fundvault/dataroom-service/internal/api/dto"
	"github.com/fundvault/dataroom-service/internal/auth"
	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/service"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

var kycStatuses = map[domain.KycStatus]struct{}{
	domain.KycStatusPending:  {},
	domain.KycStatusApproved: {},
	domain.KycStatusVerified: {},
	domain.KycStatusRejected: {},
}

// InvestorsHandler manages admin investor endpoints.
type InvestorsHandler struct {
	service *service.InvestorService
}

// NewInvestorsHandler constructs handler.
func NewInvestorsHandler(investorService *service.InvestorService) *InvestorsHandler {
	return &InvestorsHandler{service: investorService}
}

// CreateInvestor POST /investors.
func (h *InvestorsHandler) CreateInvestor(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateInvestorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || req.Email == "" {
		return apperrors.NewValidationError("name, email required", nil)
	}

	investor, err := h.service.CreateInvestor(c.Context(), principal.TeamID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewInvestorSummary(investor)})
}

// ListInvestors GET /investors.
func (h *InvestorsHandler) ListInvestors(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	investors, err := h.service.ListInvestors(c.Context(), principal.TeamID)
	if err != nil {
		return err
	}
	items := make([]dto.InvestorSummary, 0, len(investors))
	for i := range investors {
		items = append(items, dto.NewInvestorSummary(&investors[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetInvestor GET /investors/:id.
func (h *InvestorsHandler) GetInvestor(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	investor, err := h.service.GetInvestor(c.Context(), principal.TeamID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewInvestorSummary(investor)})
}

// UpdateKycStatus PUT /investors/:id/kyc.
func (h *InvestorsHandler) UpdateKycStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateKycRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, known := kycStatuses[req.Status]; !known {
		return apperrors.NewValidationError("unknown kyc status", map[string]any{"status": string(req.Status)})
	}

	investor, err := h.service.UpdateKycStatus(c.Context(), principal.TeamID, c.Params("id"), req.Status, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewInvestorSummary(investor)})
}

// CheckKyc GET /investors/:id/kyc.
func (h *InvestorsHandler) CheckKyc(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	result, err := h.service.CheckKyc(c.Context(), principal.TeamID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.KycCheckResponse{
		Allowed: result.Allowed,
		Status:  result.Status,
		Message: result.Message,
	}})
}

// LinkBankAccount POST /investors/:id/bank-link.
func (h *InvestorsHandler) LinkBankAccount(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.LinkBankAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Institution == "" || req.ProviderRef == "" {
		return apperrors.NewValidationError("institution, provider_ref required", nil)
	}

	result, err := h.service.LinkBankAccount(c.Context(), principal.TeamID, c.Params("id"), req.Institution, req.Mask, req.ProviderRef)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bankLinkResponse(result)})
}

// GetBankLinkStatus GET /investors/:id/bank-link.
func (h *InvestorsHandler) GetBankLinkStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	result, err := h.service.GetBankLinkStatus(c.Context(), principal.TeamID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bankLinkResponse(result)})
}

// InitiateTransaction POST /investors/:id/transactions.
func (h *InvestorsHandler) InitiateTransaction(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.InitiateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AmountCents <= 0 || req.Currency == "" || req.Kind == "" {
		return apperrors.NewValidationError("amount_cents, currency, kind required", nil)
	}

	receipt, err := h.service.InitiateTransaction(c.Context(), principal.TeamID, c.Params("id"), req.AmountCents, req.Currency, req.Kind)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TransactionReceiptResponse{
		ID:          receipt.ID,
		InvestorID:  receipt.InvestorID,
		AmountCents: receipt.AmountCents,
		Currency:    receipt.Currency,
		Kind:        receipt.Kind,
		InitiatedAt: receipt.InitiatedAt,
	}})
}

func bankLinkResponse(result *service.BankLinkResult) dto.BankLinkResponse {
	resp := dto.BankLinkResponse{
		Status:  result.Status,
		Message: result.Message,
	}
	if result.Account != nil {
		resp.Institution = result.Account.Institution
		resp.Mask = result.Account.Mask
	}
	return resp
}
