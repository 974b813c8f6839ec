package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fundvault/dataroom-service/internal/api/dto"
	"github.com/fundvault/dataroom-service/internal/service"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

// ViewsHandler serves public view-link endpoints. No bearer token is
// involved; access is gated by the link's own policy.
type ViewsHandler struct {
	service *service.DataroomService
	qa      *service.QAService
}

// NewViewsHandler constructs handler.
func NewViewsHandler(dataroomService *service.DataroomService, qaService *service.QAService) *ViewsHandler {
	return &ViewsHandler{service: dataroomService, qa: qaService}
}

// ViewLink GET /view/:slug.
func (h *ViewsHandler) ViewLink(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))

	access, err := h.service.AccessLink(c.Context(), c.Params("slug"), email, c.IP())
	if err != nil {
		if errors.Is(err, service.ErrVerificationRequired) {
			return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{
				"status":  "verification_required",
				"message": "a verification link has been sent to your email",
			}})
		}
		return err
	}

	docs := make([]dto.DocumentSummary, 0, len(access.Documents))
	for i := range access.Documents {
		docs = append(docs, dto.NewDocumentSummary(&access.Documents[i]))
	}
	return c.JSON(fiber.Map{"data": dto.LinkAccessResponse{
		Dataroom:  dto.NewDataroomSummary(access.Dataroom),
		Documents: docs,
	}})
}

// AskQuestion POST /view/:slug/questions.
func (h *ViewsHandler) AskQuestion(c *fiber.Ctx) error {
	var req dto.AskQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("email, body required", nil)
	}

	question, err := h.qa.AskQuestion(c.Context(), c.Params("slug"), req.Email, req.Body, c.IP())
	if err != nil {
		if errors.Is(err, service.ErrVerificationRequired) {
			return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{
				"status":  "verification_required",
				"message": "verify your email through the view link before asking questions",
			}})
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewQuestionSummary(question)})
}
