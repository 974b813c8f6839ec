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

// DataroomsHandler manages admin dataroom endpoints.
type DataroomsHandler struct {
	service *service.DataroomService
	qa      *service.QAService
}

// NewDataroomsHandler constructs handler.
func NewDataroomsHandler(dataroomService *service.DataroomService, qaService *service.QAService) *DataroomsHandler {
	return &DataroomsHandler{service: dataroomService, qa: qaService}
}

// CreateDataroom POST /datarooms.
func (h *DataroomsHandler) CreateDataroom(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateDataroomRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}

	dataroom, err := h.service.CreateDataroom(c.Context(), principal.TeamID, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDataroomSummary(dataroom)})
}

// ListDatarooms GET /datarooms.
func (h *DataroomsHandler) ListDatarooms(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	datarooms, err := h.service.ListDatarooms(c.Context(), principal.TeamID)
	if err != nil {
		return err
	}
	items := make([]dto.DataroomSummary, 0, len(datarooms))
	for i := range datarooms {
		items = append(items, dto.NewDataroomSummary(&datarooms[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetDataroom GET /datarooms/:id.
func (h *DataroomsHandler) GetDataroom(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	dataroom, err := h.service.GetDataroom(c.Context(), principal.TeamID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDataroomSummary(dataroom)})
}

// AddDocument POST /datarooms/:id/documents.
func (h *DataroomsHandler) AddDocument(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AddDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.StorageKey == "" {
		return apperrors.NewValidationError("name, storage_key required", nil)
	}

	doc := &domain.Document{
		Name:       req.Name,
		StorageKey: req.StorageKey,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
	}
	if err := h.service.AddDocument(c.Context(), principal.TeamID, c.Params("id"), principal.User.ID, doc); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDocumentSummary(doc)})
}

// ListDocuments GET /datarooms/:id/documents.
func (h *DataroomsHandler) ListDocuments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	docs, err := h.service.ListDocuments(c.Context(), principal.TeamID, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.DocumentSummary, 0, len(docs))
	for i := range docs {
		items = append(items, dto.NewDocumentSummary(&docs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateLink POST /datarooms/:id/links.
func (h *DataroomsHandler) CreateLink(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	link, err := h.service.CreateLink(c.Context(), principal.TeamID, c.Params("id"), service.LinkCreateInput{
		AllowedEmails: req.AllowedEmails,
		RequireEmail:  req.RequireEmail,
		RequireVerify: req.RequireVerify,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewLinkSummary(link)})
}

// ListQuestions GET /datarooms/:id/questions.
func (h *DataroomsHandler) ListQuestions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	questions, err := h.qa.ListQuestions(c.Context(), principal.TeamID, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.QuestionSummary, 0, len(questions))
	for i := range questions {
		items = append(items, dto.NewQuestionSummary(&questions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AnswerQuestion POST /questions/:id/answer.
func (h *DataroomsHandler) AnswerQuestion(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AnswerQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Answer) == "" {
		return apperrors.NewValidationError("answer required", nil)
	}

	question, err := h.qa.AnswerQuestion(c.Context(), principal.TeamID, principal.User.ID, c.Params("id"), req.Answer)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQuestionSummary(question)})
}
