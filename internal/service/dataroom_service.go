package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fundvault/dataroom-service/internal/auth"
	"github.com/fundvault/dataroom-service/internal/domain"
	emailpkg "github.com/fundvault/dataroom-service/internal/email"
	"github.com/fundvault/dataroom-service/internal/events"
	"github.com/fundvault/dataroom-service/internal/ratelimit"
	"github.com/fundvault/dataroom-service/internal/repository"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

// ErrVerificationRequired signals that the viewer must verify their
// email before the link grants access.
var ErrVerificationRequired = errors.New("email verification required")

// DataroomService coordinates datarooms, documents and view links.
type DataroomService struct {
	datarooms   repository.DataroomRepository
	documents   repository.DocumentRepository
	links       repository.LinkRepository
	viewers     repository.ViewerRepository
	dispatcher  events.Dispatcher
	viewLimiter *ratelimit.Limiter
	magicLink   *auth.MagicLink
	mailer      emailpkg.Mailer
	logger      *zap.Logger
}

// DataroomDependencies bundles repositories for the dataroom service.
type DataroomDependencies struct {
	DataroomRepo repository.DataroomRepository
	DocumentRepo repository.DocumentRepository
	LinkRepo     repository.LinkRepository
	ViewerRepo   repository.ViewerRepository
	Dispatcher   events.Dispatcher
	ViewLimiter  *ratelimit.Limiter
	MagicLink    *auth.MagicLink
	Mailer       emailpkg.Mailer
	Logger       *zap.Logger
}

// LinkCreateInput describes view link creation payload.
type LinkCreateInput struct {
	AllowedEmails []string
	RequireEmail  bool
	RequireVerify bool
	ExpiresAt     *time.Time
}

// LinkAccess is what a granted viewer sees.
type LinkAccess struct {
	Dataroom  *domain.Dataroom
	Documents []domain.Document
	Viewer    *domain.Viewer
}

// NewDataroomService constructs the service.
func NewDataroomService(deps DataroomDependencies) *DataroomService {
	return &DataroomService{
		datarooms:   deps.DataroomRepo,
		documents:   deps.DocumentRepo,
		links:       deps.LinkRepo,
		viewers:     deps.ViewerRepo,
		dispatcher:  deps.Dispatcher,
		viewLimiter: deps.ViewLimiter,
		magicLink:   deps.MagicLink,
		mailer:      deps.Mailer,
		logger:      deps.Logger,
	}
}

// CreateDataroom creates a dataroom for the caller's team.
func (s *DataroomService) CreateDataroom(ctx context.Context, teamID, name, description string) (*domain.Dataroom, error) {
	dataroom := &domain.Dataroom{
		TeamID:      teamID,
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	if err := s.datarooms.Create(ctx, dataroom); err != nil {
		return nil, err
	}
	return dataroom, nil
}

// ListDatarooms lists the team's datarooms.
func (s *DataroomService) ListDatarooms(ctx context.Context, teamID string) ([]domain.Dataroom, error) {
	return s.datarooms.ListByTeam(ctx, teamID)
}

// GetDataroom fetches a dataroom and checks tenant ownership.
func (s *DataroomService) GetDataroom(ctx context.Context, teamID, dataroomID string) (*domain.Dataroom, error) {
	dataroom, err := s.datarooms.GetByID(ctx, dataroomID)
	if err != nil {
		return nil, err
	}
	if dataroom.TeamID != teamID {
		return nil, apperrors.NewNotFound("dataroom", nil)
	}
	return dataroom, nil
}

// AddDocument registers document metadata in a dataroom.
func (s *DataroomService) AddDocument(ctx context.Context, teamID, dataroomID string, userID string, doc *domain.Document) error {
	dataroom, err := s.GetDataroom(ctx, teamID, dataroomID)
	if err != nil {
		return err
	}
	doc.DataroomID = dataroom.ID
	if err := s.documents.Create(ctx, doc); err != nil {
		return err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventDocumentUploaded,
		TeamID:    teamID,
		Actor:     events.Actor{Type: events.ActorAdmin, UserID: &userID},
		Timestamp: time.Now(),
		Payload: events.DocumentUploadedPayload{
			DataroomID: dataroom.ID,
			DocumentID: doc.ID,
			Name:       doc.Name,
		},
	})
	return nil
}

// ListDocuments lists a dataroom's documents after an ownership check.
func (s *DataroomService) ListDocuments(ctx context.Context, teamID, dataroomID string) ([]domain.Document, error) {
	if _, err := s.GetDataroom(ctx, teamID, dataroomID); err != nil {
		return nil, err
	}
	return s.documents.ListByDataroom(ctx, dataroomID)
}

// CreateLink creates a view link with its access policy.
func (s *DataroomService) CreateLink(ctx context.Context, teamID, dataroomID string, input LinkCreateInput) (*domain.ViewLink, error) {
	dataroom, err := s.GetDataroom(ctx, teamID, dataroomID)
	if err != nil {
		return nil, err
	}

	link := &domain.ViewLink{
		DataroomID:    dataroom.ID,
		Slug:          uuid.NewString(),
		AllowedEmails: normalizeEmails(input.AllowedEmails),
		RequireEmail:  input.RequireEmail || len(input.AllowedEmails) > 0 || input.RequireVerify,
		RequireVerify: input.RequireVerify,
		ExpiresAt:     input.ExpiresAt,
		IsActive:      true,
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// AccessLink runs the access-gate chain for a public link view: rate
// limit, link state, email policy, verification, then records the view.
func (s *DataroomService) AccessLink(ctx context.Context, slug, viewerEmail, identifier string) (*LinkAccess, error) {
	if res := s.viewLimiter.Check(ctx, identifier); !res.Success {
		return nil, apperrors.NewTooManyRequests("too many views, slow down")
	}

	link, err := s.links.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("link", nil)
		}
		return nil, err
	}
	if !link.IsActive {
		return nil, apperrors.NewForbidden("link disabled")
	}
	if link.Expired(time.Now()) {
		return nil, apperrors.NewForbidden("link expired")
	}

	if link.RequireEmail && viewerEmail == "" {
		return nil, apperrors.NewValidationError("email required to view this dataroom", nil)
	}
	if !link.EmailAllowed(viewerEmail) {
		return nil, apperrors.NewForbidden("email not authorized for this link")
	}

	dataroom, err := s.datarooms.GetByID(ctx, link.DataroomID)
	if err != nil {
		return nil, err
	}

	var viewer *domain.Viewer
	if viewerEmail != "" {
		viewer = &domain.Viewer{TeamID: dataroom.TeamID, Email: strings.ToLower(viewerEmail)}
		if err := s.viewers.UpsertByEmail(ctx, viewer); err != nil {
			return nil, err
		}
		if link.RequireVerify && viewer.VerifiedAt == nil {
			if err := s.sendViewerVerification(ctx, viewer.Email, slug); err != nil {
				s.logger.Warn("failed to send viewer verification", zap.Error(err))
			}
			return nil, ErrVerificationRequired
		}
	}

	docs, err := s.documents.ListByDataroom(ctx, dataroom.ID)
	if err != nil {
		return nil, err
	}

	if viewer != nil {
		view := &domain.View{LinkID: link.ID, ViewerID: viewer.ID}
		if err := s.viewers.RecordView(ctx, view); err != nil {
			s.logger.Warn("failed to record view", zap.Error(err))
		}
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventLinkViewed,
			TeamID:    dataroom.TeamID,
			Actor:     events.Actor{Type: events.ActorViewer, ViewerID: &viewer.ID},
			Timestamp: time.Now(),
			Payload: events.LinkViewedPayload{
				LinkID:      link.ID,
				DataroomID:  dataroom.ID,
				ViewerEmail: viewer.Email,
			},
		})
	}

	return &LinkAccess{Dataroom: dataroom, Documents: docs, Viewer: viewer}, nil
}

// VerifyViewer consumes a viewer verification magic link.
func (s *DataroomService) VerifyViewer(ctx context.Context, token, viewerEmail, slug string) error {
	if _, ok := s.magicLink.Verify(ctx, token, viewerEmail); !ok {
		return apperrors.NewUnauthorized("invalid or expired verification link")
	}

	link, err := s.links.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	dataroom, err := s.datarooms.GetByID(ctx, link.DataroomID)
	if err != nil {
		return err
	}

	viewer := &domain.Viewer{TeamID: dataroom.TeamID, Email: strings.ToLower(viewerEmail)}
	if err := s.viewers.UpsertByEmail(ctx, viewer); err != nil {
		return err
	}
	return s.viewers.MarkVerified(ctx, viewer.ID, time.Now())
}

func (s *DataroomService) sendViewerVerification(ctx context.Context, viewerEmail, slug string) error {
	link, err := s.magicLink.Issue(ctx, viewerEmail, "/view/"+slug)
	if err != nil {
		return err
	}
	if s.mailer == nil {
		s.logger.Warn("mailer not configured; verification link not delivered")
		return nil
	}
	subject, html, text := emailpkg.MagicLinkMessage(link)
	return s.mailer.Send(viewerEmail, subject, html, text)
}

func normalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
