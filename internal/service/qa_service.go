package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/events"
	"github.com/fundvault/dataroom-service/internal/flags"
	"github.com/fundvault/dataroom-service/internal/ratelimit"
	"github.com/fundvault/dataroom-service/internal/repository"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

// QAService coordinates viewer questions and admin answers.
type QAService struct {
	questions  repository.QuestionRepository
	datarooms  repository.DataroomRepository
	viewers    repository.ViewerRepository
	links      repository.LinkRepository
	flags      *flags.Resolver
	dispatcher events.Dispatcher
	limiter    *ratelimit.Limiter
	logger     *zap.Logger
}

// QADependencies bundles requirements for the Q&A service.
type QADependencies struct {
	QuestionRepo repository.QuestionRepository
	DataroomRepo repository.DataroomRepository
	ViewerRepo   repository.ViewerRepository
	LinkRepo     repository.LinkRepository
	Flags        *flags.Resolver
	Dispatcher   events.Dispatcher
	Limiter      *ratelimit.Limiter
	Logger       *zap.Logger
}

// NewQAService constructs the service.
func NewQAService(deps QADependencies) *QAService {
	return &QAService{
		questions:  deps.QuestionRepo,
		datarooms:  deps.DataroomRepo,
		viewers:    deps.ViewerRepo,
		links:      deps.LinkRepo,
		flags:      deps.Flags,
		dispatcher: deps.Dispatcher,
		limiter:    deps.Limiter,
		logger:     deps.Logger,
	}
}

// AskQuestion records a viewer question raised through a view link. The
// link's access policy applies exactly as it does for viewing: disabled
// or expired links, emails outside the allow-list, and unverified
// viewers on verify-required links are all rejected before any question
// is stored. Q&A must also be enabled for the dataroom's team.
func (s *QAService) AskQuestion(ctx context.Context, linkSlug, viewerEmail, body, identifier string) (*domain.Question, error) {
	if res := s.limiter.Check(ctx, identifier); !res.Success {
		return nil, apperrors.NewTooManyRequests("too many questions, slow down")
	}

	link, err := s.links.GetBySlug(ctx, linkSlug)
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
	if viewerEmail == "" {
		return nil, apperrors.NewValidationError("email required to ask a question", nil)
	}
	if !link.EmailAllowed(viewerEmail) {
		return nil, apperrors.NewForbidden("email not authorized for this link")
	}

	dataroom, err := s.datarooms.GetByID(ctx, link.DataroomID)
	if err != nil {
		return nil, err
	}

	teamFlags := s.flags.GetFeatureFlags(ctx, dataroom.TeamID)
	if !teamFlags[flags.FlagQA] {
		return nil, apperrors.NewForbidden("Q&A is not enabled for this dataroom")
	}

	viewer := &domain.Viewer{TeamID: dataroom.TeamID, Email: strings.ToLower(viewerEmail)}
	if err := s.viewers.UpsertByEmail(ctx, viewer); err != nil {
		return nil, err
	}
	if link.RequireVerify && viewer.VerifiedAt == nil {
		return nil, ErrVerificationRequired
	}

	question := &domain.Question{
		DataroomID: dataroom.ID,
		ViewerID:   viewer.ID,
		Body:       body,
		Status:     domain.QuestionStatusOpen,
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventQuestionAsked,
		TeamID:    dataroom.TeamID,
		Actor:     events.Actor{Type: events.ActorViewer, ViewerID: &viewer.ID},
		Timestamp: time.Now(),
		Payload: events.QuestionAskedPayload{
			DataroomID:   dataroom.ID,
			DataroomName: dataroom.Name,
			QuestionID:   question.ID,
			BodyPreview:  preview(body, 140),
		},
	})
	return question, nil
}

// ListQuestions lists a dataroom's questions after an ownership check.
func (s *QAService) ListQuestions(ctx context.Context, teamID, dataroomID string) ([]domain.Question, error) {
	dataroom, err := s.datarooms.GetByID(ctx, dataroomID)
	if err != nil {
		return nil, err
	}
	if dataroom.TeamID != teamID {
		return nil, apperrors.NewNotFound("dataroom", nil)
	}
	return s.questions.ListByDataroom(ctx, dataroomID)
}

// AnswerQuestion records an admin answer and notifies the viewer.
func (s *QAService) AnswerQuestion(ctx context.Context, teamID, userID, questionID, answer string) (*domain.Question, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("question", nil)
		}
		return nil, err
	}
	dataroom, err := s.datarooms.GetByID(ctx, question.DataroomID)
	if err != nil {
		return nil, err
	}
	if dataroom.TeamID != teamID {
		return nil, apperrors.NewNotFound("question", nil)
	}
	if question.Status == domain.QuestionStatusAnswered {
		return nil, apperrors.NewConflict("question already answered", nil)
	}

	now := time.Now()
	if err := s.questions.Answer(ctx, questionID, userID, answer, now); err != nil {
		return nil, err
	}
	question.Status = domain.QuestionStatusAnswered
	question.Answer = &answer
	question.AnsweredBy = &userID
	question.AnsweredAt = &now

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventQuestionAnswered,
		TeamID:    teamID,
		Actor:     events.Actor{Type: events.ActorAdmin, UserID: &userID},
		Timestamp: now,
		Payload: events.QuestionAnsweredPayload{
			DataroomID:   dataroom.ID,
			DataroomName: dataroom.Name,
			QuestionID:   question.ID,
			ViewerID:     question.ViewerID,
			Answer:       answer,
		},
	})
	return question, nil
}

func preview(body string, max int) string {
	if len(body) <= max {
		return body
	}
	return body[:max] + "..."
}
