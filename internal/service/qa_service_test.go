package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/events"
	"github.com/fundvault/dataroom-service/internal/flags"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

type fakeQuestionRepo struct {
	byID map[string]*domain.Question
}

func (f *fakeQuestionRepo) Create(_ context.Context, question *domain.Question) error {
	question.ID = "q-1"
	f.byID[question.ID] = question
	return nil
}
func (f *fakeQuestionRepo) GetByID(_ context.Context, id string) (*domain.Question, error) {
	question, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return question, nil
}
func (f *fakeQuestionRepo) ListByDataroom(_ context.Context, _ string) ([]domain.Question, error) {
	return nil, nil
}
func (f *fakeQuestionRepo) Answer(_ context.Context, id, answeredBy, answer string, at time.Time) error {
	question, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	question.Status = domain.QuestionStatusAnswered
	question.Answer = &answer
	question.AnsweredBy = &answeredBy
	question.AnsweredAt = &at
	return nil
}

type staticFlagSource struct {
	lists map[string][]string
}

func (s *staticFlagSource) AllowLists(_ context.Context) (map[string][]string, error) {
	return s.lists, nil
}

type qaFixture struct {
	service    *QAService
	questions  *fakeQuestionRepo
	links      *fakeLinkRepo
	viewers    *fakeViewerRepo
	dispatcher *recordingDispatcher
}

func newQAFixture(qaTeams []string) *qaFixture {
	logger := zap.NewNop()
	questions := &fakeQuestionRepo{byID: map[string]*domain.Question{}}
	links := &fakeLinkRepo{bySlug: map[string]*domain.ViewLink{
		"s": {ID: "link-1", DataroomID: "room-1", Slug: "s", IsActive: true},
	}}
	viewers := newFakeViewerRepo()
	dispatcher := &recordingDispatcher{}
	resolver := flags.NewResolver(&staticFlagSource{lists: map[string][]string{
		flags.FlagQA: qaTeams,
	}}, time.Minute, logger)

	svc := NewQAService(QADependencies{
		QuestionRepo: questions,
		DataroomRepo: &fakeDataroomRepo{byID: map[string]*domain.Dataroom{
			"room-1": {ID: "room-1", TeamID: "team-1", Name: "Fund I", IsActive: true},
		}},
		ViewerRepo: viewers,
		LinkRepo:   links,
		Flags:      resolver,
		Dispatcher: dispatcher,
		Limiter:    nil,
		Logger:     logger,
	})
	return &qaFixture{service: svc, questions: questions, links: links, viewers: viewers, dispatcher: dispatcher}
}

func TestAskQuestionRequiresFlag(t *testing.T) {
	fx := newQAFixture(nil)

	_, err := fx.service.AskQuestion(context.Background(), "s", "lp@fund.com", "What is the minimum check?", "198.51.100.7")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestAskQuestionPublishesEvent(t *testing.T) {
	fx := newQAFixture([]string{"team-1"})

	question, err := fx.service.AskQuestion(context.Background(), "s", "lp@fund.com", "What is the minimum check?", "198.51.100.7")
	require.NoError(t, err)
	require.Equal(t, domain.QuestionStatusOpen, question.Status)
	require.Equal(t, "room-1", question.DataroomID)

	require.Len(t, fx.dispatcher.published, 1)
	require.Equal(t, events.EventQuestionAsked, fx.dispatcher.published[0].Type)
	payload, ok := fx.dispatcher.published[0].Payload.(events.QuestionAskedPayload)
	require.True(t, ok)
	require.Equal(t, question.ID, payload.QuestionID)
}

func TestAskQuestionRejectsDisabledLink(t *testing.T) {
	fx := newQAFixture([]string{"team-1"})
	fx.links.bySlug["s"].IsActive = false

	_, err := fx.service.AskQuestion(context.Background(), "s", "lp@fund.com", "Still open?", "198.51.100.7")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "FORBIDDEN", domainErr.Code)
	require.Equal(t, "link disabled", domainErr.Message)
	require.Empty(t, fx.questions.byID)
}

func TestAskQuestionRejectsExpiredLink(t *testing.T) {
	fx := newQAFixture([]string{"team-1"})
	past := time.Now().Add(-time.Hour)
	fx.links.bySlug["s"].ExpiresAt = &past

	_, err := fx.service.AskQuestion(context.Background(), "s", "lp@fund.com", "Still open?", "198.51.100.7")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "FORBIDDEN", domainErr.Code)
	require.Equal(t, "link expired", domainErr.Message)
	require.Empty(t, fx.questions.byID)
}

func TestAskQuestionEnforcesAllowList(t *testing.T) {
	fx := newQAFixture([]string{"team-1"})
	fx.links.bySlug["s"].AllowedEmails = []string{"lp@fund.com"}

	_, err := fx.service.AskQuestion(context.Background(), "s", "outsider@rival.com", "Can I see the deck?", "198.51.100.7")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "FORBIDDEN", domainErr.Code)
	require.Empty(t, fx.questions.byID)

	_, err = fx.service.AskQuestion(context.Background(), "s", "lp@fund.com", "Can I see the deck?", "198.51.100.7")
	require.NoError(t, err)
}

func TestAskQuestionRequiresVerifiedViewer(t *testing.T) {
	fx := newQAFixture([]string{"team-1"})
	fx.links.bySlug["s"].RequireEmail = true
	fx.links.bySlug["s"].RequireVerify = true

	_, err := fx.service.AskQuestion(context.Background(), "s", "lp@fund.com", "When is first close?", "198.51.100.7")
	require.ErrorIs(t, err, ErrVerificationRequired)
	require.Empty(t, fx.questions.byID)
}

func TestAnswerQuestionConflictsWhenAlreadyAnswered(t *testing.T) {
	fx := newQAFixture([]string{"team-1"})

	question, err := fx.service.AskQuestion(context.Background(), "s", "lp@fund.com", "When is first close?", "198.51.100.7")
	require.NoError(t, err)

	answered, err := fx.service.AnswerQuestion(context.Background(), "team-1", "user-1", question.ID, "March.")
	require.NoError(t, err)
	require.Equal(t, domain.QuestionStatusAnswered, answered.Status)

	_, err = fx.service.AnswerQuestion(context.Background(), "team-1", "user-1", question.ID, "April.")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "CONFLICT", domainErr.Code)
}

func TestAnswerQuestionTenantIsolated(t *testing.T) {
	fx := newQAFixture([]string{"team-1"})

	question, err := fx.service.AskQuestion(context.Background(), "s", "lp@fund.com", "When is first close?", "198.51.100.7")
	require.NoError(t, err)

	_, err = fx.service.AnswerQuestion(context.Background(), "team-2", "user-9", question.ID, "March.")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestPreviewTruncatesLongBodies(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	short := preview("short question", 140)
	require.Equal(t, "short question", short)

	truncated := preview(string(long), 140)
	require.Len(t, truncated, 143)
	require.Equal(t, "...", truncated[140:])
}
