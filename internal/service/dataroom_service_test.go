package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundvault/dataroom-service/internal/auth"
	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/events"
	"github.com/fundvault/dataroom-service/internal/repository"
	apperrors "github.com/fundvault/dataroom-service/pkg/util"
)

type fakeLinkRepo struct {
	bySlug map[string]*domain.ViewLink
}

func (f *fakeLinkRepo) Create(_ context.Context, link *domain.ViewLink) error {
	link.ID = "link-" + link.Slug
	f.bySlug[link.Slug] = link
	return nil
}
func (f *fakeLinkRepo) Update(_ context.Context, _ *domain.ViewLink) error { return nil }
func (f *fakeLinkRepo) GetByID(_ context.Context, _ string) (*domain.ViewLink, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeLinkRepo) GetBySlug(_ context.Context, slug string) (*domain.ViewLink, error) {
	link, ok := f.bySlug[slug]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return link, nil
}
func (f *fakeLinkRepo) ListByDataroom(_ context.Context, _ string) ([]domain.ViewLink, error) {
	return nil, nil
}

type fakeDataroomRepo struct {
	byID map[string]*domain.Dataroom
}

func (f *fakeDataroomRepo) Create(_ context.Context, dataroom *domain.Dataroom) error {
	dataroom.ID = "room-1"
	f.byID[dataroom.ID] = dataroom
	return nil
}
func (f *fakeDataroomRepo) Update(_ context.Context, _ *domain.Dataroom) error { return nil }
func (f *fakeDataroomRepo) GetByID(_ context.Context, id string) (*domain.Dataroom, error) {
	dataroom, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return dataroom, nil
}
func (f *fakeDataroomRepo) ListByTeam(_ context.Context, _ string) ([]domain.Dataroom, error) {
	return nil, nil
}

type fakeDocumentRepo struct {
	byDataroom map[string][]domain.Document
}

func (f *fakeDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	doc.ID = "doc-1"
	f.byDataroom[doc.DataroomID] = append(f.byDataroom[doc.DataroomID], *doc)
	return nil
}
func (f *fakeDocumentRepo) GetByID(_ context.Context, _ string) (*domain.Document, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeDocumentRepo) ListByDataroom(_ context.Context, dataroomID string) ([]domain.Document, error) {
	return f.byDataroom[dataroomID], nil
}
func (f *fakeDocumentRepo) Delete(_ context.Context, _ string) error { return nil }

type fakeViewerRepo struct {
	byEmail map[string]*domain.Viewer
	views   []domain.View
}

func newFakeViewerRepo() *fakeViewerRepo {
	return &fakeViewerRepo{byEmail: map[string]*domain.Viewer{}}
}

func (f *fakeViewerRepo) UpsertByEmail(_ context.Context, viewer *domain.Viewer) error {
	if existing, ok := f.byEmail[viewer.Email]; ok {
		*viewer = *existing
		return nil
	}
	viewer.ID = "viewer-" + viewer.Email
	f.byEmail[viewer.Email] = viewer
	return nil
}
func (f *fakeViewerRepo) GetByID(_ context.Context, id string) (*domain.Viewer, error) {
	for _, viewer := range f.byEmail {
		if viewer.ID == id {
			return viewer, nil
		}
	}
	return nil, pgx.ErrNoRows
}
func (f *fakeViewerRepo) MarkVerified(_ context.Context, id string, at time.Time) error {
	for _, viewer := range f.byEmail {
		if viewer.ID == id && viewer.VerifiedAt == nil {
			viewer.VerifiedAt = &at
		}
	}
	return nil
}
func (f *fakeViewerRepo) MarkUnsubscribed(_ context.Context, _ string, _ time.Time) error {
	return nil
}
func (f *fakeViewerRepo) RecordView(_ context.Context, view *domain.View) error {
	view.ID = "view-1"
	f.views = append(f.views, *view)
	return nil
}
func (f *fakeViewerRepo) CountViewsByLink(_ context.Context, _ string) (int64, error) {
	return int64(len(f.views)), nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}
func (d *recordingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

type mapMagicLinkStore struct {
	byHash map[string]*repository.MagicLinkToken
}

func (s *mapMagicLinkStore) Create(_ context.Context, token *repository.MagicLinkToken) error {
	token.ID = "ml-1"
	s.byHash[token.TokenHash] = token
	return nil
}
func (s *mapMagicLinkStore) GetByHash(_ context.Context, hash string) (*repository.MagicLinkToken, error) {
	token, ok := s.byHash[hash]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return token, nil
}
func (s *mapMagicLinkStore) MarkConsumed(_ context.Context, id string, at time.Time) error {
	for _, token := range s.byHash {
		if token.ID == id {
			token.ConsumedAt = &at
		}
	}
	return nil
}

func queryParam(t *testing.T, rawURL, key string) string {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	return parsed.Query().Get(key)
}

type accessFixture struct {
	service    *DataroomService
	links      *fakeLinkRepo
	viewers    *fakeViewerRepo
	dispatcher *recordingDispatcher
}

func newAccessFixture(link *domain.ViewLink) *accessFixture {
	logger := zap.NewNop()
	links := &fakeLinkRepo{bySlug: map[string]*domain.ViewLink{}}
	if link != nil {
		links.bySlug[link.Slug] = link
	}
	datarooms := &fakeDataroomRepo{byID: map[string]*domain.Dataroom{
		"room-1": {ID: "room-1", TeamID: "team-1", Name: "Fund I", IsActive: true},
	}}
	documents := &fakeDocumentRepo{byDataroom: map[string][]domain.Document{
		"room-1": {{ID: "doc-1", DataroomID: "room-1", Name: "deck.pdf"}},
	}}
	viewers := newFakeViewerRepo()
	dispatcher := &recordingDispatcher{}
	magicLink := auth.NewMagicLink("secret", "https://app.example.com", 20, &mapMagicLinkStore{byHash: map[string]*repository.MagicLinkToken{}}, logger)

	svc := NewDataroomService(DataroomDependencies{
		DataroomRepo: datarooms,
		DocumentRepo: documents,
		LinkRepo:     links,
		ViewerRepo:   viewers,
		Dispatcher:   dispatcher,
		ViewLimiter:  nil,
		MagicLink:    magicLink,
		Mailer:       nil,
		Logger:       logger,
	})
	return &accessFixture{service: svc, links: links, viewers: viewers, dispatcher: dispatcher}
}

func TestAccessLinkUnknownSlugNotFound(t *testing.T) {
	fx := newAccessFixture(nil)

	_, err := fx.service.AccessLink(context.Background(), "missing", "", "198.51.100.1")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestAccessLinkDisabledForbidden(t *testing.T) {
	fx := newAccessFixture(&domain.ViewLink{DataroomID: "room-1", Slug: "s", IsActive: false})

	_, err := fx.service.AccessLink(context.Background(), "s", "", "198.51.100.1")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestAccessLinkExpiredForbidden(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	fx := newAccessFixture(&domain.ViewLink{DataroomID: "room-1", Slug: "s", IsActive: true, ExpiresAt: &past})

	_, err := fx.service.AccessLink(context.Background(), "s", "", "198.51.100.1")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestAccessLinkEmailRequired(t *testing.T) {
	fx := newAccessFixture(&domain.ViewLink{DataroomID: "room-1", Slug: "s", IsActive: true, RequireEmail: true})

	_, err := fx.service.AccessLink(context.Background(), "s", "", "198.51.100.1")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestAccessLinkAllowListRejectsOutsider(t *testing.T) {
	fx := newAccessFixture(&domain.ViewLink{
		DataroomID:    "room-1",
		Slug:          "s",
		IsActive:      true,
		RequireEmail:  true,
		AllowedEmails: []string{"lp@fund.com"},
	})

	_, err := fx.service.AccessLink(context.Background(), "s", "outsider@fund.com", "198.51.100.1")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestAccessLinkUnverifiedViewerTriggersVerification(t *testing.T) {
	fx := newAccessFixture(&domain.ViewLink{
		DataroomID:    "room-1",
		Slug:          "s",
		IsActive:      true,
		RequireEmail:  true,
		RequireVerify: true,
	})

	_, err := fx.service.AccessLink(context.Background(), "s", "lp@fund.com", "198.51.100.1")
	require.ErrorIs(t, err, ErrVerificationRequired)
	require.Empty(t, fx.viewers.views)
}

func TestAccessLinkGrantsAndRecordsView(t *testing.T) {
	fx := newAccessFixture(&domain.ViewLink{
		ID:           "link-1",
		DataroomID:   "room-1",
		Slug:         "s",
		IsActive:     true,
		RequireEmail: true,
	})

	access, err := fx.service.AccessLink(context.Background(), "s", "LP@Fund.com", "198.51.100.1")
	require.NoError(t, err)
	require.Equal(t, "room-1", access.Dataroom.ID)
	require.Len(t, access.Documents, 1)
	require.NotNil(t, access.Viewer)
	require.Equal(t, "lp@fund.com", access.Viewer.Email)

	require.Len(t, fx.viewers.views, 1)
	require.Len(t, fx.dispatcher.published, 1)
	require.Equal(t, events.EventLinkViewed, fx.dispatcher.published[0].Type)
}

func TestVerifyViewerMarksVerified(t *testing.T) {
	fx := newAccessFixture(&domain.ViewLink{
		DataroomID:    "room-1",
		Slug:          "s",
		IsActive:      true,
		RequireEmail:  true,
		RequireVerify: true,
	})

	link, err := fx.service.magicLink.Issue(context.Background(), "lp@fund.com", "/view/s")
	require.NoError(t, err)
	token := queryParam(t, link, "token")

	require.NoError(t, fx.service.VerifyViewer(context.Background(), token, "lp@fund.com", "s"))

	access, err := fx.service.AccessLink(context.Background(), "s", "lp@fund.com", "198.51.100.1")
	require.NoError(t, err)
	require.NotNil(t, access.Viewer.VerifiedAt)
}

func TestCreateLinkForcesEmailRequirement(t *testing.T) {
	fx := newAccessFixture(nil)

	link, err := fx.service.CreateLink(context.Background(), "team-1", "room-1", LinkCreateInput{
		AllowedEmails: []string{" LP@Fund.com "},
	})
	require.NoError(t, err)
	require.True(t, link.RequireEmail)
	require.Equal(t, []string{"lp@fund.com"}, link.AllowedEmails)

	link, err = fx.service.CreateLink(context.Background(), "team-1", "room-1", LinkCreateInput{RequireVerify: true})
	require.NoError(t, err)
	require.True(t, link.RequireEmail)
}
