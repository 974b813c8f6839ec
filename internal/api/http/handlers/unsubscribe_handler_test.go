package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/fundvault/dataroom-service/internal/api/http"
	"github.com/fundvault/dataroom-service/internal/api/http/handlers"
	"github.com/fundvault/dataroom-service/internal/auth"
	"github.com/fundvault/dataroom-service/internal/domain"
	"github.com/fundvault/dataroom-service/internal/observability"
)

type unsubViewerStore struct {
	known        map[string]struct{}
	unsubscribed map[string]time.Time
}

func newUnsubViewerStore(ids ...string) *unsubViewerStore {
	s := &unsubViewerStore{known: map[string]struct{}{}, unsubscribed: map[string]time.Time{}}
	for _, id := range ids {
		s.known[id] = struct{}{}
	}
	return s
}

func (s *unsubViewerStore) UpsertByEmail(_ context.Context, _ *domain.Viewer) error { return nil }
func (s *unsubViewerStore) GetByID(_ context.Context, _ string) (*domain.Viewer, error) {
	return nil, pgx.ErrNoRows
}
func (s *unsubViewerStore) MarkVerified(_ context.Context, _ string, _ time.Time) error { return nil }
func (s *unsubViewerStore) MarkUnsubscribed(_ context.Context, id string, at time.Time) error {
	if _, ok := s.known[id]; !ok {
		return pgx.ErrNoRows
	}
	s.unsubscribed[id] = at
	return nil
}
func (s *unsubViewerStore) RecordView(_ context.Context, _ *domain.View) error { return nil }
func (s *unsubViewerStore) CountViewsByLink(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

type unsubUserStore struct {
	known        map[string]struct{}
	unsubscribed map[string]time.Time
}

func newUnsubUserStore(ids ...string) *unsubUserStore {
	s := &unsubUserStore{known: map[string]struct{}{}, unsubscribed: map[string]time.Time{}}
	for _, id := range ids {
		s.known[id] = struct{}{}
	}
	return s
}

func (s *unsubUserStore) Create(_ context.Context, _ *domain.User) error { return nil }
func (s *unsubUserStore) Update(_ context.Context, _ *domain.User) error { return nil }
func (s *unsubUserStore) GetByID(_ context.Context, _ string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (s *unsubUserStore) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (s *unsubUserStore) ListByTeam(_ context.Context, _ string) ([]domain.User, error) {
	return nil, nil
}
func (s *unsubUserStore) MarkUnsubscribed(_ context.Context, id string, at time.Time) error {
	if _, ok := s.known[id]; !ok {
		return pgx.ErrNoRows
	}
	s.unsubscribed[id] = at
	return nil
}

func newUnsubscribeApp(t *testing.T, viewers *unsubViewerStore, users *unsubUserStore) (*fiber.App, *auth.UnsubscribeTokens) {
	t.Helper()
	tokens := auth.NewUnsubscribeTokens("secret", 90)
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics("test"), 0)
	handler := handlers.NewUnsubscribeHandler(tokens, viewers, users)
	app.Get("/unsubscribe/:context/:token", handler.Unsubscribe)
	return app, tokens
}

func TestUnsubscribeMarksViewer(t *testing.T) {
	viewers := newUnsubViewerStore("viewer-1")
	users := newUnsubUserStore()
	app, tokens := newUnsubscribeApp(t, viewers, users)

	token, err := tokens.Generate("viewer-1", "team-1", nil)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/unsubscribe/dataroom/"+token, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, viewers.unsubscribed, "viewer-1")
	require.Empty(t, users.unsubscribed)
}

func TestUnsubscribeFallsBackToAdminUser(t *testing.T) {
	viewers := newUnsubViewerStore()
	users := newUnsubUserStore("user-1")
	app, tokens := newUnsubscribeApp(t, viewers, users)

	token, err := tokens.Generate("user-1", "team-1", nil)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/unsubscribe/dataroom/"+token, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, users.unsubscribed, "user-1")
}

func TestUnsubscribeUnknownRecipientNotFound(t *testing.T) {
	app, tokens := newUnsubscribeApp(t, newUnsubViewerStore(), newUnsubUserStore())

	token, err := tokens.Generate("ghost", "team-1", nil)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/unsubscribe/dataroom/"+token, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnsubscribeRejectsForeignToken(t *testing.T) {
	app, _ := newUnsubscribeApp(t, newUnsubViewerStore("viewer-1"), newUnsubUserStore())

	foreign, err := auth.NewUnsubscribeTokens("other-secret", 90).Generate("viewer-1", "team-1", nil)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/unsubscribe/dataroom/"+foreign, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnsubscribeUnknownContextNotFound(t *testing.T) {
	app, tokens := newUnsubscribeApp(t, newUnsubViewerStore("viewer-1"), newUnsubUserStore())

	token, err := tokens.Generate("viewer-1", "team-1", nil)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/unsubscribe/weekly/"+token, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
