package flags

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	lists map[string][]string
	err   error
	calls int
}

func (s *stubSource) AllowLists(_ context.Context) (map[string][]string, error) {
	s.calls++
	return s.lists, s.err
}

func TestGetFeatureFlagsDefaultsWithoutSource(t *testing.T) {
	resolver := NewResolver(nil, time.Minute, zap.NewNop())

	resolved := resolver.GetFeatureFlags(context.Background(), "team-1")
	require.Len(t, resolved, len(AllFlags))
	for _, flag := range AllFlags {
		require.Equal(t, flag == DefaultEnabledFlag, resolved[flag], flag)
	}
}

func TestGetFeatureFlagsEmptyTeamAllOff(t *testing.T) {
	source := &stubSource{lists: map[string][]string{FlagQA: {"team-1"}}}
	resolver := NewResolver(source, time.Minute, zap.NewNop())

	resolved := resolver.GetFeatureFlags(context.Background(), "")
	for _, flag := range AllFlags {
		require.False(t, resolved[flag], flag)
	}
	require.Zero(t, source.calls)
}

func TestGetFeatureFlagsResolvesFromAllowLists(t *testing.T) {
	source := &stubSource{lists: map[string][]string{
		FlagAdvancedDataroom: {"team-1", "team-2"},
		FlagQA:               {"team-2"},
	}}
	resolver := NewResolver(source, time.Minute, zap.NewNop())

	resolved := resolver.GetFeatureFlags(context.Background(), "team-1")
	require.True(t, resolved[FlagAdvancedDataroom])
	require.False(t, resolved[FlagQA])
	require.False(t, resolved[FlagESignature])
	require.False(t, resolved[FlagYearInReview])
	require.False(t, resolved[FlagBankLinking])
}

func TestGetFeatureFlagsSourceFailureAllOff(t *testing.T) {
	source := &stubSource{err: errors.New("boom")}
	resolver := NewResolver(source, time.Minute, zap.NewNop())

	resolved := resolver.GetFeatureFlags(context.Background(), "team-1")
	for _, flag := range AllFlags {
		require.False(t, resolved[flag], flag)
	}
}

func TestGetFeatureFlagsCachesAllowLists(t *testing.T) {
	source := &stubSource{lists: map[string][]string{FlagQA: {"team-1"}}}
	resolver := NewResolver(source, time.Minute, zap.NewNop())

	require.True(t, resolver.GetFeatureFlags(context.Background(), "team-1")[FlagQA])
	require.True(t, resolver.GetFeatureFlags(context.Background(), "team-1")[FlagQA])
	require.Equal(t, 1, source.calls)
}

func TestHTTPSourceFetchesAllowLists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer key123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"flags":{"qa_enabled":["team-1"]}}`))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, "key123")
	require.NotNil(t, source)

	lists, err := source.AllowLists(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"team-1"}, lists[FlagQA])
}

func TestHTTPSourceNilWithoutURL(t *testing.T) {
	require.Nil(t, NewHTTPSource("", "key123"))
}

func TestHTTPSourceRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, "")
	_, err := source.AllowLists(context.Background())
	require.Error(t, err)
}
