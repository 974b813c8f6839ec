package auth

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundvault/dataroom-service/internal/repository"
)

type fakeMagicLinkRepo struct {
	byHash map[string]*repository.MagicLinkToken
	nextID int
}

func newFakeMagicLinkRepo() *fakeMagicLinkRepo {
	return &fakeMagicLinkRepo{byHash: map[string]*repository.MagicLinkToken{}}
}

func (f *fakeMagicLinkRepo) Create(_ context.Context, token *repository.MagicLinkToken) error {
	f.nextID++
	token.ID = "ml-" + string(rune('0'+f.nextID))
	token.CreatedAt = time.Now()
	f.byHash[token.TokenHash] = token
	return nil
}

func (f *fakeMagicLinkRepo) GetByHash(_ context.Context, hash string) (*repository.MagicLinkToken, error) {
	token, ok := f.byHash[hash]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return token, nil
}

func (f *fakeMagicLinkRepo) MarkConsumed(_ context.Context, id string, at time.Time) error {
	for _, token := range f.byHash {
		if token.ID == id && token.ConsumedAt == nil {
			token.ConsumedAt = &at
		}
	}
	return nil
}

func issueLink(t *testing.T, ml *MagicLink, email string) (token string) {
	t.Helper()
	link, err := ml.Issue(context.Background(), email, "/dashboard")
	require.NoError(t, err)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	return parsed.Query().Get("token")
}

func TestMagicLinkIssueURLShape(t *testing.T) {
	ml := NewMagicLink("secret", "https://app.example.com", 20, newFakeMagicLinkRepo(), zap.NewNop())

	link, err := ml.Issue(context.Background(), "Investor@Example.com", "/dashboard")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "https://app.example.com/api/auth/callback/email?"))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	query := parsed.Query()
	require.NotEmpty(t, query.Get("token"))
	require.Equal(t, "Investor@Example.com", query.Get("email"))
	require.Equal(t, "/dashboard", query.Get("callbackUrl"))
}

func TestMagicLinkIssueFailsClosedWithoutSecret(t *testing.T) {
	ml := NewMagicLink("", "https://app.example.com", 20, newFakeMagicLinkRepo(), zap.NewNop())

	_, err := ml.Issue(context.Background(), "a@example.com", "/")
	require.ErrorIs(t, err, ErrSigningSecretMissing)
}

func TestMagicLinkVerifyIsSingleUse(t *testing.T) {
	repo := newFakeMagicLinkRepo()
	ml := NewMagicLink("secret", "https://app.example.com", 20, repo, zap.NewNop())
	token := issueLink(t, ml, "a@example.com")

	record, ok := ml.Verify(context.Background(), token, "a@example.com")
	require.True(t, ok)
	require.Equal(t, "a@example.com", record.Email)

	_, ok = ml.Verify(context.Background(), token, "a@example.com")
	require.False(t, ok)
}

func TestMagicLinkVerifyEmailCaseInsensitive(t *testing.T) {
	ml := NewMagicLink("secret", "https://app.example.com", 20, newFakeMagicLinkRepo(), zap.NewNop())
	token := issueLink(t, ml, "Investor@Example.com")

	_, ok := ml.Verify(context.Background(), token, "investor@example.com")
	require.True(t, ok)
}

func TestMagicLinkVerifyRejectsWrongEmail(t *testing.T) {
	ml := NewMagicLink("secret", "https://app.example.com", 20, newFakeMagicLinkRepo(), zap.NewNop())
	token := issueLink(t, ml, "a@example.com")

	_, ok := ml.Verify(context.Background(), token, "b@example.com")
	require.False(t, ok)
}

func TestMagicLinkVerifyRejectsExpired(t *testing.T) {
	ml := NewMagicLink("secret", "https://app.example.com", 20, newFakeMagicLinkRepo(), zap.NewNop())
	token := issueLink(t, ml, "a@example.com")

	ml.now = func() time.Time { return time.Now().Add(21 * time.Minute) }
	_, ok := ml.Verify(context.Background(), token, "a@example.com")
	require.False(t, ok)
}

func TestMagicLinkVerifyFailsClosedWithoutSecret(t *testing.T) {
	repo := newFakeMagicLinkRepo()
	signed := NewMagicLink("secret", "https://app.example.com", 20, repo, zap.NewNop())
	token := issueLink(t, signed, "a@example.com")

	unsigned := NewMagicLink("", "https://app.example.com", 20, repo, zap.NewNop())
	_, ok := unsigned.Verify(context.Background(), token, "a@example.com")
	require.False(t, ok)
}
