package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnsubscribeTokenRoundTrip(t *testing.T) {
	tokens := NewUnsubscribeTokens("secret", 90)
	dataroomID := "room-1"

	signed, err := tokens.Generate("viewer-1", "team-1", &dataroomID)
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "viewer-1", claims.ViewerID)
	require.Equal(t, "team-1", claims.TeamID)
	require.NotNil(t, claims.DataroomID)
	require.Equal(t, "room-1", *claims.DataroomID)
	require.NotNil(t, claims.ExpiresAt)
}

func TestUnsubscribeTokenFailsClosedWithoutSecret(t *testing.T) {
	tokens := NewUnsubscribeTokens("", 90)

	_, err := tokens.Generate("viewer-1", "team-1", nil)
	require.ErrorIs(t, err, ErrSigningSecretMissing)
}

func TestUnsubscribeTokenRejectsWrongSecret(t *testing.T) {
	signed, err := NewUnsubscribeTokens("secret-a", 90).Generate("viewer-1", "team-1", nil)
	require.NoError(t, err)

	_, err = NewUnsubscribeTokens("secret-b", 90).Parse(signed)
	require.Error(t, err)
}

func TestUnsubscribeURL(t *testing.T) {
	tokens := NewUnsubscribeTokens("secret", 90)

	url := tokens.URL("https://app.example.com", UnsubscribeDataroom, "tok123")
	require.Equal(t, "https://app.example.com/unsubscribe/dataroom/tok123", url)

	url = tokens.URL("https://app.example.com", UnsubscribeYearInReview, "tok123")
	require.Equal(t, "https://app.example.com/unsubscribe/year-in-review/tok123", url)
}
