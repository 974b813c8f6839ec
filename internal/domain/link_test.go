package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestViewLinkExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	require.False(t, (&ViewLink{}).Expired(now))
	require.False(t, (&ViewLink{ExpiresAt: &future}).Expired(now))
	require.True(t, (&ViewLink{ExpiresAt: &past}).Expired(now))
}

func TestViewLinkEmailAllowed(t *testing.T) {
	open := &ViewLink{}
	require.True(t, open.EmailAllowed("anyone@example.com"))
	require.True(t, open.EmailAllowed(""))

	restricted := &ViewLink{AllowedEmails: []string{"lp@fund.com", "analyst@fund.com"}}
	require.True(t, restricted.EmailAllowed("lp@fund.com"))
	require.True(t, restricted.EmailAllowed("LP@Fund.com"))
	require.False(t, restricted.EmailAllowed("other@fund.com"))
	require.False(t, restricted.EmailAllowed(""))
}

func TestKycStatusApproved(t *testing.T) {
	require.True(t, KycStatusApproved.Approved())
	require.True(t, KycStatusVerified.Approved())
	require.False(t, KycStatusPending.Approved())
	require.False(t, KycStatusRejected.Approved())
}
