package domain

import (
	"strings"
	"time"
)

// ViewLink is a shareable entry point into a dataroom with its own
// access policy: optional email allow-list, email verification via
// magic link, expiry, and an on/off switch.
type ViewLink struct {
	ID            string
	DataroomID    string
	Slug          string
	AllowedEmails []string
	RequireEmail  bool
	RequireVerify bool
	ExpiresAt     *time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expired reports whether the link is past its expiry, if one is set.
func (l *ViewLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// EmailAllowed reports whether the given email may use this link. An
// empty allow-list admits any email.
func (l *ViewLink) EmailAllowed(email string) bool {
	if len(l.AllowedEmails) == 0 {
		return true
	}
	for _, allowed := range l.AllowedEmails {
		if strings.EqualFold(allowed, email) {
			return true
		}
	}
	return false
}
