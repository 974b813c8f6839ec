package domain

import "time"

// Viewer is a visitor identified by email who has accessed at least one
// view link of a team. Viewers receive Q&A notifications until they
// unsubscribe.
type Viewer struct {
	ID             string
	TeamID         string
	Email          string
	VerifiedAt     *time.Time
	UnsubscribedAt *time.Time
	CreatedAt      time.Time
}

// View records a single access of a view link by a viewer.
type View struct {
	ID         string
	LinkID     string
	ViewerID   string
	DocumentID *string
	CreatedAt  time.Time
}
