package domain

import "time"

// UserStatus represents lifecycle states for an admin user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is an admin belonging to a team. Admins manage datarooms and
// investors; they sign in with a password or a magic link. A set
// UnsubscribedAt excludes the admin from notification emails.
type User struct {
	ID             string
	TeamID         string
	Name           string
	Email          string
	PasswordHash   string
	Status         UserStatus
	UnsubscribedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
