package domain

import "time"

// Dataroom groups documents shared with investors through view links.
type Dataroom struct {
	ID          string
	TeamID      string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
