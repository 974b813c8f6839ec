package domain

import "time"

// Team is the tenant boundary. Datarooms, investors, tokens and feature
// flags are all scoped to a team.
type Team struct {
	ID        string
	Name      string
	Slug      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
