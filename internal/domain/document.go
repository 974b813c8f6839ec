package domain

import "time"

// Document is file metadata inside a dataroom. The bytes themselves live
// in object storage under StorageKey.
type Document struct {
	ID         string
	DataroomID string
	Name       string
	StorageKey string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
