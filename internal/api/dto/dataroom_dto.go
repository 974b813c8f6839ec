package dto

import (
	"time"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// CreateDataroomRequest payload.
type CreateDataroomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DataroomSummary response.
type DataroomSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AddDocumentRequest payload for registering document metadata.
type AddDocumentRequest struct {
	Name       string `json:"name"`
	StorageKey string `json:"storage_key"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// DocumentSummary response.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateLinkRequest payload for view link creation.
type CreateLinkRequest struct {
	AllowedEmails []string   `json:"allowed_emails"`
	RequireEmail  bool       `json:"require_email"`
	RequireVerify bool       `json:"require_verify"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// LinkSummary response.
type LinkSummary struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	AllowedEmails []string   `json:"allowed_emails"`
	RequireEmail  bool       `json:"require_email"`
	RequireVerify bool       `json:"require_verify"`
	ExpiresAt     *time.Time `json:"expires_at"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}

// LinkAccessResponse is the public view of a granted link.
type LinkAccessResponse struct {
	Dataroom  DataroomSummary   `json:"dataroom"`
	Documents []DocumentSummary `json:"documents"`
}

// NewDataroomSummary maps the domain model.
func NewDataroomSummary(d *domain.Dataroom) DataroomSummary {
	return DataroomSummary{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// NewDocumentSummary maps the domain model.
func NewDocumentSummary(d *domain.Document) DocumentSummary {
	return DocumentSummary{
		ID:        d.ID,
		Name:      d.Name,
		MimeType:  d.MimeType,
		SizeBytes: d.SizeBytes,
		CreatedAt: d.CreatedAt,
	}
}

// NewLinkSummary maps the domain model.
func NewLinkSummary(l *domain.ViewLink) LinkSummary {
	return LinkSummary{
		ID:            l.ID,
		Slug:          l.Slug,
		AllowedEmails: l.AllowedEmails,
		RequireEmail:  l.RequireEmail,
		RequireVerify: l.RequireVerify,
		ExpiresAt:     l.ExpiresAt,
		IsActive:      l.IsActive,
		CreatedAt:     l.CreatedAt,
	}
}
