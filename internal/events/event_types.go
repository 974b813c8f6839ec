package events

import (
	"time"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLinkViewed       EventType = "link_viewed"
	EventDocumentUploaded EventType = "document_uploaded"
	EventQuestionAsked    EventType = "question_asked"
	EventQuestionAnswered EventType = "question_answered"
	EventKycStatusChanged EventType = "kyc_status_changed"
)

// ActorType distinguishes who triggered an event.
type ActorType string

const (
	ActorAdmin  ActorType = "ADMIN"
	ActorViewer ActorType = "VIEWER"
	ActorSystem ActorType = "SYSTEM"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type     ActorType `json:"type"`
	UserID   *string   `json:"user_id,omitempty"`
	ViewerID *string   `json:"viewer_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TeamID    string      `json:"team_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LinkViewedPayload payload.
type LinkViewedPayload struct {
	LinkID      string  `json:"link_id"`
	DataroomID  string  `json:"dataroom_id"`
	ViewerEmail string  `json:"viewer_email"`
	DocumentID  *string `json:"document_id,omitempty"`
}

// DocumentUploadedPayload payload.
type DocumentUploadedPayload struct {
	DataroomID string `json:"dataroom_id"`
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
}

// QuestionAskedPayload payload.
type QuestionAskedPayload struct {
	DataroomID   string `json:"dataroom_id"`
	DataroomName string `json:"dataroom_name"`
	QuestionID   string `json:"question_id"`
	BodyPreview  string `json:"body_preview"`
}

// QuestionAnsweredPayload payload.
type QuestionAnsweredPayload struct {
	DataroomID   string `json:"dataroom_id"`
	DataroomName string `json:"dataroom_name"`
	QuestionID   string `json:"question_id"`
	ViewerID     string `json:"viewer_id"`
	Answer       string `json:"answer"`
}

// KycStatusChangedPayload payload.
type KycStatusChangedPayload struct {
	InvestorID string           `json:"investor_id"`
	OldStatus  domain.KycStatus `json:"old_status"`
	NewStatus  domain.KycStatus `json:"new_status"`
}
