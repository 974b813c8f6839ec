package dto

import (
	"time"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// AskQuestionRequest payload.
type AskQuestionRequest struct {
	Email string `json:"email"`
	Body  string `json:"body"`
}

// AnswerQuestionRequest payload.
type AnswerQuestionRequest struct {
	Answer string `json:"answer"`
}

// QuestionSummary response.
type QuestionSummary struct {
	ID         string                `json:"id"`
	DataroomID string                `json:"dataroom_id"`
	Body       string                `json:"body"`
	Status     domain.QuestionStatus `json:"status"`
	Answer     *string               `json:"answer,omitempty"`
	AnsweredAt *time.Time            `json:"answered_at,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// NewQuestionSummary maps the domain model.
func NewQuestionSummary(q *domain.Question) QuestionSummary {
	return QuestionSummary{
		ID:         q.ID,
		DataroomID: q.DataroomID,
		Body:       q.Body,
		Status:     q.Status,
		Answer:     q.Answer,
		AnsweredAt: q.AnsweredAt,
		CreatedAt:  q.CreatedAt,
	}
}
