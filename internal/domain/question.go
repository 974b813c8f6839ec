package domain

import "time"

// QuestionStatus tracks the Q&A lifecycle.
type QuestionStatus string

const (
	QuestionStatusOpen     QuestionStatus = "OPEN"
	QuestionStatusAnswered QuestionStatus = "ANSWERED"
)

// Question is a viewer question raised against a dataroom, answered by
// an admin.
type Question struct {
	ID         string
	DataroomID string
	ViewerID   string
	Body       string
	Status     QuestionStatus
	Answer     *string
	AnsweredBy *string
	AnsweredAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
