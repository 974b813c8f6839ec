package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// QuestionRepository manages Q&A persistence.
type QuestionRepository interface {
	Create(ctx context.Context, question *domain.Question) error
	GetByID(ctx context.Context, id string) (*domain.Question, error)
	ListByDataroom(ctx context.Context, dataroomID string) ([]domain.Question, error)
	Answer(ctx context.Context, id, answeredBy, answer string, at time.Time) error
}

type questionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository constructs repository.
func NewQuestionRepository(pool *pgxpool.Pool) QuestionRepository {
	return &questionRepository{pool: pool}
}

func (r *questionRepository) Create(ctx context.Context, question *domain.Question) error {
	const query = `
        INSERT INTO questions (dataroom_id, viewer_id, body, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		question.DataroomID,
		question.ViewerID,
		question.Body,
		question.Status,
	).Scan(&question.ID, &question.CreatedAt, &question.UpdatedAt)
}

func (r *questionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	const query = `
        SELECT id, dataroom_id, viewer_id, body, status, answer, answered_by, answered_at, created_at, updated_at
        FROM questions WHERE id=$1`
	var question domain.Question
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&question.ID,
		&question.DataroomID,
		&question.ViewerID,
		&question.Body,
		&question.Status,
		&question.Answer,
		&question.AnsweredBy,
		&question.AnsweredAt,
		&question.CreatedAt,
		&question.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) ListByDataroom(ctx context.Context, dataroomID string) ([]domain.Question, error) {
	const query = `
        SELECT id, dataroom_id, viewer_id, body, status, answer, answered_by, answered_at, created_at, updated_at
        FROM questions WHERE dataroom_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, dataroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Question
	for rows.Next() {
		var question domain.Question
		if err := rows.Scan(&question.ID, &question.DataroomID, &question.ViewerID, &question.Body, &question.Status, &question.Answer, &question.AnsweredBy, &question.AnsweredAt, &question.CreatedAt, &question.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, question)
	}
	return result, rows.Err()
}

func (r *questionRepository) Answer(ctx context.Context, id, answeredBy, answer string, at time.Time) error {
	const query = `
        UPDATE questions SET status=$1, answer=$2, answered_by=$3, answered_at=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query, domain.QuestionStatusAnswered, answer, answeredBy, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
