package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundvault/dataroom-service/internal/domain"
)

// DocumentRepository manages persistence for document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, document *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByDataroom(ctx context.Context, dataroomID string) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
}

type documentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository constructs repository.
func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepository{pool: pool}
}

func (r *documentRepository) Create(ctx context.Context, document *domain.Document) error {
	const query = `
        INSERT INTO documents (dataroom_id, name, storage_key, mime_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		document.DataroomID,
		document.Name,
		document.StorageKey,
		document.MimeType,
		document.SizeBytes,
	).Scan(&document.ID, &document.CreatedAt, &document.UpdatedAt)
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	const query = `
        SELECT id, dataroom_id, name, storage_key, mime_type, size_bytes, created_at, updated_at
        FROM documents WHERE id=$1`
	var document domain.Document
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&document.ID,
		&document.DataroomID,
		&document.Name,
		&document.StorageKey,
		&document.MimeType,
		&document.SizeBytes,
		&document.CreatedAt,
		&document.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) ListByDataroom(ctx context.Context, dataroomID string) ([]domain.Document, error) {
	const query = `
        SELECT id, dataroom_id, name, storage_key, mime_type, size_bytes, created_at, updated_at
        FROM documents WHERE dataroom_id=$1 ORDER BY name`
	rows, err := r.pool.Query(ctx, query, dataroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Document
	for rows.Next() {
		var document domain.Document
		if err := rows.Scan(&document.ID, &document.DataroomID, &document.Name, &document.StorageKey, &document.MimeType, &document.SizeBytes, &document.CreatedAt, &document.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, document)
	}
	return result, rows.Err()
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
