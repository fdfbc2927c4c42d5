package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/rs/zerolog"
)

type ExportRepository interface {
	Create(ctx context.Context, export *models.Export) error
	GetByID(ctx context.Context, id string) (*models.Export, error)
	UpdateStatus(ctx context.Context, id, status string) error
	MarkCompleted(ctx context.Context, id, objectKey, checksum string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type exportRepository struct {
	*PostgresRepository
}

func NewExportRepository(db *sql.DB, logger zerolog.Logger) ExportRepository {
	return &exportRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *exportRepository) Create(ctx context.Context, e *models.Export) error {
	query := `
		INSERT INTO exports (id, classroom_id, requested_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.ClassroomID,
		e.RequestedBy,
		e.Status,
		e.CreatedAt,
		e.UpdatedAt,
	)

	return err
}

func (r *exportRepository) GetByID(ctx context.Context, id string) (*models.Export, error) {
	query := `
		SELECT id, classroom_id, requested_by, status, object_key, checksum, error, created_at, updated_at, completed_at
		FROM exports
		WHERE id = $1
	`

	e := &models.Export{}
	var objectKey, checksum, reason sql.NullString
	var completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID,
		&e.ClassroomID,
		&e.RequestedBy,
		&e.Status,
		&objectKey,
		&checksum,
		&reason,
		&e.CreatedAt,
		&e.UpdatedAt,
		&completedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Convert nullable fields
	e.ObjectKey = stringPtr(objectKey)
	e.Checksum = stringPtr(checksum)
	e.Error = stringPtr(reason)
	e.CompletedAt = timePtr(completedAt)

	return e, nil
}

func (r *exportRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE exports SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	return err
}

func (r *exportRepository) MarkCompleted(ctx context.Context, id, objectKey, checksum string) error {
	now := time.Now().UTC()
	query := `
		UPDATE exports
		SET status = $1, object_key = $2, checksum = $3, error = NULL, updated_at = $4, completed_at = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		models.ExportStatusCompleted.String(),
		objectKey,
		checksum,
		now,
		id,
	)
	return err
}

func (r *exportRepository) MarkFailed(ctx context.Context, id, reason string) error {
	now := time.Now().UTC()
	query := `
		UPDATE exports
		SET status = $1, error = $2, updated_at = $3, completed_at = $3
		WHERE id = $4
	`

	_, err := r.db.ExecContext(ctx, query,
		models.ExportStatusFailed.String(),
		nullString(&reason),
		now,
		id,
	)
	return err
}
