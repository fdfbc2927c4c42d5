package repository

import (
	"context"
	"database/sql"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/rs/zerolog"
)

type TeacherRepository interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	GetByID(ctx context.Context, id string) (*models.Teacher, error)
	GetByEmail(ctx context.Context, email string) (*models.Teacher, error)
}

type teacherRepository struct {
	*PostgresRepository
}

func NewTeacherRepository(db *sql.DB, logger zerolog.Logger) TeacherRepository {
	return &teacherRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *teacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	query := `
		INSERT INTO teachers (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		teacher.ID,
		teacher.Name,
		teacher.Email,
		teacher.PasswordHash,
		teacher.CreatedAt,
		teacher.UpdatedAt,
	)

	return err
}

func (r *teacherRepository) GetByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM teachers
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *teacherRepository) GetByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM teachers
		WHERE LOWER(email) = LOWER($1)
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *teacherRepository) scanOne(row *sql.Row) (*models.Teacher, error) {
	teacher := &models.Teacher{}
	err := row.Scan(
		&teacher.ID,
		&teacher.Name,
		&teacher.Email,
		&teacher.PasswordHash,
		&teacher.CreatedAt,
		&teacher.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return teacher, nil
}
