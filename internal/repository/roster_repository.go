package repository

import (
	"context"
	"database/sql"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/rs/zerolog"
)

type RosterRepository interface {
	// UpsertStudent creates the student or, when the email is already known,
	// returns the existing row. A non-empty display name replaces the stored one.
	UpsertStudent(ctx context.Context, student *models.Student) (*models.Student, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	Enroll(ctx context.Context, classroomID, studentID string) (bool, error)
	Unenroll(ctx context.Context, classroomID, studentID string) (bool, error)
	IsEnrolled(ctx context.Context, classroomID, studentID string) (bool, error)
	ListByClassroom(ctx context.Context, classroomID string) ([]models.EnrolledStudent, error)
}

type rosterRepository struct {
	*PostgresRepository
}

func NewRosterRepository(db *sql.DB, logger zerolog.Logger) RosterRepository {
	return &rosterRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *rosterRepository) UpsertStudent(ctx context.Context, s *models.Student) (*models.Student, error) {
	query := `
		INSERT INTO students (id, display_name, email, created_at, updated_at)
		VALUES ($1, $2, LOWER($3), $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET display_name = CASE
				WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name
				ELSE students.display_name
			END,
			updated_at = EXCLUDED.updated_at
		RETURNING id, display_name, email, created_at, updated_at
	`

	out := &models.Student{}
	err := r.db.QueryRowContext(ctx, query,
		s.ID,
		s.DisplayName,
		s.Email,
		s.CreatedAt,
		s.UpdatedAt,
	).Scan(
		&out.ID,
		&out.DisplayName,
		&out.Email,
		&out.CreatedAt,
		&out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *rosterRepository) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	query := `
		SELECT id, display_name, email, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	s := &models.Student{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.DisplayName,
		&s.Email,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (r *rosterRepository) Enroll(ctx context.Context, classroomID, studentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollments (classroom_id, student_id, enrolled_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (classroom_id, student_id) DO NOTHING
	`, classroomID, studentID)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *rosterRepository) Unenroll(ctx context.Context, classroomID, studentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE classroom_id = $1 AND student_id = $2`,
		classroomID, studentID,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *rosterRepository) IsEnrolled(ctx context.Context, classroomID, studentID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM enrollments WHERE classroom_id = $1 AND student_id = $2)`,
		classroomID, studentID,
	).Scan(&exists)
	return exists, err
}

func (r *rosterRepository) ListByClassroom(ctx context.Context, classroomID string) ([]models.EnrolledStudent, error) {
	query := `
		SELECT s.id, s.display_name, s.email, s.created_at, s.updated_at, e.classroom_id, e.enrolled_at
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		WHERE e.classroom_id = $1
		ORDER BY LOWER(COALESCE(NULLIF(TRIM(s.display_name), ''), s.email)), LOWER(s.email), s.id
	`

	rows, err := r.db.QueryContext(ctx, query, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []models.EnrolledStudent{}
	for rows.Next() {
		var s models.EnrolledStudent
		if err := rows.Scan(
			&s.ID,
			&s.DisplayName,
			&s.Email,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.ClassroomID,
			&s.EnrolledAt,
		); err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}
