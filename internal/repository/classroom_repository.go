package repository

import (
	"context"
	"database/sql"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

type ClassroomRepository interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	GetByID(ctx context.Context, id string) (*models.Classroom, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error)
	Update(ctx context.Context, classroom *models.Classroom) error
	Delete(ctx context.Context, id string) error

	CreateHoliday(ctx context.Context, holiday *models.Holiday) error
	ListHolidays(ctx context.Context, classroomID string) ([]models.Holiday, error)
	DeleteHoliday(ctx context.Context, classroomID, holidayID string) (bool, error)
}

type classroomRepository struct {
	*PostgresRepository
}

func NewClassroomRepository(db *sql.DB, logger zerolog.Logger) ClassroomRepository {
	return &classroomRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *classroomRepository) Create(ctx context.Context, c *models.Classroom) error {
	query := `
		INSERT INTO classrooms (id, teacher_id, name, term_start, term_end, meeting_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.TeacherID,
		c.Name,
		c.TermStart,
		c.TermEnd,
		intArray(c.MeetingDays),
		c.CreatedAt,
		c.UpdatedAt,
	)

	return err
}

func (r *classroomRepository) GetByID(ctx context.Context, id string) (*models.Classroom, error) {
	query := `
		SELECT id, teacher_id, name, term_start, term_end, meeting_days, created_at, updated_at
		FROM classrooms
		WHERE id = $1
	`

	c := &models.Classroom{}
	var days pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.TeacherID,
		&c.Name,
		&c.TermStart,
		&c.TermEnd,
		&days,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.MeetingDays = fromIntArray(days)
	return c, nil
}

func (r *classroomRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	query := `
		SELECT id, teacher_id, name, term_start, term_end, meeting_days, created_at, updated_at
		FROM classrooms
		WHERE teacher_id = $1
		ORDER BY term_start DESC, name
	`

	rows, err := r.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classrooms := []models.Classroom{}
	for rows.Next() {
		var c models.Classroom
		var days pq.Int64Array
		if err := rows.Scan(
			&c.ID,
			&c.TeacherID,
			&c.Name,
			&c.TermStart,
			&c.TermEnd,
			&days,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c.MeetingDays = fromIntArray(days)
		classrooms = append(classrooms, c)
	}

	return classrooms, rows.Err()
}

func (r *classroomRepository) Update(ctx context.Context, c *models.Classroom) error {
	query := `
		UPDATE classrooms
		SET name = $1, term_start = $2, term_end = $3, meeting_days = $4, updated_at = $5
		WHERE id = $6
	`

	_, err := r.db.ExecContext(ctx, query,
		c.Name,
		c.TermStart,
		c.TermEnd,
		intArray(c.MeetingDays),
		c.UpdatedAt,
		c.ID,
	)

	return err
}

func (r *classroomRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM classrooms WHERE id = $1`, id)
	return err
}

func (r *classroomRepository) CreateHoliday(ctx context.Context, h *models.Holiday) error {
	query := `
		INSERT INTO holidays (id, classroom_id, date, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (classroom_id, date) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, created_at
	`

	return r.db.QueryRowContext(ctx, query,
		h.ID,
		h.ClassroomID,
		h.Date,
		h.Name,
		h.CreatedAt,
	).Scan(&h.ID, &h.CreatedAt)
}

func (r *classroomRepository) ListHolidays(ctx context.Context, classroomID string) ([]models.Holiday, error) {
	query := `
		SELECT id, classroom_id, date, name, created_at
		FROM holidays
		WHERE classroom_id = $1
		ORDER BY date
	`

	rows, err := r.db.QueryContext(ctx, query, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := []models.Holiday{}
	for rows.Next() {
		var h models.Holiday
		if err := rows.Scan(&h.ID, &h.ClassroomID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}

func (r *classroomRepository) DeleteHoliday(ctx context.Context, classroomID, holidayID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM holidays WHERE id = $1 AND classroom_id = $2`,
		holidayID, classroomID,
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
