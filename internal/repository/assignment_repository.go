package repository

import (
	"context"
	"database/sql"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/rs/zerolog"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByClassroom(ctx context.Context, classroomID string) ([]models.Assignment, error)
	// ListGradable returns the classroom's non-draft assignments.
	ListGradable(ctx context.Context, classroomID string) ([]models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error

	UpsertRubricScore(ctx context.Context, score *models.RubricScore) error
	GetRubricScore(ctx context.Context, assignmentID, studentID string) (*models.RubricScore, error)
	ListRubricScoresByAssignment(ctx context.Context, assignmentID string) ([]models.RubricScore, error)
	// ListRubricScoresByClassroom returns rubric rows of non-draft assignments.
	ListRubricScoresByClassroom(ctx context.Context, classroomID string) ([]models.RubricScore, error)
}

type assignmentRepository struct {
	*PostgresRepository
}

func NewAssignmentRepository(db *sql.DB, logger zerolog.Logger) AssignmentRepository {
	return &assignmentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const assignmentColumns = `id, classroom_id, title, description, points_possible, include_in_final, status, due_date, created_at, updated_at`

func (r *assignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	query := `
		INSERT INTO assignments (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.ClassroomID,
		a.Title,
		a.Description,
		nullFloat(a.PointsPossible),
		a.IncludeInFinal,
		a.Status,
		nullTime(a.DueDate),
		a.CreatedAt,
		a.UpdatedAt,
	)

	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (*models.Assignment, error) {
	a := &models.Assignment{}
	var points sql.NullFloat64
	var due sql.NullTime

	if err := row.Scan(
		&a.ID,
		&a.ClassroomID,
		&a.Title,
		&a.Description,
		&points,
		&a.IncludeInFinal,
		&a.Status,
		&due,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	// Convert nullable fields
	a.PointsPossible = floatPtr(points)
	a.DueDate = timePtr(due)
	return a, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`

	a, err := scanAssignment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *assignmentRepository) ListByClassroom(ctx context.Context, classroomID string) ([]models.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE classroom_id = $1
		ORDER BY created_at, id
	`
	return r.list(ctx, query, classroomID)
}

func (r *assignmentRepository) ListGradable(ctx context.Context, classroomID string) ([]models.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE classroom_id = $1 AND status <> 'draft'
		ORDER BY created_at, id
	`
	return r.list(ctx, query, classroomID)
}

func (r *assignmentRepository) list(ctx context.Context, query string, args ...any) ([]models.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []models.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}

	return assignments, rows.Err()
}

func (r *assignmentRepository) Update(ctx context.Context, a *models.Assignment) error {
	query := `
		UPDATE assignments
		SET title = $1, description = $2, points_possible = $3, include_in_final = $4,
			status = $5, due_date = $6, updated_at = $7
		WHERE id = $8
	`

	_, err := r.db.ExecContext(ctx, query,
		a.Title,
		a.Description,
		nullFloat(a.PointsPossible),
		a.IncludeInFinal,
		a.Status,
		nullTime(a.DueDate),
		a.UpdatedAt,
		a.ID,
	)

	return err
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	return err
}

func (r *assignmentRepository) UpsertRubricScore(ctx context.Context, s *models.RubricScore) error {
	query := `
		INSERT INTO rubric_scores (assignment_id, student_id, completion, thinking, workflow, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (assignment_id, student_id) DO UPDATE
		SET completion = EXCLUDED.completion,
			thinking = EXCLUDED.thinking,
			workflow = EXCLUDED.workflow,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		s.AssignmentID,
		s.StudentID,
		nullFloat(s.Completion),
		nullFloat(s.Thinking),
		nullFloat(s.Workflow),
		s.UpdatedAt,
	)

	return err
}

func scanRubric(row rowScanner) (*models.RubricScore, error) {
	s := &models.RubricScore{}
	var completion, thinking, workflow sql.NullFloat64

	if err := row.Scan(
		&s.AssignmentID,
		&s.StudentID,
		&completion,
		&thinking,
		&workflow,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.Completion = floatPtr(completion)
	s.Thinking = floatPtr(thinking)
	s.Workflow = floatPtr(workflow)
	return s, nil
}

func (r *assignmentRepository) GetRubricScore(ctx context.Context, assignmentID, studentID string) (*models.RubricScore, error) {
	query := `
		SELECT assignment_id, student_id, completion, thinking, workflow, updated_at
		FROM rubric_scores
		WHERE assignment_id = $1 AND student_id = $2
	`

	s, err := scanRubric(r.db.QueryRowContext(ctx, query, assignmentID, studentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *assignmentRepository) ListRubricScoresByAssignment(ctx context.Context, assignmentID string) ([]models.RubricScore, error) {
	query := `
		SELECT assignment_id, student_id, completion, thinking, workflow, updated_at
		FROM rubric_scores
		WHERE assignment_id = $1
	`
	return r.listRubrics(ctx, query, assignmentID)
}

func (r *assignmentRepository) ListRubricScoresByClassroom(ctx context.Context, classroomID string) ([]models.RubricScore, error) {
	query := `
		SELECT rs.assignment_id, rs.student_id, rs.completion, rs.thinking, rs.workflow, rs.updated_at
		FROM rubric_scores rs
		JOIN assignments a ON a.id = rs.assignment_id
		WHERE a.classroom_id = $1 AND a.status <> 'draft'
	`
	return r.listRubrics(ctx, query, classroomID)
}

func (r *assignmentRepository) listRubrics(ctx context.Context, query string, args ...any) ([]models.RubricScore, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := []models.RubricScore{}
	for rows.Next() {
		s, err := scanRubric(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *s)
	}

	return scores, rows.Err()
}
