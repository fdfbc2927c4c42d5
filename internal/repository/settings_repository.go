package repository

import (
	"context"
	"database/sql"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/rs/zerolog"
)

type SettingsRepository interface {
	// GetByClassroom returns nil, nil when the classroom has no stored settings.
	GetByClassroom(ctx context.Context, classroomID string) (*models.GradebookSettings, error)
	// Upsert writes the whole row; concurrent writers are last-writer-wins.
	Upsert(ctx context.Context, settings *models.GradebookSettings) (*models.GradebookSettings, error)
}

type settingsRepository struct {
	*PostgresRepository
}

func NewSettingsRepository(db *sql.DB, logger zerolog.Logger) SettingsRepository {
	return &settingsRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *settingsRepository) GetByClassroom(ctx context.Context, classroomID string) (*models.GradebookSettings, error) {
	query := `
		SELECT classroom_id, use_weights, assignments_weight, quizzes_weight, updated_at
		FROM gradebook_settings
		WHERE classroom_id = $1
	`

	s := &models.GradebookSettings{}
	err := r.db.QueryRowContext(ctx, query, classroomID).Scan(
		&s.ClassroomID,
		&s.UseWeights,
		&s.AssignmentsWeight,
		&s.QuizzesWeight,
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

func (r *settingsRepository) Upsert(ctx context.Context, s *models.GradebookSettings) (*models.GradebookSettings, error) {
	query := `
		INSERT INTO gradebook_settings (classroom_id, use_weights, assignments_weight, quizzes_weight, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (classroom_id) DO UPDATE
		SET use_weights = EXCLUDED.use_weights,
			assignments_weight = EXCLUDED.assignments_weight,
			quizzes_weight = EXCLUDED.quizzes_weight,
			updated_at = EXCLUDED.updated_at
		RETURNING classroom_id, use_weights, assignments_weight, quizzes_weight, updated_at
	`

	out := &models.GradebookSettings{}
	err := r.db.QueryRowContext(ctx, query,
		s.ClassroomID,
		s.UseWeights,
		s.AssignmentsWeight,
		s.QuizzesWeight,
		s.UpdatedAt,
	).Scan(
		&out.ClassroomID,
		&out.UseWeights,
		&out.AssignmentsWeight,
		&out.QuizzesWeight,
		&out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().
		Str("classroom_id", out.ClassroomID).
		Bool("use_weights", out.UseWeights).
		Int("assignments_weight", out.AssignmentsWeight).
		Int("quizzes_weight", out.QuizzesWeight).
		Msg("Gradebook settings stored")

	return out, nil
}
