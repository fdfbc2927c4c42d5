package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/gradebook"
	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/repository"
	"github.com/RubachokBoss/classroom-gradebook/internal/service/integration"
	"github.com/rs/zerolog"
)

type SettingsService interface {
	GetSettings(ctx context.Context, teacherID, classroomID string) (*models.SettingsResponse, error)
	UpdateSettings(ctx context.Context, teacherID, classroomID string, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error)
}

type settingsService struct {
	access       classroomAccess
	settingsRepo repository.SettingsRepository
	publisher    integration.EventPublisher
	defaults     gradebook.Settings
	logger       zerolog.Logger
}

func NewSettingsService(
	classroomRepo repository.ClassroomRepository,
	settingsRepo repository.SettingsRepository,
	publisher integration.EventPublisher,
	defaults gradebook.Settings,
	logger zerolog.Logger,
) SettingsService {
	return &settingsService{
		access:       classroomAccess{classroomRepo: classroomRepo},
		settingsRepo: settingsRepo,
		publisher:    publisher,
		defaults:     defaults,
		logger:       logger,
	}
}

func (s *settingsService) GetSettings(ctx context.Context, teacherID, classroomID string) (*models.SettingsResponse, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	return resolveSettings(ctx, s.settingsRepo, s.defaults, classroomID)
}

func (s *settingsService) UpdateSettings(ctx context.Context, teacherID, classroomID string, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	current, err := resolveSettings(ctx, s.settingsRepo, s.defaults, classroomID)
	if err != nil {
		return nil, err
	}

	patch := gradebook.SettingsPatch{
		UseWeights:        req.UseWeights,
		AssignmentsWeight: req.AssignmentsWeight,
		QuizzesWeight:     req.QuizzesWeight,
	}

	// Валидация до любой записи
	next, err := toSettings(current).Apply(patch)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("classroom_id", classroomID).
			Msg("Settings update rejected")
		return nil, err
	}

	saved, err := s.settingsRepo.Upsert(ctx, &models.GradebookSettings{
		ClassroomID:       classroomID,
		UseWeights:        next.UseWeights,
		AssignmentsWeight: next.AssignmentsWeight,
		QuizzesWeight:     next.QuizzesWeight,
		UpdatedAt:         time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info().
		Str("classroom_id", classroomID).
		Bool("use_weights", saved.UseWeights).
		Int("assignments_weight", saved.AssignmentsWeight).
		Int("quizzes_weight", saved.QuizzesWeight).
		Msg("Gradebook settings updated")

	s.publishUpdated(ctx, saved)

	return settingsResponse(saved, false), nil
}

func (s *settingsService) publishUpdated(ctx context.Context, saved *models.GradebookSettings) {
	if s.publisher == nil {
		return
	}

	event := &models.SettingsUpdatedEvent{
		ClassroomID:       saved.ClassroomID,
		UseWeights:        saved.UseWeights,
		AssignmentsWeight: saved.AssignmentsWeight,
		QuizzesWeight:     saved.QuizzesWeight,
		UpdatedAt:         saved.UpdatedAt.Unix(),
	}
	if err := s.publisher.PublishSettingsUpdated(ctx, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("classroom_id", saved.ClassroomID).
			Msg("Failed to publish settings updated event")
	}
}

// resolveSettings reads the stored row and falls back to defaults without
// persisting them.
func resolveSettings(ctx context.Context, repo repository.SettingsRepository, defaults gradebook.Settings, classroomID string) (*models.SettingsResponse, error) {
	stored, err := repo.GetByClassroom(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if stored != nil {
		return settingsResponse(stored, false), nil
	}

	resolved, _ := gradebook.Resolve(nil, defaults)
	return &models.SettingsResponse{
		ClassroomID:       classroomID,
		UseWeights:        resolved.UseWeights,
		AssignmentsWeight: resolved.AssignmentsWeight,
		QuizzesWeight:     resolved.QuizzesWeight,
		IsDefault:         true,
	}, nil
}

func settingsResponse(s *models.GradebookSettings, isDefault bool) *models.SettingsResponse {
	updatedAt := s.UpdatedAt
	return &models.SettingsResponse{
		ClassroomID:       s.ClassroomID,
		UseWeights:        s.UseWeights,
		AssignmentsWeight: s.AssignmentsWeight,
		QuizzesWeight:     s.QuizzesWeight,
		IsDefault:         isDefault,
		UpdatedAt:         &updatedAt,
	}
}

func toSettings(r *models.SettingsResponse) gradebook.Settings {
	return gradebook.Settings{
		UseWeights:        r.UseWeights,
		AssignmentsWeight: r.AssignmentsWeight,
		QuizzesWeight:     r.QuizzesWeight,
	}
}
