package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/calendar"
	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/repository"
	"github.com/RubachokBoss/classroom-gradebook/internal/service/integration"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AssignmentService interface {
	CreateAssignment(ctx context.Context, teacherID, classroomID string, req *models.CreateAssignmentRequest) (*models.Assignment, error)
	ListAssignments(ctx context.Context, teacherID, classroomID string) ([]models.Assignment, error)
	GetAssignment(ctx context.Context, teacherID, assignmentID string) (*models.Assignment, error)
	UpdateAssignment(ctx context.Context, teacherID, assignmentID string, req *models.UpdateAssignmentRequest) (*models.Assignment, error)
	DeleteAssignment(ctx context.Context, teacherID, assignmentID string) error

	GradeStudent(ctx context.Context, teacherID, assignmentID, studentID string, req *models.GradeAssignmentRequest) (*models.RubricScore, error)
	ListScores(ctx context.Context, teacherID, assignmentID string) ([]models.RubricScore, error)
}

type assignmentService struct {
	access         classroomAccess
	assignmentRepo repository.AssignmentRepository
	publisher      integration.EventPublisher
	logger         zerolog.Logger
}

func NewAssignmentService(
	classroomRepo repository.ClassroomRepository,
	rosterRepo repository.RosterRepository,
	assignmentRepo repository.AssignmentRepository,
	publisher integration.EventPublisher,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		access:         classroomAccess{classroomRepo: classroomRepo, rosterRepo: rosterRepo},
		assignmentRepo: assignmentRepo,
		publisher:      publisher,
		logger:         logger,
	}
}

func (s *assignmentService) CreateAssignment(ctx context.Context, teacherID, classroomID string, req *models.CreateAssignmentRequest) (*models.Assignment, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	due, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.AssignmentStatusDraft.String()
	}
	include := true
	if req.IncludeInFinal != nil {
		include = *req.IncludeInFinal
	}

	now := time.Now().UTC()
	assignment := &models.Assignment{
		ID:             uuid.New().String(),
		ClassroomID:    classroomID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		PointsPossible: req.PointsPossible,
		IncludeInFinal: include,
		Status:         status,
		DueDate:        due,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info().
		Str("assignment_id", assignment.ID).
		Str("classroom_id", classroomID).
		Str("status", status).
		Msg("Assignment created")

	return assignment, nil
}

func (s *assignmentService) ListAssignments(ctx context.Context, teacherID, classroomID string) ([]models.Assignment, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

// load fetches an assignment and checks the caller owns its classroom.
func (s *assignmentService) load(ctx context.Context, teacherID, assignmentID string) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}

	if _, err := s.access.owned(ctx, teacherID, assignment.ClassroomID); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) GetAssignment(ctx context.Context, teacherID, assignmentID string) (*models.Assignment, error) {
	return s.load(ctx, teacherID, assignmentID)
}

func (s *assignmentService) UpdateAssignment(ctx context.Context, teacherID, assignmentID string, req *models.UpdateAssignmentRequest) (*models.Assignment, error) {
	assignment, err := s.load(ctx, teacherID, assignmentID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		assignment.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.PointsPossible != nil {
		assignment.PointsPossible = req.PointsPossible
	}
	if req.IncludeInFinal != nil {
		assignment.IncludeInFinal = *req.IncludeInFinal
	}
	if req.Status != nil {
		assignment.Status = *req.Status
	}
	if req.DueDate != nil {
		due, err := parseOptionalDate("due_date", req.DueDate)
		if err != nil {
			return nil, err
		}
		assignment.DueDate = due
	}
	assignment.UpdatedAt = time.Now().UTC()

	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	s.logger.Info().Str("assignment_id", assignmentID).Msg("Assignment updated")
	return assignment, nil
}

func (s *assignmentService) DeleteAssignment(ctx context.Context, teacherID, assignmentID string) error {
	if _, err := s.load(ctx, teacherID, assignmentID); err != nil {
		return err
	}

	if err := s.assignmentRepo.Delete(ctx, assignmentID); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	s.logger.Info().Str("assignment_id", assignmentID).Msg("Assignment deleted")
	return nil
}

func (s *assignmentService) GradeStudent(ctx context.Context, teacherID, assignmentID, studentID string, req *models.GradeAssignmentRequest) (*models.RubricScore, error) {
	assignment, err := s.load(ctx, teacherID, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := s.access.enrolled(ctx, teacherID, assignment.ClassroomID, studentID); err != nil {
		return nil, err
	}

	score := &models.RubricScore{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Completion:   req.Completion,
		Thinking:     req.Thinking,
		Workflow:     req.Workflow,
		UpdatedAt:    time.Now().UTC(),
	}

	if err := s.assignmentRepo.UpsertRubricScore(ctx, score); err != nil {
		return nil, fmt.Errorf("failed to store rubric score: %w", err)
	}

	s.logger.Info().
		Str("assignment_id", assignmentID).
		Str("student_id", studentID).
		Msg("Rubric score stored")

	publishGradesChanged(ctx, s.publisher, s.logger, assignment.ClassroomID, studentID, models.ItemTypeAssignment, assignmentID)
	return score, nil
}

func (s *assignmentService) ListScores(ctx context.Context, teacherID, assignmentID string) ([]models.RubricScore, error) {
	if _, err := s.load(ctx, teacherID, assignmentID); err != nil {
		return nil, err
	}

	scores, err := s.assignmentRepo.ListRubricScoresByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rubric scores: %w", err)
	}
	return scores, nil
}

func parseOptionalDate(field string, v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	d, err := calendar.Parse(*v)
	if err != nil {
		return nil, models.NewValidationError(field, field+" must be formatted as YYYY-MM-DD")
	}
	return &d, nil
}
