package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/repository"
	"github.com/RubachokBoss/classroom-gradebook/pkg/hash"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type RosterService interface {
	EnrollStudent(ctx context.Context, teacherID, classroomID string, req *models.EnrollStudentRequest) (*models.Student, bool, error)
	ListRoster(ctx context.Context, teacherID, classroomID string) ([]models.EnrolledStudent, error)
	UnenrollStudent(ctx context.Context, teacherID, classroomID, studentID string) error
	UploadRoster(ctx context.Context, teacherID, classroomID, fileName string, data []byte) (*models.RosterUploadResponse, error)
}

type rosterService struct {
	access     classroomAccess
	rosterRepo repository.RosterRepository
	storage    repository.ObjectStorage
	hasher     hash.Hasher
	validate   *validator.Validate
	logger     zerolog.Logger
}

func NewRosterService(
	classroomRepo repository.ClassroomRepository,
	rosterRepo repository.RosterRepository,
	storage repository.ObjectStorage,
	hasher hash.Hasher,
	logger zerolog.Logger,
) RosterService {
	return &rosterService{
		access:     classroomAccess{classroomRepo: classroomRepo, rosterRepo: rosterRepo},
		rosterRepo: rosterRepo,
		storage:    storage,
		hasher:     hasher,
		validate:   validator.New(),
		logger:     logger,
	}
}

func (s *rosterService) EnrollStudent(ctx context.Context, teacherID, classroomID string, req *models.EnrollStudentRequest) (*models.Student, bool, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, false, err
	}
	return s.enroll(ctx, classroomID, req.DisplayName, req.Email)
}

func (s *rosterService) enroll(ctx context.Context, classroomID, displayName, email string) (*models.Student, bool, error) {
	now := time.Now().UTC()
	student, err := s.rosterRepo.UpsertStudent(ctx, &models.Student{
		ID:          uuid.New().String(),
		DisplayName: strings.TrimSpace(displayName),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert student: %w", err)
	}

	created, err := s.rosterRepo.Enroll(ctx, classroomID, student.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to enroll student: %w", err)
	}

	if created {
		s.logger.Info().
			Str("classroom_id", classroomID).
			Str("student_id", student.ID).
			Msg("Student enrolled")
	}

	return student, created, nil
}

func (s *rosterService) ListRoster(ctx context.Context, teacherID, classroomID string) ([]models.EnrolledStudent, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	students, err := s.rosterRepo.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	return students, nil
}

func (s *rosterService) UnenrollStudent(ctx context.Context, teacherID, classroomID, studentID string) error {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return err
	}

	removed, err := s.rosterRepo.Unenroll(ctx, classroomID, studentID)
	if err != nil {
		return fmt.Errorf("failed to unenroll student: %w", err)
	}
	if !removed {
		return ErrNotEnrolled
	}

	s.logger.Info().
		Str("classroom_id", classroomID).
		Str("student_id", studentID).
		Msg("Student unenrolled")
	return nil
}

func (s *rosterService) UploadRoster(ctx context.Context, teacherID, classroomID, fileName string, data []byte) (*models.RosterUploadResponse, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	entries, err := ParseRoster(fileName, data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedRosterFormat) {
			return nil, models.NewValidationError("file", err.Error())
		}
		return nil, err
	}

	result := &models.RosterUploadResponse{Errors: []models.RosterRowError{}}
	seen := make(map[string]int, len(entries))

	for _, entry := range entries {
		if err := s.validate.Var(entry.Email, "required,email,max=255"); err != nil {
			result.Errors = append(result.Errors, models.RosterRowError{
				Row:     entry.Row,
				Message: fmt.Sprintf("invalid email %q", entry.Email),
			})
			continue
		}
		if first, dup := seen[entry.Email]; dup {
			result.Errors = append(result.Errors, models.RosterRowError{
				Row:     entry.Row,
				Message: fmt.Sprintf("duplicate of row %d", first),
			})
			continue
		}
		seen[entry.Email] = entry.Row

		_, created, err := s.enroll(ctx, classroomID, entry.DisplayName, entry.Email)
		if err != nil {
			return nil, err
		}
		if created {
			result.Enrolled++
		} else {
			result.Skipped++
		}
	}

	result.ObjectKey = s.archive(ctx, classroomID, fileName, data)

	s.logger.Info().
		Str("classroom_id", classroomID).
		Int("enrolled", result.Enrolled).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("Roster uploaded")

	return result, nil
}

// archive keeps the original upload; failures are logged only.
func (s *rosterService) archive(ctx context.Context, classroomID, fileName string, data []byte) string {
	if s.storage == nil {
		return ""
	}

	key := repository.RosterObjectKey(classroomID, fileName, time.Now().UTC())
	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), rosterContentType(fileName)); err != nil {
		s.logger.Warn().Err(err).
			Str("classroom_id", classroomID).
			Str("key", key).
			Msg("Failed to archive roster upload")
		return ""
	}

	if s.hasher != nil {
		if sum, err := s.hasher.Calculate(data); err == nil {
			s.logger.Debug().Str("key", key).Str("checksum", sum).Msg("Roster archived")
		}
	}
	return key
}

func rosterContentType(fileName string) string {
	if strings.HasSuffix(strings.ToLower(fileName), ".xlsx") {
		return xlsxContentType
	}
	return "text/csv"
}
