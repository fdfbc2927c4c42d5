package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/calendar"
	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ClassroomService interface {
	CreateClassroom(ctx context.Context, teacherID string, req *models.CreateClassroomRequest) (*models.Classroom, error)
	GetClassroom(ctx context.Context, teacherID, classroomID string) (*models.Classroom, error)
	ListClassrooms(ctx context.Context, teacherID string) ([]models.Classroom, error)
	UpdateClassroom(ctx context.Context, teacherID, classroomID string, req *models.UpdateClassroomRequest) (*models.Classroom, error)
	DeleteClassroom(ctx context.Context, teacherID, classroomID string) error

	AddHoliday(ctx context.Context, teacherID, classroomID string, req *models.CreateHolidayRequest) (*models.Holiday, error)
	ListHolidays(ctx context.Context, teacherID, classroomID string) ([]models.Holiday, error)
	DeleteHoliday(ctx context.Context, teacherID, classroomID, holidayID string) error
	GetCalendar(ctx context.Context, teacherID, classroomID string) (*models.CalendarResponse, error)
}

type classroomService struct {
	access        classroomAccess
	classroomRepo repository.ClassroomRepository
	logger        zerolog.Logger
}

func NewClassroomService(
	classroomRepo repository.ClassroomRepository,
	rosterRepo repository.RosterRepository,
	logger zerolog.Logger,
) ClassroomService {
	return &classroomService{
		access:        classroomAccess{classroomRepo: classroomRepo, rosterRepo: rosterRepo},
		classroomRepo: classroomRepo,
		logger:        logger,
	}
}

func (s *classroomService) CreateClassroom(ctx context.Context, teacherID string, req *models.CreateClassroomRequest) (*models.Classroom, error) {
	start, end, err := parseTerm(req.TermStart, req.TermEnd)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	classroom := &models.Classroom{
		ID:          uuid.New().String(),
		TeacherID:   teacherID,
		Name:        strings.TrimSpace(req.Name),
		TermStart:   start,
		TermEnd:     end,
		MeetingDays: normalizeDays(req.MeetingDays),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.classroomRepo.Create(ctx, classroom); err != nil {
		return nil, fmt.Errorf("failed to create classroom: %w", err)
	}

	s.logger.Info().
		Str("classroom_id", classroom.ID).
		Str("teacher_id", teacherID).
		Msg("Classroom created")

	return classroom, nil
}

func (s *classroomService) GetClassroom(ctx context.Context, teacherID, classroomID string) (*models.Classroom, error) {
	return s.access.owned(ctx, teacherID, classroomID)
}

func (s *classroomService) ListClassrooms(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	classrooms, err := s.classroomRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classrooms: %w", err)
	}
	return classrooms, nil
}

func (s *classroomService) UpdateClassroom(ctx context.Context, teacherID, classroomID string, req *models.UpdateClassroomRequest) (*models.Classroom, error) {
	classroom, err := s.access.owned(ctx, teacherID, classroomID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		classroom.Name = strings.TrimSpace(*req.Name)
	}

	startStr := calendar.Format(classroom.TermStart)
	endStr := calendar.Format(classroom.TermEnd)
	if req.TermStart != nil {
		startStr = *req.TermStart
	}
	if req.TermEnd != nil {
		endStr = *req.TermEnd
	}
	start, end, err := parseTerm(startStr, endStr)
	if err != nil {
		return nil, err
	}
	classroom.TermStart, classroom.TermEnd = start, end

	if req.MeetingDays != nil {
		classroom.MeetingDays = normalizeDays(req.MeetingDays)
	}
	classroom.UpdatedAt = time.Now().UTC()

	if err := s.classroomRepo.Update(ctx, classroom); err != nil {
		return nil, fmt.Errorf("failed to update classroom: %w", err)
	}

	s.logger.Info().Str("classroom_id", classroomID).Msg("Classroom updated")
	return classroom, nil
}

func (s *classroomService) DeleteClassroom(ctx context.Context, teacherID, classroomID string) error {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return err
	}

	if err := s.classroomRepo.Delete(ctx, classroomID); err != nil {
		return fmt.Errorf("failed to delete classroom: %w", err)
	}

	s.logger.Info().Str("classroom_id", classroomID).Msg("Classroom deleted")
	return nil
}

func (s *classroomService) AddHoliday(ctx context.Context, teacherID, classroomID string, req *models.CreateHolidayRequest) (*models.Holiday, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	date, err := calendar.Parse(req.Date)
	if err != nil {
		return nil, models.NewValidationError("date", "date must be formatted as YYYY-MM-DD")
	}

	holiday := &models.Holiday{
		ID:          uuid.New().String(),
		ClassroomID: classroomID,
		Date:        date,
		Name:        strings.TrimSpace(req.Name),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.classroomRepo.CreateHoliday(ctx, holiday); err != nil {
		return nil, fmt.Errorf("failed to create holiday: %w", err)
	}

	return holiday, nil
}

func (s *classroomService) ListHolidays(ctx context.Context, teacherID, classroomID string) ([]models.Holiday, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	holidays, err := s.classroomRepo.ListHolidays(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return holidays, nil
}

func (s *classroomService) DeleteHoliday(ctx context.Context, teacherID, classroomID, holidayID string) error {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return err
	}

	deleted, err := s.classroomRepo.DeleteHoliday(ctx, classroomID, holidayID)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if !deleted {
		return ErrHolidayNotFound
	}
	return nil
}

func (s *classroomService) GetCalendar(ctx context.Context, teacherID, classroomID string) (*models.CalendarResponse, error) {
	classroom, err := s.access.owned(ctx, teacherID, classroomID)
	if err != nil {
		return nil, err
	}

	holidays, err := s.classroomRepo.ListHolidays(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	off := make([]time.Time, 0, len(holidays))
	for _, h := range holidays {
		off = append(off, h.Date)
	}

	days, err := calendar.ClassDays(classroom.TermStart, classroom.TermEnd, calendar.Weekdays(classroom.MeetingDays), off)
	if err != nil {
		return nil, models.NewValidationError("term", err.Error())
	}

	out := &models.CalendarResponse{
		ClassroomID: classroom.ID,
		TermStart:   calendar.Format(classroom.TermStart),
		TermEnd:     calendar.Format(classroom.TermEnd),
		MeetingDays: classroom.MeetingDays,
		ClassDays:   make([]string, 0, len(days)),
		Count:       len(days),
	}
	for _, d := range days {
		out.ClassDays = append(out.ClassDays, calendar.Format(d))
	}
	return out, nil
}

func parseTerm(startStr, endStr string) (time.Time, time.Time, error) {
	verr := &models.ValidationError{}

	start, err := calendar.Parse(startStr)
	if err != nil {
		verr.Add("term_start", "term_start must be formatted as YYYY-MM-DD")
	}
	end, err := calendar.Parse(endStr)
	if err != nil {
		verr.Add("term_end", "term_end must be formatted as YYYY-MM-DD")
	}
	if verr.HasErrors() {
		return time.Time{}, time.Time{}, verr
	}

	// Run the range through the calendar so the same limits apply everywhere.
	if _, err := calendar.ClassDays(start, end, nil, nil); err != nil {
		if errors.Is(err, calendar.ErrInvalidRange) {
			return time.Time{}, time.Time{}, models.NewValidationError("term_end", "term_end must not be before term_start")
		}
		return time.Time{}, time.Time{}, models.NewValidationError("term_end", err.Error())
	}

	return start, end, nil
}

func normalizeDays(days []int) []int {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}
