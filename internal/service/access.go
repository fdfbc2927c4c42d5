package service

import (
	"context"
	"fmt"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/repository"
)

// classroomAccess resolves a classroom and checks that the caller owns it.
type classroomAccess struct {
	classroomRepo repository.ClassroomRepository
	rosterRepo    repository.RosterRepository
}

func (a classroomAccess) owned(ctx context.Context, teacherID, classroomID string) (*models.Classroom, error) {
	classroom, err := a.classroomRepo.GetByID(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}
	if classroom == nil {
		return nil, ErrClassroomNotFound
	}
	if classroom.TeacherID != teacherID {
		return nil, ErrForbidden
	}
	return classroom, nil
}

// enrolled checks ownership and that the student is on the roster.
func (a classroomAccess) enrolled(ctx context.Context, teacherID, classroomID, studentID string) error {
	if _, err := a.owned(ctx, teacherID, classroomID); err != nil {
		return err
	}

	ok, err := a.rosterRepo.IsEnrolled(ctx, classroomID, studentID)
	if err != nil {
		return fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !ok {
		return ErrNotEnrolled
	}
	return nil
}
