package service

import "errors"

var (
	ErrClassroomNotFound  = errors.New("classroom not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrHolidayNotFound    = errors.New("holiday not found")
	ErrOverrideNotFound   = errors.New("override not found")
	ErrExportNotFound     = errors.New("export not found")
	ErrNotEnrolled        = errors.New("student is not enrolled in this classroom")
	ErrForbidden          = errors.New("classroom belongs to another teacher")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
