package models

import (
	"time"
)

type Assignment struct {
	ID             string     `json:"id" db:"id"`
	ClassroomID    string     `json:"classroom_id" db:"classroom_id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	PointsPossible *float64   `json:"points_possible" db:"points_possible"`
	IncludeInFinal bool       `json:"include_in_final" db:"include_in_final"`
	Status         string     `json:"status" db:"status"` // draft, published
	DueDate        *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type AssignmentStatus string

const (
	AssignmentStatusDraft     AssignmentStatus = "draft"
	AssignmentStatusPublished AssignmentStatus = "published"
)

func (s AssignmentStatus) String() string {
	return string(s)
}

func IsValidAssignmentStatus(status string) bool {
	switch status {
	case "draft", "published":
		return true
	default:
		return false
	}
}

type RubricScore struct {
	AssignmentID string    `json:"assignment_id" db:"assignment_id"`
	StudentID    string    `json:"student_id" db:"student_id"`
	Completion   *float64  `json:"completion" db:"completion"`
	Thinking     *float64  `json:"thinking" db:"thinking"`
	Workflow     *float64  `json:"workflow" db:"workflow"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
