package models

import (
	"time"
)

type GradebookSettings struct {
	ClassroomID       string    `json:"classroom_id" db:"classroom_id"`
	UseWeights        bool      `json:"use_weights" db:"use_weights"`
	AssignmentsWeight int       `json:"assignments_weight" db:"assignments_weight"`
	QuizzesWeight     int       `json:"quizzes_weight" db:"quizzes_weight"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}
