package models

import (
	"time"
)

type Student struct {
	ID          string    `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Email       string    `json:"email" db:"email"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type EnrolledStudent struct {
	Student
	ClassroomID string    `json:"classroom_id" db:"classroom_id"`
	EnrolledAt  time.Time `json:"enrolled_at" db:"enrolled_at"`
}

// RosterEntry is one parsed row of an uploaded roster file.
type RosterEntry struct {
	Row         int
	DisplayName string
	Email       string
}
