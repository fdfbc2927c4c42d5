package models

import (
	"time"
)

const DateLayout = "2006-01-02"

type Classroom struct {
	ID          string    `json:"id" db:"id"`
	TeacherID   string    `json:"teacher_id" db:"teacher_id"`
	Name        string    `json:"name" db:"name"`
	TermStart   time.Time `json:"term_start" db:"term_start"`
	TermEnd     time.Time `json:"term_end" db:"term_end"`
	MeetingDays []int     `json:"meeting_days" db:"meeting_days"` // 0 = Sunday ... 6 = Saturday
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Holiday struct {
	ID          string    `json:"id" db:"id"`
	ClassroomID string    `json:"classroom_id" db:"classroom_id"`
	Date        time.Time `json:"date" db:"date"`
	Name        string    `json:"name" db:"name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
