package models

import (
	"time"
)

type Export struct {
	ID          string     `json:"id" db:"id"`
	ClassroomID string     `json:"classroom_id" db:"classroom_id"`
	RequestedBy string     `json:"requested_by" db:"requested_by"`
	Status      string     `json:"status" db:"status"` // pending, processing, completed, failed
	ObjectKey   *string    `json:"object_key,omitempty" db:"object_key"`
	Checksum    *string    `json:"checksum,omitempty" db:"checksum"`
	Error       *string    `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

type ExportStatus string

const (
	ExportStatusPending    ExportStatus = "pending"
	ExportStatusProcessing ExportStatus = "processing"
	ExportStatusCompleted  ExportStatus = "completed"
	ExportStatusFailed     ExportStatus = "failed"
)

func (s ExportStatus) String() string {
	return string(s)
}
