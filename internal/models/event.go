package models

const (
	RoutingKeySettingsUpdated = "gradebook.settings.updated"
	RoutingKeyGradesChanged   = "gradebook.grades.changed"
	RoutingKeyExportRequested = "gradebook.export.requested"
)

const (
	ItemTypeAssignment = "assignment"
	ItemTypeQuiz       = "quiz"
)

type SettingsUpdatedEvent struct {
	ClassroomID       string `json:"classroom_id"`
	UseWeights        bool   `json:"use_weights"`
	AssignmentsWeight int    `json:"assignments_weight"`
	QuizzesWeight     int    `json:"quizzes_weight"`
	UpdatedAt         int64  `json:"updated_at"`
}

type GradesChangedEvent struct {
	ClassroomID string `json:"classroom_id"`
	StudentID   string `json:"student_id"`
	ItemType    string `json:"item_type"`
	ItemID      string `json:"item_id"`
	Timestamp   int64  `json:"timestamp"`
}

type ExportRequestedEvent struct {
	ExportID    string `json:"export_id"`
	ClassroomID string `json:"classroom_id"`
	Timestamp   int64  `json:"timestamp"`
}
