package models

import "time"

// Data Transfer Objects

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type CreateClassroomRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	TermStart   string `json:"term_start" validate:"required,datetime=2006-01-02"`
	TermEnd     string `json:"term_end" validate:"required,datetime=2006-01-02"`
	MeetingDays []int  `json:"meeting_days" validate:"omitempty,max=7,unique,dive,min=0,max=6"`
}

// UpdateClassroomRequest is partial: nil fields are left unchanged. An empty
// meeting_days array resets the schedule to Monday-Friday.
type UpdateClassroomRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	TermStart   *string `json:"term_start" validate:"omitempty,datetime=2006-01-02"`
	TermEnd     *string `json:"term_end" validate:"omitempty,datetime=2006-01-02"`
	MeetingDays []int   `json:"meeting_days" validate:"omitempty,max=7,unique,dive,min=0,max=6"`
}

type CreateHolidayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"max=255"`
}

type CalendarResponse struct {
	ClassroomID string   `json:"classroom_id"`
	TermStart   string   `json:"term_start"`
	TermEnd     string   `json:"term_end"`
	MeetingDays []int    `json:"meeting_days"`
	ClassDays   []string `json:"class_days"`
	Count       int      `json:"count"`
}

type EnrollStudentRequest struct {
	DisplayName string `json:"display_name" validate:"max=255"`
	Email       string `json:"email" validate:"required,email,max=255"`
}

type RosterRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type RosterUploadResponse struct {
	Enrolled  int              `json:"enrolled"`
	Skipped   int              `json:"skipped"`
	Errors    []RosterRowError `json:"errors"`
	ObjectKey string           `json:"object_key,omitempty"`
}

type CreateAssignmentRequest struct {
	Title          string   `json:"title" validate:"required,min=1,max=255"`
	Description    string   `json:"description" validate:"max=2000"`
	PointsPossible *float64 `json:"points_possible" validate:"omitempty,gt=0"`
	IncludeInFinal *bool    `json:"include_in_final"`
	Status         string   `json:"status" validate:"omitempty,oneof=draft published"`
	DueDate        *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateAssignmentRequest struct {
	Title          *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description    *string  `json:"description" validate:"omitempty,max=2000"`
	PointsPossible *float64 `json:"points_possible" validate:"omitempty,gt=0"`
	IncludeInFinal *bool    `json:"include_in_final"`
	Status         *string  `json:"status" validate:"omitempty,oneof=draft published"`
	DueDate        *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// GradeAssignmentRequest replaces the stored rubric row; a null sub-score
// leaves the assignment ungraded for the student.
type GradeAssignmentRequest struct {
	Completion *float64 `json:"completion" validate:"omitempty,min=0,max=10"`
	Thinking   *float64 `json:"thinking" validate:"omitempty,min=0,max=10"`
	Workflow   *float64 `json:"workflow" validate:"omitempty,min=0,max=10"`
}

type CreateQuestionRequest struct {
	Prompt        string   `json:"prompt" validate:"required,min=1,max=2000"`
	Options       []string `json:"options" validate:"required,min=2,max=26,dive,required,max=500"`
	CorrectOption *int     `json:"correct_option" validate:"omitempty,min=0"`
	Position      *int     `json:"position" validate:"omitempty,min=0"`
}

type UpdateQuestionRequest struct {
	Prompt             *string  `json:"prompt" validate:"omitempty,min=1,max=2000"`
	Options            []string `json:"options" validate:"omitempty,min=2,max=26,dive,required,max=500"`
	CorrectOption      *int     `json:"correct_option" validate:"omitempty,min=0"`
	ClearCorrectOption bool     `json:"clear_correct_option"`
	Position           *int     `json:"position" validate:"omitempty,min=0"`
}

type CreateQuizRequest struct {
	Title          string                  `json:"title" validate:"required,min=1,max=255"`
	PointsPossible *float64                `json:"points_possible" validate:"omitempty,gt=0"`
	IncludeInFinal *bool                   `json:"include_in_final"`
	Questions      []CreateQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type UpdateQuizRequest struct {
	Title          *string  `json:"title" validate:"omitempty,min=1,max=255"`
	PointsPossible *float64 `json:"points_possible" validate:"omitempty,gt=0"`
	IncludeInFinal *bool    `json:"include_in_final"`
}

type ResponseItem struct {
	QuestionID     string `json:"question_id" validate:"required,uuid"`
	SelectedOption *int   `json:"selected_option" validate:"required,min=0"`
}

type SubmitResponsesRequest struct {
	Responses []ResponseItem `json:"responses" validate:"required,min=1,dive"`
}

type SetOverrideRequest struct {
	Score *float64 `json:"score" validate:"required,min=0"`
}

// UpdateSettingsRequest carries weights as numbers so that fractional values
// reach the integer check instead of failing JSON decoding.
type UpdateSettingsRequest struct {
	UseWeights        *bool    `json:"use_weights"`
	AssignmentsWeight *float64 `json:"assignments_weight"`
	QuizzesWeight     *float64 `json:"quizzes_weight"`
}

type SettingsResponse struct {
	ClassroomID       string     `json:"classroom_id"`
	UseWeights        bool       `json:"use_weights"`
	AssignmentsWeight int        `json:"assignments_weight"`
	QuizzesWeight     int        `json:"quizzes_weight"`
	IsDefault         bool       `json:"is_default"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

type GradebookCounts struct {
	Students    int `json:"students"`
	Assignments int `json:"assignments"`
	Quizzes     int `json:"quizzes"`
}

type StudentGrade struct {
	StudentID          string   `json:"student_id"`
	DisplayName        string   `json:"display_name"`
	Email              string   `json:"email"`
	AssignmentsPercent *float64 `json:"assignments_percent"`
	QuizzesPercent     *float64 `json:"quizzes_percent"`
	FinalPercent       *float64 `json:"final_percent"`
	AssignmentsStatus  string   `json:"assignments_status"`
	QuizzesStatus      string   `json:"quizzes_status"`
	AssignmentsCount   int      `json:"assignments_count"`
	QuizzesCount       int      `json:"quizzes_count"`
}

type GradebookResponse struct {
	ClassroomID string           `json:"classroom_id"`
	Settings    SettingsResponse `json:"settings"`
	Counts      GradebookCounts  `json:"counts"`
	Students    []StudentGrade   `json:"students"`
}

type ExportResponse struct {
	ID          string     `json:"id"`
	ClassroomID string     `json:"classroom_id"`
	Status      string     `json:"status"`
	DownloadURL *string    `json:"download_url,omitempty"`
	Checksum    *string    `json:"checksum,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
