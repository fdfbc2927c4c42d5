package models

import (
	"time"
)

type Quiz struct {
	ID             string    `json:"id" db:"id"`
	ClassroomID    string    `json:"classroom_id" db:"classroom_id"`
	Title          string    `json:"title" db:"title"`
	PointsPossible *float64  `json:"points_possible" db:"points_possible"`
	IncludeInFinal bool      `json:"include_in_final" db:"include_in_final"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type QuizWithQuestions struct {
	Quiz
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	ID            string    `json:"id" db:"id"`
	QuizID        string    `json:"quiz_id" db:"quiz_id"`
	Position      int       `json:"position" db:"position"`
	Prompt        string    `json:"prompt" db:"prompt"`
	Options       []string  `json:"options" db:"options"`
	CorrectOption *int      `json:"correct_option" db:"correct_option"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Scorable reports whether the question has a defined correct answer.
func (q QuizQuestion) Scorable() bool {
	return q.CorrectOption != nil
}

type QuizResponse struct {
	QuizID         string    `json:"quiz_id" db:"quiz_id"`
	QuestionID     string    `json:"question_id" db:"question_id"`
	StudentID      string    `json:"student_id" db:"student_id"`
	SelectedOption int       `json:"selected_option" db:"selected_option"`
	SubmittedAt    time.Time `json:"submitted_at" db:"submitted_at"`
}

type QuizOverride struct {
	QuizID    string    `json:"quiz_id" db:"quiz_id"`
	StudentID string    `json:"student_id" db:"student_id"`
	Score     float64   `json:"score" db:"score"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
