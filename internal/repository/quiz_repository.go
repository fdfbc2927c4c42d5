package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

type QuizRepository interface {
	// Create stores the quiz and its initial questions in one transaction.
	Create(ctx context.Context, quiz *models.Quiz, questions []models.QuizQuestion) error
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	ListByClassroom(ctx context.Context, classroomID string) ([]models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id string) error

	CreateQuestion(ctx context.Context, question *models.QuizQuestion) error
	GetQuestion(ctx context.Context, id string) (*models.QuizQuestion, error)
	UpdateQuestion(ctx context.Context, question *models.QuizQuestion) error
	ListQuestions(ctx context.Context, quizID string) ([]models.QuizQuestion, error)
	ListQuestionsByClassroom(ctx context.Context, classroomID string) ([]models.QuizQuestion, error)

	UpsertResponses(ctx context.Context, responses []models.QuizResponse) error
	ListResponsesByStudent(ctx context.Context, quizID, studentID string) ([]models.QuizResponse, error)
	ListResponsesByClassroom(ctx context.Context, classroomID string) ([]models.QuizResponse, error)

	SetOverride(ctx context.Context, override *models.QuizOverride) error
	DeleteOverride(ctx context.Context, quizID, studentID string) (bool, error)
	ListOverridesByClassroom(ctx context.Context, classroomID string) ([]models.QuizOverride, error)
}

type quizRepository struct {
	*PostgresRepository
}

func NewQuizRepository(db *sql.DB, logger zerolog.Logger) QuizRepository {
	return &quizRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const (
	quizColumns     = `id, classroom_id, title, points_possible, include_in_final, created_at, updated_at`
	questionColumns = `id, quiz_id, position, prompt, options, correct_option, created_at, updated_at`
)

const insertQuestionQuery = `
	INSERT INTO quiz_questions (` + questionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func (r *quizRepository) Create(ctx context.Context, q *models.Quiz, questions []models.QuizQuestion) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO quizzes (`+quizColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			q.ID,
			q.ClassroomID,
			q.Title,
			nullFloat(q.PointsPossible),
			q.IncludeInFinal,
			q.CreatedAt,
			q.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert quiz: %w", err)
		}

		for i := range questions {
			if err := insertQuestion(ctx, tx, &questions[i]); err != nil {
				return fmt.Errorf("failed to insert question %d: %w", i, err)
			}
		}
		return nil
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertQuestion(ctx context.Context, db execer, q *models.QuizQuestion) error {
	_, err := db.ExecContext(ctx, insertQuestionQuery,
		q.ID,
		q.QuizID,
		q.Position,
		q.Prompt,
		pq.Array(q.Options),
		nullInt(q.CorrectOption),
		q.CreatedAt,
		q.UpdatedAt,
	)
	return err
}

func scanQuiz(row rowScanner) (*models.Quiz, error) {
	q := &models.Quiz{}
	var points sql.NullFloat64

	if err := row.Scan(
		&q.ID,
		&q.ClassroomID,
		&q.Title,
		&points,
		&q.IncludeInFinal,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		return nil, err
	}

	q.PointsPossible = floatPtr(points)
	return q, nil
}

func (r *quizRepository) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	q, err := scanQuiz(r.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return q, err
}

func (r *quizRepository) ListByClassroom(ctx context.Context, classroomID string) ([]models.Quiz, error) {
	query := `
		SELECT ` + quizColumns + `
		FROM quizzes
		WHERE classroom_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := []models.Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}

	return quizzes, rows.Err()
}

func (r *quizRepository) Update(ctx context.Context, q *models.Quiz) error {
	query := `
		UPDATE quizzes
		SET title = $1, points_possible = $2, include_in_final = $3, updated_at = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		q.Title,
		nullFloat(q.PointsPossible),
		q.IncludeInFinal,
		q.UpdatedAt,
		q.ID,
	)

	return err
}

func (r *quizRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}

func (r *quizRepository) CreateQuestion(ctx context.Context, q *models.QuizQuestion) error {
	return insertQuestion(ctx, r.db, q)
}

func scanQuestion(row rowScanner) (*models.QuizQuestion, error) {
	q := &models.QuizQuestion{}
	var correct sql.NullInt64

	if err := row.Scan(
		&q.ID,
		&q.QuizID,
		&q.Position,
		&q.Prompt,
		pq.Array(&q.Options),
		&correct,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		return nil, err
	}

	q.CorrectOption = intPtr(correct)
	return q, nil
}

func (r *quizRepository) GetQuestion(ctx context.Context, id string) (*models.QuizQuestion, error) {
	q, err := scanQuestion(r.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM quiz_questions WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return q, err
}

func (r *quizRepository) UpdateQuestion(ctx context.Context, q *models.QuizQuestion) error {
	query := `
		UPDATE quiz_questions
		SET position = $1, prompt = $2, options = $3, correct_option = $4, updated_at = $5
		WHERE id = $6
	`

	_, err := r.db.ExecContext(ctx, query,
		q.Position,
		q.Prompt,
		pq.Array(q.Options),
		nullInt(q.CorrectOption),
		q.UpdatedAt,
		q.ID,
	)

	return err
}

func (r *quizRepository) ListQuestions(ctx context.Context, quizID string) ([]models.QuizQuestion, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM quiz_questions
		WHERE quiz_id = $1
		ORDER BY position, created_at, id
	`
	return r.listQuestions(ctx, query, quizID)
}

func (r *quizRepository) ListQuestionsByClassroom(ctx context.Context, classroomID string) ([]models.QuizQuestion, error) {
	query := `
		SELECT qq.id, qq.quiz_id, qq.position, qq.prompt, qq.options, qq.correct_option, qq.created_at, qq.updated_at
		FROM quiz_questions qq
		JOIN quizzes q ON q.id = qq.quiz_id
		WHERE q.classroom_id = $1
		ORDER BY qq.quiz_id, qq.position, qq.id
	`
	return r.listQuestions(ctx, query, classroomID)
}

func (r *quizRepository) listQuestions(ctx context.Context, query string, args ...any) ([]models.QuizQuestion, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []models.QuizQuestion{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}

	return questions, rows.Err()
}

func (r *quizRepository) UpsertResponses(ctx context.Context, responses []models.QuizResponse) error {
	query := `
		INSERT INTO quiz_responses (quiz_id, question_id, student_id, selected_option, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (question_id, student_id) DO UPDATE
		SET selected_option = EXCLUDED.selected_option,
			submitted_at = EXCLUDED.submitted_at
	`

	return r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare response upsert: %w", err)
		}
		defer stmt.Close()

		for _, resp := range responses {
			if _, err := stmt.ExecContext(ctx,
				resp.QuizID,
				resp.QuestionID,
				resp.StudentID,
				resp.SelectedOption,
				resp.SubmittedAt,
			); err != nil {
				return fmt.Errorf("failed to upsert response for question %s: %w", resp.QuestionID, err)
			}
		}
		return nil
	})
}

func (r *quizRepository) ListResponsesByStudent(ctx context.Context, quizID, studentID string) ([]models.QuizResponse, error) {
	query := `
		SELECT quiz_id, question_id, student_id, selected_option, submitted_at
		FROM quiz_responses
		WHERE quiz_id = $1 AND student_id = $2
	`
	return r.listResponses(ctx, query, quizID, studentID)
}

func (r *quizRepository) ListResponsesByClassroom(ctx context.Context, classroomID string) ([]models.QuizResponse, error) {
	query := `
		SELECT qr.quiz_id, qr.question_id, qr.student_id, qr.selected_option, qr.submitted_at
		FROM quiz_responses qr
		JOIN quizzes q ON q.id = qr.quiz_id
		WHERE q.classroom_id = $1
	`
	return r.listResponses(ctx, query, classroomID)
}

func (r *quizRepository) listResponses(ctx context.Context, query string, args ...any) ([]models.QuizResponse, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []models.QuizResponse{}
	for rows.Next() {
		var resp models.QuizResponse
		if err := rows.Scan(
			&resp.QuizID,
			&resp.QuestionID,
			&resp.StudentID,
			&resp.SelectedOption,
			&resp.SubmittedAt,
		); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}

	return responses, rows.Err()
}

func (r *quizRepository) SetOverride(ctx context.Context, o *models.QuizOverride) error {
	query := `
		INSERT INTO quiz_overrides (quiz_id, student_id, score, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (quiz_id, student_id) DO UPDATE
		SET score = EXCLUDED.score,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, o.QuizID, o.StudentID, o.Score, o.UpdatedAt)
	return err
}

func (r *quizRepository) DeleteOverride(ctx context.Context, quizID, studentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM quiz_overrides WHERE quiz_id = $1 AND student_id = $2`,
		quizID, studentID,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *quizRepository) ListOverridesByClassroom(ctx context.Context, classroomID string) ([]models.QuizOverride, error) {
	query := `
		SELECT o.quiz_id, o.student_id, o.score, o.updated_at
		FROM quiz_overrides o
		JOIN quizzes q ON q.id = o.quiz_id
		WHERE q.classroom_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := []models.QuizOverride{}
	for rows.Next() {
		var o models.QuizOverride
		if err := rows.Scan(&o.QuizID, &o.StudentID, &o.Score, &o.UpdatedAt); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}

	return overrides, rows.Err()
}
