package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/repository"
	"github.com/RubachokBoss/classroom-gradebook/internal/service/integration"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type QuizService interface {
	CreateQuiz(ctx context.Context, teacherID, classroomID string, req *models.CreateQuizRequest) (*models.QuizWithQuestions, error)
	ListQuizzes(ctx context.Context, teacherID, classroomID string) ([]models.Quiz, error)
	GetQuiz(ctx context.Context, teacherID, quizID string) (*models.QuizWithQuestions, error)
	UpdateQuiz(ctx context.Context, teacherID, quizID string, req *models.UpdateQuizRequest) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, teacherID, quizID string) error

	AddQuestion(ctx context.Context, teacherID, quizID string, req *models.CreateQuestionRequest) (*models.QuizQuestion, error)
	UpdateQuestion(ctx context.Context, teacherID, quizID, questionID string, req *models.UpdateQuestionRequest) (*models.QuizQuestion, error)

	SubmitResponses(ctx context.Context, teacherID, quizID, studentID string, req *models.SubmitResponsesRequest) ([]models.QuizResponse, error)
	SetOverride(ctx context.Context, teacherID, quizID, studentID string, req *models.SetOverrideRequest) (*models.QuizOverride, error)
	ClearOverride(ctx context.Context, teacherID, quizID, studentID string) error
}

type quizService struct {
	access    classroomAccess
	quizRepo  repository.QuizRepository
	publisher integration.EventPublisher
	logger    zerolog.Logger
}

func NewQuizService(
	classroomRepo repository.ClassroomRepository,
	rosterRepo repository.RosterRepository,
	quizRepo repository.QuizRepository,
	publisher integration.EventPublisher,
	logger zerolog.Logger,
) QuizService {
	return &quizService{
		access:    classroomAccess{classroomRepo: classroomRepo, rosterRepo: rosterRepo},
		quizRepo:  quizRepo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *quizService) CreateQuiz(ctx context.Context, teacherID, classroomID string, req *models.CreateQuizRequest) (*models.QuizWithQuestions, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	include := true
	if req.IncludeInFinal != nil {
		include = *req.IncludeInFinal
	}

	now := time.Now().UTC()
	quiz := models.Quiz{
		ID:             uuid.New().String(),
		ClassroomID:    classroomID,
		Title:          strings.TrimSpace(req.Title),
		PointsPossible: req.PointsPossible,
		IncludeInFinal: include,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	questions := make([]models.QuizQuestion, 0, len(req.Questions))
	verr := &models.ValidationError{}
	for i := range req.Questions {
		q, msg := newQuestion(quiz.ID, i, &req.Questions[i], now)
		if msg != "" {
			verr.Add(fmt.Sprintf("questions[%d].correct_option", i), msg)
			continue
		}
		questions = append(questions, q)
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if err := s.quizRepo.Create(ctx, &quiz, questions); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info().
		Str("quiz_id", quiz.ID).
		Str("classroom_id", classroomID).
		Int("questions", len(questions)).
		Msg("Quiz created")

	return &models.QuizWithQuestions{Quiz: quiz, Questions: questions}, nil
}

func newQuestion(quizID string, position int, req *models.CreateQuestionRequest, now time.Time) (models.QuizQuestion, string) {
	if req.CorrectOption != nil && *req.CorrectOption >= len(req.Options) {
		return models.QuizQuestion{}, fmt.Sprintf("correct_option must index one of the %d options", len(req.Options))
	}
	if req.Position != nil {
		position = *req.Position
	}

	return models.QuizQuestion{
		ID:            uuid.New().String(),
		QuizID:        quizID,
		Position:      position,
		Prompt:        strings.TrimSpace(req.Prompt),
		Options:       req.Options,
		CorrectOption: req.CorrectOption,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, ""
}

func (s *quizService) ListQuizzes(ctx context.Context, teacherID, classroomID string) ([]models.Quiz, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	quizzes, err := s.quizRepo.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *quizService) load(ctx context.Context, teacherID, quizID string) (*models.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}

	if _, err := s.access.owned(ctx, teacherID, quiz.ClassroomID); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *quizService) GetQuiz(ctx context.Context, teacherID, quizID string) (*models.QuizWithQuestions, error) {
	quiz, err := s.load(ctx, teacherID, quizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.quizRepo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	return &models.QuizWithQuestions{Quiz: *quiz, Questions: questions}, nil
}

func (s *quizService) UpdateQuiz(ctx context.Context, teacherID, quizID string, req *models.UpdateQuizRequest) (*models.Quiz, error) {
	quiz, err := s.load(ctx, teacherID, quizID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = strings.TrimSpace(*req.Title)
	}
	if req.PointsPossible != nil {
		quiz.PointsPossible = req.PointsPossible
	}
	if req.IncludeInFinal != nil {
		quiz.IncludeInFinal = *req.IncludeInFinal
	}
	quiz.UpdatedAt = time.Now().UTC()

	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	s.logger.Info().Str("quiz_id", quizID).Msg("Quiz updated")
	return quiz, nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, teacherID, quizID string) error {
	if _, err := s.load(ctx, teacherID, quizID); err != nil {
		return err
	}

	if err := s.quizRepo.Delete(ctx, quizID); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	s.logger.Info().Str("quiz_id", quizID).Msg("Quiz deleted")
	return nil
}

func (s *quizService) AddQuestion(ctx context.Context, teacherID, quizID string, req *models.CreateQuestionRequest) (*models.QuizQuestion, error) {
	if _, err := s.load(ctx, teacherID, quizID); err != nil {
		return nil, err
	}

	existing, err := s.quizRepo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	question, msg := newQuestion(quizID, len(existing), req, time.Now().UTC())
	if msg != "" {
		return nil, models.NewValidationError("correct_option", msg)
	}

	if err := s.quizRepo.CreateQuestion(ctx, &question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info().
		Str("quiz_id", quizID).
		Str("question_id", question.ID).
		Bool("scorable", question.Scorable()).
		Msg("Question added")

	return &question, nil
}

func (s *quizService) UpdateQuestion(ctx context.Context, teacherID, quizID, questionID string, req *models.UpdateQuestionRequest) (*models.QuizQuestion, error) {
	if _, err := s.load(ctx, teacherID, quizID); err != nil {
		return nil, err
	}

	question, err := s.quizRepo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil || question.QuizID != quizID {
		return nil, ErrQuestionNotFound
	}

	if req.Prompt != nil {
		question.Prompt = strings.TrimSpace(*req.Prompt)
	}
	if req.Options != nil {
		question.Options = req.Options
	}
	if req.Position != nil {
		question.Position = *req.Position
	}
	switch {
	case req.ClearCorrectOption:
		question.CorrectOption = nil
	case req.CorrectOption != nil:
		question.CorrectOption = req.CorrectOption
	}

	if question.CorrectOption != nil && *question.CorrectOption >= len(question.Options) {
		return nil, models.NewValidationError(
			"correct_option",
			fmt.Sprintf("correct_option must index one of the %d options", len(question.Options)),
		)
	}
	question.UpdatedAt = time.Now().UTC()

	if err := s.quizRepo.UpdateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info().
		Str("quiz_id", quizID).
		Str("question_id", questionID).
		Msg("Question updated")

	return question, nil
}

func (s *quizService) SubmitResponses(ctx context.Context, teacherID, quizID, studentID string, req *models.SubmitResponsesRequest) ([]models.QuizResponse, error) {
	quiz, err := s.load(ctx, teacherID, quizID)
	if err != nil {
		return nil, err
	}

	if err := s.access.enrolled(ctx, teacherID, quiz.ClassroomID, studentID); err != nil {
		return nil, err
	}

	questions, err := s.quizRepo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	byID := make(map[string]models.QuizQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	now := time.Now().UTC()
	verr := &models.ValidationError{}
	responses := make([]models.QuizResponse, 0, len(req.Responses))
	for i, item := range req.Responses {
		field := fmt.Sprintf("responses[%d]", i)

		q, ok := byID[item.QuestionID]
		if !ok {
			verr.Add(field+".question_id", fmt.Sprintf("question %s does not belong to this quiz", item.QuestionID))
			continue
		}
		if *item.SelectedOption >= len(q.Options) {
			verr.Add(field+".selected_option", fmt.Sprintf("selected_option must index one of the %d options", len(q.Options)))
			continue
		}

		responses = append(responses, models.QuizResponse{
			QuizID:         quizID,
			QuestionID:     item.QuestionID,
			StudentID:      studentID,
			SelectedOption: *item.SelectedOption,
			SubmittedAt:    now,
		})
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if err := s.quizRepo.UpsertResponses(ctx, responses); err != nil {
		return nil, fmt.Errorf("failed to store responses: %w", err)
	}

	s.logger.Info().
		Str("quiz_id", quizID).
		Str("student_id", studentID).
		Int("responses", len(responses)).
		Msg("Quiz responses stored")

	publishGradesChanged(ctx, s.publisher, s.logger, quiz.ClassroomID, studentID, models.ItemTypeQuiz, quizID)
	return responses, nil
}

func (s *quizService) SetOverride(ctx context.Context, teacherID, quizID, studentID string, req *models.SetOverrideRequest) (*models.QuizOverride, error) {
	quiz, err := s.load(ctx, teacherID, quizID)
	if err != nil {
		return nil, err
	}

	if err := s.access.enrolled(ctx, teacherID, quiz.ClassroomID, studentID); err != nil {
		return nil, err
	}

	override := &models.QuizOverride{
		QuizID:    quizID,
		StudentID: studentID,
		Score:     *req.Score,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.quizRepo.SetOverride(ctx, override); err != nil {
		return nil, fmt.Errorf("failed to store override: %w", err)
	}

	s.logger.Info().
		Str("quiz_id", quizID).
		Str("student_id", studentID).
		Float64("score", override.Score).
		Msg("Quiz override set")

	publishGradesChanged(ctx, s.publisher, s.logger, quiz.ClassroomID, studentID, models.ItemTypeQuiz, quizID)
	return override, nil
}

func (s *quizService) ClearOverride(ctx context.Context, teacherID, quizID, studentID string) error {
	quiz, err := s.load(ctx, teacherID, quizID)
	if err != nil {
		return err
	}

	removed, err := s.quizRepo.DeleteOverride(ctx, quizID, studentID)
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}
	if !removed {
		return ErrOverrideNotFound
	}

	s.logger.Info().
		Str("quiz_id", quizID).
		Str("student_id", studentID).
		Msg("Quiz override cleared")

	publishGradesChanged(ctx, s.publisher, s.logger, quiz.ClassroomID, studentID, models.ItemTypeQuiz, quizID)
	return nil
}
