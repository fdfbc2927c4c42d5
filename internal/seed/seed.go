package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RubachokBoss/classroom-gradebook/internal/app"
	"github.com/RubachokBoss/classroom-gradebook/internal/config"
	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/repository"
	"github.com/RubachokBoss/classroom-gradebook/internal/service"
	"github.com/RubachokBoss/classroom-gradebook/internal/service/integration"
	"github.com/rs/zerolog"
)

const (
	DemoTeacherEmail    = "teacher@example.com"
	DemoTeacherPassword = "password"
)

type Services struct {
	Teachers    repository.TeacherRepository
	Auth        service.AuthService
	Classrooms  service.ClassroomService
	Roster      service.RosterService
	Assignments service.AssignmentService
	Quizzes     service.QuizService
	Settings    service.SettingsService
}

// NewServices wires the services the seeder needs against db. Events are not
// published while seeding.
func NewServices(db *sql.DB, cfg *config.Config, log zerolog.Logger) Services {
	publisher := integration.NewNoopPublisher(log)

	teacherRepo := repository.NewTeacherRepository(db, log)
	classroomRepo := repository.NewClassroomRepository(db, log)
	rosterRepo := repository.NewRosterRepository(db, log)
	assignmentRepo := repository.NewAssignmentRepository(db, log)
	quizRepo := repository.NewQuizRepository(db, log)
	settingsRepo := repository.NewSettingsRepository(db, log)

	return Services{
		Teachers:    teacherRepo,
		Auth:        service.NewAuthService(teacherRepo, cfg.Auth, log),
		Classrooms:  service.NewClassroomService(classroomRepo, rosterRepo, log),
		Roster:      service.NewRosterService(classroomRepo, rosterRepo, nil, nil, log),
		Assignments: service.NewAssignmentService(classroomRepo, rosterRepo, assignmentRepo, publisher, log),
		Quizzes:     service.NewQuizService(classroomRepo, rosterRepo, quizRepo, publisher, log),
		Settings:    service.NewSettingsService(classroomRepo, settingsRepo, publisher, app.DefaultSettings(cfg.Gradebook), log),
	}
}

type Seeder struct {
	svc    Services
	logger zerolog.Logger
}

func New(svc Services, logger zerolog.Logger) *Seeder {
	return &Seeder{svc: svc, logger: logger}
}

// Run creates the demo teacher and their classroom. It does nothing when the
// demo teacher already exists.
func (s *Seeder) Run(ctx context.Context) error {
	existing, err := s.svc.Teachers.GetByEmail(ctx, DemoTeacherEmail)
	if err != nil {
		return fmt.Errorf("failed to look up demo teacher: %w", err)
	}
	if existing != nil {
		s.logger.Info().Str("teacher_id", existing.ID).Msg("Demo data already present, skipping seed")
		return nil
	}

	teacher, err := s.svc.Auth.CreateTeacher(ctx, "Demo Teacher", DemoTeacherEmail, DemoTeacherPassword)
	if err != nil {
		return fmt.Errorf("failed to create demo teacher: %w", err)
	}
	tid := teacher.ID

	classroom, err := s.svc.Classrooms.CreateClassroom(ctx, tid, &models.CreateClassroomRequest{
		Name:        "Algebra I",
		TermStart:   "2026-09-01",
		TermEnd:     "2026-12-18",
		MeetingDays: []int{1, 3, 5},
	})
	if err != nil {
		return fmt.Errorf("failed to create classroom: %w", err)
	}
	cid := classroom.ID

	if _, err := s.svc.Classrooms.AddHoliday(ctx, tid, cid, &models.CreateHolidayRequest{Date: "2026-11-26", Name: "Thanksgiving"}); err != nil {
		return fmt.Errorf("failed to add holiday: %w", err)
	}

	// Ученики
	students := make(map[string]string, 3)
	for _, st := range []models.EnrollStudentRequest{
		{DisplayName: "Ann Archer", Email: "ann@example.com"},
		{DisplayName: "Bob Baker", Email: "bob@example.com"},
		{DisplayName: "Cara Cole", Email: "cara@example.com"},
	} {
		student, _, err := s.svc.Roster.EnrollStudent(ctx, tid, cid, &st)
		if err != nil {
			return fmt.Errorf("failed to enroll %s: %w", st.Email, err)
		}
		students[st.Email] = student.ID
	}
	ann, cara := students["ann@example.com"], students["cara@example.com"]

	// Задания с рубрикой
	published := models.AssignmentStatusPublished.String()
	essay, err := s.svc.Assignments.CreateAssignment(ctx, tid, cid, &models.CreateAssignmentRequest{
		Title:          "Linear equations worksheet",
		PointsPossible: ptr(30.0),
		Status:         published,
	})
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	project, err := s.svc.Assignments.CreateAssignment(ctx, tid, cid, &models.CreateAssignmentRequest{
		Title:          "Graphing project",
		PointsPossible: ptr(20.0),
		Status:         published,
	})
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	grades := []struct {
		assignmentID, studentID string
		c, t, w                 float64
	}{
		{essay.ID, ann, 10, 10, 10},
		{project.ID, ann, 5, 7, 8},
		{essay.ID, cara, 8, 9, 7},
	}
	for _, g := range grades {
		req := &models.GradeAssignmentRequest{Completion: ptr(g.c), Thinking: ptr(g.t), Workflow: ptr(g.w)}
		if _, err := s.svc.Assignments.GradeStudent(ctx, tid, g.assignmentID, g.studentID, req); err != nil {
			return fmt.Errorf("failed to grade assignment: %w", err)
		}
	}

	// Тест: четыре вопроса с ответом и один без
	options := []string{"1", "2", "3", "4"}
	quiz, err := s.svc.Quizzes.CreateQuiz(ctx, tid, cid, &models.CreateQuizRequest{
		Title:          "Unit 1 check-in",
		PointsPossible: ptr(100.0),
		Questions: []models.CreateQuestionRequest{
			{Prompt: "Solve x + 1 = 2", Options: options, CorrectOption: ptr(0)},
			{Prompt: "Solve 2x = 4", Options: options, CorrectOption: ptr(1)},
			{Prompt: "Solve x - 1 = 2", Options: options, CorrectOption: ptr(2)},
			{Prompt: "Solve x / 2 = 2", Options: options, CorrectOption: ptr(3)},
			{Prompt: "Pick your favourite number", Options: options},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	// Ann answers three of the four scorable questions correctly.
	picks := []int{0, 1, 2, 1, 3}
	responses := make([]models.ResponseItem, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		responses = append(responses, models.ResponseItem{QuestionID: q.ID, SelectedOption: ptr(picks[i])})
	}
	if _, err := s.svc.Quizzes.SubmitResponses(ctx, tid, quiz.ID, ann, &models.SubmitResponsesRequest{Responses: responses}); err != nil {
		return fmt.Errorf("failed to submit responses: %w", err)
	}
	if _, err := s.svc.Quizzes.SetOverride(ctx, tid, quiz.ID, cara, &models.SetOverrideRequest{Score: ptr(90.0)}); err != nil {
		return fmt.Errorf("failed to set override: %w", err)
	}

	// Веса 70/30
	if _, err := s.svc.Settings.UpdateSettings(ctx, tid, cid, &models.UpdateSettingsRequest{
		UseWeights:        ptr(true),
		AssignmentsWeight: ptr(70.0),
		QuizzesWeight:     ptr(30.0),
	}); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	s.logger.Info().
		Str("teacher_id", tid).
		Str("classroom_id", cid).
		Str("quiz_id", quiz.ID).
		Msg("Demo data seeded")
	return nil
}

func ptr[T any](v T) *T { return &v }
