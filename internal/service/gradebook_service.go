package service

import (
	"context"
	"fmt"

	"github.com/RubachokBoss/classroom-gradebook/internal/gradebook"
	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type GradebookService interface {
	GetGradebook(ctx context.Context, teacherID, classroomID string) (*models.GradebookResponse, error)
	GetStudentGrade(ctx context.Context, teacherID, classroomID, studentID string) (*models.StudentGrade, error)
	// Build computes the gradebook without an ownership check. Used by the export worker.
	Build(ctx context.Context, classroomID string) (*models.GradebookResponse, error)
}

type gradebookService struct {
	access         classroomAccess
	rosterRepo     repository.RosterRepository
	assignmentRepo repository.AssignmentRepository
	quizRepo       repository.QuizRepository
	settingsRepo   repository.SettingsRepository
	defaults       gradebook.Settings
	logger         zerolog.Logger
}

func NewGradebookService(
	classroomRepo repository.ClassroomRepository,
	rosterRepo repository.RosterRepository,
	assignmentRepo repository.AssignmentRepository,
	quizRepo repository.QuizRepository,
	settingsRepo repository.SettingsRepository,
	defaults gradebook.Settings,
	logger zerolog.Logger,
) GradebookService {
	return &gradebookService{
		access:         classroomAccess{classroomRepo: classroomRepo, rosterRepo: rosterRepo},
		rosterRepo:     rosterRepo,
		assignmentRepo: assignmentRepo,
		quizRepo:       quizRepo,
		settingsRepo:   settingsRepo,
		defaults:       defaults,
		logger:         logger,
	}
}

func (s *gradebookService) GetGradebook(ctx context.Context, teacherID, classroomID string) (*models.GradebookResponse, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}
	return s.Build(ctx, classroomID)
}

func (s *gradebookService) GetStudentGrade(ctx context.Context, teacherID, classroomID, studentID string) (*models.StudentGrade, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	data, err := s.load(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	for _, st := range data.inputs.Students {
		if st.ID == studentID {
			grade := studentGrade(gradebook.StudentResult{
				Student: st,
				Result:  gradebook.ComputeStudent(data.inputs, studentID),
			})
			return &grade, nil
		}
	}
	return nil, ErrNotEnrolled
}

func (s *gradebookService) Build(ctx context.Context, classroomID string) (*models.GradebookResponse, error) {
	data, err := s.load(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	results := gradebook.Compute(data.inputs)

	students := make([]models.StudentGrade, 0, len(results))
	for _, r := range results {
		students = append(students, studentGrade(r))
	}

	s.logger.Debug().
		Str("classroom_id", classroomID).
		Int("students", len(students)).
		Bool("use_weights", data.inputs.Settings.UseWeights).
		Msg("Gradebook computed")

	return &models.GradebookResponse{
		ClassroomID: classroomID,
		Settings:    *data.settings,
		Counts:      data.counts(),
		Students:    students,
	}, nil
}

type gradebookData struct {
	inputs   gradebook.Inputs
	settings *models.SettingsResponse
}

// counts reports the students and the items that can feed a final grade.
func (d gradebookData) counts() models.GradebookCounts {
	c := models.GradebookCounts{Students: len(d.inputs.Students)}
	for _, a := range d.inputs.Assignments {
		if a.IncludeInFinal {
			c.Assignments++
		}
	}
	for _, q := range d.inputs.Quizzes {
		if q.IncludeInFinal {
			c.Quizzes++
		}
	}
	return c
}

// load fetches every gradebook input concurrently. The queries are
// independent; the computation itself runs after all of them return.
func (s *gradebookService) load(ctx context.Context, classroomID string) (*gradebookData, error) {
	var (
		roster      []models.EnrolledStudent
		assignments []models.Assignment
		rubrics     []models.RubricScore
		quizzes     []models.Quiz
		questions   []models.QuizQuestion
		responses   []models.QuizResponse
		overrides   []models.QuizOverride
		settings    *models.SettingsResponse
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		if roster, err = s.rosterRepo.ListByClassroom(gctx, classroomID); err != nil {
			return fmt.Errorf("failed to list roster: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if assignments, err = s.assignmentRepo.ListGradable(gctx, classroomID); err != nil {
			return fmt.Errorf("failed to list assignments: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if rubrics, err = s.assignmentRepo.ListRubricScoresByClassroom(gctx, classroomID); err != nil {
			return fmt.Errorf("failed to list rubric scores: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if quizzes, err = s.quizRepo.ListByClassroom(gctx, classroomID); err != nil {
			return fmt.Errorf("failed to list quizzes: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if questions, err = s.quizRepo.ListQuestionsByClassroom(gctx, classroomID); err != nil {
			return fmt.Errorf("failed to list questions: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if responses, err = s.quizRepo.ListResponsesByClassroom(gctx, classroomID); err != nil {
			return fmt.Errorf("failed to list responses: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if overrides, err = s.quizRepo.ListOverridesByClassroom(gctx, classroomID); err != nil {
			return fmt.Errorf("failed to list overrides: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		settings, err = resolveSettings(gctx, s.settingsRepo, s.defaults, classroomID)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("classroom_id", classroomID).Msg("Failed to load gradebook inputs")
		return nil, err
	}

	in := gradebook.Inputs{
		Students:    make([]gradebook.Student, 0, len(roster)),
		Assignments: make([]gradebook.Assignment, 0, len(assignments)),
		Rubrics:     make(map[gradebook.Key]gradebook.RubricScores, len(rubrics)),
		Quizzes:     make([]gradebook.Quiz, 0, len(quizzes)),
		Responses:   make(map[gradebook.Key]map[string]int),
		Overrides:   make(map[gradebook.Key]float64, len(overrides)),
		Settings:    toSettings(settings),
	}

	for _, st := range roster {
		in.Students = append(in.Students, gradebook.Student{
			ID:          st.ID,
			DisplayName: st.DisplayName,
			Email:       st.Email,
		})
	}

	for _, a := range assignments {
		in.Assignments = append(in.Assignments, gradebook.Assignment{
			ID:             a.ID,
			PointsPossible: a.PointsPossible,
			IncludeInFinal: a.IncludeInFinal,
		})
	}

	for _, r := range rubrics {
		in.Rubrics[gradebook.Key{ItemID: r.AssignmentID, StudentID: r.StudentID}] = gradebook.RubricScores{
			Completion: r.Completion,
			Thinking:   r.Thinking,
			Workflow:   r.Workflow,
		}
	}

	byQuiz := make(map[string][]gradebook.Question, len(quizzes))
	for _, q := range questions {
		byQuiz[q.QuizID] = append(byQuiz[q.QuizID], gradebook.Question{
			ID:            q.ID,
			CorrectOption: q.CorrectOption,
		})
	}
	for _, q := range quizzes {
		in.Quizzes = append(in.Quizzes, gradebook.Quiz{
			ID:             q.ID,
			PointsPossible: q.PointsPossible,
			IncludeInFinal: q.IncludeInFinal,
			Questions:      byQuiz[q.ID],
		})
	}

	for _, r := range responses {
		key := gradebook.Key{ItemID: r.QuizID, StudentID: r.StudentID}
		selected, ok := in.Responses[key]
		if !ok {
			selected = make(map[string]int)
			in.Responses[key] = selected
		}
		selected[r.QuestionID] = r.SelectedOption
	}

	for _, o := range overrides {
		in.Overrides[gradebook.Key{ItemID: o.QuizID, StudentID: o.StudentID}] = o.Score
	}

	return &gradebookData{inputs: in, settings: settings}, nil
}

func studentGrade(r gradebook.StudentResult) models.StudentGrade {
	return models.StudentGrade{
		StudentID:          r.ID,
		DisplayName:        r.DisplayName,
		Email:              r.Email,
		AssignmentsPercent: r.Assignments.Percent,
		QuizzesPercent:     r.Quizzes.Percent,
		FinalPercent:       r.Final,
		AssignmentsStatus:  string(r.Assignments.Status),
		QuizzesStatus:      string(r.Quizzes.Status),
		AssignmentsCount:   r.Assignments.Items,
		QuizzesCount:       r.Quizzes.Items,
	}
}
