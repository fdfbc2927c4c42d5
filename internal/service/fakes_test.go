package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/service/integration"
)

// In-memory repositories for service tests.

type pair struct{ a, b string }

type fakeTeachers struct {
	mu    sync.Mutex
	items map[string]*models.Teacher
}

func newFakeTeachers() *fakeTeachers {
	return &fakeTeachers{items: map[string]*models.Teacher{}}
}

func (f *fakeTeachers) Create(_ context.Context, t *models.Teacher) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.items[t.ID] = &cp
	return nil
}

func (f *fakeTeachers) GetByID(_ context.Context, id string) (*models.Teacher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeTeachers) GetByEmail(_ context.Context, email string) (*models.Teacher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.items {
		if strings.EqualFold(t.Email, email) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeClassrooms struct {
	mu       sync.Mutex
	items    map[string]*models.Classroom
	holidays map[string]models.Holiday
}

func newFakeClassrooms() *fakeClassrooms {
	return &fakeClassrooms{items: map[string]*models.Classroom{}, holidays: map[string]models.Holiday{}}
}

func (f *fakeClassrooms) add(id, teacherID string) {
	f.items[id] = &models.Classroom{ID: id, TeacherID: teacherID, Name: "Period " + id}
}

func (f *fakeClassrooms) Create(_ context.Context, c *models.Classroom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeClassrooms) GetByID(_ context.Context, id string) (*models.Classroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeClassrooms) ListByTeacher(_ context.Context, teacherID string) ([]models.Classroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Classroom
	for _, c := range f.items {
		if c.TeacherID == teacherID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeClassrooms) Update(_ context.Context, c *models.Classroom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeClassrooms) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeClassrooms) CreateHoliday(_ context.Context, h *models.Holiday) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holidays[h.ID] = *h
	return nil
}

func (f *fakeClassrooms) ListHolidays(_ context.Context, classroomID string) ([]models.Holiday, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Holiday
	for _, h := range f.holidays {
		if h.ClassroomID == classroomID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeClassrooms) DeleteHoliday(_ context.Context, classroomID, holidayID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.holidays[holidayID]
	if !ok || h.ClassroomID != classroomID {
		return false, nil
	}
	delete(f.holidays, holidayID)
	return true, nil
}

type fakeRoster struct {
	mu       sync.Mutex
	students map[string]*models.Student
	enrolled map[pair]time.Time
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{students: map[string]*models.Student{}, enrolled: map[pair]time.Time{}}
}

func (f *fakeRoster) add(classroomID, id, name, email string) {
	f.students[id] = &models.Student{ID: id, DisplayName: name, Email: email}
	f.enrolled[pair{classroomID, id}] = time.Now()
}

func (f *fakeRoster) UpsertStudent(_ context.Context, s *models.Student) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.students {
		if existing.Email == s.Email {
			if s.DisplayName != "" {
				existing.DisplayName = s.DisplayName
			}
			cp := *existing
			return &cp, nil
		}
	}
	cp := *s
	f.students[s.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRoster) GetStudent(_ context.Context, id string) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRoster) Enroll(_ context.Context, classroomID, studentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := pair{classroomID, studentID}
	if _, ok := f.enrolled[k]; ok {
		return false, nil
	}
	f.enrolled[k] = time.Now()
	return true, nil
}

func (f *fakeRoster) Unenroll(_ context.Context, classroomID, studentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := pair{classroomID, studentID}
	if _, ok := f.enrolled[k]; !ok {
		return false, nil
	}
	delete(f.enrolled, k)
	return true, nil
}

func (f *fakeRoster) IsEnrolled(_ context.Context, classroomID, studentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.enrolled[pair{classroomID, studentID}]
	return ok, nil
}

func (f *fakeRoster) ListByClassroom(_ context.Context, classroomID string) ([]models.EnrolledStudent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EnrolledStudent
	for k, at := range f.enrolled {
		if k.a != classroomID {
			continue
		}
		out = append(out, models.EnrolledStudent{Student: *f.students[k.b], ClassroomID: classroomID, EnrolledAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAssignments struct {
	mu     sync.Mutex
	items  map[string]*models.Assignment
	scores map[pair]models.RubricScore
}

func newFakeAssignments() *fakeAssignments {
	return &fakeAssignments{items: map[string]*models.Assignment{}, scores: map[pair]models.RubricScore{}}
}

func (f *fakeAssignments) Create(_ context.Context, a *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAssignments) GetByID(_ context.Context, id string) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeAssignments) list(classroomID string, gradableOnly bool) []models.Assignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assignment
	for _, a := range f.items {
		if a.ClassroomID != classroomID {
			continue
		}
		if gradableOnly && a.Status == models.AssignmentStatusDraft.String() {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeAssignments) ListByClassroom(_ context.Context, classroomID string) ([]models.Assignment, error) {
	return f.list(classroomID, false), nil
}

func (f *fakeAssignments) ListGradable(_ context.Context, classroomID string) ([]models.Assignment, error) {
	return f.list(classroomID, true), nil
}

func (f *fakeAssignments) Update(ctx context.Context, a *models.Assignment) error {
	return f.Create(ctx, a)
}

func (f *fakeAssignments) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeAssignments) UpsertRubricScore(_ context.Context, s *models.RubricScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores[pair{s.AssignmentID, s.StudentID}] = *s
	return nil
}

func (f *fakeAssignments) GetRubricScore(_ context.Context, assignmentID, studentID string) (*models.RubricScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.scores[pair{assignmentID, studentID}]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeAssignments) ListRubricScoresByAssignment(_ context.Context, assignmentID string) ([]models.RubricScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RubricScore
	for k, s := range f.scores {
		if k.a == assignmentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAssignments) ListRubricScoresByClassroom(_ context.Context, classroomID string) ([]models.RubricScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RubricScore
	for k, s := range f.scores {
		if a, ok := f.items[k.a]; ok && a.ClassroomID == classroomID && a.Status != models.AssignmentStatusDraft.String() {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeQuizzes struct {
	mu        sync.Mutex
	items     map[string]*models.Quiz
	questions map[string]*models.QuizQuestion
	responses map[pair]models.QuizResponse // (question, student)
	overrides map[pair]models.QuizOverride // (quiz, student)
}

func newFakeQuizzes() *fakeQuizzes {
	return &fakeQuizzes{
		items:     map[string]*models.Quiz{},
		questions: map[string]*models.QuizQuestion{},
		responses: map[pair]models.QuizResponse{},
		overrides: map[pair]models.QuizOverride{},
	}
}

func (f *fakeQuizzes) Create(_ context.Context, q *models.Quiz, questions []models.QuizQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *q
	f.items[q.ID] = &cp
	for i := range questions {
		qq := questions[i]
		f.questions[qq.ID] = &qq
	}
	return nil
}

func (f *fakeQuizzes) GetByID(_ context.Context, id string) (*models.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q, ok := f.items[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeQuizzes) ListByClassroom(_ context.Context, classroomID string) ([]models.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Quiz
	for _, q := range f.items {
		if q.ClassroomID == classroomID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeQuizzes) Update(_ context.Context, q *models.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *q
	f.items[q.ID] = &cp
	return nil
}

func (f *fakeQuizzes) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeQuizzes) CreateQuestion(_ context.Context, q *models.QuizQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeQuizzes) GetQuestion(_ context.Context, id string) (*models.QuizQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q, ok := f.questions[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeQuizzes) UpdateQuestion(ctx context.Context, q *models.QuizQuestion) error {
	return f.CreateQuestion(ctx, q)
}

func (f *fakeQuizzes) ListQuestions(_ context.Context, quizID string) ([]models.QuizQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.QuizQuestion
	for _, q := range f.questions {
		if q.QuizID == quizID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeQuizzes) ListQuestionsByClassroom(_ context.Context, classroomID string) ([]models.QuizQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.QuizQuestion
	for _, q := range f.questions {
		if quiz, ok := f.items[q.QuizID]; ok && quiz.ClassroomID == classroomID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuizzes) UpsertResponses(_ context.Context, responses []models.QuizResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range responses {
		f.responses[pair{r.QuestionID, r.StudentID}] = r
	}
	return nil
}

func (f *fakeQuizzes) ListResponsesByStudent(_ context.Context, quizID, studentID string) ([]models.QuizResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.QuizResponse
	for _, r := range f.responses {
		if r.QuizID == quizID && r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeQuizzes) ListResponsesByClassroom(_ context.Context, classroomID string) ([]models.QuizResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.QuizResponse
	for _, r := range f.responses {
		if quiz, ok := f.items[r.QuizID]; ok && quiz.ClassroomID == classroomID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeQuizzes) SetOverride(_ context.Context, o *models.QuizOverride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[pair{o.QuizID, o.StudentID}] = *o
	return nil
}

func (f *fakeQuizzes) DeleteOverride(_ context.Context, quizID, studentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := pair{quizID, studentID}
	if _, ok := f.overrides[k]; !ok {
		return false, nil
	}
	delete(f.overrides, k)
	return true, nil
}

func (f *fakeQuizzes) ListOverridesByClassroom(_ context.Context, classroomID string) ([]models.QuizOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.QuizOverride
	for _, o := range f.overrides {
		if quiz, ok := f.items[o.QuizID]; ok && quiz.ClassroomID == classroomID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeSettings struct {
	mu      sync.Mutex
	items   map[string]models.GradebookSettings
	upserts int
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{items: map[string]models.GradebookSettings{}}
}

func (f *fakeSettings) GetByClassroom(_ context.Context, classroomID string) (*models.GradebookSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.items[classroomID]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeSettings) Upsert(_ context.Context, s *models.GradebookSettings) (*models.GradebookSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.items[s.ClassroomID] = *s
	cp := *s
	return &cp, nil
}

type fakeExports struct {
	mu    sync.Mutex
	items map[string]*models.Export
}

func newFakeExports() *fakeExports {
	return &fakeExports{items: map[string]*models.Export{}}
}

func (f *fakeExports) Create(_ context.Context, e *models.Export) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.items[e.ID] = &cp
	return nil
}

func (f *fakeExports) GetByID(_ context.Context, id string) (*models.Export, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.items[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeExports) UpdateStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id].Status = status
	return nil
}

func (f *fakeExports) MarkCompleted(_ context.Context, id, objectKey, checksum string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	e := f.items[id]
	e.Status = models.ExportStatusCompleted.String()
	e.ObjectKey = &objectKey
	e.Checksum = &checksum
	e.CompletedAt = &now
	return nil
}

func (f *fakeExports) MarkFailed(_ context.Context, id, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.items[id]
	e.Status = models.ExportStatusFailed.String()
	e.Error = &reason
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, key string, data io.Reader, _ int64, _ string) error {
	if f.err != nil {
		return f.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return nil
}

func (f *fakeStorage) PresignedURL(_ context.Context, key string, _ time.Duration, _ string) (string, error) {
	return "https://storage.test/" + key, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	settings  []*models.SettingsUpdatedEvent
	grades    []*models.GradesChangedEvent
	exports   []*models.ExportRequestedEvent
	gradesErr error
	exportErr error
}

var _ integration.EventPublisher = (*fakePublisher)(nil)

func (f *fakePublisher) PublishSettingsUpdated(_ context.Context, e *models.SettingsUpdatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = append(f.settings, e)
	return nil
}

func (f *fakePublisher) PublishGradesChanged(_ context.Context, e *models.GradesChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grades = append(f.grades, e)
	return f.gradesErr
}

func (f *fakePublisher) PublishExportRequested(_ context.Context, e *models.ExportRequestedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exportErr != nil {
		return f.exportErr
	}
	f.exports = append(f.exports, e)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeDispatcher struct {
	ids []string
}

func (f *fakeDispatcher) Dispatch(exportID string) error {
	f.ids = append(f.ids, exportID)
	return nil
}
