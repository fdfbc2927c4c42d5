package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/config"
	"github.com/RubachokBoss/classroom-gradebook/internal/gradebook"
	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/service/integration"
	"github.com/RubachokBoss/classroom-gradebook/pkg/hash"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	teacherID = "t-1"
	classID   = "c-1"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

type env struct {
	classrooms  *fakeClassrooms
	roster      *fakeRoster
	assignments *fakeAssignments
	quizzes     *fakeQuizzes
	settings    *fakeSettings
	exports     *fakeExports
	storage     *fakeStorage
	publisher   *fakePublisher
}

func newEnv() *env {
	e := &env{
		classrooms:  newFakeClassrooms(),
		roster:      newFakeRoster(),
		assignments: newFakeAssignments(),
		quizzes:     newFakeQuizzes(),
		settings:    newFakeSettings(),
		exports:     newFakeExports(),
		storage:     newFakeStorage(),
		publisher:   &fakePublisher{},
	}
	e.classrooms.add(classID, teacherID)
	return e
}

// seedScenario loads two students, two published assignments and a quiz
// with four scorable questions and one unscorable one.
func (e *env) seedScenario() {
	e.roster.add(classID, "s-ann", "Ann", "ann@example.com")
	e.roster.add(classID, "s-bob", "Bob", "bob@example.com")

	published := models.AssignmentStatusPublished.String()
	e.assignments.items["a1"] = &models.Assignment{ID: "a1", ClassroomID: classID, PointsPossible: fp(30), IncludeInFinal: true, Status: published}
	e.assignments.items["a2"] = &models.Assignment{ID: "a2", ClassroomID: classID, PointsPossible: fp(20), IncludeInFinal: true, Status: published}
	e.assignments.items["a3"] = &models.Assignment{ID: "a3", ClassroomID: classID, IncludeInFinal: true, Status: models.AssignmentStatusDraft.String()}

	e.assignments.scores[pair{"a1", "s-ann"}] = models.RubricScore{AssignmentID: "a1", StudentID: "s-ann", Completion: fp(10), Thinking: fp(10), Workflow: fp(10)}
	e.assignments.scores[pair{"a2", "s-ann"}] = models.RubricScore{AssignmentID: "a2", StudentID: "s-ann", Completion: fp(5), Thinking: fp(7), Workflow: fp(8)}
	e.assignments.scores[pair{"a3", "s-ann"}] = models.RubricScore{AssignmentID: "a3", StudentID: "s-ann", Completion: fp(0), Thinking: fp(0), Workflow: fp(0)}

	e.quizzes.items["q1"] = &models.Quiz{ID: "q1", ClassroomID: classID, IncludeInFinal: true}
	for i, correct := range []*int{ip(0), ip(1), ip(2), ip(3), nil} {
		id := []string{"x1", "x2", "x3", "x4", "x5"}[i]
		e.quizzes.questions[id] = &models.QuizQuestion{
			ID: id, QuizID: "q1", Position: i,
			Options: []string{"a", "b", "c", "d"}, CorrectOption: correct,
		}
	}
	for qid, opt := range map[string]int{"x1": 0, "x2": 1, "x3": 2, "x4": 1} {
		e.quizzes.responses[pair{qid, "s-ann"}] = models.QuizResponse{QuizID: "q1", QuestionID: qid, StudentID: "s-ann", SelectedOption: opt}
	}
}

func (e *env) gradebookService() GradebookService {
	return NewGradebookService(e.classrooms, e.roster, e.assignments, e.quizzes, e.settings, gradebook.DefaultSettings(), zerolog.Nop())
}

func (e *env) settingsService() SettingsService {
	return NewSettingsService(e.classrooms, e.settings, e.publisher, gradebook.DefaultSettings(), zerolog.Nop())
}

func TestGradebookService_Scenario(t *testing.T) {
	e := newEnv()
	e.seedScenario()
	e.settings.items[classID] = models.GradebookSettings{ClassroomID: classID, UseWeights: true, AssignmentsWeight: 70, QuizzesWeight: 30}

	gb, err := e.gradebookService().GetGradebook(context.Background(), teacherID, classID)
	require.NoError(t, err)

	assert.Equal(t, models.GradebookCounts{Students: 2, Assignments: 2, Quizzes: 1}, gb.Counts)
	assert.False(t, gb.Settings.IsDefault)
	require.Len(t, gb.Students, 2)

	ann := gb.Students[0]
	assert.Equal(t, "s-ann", ann.StudentID)
	require.NotNil(t, ann.FinalPercent)
	assert.InDelta(t, 86.67, *ann.AssignmentsPercent, 0.01)
	assert.InDelta(t, 75, *ann.QuizzesPercent, 1e-9)
	assert.InDelta(t, 83.17, *ann.FinalPercent, 0.01)
	assert.Equal(t, "computed", ann.AssignmentsStatus)

	// Bob has no rubric rows but the quiz still counts as zero for him.
	bob := gb.Students[1]
	assert.Nil(t, bob.AssignmentsPercent)
	assert.Equal(t, "no_data", bob.AssignmentsStatus)
	require.NotNil(t, bob.QuizzesPercent)
	assert.InDelta(t, 0, *bob.QuizzesPercent, 1e-9)
	assert.InDelta(t, 0, *bob.FinalPercent, 1e-9)
}

func TestGradebookService_DefaultSettingsNotPersisted(t *testing.T) {
	e := newEnv()
	e.seedScenario()

	gb, err := e.gradebookService().GetGradebook(context.Background(), teacherID, classID)
	require.NoError(t, err)

	assert.True(t, gb.Settings.IsDefault)
	assert.False(t, gb.Settings.UseWeights)
	assert.Equal(t, 70, gb.Settings.AssignmentsWeight)
	assert.Equal(t, 0, e.settings.upserts)

	ann := gb.Students[0]
	assert.InDelta(t, (100+200.0/3+75)/3, *ann.FinalPercent, 1e-9)
}

func TestGradebookService_Access(t *testing.T) {
	e := newEnv()
	svc := e.gradebookService()

	_, err := svc.GetGradebook(context.Background(), "someone-else", classID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetGradebook(context.Background(), teacherID, "missing")
	assert.ErrorIs(t, err, ErrClassroomNotFound)

	_, err = svc.GetStudentGrade(context.Background(), teacherID, classID, "s-nobody")
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestGradebookService_StudentGrade(t *testing.T) {
	e := newEnv()
	e.seedScenario()

	grade, err := e.gradebookService().GetStudentGrade(context.Background(), teacherID, classID, "s-ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann", grade.DisplayName)
	assert.Equal(t, 2, grade.AssignmentsCount)
	assert.Equal(t, 1, grade.QuizzesCount)
}

func TestSettingsService_RejectsBadSumWithoutWriting(t *testing.T) {
	e := newEnv()
	svc := e.settingsService()

	_, err := svc.UpdateSettings(context.Background(), teacherID, classID, &models.UpdateSettingsRequest{
		AssignmentsWeight: fp(60),
		QuizzesWeight:     fp(30),
	})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "sum to 100")
	assert.Equal(t, 0, e.settings.upserts)
	assert.Empty(t, e.publisher.settings)
}

func TestSettingsService_PartialUpdate(t *testing.T) {
	e := newEnv()
	svc := e.settingsService()
	ctx := context.Background()

	got, err := svc.GetSettings(ctx, teacherID, classID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	useWeights := true
	updated, err := svc.UpdateSettings(ctx, teacherID, classID, &models.UpdateSettingsRequest{UseWeights: &useWeights})
	require.NoError(t, err)
	assert.False(t, updated.IsDefault)
	assert.True(t, updated.UseWeights)
	assert.Equal(t, 70, updated.AssignmentsWeight)
	assert.Equal(t, 30, updated.QuizzesWeight)

	updated, err = svc.UpdateSettings(ctx, teacherID, classID, &models.UpdateSettingsRequest{
		AssignmentsWeight: fp(50),
		QuizzesWeight:     fp(50),
	})
	require.NoError(t, err)
	assert.True(t, updated.UseWeights)
	assert.Equal(t, 50, updated.QuizzesWeight)

	require.Len(t, e.publisher.settings, 2)
	assert.Equal(t, classID, e.publisher.settings[1].ClassroomID)
}

func TestSettingsService_RejectsFractionalWeight(t *testing.T) {
	e := newEnv()

	_, err := e.settingsService().UpdateSettings(context.Background(), teacherID, classID, &models.UpdateSettingsRequest{
		AssignmentsWeight: fp(70.5),
		QuizzesWeight:     fp(29.5),
	})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Equal(t, 0, e.settings.upserts)
}

func TestQuizService_OverrideAndResponses(t *testing.T) {
	e := newEnv()
	e.seedScenario()
	e.publisher.gradesErr = errors.New("broker down")
	svc := NewQuizService(e.classrooms, e.roster, e.quizzes, e.publisher, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.SetOverride(ctx, teacherID, "q1", "s-bob", &models.SetOverrideRequest{Score: fp(90)})
	require.NoError(t, err)

	gb, err := e.gradebookService().GetGradebook(ctx, teacherID, classID)
	require.NoError(t, err)
	assert.InDelta(t, 90, *gb.Students[1].QuizzesPercent, 1e-9)

	require.NoError(t, svc.ClearOverride(ctx, teacherID, "q1", "s-bob"))
	assert.ErrorIs(t, svc.ClearOverride(ctx, teacherID, "q1", "s-bob"), ErrOverrideNotFound)

	_, err = svc.SubmitResponses(ctx, teacherID, "q1", "s-bob", &models.SubmitResponsesRequest{
		Responses: []models.ResponseItem{
			{QuestionID: "x1", SelectedOption: ip(0)},
			{QuestionID: "x2", SelectedOption: ip(1)},
		},
	})
	require.NoError(t, err)

	gb, err = e.gradebookService().GetGradebook(ctx, teacherID, classID)
	require.NoError(t, err)
	assert.InDelta(t, 50, *gb.Students[1].QuizzesPercent, 1e-9)

	// Publish failures never fail the write.
	assert.Len(t, e.publisher.grades, 3)
}

func TestQuizService_SubmitResponsesValidation(t *testing.T) {
	e := newEnv()
	e.seedScenario()
	svc := NewQuizService(e.classrooms, e.roster, e.quizzes, e.publisher, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.SubmitResponses(ctx, teacherID, "q1", "s-ann", &models.SubmitResponsesRequest{
		Responses: []models.ResponseItem{
			{QuestionID: "other", SelectedOption: ip(0)},
			{QuestionID: "x1", SelectedOption: ip(9)},
		},
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	_, err = svc.SubmitResponses(ctx, teacherID, "q1", "s-stranger", &models.SubmitResponsesRequest{
		Responses: []models.ResponseItem{{QuestionID: "x1", SelectedOption: ip(0)}},
	})
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestQuizService_CorrectOptionMustIndexOptions(t *testing.T) {
	e := newEnv()
	svc := NewQuizService(e.classrooms, e.roster, e.quizzes, e.publisher, zerolog.Nop())

	_, err := svc.CreateQuiz(context.Background(), teacherID, classID, &models.CreateQuizRequest{
		Title: "Unit 1",
		Questions: []models.CreateQuestionRequest{
			{Prompt: "2+2", Options: []string{"3", "4"}, CorrectOption: ip(2)},
		},
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "questions[0].correct_option", verr.Fields[0].Field)

	quiz, err := svc.CreateQuiz(context.Background(), teacherID, classID, &models.CreateQuizRequest{
		Title: "Unit 1",
		Questions: []models.CreateQuestionRequest{
			{Prompt: "2+2", Options: []string{"3", "4"}, CorrectOption: ip(1)},
			{Prompt: "Opinion", Options: []string{"yes", "no"}},
		},
	})
	require.NoError(t, err)
	assert.True(t, quiz.IncludeInFinal)
	require.Len(t, quiz.Questions, 2)
	assert.False(t, quiz.Questions[1].Scorable())
}

func TestAssignmentService_GradeRequiresEnrollment(t *testing.T) {
	e := newEnv()
	e.seedScenario()
	svc := NewAssignmentService(e.classrooms, e.roster, e.assignments, e.publisher, zerolog.Nop())

	_, err := svc.GradeStudent(context.Background(), teacherID, "a1", "s-stranger", &models.GradeAssignmentRequest{Completion: fp(5)})
	assert.ErrorIs(t, err, ErrNotEnrolled)

	score, err := svc.GradeStudent(context.Background(), teacherID, "a1", "s-bob", &models.GradeAssignmentRequest{
		Completion: fp(10), Thinking: fp(5), Workflow: fp(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "s-bob", score.StudentID)
	require.Len(t, e.publisher.grades, 1)
	assert.Equal(t, models.ItemTypeAssignment, e.publisher.grades[0].ItemType)
}

func TestRosterService_UploadCSV(t *testing.T) {
	e := newEnv()
	e.roster.add(classID, "s-ann", "Ann", "ann@example.com")
	svc := NewRosterService(e.classrooms, e.roster, e.storage, hash.NewContentHasher(hash.SHA256), zerolog.Nop())

	csv := "\ufeffName,Email\n" +
		"Ann,ann@example.com\n" +
		"Bob,BOB@example.com\n" +
		"Nobody,not-an-email\n" +
		"\n" +
		"Bobby,bob@example.com\n"

	res, err := svc.UploadRoster(context.Background(), teacherID, classID, "period1.csv", []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Enrolled)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Equal(t, 6, res.Errors[1].Row)
	assert.Contains(t, res.Errors[1].Message, "row 3")

	require.NotEmpty(t, res.ObjectKey)
	assert.Contains(t, e.storage.objects, res.ObjectKey)
}

func TestRosterService_UploadRejectsUnknownFormat(t *testing.T) {
	e := newEnv()
	svc := NewRosterService(e.classrooms, e.roster, nil, nil, zerolog.Nop())

	_, err := svc.UploadRoster(context.Background(), teacherID, classID, "roster.pdf", []byte("x"))
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "file", verr.Fields[0].Field)
}

func TestRosterService_ArchiveFailureIsNotFatal(t *testing.T) {
	e := newEnv()
	e.storage.err = errors.New("minio down")
	svc := NewRosterService(e.classrooms, e.roster, e.storage, nil, zerolog.Nop())

	res, err := svc.UploadRoster(context.Background(), teacherID, classID, "r.csv", []byte("email\nzoe@example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Enrolled)
	assert.Empty(t, res.ObjectKey)
}

func TestAuthService_LoginAndParse(t *testing.T) {
	teachers := newFakeTeachers()
	svc := NewAuthService(teachers, config.AuthConfig{JWTSecret: "secret", Issuer: "test", TokenTTL: time.Hour}, zerolog.Nop())
	ctx := context.Background()

	teacher, err := svc.CreateTeacher(ctx, "Ms. Frizzle", "Frizzle@Example.com", "magic-bus")
	require.NoError(t, err)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "frizzle@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "magic-bus"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login(ctx, &models.LoginRequest{Email: "frizzle@example.com", Password: "magic-bus"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)

	claims, err := svc.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, claims.Subject)
	assert.Equal(t, models.RoleTeacher, claims.Role)

	other := NewAuthService(teachers, config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour}, zerolog.Nop())
	_, err = other.ParseToken(resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ExpiredToken(t *testing.T) {
	svc := NewAuthService(newFakeTeachers(), config.AuthConfig{JWTSecret: "secret", TokenTTL: time.Minute}, zerolog.Nop()).(*authService)
	svc.now = func() time.Time { return time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC) }

	token, _, err := svc.IssueToken("t-1")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC) }
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExport_RequestFallsBackToDispatcher(t *testing.T) {
	e := newEnv()
	e.publisher.exportErr = integration.ErrBrokerUnavailable
	dispatcher := &fakeDispatcher{}
	svc := NewExportService(e.classrooms, e.exports, e.storage, e.publisher, dispatcher, time.Minute, zerolog.Nop())

	resp, err := svc.RequestExport(context.Background(), teacherID, classID)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, []string{resp.ID}, dispatcher.ids)
}

func TestExport_ProcessAndDownload(t *testing.T) {
	e := newEnv()
	e.seedScenario()
	svc := NewExportService(e.classrooms, e.exports, e.storage, e.publisher, nil, time.Minute, zerolog.Nop())
	processor := NewExportProcessor(e.exports, e.gradebookService(), e.storage, hash.NewContentHasher(hash.SHA256), zerolog.Nop())
	ctx := context.Background()

	resp, err := svc.RequestExport(ctx, teacherID, classID)
	require.NoError(t, err)
	require.Len(t, e.publisher.exports, 1)
	assert.Nil(t, resp.DownloadURL)

	require.NoError(t, processor.Process(ctx, resp.ID))
	// Redelivery of a finished job is a no-op.
	require.NoError(t, processor.Process(ctx, resp.ID))

	got, err := svc.GetExport(ctx, teacherID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	require.NotNil(t, got.DownloadURL)
	require.NotNil(t, got.Checksum)
	assert.Len(t, *got.Checksum, 64)

	data := e.storage.objects["exports/"+classID+"/"+resp.ID+".xlsx"]
	require.NotEmpty(t, data)

	_, err = svc.GetExport(ctx, "someone-else", resp.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExport_UploadFailureMarksJobFailed(t *testing.T) {
	e := newEnv()
	e.seedScenario()
	e.storage.err = errors.New("minio down")
	svc := NewExportService(e.classrooms, e.exports, e.storage, e.publisher, nil, time.Minute, zerolog.Nop())
	processor := NewExportProcessor(e.exports, e.gradebookService(), e.storage, hash.NewContentHasher(hash.SHA256), zerolog.Nop())
	ctx := context.Background()

	resp, err := svc.RequestExport(ctx, teacherID, classID)
	require.NoError(t, err)
	require.NoError(t, processor.Process(ctx, resp.ID))

	got, err := svc.GetExport(ctx, teacherID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	require.NotNil(t, got.Error)
	assert.Contains(t, *got.Error, "minio down")
	assert.Nil(t, got.DownloadURL)
}

func TestRenderGradebook(t *testing.T) {
	gb := &models.GradebookResponse{
		ClassroomID: classID,
		Students: []models.StudentGrade{
			{StudentID: "s-ann", DisplayName: "Ann", Email: "ann@example.com", AssignmentsPercent: fp(86.5), QuizzesPercent: fp(75), FinalPercent: fp(83)},
			{StudentID: "s-bob", Email: "bob@example.com"},
		},
	}

	data, err := RenderGradebook(gb)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytesReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(gradebookSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Student", rows[0][0])
	assert.Equal(t, "Ann", rows[1][0])
	// Null percents stay empty; the name falls back to the email.
	assert.Equal(t, []string{"bob@example.com", "bob@example.com"}, rows[2])

	v, err := f.GetCellValue(gradebookSheet, "E2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "83", v)
}
