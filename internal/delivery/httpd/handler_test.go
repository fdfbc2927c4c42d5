package httpd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/config"
	"github.com/RubachokBoss/classroom-gradebook/internal/gradebook"
	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTeacher = "t-1"

type stubSettings struct {
	calls int
}

func (s *stubSettings) GetSettings(_ context.Context, _, classroomID string) (*models.SettingsResponse, error) {
	d := gradebook.DefaultSettings()
	return &models.SettingsResponse{ClassroomID: classroomID, AssignmentsWeight: d.AssignmentsWeight, QuizzesWeight: d.QuizzesWeight, IsDefault: true}, nil
}

func (s *stubSettings) UpdateSettings(_ context.Context, _, classroomID string, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	s.calls++
	next, err := gradebook.DefaultSettings().Apply(gradebook.SettingsPatch{
		UseWeights:        req.UseWeights,
		AssignmentsWeight: req.AssignmentsWeight,
		QuizzesWeight:     req.QuizzesWeight,
	})
	if err != nil {
		return nil, err
	}
	return &models.SettingsResponse{ClassroomID: classroomID, UseWeights: next.UseWeights, AssignmentsWeight: next.AssignmentsWeight, QuizzesWeight: next.QuizzesWeight}, nil
}

type stubGradebook struct {
	err error
}

func (s *stubGradebook) GetGradebook(_ context.Context, _, classroomID string) (*models.GradebookResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	final := 83.17
	return &models.GradebookResponse{
		ClassroomID: classroomID,
		Counts:      models.GradebookCounts{Students: 2, Assignments: 2, Quizzes: 1},
		Students: []models.StudentGrade{
			{StudentID: "s-ann", DisplayName: "Ann", FinalPercent: &final, AssignmentsStatus: "computed", QuizzesStatus: "computed"},
			{StudentID: "s-bob", DisplayName: "Bob", AssignmentsStatus: "no_data", QuizzesStatus: "no_data"},
		},
	}, nil
}

func (s *stubGradebook) GetStudentGrade(context.Context, string, string, string) (*models.StudentGrade, error) {
	return nil, service.ErrNotEnrolled
}

func (s *stubGradebook) Build(ctx context.Context, classroomID string) (*models.GradebookResponse, error) {
	return s.GetGradebook(ctx, "", classroomID)
}

type testServer struct {
	router   http.Handler
	token    string
	settings *stubSettings
	book     *stubGradebook
}

func newTestServer(t *testing.T, ready func(context.Context) error) *testServer {
	t.Helper()

	auth := service.NewAuthService(nil, config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}, zerolog.Nop())
	token, _, err := auth.IssueToken(testTeacher)
	require.NoError(t, err)

	ts := &testServer{token: token, settings: &stubSettings{}, book: &stubGradebook{}}

	h := NewHandler(Services{
		Auth:      auth,
		Settings:  ts.settings,
		Gradebook: ts.book,
	}, ready, 1<<20, zerolog.Nop())

	router := chi.NewRouter()
	router.Use(Recovery(zerolog.Nop()))
	h.RegisterRoutes(router)
	ts.router = router
	return ts
}

func (ts *testServer) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestReady_DatabaseDown(t *testing.T) {
	ts := newTestServer(t, func(context.Context) error { return errors.New("connection refused") })

	rec := ts.do(http.MethodGet, "/ready", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuth_RequiresBearerToken(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/classrooms/c-1/gradebook", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/classrooms/c-1/gradebook", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetGradebook(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/classrooms/c-1/gradebook", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "c-1", data["classroom_id"])

	students := data["students"].([]interface{})
	require.Len(t, students, 2)
	bob := students[1].(map[string]interface{})
	// Missing grades are serialized as null, never zero.
	v, present := bob["final_percent"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, "no_data", bob["assignments_status"])
}

func TestGetGradebook_ErrorMapping(t *testing.T) {
	ts := newTestServer(t, nil)

	cases := []struct {
		err  error
		code int
	}{
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrClassroomNotFound, http.StatusNotFound},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		ts.book.err = tc.err
		rec := ts.do(http.MethodGet, "/api/v1/classrooms/c-1/gradebook", "", true)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}

	// Storage details never leak to the client.
	rec := ts.do(http.MethodGet, "/api/v1/classrooms/c-1/gradebook", "", true)
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestGetStudentGrade_NotEnrolled(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/api/v1/classrooms/c-1/gradebook/students/s-x", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateSettings_RejectsWeightsNotSummingTo100(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPatch, "/api/v1/classrooms/c-1/gradebook/settings",
		`{"use_weights":true,"assignments_weight":60,"quizzes_weight":30}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Contains(t, body["message"], "must sum to 100")
	fields := body["fields"].([]interface{})
	require.Len(t, fields, 1)
	assert.Equal(t, "weights", fields[0].(map[string]interface{})["field"])
}

func TestUpdateSettings_Success(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPut, "/api/v1/classrooms/c-1/gradebook/settings",
		`{"assignments_weight":50,"quizzes_weight":50}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(50), data["quizzes_weight"])
	assert.Equal(t, 1, ts.settings.calls)
}

func TestUpdateSettings_InvalidJSON(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPatch, "/api/v1/classrooms/c-1/gradebook/settings", `{"use_weights":`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, ts.settings.calls)
}

func TestValidation_UsesJSONFieldNames(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/api/v1/classrooms", `{"term_start":"2025-09-01","term_end":"09/30/2025","meeting_days":[1,9]}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	fields := decodeBody(t, rec)["fields"].([]interface{})
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.(map[string]interface{})["field"].(string))
	}
	assert.ElementsMatch(t, []string{"name", "term_end", "meeting_days[1]"}, names)
}

func TestRecovery(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Recovery(zerolog.Nop()))
	router.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
