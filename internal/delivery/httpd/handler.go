package httpd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Auth        service.AuthService
	Classrooms  service.ClassroomService
	Roster      service.RosterService
	Assignments service.AssignmentService
	Quizzes     service.QuizService
	Gradebook   service.GradebookService
	Settings    service.SettingsService
	Exports     service.ExportService
}

type Handler struct {
	auth        service.AuthService
	classrooms  service.ClassroomService
	roster      service.RosterService
	assignments service.AssignmentService
	quizzes     service.QuizService
	gradebook   service.GradebookService
	settings    service.SettingsService
	exports     service.ExportService

	ready         func(ctx context.Context) error
	maxUploadSize int64
	validator     *Validator
	logger        zerolog.Logger
}

func NewHandler(
	services Services,
	ready func(ctx context.Context) error,
	maxUploadSize int64,
	logger zerolog.Logger,
) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = 5 << 20
	}
	return &Handler{
		auth:          services.Auth,
		classrooms:    services.Classrooms,
		roster:        services.Roster,
		assignments:   services.Assignments,
		quizzes:       services.Quizzes,
		gradebook:     services.Gradebook,
		settings:      services.Settings,
		exports:       services.Exports,
		ready:         ready,
		maxUploadSize: maxUploadSize,
		validator:     NewValidator(),
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)
	router.Get("/ready", h.ReadyCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/login", h.Login)

		api.Group(func(r chi.Router) {
			r.Use(Authenticate(h.auth, h.logger))

			r.Route("/classrooms", func(r chi.Router) {
				r.Post("/", h.CreateClassroom)
				r.Get("/", h.ListClassrooms)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetClassroom)
					r.Put("/", h.UpdateClassroom)
					r.Patch("/", h.UpdateClassroom)
					r.Delete("/", h.DeleteClassroom)

					r.Get("/calendar", h.GetCalendar)
					r.Post("/holidays", h.AddHoliday)
					r.Get("/holidays", h.ListHolidays)
					r.Delete("/holidays/{holidayId}", h.DeleteHoliday)

					r.Post("/students", h.EnrollStudent)
					r.Get("/students", h.ListRoster)
					r.Delete("/students/{studentId}", h.UnenrollStudent)
					r.Post("/roster", h.UploadRoster)

					r.Post("/assignments", h.CreateAssignment)
					r.Get("/assignments", h.ListAssignments)

					r.Post("/quizzes", h.CreateQuiz)
					r.Get("/quizzes", h.ListQuizzes)

					r.Get("/gradebook", h.GetGradebook)
					r.Get("/gradebook/students/{studentId}", h.GetStudentGrade)
					r.Get("/gradebook/settings", h.GetSettings)
					r.Patch("/gradebook/settings", h.UpdateSettings)
					r.Put("/gradebook/settings", h.UpdateSettings)
					r.Post("/gradebook/exports", h.RequestExport)
				})
			})

			r.Route("/assignments/{id}", func(r chi.Router) {
				r.Get("/", h.GetAssignment)
				r.Put("/", h.UpdateAssignment)
				r.Patch("/", h.UpdateAssignment)
				r.Delete("/", h.DeleteAssignment)
				r.Get("/scores", h.ListScores)
				r.Put("/scores/{studentId}", h.GradeStudent)
			})

			r.Route("/quizzes/{id}", func(r chi.Router) {
				r.Get("/", h.GetQuiz)
				r.Put("/", h.UpdateQuiz)
				r.Patch("/", h.UpdateQuiz)
				r.Delete("/", h.DeleteQuiz)
				r.Post("/questions", h.AddQuestion)
				r.Put("/questions/{questionId}", h.UpdateQuestion)
				r.Put("/responses/{studentId}", h.SubmitResponses)
				r.Put("/overrides/{studentId}", h.SetOverride)
				r.Delete("/overrides/{studentId}", h.ClearOverride)
			})

			r.Get("/exports/{id}", h.GetExport)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "classroom-gradebook",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("Readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "Database is not reachable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
	})
}

// decode reads a JSON body into dst and runs struct validation. It writes
// the error response itself and reports whether the handler may continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.handleServiceError(w, err)
		return false
	}
	return true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   http.StatusText(http.StatusBadRequest),
			"message": verr.Error(),
			"fields":  verr.Fields,
		})
	case errors.Is(err, service.ErrClassroomNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrQuizNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrHolidayNotFound),
		errors.Is(err, service.ErrOverrideNotFound),
		errors.Is(err, service.ErrExportNotFound),
		errors.Is(err, service.ErrNotEnrolled):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeStatus(w, http.StatusOK, data)
}

func writeCreated(w http.ResponseWriter, data interface{}) {
	writeStatus(w, http.StatusCreated, data)
}

func writeStatus(w http.ResponseWriter, status int, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, status, response)
}
