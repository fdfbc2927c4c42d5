package httpd

import (
	"net/http"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuizRequest
	if !h.decode(w, r, &req) {
		return
	}

	quiz, err := h.quizzes.CreateQuiz(r.Context(), teacherID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeCreated(w, quiz)
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListQuizzes(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if quizzes == nil {
		quizzes = []models.Quiz{}
	}
	writeSuccess(w, quizzes)
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.GetQuiz(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, quiz)
}

func (h *Handler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateQuizRequest
	if !h.decode(w, r, &req) {
		return
	}

	quiz, err := h.quizzes.UpdateQuiz(r.Context(), teacherID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, quiz)
}

func (h *Handler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.DeleteQuiz(r.Context(), teacherID(r), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Quiz deleted successfully",
	})
}

func (h *Handler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuestionRequest
	if !h.decode(w, r, &req) {
		return
	}

	question, err := h.quizzes.AddQuestion(r.Context(), teacherID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeCreated(w, question)
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateQuestionRequest
	if !h.decode(w, r, &req) {
		return
	}

	question, err := h.quizzes.UpdateQuestion(r.Context(), teacherID(r), chi.URLParam(r, "id"), chi.URLParam(r, "questionId"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, question)
}

func (h *Handler) SubmitResponses(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitResponsesRequest
	if !h.decode(w, r, &req) {
		return
	}

	responses, err := h.quizzes.SubmitResponses(r.Context(), teacherID(r), chi.URLParam(r, "id"), chi.URLParam(r, "studentId"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, responses)
}

func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	var req models.SetOverrideRequest
	if !h.decode(w, r, &req) {
		return
	}

	override, err := h.quizzes.SetOverride(r.Context(), teacherID(r), chi.URLParam(r, "id"), chi.URLParam(r, "studentId"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, override)
}

func (h *Handler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	err := h.quizzes.ClearOverride(r.Context(), teacherID(r), chi.URLParam(r, "id"), chi.URLParam(r, "studentId"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Override cleared successfully",
	})
}
