package httpd

import (
	"net/http"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssignmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	assignment, err := h.assignments.CreateAssignment(r.Context(), teacherID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeCreated(w, assignment)
}

func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.assignments.ListAssignments(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if assignments == nil {
		assignments = []models.Assignment{}
	}
	writeSuccess(w, assignments)
}

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.assignments.GetAssignment(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, assignment)
}

func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAssignmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	assignment, err := h.assignments.UpdateAssignment(r.Context(), teacherID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, assignment)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.assignments.DeleteAssignment(r.Context(), teacherID(r), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Assignment deleted successfully",
	})
}

func (h *Handler) ListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.assignments.ListScores(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if scores == nil {
		scores = []models.RubricScore{}
	}
	writeSuccess(w, scores)
}

func (h *Handler) GradeStudent(w http.ResponseWriter, r *http.Request) {
	var req models.GradeAssignmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	score, err := h.assignments.GradeStudent(r.Context(), teacherID(r), chi.URLParam(r, "id"), chi.URLParam(r, "studentId"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, score)
}
