package httpd

import (
	"net/http"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetGradebook(w http.ResponseWriter, r *http.Request) {
	gb, err := h.gradebook.GetGradebook(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, gb)
}

func (h *Handler) GetStudentGrade(w http.ResponseWriter, r *http.Request) {
	grade, err := h.gradebook.GetStudentGrade(r.Context(), teacherID(r), chi.URLParam(r, "id"), chi.URLParam(r, "studentId"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, grade)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, settings)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if !h.decode(w, r, &req) {
		return
	}

	settings, err := h.settings.UpdateSettings(r.Context(), teacherID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, settings)
}

func (h *Handler) RequestExport(w http.ResponseWriter, r *http.Request) {
	export, err := h.exports.RequestExport(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeStatus(w, http.StatusAccepted, export)
}

func (h *Handler) GetExport(w http.ResponseWriter, r *http.Request) {
	export, err := h.exports.GetExport(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, export)
}
