package httpd

import (
	"errors"
	"io"
	"net/http"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	var req models.EnrollStudentRequest
	if !h.decode(w, r, &req) {
		return
	}

	student, created, err := h.roster.EnrollStudent(r.Context(), teacherID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if created {
		writeCreated(w, student)
		return
	}
	writeSuccess(w, student)
}

func (h *Handler) ListRoster(w http.ResponseWriter, r *http.Request) {
	students, err := h.roster.ListRoster(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if students == nil {
		students = []models.EnrolledStudent{}
	}
	writeSuccess(w, students)
}

func (h *Handler) UnenrollStudent(w http.ResponseWriter, r *http.Request) {
	err := h.roster.UnenrollStudent(r.Context(), teacherID(r), chi.URLParam(r, "id"), chi.URLParam(r, "studentId"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Student unenrolled successfully",
	})
}

// UploadRoster accepts a multipart form with a "file" part holding a .csv
// or .xlsx roster.
func (h *Handler) UploadRoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<10)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Roster file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	if int64(len(data)) > h.maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "Roster file is too large")
		return
	}

	result, err := h.roster.UploadRoster(r.Context(), teacherID(r), chi.URLParam(r, "id"), header.Filename, data)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, result)
}
