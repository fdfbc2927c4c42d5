package httpd

import (
	"net/http"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateClassroom(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClassroomRequest
	if !h.decode(w, r, &req) {
		return
	}

	classroom, err := h.classrooms.CreateClassroom(r.Context(), teacherID(r), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeCreated(w, classroom)
}

func (h *Handler) ListClassrooms(w http.ResponseWriter, r *http.Request) {
	classrooms, err := h.classrooms.ListClassrooms(r.Context(), teacherID(r))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if classrooms == nil {
		classrooms = []models.Classroom{}
	}
	writeSuccess(w, classrooms)
}

func (h *Handler) GetClassroom(w http.ResponseWriter, r *http.Request) {
	classroom, err := h.classrooms.GetClassroom(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, classroom)
}

func (h *Handler) UpdateClassroom(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateClassroomRequest
	if !h.decode(w, r, &req) {
		return
	}

	classroom, err := h.classrooms.UpdateClassroom(r.Context(), teacherID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, classroom)
}

func (h *Handler) DeleteClassroom(w http.ResponseWriter, r *http.Request) {
	if err := h.classrooms.DeleteClassroom(r.Context(), teacherID(r), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Classroom deleted successfully",
	})
}

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	cal, err := h.classrooms.GetCalendar(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, cal)
}

func (h *Handler) AddHoliday(w http.ResponseWriter, r *http.Request) {
	var req models.CreateHolidayRequest
	if !h.decode(w, r, &req) {
		return
	}

	holiday, err := h.classrooms.AddHoliday(r.Context(), teacherID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeCreated(w, holiday)
}

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.classrooms.ListHolidays(r.Context(), teacherID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if holidays == nil {
		holidays = []models.Holiday{}
	}
	writeSuccess(w, holidays)
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	err := h.classrooms.DeleteHoliday(r.Context(), teacherID(r), chi.URLParam(r, "id"), chi.URLParam(r, "holidayId"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Holiday deleted successfully",
	})
}
