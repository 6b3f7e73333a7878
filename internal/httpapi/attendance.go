package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academia/internal/attendance"
	"academia/internal/directory"
	"academia/internal/timetable"
)

func (h *handler) markAttendance(c *gin.Context) {
	id, valid := h.id(c, "timetableId", timetable.ErrNotFound)
	if !valid {
		return
	}
	var in attendance.MarkInput
	if !h.bind(c, &in) {
		return
	}
	rec, err := h.Attendance.Mark(c.Request.Context(), principal(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "attendance saved", rec)
}

func (h *handler) classAttendance(c *gin.Context) {
	id, valid := h.id(c, "timetableId", timetable.ErrNotFound)
	if !valid {
		return
	}
	sheet, err := h.Attendance.ForClass(c.Request.Context(), principal(c), id, c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "attendance", sheet)
}

func (h *handler) studentAttendance(c *gin.Context) {
	id, valid := h.id(c, "studentId", directory.ErrStudentNotFound)
	if !valid {
		return
	}
	rep, err := h.Attendance.ForStudent(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "student attendance", rep)
}

func (h *handler) sectionAttendance(c *gin.Context) {
	id, valid := h.id(c, "sectionId", directory.ErrSectionNotFound)
	if !valid {
		return
	}
	list, err := h.Attendance.ForSection(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "section attendance", list)
}
