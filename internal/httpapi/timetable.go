package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academia/internal/directory"
	"academia/internal/timetable"
)

func (h *handler) createEntry(c *gin.Context) {
	var in timetable.CreateInput
	if !h.bind(c, &in) {
		return
	}
	e, err := h.Timetable.Create(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "timetable entry created", e)
}

func (h *handler) myTimetable(c *gin.Context) {
	list, err := h.Timetable.Mine(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "timetable", list)
}

func (h *handler) sectionTimetable(c *gin.Context) {
	id, valid := h.id(c, "sectionId", directory.ErrSectionNotFound)
	if !valid {
		return
	}
	list, err := h.Timetable.BySection(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "timetable", list)
}

func (h *handler) getEntry(c *gin.Context) {
	id, valid := h.id(c, "id", timetable.ErrNotFound)
	if !valid {
		return
	}
	e, err := h.Timetable.Entry(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "timetable entry", e)
}

func (h *handler) deleteEntry(c *gin.Context) {
	id, valid := h.id(c, "id", timetable.ErrNotFound)
	if !valid {
		return
	}
	if err := h.Timetable.Delete(c.Request.Context(), principal(c), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "timetable entry deleted", nil)
}
