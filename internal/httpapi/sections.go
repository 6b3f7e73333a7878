package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academia/internal/directory"
	"academia/internal/enrollment"
)

func (h *handler) joinSection(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrSectionNotFound)
	if !valid {
		return
	}
	var in enrollment.JoinInput
	if !h.bind(c, &in) {
		return
	}
	m, err := h.Enrollment.Join(c.Request.Context(), principal(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "joined section", m)
}

func (h *handler) sectionMembers(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrSectionNotFound)
	if !valid {
		return
	}
	list, err := h.Enrollment.Members(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "section students", list)
}

func (h *handler) setMemberStatus(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrSectionNotFound)
	if !valid {
		return
	}
	studentID, valid := h.id(c, "studentId", enrollment.ErrMemberNotFound)
	if !valid {
		return
	}
	var in enrollment.StatusInput
	if !h.bind(c, &in) {
		return
	}
	if err := h.Enrollment.SetMemberStatus(c.Request.Context(), principal(c), id, studentID, in.Status); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "student status updated", gin.H{"sectionId": id, "studentId": studentID, "status": in.Status})
}

func (h *handler) mySection(c *gin.Context) {
	s, err := h.Enrollment.MySection(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "section", s)
}

func (h *handler) assignCourse(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrSectionNotFound)
	if !valid {
		return
	}
	var in enrollment.AssignInput
	if !h.bind(c, &in) {
		return
	}
	a, err := h.Enrollment.AssignCourse(c.Request.Context(), principal(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "course assigned", a)
}

func (h *handler) sectionCourses(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrSectionNotFound)
	if !valid {
		return
	}
	list, err := h.Enrollment.SectionCourses(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "section courses", list)
}
