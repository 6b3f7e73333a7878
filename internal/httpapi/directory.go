package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academia/internal/directory"
)

func (h *handler) registerUniversity(c *gin.Context) {
	var in directory.RegisterUniversityInput
	if !h.bind(c, &in) {
		return
	}
	u, err := h.Directory.RegisterUniversity(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "university registered", u)
}

func (h *handler) listUniversities(c *gin.Context) {
	list, err := h.Directory.ListUniversities(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "universities", list)
}

type universityStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

func (h *handler) setUniversityStatus(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrUniversityNotFound)
	if !valid {
		return
	}
	var req universityStatusRequest
	if !h.bind(c, &req) {
		return
	}
	u, err := h.Directory.SetUniversityStatus(c.Request.Context(), principal(c), id, *req.IsActive)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "university status updated", u)
}

func (h *handler) myUniversity(c *gin.Context) {
	u, err := h.Directory.MyUniversity(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "university", u)
}

func (h *handler) createProgram(c *gin.Context) {
	var in directory.ProgramInput
	if !h.bind(c, &in) {
		return
	}
	prog, err := h.Directory.CreateProgram(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "program created", prog)
}

func (h *handler) listPrograms(c *gin.Context) {
	list, err := h.Directory.ListPrograms(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "programs", list)
}

func (h *handler) getProgram(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrProgramNotFound)
	if !valid {
		return
	}
	prog, err := h.Directory.Program(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "program", prog)
}

func (h *handler) deleteProgram(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrProgramNotFound)
	if !valid {
		return
	}
	if err := h.Directory.DeleteProgram(c.Request.Context(), principal(c), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "program deleted", nil)
}

func (h *handler) createSPOC(c *gin.Context) {
	var in directory.SPOCInput
	if !h.bind(c, &in) {
		return
	}
	s, err := h.Directory.CreateSPOC(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "spoc created", s)
}

func (h *handler) listSPOCs(c *gin.Context) {
	list, err := h.Directory.ListSPOCs(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "spocs", list)
}

func (h *handler) createFaculty(c *gin.Context) {
	var in directory.FacultyInput
	if !h.bind(c, &in) {
		return
	}
	f, err := h.Directory.CreateFaculty(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "faculty created", f)
}

func (h *handler) listFaculty(c *gin.Context) {
	list, err := h.Directory.ListFaculty(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "faculty", list)
}

func (h *handler) getFaculty(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrFacultyNotFound)
	if !valid {
		return
	}
	f, err := h.Directory.Faculty(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "faculty", f)
}

func (h *handler) registerStudent(c *gin.Context) {
	var in directory.StudentInput
	if !h.bind(c, &in) {
		return
	}
	s, err := h.Directory.RegisterStudent(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "student registered", s)
}

func (h *handler) listStudents(c *gin.Context) {
	list, err := h.Directory.ListStudents(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "students", list)
}

func (h *handler) myProfile(c *gin.Context) {
	p := principal(c)
	s, err := h.Directory.Student(c.Request.Context(), p, p.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "student", s)
}

func (h *handler) getStudent(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrStudentNotFound)
	if !valid {
		return
	}
	s, err := h.Directory.Student(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "student", s)
}

func (h *handler) createSection(c *gin.Context) {
	var in directory.SectionInput
	if !h.bind(c, &in) {
		return
	}
	s, err := h.Directory.CreateSection(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "section created", s)
}

func (h *handler) listSections(c *gin.Context) {
	list, err := h.Directory.ListSections(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "sections", list)
}

func (h *handler) getSection(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrSectionNotFound)
	if !valid {
		return
	}
	s, err := h.Directory.Section(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "section", s)
}

type coordinatorRequest struct {
	FacultyID string `json:"facultyId" binding:"required,uuid"`
}

func (h *handler) assignCoordinator(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrSectionNotFound)
	if !valid {
		return
	}
	var req coordinatorRequest
	if !h.bind(c, &req) {
		return
	}
	s, err := h.Directory.AssignCoordinator(c.Request.Context(), principal(c), id, req.FacultyID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "coordinator assigned", s)
}

func (h *handler) createCourse(c *gin.Context) {
	var in directory.CourseInput
	if !h.bind(c, &in) {
		return
	}
	course, err := h.Directory.CreateCourse(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "course created", course)
}

func (h *handler) listCourses(c *gin.Context) {
	list, err := h.Directory.ListCourses(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "courses", list)
}

func (h *handler) getCourse(c *gin.Context) {
	id, valid := h.id(c, "id", directory.ErrCourseNotFound)
	if !valid {
		return
	}
	course, err := h.Directory.Course(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "course", course)
}
