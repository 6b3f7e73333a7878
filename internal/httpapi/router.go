// Package httpapi exposes the domain services over gin.
package httpapi

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"academia/internal/activity"
	"academia/internal/attendance"
	"academia/internal/auth"
	"academia/internal/directory"
	"academia/internal/enrollment"
	"academia/internal/reports"
	"academia/internal/timetable"
)

type AuthService interface {
	Login(ctx context.Context, role, email, password string) (auth.Session, error)
	Logout(ctx context.Context, claims auth.Claims) error
	TTL() time.Duration
}

type DirectoryService interface {
	RegisterUniversity(ctx context.Context, in directory.RegisterUniversityInput) (directory.University, error)
	ListUniversities(ctx context.Context, p auth.Principal) ([]directory.University, error)
	SetUniversityStatus(ctx context.Context, p auth.Principal, id string, active bool) (directory.University, error)
	MyUniversity(ctx context.Context, p auth.Principal) (directory.University, error)
	CreateProgram(ctx context.Context, p auth.Principal, in directory.ProgramInput) (directory.Program, error)
	ListPrograms(ctx context.Context, p auth.Principal) ([]directory.Program, error)
	Program(ctx context.Context, p auth.Principal, id string) (directory.Program, error)
	DeleteProgram(ctx context.Context, p auth.Principal, id string) error
	CreateSPOC(ctx context.Context, p auth.Principal, in directory.SPOCInput) (directory.SPOC, error)
	ListSPOCs(ctx context.Context, p auth.Principal) ([]directory.SPOC, error)
	CreateFaculty(ctx context.Context, p auth.Principal, in directory.FacultyInput) (directory.Faculty, error)
	ListFaculty(ctx context.Context, p auth.Principal) ([]directory.Faculty, error)
	Faculty(ctx context.Context, p auth.Principal, id string) (directory.Faculty, error)
	RegisterStudent(ctx context.Context, in directory.StudentInput) (directory.Student, error)
	ListStudents(ctx context.Context, p auth.Principal) ([]directory.Student, error)
	Student(ctx context.Context, p auth.Principal, id string) (directory.Student, error)
	CreateSection(ctx context.Context, p auth.Principal, in directory.SectionInput) (directory.Section, error)
	ListSections(ctx context.Context, p auth.Principal) ([]directory.Section, error)
	Section(ctx context.Context, p auth.Principal, id string) (directory.Section, error)
	AssignCoordinator(ctx context.Context, p auth.Principal, sectionID, facultyID string) (directory.Section, error)
	CreateCourse(ctx context.Context, p auth.Principal, in directory.CourseInput) (directory.Course, error)
	ListCourses(ctx context.Context, p auth.Principal) ([]directory.Course, error)
	Course(ctx context.Context, p auth.Principal, id string) (directory.Course, error)
}

type EnrollmentService interface {
	Join(ctx context.Context, p auth.Principal, sectionID string, in enrollment.JoinInput) (enrollment.Membership, error)
	Members(ctx context.Context, p auth.Principal, sectionID string) ([]enrollment.Member, error)
	SetMemberStatus(ctx context.Context, p auth.Principal, sectionID, studentID, status string) error
	MySection(ctx context.Context, p auth.Principal) (enrollment.MySection, error)
	AssignCourse(ctx context.Context, p auth.Principal, sectionID string, in enrollment.AssignInput) (enrollment.Assignment, error)
	SectionCourses(ctx context.Context, p auth.Principal, sectionID string) ([]enrollment.AssignedCourse, error)
}

type TimetableService interface {
	Create(ctx context.Context, p auth.Principal, in timetable.CreateInput) (timetable.Entry, error)
	BySection(ctx context.Context, p auth.Principal, sectionID string) ([]timetable.Entry, error)
	Mine(ctx context.Context, p auth.Principal) ([]timetable.Entry, error)
	Entry(ctx context.Context, p auth.Principal, id string) (timetable.Entry, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type AttendanceService interface {
	Mark(ctx context.Context, p auth.Principal, timetableID string, in attendance.MarkInput) (attendance.Record, error)
	ForClass(ctx context.Context, p auth.Principal, timetableID, date string) (attendance.ClassSheet, error)
	ForStudent(ctx context.Context, p auth.Principal, studentID string) (attendance.StudentReport, error)
	ForSection(ctx context.Context, p auth.Principal, sectionID string) ([]attendance.Record, error)
}

type ActivityService interface {
	Submit(ctx context.Context, p auth.Principal, in activity.CreateInput) (activity.Activity, error)
	Mine(ctx context.Context, p auth.Principal, typ string) ([]activity.Activity, error)
	Pending(ctx context.Context, p auth.Principal) ([]activity.Activity, error)
	Get(ctx context.Context, p auth.Principal, id string) (activity.Activity, error)
	History(ctx context.Context, p auth.Principal, id string) ([]activity.Event, error)
	SetStatus(ctx context.Context, p auth.Principal, id string, in activity.StatusInput) (activity.Activity, error)
}

type ReportService interface {
	Create(ctx context.Context, p auth.Principal, in reports.Input) (reports.Report, error)
	List(ctx context.Context, p auth.Principal, kind string) ([]reports.Report, error)
	Get(ctx context.Context, p auth.Principal, id, kind string) (reports.Report, error)
	Update(ctx context.Context, p auth.Principal, id string, in reports.Input) (reports.Report, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

// Cookie configures the session cookie set at login.
type Cookie struct {
	Name   string
	Secure bool
}

// Deps are the services and middleware the API is built from. LoginLimit
// may be nil.
type Deps struct {
	Auth       AuthService
	Directory  DirectoryService
	Enrollment EnrollmentService
	Timetable  TimetableService
	Attendance AttendanceService
	Activity   ActivityService
	Reports    ReportService
	Sessions   *auth.Middleware
	LoginLimit gin.HandlerFunc
	Cookie     Cookie
	Log        *zap.Logger
	RenderPDF  func(w io.Writer, rep reports.Report) error
}

type handler struct {
	Deps
	log *zap.Logger
}

// Register mounts every /api route on r.
func Register(r gin.IRouter, d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.RenderPDF == nil {
		d.RenderPDF = reports.RenderPDF
	}
	h := &handler{Deps: d, log: d.Log}
	api := r.Group("/api")

	login := []gin.HandlerFunc{}
	if d.LoginLimit != nil {
		login = append(login, d.LoginLimit)
	}
	login = append(login, h.login)
	api.POST("/auth/login", login...)
	api.POST("/universities/register", h.registerUniversity)
	api.POST("/students/register", h.registerStudent)

	in := api.Group("", d.Sessions.Required())
	in.POST("/auth/logout", h.logout)
	in.GET("/auth/me", h.me)

	admin := auth.RequireRoles(auth.RoleAdmin)
	university := auth.RequireRoles(auth.RoleUniversity)
	spoc := auth.RequireRoles(auth.RoleSPOC)
	student := auth.RequireRoles(auth.RoleStudent)
	staff := auth.RequireRoles(auth.RoleUniversity, auth.RoleSPOC)
	approver := auth.RequireRoles(auth.RoleFaculty, auth.RoleSPOC)

	in.GET("/universities", admin, h.listUniversities)
	in.PATCH("/universities/:id/status", admin, h.setUniversityStatus)
	in.GET("/universities/me", university, h.myUniversity)

	in.POST("/programs", university, h.createProgram)
	in.GET("/programs", h.listPrograms)
	in.GET("/programs/:id", h.getProgram)
	in.DELETE("/programs/:id", university, h.deleteProgram)

	in.POST("/spocs", university, h.createSPOC)
	in.GET("/spocs", university, h.listSPOCs)

	in.POST("/faculty", staff, h.createFaculty)
	in.GET("/faculty", h.listFaculty)
	in.GET("/faculty/:id", h.getFaculty)

	in.GET("/students", h.listStudents)
	in.GET("/students/me", student, h.myProfile)
	in.GET("/students/me/section", student, h.mySection)
	in.GET("/students/:id", h.getStudent)

	in.POST("/sections", spoc, h.createSection)
	in.GET("/sections", h.listSections)
	in.GET("/sections/:id", h.getSection)
	in.PATCH("/sections/:id/coordinator", spoc, h.assignCoordinator)
	in.POST("/sections/:id/join", student, h.joinSection)
	in.GET("/sections/:id/students", h.sectionMembers)
	in.PATCH("/sections/:id/students/:studentId", spoc, h.setMemberStatus)
	in.POST("/sections/:id/courses", spoc, h.assignCourse)
	in.GET("/sections/:id/courses", h.sectionCourses)

	in.POST("/courses", spoc, h.createCourse)
	in.GET("/courses", h.listCourses)
	in.GET("/courses/:id", h.getCourse)

	in.POST("/timetable", spoc, h.createEntry)
	in.GET("/timetable/mine", h.myTimetable)
	in.GET("/timetable/section/:sectionId", h.sectionTimetable)
	in.GET("/timetable/:id", h.getEntry)
	in.DELETE("/timetable/:id", spoc, h.deleteEntry)

	in.POST("/attendance/:timetableId", approver, h.markAttendance)
	in.GET("/attendance/:timetableId", h.classAttendance)
	in.GET("/attendance/student/:studentId", h.studentAttendance)
	in.GET("/attendance/section/:sectionId", h.sectionAttendance)

	in.POST("/student-details", student, h.submitActivity)
	in.GET("/student-details/mine", student, h.myActivities)
	in.GET("/student-details/pending", approver, h.pendingActivities)
	in.GET("/student-details/:id", h.getActivity)
	in.GET("/student-details/:id/history", h.activityHistory)
	in.PATCH("/student-details/:id/status", approver, h.setActivityStatus)

	rep := in.Group("/reports", staff)
	rep.POST("", h.createReport)
	rep.GET("", h.listReports)
	rep.GET("/:id", h.getReport)
	rep.PUT("/:id", h.updateReport)
	rep.DELETE("/:id", h.deleteReport)
	rep.GET("/:id/pdf", h.reportPDF(reports.KindInstitutional))
	rep.GET("/naac/:id/pdf", h.reportPDF(reports.KindNAAC))
	rep.GET("/nirf/:id/pdf", h.reportPDF(reports.KindNIRF))
}
