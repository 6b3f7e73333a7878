package directory

import (
	"time"

	"academia/internal/apperr"
)

var (
	ErrUniversityNotFound = apperr.NotFound("university not found")
	ErrProgramNotFound    = apperr.NotFound("program not found")
	ErrFacultyNotFound    = apperr.NotFound("faculty not found")
	ErrStudentNotFound    = apperr.NotFound("student not found")
	ErrSectionNotFound    = apperr.NotFound("section not found")
	ErrCourseNotFound     = apperr.NotFound("course not found")

	ErrEmailTaken          = apperr.Conflict("email already registered")
	ErrUniversityCodeTaken = apperr.Conflict("university code already registered")
	ErrProgramCodeTaken    = apperr.Conflict("program code already exists in this university")
	ErrSectionExists       = apperr.Conflict("section already exists for this program, year and semester")
	ErrCourseCodeTaken     = apperr.Conflict("course code already exists in this program")
	ErrProgramInUse        = apperr.Conflict("program still has accounts, sections or courses")
	ErrProgramMismatch     = apperr.Invalid("program does not belong to this university")
	ErrFacultyOutOfProgram = apperr.Invalid("faculty does not belong to this program")
)

type University struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Website   string    `json:"website"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type Program struct {
	ID            string    `json:"id"`
	UniversityID  string    `json:"universityId"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	DurationYears int       `json:"durationYears"`
	CreatedAt     time.Time `json:"createdAt"`
}

type SPOC struct {
	ID           string    `json:"id"`
	UniversityID string    `json:"universityId"`
	ProgramID    string    `json:"programId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Faculty struct {
	ID           string    `json:"id"`
	UniversityID string    `json:"universityId"`
	ProgramID    string    `json:"programId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Department   string    `json:"department"`
	Designation  string    `json:"designation"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Student struct {
	ID           string    `json:"id"`
	UniversityID string    `json:"universityId"`
	ProgramID    string    `json:"programId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Section is a cohort of students within a program, year and semester.
type Section struct {
	ID            string    `json:"id"`
	UniversityID  string    `json:"universityId"`
	ProgramID     string    `json:"programId"`
	Name          string    `json:"name"`
	Year          int       `json:"year"`
	Semester      int       `json:"semester"`
	CoordinatorID *string   `json:"coordinatorId"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IsCoordinator reports whether facultyID coordinates the section.
func (s Section) IsCoordinator(facultyID string) bool {
	return s.CoordinatorID != nil && *s.CoordinatorID == facultyID
}

type Course struct {
	ID           string    `json:"id"`
	UniversityID string    `json:"universityId"`
	ProgramID    string    `json:"programId"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Semester     int       `json:"semester"`
	Credits      int       `json:"credits"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Filter scopes list queries to a tenant. Empty fields do not filter.
type Filter struct {
	UniversityID string
	ProgramID    string
}

type RegisterUniversityInput struct {
	Name     string `json:"name" binding:"required"`
	Code     string `json:"code" binding:"required,max=20"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Address  string `json:"address"`
	Website  string `json:"website" binding:"omitempty,url"`
}

type ProgramInput struct {
	Name          string `json:"name" binding:"required"`
	Code          string `json:"code" binding:"required,max=20"`
	DurationYears int    `json:"durationYears" binding:"omitempty,min=1,max=6"`
}

type SPOCInput struct {
	ProgramID string `json:"programId" binding:"required,uuid"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	Phone     string `json:"phone"`
}

type FacultyInput struct {
	ProgramID   string `json:"programId" binding:"omitempty,uuid"`
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
}

type StudentInput struct {
	UniversityID string `json:"universityId" binding:"required,uuid"`
	ProgramID    string `json:"programId" binding:"required,uuid"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
}

type SectionInput struct {
	Name     string `json:"name" binding:"required,max=20"`
	Year     int    `json:"year" binding:"required,min=1,max=6"`
	Semester int    `json:"semester" binding:"required,min=1,max=12"`
}

type CourseInput struct {
	Code     string `json:"code" binding:"required,max=20"`
	Name     string `json:"name" binding:"required"`
	Semester int    `json:"semester" binding:"omitempty,min=1,max=12"`
	Credits  int    `json:"credits" binding:"omitempty,min=0,max=40"`
}
