package enrollment

import (
	"context"
	"strings"

	"academia/internal/apperr"
	"academia/internal/auth"
	"academia/internal/directory"
)

var (
	ErrNotEnrolled     = apperr.NotFound("you have not joined a section")
	ErrMemberNotFound  = apperr.NotFound("student is not a member of this section")
	ErrOtherProgram    = apperr.Invalid("section belongs to another program")
	ErrCourseMismatch  = apperr.Invalid("course does not belong to this section's program")
	ErrFacultyMismatch = apperr.Invalid("faculty does not belong to this section's program")
)

// Store persists memberships and course assignments. Get methods return nil when absent.
type Store interface {
	MembershipByStudent(ctx context.Context, universityID, studentID string) (*Membership, error)
	SectionRollTaken(ctx context.Context, sectionID, rollNo string) (bool, error)
	UniversityRollTaken(ctx context.Context, universityID, rollNo string) (bool, error)
	CreateMembership(ctx context.Context, m Membership) (Membership, error)
	ListMembers(ctx context.Context, sectionID string, activeOnly bool) ([]Member, error)
	SetMemberStatus(ctx context.Context, sectionID, studentID, status string) (bool, error)

	GetAssignment(ctx context.Context, sectionID, courseID string) (*Assignment, error)
	CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
	ListAssignments(ctx context.Context, sectionID string) ([]AssignedCourse, error)
}

// Directory is the subset of directory lookups enrollment needs.
type Directory interface {
	GetSection(ctx context.Context, id string) (*directory.Section, error)
	GetCourse(ctx context.Context, id string) (*directory.Course, error)
	GetFaculty(ctx context.Context, id string) (*directory.Faculty, error)
}

// Service manages section rosters and course assignments.
type Service struct {
	store Store
	dir   Directory
}

func NewService(store Store, dir Directory) *Service {
	return &Service{store: store, dir: dir}
}

func (s *Service) section(ctx context.Context, p auth.Principal, id string) (directory.Section, error) {
	sec, err := s.dir.GetSection(ctx, id)
	if err != nil {
		return directory.Section{}, err
	}
	if sec == nil || !p.CanSee(sec.UniversityID, sec.ProgramID) {
		return directory.Section{}, directory.ErrSectionNotFound
	}
	return *sec, nil
}

// Join enrolls the calling student in a section of their own program.
func (s *Service) Join(ctx context.Context, p auth.Principal, sectionID string, in JoinInput) (Membership, error) {
	if !p.HasRole(auth.RoleStudent) {
		return Membership{}, apperr.ErrForbidden
	}
	sec, err := s.section(ctx, p, sectionID)
	if err != nil {
		return Membership{}, err
	}
	if sec.ProgramID != p.ProgramID {
		return Membership{}, ErrOtherProgram
	}

	uniRoll := strings.TrimSpace(in.UniversityRollNo)
	secRoll := strings.TrimSpace(in.SectionRollNo)
	if uniRoll == "" || secRoll == "" {
		return Membership{}, ErrBlankRollNumber
	}

	existing, err := s.store.MembershipByStudent(ctx, p.UniversityID, p.ID)
	if err != nil {
		return Membership{}, err
	}
	secTaken, err := s.store.SectionRollTaken(ctx, sec.ID, secRoll)
	if err != nil {
		return Membership{}, err
	}
	uniTaken, err := s.store.UniversityRollTaken(ctx, p.UniversityID, uniRoll)
	if err != nil {
		return Membership{}, err
	}
	if err := CheckJoin(existing, secTaken, uniTaken); err != nil {
		return Membership{}, err
	}

	return s.store.CreateMembership(ctx, Membership{
		UniversityID:     p.UniversityID,
		SectionID:        sec.ID,
		StudentID:        p.ID,
		UniversityRollNo: uniRoll,
		SectionRollNo:    secRoll,
		Status:           StatusActive,
	})
}

// Members lists a section's roster for staff of the tenant.
func (s *Service) Members(ctx context.Context, p auth.Principal, sectionID string) ([]Member, error) {
	if !p.HasRole(auth.RoleUniversity, auth.RoleSPOC, auth.RoleFaculty) {
		return nil, apperr.ErrForbidden
	}
	sec, err := s.section(ctx, p, sectionID)
	if err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, sec.ID, false)
}

// SetMemberStatus activates or deactivates a student's membership.
func (s *Service) SetMemberStatus(ctx context.Context, p auth.Principal, sectionID, studentID, status string) error {
	if !p.HasRole(auth.RoleSPOC) {
		return apperr.ErrForbidden
	}
	if status != StatusActive && status != StatusInactive {
		return apperr.Invalid("status must be active or inactive")
	}
	sec, err := s.section(ctx, p, sectionID)
	if err != nil {
		return err
	}
	ok, err := s.store.SetMemberStatus(ctx, sec.ID, studentID, status)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMemberNotFound
	}
	return nil
}

// MySection is the calling student's membership with its section.
type MySection struct {
	Membership Membership        `json:"membership"`
	Section    directory.Section `json:"section"`
}

func (s *Service) MySection(ctx context.Context, p auth.Principal) (MySection, error) {
	if !p.HasRole(auth.RoleStudent) {
		return MySection{}, apperr.ErrForbidden
	}
	m, err := s.store.MembershipByStudent(ctx, p.UniversityID, p.ID)
	if err != nil {
		return MySection{}, err
	}
	if m == nil {
		return MySection{}, ErrNotEnrolled
	}
	sec, err := s.dir.GetSection(ctx, m.SectionID)
	if err != nil {
		return MySection{}, err
	}
	if sec == nil {
		return MySection{}, ErrNotEnrolled
	}
	return MySection{Membership: *m, Section: *sec}, nil
}

// AssignCourse pairs a course with a section and names the teaching faculty.
func (s *Service) AssignCourse(ctx context.Context, p auth.Principal, sectionID string, in AssignInput) (Assignment, error) {
	if !p.HasRole(auth.RoleSPOC) {
		return Assignment{}, apperr.ErrForbidden
	}
	sec, err := s.section(ctx, p, sectionID)
	if err != nil {
		return Assignment{}, err
	}
	course, err := s.dir.GetCourse(ctx, in.CourseID)
	if err != nil {
		return Assignment{}, err
	}
	if course == nil || course.ProgramID != sec.ProgramID {
		return Assignment{}, ErrCourseMismatch
	}
	fac, err := s.dir.GetFaculty(ctx, in.FacultyID)
	if err != nil {
		return Assignment{}, err
	}
	if fac == nil || fac.ProgramID != sec.ProgramID {
		return Assignment{}, ErrFacultyMismatch
	}

	existing, err := s.store.GetAssignment(ctx, sec.ID, course.ID)
	if err != nil {
		return Assignment{}, err
	}
	if err := CheckAssign(existing); err != nil {
		return Assignment{}, err
	}
	return s.store.CreateAssignment(ctx, Assignment{SectionID: sec.ID, CourseID: course.ID, FacultyID: fac.ID})
}

// SectionCourses lists the courses assigned to a visible section.
func (s *Service) SectionCourses(ctx context.Context, p auth.Principal, sectionID string) ([]AssignedCourse, error) {
	sec, err := s.section(ctx, p, sectionID)
	if err != nil {
		return nil, err
	}
	return s.store.ListAssignments(ctx, sec.ID)
}
