package directory

import (
	"context"
	"strings"

	"academia/internal/apperr"
	"academia/internal/auth"
)

// Store persists directory records. Get methods return nil when the record does not exist.
type Store interface {
	auth.AccountStore

	CreateUniversity(ctx context.Context, u University, passwordHash string) (University, error)
	ListUniversities(ctx context.Context) ([]University, error)
	GetUniversity(ctx context.Context, id string) (*University, error)
	SetUniversityActive(ctx context.Context, id string, active bool) error

	CreateProgram(ctx context.Context, p Program) (Program, error)
	ListPrograms(ctx context.Context, universityID string) ([]Program, error)
	GetProgram(ctx context.Context, id string) (*Program, error)
	DeleteProgram(ctx context.Context, id string) error
	CountDependents(ctx context.Context, programID string) (int, error)

	CreateSPOC(ctx context.Context, s SPOC, passwordHash string) (SPOC, error)
	ListSPOCs(ctx context.Context, f Filter) ([]SPOC, error)

	CreateFaculty(ctx context.Context, f Faculty, passwordHash string) (Faculty, error)
	ListFaculty(ctx context.Context, f Filter) ([]Faculty, error)
	GetFaculty(ctx context.Context, id string) (*Faculty, error)

	CreateStudent(ctx context.Context, s Student, passwordHash string) (Student, error)
	ListStudents(ctx context.Context, f Filter) ([]Student, error)
	GetStudent(ctx context.Context, id string) (*Student, error)

	CreateSection(ctx context.Context, s Section) (Section, error)
	ListSections(ctx context.Context, f Filter) ([]Section, error)
	GetSection(ctx context.Context, id string) (*Section, error)
	SetCoordinator(ctx context.Context, sectionID, facultyID string) error

	CreateCourse(ctx context.Context, c Course) (Course, error)
	ListCourses(ctx context.Context, f Filter) ([]Course, error)
	GetCourse(ctx context.Context, id string) (*Course, error)
}

// Service manages universities and the records they own.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func scope(p auth.Principal) Filter {
	f := Filter{UniversityID: p.UniversityID}
	if p.ProgramScoped() {
		f.ProgramID = p.ProgramID
	}
	return f
}

// RegisterUniversity creates an active university account. It is a public operation.
func (s *Service) RegisterUniversity(ctx context.Context, in RegisterUniversityInput) (University, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return University{}, err
	}
	u := University{
		Name:     strings.TrimSpace(in.Name),
		Code:     strings.ToUpper(strings.TrimSpace(in.Code)),
		Email:    auth.NormalizeEmail(in.Email),
		Address:  strings.TrimSpace(in.Address),
		Website:  strings.TrimSpace(in.Website),
		IsActive: true,
	}
	return s.store.CreateUniversity(ctx, u, hash)
}

func (s *Service) ListUniversities(ctx context.Context, p auth.Principal) ([]University, error) {
	if !p.HasRole(auth.RoleAdmin) {
		return nil, apperr.ErrForbidden
	}
	return s.store.ListUniversities(ctx)
}

// SetUniversityStatus activates or deactivates a university. Members of an
// inactive university can no longer log in.
func (s *Service) SetUniversityStatus(ctx context.Context, p auth.Principal, id string, active bool) (University, error) {
	if !p.HasRole(auth.RoleAdmin) {
		return University{}, apperr.ErrForbidden
	}
	u, err := s.store.GetUniversity(ctx, id)
	if err != nil {
		return University{}, err
	}
	if u == nil {
		return University{}, ErrUniversityNotFound
	}
	if err := s.store.SetUniversityActive(ctx, id, active); err != nil {
		return University{}, err
	}
	u.IsActive = active
	return *u, nil
}

func (s *Service) MyUniversity(ctx context.Context, p auth.Principal) (University, error) {
	if p.UniversityID == "" {
		return University{}, ErrUniversityNotFound
	}
	u, err := s.store.GetUniversity(ctx, p.UniversityID)
	if err != nil {
		return University{}, err
	}
	if u == nil {
		return University{}, ErrUniversityNotFound
	}
	return *u, nil
}

func (s *Service) CreateProgram(ctx context.Context, p auth.Principal, in ProgramInput) (Program, error) {
	if !p.HasRole(auth.RoleUniversity) {
		return Program{}, apperr.ErrForbidden
	}
	years := in.DurationYears
	if years == 0 {
		years = 4
	}
	return s.store.CreateProgram(ctx, Program{
		UniversityID:  p.UniversityID,
		Name:          strings.TrimSpace(in.Name),
		Code:          strings.ToUpper(strings.TrimSpace(in.Code)),
		DurationYears: years,
	})
}

func (s *Service) ListPrograms(ctx context.Context, p auth.Principal) ([]Program, error) {
	if p.UniversityID == "" {
		return nil, apperr.ErrForbidden
	}
	return s.store.ListPrograms(ctx, p.UniversityID)
}

// Program returns a program visible to p.
func (s *Service) Program(ctx context.Context, p auth.Principal, id string) (Program, error) {
	prog, err := s.store.GetProgram(ctx, id)
	if err != nil {
		return Program{}, err
	}
	if prog == nil || !p.CanSee(prog.UniversityID, "") {
		return Program{}, ErrProgramNotFound
	}
	return *prog, nil
}

// DeleteProgram removes a program nothing is attached to yet.
func (s *Service) DeleteProgram(ctx context.Context, p auth.Principal, id string) error {
	if !p.HasRole(auth.RoleUniversity) {
		return apperr.ErrForbidden
	}
	if _, err := s.Program(ctx, p, id); err != nil {
		return err
	}
	n, err := s.store.CountDependents(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrProgramInUse
	}
	return s.store.DeleteProgram(ctx, id)
}

func (s *Service) CreateSPOC(ctx context.Context, p auth.Principal, in SPOCInput) (SPOC, error) {
	if !p.HasRole(auth.RoleUniversity) {
		return SPOC{}, apperr.ErrForbidden
	}
	if _, err := s.ownProgram(ctx, p, in.ProgramID); err != nil {
		return SPOC{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return SPOC{}, err
	}
	return s.store.CreateSPOC(ctx, SPOC{
		UniversityID: p.UniversityID,
		ProgramID:    in.ProgramID,
		Name:         strings.TrimSpace(in.Name),
		Email:        auth.NormalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
	}, hash)
}

func (s *Service) ListSPOCs(ctx context.Context, p auth.Principal) ([]SPOC, error) {
	if !p.HasRole(auth.RoleUniversity) {
		return nil, apperr.ErrForbidden
	}
	return s.store.ListSPOCs(ctx, Filter{UniversityID: p.UniversityID})
}

// ownProgram checks that programID belongs to the principal's university.
func (s *Service) ownProgram(ctx context.Context, p auth.Principal, programID string) (Program, error) {
	prog, err := s.store.GetProgram(ctx, programID)
	if err != nil {
		return Program{}, err
	}
	if prog == nil || prog.UniversityID != p.UniversityID {
		return Program{}, ErrProgramMismatch
	}
	return *prog, nil
}

// CreateFaculty adds a faculty member. A SPOC always creates into its own program.
func (s *Service) CreateFaculty(ctx context.Context, p auth.Principal, in FacultyInput) (Faculty, error) {
	if !p.HasRole(auth.RoleUniversity, auth.RoleSPOC) {
		return Faculty{}, apperr.ErrForbidden
	}
	programID := in.ProgramID
	if p.Role == auth.RoleSPOC {
		programID = p.ProgramID
	}
	if programID == "" {
		return Faculty{}, apperr.Invalid("programId is required")
	}
	if _, err := s.ownProgram(ctx, p, programID); err != nil {
		return Faculty{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Faculty{}, err
	}
	return s.store.CreateFaculty(ctx, Faculty{
		UniversityID: p.UniversityID,
		ProgramID:    programID,
		Name:         strings.TrimSpace(in.Name),
		Email:        auth.NormalizeEmail(in.Email),
		Department:   strings.TrimSpace(in.Department),
		Designation:  strings.TrimSpace(in.Designation),
	}, hash)
}

func (s *Service) ListFaculty(ctx context.Context, p auth.Principal) ([]Faculty, error) {
	if !p.HasRole(auth.RoleUniversity, auth.RoleSPOC, auth.RoleFaculty) {
		return nil, apperr.ErrForbidden
	}
	return s.store.ListFaculty(ctx, scope(p))
}

// Faculty returns a faculty member visible to p.
func (s *Service) Faculty(ctx context.Context, p auth.Principal, id string) (Faculty, error) {
	f, err := s.store.GetFaculty(ctx, id)
	if err != nil {
		return Faculty{}, err
	}
	if f == nil || !p.CanSee(f.UniversityID, f.ProgramID) {
		return Faculty{}, ErrFacultyNotFound
	}
	return *f, nil
}

// RegisterStudent is the public student sign-up. The program must belong to the university.
func (s *Service) RegisterStudent(ctx context.Context, in StudentInput) (Student, error) {
	uni, err := s.store.GetUniversity(ctx, in.UniversityID)
	if err != nil {
		return Student{}, err
	}
	if uni == nil || !uni.IsActive {
		return Student{}, ErrUniversityNotFound
	}
	prog, err := s.store.GetProgram(ctx, in.ProgramID)
	if err != nil {
		return Student{}, err
	}
	if prog == nil || prog.UniversityID != uni.ID {
		return Student{}, ErrProgramMismatch
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Student{}, err
	}
	return s.store.CreateStudent(ctx, Student{
		UniversityID: uni.ID,
		ProgramID:    prog.ID,
		Name:         strings.TrimSpace(in.Name),
		Email:        auth.NormalizeEmail(in.Email),
	}, hash)
}

func (s *Service) ListStudents(ctx context.Context, p auth.Principal) ([]Student, error) {
	if !p.HasRole(auth.RoleUniversity, auth.RoleSPOC, auth.RoleFaculty) {
		return nil, apperr.ErrForbidden
	}
	return s.store.ListStudents(ctx, scope(p))
}

// Student returns a student visible to p. Students only see themselves.
func (s *Service) Student(ctx context.Context, p auth.Principal, id string) (Student, error) {
	if p.Role == auth.RoleStudent && p.ID != id {
		return Student{}, ErrStudentNotFound
	}
	st, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if st == nil || !p.CanSee(st.UniversityID, st.ProgramID) {
		return Student{}, ErrStudentNotFound
	}
	return *st, nil
}

func (s *Service) CreateSection(ctx context.Context, p auth.Principal, in SectionInput) (Section, error) {
	if !p.HasRole(auth.RoleSPOC) {
		return Section{}, apperr.ErrForbidden
	}
	return s.store.CreateSection(ctx, Section{
		UniversityID: p.UniversityID,
		ProgramID:    p.ProgramID,
		Name:         strings.TrimSpace(in.Name),
		Year:         in.Year,
		Semester:     in.Semester,
		CreatedBy:    p.ID,
	})
}

func (s *Service) ListSections(ctx context.Context, p auth.Principal) ([]Section, error) {
	if p.UniversityID == "" {
		return nil, apperr.ErrForbidden
	}
	f := scope(p)
	if p.Role == auth.RoleStudent {
		f.ProgramID = p.ProgramID
	}
	return s.store.ListSections(ctx, f)
}

// Section returns a section visible to p.
func (s *Service) Section(ctx context.Context, p auth.Principal, id string) (Section, error) {
	sec, err := s.store.GetSection(ctx, id)
	if err != nil {
		return Section{}, err
	}
	if sec == nil || !p.CanSee(sec.UniversityID, sec.ProgramID) {
		return Section{}, ErrSectionNotFound
	}
	return *sec, nil
}

// AssignCoordinator makes a faculty member of the section's program its coordinator.
func (s *Service) AssignCoordinator(ctx context.Context, p auth.Principal, sectionID, facultyID string) (Section, error) {
	if !p.HasRole(auth.RoleSPOC) {
		return Section{}, apperr.ErrForbidden
	}
	sec, err := s.Section(ctx, p, sectionID)
	if err != nil {
		return Section{}, err
	}
	f, err := s.store.GetFaculty(ctx, facultyID)
	if err != nil {
		return Section{}, err
	}
	if f == nil || f.UniversityID != sec.UniversityID || f.ProgramID != sec.ProgramID {
		return Section{}, ErrFacultyOutOfProgram
	}
	if err := s.store.SetCoordinator(ctx, sec.ID, f.ID); err != nil {
		return Section{}, err
	}
	sec.CoordinatorID = &f.ID
	return sec, nil
}

func (s *Service) CreateCourse(ctx context.Context, p auth.Principal, in CourseInput) (Course, error) {
	if !p.HasRole(auth.RoleSPOC) {
		return Course{}, apperr.ErrForbidden
	}
	sem := in.Semester
	if sem == 0 {
		sem = 1
	}
	return s.store.CreateCourse(ctx, Course{
		UniversityID: p.UniversityID,
		ProgramID:    p.ProgramID,
		Code:         strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:         strings.TrimSpace(in.Name),
		Semester:     sem,
		Credits:      in.Credits,
	})
}

func (s *Service) ListCourses(ctx context.Context, p auth.Principal) ([]Course, error) {
	if p.UniversityID == "" {
		return nil, apperr.ErrForbidden
	}
	return s.store.ListCourses(ctx, scope(p))
}

// Course returns a course visible to p.
func (s *Service) Course(ctx context.Context, p auth.Principal, id string) (Course, error) {
	c, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if c == nil || !p.CanSee(c.UniversityID, c.ProgramID) {
		return Course{}, ErrCourseNotFound
	}
	return *c, nil
}
