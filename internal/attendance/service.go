package attendance

import (
	"context"
	"fmt"

	"academia/internal/apperr"
	"academia/internal/auth"
	"academia/internal/directory"
	"academia/internal/enrollment"
	"academia/internal/metrics"
	"academia/internal/timetable"
	"academia/internal/validation"
)

var (
	ErrBadDate        = apperr.Invalid("date must be YYYY-MM-DD")
	ErrNotCoordinator = apperr.Forbidden("only the section coordinator may view this student's attendance")
)

// Store persists roll-calls. Get returns nil when no record exists.
type Store interface {
	Upsert(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, timetableID, date string) (*Record, error)
	ListByStudent(ctx context.Context, studentID string) ([]Record, error)
	ListBySection(ctx context.Context, sectionID string) ([]Record, error)
}

// Timetable looks up class slots.
type Timetable interface {
	Get(ctx context.Context, id string) (*timetable.Entry, error)
}

// Roster answers section membership questions.
type Roster interface {
	ListMembers(ctx context.Context, sectionID string, activeOnly bool) ([]enrollment.Member, error)
	MembershipByStudent(ctx context.Context, universityID, studentID string) (*enrollment.Membership, error)
}

// Directory is the subset of directory lookups attendance needs.
type Directory interface {
	GetSection(ctx context.Context, id string) (*directory.Section, error)
	GetStudent(ctx context.Context, id string) (*directory.Student, error)
}

// Service records and reports class attendance.
type Service struct {
	store  Store
	slots  Timetable
	roster Roster
	dir    Directory
}

// NewService creates a service backed by a repository.
func NewService(store Store, slots Timetable, roster Roster, dir Directory) *Service {
	return &Service{store: store, slots: slots, roster: roster, dir: dir}
}

func (s *Service) entry(ctx context.Context, p auth.Principal, id string) (timetable.Entry, error) {
	e, err := s.slots.Get(ctx, id)
	if err != nil {
		return timetable.Entry{}, err
	}
	if e == nil || !p.CanSee(e.UniversityID, e.ProgramID) {
		return timetable.Entry{}, timetable.ErrNotFound
	}
	return *e, nil
}

// canMark allows the faculty member teaching the slot and the SPOC of its program.
func canMark(p auth.Principal, e timetable.Entry) bool {
	switch p.Role {
	case auth.RoleFaculty:
		return e.FacultyID == p.ID
	case auth.RoleSPOC:
		return e.ProgramID == p.ProgramID
	}
	return false
}

// Mark stores the roll-call for a class session. Counts are computed here and
// a second submission for the same date replaces the first. Roll numbers come
// from the section roster, whatever the client sent.
func (s *Service) Mark(ctx context.Context, p auth.Principal, timetableID string, in MarkInput) (Record, error) {
	if !validation.IsISODate(in.Date) {
		return Record{}, ErrBadDate
	}
	e, err := s.entry(ctx, p, timetableID)
	if err != nil {
		return Record{}, err
	}
	if !canMark(p, e) {
		return Record{}, apperr.ErrForbidden
	}
	present, absent, err := Tally(in.Students)
	if err != nil {
		return Record{}, err
	}

	members, err := s.roster.ListMembers(ctx, e.SectionID, false)
	if err != nil {
		return Record{}, err
	}
	rolls := make(map[string]string, len(members))
	for _, m := range members {
		rolls[m.StudentID] = m.UniversityRollNo
	}
	marks := make([]Mark, len(in.Students))
	for i, m := range in.Students {
		roll, ok := rolls[m.StudentID]
		if !ok {
			return Record{}, apperr.Invalid(fmt.Sprintf("student %s is not in this section", m.StudentID))
		}
		// the stored roll number is always the membership's
		m.UniversityRollNo = roll
		marks[i] = m
	}

	rec, err := s.store.Upsert(ctx, Record{
		TimetableID:   e.ID,
		UniversityID:  e.UniversityID,
		SectionID:     e.SectionID,
		CourseID:      e.CourseID,
		FacultyID:     e.FacultyID,
		Date:          in.Date,
		Students:      marks,
		TotalStudents: len(marks),
		PresentCount:  present,
		AbsentCount:   absent,
		MarkedBy:      p.ID,
	})
	if err != nil {
		return Record{}, err
	}
	metrics.AttendanceMarked.Inc()
	return rec, nil
}

// ClassSheet is what the marking screen needs for one session.
type ClassSheet struct {
	Timetable  timetable.Entry     `json:"timetable"`
	Students   []enrollment.Member `json:"students"`
	Attendance *Record             `json:"attendance"`
}

// ForClass returns the slot, its active roster and the stored record for date, if any.
func (s *Service) ForClass(ctx context.Context, p auth.Principal, timetableID, date string) (ClassSheet, error) {
	if !validation.IsISODate(date) {
		return ClassSheet{}, ErrBadDate
	}
	if !p.HasRole(auth.RoleFaculty, auth.RoleSPOC, auth.RoleUniversity) {
		return ClassSheet{}, apperr.ErrForbidden
	}
	e, err := s.entry(ctx, p, timetableID)
	if err != nil {
		return ClassSheet{}, err
	}
	members, err := s.roster.ListMembers(ctx, e.SectionID, true)
	if err != nil {
		return ClassSheet{}, err
	}
	rec, err := s.store.Get(ctx, e.ID, date)
	if err != nil {
		return ClassSheet{}, err
	}
	if members == nil {
		members = []enrollment.Member{}
	}
	return ClassSheet{Timetable: e, Students: members, Attendance: rec}, nil
}

// StudentReport is a student's attendance history with totals.
type StudentReport struct {
	StudentID string          `json:"studentId"`
	Records   []StudentRecord `json:"records"`
	Summary   Summary         `json:"summary"`
}

// ForStudent returns a student's records. Faculty may only look at students of
// sections they coordinate.
func (s *Service) ForStudent(ctx context.Context, p auth.Principal, studentID string) (StudentReport, error) {
	if err := s.authorizeStudent(ctx, p, studentID); err != nil {
		return StudentReport{}, err
	}
	recs, err := s.store.ListByStudent(ctx, studentID)
	if err != nil {
		return StudentReport{}, err
	}
	out := make([]StudentRecord, 0, len(recs))
	for _, rec := range recs {
		for _, m := range rec.Students {
			if m.StudentID != studentID {
				continue
			}
			out = append(out, StudentRecord{
				RecordID:    rec.ID,
				TimetableID: rec.TimetableID,
				SectionID:   rec.SectionID,
				CourseID:    rec.CourseID,
				Date:        rec.Date,
				Status:      m.Status,
			})
			break
		}
	}
	return StudentReport{StudentID: studentID, Records: out, Summary: Summarize(out)}, nil
}

func (s *Service) authorizeStudent(ctx context.Context, p auth.Principal, studentID string) error {
	if p.Role == auth.RoleStudent {
		if p.ID != studentID {
			return apperr.ErrForbidden
		}
		return nil
	}
	st, err := s.dir.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if st == nil || !p.CanSee(st.UniversityID, st.ProgramID) {
		return directory.ErrStudentNotFound
	}
	switch p.Role {
	case auth.RoleUniversity, auth.RoleSPOC:
		return nil
	case auth.RoleFaculty:
		m, err := s.roster.MembershipByStudent(ctx, st.UniversityID, st.ID)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrNotCoordinator
		}
		sec, err := s.dir.GetSection(ctx, m.SectionID)
		if err != nil {
			return err
		}
		if sec == nil || !sec.IsCoordinator(p.ID) {
			return ErrNotCoordinator
		}
		return nil
	}
	return apperr.ErrForbidden
}

// ForSection returns every record of a section, for its coordinator and program staff.
func (s *Service) ForSection(ctx context.Context, p auth.Principal, sectionID string) ([]Record, error) {
	sec, err := s.dir.GetSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if sec == nil || !p.CanSee(sec.UniversityID, sec.ProgramID) {
		return nil, directory.ErrSectionNotFound
	}
	switch p.Role {
	case auth.RoleUniversity, auth.RoleSPOC:
	case auth.RoleFaculty:
		if !sec.IsCoordinator(p.ID) {
			return nil, ErrNotCoordinator
		}
	default:
		return nil, apperr.ErrForbidden
	}
	return s.store.ListBySection(ctx, sec.ID)
}
