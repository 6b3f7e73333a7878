package timetable

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"academia/internal/apperr"
	"academia/internal/auth"
	"academia/internal/directory"
	"academia/internal/enrollment"
	"academia/internal/metrics"
	"academia/internal/validation"
)

var (
	ErrNotFound        = apperr.NotFound("timetable entry not found")
	ErrBadTimes        = apperr.Invalid("startTime must be before endTime")
	ErrBadDay          = apperr.Invalid("dayOfWeek must be one of Mon..Sat")
	ErrNotAssigned     = apperr.Invalid("course is not assigned to this section")
	ErrCourseMismatch  = apperr.Invalid("course does not belong to this section's program")
	ErrFacultyMismatch = apperr.Invalid("faculty does not belong to this section's program")
	ErrHasAttendance   = apperr.Conflict("timetable entry already has attendance records")
)

// Store persists timetable entries. Get returns nil when the entry does not exist.
type Store interface {
	Create(ctx context.Context, e Entry) (Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
	ListBySection(ctx context.Context, sectionID string) ([]Entry, error)
	ListBySectionDay(ctx context.Context, sectionID, day string) ([]Entry, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]Entry, error)
	Delete(ctx context.Context, id string) error
	HasAttendance(ctx context.Context, id string) (bool, error)
}

// Directory is the subset of directory lookups the timetable needs.
type Directory interface {
	GetSection(ctx context.Context, id string) (*directory.Section, error)
	GetCourse(ctx context.Context, id string) (*directory.Course, error)
	GetFaculty(ctx context.Context, id string) (*directory.Faculty, error)
}

// Enrollment answers assignment and membership questions.
type Enrollment interface {
	GetAssignment(ctx context.Context, sectionID, courseID string) (*enrollment.Assignment, error)
	MembershipByStudent(ctx context.Context, universityID, studentID string) (*enrollment.Membership, error)
}

// Service schedules class slots.
type Service struct {
	store Store
	dir   Directory
	enr   Enrollment
	guard SlotGuard
	log   *zap.Logger
}

func NewService(store Store, dir Directory, enr Enrollment, guard SlotGuard, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, dir: dir, enr: enr, guard: guard, log: log}
}

// Create adds a weekly slot to a section of the SPOC's program.
func (s *Service) Create(ctx context.Context, p auth.Principal, in CreateInput) (Entry, error) {
	if !p.HasRole(auth.RoleSPOC) {
		return Entry{}, apperr.ErrForbidden
	}
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	if !validation.IsWeekday(in.DayOfWeek) {
		return Entry{}, ErrBadDay
	}
	if !validation.IsHHMM(in.StartTime) || !validation.IsHHMM(in.EndTime) || in.StartTime >= in.EndTime {
		return Entry{}, ErrBadTimes
	}

	sec, err := s.dir.GetSection(ctx, in.SectionID)
	if err != nil {
		return Entry{}, err
	}
	if sec == nil || !p.CanSee(sec.UniversityID, sec.ProgramID) {
		return Entry{}, directory.ErrSectionNotFound
	}
	course, err := s.dir.GetCourse(ctx, in.CourseID)
	if err != nil {
		return Entry{}, err
	}
	if course == nil || course.ProgramID != sec.ProgramID {
		return Entry{}, ErrCourseMismatch
	}
	fac, err := s.dir.GetFaculty(ctx, in.FacultyID)
	if err != nil {
		return Entry{}, err
	}
	if fac == nil || fac.ProgramID != sec.ProgramID {
		return Entry{}, ErrFacultyMismatch
	}
	assigned, err := s.enr.GetAssignment(ctx, sec.ID, course.ID)
	if err != nil {
		return Entry{}, err
	}
	if assigned == nil {
		return Entry{}, ErrNotAssigned
	}

	candidate := Entry{
		UniversityID: sec.UniversityID,
		ProgramID:    sec.ProgramID,
		SectionID:    sec.ID,
		CourseID:     course.ID,
		FacultyID:    fac.ID,
		DayOfWeek:    in.DayOfWeek,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Room:         strings.TrimSpace(in.Room),
		CreatedBy:    p.ID,
	}
	existing, err := s.store.ListBySectionDay(ctx, sec.ID, in.DayOfWeek)
	if err != nil {
		return Entry{}, err
	}
	if err := s.guard.Check(existing, candidate); err != nil {
		metrics.SlotConflicts.Inc()
		return Entry{}, err
	}

	created, err := s.store.Create(ctx, candidate)
	if errors.Is(err, ErrSlotConflict) {
		metrics.SlotConflicts.Inc()
		s.log.Info("slot conflict lost at index",
			zap.String("section_id", sec.ID), zap.String("day", in.DayOfWeek), zap.String("start", in.StartTime))
	}
	return created, err
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

// BySection lists a visible section's week, ordered by day and start time.
func (s *Service) BySection(ctx context.Context, p auth.Principal, sectionID string) ([]Entry, error) {
	sec, err := s.section(ctx, p, sectionID)
	if err != nil {
		return nil, err
	}
	return s.store.ListBySection(ctx, sec.ID)
}

// Mine lists the faculty member's teaching slots, or the student's section week.
func (s *Service) Mine(ctx context.Context, p auth.Principal) ([]Entry, error) {
	switch p.Role {
	case auth.RoleFaculty:
		return s.store.ListByFaculty(ctx, p.ID)
	case auth.RoleStudent:
		m, err := s.enr.MembershipByStudent(ctx, p.UniversityID, p.ID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return []Entry{}, nil
		}
		return s.store.ListBySection(ctx, m.SectionID)
	default:
		return nil, apperr.ErrForbidden
	}
}

// Entry returns a timetable entry visible to p.
func (s *Service) Entry(ctx context.Context, p auth.Principal, id string) (Entry, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if e == nil || !p.CanSee(e.UniversityID, e.ProgramID) {
		return Entry{}, ErrNotFound
	}
	return *e, nil
}

// Delete removes a slot that has no attendance recorded against it.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	if !p.HasRole(auth.RoleSPOC) {
		return apperr.ErrForbidden
	}
	e, err := s.Entry(ctx, p, id)
	if err != nil {
		return err
	}
	has, err := s.store.HasAttendance(ctx, e.ID)
	if err != nil {
		return err
	}
	if has {
		return ErrHasAttendance
	}
	return s.store.Delete(ctx, e.ID)
}
