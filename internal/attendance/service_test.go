package attendance

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academia/internal/apperr"
	"academia/internal/auth"
	"academia/internal/directory"
	"academia/internal/enrollment"
	"academia/internal/timetable"
)

type memStore struct {
	records map[string]Record
}

func newMemStore() *memStore { return &memStore{records: map[string]Record{}} }

func (m *memStore) Upsert(_ context.Context, rec Record) (Record, error) {
	key := rec.TimetableID + "|" + rec.Date
	if old, ok := m.records[key]; ok {
		rec.ID = old.ID
	} else {
		rec.ID = uuid.NewString()
	}
	m.records[key] = rec
	return rec, nil
}

func (m *memStore) Get(_ context.Context, timetableID, date string) (*Record, error) {
	rec, ok := m.records[timetableID+"|"+date]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memStore) ListByStudent(_ context.Context, studentID string) ([]Record, error) {
	out := []Record{}
	for _, rec := range m.records {
		for _, s := range rec.Students {
			if s.StudentID == studentID {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) ListBySection(_ context.Context, sectionID string) ([]Record, error) {
	out := []Record{}
	for _, rec := range m.records {
		if rec.SectionID == sectionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeDeps struct{}

var coordinator = "f-coord"

func (fakeDeps) Get(_ context.Context, id string) (*timetable.Entry, error) {
	if id != "tt-1" {
		return nil, nil
	}
	return &timetable.Entry{ID: "tt-1", UniversityID: "uni-1", ProgramID: "prog-1", SectionID: "sec-a", CourseID: "cs201", FacultyID: "f1"}, nil
}

func (fakeDeps) ListMembers(_ context.Context, sectionID string, activeOnly bool) ([]enrollment.Member, error) {
	members := []enrollment.Member{
		{Membership: enrollment.Membership{SectionID: sectionID, StudentID: "s1", UniversityRollNo: "U-1", Status: enrollment.StatusActive}},
		{Membership: enrollment.Membership{SectionID: sectionID, StudentID: "s2", UniversityRollNo: "U-2", Status: enrollment.StatusActive}},
		{Membership: enrollment.Membership{SectionID: sectionID, StudentID: "s3", UniversityRollNo: "U-3", Status: enrollment.StatusInactive}},
	}
	if !activeOnly {
		return members, nil
	}
	return members[:2], nil
}

func (fakeDeps) MembershipByStudent(_ context.Context, _, studentID string) (*enrollment.Membership, error) {
	switch studentID {
	case "s1", "s2", "s3":
		return &enrollment.Membership{SectionID: "sec-a", StudentID: studentID}, nil
	}
	return nil, nil
}

func (fakeDeps) GetSection(_ context.Context, id string) (*directory.Section, error) {
	if id != "sec-a" {
		return nil, nil
	}
	return &directory.Section{ID: "sec-a", UniversityID: "uni-1", ProgramID: "prog-1", CoordinatorID: &coordinator}, nil
}

func (fakeDeps) GetStudent(_ context.Context, id string) (*directory.Student, error) {
	switch id {
	case "s1", "s2", "s3":
		return &directory.Student{ID: id, UniversityID: "uni-1", ProgramID: "prog-1"}, nil
	}
	return nil, nil
}

var (
	lecturer = auth.Principal{ID: "f1", Role: auth.RoleFaculty, UniversityID: "uni-1", ProgramID: "prog-1"}
	coord   = auth.Principal{ID: coordinator, Role: auth.RoleFaculty, UniversityID: "uni-1", ProgramID: "prog-1"}
	spoc    = auth.Principal{ID: "spoc-1", Role: auth.RoleSPOC, UniversityID: "uni-1", ProgramID: "prog-1"}
	other   = auth.Principal{ID: "u-2", Role: auth.RoleUniversity, UniversityID: "uni-2"}
)

func newService(st Store) *Service {
	return NewService(st, fakeDeps{}, fakeDeps{}, fakeDeps{})
}

func TestTally(t *testing.T) {
	p, a, err := Tally([]Mark{{StudentID: "s1", Status: StatusPresent}, {StudentID: "s2", Status: StatusAbsent}, {StudentID: "s3", Status: StatusPresent}})
	require.NoError(t, err)
	assert.Equal(t, 2, p)
	assert.Equal(t, 1, a)

	_, _, err = Tally([]Mark{{StudentID: "s1", Status: StatusPresent}, {StudentID: "s1", Status: StatusAbsent}})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, _, err = Tally([]Mark{{StudentID: "s1", Status: "late"}})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]StudentRecord{{Status: StatusPresent}, {Status: StatusPresent}, {Status: StatusAbsent}})
	assert.Equal(t, Summary{Total: 3, Present: 2, Absent: 1, Percentage: 66.67}, s)
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestMarkReplacesEarlierRoster(t *testing.T) {
	st := newMemStore()
	svc := newService(st)
	ctx := context.Background()

	first, err := svc.Mark(ctx, lecturer, "tt-1", MarkInput{Date: "2024-03-04", Students: []Mark{
		{StudentID: "s1", Status: StatusPresent},
		{StudentID: "s2", Status: StatusPresent},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, first.PresentCount)
	assert.Equal(t, "U-1", first.Students[0].UniversityRollNo)

	second, err := svc.Mark(ctx, spoc, "tt-1", MarkInput{Date: "2024-03-04", Students: []Mark{
		{StudentID: "s1", UniversityRollNo: "FORGED-9", Status: StatusAbsent},
		{StudentID: "s2", Status: StatusPresent},
		{StudentID: "s3", Status: StatusAbsent},
	}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, st.records, 1)
	assert.Equal(t, 3, second.TotalStudents)
	assert.Equal(t, second.TotalStudents, second.PresentCount+second.AbsentCount)
	assert.Equal(t, spoc.ID, second.MarkedBy)
	assert.Equal(t, "U-1", second.Students[0].UniversityRollNo)
	assert.Equal(t, "U-1", st.records["tt-1|2024-03-04"].Students[0].UniversityRollNo)
}

func TestMarkRejections(t *testing.T) {
	svc := newService(newMemStore())
	ctx := context.Background()
	in := MarkInput{Date: "2024-03-04", Students: []Mark{{StudentID: "s1", Status: StatusPresent}}}

	_, err := svc.Mark(ctx, coord, "tt-1", in)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Mark(ctx, other, "tt-1", in)
	assert.ErrorIs(t, err, timetable.ErrNotFound)

	_, err = svc.Mark(ctx, lecturer, "tt-1", MarkInput{Date: "04/03/2024", Students: in.Students})
	assert.ErrorIs(t, err, ErrBadDate)

	_, err = svc.Mark(ctx, lecturer, "tt-1", MarkInput{Date: "2024-03-04", Students: []Mark{{StudentID: "stranger", Status: StatusPresent}}})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestForClass(t *testing.T) {
	svc := newService(newMemStore())
	ctx := context.Background()

	sheet, err := svc.ForClass(ctx, lecturer, "tt-1", "2024-03-04")
	require.NoError(t, err)
	assert.Len(t, sheet.Students, 2)
	assert.Nil(t, sheet.Attendance)

	_, err = svc.Mark(ctx, lecturer, "tt-1", MarkInput{Date: "2024-03-04", Students: []Mark{{StudentID: "s1", Status: StatusPresent}}})
	require.NoError(t, err)
	sheet, err = svc.ForClass(ctx, lecturer, "tt-1", "2024-03-04")
	require.NoError(t, err)
	require.NotNil(t, sheet.Attendance)
	assert.Equal(t, 1, sheet.Attendance.PresentCount)

	_, err = svc.ForClass(ctx, auth.Principal{ID: "s1", Role: auth.RoleStudent, UniversityID: "uni-1"}, "tt-1", "2024-03-04")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestForStudentAccess(t *testing.T) {
	svc := newService(newMemStore())
	ctx := context.Background()
	for _, date := range []string{"2024-03-04", "2024-03-05"} {
		status := StatusPresent
		if date == "2024-03-05" {
			status = StatusAbsent
		}
		_, err := svc.Mark(ctx, lecturer, "tt-1", MarkInput{Date: date, Students: []Mark{
			{StudentID: "s1", Status: status},
			{StudentID: "s2", Status: StatusPresent},
		}})
		require.NoError(t, err)
	}

	rep, err := svc.ForStudent(ctx, auth.Principal{ID: "s1", Role: auth.RoleStudent, UniversityID: "uni-1"}, "s1")
	require.NoError(t, err)
	assert.Len(t, rep.Records, 2)
	assert.Equal(t, Summary{Total: 2, Present: 1, Absent: 1, Percentage: 50}, rep.Summary)

	_, err = svc.ForStudent(ctx, auth.Principal{ID: "s2", Role: auth.RoleStudent, UniversityID: "uni-1"}, "s1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.ForStudent(ctx, coord, "s1")
	assert.NoError(t, err)

	_, err = svc.ForStudent(ctx, lecturer, "s1")
	assert.ErrorIs(t, err, ErrNotCoordinator)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.ForStudent(ctx, spoc, "s1")
	assert.NoError(t, err)

	_, err = svc.ForStudent(ctx, other, "s1")
	assert.ErrorIs(t, err, directory.ErrStudentNotFound)
}

func TestForSection(t *testing.T) {
	svc := newService(newMemStore())
	ctx := context.Background()
	_, err := svc.Mark(ctx, lecturer, "tt-1", MarkInput{Date: "2024-03-04", Students: []Mark{{StudentID: "s1", Status: StatusPresent}}})
	require.NoError(t, err)

	recs, err := svc.ForSection(ctx, coord, "sec-a")
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = svc.ForSection(ctx, lecturer, "sec-a")
	assert.ErrorIs(t, err, ErrNotCoordinator)

	_, err = svc.ForSection(ctx, other, "sec-a")
	assert.ErrorIs(t, err, directory.ErrSectionNotFound)
}
