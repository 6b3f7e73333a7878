package timetable

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
)

func slot(day, start, end string) Entry {
	return Entry{SectionID: "sec-a", DayOfWeek: day, StartTime: start, EndTime: end}
}

func TestSlotGuard(t *testing.T) {
	existing := []Entry{slot("Mon", "09:00", "10:30")}

	tests := []struct {
		name      string
		mode      Mode
		candidate Entry
		conflict  bool
	}{
		{"start: identical start", ModeStart, slot("Mon", "09:00", "09:45"), true},
		{"start: overlapping later start accepted", ModeStart, slot("Mon", "09:30", "10:00"), false},
		{"start: other day", ModeStart, slot("Tue", "09:00", "10:30"), false},
		{"start: other section", ModeStart, Entry{SectionID: "sec-b", DayOfWeek: "Mon", StartTime: "09:00", EndTime: "10:00"}, false},
		{"overlap: identical start", ModeOverlap, slot("Mon", "09:00", "09:45"), true},
		{"overlap: nested", ModeOverlap, slot("Mon", "09:30", "10:00"), true},
		{"overlap: straddles start", ModeOverlap, slot("Mon", "08:30", "09:15"), true},
		{"overlap: back to back after", ModeOverlap, slot("Mon", "10:30", "11:30"), false},
		{"overlap: back to back before", ModeOverlap, slot("Mon", "08:00", "09:00"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSlotGuard(tt.mode).Check(existing, tt.candidate)
			if tt.conflict {
				assert.ErrorIs(t, err, ErrSlotConflict)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeOverlap, ParseMode("overlap"))
	assert.Equal(t, ModeStart, ParseMode("start"))
	assert.Equal(t, ModeStart, ParseMode("bogus"))
}

type memStore struct {
	entries    []Entry
	attendance map[string]bool
	raceLost   bool
}

func (m *memStore) Create(_ context.Context, e Entry) (Entry, error) {
	if m.raceLost {
		return Entry{}, ErrSlotConflict
	}
	e.ID = uuid.NewString()
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memStore) Get(_ context.Context, id string) (*Entry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *memStore) filter(keep func(Entry) bool) []Entry {
	out := []Entry{}
	for _, e := range m.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) ListBySection(_ context.Context, sectionID string) ([]Entry, error) {
	return m.filter(func(e Entry) bool { return e.SectionID == sectionID }), nil
}

func (m *memStore) ListBySectionDay(_ context.Context, sectionID, day string) ([]Entry, error) {
	return m.filter(func(e Entry) bool { return e.SectionID == sectionID && e.DayOfWeek == day }), nil
}

func (m *memStore) ListByFaculty(_ context.Context, facultyID string) ([]Entry, error) {
	return m.filter(func(e Entry) bool { return e.FacultyID == facultyID }), nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.entries = m.filter(func(e Entry) bool { return e.ID != id })
	return nil
}

func (m *memStore) HasAttendance(_ context.Context, id string) (bool, error) {
	return m.attendance[id], nil
}

type fakeDeps struct{}

func (fakeDeps) GetSection(_ context.Context, id string) (*directory.Section, error) {
	if id != "sec-a" {
		return nil, nil
	}
	return &directory.Section{ID: "sec-a", UniversityID: "uni-1", ProgramID: "prog-1"}, nil
}

func (fakeDeps) GetCourse(_ context.Context, id string) (*directory.Course, error) {
	switch id {
	case "cs201", "cs202":
		return &directory.Course{ID: id, UniversityID: "uni-1", ProgramID: "prog-1"}, nil
	}
	return nil, nil
}

func (fakeDeps) GetFaculty(_ context.Context, id string) (*directory.Faculty, error) {
	if id != "f1" {
		return nil, nil
	}
	return &directory.Faculty{ID: "f1", UniversityID: "uni-1", ProgramID: "prog-1"}, nil
}

func (fakeDeps) GetAssignment(_ context.Context, sectionID, courseID string) (*enrollment.Assignment, error) {
	if courseID != "cs201" {
		return nil, nil
	}
	return &enrollment.Assignment{SectionID: sectionID, CourseID: courseID, FacultyID: "f1"}, nil
}

func (fakeDeps) MembershipByStudent(_ context.Context, _, studentID string) (*enrollment.Membership, error) {
	if studentID != "s1" {
		return nil, nil
	}
	return &enrollment.Membership{SectionID: "sec-a", StudentID: "s1"}, nil
}

var spoc = auth.Principal{ID: "spoc-1", Role: auth.RoleSPOC, UniversityID: "uni-1", ProgramID: "prog-1"}

func input(day, start, end string) CreateInput {
	return CreateInput{SectionID: "sec-a", CourseID: "cs201", FacultyID: "f1", DayOfWeek: day, StartTime: start, EndTime: end, Room: "B-101"}
}

func TestCreateStartModeKeepsCurrentBehaviour(t *testing.T) {
	st := &memStore{}
	svc := NewService(st, fakeDeps{}, fakeDeps{}, NewSlotGuard(ModeStart), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, spoc, input("Mon", "09:00", "10:30"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, spoc, input("Mon", "09:00", "11:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, "Time slot already occupied", err.Error())

	_, err = svc.Create(ctx, spoc, input("Mon", "09:30", "10:00"))
	assert.NoError(t, err)
	assert.Len(t, st.entries, 2)
}

func TestCreateOverlapMode(t *testing.T) {
	st := &memStore{}
	svc := NewService(st, fakeDeps{}, fakeDeps{}, NewSlotGuard(ModeOverlap), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, spoc, input("Mon", "09:00", "10:30"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, spoc, input("Mon", "09:30", "10:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)
	_, err = svc.Create(ctx, spoc, input("Mon", "10:30", "11:00"))
	assert.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&memStore{}, fakeDeps{}, fakeDeps{}, NewSlotGuard(ModeStart), nil)
	ctx := context.Background()

	bad := func(mut func(*CreateInput)) error {
		in := input("Mon", "09:00", "10:00")
		mut(&in)
		_, err := svc.Create(ctx, spoc, in)
		return err
	}
	assert.ErrorIs(t, bad(func(in *CreateInput) { in.DayOfWeek = "Sun" }), ErrBadDay)
	assert.ErrorIs(t, bad(func(in *CreateInput) { in.EndTime = "09:00" }), ErrBadTimes)
	assert.ErrorIs(t, bad(func(in *CreateInput) { in.StartTime = "9:00" }), ErrBadTimes)
	assert.ErrorIs(t, bad(func(in *CreateInput) { in.CourseID = "cs202" }), ErrNotAssigned)
	assert.ErrorIs(t, bad(func(in *CreateInput) { in.CourseID = "nope" }), ErrCourseMismatch)
	assert.ErrorIs(t, bad(func(in *CreateInput) { in.FacultyID = "nope" }), ErrFacultyMismatch)
	assert.ErrorIs(t, bad(func(in *CreateInput) { in.SectionID = "nope" }), directory.ErrSectionNotFound)

	_, err := svc.Create(ctx, auth.Principal{ID: "f1", Role: auth.RoleFaculty, UniversityID: "uni-1"}, input("Mon", "09:00", "10:00"))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCreateRaceLostAtIndex(t *testing.T) {
	svc := NewService(&memStore{raceLost: true}, fakeDeps{}, fakeDeps{}, NewSlotGuard(ModeStart), nil)
	_, err := svc.Create(context.Background(), spoc, input("Tue", "11:00", "12:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestMineAndDelete(t *testing.T) {
	st := &memStore{attendance: map[string]bool{}}
	svc := NewService(st, fakeDeps{}, fakeDeps{}, NewSlotGuard(ModeStart), nil)
	ctx := context.Background()

	e, err := svc.Create(ctx, spoc, input("Wed", "14:00", "15:00"))
	require.NoError(t, err)

	mine, err := svc.Mine(ctx, auth.Principal{ID: "f1", Role: auth.RoleFaculty, UniversityID: "uni-1"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	mine, err = svc.Mine(ctx, auth.Principal{ID: "s1", Role: auth.RoleStudent, UniversityID: "uni-1"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	mine, err = svc.Mine(ctx, auth.Principal{ID: "s2", Role: auth.RoleStudent, UniversityID: "uni-1"})
	require.NoError(t, err)
	assert.Empty(t, mine)

	st.attendance[e.ID] = true
	assert.ErrorIs(t, svc.Delete(ctx, spoc, e.ID), ErrHasAttendance)
	st.attendance[e.ID] = false
	require.NoError(t, svc.Delete(ctx, spoc, e.ID))
	assert.ErrorIs(t, svc.Delete(ctx, spoc, e.ID), ErrNotFound)
}
