package enrollment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academia/internal/apperr"
	"academia/internal/auth"
	"academia/internal/directory"
)

func TestCheckJoin(t *testing.T) {
	tests := []struct {
		name        string
		existing    *Membership
		sectionRoll bool
		uniRoll     bool
		want        error
	}{
		{name: "free", want: nil},
		{name: "already enrolled wins", existing: &Membership{}, sectionRoll: true, uniRoll: true, want: ErrAlreadyEnrolled},
		{name: "section roll taken", sectionRoll: true, want: ErrRollNumberTaken},
		{name: "university roll taken", uniRoll: true, want: ErrRollNumberTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckJoin(tt.existing, tt.sectionRoll, tt.uniRoll))
		})
	}
}

type memStore struct {
	members     []Membership
	assignments []Assignment
}

func (m *memStore) MembershipByStudent(_ context.Context, universityID, studentID string) (*Membership, error) {
	for _, mb := range m.members {
		if mb.UniversityID == universityID && mb.StudentID == studentID {
			return &mb, nil
		}
	}
	return nil, nil
}

func (m *memStore) SectionRollTaken(_ context.Context, sectionID, rollNo string) (bool, error) {
	for _, mb := range m.members {
		if mb.SectionID == sectionID && mb.SectionRollNo == rollNo {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UniversityRollTaken(_ context.Context, universityID, rollNo string) (bool, error) {
	for _, mb := range m.members {
		if mb.UniversityID == universityID && mb.UniversityRollNo == rollNo {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateMembership(_ context.Context, mb Membership) (Membership, error) {
	mb.ID, mb.JoinedAt = uuid.NewString(), time.Now()
	m.members = append(m.members, mb)
	return mb, nil
}

func (m *memStore) ListMembers(_ context.Context, sectionID string, activeOnly bool) ([]Member, error) {
	var out []Member
	for _, mb := range m.members {
		if mb.SectionID == sectionID && (!activeOnly || mb.Status == StatusActive) {
			out = append(out, Member{Membership: mb})
		}
	}
	return out, nil
}

func (m *memStore) SetMemberStatus(_ context.Context, sectionID, studentID, status string) (bool, error) {
	for i, mb := range m.members {
		if mb.SectionID == sectionID && mb.StudentID == studentID {
			m.members[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GetAssignment(_ context.Context, sectionID, courseID string) (*Assignment, error) {
	for _, a := range m.assignments {
		if a.SectionID == sectionID && a.CourseID == courseID {
			return &a, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateAssignment(_ context.Context, a Assignment) (Assignment, error) {
	a.ID = uuid.NewString()
	m.assignments = append(m.assignments, a)
	return a, nil
}

func (m *memStore) ListAssignments(_ context.Context, sectionID string) ([]AssignedCourse, error) {
	var out []AssignedCourse
	for _, a := range m.assignments {
		if a.SectionID == sectionID {
			out = append(out, AssignedCourse{Assignment: a})
		}
	}
	return out, nil
}

type memDirectory struct {
	sections map[string]directory.Section
	courses  map[string]directory.Course
	faculty  map[string]directory.Faculty
}

func (d memDirectory) GetSection(_ context.Context, id string) (*directory.Section, error) {
	if s, ok := d.sections[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (d memDirectory) GetCourse(_ context.Context, id string) (*directory.Course, error) {
	if c, ok := d.courses[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (d memDirectory) GetFaculty(_ context.Context, id string) (*directory.Faculty, error) {
	if f, ok := d.faculty[id]; ok {
		return &f, nil
	}
	return nil, nil
}

const (
	uni  = "uni-1"
	prog = "prog-1"
)

func fixture() (*Service, *memStore) {
	dir := memDirectory{
		sections: map[string]directory.Section{
			"sec-a": {ID: "sec-a", UniversityID: uni, ProgramID: prog, Name: "A", Year: 2, Semester: 3},
			"sec-b": {ID: "sec-b", UniversityID: uni, ProgramID: prog, Name: "B", Year: 2, Semester: 3},
			"sec-x": {ID: "sec-x", UniversityID: uni, ProgramID: "prog-2", Name: "X", Year: 1, Semester: 1},
		},
		courses: map[string]directory.Course{
			"cs201": {ID: "cs201", UniversityID: uni, ProgramID: prog, Code: "CS201"},
		},
		faculty: map[string]directory.Faculty{
			"f1": {ID: "f1", UniversityID: uni, ProgramID: prog, Name: "F1"},
		},
	}
	st := &memStore{}
	return NewService(st, dir), st
}

func student(id string) auth.Principal {
	return auth.Principal{ID: id, Role: auth.RoleStudent, UniversityID: uni, ProgramID: prog}
}

var spoc = auth.Principal{ID: "spoc-1", Role: auth.RoleSPOC, UniversityID: uni, ProgramID: prog}

func TestJoinAllowsOneSectionPerStudent(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	m, err := svc.Join(ctx, student("s1"), "sec-a", JoinInput{UniversityRollNo: " U-001 ", SectionRollNo: "1"})
	require.NoError(t, err)
	assert.Equal(t, "U-001", m.UniversityRollNo)
	assert.Equal(t, StatusActive, m.Status)

	_, err = svc.Join(ctx, student("s1"), "sec-b", JoinInput{UniversityRollNo: "U-999", SectionRollNo: "9"})
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	_, err = svc.Join(ctx, student("s2"), "sec-a", JoinInput{UniversityRollNo: "U-002", SectionRollNo: "1"})
	assert.ErrorIs(t, err, ErrRollNumberTaken)

	_, err = svc.Join(ctx, student("s3"), "sec-b", JoinInput{UniversityRollNo: "U-001", SectionRollNo: "1"})
	assert.ErrorIs(t, err, ErrRollNumberTaken)

	_, err = svc.Join(ctx, student("s4"), "sec-x", JoinInput{UniversityRollNo: "U-004", SectionRollNo: "1"})
	assert.ErrorIs(t, err, ErrOtherProgram)
}

func TestJoinOtherProgramAndRoles(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	_, err := svc.Join(ctx, spoc, "sec-a", JoinInput{UniversityRollNo: "U", SectionRollNo: "1"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	outsider := auth.Principal{ID: "s9", Role: auth.RoleStudent, UniversityID: "uni-2", ProgramID: prog}
	_, err = svc.Join(ctx, outsider, "sec-a", JoinInput{UniversityRollNo: "U", SectionRollNo: "1"})
	assert.ErrorIs(t, err, directory.ErrSectionNotFound)
}

func TestJoinRejectsBlankRollNumbers(t *testing.T) {
	svc, st := fixture()
	ctx := context.Background()

	for _, in := range []JoinInput{
		{UniversityRollNo: "   ", SectionRollNo: "1"},
		{UniversityRollNo: "U-1", SectionRollNo: "\t"},
	} {
		_, err := svc.Join(ctx, student("s1"), "sec-a", in)
		assert.ErrorIs(t, err, ErrBlankRollNumber)
		assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	}
	assert.Empty(t, st.members)
}

func TestMySectionAndStatus(t *testing.T) {
	svc, st := fixture()
	ctx := context.Background()

	_, err := svc.MySection(ctx, student("s1"))
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.Join(ctx, student("s1"), "sec-a", JoinInput{UniversityRollNo: "U-1", SectionRollNo: "1"})
	require.NoError(t, err)

	mine, err := svc.MySection(ctx, student("s1"))
	require.NoError(t, err)
	assert.Equal(t, "A", mine.Section.Name)

	require.NoError(t, svc.SetMemberStatus(ctx, spoc, "sec-a", "s1", StatusInactive))
	assert.Equal(t, StatusInactive, st.members[0].Status)
	assert.ErrorIs(t, svc.SetMemberStatus(ctx, spoc, "sec-a", "ghost", StatusActive), ErrMemberNotFound)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(svc.SetMemberStatus(ctx, spoc, "sec-a", "s1", "gone")))
}

func TestAssignCourseTwiceFails(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	_, err := svc.AssignCourse(ctx, spoc, "sec-a", AssignInput{CourseID: "cs201", FacultyID: "f1"})
	require.NoError(t, err)

	_, err = svc.AssignCourse(ctx, spoc, "sec-a", AssignInput{CourseID: "cs201", FacultyID: "f1"})
	assert.ErrorIs(t, err, ErrAlreadyAssigned)
	assert.Equal(t, "course already assigned to this section", err.Error())

	_, err = svc.AssignCourse(ctx, spoc, "sec-b", AssignInput{CourseID: "cs201", FacultyID: "ghost"})
	assert.ErrorIs(t, err, ErrFacultyMismatch)

	list, err := svc.SectionCourses(ctx, spoc, "sec-a")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
