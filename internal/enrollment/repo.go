package enrollment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"academia/internal/store"
)

// Repository persists memberships and assignments in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var uniqueErrors = map[string]error{
	"section_students_section_roll_key":    ErrRollNumberTaken,
	"section_students_university_roll_key": ErrRollNumberTaken,
	"section_students_student_key":         ErrAlreadyEnrolled,
	"section_courses_section_course_key":   ErrAlreadyAssigned,
}

const membershipCols = `id, university_id, section_id, student_id, university_roll_no, section_roll_no, status, joined_at`

func (r *Repository) MembershipByStudent(ctx context.Context, universityID, studentID string) (*Membership, error) {
	var m Membership
	err := r.db.QueryRowContext(ctx, `
		SELECT `+membershipCols+` FROM section_students
		WHERE university_id = $1 AND student_id = $2
	`, universityID, studentID).Scan(&m.ID, &m.UniversityID, &m.SectionID, &m.StudentID, &m.UniversityRollNo, &m.SectionRollNo, &m.Status, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repository) SectionRollTaken(ctx context.Context, sectionID, rollNo string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM section_students WHERE section_id = $1 AND section_roll_no = $2)
	`, sectionID, rollNo).Scan(&taken)
	return taken, err
}

func (r *Repository) UniversityRollTaken(ctx context.Context, universityID, rollNo string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM section_students WHERE university_id = $1 AND university_roll_no = $2)
	`, universityID, rollNo).Scan(&taken)
	return taken, err
}

func (r *Repository) CreateMembership(ctx context.Context, m Membership) (Membership, error) {
	m.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO section_students (id, university_id, section_id, student_id, university_roll_no, section_roll_no, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING joined_at
	`, m.ID, m.UniversityID, m.SectionID, m.StudentID, m.UniversityRollNo, m.SectionRollNo, m.Status).Scan(&m.JoinedAt)
	if err != nil {
		return Membership{}, store.TranslateUnique(err, uniqueErrors)
	}
	return m, nil
}

// ListMembers returns a section roster ordered by section roll number.
func (r *Repository) ListMembers(ctx context.Context, sectionID string, activeOnly bool) ([]Member, error) {
	query := `
		SELECT m.id, m.university_id, m.section_id, m.student_id, m.university_roll_no, m.section_roll_no,
		       m.status, m.joined_at, s.name, s.email
		FROM section_students m JOIN students s ON s.id = m.student_id
		WHERE m.section_id = $1`
	if activeOnly {
		query += ` AND m.status = 'active'`
	}
	query += ` ORDER BY m.section_roll_no`

	rows, err := r.db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.UniversityID, &m.SectionID, &m.StudentID, &m.UniversityRollNo, &m.SectionRollNo,
			&m.Status, &m.JoinedAt, &m.StudentName, &m.StudentEmail); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r *Repository) SetMemberStatus(ctx context.Context, sectionID, studentID, status string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE section_students SET status = $3 WHERE section_id = $1 AND student_id = $2
	`, sectionID, studentID, status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) GetAssignment(ctx context.Context, sectionID, courseID string) (*Assignment, error) {
	var a Assignment
	err := r.db.QueryRowContext(ctx, `
		SELECT id, section_id, course_id, faculty_id, created_at FROM section_courses
		WHERE section_id = $1 AND course_id = $2
	`, sectionID, courseID).Scan(&a.ID, &a.SectionID, &a.CourseID, &a.FacultyID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) CreateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	a.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO section_courses (id, section_id, course_id, faculty_id)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, a.ID, a.SectionID, a.CourseID, a.FacultyID).Scan(&a.CreatedAt)
	if err != nil {
		return Assignment{}, store.TranslateUnique(err, uniqueErrors)
	}
	return a, nil
}

func (r *Repository) ListAssignments(ctx context.Context, sectionID string) ([]AssignedCourse, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.section_id, a.course_id, a.faculty_id, a.created_at, c.code, c.name, f.name
		FROM section_courses a
		JOIN courses c ON c.id = a.course_id
		JOIN faculty f ON f.id = a.faculty_id
		WHERE a.section_id = $1
		ORDER BY c.code
	`, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []AssignedCourse
	for rows.Next() {
		var a AssignedCourse
		if err := rows.Scan(&a.ID, &a.SectionID, &a.CourseID, &a.FacultyID, &a.CreatedAt, &a.CourseCode, &a.CourseName, &a.FacultyName); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
