package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// Repository persists attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes the roll-call for (timetable, date), replacing any earlier roster.
func (r *Repository) Upsert(ctx context.Context, rec Record) (Record, error) {
	students, err := json.Marshal(rec.Students)
	if err != nil {
		return Record{}, err
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, timetable_id, university_id, section_id, course_id, faculty_id, date,
			students, total_students, present_count, absent_count, marked_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8::jsonb,$9,$10,$11,$12)
		ON CONFLICT (timetable_id, date) DO UPDATE SET
			students = EXCLUDED.students,
			total_students = EXCLUDED.total_students,
			present_count = EXCLUDED.present_count,
			absent_count = EXCLUDED.absent_count,
			marked_by = EXCLUDED.marked_by,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, uuid.NewString(), rec.TimetableID, rec.UniversityID, rec.SectionID, rec.CourseID, rec.FacultyID, rec.Date,
		string(students), rec.TotalStudents, rec.PresentCount, rec.AbsentCount, rec.MarkedBy,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

const selectRecords = `
	SELECT id, timetable_id, university_id, section_id, course_id, faculty_id, to_char(date, 'YYYY-MM-DD'),
	       students, total_students, present_count, absent_count, marked_by, created_at, updated_at
	FROM attendance_records`

func scanRecord(sc interface{ Scan(...any) error }) (Record, error) {
	var rec Record
	var students []byte
	if err := sc.Scan(&rec.ID, &rec.TimetableID, &rec.UniversityID, &rec.SectionID, &rec.CourseID, &rec.FacultyID, &rec.Date,
		&students, &rec.TotalStudents, &rec.PresentCount, &rec.AbsentCount, &rec.MarkedBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(students, &rec.Students); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// Get returns the record of a class session, or nil.
func (r *Repository) Get(ctx context.Context, timetableID, date string) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, selectRecords+` WHERE timetable_id = $1 AND date = $2`, timetableID, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ListByStudent returns records whose roster contains studentID, newest first.
// The containment test is served by the GIN index on students.
func (r *Repository) ListByStudent(ctx context.Context, studentID string) ([]Record, error) {
	containment, err := json.Marshal([]map[string]string{{"studentId": studentID}})
	if err != nil {
		return nil, err
	}
	return r.list(ctx, selectRecords+` WHERE students @> $1::jsonb ORDER BY date DESC, created_at DESC`, string(containment))
}

// ListBySection returns all records of a section, newest first.
func (r *Repository) ListBySection(ctx context.Context, sectionID string) ([]Record, error) {
	return r.list(ctx, selectRecords+` WHERE section_id = $1 ORDER BY date DESC, created_at DESC`, sectionID)
}
