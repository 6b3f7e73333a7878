package timetable

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"academia/internal/store"
)

// Repository persists timetable entries in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var uniqueErrors = map[string]error{
	"timetable_entries_slot_key": ErrSlotConflict,
}

func (r *Repository) Create(ctx context.Context, e Entry) (Entry, error) {
	e.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO timetable_entries (id, university_id, program_id, section_id, course_id, faculty_id, day_of_week, start_time, end_time, room, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`, e.ID, e.UniversityID, e.ProgramID, e.SectionID, e.CourseID, e.FacultyID, e.DayOfWeek, e.StartTime, e.EndTime, e.Room, e.CreatedBy).Scan(&e.CreatedAt)
	if err != nil {
		return Entry{}, store.TranslateUnique(err, uniqueErrors)
	}
	return e, nil
}

const selectEntries = `
	SELECT t.id, t.university_id, t.program_id, t.section_id, t.course_id, t.faculty_id, t.day_of_week,
	       t.start_time, t.end_time, t.room, t.created_by, t.created_at, c.code, c.name, f.name, s.name
	FROM timetable_entries t
	JOIN courses c ON c.id = t.course_id
	JOIN faculty f ON f.id = t.faculty_id
	JOIN sections s ON s.id = t.section_id`

const weekOrder = ` ORDER BY array_position(ARRAY['Mon','Tue','Wed','Thu','Fri','Sat'], t.day_of_week), t.start_time`

func scanEntry(sc interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	err := sc.Scan(&e.ID, &e.UniversityID, &e.ProgramID, &e.SectionID, &e.CourseID, &e.FacultyID, &e.DayOfWeek,
		&e.StartTime, &e.EndTime, &e.Room, &e.CreatedBy, &e.CreatedAt, &e.CourseCode, &e.CourseName, &e.FacultyName, &e.SectionName)
	return e, err
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, selectEntries+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repository) ListBySection(ctx context.Context, sectionID string) ([]Entry, error) {
	return r.list(ctx, selectEntries+` WHERE t.section_id = $1`+weekOrder, sectionID)
}

func (r *Repository) ListBySectionDay(ctx context.Context, sectionID, day string) ([]Entry, error) {
	return r.list(ctx, selectEntries+` WHERE t.section_id = $1 AND t.day_of_week = $2`+weekOrder, sectionID, day)
}

func (r *Repository) ListByFaculty(ctx context.Context, facultyID string) ([]Entry, error) {
	return r.list(ctx, selectEntries+` WHERE t.faculty_id = $1`+weekOrder, facultyID)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM timetable_entries WHERE id = $1`, id)
	return err
}

func (r *Repository) HasAttendance(ctx context.Context, id string) (bool, error) {
	var has bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM attendance_records WHERE timetable_id = $1)`, id).Scan(&has)
	return has, err
}
