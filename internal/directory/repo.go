package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"academia/internal/auth"
	"academia/internal/store"
)

// Repository persists directory records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var uniqueErrors = map[string]error{
	"admins_email_key":               ErrEmailTaken,
	"universities_email_key":         ErrEmailTaken,
	"universities_code_key":          ErrUniversityCodeTaken,
	"spocs_email_key":                ErrEmailTaken,
	"faculty_email_key":              ErrEmailTaken,
	"students_email_key":             ErrEmailTaken,
	"programs_university_code_key":   ErrProgramCodeTaken,
	"sections_program_name_term_key": ErrSectionExists,
	"courses_program_code_key":       ErrCourseCodeTaken,
}

// where renders the tenant filter as a WHERE clause over the given columns.
func where(f Filter) (string, []any) {
	var clauses []string
	var args []any
	if f.UniversityID != "" {
		args = append(args, f.UniversityID)
		clauses = append(clauses, fmt.Sprintf("university_id = $%d", len(args)))
	}
	if f.ProgramID != "" {
		args = append(args, f.ProgramID)
		clauses = append(clauses, fmt.Sprintf("program_id = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// FindAccount returns the login record for role and email, or nil.
func (r *Repository) FindAccount(ctx context.Context, role auth.Role, email string) (*auth.Account, error) {
	acct := auth.Account{Role: role}
	var row *sql.Row
	switch role {
	case auth.RoleAdmin:
		row = r.db.QueryRowContext(ctx, `
			SELECT id, '', '', name, email, password_hash, TRUE FROM admins WHERE email = $1
		`, email)
	case auth.RoleUniversity:
		row = r.db.QueryRowContext(ctx, `
			SELECT id, id, '', name, email, password_hash, is_active FROM universities WHERE email = $1
		`, email)
	case auth.RoleSPOC, auth.RoleFaculty, auth.RoleStudent:
		table := map[auth.Role]string{auth.RoleSPOC: "spocs", auth.RoleFaculty: "faculty", auth.RoleStudent: "students"}[role]
		row = r.db.QueryRowContext(ctx, `
			SELECT t.id, t.university_id, t.program_id, t.name, t.email, t.password_hash, u.is_active
			FROM `+table+` t JOIN universities u ON u.id = t.university_id
			WHERE t.email = $1
		`, email)
	default:
		return nil, nil
	}
	if err := row.Scan(&acct.ID, &acct.UniversityID, &acct.ProgramID, &acct.Name, &acct.Email, &acct.PasswordHash, &acct.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &acct, nil
}

// UpsertAdmin creates the platform admin or resets its name and password.
func (r *Repository) UpsertAdmin(ctx context.Context, name, email, passwordHash string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO admins (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			updated_at = NOW()
		RETURNING id
	`, uuid.NewString(), name, email, passwordHash).Scan(&id)
	return id, err
}

func (r *Repository) CreateUniversity(ctx context.Context, u University, passwordHash string) (University, error) {
	u.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO universities (id, name, code, email, address, website, password_hash, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, u.ID, u.Name, u.Code, u.Email, u.Address, u.Website, passwordHash, u.IsActive).Scan(&u.CreatedAt)
	if err != nil {
		return University{}, store.TranslateUnique(err, uniqueErrors)
	}
	return u, nil
}

const universityCols = `id, name, code, email, address, website, is_active, created_at`

func scanUniversity(sc interface{ Scan(...any) error }) (University, error) {
	var u University
	err := sc.Scan(&u.ID, &u.Name, &u.Code, &u.Email, &u.Address, &u.Website, &u.IsActive, &u.CreatedAt)
	return u, err
}

func (r *Repository) ListUniversities(ctx context.Context) ([]University, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+universityCols+` FROM universities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []University
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *Repository) GetUniversity(ctx context.Context, id string) (*University, error) {
	u, err := scanUniversity(r.db.QueryRowContext(ctx, `SELECT `+universityCols+` FROM universities WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) SetUniversityActive(ctx context.Context, id string, active bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE universities SET is_active = $2 WHERE id = $1`, id, active)
	return err
}

func (r *Repository) CreateProgram(ctx context.Context, p Program) (Program, error) {
	p.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO programs (id, university_id, name, code, duration_years)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, p.ID, p.UniversityID, p.Name, p.Code, p.DurationYears).Scan(&p.CreatedAt)
	if err != nil {
		return Program{}, store.TranslateUnique(err, uniqueErrors)
	}
	return p, nil
}

const programCols = `id, university_id, name, code, duration_years, created_at`

func scanProgram(sc interface{ Scan(...any) error }) (Program, error) {
	var p Program
	err := sc.Scan(&p.ID, &p.UniversityID, &p.Name, &p.Code, &p.DurationYears, &p.CreatedAt)
	return p, err
}

func (r *Repository) ListPrograms(ctx context.Context, universityID string) ([]Program, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+programCols+` FROM programs WHERE university_id = $1 ORDER BY code`, universityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *Repository) GetProgram(ctx context.Context, id string) (*Program, error) {
	p, err := scanProgram(r.db.QueryRowContext(ctx, `SELECT `+programCols+` FROM programs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// DeleteProgram removes a program. A row still referencing it surfaces as
// ErrProgramInUse.
func (r *Repository) DeleteProgram(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if store.IsForeignKeyViolation(err) {
		return ErrProgramInUse
	}
	return err
}

// CountDependents counts the accounts, sections and courses attached to a program.
func (r *Repository) CountDependents(ctx context.Context, programID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM spocs WHERE program_id = $1)
		     + (SELECT COUNT(*) FROM faculty WHERE program_id = $1)
		     + (SELECT COUNT(*) FROM students WHERE program_id = $1)
		     + (SELECT COUNT(*) FROM sections WHERE program_id = $1)
		     + (SELECT COUNT(*) FROM courses WHERE program_id = $1)
	`, programID).Scan(&n)
	return n, err
}

func (r *Repository) CreateSPOC(ctx context.Context, s SPOC, passwordHash string) (SPOC, error) {
	s.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO spocs (id, university_id, program_id, name, email, phone, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, s.ID, s.UniversityID, s.ProgramID, s.Name, s.Email, s.Phone, passwordHash).Scan(&s.CreatedAt)
	if err != nil {
		return SPOC{}, store.TranslateUnique(err, uniqueErrors)
	}
	return s, nil
}

func (r *Repository) ListSPOCs(ctx context.Context, f Filter) ([]SPOC, error) {
	cond, args := where(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, university_id, program_id, name, email, phone, created_at
		FROM spocs`+cond+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []SPOC
	for rows.Next() {
		var s SPOC
		if err := rows.Scan(&s.ID, &s.UniversityID, &s.ProgramID, &s.Name, &s.Email, &s.Phone, &s.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r *Repository) CreateFaculty(ctx context.Context, f Faculty, passwordHash string) (Faculty, error) {
	f.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO faculty (id, university_id, program_id, name, email, department, designation, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, f.ID, f.UniversityID, f.ProgramID, f.Name, f.Email, f.Department, f.Designation, passwordHash).Scan(&f.CreatedAt)
	if err != nil {
		return Faculty{}, store.TranslateUnique(err, uniqueErrors)
	}
	return f, nil
}

const facultyCols = `id, university_id, program_id, name, email, department, designation, created_at`

func scanFaculty(sc interface{ Scan(...any) error }) (Faculty, error) {
	var f Faculty
	err := sc.Scan(&f.ID, &f.UniversityID, &f.ProgramID, &f.Name, &f.Email, &f.Department, &f.Designation, &f.CreatedAt)
	return f, err
}

func (r *Repository) ListFaculty(ctx context.Context, f Filter) ([]Faculty, error) {
	cond, args := where(f)
	rows, err := r.db.QueryContext(ctx, `SELECT `+facultyCols+` FROM faculty`+cond+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Faculty
	for rows.Next() {
		fc, err := scanFaculty(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, fc)
	}
	return res, rows.Err()
}

func (r *Repository) GetFaculty(ctx context.Context, id string) (*Faculty, error) {
	f, err := scanFaculty(r.db.QueryRowContext(ctx, `SELECT `+facultyCols+` FROM faculty WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *Repository) CreateStudent(ctx context.Context, s Student, passwordHash string) (Student, error) {
	s.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, university_id, program_id, name, email, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, s.ID, s.UniversityID, s.ProgramID, s.Name, s.Email, passwordHash).Scan(&s.CreatedAt)
	if err != nil {
		return Student{}, store.TranslateUnique(err, uniqueErrors)
	}
	return s, nil
}

const studentCols = `id, university_id, program_id, name, email, created_at`

func scanStudent(sc interface{ Scan(...any) error }) (Student, error) {
	var s Student
	err := sc.Scan(&s.ID, &s.UniversityID, &s.ProgramID, &s.Name, &s.Email, &s.CreatedAt)
	return s, err
}

func (r *Repository) ListStudents(ctx context.Context, f Filter) ([]Student, error) {
	cond, args := where(f)
	rows, err := r.db.QueryContext(ctx, `SELECT `+studentCols+` FROM students`+cond+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r *Repository) GetStudent(ctx context.Context, id string) (*Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateSection(ctx context.Context, s Section) (Section, error) {
	s.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sections (id, university_id, program_id, name, year, semester, coordinator_id, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, s.ID, s.UniversityID, s.ProgramID, s.Name, s.Year, s.Semester, s.CoordinatorID, s.CreatedBy).Scan(&s.CreatedAt)
	if err != nil {
		return Section{}, store.TranslateUnique(err, uniqueErrors)
	}
	return s, nil
}

const sectionCols = `id, university_id, program_id, name, year, semester, coordinator_id, created_by, created_at`

func scanSection(sc interface{ Scan(...any) error }) (Section, error) {
	var s Section
	var coordinator sql.NullString
	if err := sc.Scan(&s.ID, &s.UniversityID, &s.ProgramID, &s.Name, &s.Year, &s.Semester, &coordinator, &s.CreatedBy, &s.CreatedAt); err != nil {
		return Section{}, err
	}
	if coordinator.Valid {
		s.CoordinatorID = &coordinator.String
	}
	return s, nil
}

func (r *Repository) ListSections(ctx context.Context, f Filter) ([]Section, error) {
	cond, args := where(f)
	rows, err := r.db.QueryContext(ctx, `SELECT `+sectionCols+` FROM sections`+cond+` ORDER BY year, semester, name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r *Repository) GetSection(ctx context.Context, id string) (*Section, error) {
	s, err := scanSection(r.db.QueryRowContext(ctx, `SELECT `+sectionCols+` FROM sections WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) SetCoordinator(ctx context.Context, sectionID, facultyID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sections SET coordinator_id = $2 WHERE id = $1`, sectionID, facultyID)
	return err
}

func (r *Repository) CreateCourse(ctx context.Context, c Course) (Course, error) {
	c.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO courses (id, university_id, program_id, code, name, semester, credits)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, c.ID, c.UniversityID, c.ProgramID, c.Code, c.Name, c.Semester, c.Credits).Scan(&c.CreatedAt)
	if err != nil {
		return Course{}, store.TranslateUnique(err, uniqueErrors)
	}
	return c, nil
}

const courseCols = `id, university_id, program_id, code, name, semester, credits, created_at`

func scanCourse(sc interface{ Scan(...any) error }) (Course, error) {
	var c Course
	err := sc.Scan(&c.ID, &c.UniversityID, &c.ProgramID, &c.Code, &c.Name, &c.Semester, &c.Credits, &c.CreatedAt)
	return c, err
}

func (r *Repository) ListCourses(ctx context.Context, f Filter) ([]Course, error) {
	cond, args := where(f)
	rows, err := r.db.QueryContext(ctx, `SELECT `+courseCols+` FROM courses`+cond+` ORDER BY semester, code`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *Repository) GetCourse(ctx context.Context, id string) (*Course, error) {
	c, err := scanCourse(r.db.QueryRowContext(ctx, `SELECT `+courseCols+` FROM courses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
