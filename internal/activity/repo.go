package activity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists activity records and their audit events in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectActivities = `
	SELECT id, university_id, program_id, student_id, type, title, description, drive_link, status,
	       approved_by, approval_date, rejection_reason, expires_at, created_at, updated_at
	FROM activities`

func scanActivity(sc interface{ Scan(...any) error }) (Activity, error) {
	var a Activity
	var approvedBy sql.NullString
	var approvalDate, expiresAt sql.NullTime
	err := sc.Scan(&a.ID, &a.UniversityID, &a.ProgramID, &a.StudentID, &a.Type, &a.Title, &a.Description, &a.DriveLink,
		&a.Status, &approvedBy, &approvalDate, &a.RejectionReason, &expiresAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Activity{}, err
	}
	if approvedBy.Valid {
		a.ApprovedBy = &approvedBy.String
	}
	if approvalDate.Valid {
		a.ApprovalDate = &approvalDate.Time
	}
	if expiresAt.Valid {
		a.ExpiresAt = &expiresAt.Time
	}
	return a, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r *Repository) Create(ctx context.Context, a Activity) (Activity, error) {
	a.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO activities (id, university_id, program_id, student_id, type, title, description, drive_link, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at
	`, a.ID, a.UniversityID, a.ProgramID, a.StudentID, a.Type, a.Title, a.Description, a.DriveLink, a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Activity{}, err
	}
	return a, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Activity, error) {
	a, err := scanActivity(r.db.QueryRowContext(ctx, selectActivities+` WHERE id = $1 AND status <> 'rejected'`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) ListByStudent(ctx context.Context, studentID, typ string) ([]Activity, error) {
	return r.list(ctx, selectActivities+`
		WHERE student_id = $1 AND status <> 'rejected' AND ($2 = '' OR type = $2)
		ORDER BY created_at DESC`, studentID, typ)
}

func (r *Repository) ListPending(ctx context.Context, universityID, programID string) ([]Activity, error) {
	return r.list(ctx, selectActivities+`
		WHERE university_id = $1 AND status = 'pending' AND ($2 = '' OR program_id::text = $2)
		ORDER BY created_at ASC`, universityID, programID)
}

// Decide applies d to a pending record. The status predicate makes
// concurrent decisions first-writer-wins.
func (r *Repository) Decide(ctx context.Context, id string, d Decision) (*Activity, error) {
	var approvedBy sql.NullString
	var approvalDate sql.NullTime
	if d.Status == StatusApproved {
		approvedBy = sql.NullString{String: d.ActorID, Valid: true}
		approvalDate = sql.NullTime{Time: d.At, Valid: true}
	}
	var expiresAt sql.NullTime
	if d.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *d.ExpiresAt, Valid: true}
	}
	a, err := scanActivity(r.db.QueryRowContext(ctx, `
		UPDATE activities SET
			status = $2, approved_by = $3, approval_date = $4, rejection_reason = $5, expires_at = $6, updated_at = $7
		WHERE id = $1 AND status = 'pending'
		RETURNING id, university_id, program_id, student_id, type, title, description, drive_link, status,
		          approved_by, approval_date, rejection_reason, expires_at, created_at, updated_at
	`, id, d.Status, approvedBy, approvalDate, d.Reason, expiresAt, d.At))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) Events(ctx context.Context, activityID string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_id, activity_id, student_id, status, actor_id, actor_role, reason, occurred_at
		FROM activity_events WHERE activity_id = $1 ORDER BY occurred_at, id`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.ActivityID, &e.StudentID, &e.Status, &e.ActorID, &e.ActorRole, &e.Reason, &e.At); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// RecordEvent appends an audit event. Redelivered events are ignored.
func (r *Repository) RecordEvent(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_events (event_id, activity_id, student_id, status, actor_id, actor_role, reason, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (event_id) DO NOTHING
	`, e.ID, e.ActivityID, e.StudentID, e.Status, e.ActorID, e.ActorRole, e.Reason, e.At)
	return err
}

// DeleteExpired removes rejected records whose retention ended before now.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE status = 'rejected' AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
