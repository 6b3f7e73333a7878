package activity

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"academia/internal/apperr"
	"academia/internal/auth"
	"academia/internal/metrics"
	"academia/internal/queue"
	"academia/internal/validation"
)

// Store persists activity records. Rejected records are invisible to Get and
// the list methods. Decide applies d only while the record is still pending
// and returns nil otherwise.
type Store interface {
	Create(ctx context.Context, a Activity) (Activity, error)
	Get(ctx context.Context, id string) (*Activity, error)
	ListByStudent(ctx context.Context, studentID, typ string) ([]Activity, error)
	ListPending(ctx context.Context, universityID, programID string) ([]Activity, error)
	Decide(ctx context.Context, id string, d Decision) (*Activity, error)
	Events(ctx context.Context, activityID string) ([]Event, error)
}

// publishTimeout bounds how long a decision waits on the queue.
const publishTimeout = 2 * time.Second

// Publisher hands decision events to the worker.
type Publisher interface {
	Publish(ctx context.Context, msg queue.Message) error
}

// Service implements submission and the approval workflow.
type Service struct {
	store     Store
	pub       Publisher
	retention time.Duration
	log       *zap.Logger
	now       func() time.Time
}

// NewService wires the workflow. Rejected records become eligible for
// deletion once retention has passed.
func NewService(store Store, pub Publisher, retention time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, pub: pub, retention: retention, log: log, now: time.Now}
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Submit creates a pending record for the calling student.
func (s *Service) Submit(ctx context.Context, p auth.Principal, in CreateInput) (Activity, error) {
	if p.Role != auth.RoleStudent {
		return Activity{}, apperr.ErrForbidden
	}
	if !validation.IsActivityType(in.Type) {
		return Activity{}, ErrBadType
	}
	link := strings.TrimSpace(in.DriveLink)
	if !isHTTPURL(link) {
		return Activity{}, ErrBadLink
	}
	return s.store.Create(ctx, Activity{
		UniversityID: p.UniversityID,
		ProgramID:    p.ProgramID,
		StudentID:    p.ID,
		Type:         in.Type,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		DriveLink:    link,
		Status:       StatusPending,
	})
}

// Mine lists the caller's records, newest first, optionally of one type.
func (s *Service) Mine(ctx context.Context, p auth.Principal, typ string) ([]Activity, error) {
	if p.Role != auth.RoleStudent {
		return nil, apperr.ErrForbidden
	}
	if typ != "" && !validation.IsActivityType(typ) {
		return nil, ErrBadType
	}
	return s.store.ListByStudent(ctx, p.ID, typ)
}

func isApprover(p auth.Principal) bool {
	return p.HasRole(auth.RoleFaculty, auth.RoleSPOC)
}

// Pending lists records awaiting a decision in the approver's university.
// A SPOC only sees its own program.
func (s *Service) Pending(ctx context.Context, p auth.Principal) ([]Activity, error) {
	if !isApprover(p) {
		return nil, apperr.ErrForbidden
	}
	program := ""
	if p.ProgramScoped() {
		program = p.ProgramID
	}
	return s.store.ListPending(ctx, p.UniversityID, program)
}

func (s *Service) visible(ctx context.Context, p auth.Principal, id string) (Activity, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return Activity{}, err
	}
	if a == nil || !p.CanSee(a.UniversityID, a.ProgramID) {
		return Activity{}, ErrNotFound
	}
	return *a, nil
}

// Get returns a record to its owner or to an approver of the tenant.
func (s *Service) Get(ctx context.Context, p auth.Principal, id string) (Activity, error) {
	a, err := s.visible(ctx, p, id)
	if err != nil {
		return Activity{}, err
	}
	if a.StudentID != p.ID && !isApprover(p) {
		return Activity{}, apperr.ErrForbidden
	}
	return a, nil
}

// History returns the decision audit trail of a record.
func (s *Service) History(ctx context.Context, p auth.Principal, id string) ([]Event, error) {
	a, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return s.store.Events(ctx, a.ID)
}

// SetStatus approves or rejects a pending record. A rejected record stops
// being readable at once and is deleted by the sweeper after the retention
// period.
func (s *Service) SetStatus(ctx context.Context, p auth.Principal, id string, in StatusInput) (Activity, error) {
	if !isApprover(p) {
		return Activity{}, apperr.ErrForbidden
	}
	a, err := s.visible(ctx, p, id)
	if err != nil {
		return Activity{}, err
	}
	if a.Status != StatusPending {
		return Activity{}, ErrNotPending
	}

	now := s.now().UTC()
	d := Decision{Status: in.Status, ActorID: p.ID, At: now}
	switch in.Status {
	case StatusApproved:
	case StatusRejected:
		d.Reason = strings.TrimSpace(in.RejectionReason)
		exp := now.Add(s.retention)
		d.ExpiresAt = &exp
	default:
		return Activity{}, apperr.Invalid("status must be approved or rejected")
	}

	updated, err := s.store.Decide(ctx, a.ID, d)
	if err != nil {
		return Activity{}, err
	}
	if updated == nil {
		return Activity{}, ErrNotPending
	}
	metrics.ActivityDecisions.WithLabelValues(d.Status).Inc()
	s.publish(ctx, p, *updated, d)
	return *updated, nil
}

func (s *Service) publish(ctx context.Context, p auth.Principal, a Activity, d Decision) {
	if s.pub == nil {
		return
	}
	evt := Event{
		ID:         uuid.NewString(),
		ActivityID: a.ID,
		StudentID:  a.StudentID,
		Type:       a.Type,
		Title:      a.Title,
		Status:     d.Status,
		ActorID:    p.ID,
		ActorRole:  string(p.Role),
		Reason:     d.Reason,
		At:         d.At,
	}
	msg, err := queue.NewMessage(EventDecided, evt)
	if err == nil {
		// the decision is already stored at this point
		pctx, cancel := context.WithTimeout(ctx, publishTimeout)
		err = s.pub.Publish(pctx, msg)
		cancel()
	}
	if err != nil {
		metrics.QueueEvents.WithLabelValues(EventDecided, "publish_failed").Inc()
		s.log.Warn("publish activity decision failed",
			zap.String("activity_id", a.ID),
			zap.String("status", d.Status),
			zap.Error(err),
		)
	}
}
