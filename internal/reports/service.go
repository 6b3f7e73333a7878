package reports

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"academia/internal/apperr"
	"academia/internal/auth"
	"academia/internal/validation"
)

// Repository persists report documents. Get returns nil when absent.
type Repository interface {
	Create(ctx context.Context, rep Report) error
	Get(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, universityID, kind string) ([]Report, error)
	Update(ctx context.Context, rep Report) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Service manages a university's reports. Only university accounts and
// SPOCs of that university may use it.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func authorized(p auth.Principal) error {
	if !p.HasRole(auth.RoleUniversity, auth.RoleSPOC) || p.UniversityID == "" {
		return apperr.ErrForbidden
	}
	return nil
}

func clean(in Input) (Input, error) {
	if !IsKind(in.Kind) {
		return in, ErrBadKind
	}
	if !validation.IsAcademicYear(in.AcademicYear) {
		return in, apperr.Invalid("academicYear must look like 2023-24")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, apperr.Invalid("title is required")
	}
	if in.Sections == nil {
		in.Sections = []Section{}
	}
	for i := range in.Sections {
		if in.Sections[i].Entries == nil {
			in.Sections[i].Entries = []Entry{}
		}
	}
	return in, nil
}

func (s *Service) Create(ctx context.Context, p auth.Principal, in Input) (Report, error) {
	if err := authorized(p); err != nil {
		return Report{}, err
	}
	in, err := clean(in)
	if err != nil {
		return Report{}, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	rep := Report{
		ID:           uuid.NewString(),
		UniversityID: p.UniversityID,
		Kind:         in.Kind,
		AcademicYear: in.AcademicYear,
		Title:        in.Title,
		Sections:     in.Sections,
		CreatedBy:    p.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		return Report{}, err
	}
	return rep, nil
}

// List returns the caller's university reports, optionally of one kind.
func (s *Service) List(ctx context.Context, p auth.Principal, kind string) ([]Report, error) {
	if err := authorized(p); err != nil {
		return nil, err
	}
	if kind != "" && !IsKind(kind) {
		return nil, ErrBadKind
	}
	return s.repo.List(ctx, p.UniversityID, kind)
}

// Get returns a report of the caller's university. When kind is set the
// report must also be of that kind.
func (s *Service) Get(ctx context.Context, p auth.Principal, id, kind string) (Report, error) {
	if err := authorized(p); err != nil {
		return Report{}, err
	}
	rep, err := s.repo.Get(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if rep == nil || rep.UniversityID != p.UniversityID || (kind != "" && rep.Kind != kind) {
		return Report{}, ErrNotFound
	}
	return *rep, nil
}

func (s *Service) Update(ctx context.Context, p auth.Principal, id string, in Input) (Report, error) {
	rep, err := s.Get(ctx, p, id, "")
	if err != nil {
		return Report{}, err
	}
	in, err = clean(in)
	if err != nil {
		return Report{}, err
	}
	rep.Kind = in.Kind
	rep.AcademicYear = in.AcademicYear
	rep.Title = in.Title
	rep.Sections = in.Sections
	rep.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	ok, err := s.repo.Update(ctx, rep)
	if err != nil {
		return Report{}, err
	}
	if !ok {
		return Report{}, ErrNotFound
	}
	return rep, nil
}

func (s *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	rep, err := s.Get(ctx, p, id, "")
	if err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, rep.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
