package auth

import (
	"context"
	"strings"
	"time"

	"academia/internal/apperr"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
	ErrInactive           = apperr.Forbidden("university account is inactive")
	ErrUnknownRole        = apperr.Invalid("unknown role")
)

// Account is a stored login of any role.
type Account struct {
	ID           string
	Role         Role
	UniversityID string
	ProgramID    string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
}

// AccountStore finds login records. FindAccount returns nil when no account matches.
type AccountStore interface {
	FindAccount(ctx context.Context, role Role, email string) (*Account, error)
}

// Session is the outcome of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Principal Principal `json:"principal"`
}

// Service verifies credentials and manages session tokens.
type Service struct {
	accounts   AccountStore
	revoker    Revoker
	issuer     string
	signingKey string
	ttl        time.Duration
}

func NewService(accounts AccountStore, revoker Revoker, issuer, signingKey string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{accounts: accounts, revoker: revoker, issuer: issuer, signingKey: signingKey, ttl: ttl}
}

// dummyHash keeps unknown-email logins as slow as wrong-password ones.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z5p6fRT7V8n1Y1U1n7B1mQ1e"

// Login verifies email and password for role and issues a session token.
func (s *Service) Login(ctx context.Context, role, email, password string) (Session, error) {
	r, ok := ParseRole(role)
	if !ok {
		return Session{}, ErrUnknownRole
	}
	acct, err := s.accounts.FindAccount(ctx, r, NormalizeEmail(email))
	if err != nil {
		return Session{}, err
	}
	if acct == nil {
		CheckPassword(dummyHash, password)
		return Session{}, ErrInvalidCredentials
	}
	if !CheckPassword(acct.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	if !acct.Active {
		return Session{}, ErrInactive
	}

	p := Principal{
		ID:           acct.ID,
		Role:         acct.Role,
		UniversityID: acct.UniversityID,
		ProgramID:    acct.ProgramID,
		Name:         acct.Name,
	}
	tok, err := Issue(p, s.issuer, s.signingKey, s.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok.Value, ExpiresAt: tok.ExpiresAt, Principal: p}, nil
}

// Logout revokes the token until its natural expiry.
func (s *Service) Logout(ctx context.Context, claims Claims) error {
	if s.revoker == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// TTL is the lifetime of issued tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

// NormalizeEmail trims and lower-cases an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
