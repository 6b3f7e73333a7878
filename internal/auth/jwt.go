package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token is a signed session token.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Claims represents JWT payload.
type Claims struct {
	Role         Role   `json:"role"`
	UniversityID string `json:"uni,omitempty"`
	ProgramID    string `json:"prog,omitempty"`
	Name         string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Principal returns the caller described by the claims.
func (c Claims) Principal() Principal {
	return Principal{
		ID:           c.Subject,
		Role:         c.Role,
		UniversityID: c.UniversityID,
		ProgramID:    c.ProgramID,
		Name:         c.Name,
	}
}

// Issue signs a session token for p valid for ttl.
func Issue(p Principal, issuer, key string, ttl time.Duration) (Token, error) {
	now := time.Now()
	exp := now.Add(ttl)
	id := uuid.NewString()

	claims := Claims{
		Role:         p.Role,
		UniversityID: p.UniversityID,
		ProgramID:    p.ProgramID,
		Name:         p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    issuer,
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ID: id, ExpiresAt: exp}, nil
}

// Parse validates a token and returns claims.
func Parse(tokenStr, key, issuer string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	if _, ok := ParseRole(string(claims.Role)); !ok || claims.Subject == "" {
		return Claims{}, errors.New("invalid principal")
	}
	return *claims, nil
}
