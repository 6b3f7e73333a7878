package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"academia/internal/apperr"
)

// Password bounds enforced wherever an account password is set. bcrypt only
// reads the first 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var (
	ErrPasswordTooShort = apperr.Invalid(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	ErrPasswordTooLong  = apperr.Invalid(fmt.Sprintf("password must be at most %d bytes", MaxPasswordLength))
)

// HashPassword returns the bcrypt hash stored on account records.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
