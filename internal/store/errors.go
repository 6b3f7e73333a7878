package store

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

// UniqueViolation reports whether err is a Postgres unique violation and
// returns the name of the violated constraint.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// TranslateUnique maps a unique violation onto the domain error registered for
// its constraint. Other errors are returned unchanged.
func TranslateUnique(err error, byConstraint map[string]error) error {
	name, ok := UniqueViolation(err)
	if !ok {
		return err
	}
	if mapped, ok := byConstraint[name]; ok {
		return mapped
	}
	return err
}

const foreignKeyViolation = "23503"

// IsForeignKeyViolation reports whether err is a Postgres foreign key
// violation, the case of deleting a row that others still reference.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
