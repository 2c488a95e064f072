package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

const (
	constraintUnitName       = "units_name_key"
	constraintUserEmail      = "users_email_key"
	constraintUserExternalID = "users_external_id_key"
	constraintUserRoleUnit   = "users_role_unit_check"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	ok := errors.As(err, &pgErr)
	return pgErr, ok
}

// IsUniqueViolation reports a unique violation, optionally on one constraint.
func IsUniqueViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func IsForeignKeyViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == codeForeignKeyViolation
}

func IsCheckViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == codeCheckViolation && pgErr.ConstraintName == constraint
}

// isInvalidID catches ids that are not UUIDs; callers treat them as missing rows.
func isInvalidID(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == codeInvalidText
}
