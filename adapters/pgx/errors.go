package pgx

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lborres/quora/core"
)

const uniqueViolation = "23505"

const (
	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"
)

// mapNotFound turns sql.ErrNoRows into notFound and wraps anything else.
func mapNotFound(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("db error: %w", err)
}

// mapUserInsert reports unique violations on users as the signup conflicts.
func mapUserInsert(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case constraintUsername:
			return core.ErrDuplicateUsername
		case constraintEmail:
			return core.ErrDuplicateEmail
		}
	}
	return fmt.Errorf("db error: %w", err)
}

// expectOne returns notFound when an UPDATE or DELETE touched no rows.
func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
