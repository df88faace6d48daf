// Package repository implements all database queries for the campus event service.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrEventFull is returned when an event has no remaining seats.
var ErrEventFull = errors.New("event is fully booked")

// ErrAlreadyRegistered is returned when a student registers for the same event twice.
var ErrAlreadyRegistered = errors.New("already registered for this event")

// ErrEventPast is returned when registering for an event that has started.
var ErrEventPast = errors.New("event has already started")

// ErrOverlap is returned when another live event occupies the location.
var ErrOverlap = errors.New("location already booked for this interval")

// ErrSeatsExceedCapacity is returned when an event asks for more seats than its location holds.
var ErrSeatsExceedCapacity = errors.New("seats exceed location capacity")

// ErrLocationNotFound is returned when an event references an unknown location.
var ErrLocationNotFound = errors.New("location not found")

// ErrDuplicateUsername and ErrDuplicateEmail are returned on account conflicts.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// SQLSTATE codes the repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeExclusionViolation  = "23P01"
)

// Constraint names from the schema migrations.
const (
	constraintUniqueEventStudent = "unique_event_student"
	constraintEventsNoOverlap    = "events_no_overlap"
	constraintUsersUsername      = "users_username_key"
	constraintUsersEmail         = "users_email_key"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgError extracts the PostgreSQL error with the given SQLSTATE, if any.
func pgError(err error, code string) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr, true
	}
	return nil, false
}

// isViolation reports whether err is a violation of the named constraint.
func isViolation(err error, code, constraint string) bool {
	pgErr, ok := pgError(err, code)
	return ok && pgErr.ConstraintName == constraint
}
