package services

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrInvalidTransition is returned when an event is illegal for the
	// record's current state. Recoverable: the caller re-fetches and lets
	// the user decide.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrConflict is returned when a precondition was violated concurrently,
	// e.g. an active assignment appeared between check and create.
	ErrConflict = errors.New("conflict")

	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
	ErrForbidden  = errors.New("forbidden")

	// ErrMessagingLocked is returned when a trainer tries to send the first
	// message in a conversation.
	ErrMessagingLocked = errors.New("messaging locked until the client writes first")
)

// isUniqueViolation reports a Postgres duplicate-key error (23505). Used
// where a partial unique index backstops a check-then-create sequence.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
