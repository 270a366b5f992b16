package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFoundOrDenied covers both a missing row and a row owned by
	// someone else. Callers must not be able to tell the two apart.
	ErrNotFoundOrDenied = errors.New("resource not found or access denied")

	// ErrStorage wraps unexpected persistence failures. The wrapped detail
	// is for logs only and is never sent back to the client.
	ErrStorage = errors.New("storage failure")
)

// ValidationError reports a caller-correctable problem with an input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

const pgFKViolation = "23503"

// isForeignKeyViolation reports whether err is a referential-integrity
// failure, e.g. inserting cards into a deck deleted mid-flight.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgFKViolation
}
