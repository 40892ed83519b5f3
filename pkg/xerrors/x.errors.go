package xerrors

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Postgres error codes the ledger reacts to.
const (
	PGUniqueViolation      = "23505"
	PGForeignKeyViolation  = "23503"
	PGSerializationFailure = "40001"
	PGDeadlockDetected     = "40P01"
	PGLockNotAvailable     = "55P03"
	PGQueryCanceled        = "57014"
	PGNumericOutOfRange    = "22003"
)

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
)

// ParsePGErrorCode returns the SQLSTATE of a postgres error, or "unknown".
func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// SQLiteCode returns the primary result code of a sqlite error, or 0.
func SQLiteCode(err error) int {
	var sErr *sqlite.Error
	if errors.As(err, &sErr) {
		return sErr.Code() & 0xff
	}
	return 0
}

// IsRetryable reports whether err is a transient lock conflict: the same
// operation may succeed if it is run again from the start.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch ParsePGErrorCode(err) {
	case PGSerializationFailure, PGDeadlockDetected, PGLockNotAvailable, PGQueryCanceled:
		return true
	}
	switch SQLiteCode(err) {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// IsUniqueViolation reports a duplicate key on either backend.
func IsUniqueViolation(err error) bool {
	if ParsePGErrorCode(err) == PGUniqueViolation {
		return true
	}
	var sErr *sqlite.Error
	if !errors.As(err, &sErr) {
		return false
	}
	switch sErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// extended result codes disabled on this connection
		return strings.Contains(sErr.Error(), "UNIQUE")
	}
	return false
}

// IsNumericOutOfRange reports a value that does not fit its numeric column.
func IsNumericOutOfRange(err error) bool {
	return ParsePGErrorCode(err) == PGNumericOutOfRange
}
