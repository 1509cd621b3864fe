package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"

	pgClassDataException      = "22"
	pgClassConnection         = "08"
	pgClassInsufficientRes    = "53"
	pgClassOperatorIntervened = "57"
)

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. When constraintName is provided, the helper also
// requires the constraint name to appear in the error.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	unique := pgCode(err) == pgUniqueViolation ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
	if !unique || constraintName == "" {
		return unique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == constraintName {
		return true
	}
	return strings.Contains(msg, constraintName)
}

// IsForeignKeyViolation reports whether err references a missing parent row.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if pgCode(err) == pgForeignKeyViolation || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// IsCheckViolation reports whether err references a CHECK or NOT NULL constraint.
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	switch pgCode(err) {
	case pgCheckViolation, pgNotNullViolation:
		return true
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "CHECK constraint failed") || strings.Contains(msg, "NOT NULL constraint failed")
}

// IsDataException reports values the database cannot store or convert,
// such as an integer out of range or malformed text input.
func IsDataException(err error) bool {
	if err == nil {
		return false
	}
	if pgClass(err) == pgClassDataException {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "integer overflow") || strings.Contains(msg, "out of range")
}

// IsUnavailable reports connection, cancellation and timeout faults that a caller may retry.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	switch pgClass(err) {
	case pgClassConnection, pgClassInsufficientRes, pgClassOperatorIntervened:
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(err.Error(), "database is locked")
}

// Classify maps a raw storage error onto the service error taxonomy.
// Errors that already carry a code pass through untouched.
func Classify(err error, op string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, op+": not found")
	case IsUnavailable(err):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op+": storage unavailable")
	case IsUniqueViolation(err, ""), IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, op+": constraint violation")
	case IsCheckViolation(err), IsDataException(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, op+": value rejected by storage")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op+": storage error")
	}
}

func pgClass(err error) string {
	if code := pgCode(err); len(code) == 5 {
		return code[:2]
	}
	return ""
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
