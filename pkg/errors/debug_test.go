package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpPgxError(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint",
		ConstraintName: "customers_email_key",
		TableName:      "customers",
		Detail:         "Key (email)=(a@b.c) already exists.",
	}
	err := Wrap(CodeConflict, fmt.Errorf("upsert customer: %w", pgErr), "email already registered")

	dump := Dump(err)
	require.Equal(t, CodeConflict, dump.Code)
	assert.False(t, dump.Retryable)
	assert.Equal(t, "23505", dump.PGCode)
	assert.Equal(t, "customers_email_key", dump.PGConstraint)
	assert.Equal(t, "customers", dump.PGTable)
	assert.Len(t, dump.Chain, 3)

	fields := dump.Fields()
	assert.Equal(t, "23505", fields["pg_code"])
	assert.Equal(t, "duplicate key value violates unique constraint", fields["pg_message"])
	assert.NotContains(t, fields, "pg_column")
}

func TestDumpLibPQError(t *testing.T) {
	err := fmt.Errorf("insert item: %w", &pq.Error{Code: "23503", Table: "order_items", Message: "fk violation"})
	dump := Dump(err)
	assert.Equal(t, "23503", dump.PGCode)
	assert.Equal(t, "order_items", dump.PGTable)
	assert.Equal(t, CodeInternal, dump.Code)
}

func TestDumpPlainError(t *testing.T) {
	dump := Dump(stderrors.New("boom"))
	assert.Equal(t, CodeInternal, dump.Code)
	assert.Equal(t, "boom", dump.Fields()["error_message"])
	assert.NotContains(t, dump.Fields(), "pg_code")
	assert.Equal(t, ErrorDump{}, Dump(nil))
}
