package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want pkgerrors.Code
	}{
		{name: "not found", err: gorm.ErrRecordNotFound, want: pkgerrors.CodeNotFound},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: pkgerrors.CodeDependency},
		{name: "pg unique", err: &pgconn.PgError{Code: "23505", ConstraintName: "customers_email_key"}, want: pkgerrors.CodeConflict},
		{name: "pg fk", err: &pgconn.PgError{Code: "23503"}, want: pkgerrors.CodeConflict},
		{name: "pg check", err: &pgconn.PgError{Code: "23514"}, want: pkgerrors.CodeValidation},
		{name: "pg integer out of range", err: &pgconn.PgError{Code: "22003", Message: "integer out of range"}, want: pkgerrors.CodeValidation},
		{name: "pg bad text", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "22P02"}), want: pkgerrors.CodeValidation},
		{name: "pg connection", err: &pgconn.PgError{Code: "08006"}, want: pkgerrors.CodeDependency},
		{name: "pg too many connections", err: &pgconn.PgError{Code: "53300"}, want: pkgerrors.CodeDependency},
		{name: "pg admin shutdown", err: &pgconn.PgError{Code: "57P01"}, want: pkgerrors.CodeDependency},
		{name: "sqlite integer overflow", err: errors.New("integer overflow"), want: pkgerrors.CodeValidation},
		{name: "sqlite unique", err: errors.New("UNIQUE constraint failed: customers.email"), want: pkgerrors.CodeConflict},
		{name: "sqlite check", err: errors.New("CHECK constraint failed: quantity > 0"), want: pkgerrors.CodeValidation},
		{name: "other", err: errors.New("syntax error"), want: pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, "op")
			assert.Equal(t, tt.want, pkgerrors.CodeOf(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
	assert.NoError(t, Classify(nil, "op"))
}

func TestIsUniqueViolationByConstraint(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "customers_email_key"}
	assert.True(t, IsUniqueViolation(err, "customers_email_key"))
	assert.False(t, IsUniqueViolation(err, "customers_phone_key"))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: customers.email"), "customers.email"))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
}

func TestDataExceptionsAreNotRetryable(t *testing.T) {
	got := Classify(&pgconn.PgError{Code: "22003", Message: "integer out of range"}, "create order")
	meta := pkgerrors.MetadataFor(pkgerrors.CodeOf(got))
	assert.False(t, meta.Retryable)
	assert.Less(t, meta.HTTPStatus, 500)
}
