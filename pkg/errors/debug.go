package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the log-friendly view of an error chain. The PG fields are
// filled from whichever postgres driver error appears in the chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Retryable  bool     `json:"retryable"`
	Chain      []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error(), Code: CodeOf(err), Retryable: Retryable(err)}
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgx *pgconn.PgError
	var lib *pq.Error
	switch {
	case stderrors.As(err, &pgx):
		d.PGCode, d.PGMessage, d.PGDetail = pgx.Code, pgx.Message, pgx.Detail
		d.PGTable, d.PGColumn, d.PGConstraint = pgx.TableName, pgx.ColumnName, pgx.ConstraintName
	case stderrors.As(err, &lib):
		d.PGCode, d.PGMessage, d.PGDetail = string(lib.Code), lib.Message, lib.Detail
		d.PGTable, d.PGColumn, d.PGConstraint = lib.Table, lib.Column, lib.Constraint
	}
	return d
}

// Fields renders the dump as logger fields; postgres keys appear only when a
// driver error was found.
func (d ErrorDump) Fields() map[string]any {
	f := map[string]any{
		"error_message":   d.TopMessage,
		"error_code":      d.Code,
		"error_retryable": d.Retryable,
		"error_chain":     d.Chain,
	}
	if d.PGCode == "" {
		return f
	}
	for k, v := range map[string]string{
		"pg_code":       d.PGCode,
		"pg_message":    d.PGMessage,
		"pg_detail":     d.PGDetail,
		"pg_table":      d.PGTable,
		"pg_column":     d.PGColumn,
		"pg_constraint": d.PGConstraint,
	} {
		if v != "" {
			f[k] = v
		}
	}
	return f
}
