package db

import (
	"context"
	"database/sql"
)

// DBTX is the statement surface repositories run against. Outside a unit
// of work it is the shared *sql.DB; inside WithinTx it is the open *sql.Tx,
// so the same repository constructors serve both paths.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
