// Package repository implements domain repository interfaces using SQLite.
//
// Every repository is constructed over a DBTX, so the same code runs against
// a tenant scope's pool or against an open unit-of-work transaction. Tenant
// isolation is physical: the handle passed in belongs to exactly one
// tenant's database file.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"fleetops/internal/domain"
)

// DBTX is the querier satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// requireRow converts a zero-row-affected update into a typed NotFoundError.
func requireRow(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound(format, args...)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return &domain.ConflictError{Message: "resource already exists"}
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "CHECK constraint failed"):
		return &domain.ConflictError{Message: msg}
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "database table is locked"):
		return domain.ErrTransient("%s", msg)
	}
	return err
}
