package db

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

// goose keeps global dialect/FS state; serialize migration runs.
var migrateMu sync.Mutex

func runMigrations(db *sql.DB, dir string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(EmbedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up (%s): %w", dir, err)
	}

	return nil
}

// RunMasterMigrations executes all pending migrations against the master store.
func RunMasterMigrations(db *sql.DB) error {
	return runMigrations(db, "migrations/master")
}

// RunTenantMigrations executes all pending migrations against a tenant store.
// Called by the resolver the first time a tenant scope is opened.
func RunTenantMigrations(db *sql.DB) error {
	return runMigrations(db, "migrations/tenant")
}
