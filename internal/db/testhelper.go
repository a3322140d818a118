package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestMaster opens a hardened SQLite write/read pool pair for a master
// store in t.TempDir(), runs master migrations, and registers cleanup.
func OpenTestMaster(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()
	return openTestPair(t, "master.sqlite", RunMasterMigrations)
}

// OpenTestTenant opens a hardened SQLite write/read pool pair for a tenant
// store in t.TempDir(), runs tenant migrations, and registers cleanup.
//
// Tests that don't need the read/write split can use writeDB for everything.
func OpenTestTenant(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()
	return openTestPair(t, "tenant.sqlite", RunTenantMigrations)
}

func openTestPair(t *testing.T, name string, migrate func(*sql.DB) error) (writeDB, readDB *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)

	writeDB, readDB, err := OpenSQLitePair(path, 4)
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	if err := migrate(writeDB); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return writeDB, readDB
}
