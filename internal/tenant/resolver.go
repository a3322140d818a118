package tenant

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"fleetops/internal/db"
	"fleetops/internal/domain"
)

// Resolver activates tenant scopes. Resolution is a master-store lookup plus
// (on first use) opening the tenant's database pair and running its
// migrations. Repeated resolves of the same tenant share one scope.
type Resolver struct {
	directory domain.TenantDirectory
	dbDir     string
	logger    *slog.Logger

	mu     sync.Mutex
	scopes map[string]*Scope
}

// NewResolver creates a resolver over the given tenant directory. dbDir is
// where per-tenant SQLite files live.
func NewResolver(directory domain.TenantDirectory, dbDir string, logger *slog.Logger) *Resolver {
	return &Resolver{
		directory: directory,
		dbDir:     dbDir,
		logger:    logger,
		scopes:    make(map[string]*Scope),
	}
}

// Resolve returns the scope for the given tenant identifier. Unknown tenants
// fail with a NotFoundError; resolution failure is fatal to the request.
// Resolve is idempotent and has no side effect beyond establishing the scope.
func (r *Resolver) Resolve(ctx context.Context, tenantID string) (*Scope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if scope, ok := r.scopes[tenantID]; ok {
		scope.touch()
		return scope, nil
	}

	t, err := r.directory.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(r.dbDir, t.DBName)
	writeDB, readDB, err := db.OpenSQLitePair(path, 4)
	if err != nil {
		return nil, domain.ErrPersistence("open tenant store %q: %v", t.ID, err)
	}
	if err := db.RunTenantMigrations(writeDB); err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, domain.ErrPersistence("migrate tenant store %q: %v", t.ID, err)
	}

	scope := &Scope{tenant: *t, writeDB: writeDB, readDB: readDB}
	scope.touch()
	r.scopes[tenantID] = scope
	r.logger.Info("tenant scope opened", "tenant", t.ID, "db", t.DBName)
	return scope, nil
}

// EvictIdle closes scopes that have not been used for longer than maxIdle
// and returns how many were closed. The TTL is expected to dwarf any single
// request's lifetime; a re-resolve after eviction simply reopens the scope.
func (r *Resolver) EvictIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	evicted := 0
	for id, scope := range r.scopes {
		if scope.idleSince().Before(cutoff) {
			if err := scope.close(); err != nil {
				r.logger.Warn("close idle tenant scope", "tenant", id, "error", err)
			}
			delete(r.scopes, id)
			evicted++
		}
	}
	return evicted
}

// Close shuts down every open scope.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for id, scope := range r.scopes {
		if err := scope.close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close tenant scope %q: %w", id, err)
		}
		delete(r.scopes, id)
	}
	return firstErr
}
