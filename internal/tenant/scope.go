// Package tenant resolves tenant identifiers into request-scoped data-access
// handles. A Scope is bound to exactly one tenant's database file; holding a
// scope for tenant A gives no path to any other tenant's data.
package tenant

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"fleetops/internal/domain"
)

// Scope is the activated data-access handle for one tenant. It is shared
// across requests for the same tenant (the pools are safe for concurrent
// use); units of work are not.
type Scope struct {
	tenant   domain.Tenant
	writeDB  *sql.DB
	readDB   *sql.DB
	lastUsed atomic.Int64 // unix nanos
}

// Tenant returns the tenant this scope is bound to.
func (s *Scope) Tenant() domain.Tenant { return s.tenant }

// Read returns the read pool for tenant-scoped queries.
func (s *Scope) Read() *sql.DB {
	s.touch()
	return s.readDB
}

// Begin opens a unit of work on the tenant's write pool. The caller owns it:
// exactly one Commit attempt, Rollback on every other path.
func (s *Scope) Begin(ctx context.Context) (*UnitOfWork, error) {
	s.touch()
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapTxError(err)
	}
	return &UnitOfWork{tx: tx}, nil
}

func (s *Scope) touch() {
	s.lastUsed.Store(time.Now().UnixNano())
}

func (s *Scope) idleSince() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Scope) close() error {
	rerr := s.readDB.Close()
	werr := s.writeDB.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// UnitOfWork is a transactional boundary over one tenant's store. It is
// never shared across concurrent requests.
type UnitOfWork struct {
	tx   *sql.Tx
	done bool
}

// Tx exposes the transaction for repository construction.
func (u *UnitOfWork) Tx() *sql.Tx { return u.tx }

// Commit atomically applies the unit of work. Busy/locked failures surface
// as transient persistence errors eligible for caller-level retry.
func (u *UnitOfWork) Commit() error {
	if u.done {
		return domain.ErrPersistence("unit of work already finished")
	}
	u.done = true
	if err := u.tx.Commit(); err != nil {
		return mapTxError(err)
	}
	return nil
}

// Rollback discards the unit of work. Safe to call after Commit; the first
// finisher wins.
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return mapTxError(err)
	}
	return nil
}

func mapTxError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") {
		return domain.ErrTransient("%s", msg)
	}
	return domain.ErrPersistence("%s", msg)
}
