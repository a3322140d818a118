// Package fleet implements the command and query handlers for fleet
// operations. Handlers execute exclusively through repositories bound to
// the tenant scope the pipeline resolved; real-time-relevant commands hand
// an event to the publisher only after a successful commit.
package fleet

import (
	"context"
	"database/sql"
	"log/slog"

	"fleetops/internal/domain"
	"fleetops/internal/tenant"
)

// Service holds the handler dependencies that outlive a single request.
type Service struct {
	publisher domain.Publisher
	logger    *slog.Logger
}

// NewService creates the fleet service.
func NewService(publisher domain.Publisher, logger *slog.Logger) *Service {
	return &Service{publisher: publisher, logger: logger}
}

// inUnitOfWork runs fn inside a fresh unit of work on the scope's store.
// Exactly one commit attempt happens per successful execution; every error
// path rolls back.
func (s *Service) inUnitOfWork(ctx context.Context, scope *tenant.Scope, fn func(tx *sql.Tx) error) error {
	uow, err := scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback() //nolint:errcheck

	if err := fn(uow.Tx()); err != nil {
		return err
	}
	return uow.Commit()
}

// publish hands the event to the broadcast hub. Publication is
// fire-and-forget: it happens only after a successful commit and can no
// longer affect the command's result.
func (s *Service) publish(event domain.Event) {
	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}
