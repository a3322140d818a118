package tenant

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"fleetops/internal/db/repository"
	"fleetops/internal/domain"
)

// Janitor runs the cron-based maintenance jobs: closing idle tenant scopes
// and purging read notifications past their retention window.
type Janitor struct {
	cron      *cron.Cron
	resolver  *Resolver
	directory domain.TenantDirectory
	logger    *slog.Logger

	idleTTL   time.Duration
	retention time.Duration
}

// NewJanitor creates a janitor over the resolver and tenant directory.
func NewJanitor(resolver *Resolver, directory domain.TenantDirectory, idleTTL, retention time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		cron:      cron.New(),
		resolver:  resolver,
		directory: directory,
		logger:    logger,
		idleTTL:   idleTTL,
		retention: retention,
	}
}

// Start registers the maintenance schedules and starts the cron runner.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc("@every 10m", j.evictIdleScopes); err != nil {
		return err
	}
	if _, err := j.cron.AddFunc("@daily", j.purgeNotifications); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("janitor started", "idle_ttl", j.idleTTL, "retention", j.retention)
	return nil
}

// Stop gracefully stops the cron runner.
func (j *Janitor) Stop() {
	j.cron.Stop()
	j.logger.Info("janitor stopped")
}

func (j *Janitor) evictIdleScopes() {
	if n := j.resolver.EvictIdle(j.idleTTL); n > 0 {
		j.logger.Info("evicted idle tenant scopes", "count", n)
	}
}

func (j *Janitor) purgeNotifications() {
	ctx := context.Background()
	tenants, err := j.directory.List(ctx)
	if err != nil {
		j.logger.Warn("notification purge: list tenants", "error", err)
		return
	}

	cutoff := time.Now().UTC().Add(-j.retention)
	for _, t := range tenants {
		if err := j.purgeTenant(ctx, t.ID, cutoff); err != nil {
			j.logger.Warn("notification purge failed", "tenant", t.ID, "error", err)
		}
	}
}

func (j *Janitor) purgeTenant(ctx context.Context, tenantID string, cutoff time.Time) error {
	scope, err := j.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return err
	}
	uow, err := scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback() //nolint:errcheck

	n, err := repository.NewNotificationRepo(uow.Tx()).DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}
	if n > 0 {
		j.logger.Info("purged notifications", "tenant", tenantID, "count", n)
	}
	return nil
}
