package fleet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"fleetops/internal/db"
	"fleetops/internal/db/repository"
	"fleetops/internal/domain"
	"fleetops/internal/tenant"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *capturePublisher) Publish(event domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) Events() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Event(nil), p.events...)
}

// setupService resolves a fresh "acme" tenant scope and wires a service over
// a capturing publisher.
func setupService(t *testing.T) (context.Context, *tenant.Scope, *Service, *capturePublisher) {
	t.Helper()
	ctx := context.Background()

	masterWrite, masterRead := db.OpenTestMaster(t)
	_, err := repository.NewTenantRepo(masterWrite).Create(ctx, &domain.Tenant{
		ID: "ten-1", Name: "acme", DisplayName: "Acme Logistics", DBName: "acme.sqlite",
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := tenant.NewResolver(repository.NewTenantRepo(masterRead), t.TempDir(), logger)
	t.Cleanup(func() { _ = resolver.Close() })

	scope, err := resolver.Resolve(ctx, "ten-1")
	require.NoError(t, err)

	publisher := &capturePublisher{}
	return ctx, scope, NewService(publisher, logger), publisher
}

// seedDriver inserts a driver through a committed unit of work.
func seedDriver(t *testing.T, ctx context.Context, scope *tenant.Scope, id, first, last string) {
	t.Helper()
	seedEmployeeRole(t, ctx, scope, id, first, last, domain.RoleDriver)
}

func seedEmployeeRole(t *testing.T, ctx context.Context, scope *tenant.Scope, id, first, last, role string) {
	t.Helper()
	uow, err := scope.Begin(ctx)
	require.NoError(t, err)
	_, err = repository.NewEmployeeRepo(uow.Tx()).Create(ctx, &domain.Employee{
		ID: id, FirstName: first, LastName: last,
		Email: fmt.Sprintf("%s@example.com", id), Role: role,
	})
	require.NoError(t, err)
	require.NoError(t, uow.Commit())
}

func seedTruckWithDrivers(t *testing.T, ctx context.Context, scope *tenant.Scope, id, number string, driverIDs ...string) {
	t.Helper()
	uow, err := scope.Begin(ctx)
	require.NoError(t, err)
	trucks := repository.NewTruckRepo(uow.Tx())
	_, err = trucks.Create(ctx, &domain.Truck{ID: id, TruckNumber: number})
	require.NoError(t, err)
	if len(driverIDs) > 0 {
		require.NoError(t, trucks.SetDrivers(ctx, id, driverIDs))
	}
	require.NoError(t, uow.Commit())
}
