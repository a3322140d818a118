package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fleetops/internal/db"
	"fleetops/internal/domain"
)

// setupTenant opens a migrated per-tenant store in a temp dir. Tests use the
// write pool for everything; the read/write split is exercised elsewhere.
func setupTenant(t *testing.T) (context.Context, *sql.DB) {
	t.Helper()
	writeDB, _ := db.OpenTestTenant(t)
	return context.Background(), writeDB
}

func seedEmployee(t *testing.T, dbx DBTX, id, first, last, role string) *domain.Employee {
	t.Helper()
	e, err := NewEmployeeRepo(dbx).Create(context.Background(), &domain.Employee{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s@example.com", id),
		Role:      role,
	})
	require.NoError(t, err)
	return e
}

func seedTruck(t *testing.T, dbx DBTX, id, number string, driverIDs ...string) *domain.Truck {
	t.Helper()
	repo := NewTruckRepo(dbx)
	tr, err := repo.Create(context.Background(), &domain.Truck{ID: id, TruckNumber: number})
	require.NoError(t, err)
	if len(driverIDs) > 0 {
		require.NoError(t, repo.SetDrivers(context.Background(), id, driverIDs))
	}
	return tr
}

// seedDeliveredLoad inserts a delivered load dispatched and delivered at the
// given times.
func seedDeliveredLoad(t *testing.T, dbx DBTX, id, truckID string, cost, distance float64, dispatched, delivered time.Time) {
	t.Helper()
	_, err := NewLoadRepo(dbx).Create(context.Background(), &domain.Load{
		ID:             id,
		RefID:          1001,
		Origin:         "Dallas, TX",
		Destination:    "Austin, TX",
		Distance:       distance,
		DeliveryCost:   cost,
		Status:         domain.LoadStatusDelivered,
		AssignedTruck:  truckID,
		DispatchedDate: dispatched,
		DeliveryDate:   &delivered,
	})
	require.NoError(t, err)
}
