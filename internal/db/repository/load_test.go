package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetops/internal/domain"
)

func TestLoadCreateAndGet(t *testing.T) {
	t.Parallel()
	ctx, dbx := setupTenant(t)

	seedTruck(t, dbx, "t-1", "T100")
	repo := NewLoadRepo(dbx)

	dispatched := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	created, err := repo.Create(ctx, &domain.Load{
		ID:             "l-1",
		RefID:          1001,
		Origin:         "Dallas, TX",
		Destination:    "Austin, TX",
		Distance:       195,
		DeliveryCost:   850,
		Status:         domain.LoadStatusDispatched,
		AssignedTruck:  "t-1",
		DispatchedDate: dispatched,
	})
	require.NoError(t, err)
	assert.Equal(t, "t-1", created.AssignedTruck)
	assert.EqualValues(t, 1001, created.RefID)
	assert.Nil(t, created.DeliveryDate)

	_, err = repo.GetByID(ctx, "missing")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestLoadUpdate(t *testing.T) {
	t.Parallel()
	ctx, dbx := setupTenant(t)

	seedTruck(t, dbx, "t-1", "T100")
	repo := NewLoadRepo(dbx)

	dispatched := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	load, err := repo.Create(ctx, &domain.Load{
		ID: "l-1", RefID: 1001, Origin: "a", Destination: "b",
		Status: domain.LoadStatusDispatched, AssignedTruck: "t-1",
		DispatchedDate: dispatched,
	})
	require.NoError(t, err)

	delivered := dispatched.Add(48 * time.Hour)
	load.Status = domain.LoadStatusDelivered
	load.DeliveryDate = &delivered
	require.NoError(t, repo.Update(ctx, load))

	got, err := repo.GetByID(ctx, "l-1")
	require.NoError(t, err)
	assert.Equal(t, domain.LoadStatusDelivered, got.Status)
	require.NotNil(t, got.DeliveryDate)
	assert.True(t, got.DeliveryDate.Equal(delivered))

	err = repo.Update(ctx, &domain.Load{ID: "missing", Status: domain.LoadStatusDispatched, DispatchedDate: dispatched})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestNextRefID(t *testing.T) {
	t.Parallel()
	ctx, dbx := setupTenant(t)

	repo := NewLoadRepo(dbx)
	next, err := repo.NextRefID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1001, next)

	seedTruck(t, dbx, "t-1", "T100")
	seedDeliveredLoad(t, dbx, "l-1", "t-1", 100, 10,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	next, err = repo.NextRefID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1002, next)
}

func TestTruckStatsAggregation(t *testing.T) {
	t.Parallel()
	ctx, dbx := setupTenant(t)

	seedEmployee(t, dbx, "d-1", "Ada", "Miller", domain.RoleDriver)
	seedEmployee(t, dbx, "d-2", "Ben", "Young", domain.RoleDriver)
	seedTruck(t, dbx, "t-1", "T100", "d-1")
	seedTruck(t, dbx, "t-2", "T200", "d-2")
	seedTruck(t, dbx, "t-3", "T300")

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	// Two delivered loads for t-1, one for t-2, all inside the window.
	seedDeliveredLoad(t, dbx, "l-1", "t-1", 100, 10, start.Add(24*time.Hour), start.Add(48*time.Hour))
	seedDeliveredLoad(t, dbx, "l-2", "t-1", 50, 5, start.Add(72*time.Hour), start.Add(96*time.Hour))
	seedDeliveredLoad(t, dbx, "l-3", "t-2", 200, 20, start.Add(24*time.Hour), start.Add(48*time.Hour))

	// Delivered outside the window: excluded.
	seedDeliveredLoad(t, dbx, "l-4", "t-3", 999, 99, end.Add(time.Hour), end.Add(48*time.Hour))

	// Not yet delivered: excluded.
	repo := NewLoadRepo(dbx)
	_, err := repo.Create(ctx, &domain.Load{
		ID: "l-5", RefID: 1005, Origin: "a", Destination: "b",
		Distance: 42, DeliveryCost: 42,
		Status: domain.LoadStatusDispatched, AssignedTruck: "t-3",
		DispatchedDate: start.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	stats, total, err := repo.TruckStats(ctx, domain.TruckStatsQuery{
		Start: start, End: end,
		OrderBy: "gross", Descending: true,
		Page: domain.PageRequest{Page: 1, PageSize: 10},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 2, total)
	require.Len(t, stats, 2)

	// gross desc: t-2 (200) before t-1 (150).
	assert.Equal(t, "t-2", stats[0].TruckID)
	assert.InDelta(t, 200, stats[0].Gross, 0.001)
	assert.InDelta(t, 20, stats[0].Distance, 0.001)
	require.Len(t, stats[0].Drivers, 1)
	assert.Equal(t, "Ben Young", stats[0].Drivers[0].FullName())

	assert.Equal(t, "t-1", stats[1].TruckID)
	assert.InDelta(t, 150, stats[1].Gross, 0.001)
	assert.InDelta(t, 15, stats[1].Distance, 0.001)
	require.Len(t, stats[1].Drivers, 1)
	assert.Equal(t, "Ada Miller", stats[1].Drivers[0].FullName())
}

func TestTruckStatsPagination(t *testing.T) {
	t.Parallel()
	ctx, dbx := setupTenant(t)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	// Five trucks, one delivered load each with a distinct distance. Paging
	// counts truck groups, not loads.
	for i := 1; i <= 5; i++ {
		truckID := fmt.Sprintf("t-%d", i)
		seedTruck(t, dbx, truckID, fmt.Sprintf("T%d00", i))
		seedDeliveredLoad(t, dbx, fmt.Sprintf("l-%d", i), truckID,
			float64(100*i), float64(10*i), start.Add(24*time.Hour), start.Add(48*time.Hour))
	}

	repo := NewLoadRepo(dbx)
	query := domain.TruckStatsQuery{
		Start: start, End: end,
		OrderBy: "distance", Descending: true,
		Page: domain.PageRequest{Page: 1, PageSize: 2},
	}

	stats, total, err := repo.TruckStats(ctx, query)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Equal(t, 3, domain.TotalPages(total, query.Page.PageSize))
	require.Len(t, stats, 2)
	assert.Equal(t, "t-5", stats[0].TruckID)
	assert.Equal(t, "t-4", stats[1].TruckID)

	query.Page.Page = 3
	stats, total, err = repo.TruckStats(ctx, query)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, stats, 1)
	assert.Equal(t, "t-1", stats[0].TruckID)

	// Past the last page: empty items, same total.
	query.Page.Page = 4
	stats, total, err = repo.TruckStats(ctx, query)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Empty(t, stats)
}

func TestTruckStatsEmptyWindow(t *testing.T) {
	t.Parallel()
	ctx, dbx := setupTenant(t)

	stats, total, err := NewLoadRepo(dbx).TruckStats(ctx, domain.TruckStatsQuery{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Page:  domain.PageRequest{Page: 1, PageSize: 10},
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, stats)
}
