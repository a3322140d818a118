package repository

import (
	"context"

	"fleetops/internal/domain"
)

const loadColumns = `id, ref_id, origin, destination, distance, delivery_cost, status, assigned_truck, dispatched_date, pickup_date, delivery_date`

// LoadRepo provides load access within a single tenant's store, including
// the truck-statistics aggregate.
type LoadRepo struct {
	db DBTX
}

func NewLoadRepo(db DBTX) *LoadRepo {
	return &LoadRepo{db: db}
}

var _ domain.LoadRepository = (*LoadRepo)(nil)

func (r *LoadRepo) GetByID(ctx context.Context, id string) (*domain.Load, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+loadColumns+` FROM loads WHERE id = ?`, id)
	var l domain.Load
	var truck *string
	if err := row.Scan(&l.ID, &l.RefID, &l.Origin, &l.Destination, &l.Distance,
		&l.DeliveryCost, &l.Status, &truck, &l.DispatchedDate, &l.PickUpDate, &l.DeliveryDate); err != nil {
		return nil, mapDBError(err)
	}
	if truck != nil {
		l.AssignedTruck = *truck
	}
	return &l, nil
}

func (r *LoadRepo) Create(ctx context.Context, l *domain.Load) (*domain.Load, error) {
	var truck any
	if l.AssignedTruck != "" {
		truck = l.AssignedTruck
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO loads (id, ref_id, origin, destination, distance, delivery_cost, status, assigned_truck, dispatched_date, pickup_date, delivery_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.RefID, l.Origin, l.Destination, l.Distance, l.DeliveryCost,
		l.Status, truck, l.DispatchedDate, l.PickUpDate, l.DeliveryDate)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, l.ID)
}

func (r *LoadRepo) Update(ctx context.Context, l *domain.Load) error {
	var truck any
	if l.AssignedTruck != "" {
		truck = l.AssignedTruck
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE loads SET origin = ?, destination = ?, distance = ?, delivery_cost = ?,
		        status = ?, assigned_truck = ?, pickup_date = ?, delivery_date = ?
		 WHERE id = ?`,
		l.Origin, l.Destination, l.Distance, l.DeliveryCost,
		l.Status, truck, l.PickUpDate, l.DeliveryDate, l.ID)
	if err != nil {
		return mapDBError(err)
	}
	return requireRow(res, "load %q not found", l.ID)
}

// NextRefID returns the next human-facing load reference number for this
// tenant. Reference numbers start at 1001.
func (r *LoadRepo) NextRefID(ctx context.Context) (int64, error) {
	var next int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(ref_id), 1000) + 1 FROM loads`).Scan(&next); err != nil {
		return 0, mapDBError(err)
	}
	return next, nil
}

// statsFilter is the shared predicate for the truck-statistics aggregate:
// delivered loads with a delivery date inside the requested window.
const statsFilter = `l.status = 'delivered'
		   AND l.delivery_date IS NOT NULL
		   AND l.dispatched_date >= ?
		   AND l.delivery_date <= ?
		   AND l.assigned_truck IS NOT NULL`

// TruckStats aggregates delivered loads per truck over a date range and
// returns one page of truck groups plus the total group count. The page is
// a page of trucks, not of raw loads; drivers are hydrated per group after
// aggregation.
func (r *LoadRepo) TruckStats(ctx context.Context, q domain.TruckStatsQuery) ([]domain.TruckStats, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT l.assigned_truck) FROM loads l WHERE `+statsFilter,
		q.Start, q.End).Scan(&total); err != nil {
		return nil, 0, mapDBError(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT l.assigned_truck, t.truck_number,
		        SUM(l.delivery_cost) AS gross, SUM(l.distance) AS distance
		 FROM loads l
		 JOIN trucks t ON t.id = l.assigned_truck
		 WHERE `+statsFilter+`
		 GROUP BY l.assigned_truck, t.truck_number
		 ORDER BY `+statsOrder(q.OrderBy, q.Descending)+`
		 LIMIT ? OFFSET ?`,
		q.Start, q.End, q.Page.PageSize, q.Page.Offset())
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close()

	var stats []domain.TruckStats
	for rows.Next() {
		var s domain.TruckStats
		if err := rows.Scan(&s.TruckID, &s.TruckNumber, &s.Gross, &s.Distance); err != nil {
			return nil, 0, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// Hydrate each group's drivers for display.
	employees := NewEmployeeRepo(r.db)
	for i := range stats {
		drivers, err := employees.ListByTruck(ctx, stats[i].TruckID)
		if err != nil {
			return nil, 0, err
		}
		stats[i].Drivers = drivers
	}

	return stats, total, nil
}

// statsOrder maps the caller-selected key to a whitelisted ORDER BY clause.
// Unknown keys fall back to truck number.
func statsOrder(orderBy string, descending bool) string {
	var col string
	switch orderBy {
	case "distance":
		col = "distance"
	case "gross":
		col = "gross"
	default:
		col = "t.truck_number"
	}
	if descending {
		return col + " DESC"
	}
	return col
}
