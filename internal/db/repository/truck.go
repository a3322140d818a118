package repository

import (
	"context"

	"fleetops/internal/domain"
)

// TruckRepo provides truck access within a single tenant's store.
type TruckRepo struct {
	db DBTX
}

func NewTruckRepo(db DBTX) *TruckRepo {
	return &TruckRepo{db: db}
}

var _ domain.TruckRepository = (*TruckRepo)(nil)

func (r *TruckRepo) GetByID(ctx context.Context, id string) (*domain.Truck, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, truck_number, created_at FROM trucks WHERE id = ?`, id)
	var t domain.Truck
	if err := row.Scan(&t.ID, &t.TruckNumber, &t.CreatedAt); err != nil {
		return nil, mapDBError(err)
	}

	drivers, err := NewEmployeeRepo(r.db).ListByTruck(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Drivers = drivers
	return &t, nil
}

func (r *TruckRepo) GetByDriver(ctx context.Context, driverID string) (*domain.Truck, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT t.id, t.truck_number, t.created_at
		 FROM trucks t
		 JOIN truck_drivers td ON td.truck_id = t.id
		 WHERE td.employee_id = ?`, driverID)
	var t domain.Truck
	if err := row.Scan(&t.ID, &t.TruckNumber, &t.CreatedAt); err != nil {
		return nil, mapDBError(err)
	}
	return &t, nil
}

func (r *TruckRepo) Create(ctx context.Context, t *domain.Truck) (*domain.Truck, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trucks (id, truck_number) VALUES (?, ?)`, t.ID, t.TruckNumber)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, t.ID)
}

func (r *TruckRepo) Update(ctx context.Context, t *domain.Truck) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE trucks SET truck_number = ? WHERE id = ?`, t.TruckNumber, t.ID)
	if err != nil {
		return mapDBError(err)
	}
	return requireRow(res, "truck %q not found", t.ID)
}

// SetDrivers replaces the truck's driver assignments with the given set.
func (r *TruckRepo) SetDrivers(ctx context.Context, truckID string, driverIDs []string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM truck_drivers WHERE truck_id = ?`, truckID); err != nil {
		return mapDBError(err)
	}
	for _, driverID := range driverIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO truck_drivers (truck_id, employee_id) VALUES (?, ?)`,
			truckID, driverID); err != nil {
			return mapDBError(err)
		}
	}
	return nil
}

func (r *TruckRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trucks`).Scan(&total); err != nil {
		return 0, mapDBError(err)
	}
	return total, nil
}
