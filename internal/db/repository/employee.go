package repository

import (
	"context"
	"database/sql"

	"fleetops/internal/domain"
)

const employeeColumns = `id, first_name, last_name, email, role, device_token, last_lat, last_lon, last_address, joined_at`

// EmployeeRepo provides employee access within a single tenant's store.
type EmployeeRepo struct {
	db DBTX
}

func NewEmployeeRepo(db DBTX) *EmployeeRepo {
	return &EmployeeRepo{db: db}
}

var _ domain.EmployeeRepository = (*EmployeeRepo)(nil)

func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return e, nil
}

func (r *EmployeeRepo) Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (id, first_name, last_name, email, role, device_token, last_address)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FirstName, e.LastName, e.Email, e.Role, e.DeviceToken, e.LastAddress)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, e.ID)
}

func (r *EmployeeRepo) Update(ctx context.Context, e *domain.Employee) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE employees SET first_name = ?, last_name = ?, email = ?, role = ?, device_token = ?
		 WHERE id = ?`,
		e.FirstName, e.LastName, e.Email, e.Role, e.DeviceToken, e.ID)
	if err != nil {
		return mapDBError(err)
	}
	return requireRow(res, "employee %q not found", e.ID)
}

func (r *EmployeeRepo) UpdateLocation(ctx context.Context, id string, lat, lon float64, address string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE employees SET last_lat = ?, last_lon = ?, last_address = ? WHERE id = ?`,
		lat, lon, address, id)
	if err != nil {
		return mapDBError(err)
	}
	return requireRow(res, "employee %q not found", id)
}

func (r *EmployeeRepo) ListByTruck(ctx context.Context, truckID string) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.first_name, e.last_name, e.email, e.role, e.device_token,
		        e.last_lat, e.last_lon, e.last_address, e.joined_at
		 FROM employees e
		 JOIN truck_drivers td ON td.employee_id = e.id
		 WHERE td.truck_id = ?
		 ORDER BY e.last_name, e.first_name`, truckID)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()
	return collectEmployees(rows)
}

// List returns employees matching the specification, with the total count of
// matching rows before pagination.
func (r *EmployeeRepo) List(ctx context.Context, spec *Specification) ([]domain.Employee, int64, error) {
	where, whereArgs := spec.whereClause()

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees`+where, whereArgs...).Scan(&total); err != nil {
		return nil, 0, mapDBError(err)
	}

	clauses, args := spec.clauses()
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees`+clauses, args...)
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close()

	employees, err := collectEmployees(rows)
	return employees, total, err
}

// SearchEmployees builds the specification for the employee list query:
// optional case-insensitive name/email search and optional role filter,
// ordered by last name.
func SearchEmployees(search, role string, page domain.PageRequest) *Specification {
	spec := NewSpecification().OrderBy("last_name, first_name", false).Paginate(page)
	if search != "" {
		like := "%" + search + "%"
		spec.Where(`(first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)`, like, like, like)
	}
	if role != "" {
		spec.Where(`role = ?`, role)
	}
	return spec
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var e domain.Employee
	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Role,
		&e.DeviceToken, &e.LastLat, &e.LastLon, &e.LastAddress, &e.JoinedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEmployees(rows *sql.Rows) ([]domain.Employee, error) {
	var employees []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}
