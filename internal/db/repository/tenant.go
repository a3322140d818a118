package repository

import (
	"context"
	"time"

	"fleetops/internal/domain"
)

// TenantRepo reads and writes the tenant directory in the master store.
type TenantRepo struct {
	db DBTX
}

func NewTenantRepo(db DBTX) *TenantRepo {
	return &TenantRepo{db: db}
}

var _ domain.TenantDirectory = (*TenantRepo)(nil)

func (r *TenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, display_name, db_name, created_at FROM tenants WHERE id = ?`, id)
	t, err := scanTenant(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return t, nil
}

func (r *TenantRepo) Create(ctx context.Context, t *domain.Tenant) (*domain.Tenant, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, display_name, db_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.DisplayName, t.DBName, now)
	if err != nil {
		return nil, mapDBError(err)
	}
	created := *t
	created.CreatedAt = now
	return &created, nil
}

func (r *TenantRepo) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, display_name, db_name, created_at FROM tenants ORDER BY name`)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.DisplayName, &t.DBName, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
