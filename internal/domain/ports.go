package domain

import (
	"context"
	"time"
)

// TenantDirectory looks up tenants in the master store. Resolution is the
// only cross-tenant read in the system.
type TenantDirectory interface {
	GetByID(ctx context.Context, id string) (*Tenant, error)
	Create(ctx context.Context, t *Tenant) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
}

// TruckRepository provides tenant-scoped truck access. Implementations are
// bound to a single tenant's store; the scope handle, not the repository
// caller, decides which tenant that is.
type TruckRepository interface {
	GetByID(ctx context.Context, id string) (*Truck, error)
	GetByDriver(ctx context.Context, driverID string) (*Truck, error)
	Update(ctx context.Context, t *Truck) error
	SetDrivers(ctx context.Context, truckID string, driverIDs []string) error
	Count(ctx context.Context) (int64, error)
}

// EmployeeRepository provides tenant-scoped employee access.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
	UpdateLocation(ctx context.Context, id string, lat, lon float64, address string) error
	ListByTruck(ctx context.Context, truckID string) ([]Employee, error)
}

// LoadRepository provides tenant-scoped load access and the truck-statistics
// aggregate.
type LoadRepository interface {
	GetByID(ctx context.Context, id string) (*Load, error)
	Create(ctx context.Context, l *Load) (*Load, error)
	Update(ctx context.Context, l *Load) error
	TruckStats(ctx context.Context, q TruckStatsQuery) ([]TruckStats, int64, error)
}

// NotificationRepository provides tenant-scoped notification access.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	MarkRead(ctx context.Context, id string) error
	List(ctx context.Context, page PageRequest) ([]Notification, int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TruckStatsQuery filters delivered loads in [Start, End], grouped per truck.
// OrderBy is one of "distance", "gross", or empty for truck number.
type TruckStatsQuery struct {
	Start      time.Time
	End        time.Time
	OrderBy    string
	Descending bool
	Page       PageRequest
}

// Publisher hands a domain event to the broadcast hub. Delivery is
// best-effort and must never fail the originating command.
type Publisher interface {
	Publish(event Event)
}
