package fleet

import (
	"context"
	"time"

	"fleetops/internal/db/repository"
	"fleetops/internal/domain"
	"fleetops/internal/tenant"
)

// GetTruckStatsQuery aggregates delivered loads per truck over a date range.
// OrderBy selects distance, gross, or (default) truck number.
type GetTruckStatsQuery struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OrderBy    string    `json:"orderBy"`
	Descending bool      `json:"descending"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
}

func (q GetTruckStatsQuery) Validate() error {
	if err := (domain.PageRequest{Page: q.Page, PageSize: q.PageSize}).Validate(); err != nil {
		return err
	}
	if !q.End.After(q.Start) {
		return domain.ErrValidation("end date must be after start date.")
	}
	return nil
}

// GetTruckStats returns one page of truck groups: per-truck gross and
// distance over the window, drivers hydrated, paginated by truck group.
func (s *Service) GetTruckStats(ctx context.Context, scope *tenant.Scope, q GetTruckStatsQuery) (domain.Page[domain.TruckStats], error) {
	stats, total, err := repository.NewLoadRepo(scope.Read()).TruckStats(ctx, domain.TruckStatsQuery{
		Start:      q.Start,
		End:        q.End,
		OrderBy:    q.OrderBy,
		Descending: q.Descending,
		Page:       domain.PageRequest{Page: q.Page, PageSize: q.PageSize},
	})
	if err != nil {
		return domain.Page[domain.TruckStats]{}, err
	}
	return domain.NewPage(stats, total, q.PageSize), nil
}

// GetTruckQuery fetches one truck with its drivers.
type GetTruckQuery struct {
	TruckID string `json:"truckId"`
}

func (q GetTruckQuery) Validate() error {
	if q.TruckID == "" {
		return domain.ErrValidation("truck id is required.")
	}
	return nil
}

func (s *Service) GetTruck(ctx context.Context, scope *tenant.Scope, q GetTruckQuery) (*domain.Truck, error) {
	return repository.NewTruckRepo(scope.Read()).GetByID(ctx, q.TruckID)
}

// ListEmployeesQuery searches employees by name or email, optionally
// filtered by role.
type ListEmployeesQuery struct {
	Search   string `json:"search"`
	Role     string `json:"role"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

func (q ListEmployeesQuery) Validate() error {
	if err := (domain.PageRequest{Page: q.Page, PageSize: q.PageSize}).Validate(); err != nil {
		return err
	}
	if q.Role != "" && q.Role != domain.RoleDispatcher && q.Role != domain.RoleDriver && q.Role != domain.RoleManager {
		return domain.ErrValidation("role must be one of dispatcher, driver, manager.")
	}
	return nil
}

func (s *Service) ListEmployees(ctx context.Context, scope *tenant.Scope, q ListEmployeesQuery) (domain.Page[domain.Employee], error) {
	page := domain.PageRequest{Page: q.Page, PageSize: q.PageSize}
	spec := repository.SearchEmployees(q.Search, q.Role, page)

	employees, total, err := repository.NewEmployeeRepo(scope.Read()).List(ctx, spec)
	if err != nil {
		return domain.Page[domain.Employee]{}, err
	}
	return domain.NewPage(employees, total, q.PageSize), nil
}

// ListNotificationsQuery pages through the tenant's notifications, newest
// first.
type ListNotificationsQuery struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func (q ListNotificationsQuery) Validate() error {
	return domain.PageRequest{Page: q.Page, PageSize: q.PageSize}.Validate()
}

func (s *Service) ListNotifications(ctx context.Context, scope *tenant.Scope, q ListNotificationsQuery) (domain.Page[domain.Notification], error) {
	page := domain.PageRequest{Page: q.Page, PageSize: q.PageSize}
	notifications, total, err := repository.NewNotificationRepo(scope.Read()).List(ctx, page)
	if err != nil {
		return domain.Page[domain.Notification]{}, err
	}
	return domain.NewPage(notifications, total, q.PageSize), nil
}
