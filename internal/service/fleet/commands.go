package fleet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"fleetops/internal/db/repository"
	"fleetops/internal/domain"
	"fleetops/internal/pipeline"
	"fleetops/internal/tenant"
)

// UpdateTruckCommand reassigns a truck's number and driver set.
type UpdateTruckCommand struct {
	TruckID     string   `json:"truckId"`
	TruckNumber string   `json:"truckNumber"`
	DriverIDs   []string `json:"driverIds"`
}

func (c UpdateTruckCommand) Validate() error {
	var problems []string
	if c.TruckID == "" {
		problems = append(problems, "truck id is required.")
	}
	if c.TruckNumber == "" {
		problems = append(problems, "truck number is required.")
	}
	if len(problems) > 0 {
		return domain.ErrValidation("%s", pipeline.Coalesce(problems))
	}
	return nil
}

// UpdateTruck applies the command in one unit of work: the number change and
// the driver reassignment commit together or not at all.
func (s *Service) UpdateTruck(ctx context.Context, scope *tenant.Scope, cmd UpdateTruckCommand) (*domain.Truck, error) {
	err := s.inUnitOfWork(ctx, scope, func(tx *sql.Tx) error {
		trucks := repository.NewTruckRepo(tx)
		employees := repository.NewEmployeeRepo(tx)

		truck, err := trucks.GetByID(ctx, cmd.TruckID)
		if err != nil {
			return err
		}

		for _, driverID := range cmd.DriverIDs {
			driver, err := employees.GetByID(ctx, driverID)
			if err != nil {
				return err
			}
			if driver.Role != domain.RoleDriver {
				return domain.ErrValidation("employee %q is not a driver", driverID)
			}
		}

		truck.TruckNumber = cmd.TruckNumber
		if err := trucks.Update(ctx, truck); err != nil {
			return err
		}
		return trucks.SetDrivers(ctx, cmd.TruckID, cmd.DriverIDs)
	})
	if err != nil {
		return nil, err
	}
	return repository.NewTruckRepo(scope.Read()).GetByID(ctx, cmd.TruckID)
}

// SetDriverDeviceTokenCommand stores a driver's push-notification token.
type SetDriverDeviceTokenCommand struct {
	UserID      string `json:"userId"`
	DeviceToken string `json:"deviceToken"`
}

func (c SetDriverDeviceTokenCommand) Validate() error {
	if c.UserID == "" {
		return domain.ErrValidation("user id is required.")
	}
	return nil
}

// SetDriverDeviceToken is a no-op success when the stored token already
// matches; otherwise it updates and commits.
func (s *Service) SetDriverDeviceToken(ctx context.Context, scope *tenant.Scope, cmd SetDriverDeviceTokenCommand) (struct{}, error) {
	driver, err := repository.NewEmployeeRepo(scope.Read()).GetByID(ctx, cmd.UserID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return struct{}{}, domain.ErrNotFound("could not find the specified driver")
		}
		return struct{}{}, err
	}

	if driver.DeviceToken != "" && driver.DeviceToken == cmd.DeviceToken {
		return struct{}{}, nil
	}

	err = s.inUnitOfWork(ctx, scope, func(tx *sql.Tx) error {
		driver.DeviceToken = cmd.DeviceToken
		return repository.NewEmployeeRepo(tx).Update(ctx, driver)
	})
	return struct{}{}, err
}

// CreateLoadCommand dispatches a new load to a truck.
type CreateLoadCommand struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	Distance      float64 `json:"distance"`
	DeliveryCost  float64 `json:"deliveryCost"`
	AssignedTruck string  `json:"assignedTruck"`
}

func (c CreateLoadCommand) Validate() error {
	var problems []string
	if c.Origin == "" {
		problems = append(problems, "origin is required.")
	}
	if c.Destination == "" {
		problems = append(problems, "destination is required.")
	}
	if c.Distance < 0 {
		problems = append(problems, "distance must not be negative.")
	}
	if c.DeliveryCost < 0 {
		problems = append(problems, "delivery cost must not be negative.")
	}
	if c.AssignedTruck == "" {
		problems = append(problems, "assigned truck is required.")
	}
	if len(problems) > 0 {
		return domain.ErrValidation("%s", pipeline.Coalesce(problems))
	}
	return nil
}

// CreateLoad creates a dispatched load and notifies the tenant's dispatchers.
func (s *Service) CreateLoad(ctx context.Context, scope *tenant.Scope, cmd CreateLoadCommand) (*domain.Load, error) {
	var created *domain.Load
	err := s.inUnitOfWork(ctx, scope, func(tx *sql.Tx) error {
		if _, err := repository.NewTruckRepo(tx).GetByID(ctx, cmd.AssignedTruck); err != nil {
			return err
		}

		loads := repository.NewLoadRepo(tx)
		refID, err := loads.NextRefID(ctx)
		if err != nil {
			return err
		}

		created, err = loads.Create(ctx, &domain.Load{
			ID:             uuid.NewString(),
			RefID:          refID,
			Origin:         cmd.Origin,
			Destination:    cmd.Destination,
			Distance:       cmd.Distance,
			DeliveryCost:   cmd.DeliveryCost,
			Status:         domain.LoadStatusDispatched,
			AssignedTruck:  cmd.AssignedTruck,
			DispatchedDate: time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(domain.NewLoadStatusChanged(scope.Tenant().ID, domain.LoadStatusChange{
		LoadID: created.ID,
		RefID:  created.RefID,
		Status: created.Status,
	}))
	return created, nil
}

// UpdateLoadStatusCommand advances a load through its lifecycle.
type UpdateLoadStatusCommand struct {
	LoadID string `json:"loadId"`
	Status string `json:"status"`
}

func (c UpdateLoadStatusCommand) Validate() error {
	var problems []string
	if c.LoadID == "" {
		problems = append(problems, "load id is required.")
	}
	if !domain.ValidLoadStatus(c.Status) {
		problems = append(problems, "status must be one of dispatched, picked_up, delivered, cancelled.")
	}
	if len(problems) > 0 {
		return domain.ErrValidation("%s", pipeline.Coalesce(problems))
	}
	return nil
}

// UpdateLoadStatus validates the transition, stamps lifecycle dates, and
// publishes the change to the tenant's dispatchers after commit.
func (s *Service) UpdateLoadStatus(ctx context.Context, scope *tenant.Scope, cmd UpdateLoadStatusCommand) (*domain.Load, error) {
	var updated *domain.Load
	err := s.inUnitOfWork(ctx, scope, func(tx *sql.Tx) error {
		loads := repository.NewLoadRepo(tx)
		load, err := loads.GetByID(ctx, cmd.LoadID)
		if err != nil {
			return err
		}

		if load.Status == domain.LoadStatusDelivered || load.Status == domain.LoadStatusCancelled {
			return domain.ErrConflict("load %q is already %s", load.ID, load.Status)
		}

		now := time.Now().UTC()
		switch cmd.Status {
		case domain.LoadStatusPickedUp:
			load.PickUpDate = &now
		case domain.LoadStatusDelivered:
			if load.PickUpDate == nil {
				load.PickUpDate = &now
			}
			load.DeliveryDate = &now
		}
		load.Status = cmd.Status

		if err := loads.Update(ctx, load); err != nil {
			return err
		}
		updated = load
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(domain.NewLoadStatusChanged(scope.Tenant().ID, domain.LoadStatusChange{
		LoadID: updated.ID,
		RefID:  updated.RefID,
		Status: updated.Status,
	}))
	return updated, nil
}

// UpdateTruckLocationCommand records a driver's reported position.
type UpdateTruckLocationCommand struct {
	DriverID  string  `json:"driverId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

func (c UpdateTruckLocationCommand) Validate() error {
	var problems []string
	if c.DriverID == "" {
		problems = append(problems, "driver id is required.")
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		problems = append(problems, "latitude must be between -90 and 90.")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		problems = append(problems, "longitude must be between -180 and 180.")
	}
	if len(problems) > 0 {
		return domain.ErrValidation("%s", pipeline.Coalesce(problems))
	}
	return nil
}

// UpdateTruckLocation persists the driver's position and broadcasts a
// location event to the tenant's dispatchers.
func (s *Service) UpdateTruckLocation(ctx context.Context, scope *tenant.Scope, cmd UpdateTruckLocationCommand) (struct{}, error) {
	var driver *domain.Employee
	err := s.inUnitOfWork(ctx, scope, func(tx *sql.Tx) error {
		employees := repository.NewEmployeeRepo(tx)
		var err error
		driver, err = employees.GetByID(ctx, cmd.DriverID)
		if err != nil {
			return err
		}
		if driver.Role != domain.RoleDriver {
			return domain.ErrValidation("employee %q is not a driver", cmd.DriverID)
		}
		return employees.UpdateLocation(ctx, cmd.DriverID, cmd.Latitude, cmd.Longitude, cmd.Address)
	})
	if err != nil {
		return struct{}{}, err
	}

	upd := domain.LocationUpdate{
		DriverID:   driver.ID,
		DriverName: driver.FullName(),
		Latitude:   cmd.Latitude,
		Longitude:  cmd.Longitude,
		Address:    cmd.Address,
	}
	// The truck association is display metadata; a driver without a truck
	// still reports positions.
	if truck, err := repository.NewTruckRepo(scope.Read()).GetByDriver(ctx, driver.ID); err == nil {
		upd.TruckID = truck.ID
	}
	s.publish(domain.NewLocationUpdated(scope.Tenant().ID, upd))
	return struct{}{}, nil
}

// RaiseNotificationCommand stores and broadcasts a tenant-wide notification.
type RaiseNotificationCommand struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (c RaiseNotificationCommand) Validate() error {
	var problems []string
	if c.Title == "" {
		problems = append(problems, "title is required.")
	}
	if c.Message == "" {
		problems = append(problems, "message is required.")
	}
	if len(problems) > 0 {
		return domain.ErrValidation("%s", pipeline.Coalesce(problems))
	}
	return nil
}

// RaiseNotification persists the notification, then broadcasts it.
func (s *Service) RaiseNotification(ctx context.Context, scope *tenant.Scope, cmd RaiseNotificationCommand) (*domain.Notification, error) {
	var created *domain.Notification
	err := s.inUnitOfWork(ctx, scope, func(tx *sql.Tx) error {
		var err error
		created, err = repository.NewNotificationRepo(tx).Create(ctx, &domain.Notification{
			ID:      uuid.NewString(),
			Title:   cmd.Title,
			Message: cmd.Message,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(domain.NewNotificationRaised(scope.Tenant().ID, domain.NotificationPayload{
		Title:   created.Title,
		Message: created.Message,
	}))
	return created, nil
}

// MarkNotificationReadCommand flags a notification as read.
type MarkNotificationReadCommand struct {
	NotificationID string `json:"notificationId"`
}

func (c MarkNotificationReadCommand) Validate() error {
	if c.NotificationID == "" {
		return domain.ErrValidation("notification id is required.")
	}
	return nil
}

// MarkNotificationRead flags the notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, scope *tenant.Scope, cmd MarkNotificationReadCommand) (struct{}, error) {
	err := s.inUnitOfWork(ctx, scope, func(tx *sql.Tx) error {
		return repository.NewNotificationRepo(tx).MarkRead(ctx, cmd.NotificationID)
	})
	return struct{}{}, err
}
