package domain

import (
	"fmt"
	"time"
)

// Load statuses follow the dispatch lifecycle.
const (
	LoadStatusDispatched = "dispatched"
	LoadStatusPickedUp   = "picked_up"
	LoadStatusDelivered  = "delivered"
	LoadStatusCancelled  = "cancelled"
)

// ValidLoadStatus reports whether s is a known load status.
func ValidLoadStatus(s string) bool {
	switch s {
	case LoadStatusDispatched, LoadStatusPickedUp, LoadStatusDelivered, LoadStatusCancelled:
		return true
	}
	return false
}

// Employee is a tenant staff member: dispatcher, driver, or manager.
// Drivers carry a push-notification device token and their last reported
// position for the live-tracking map.
type Employee struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	Role        string
	DeviceToken string
	LastLat     *float64
	LastLon     *float64
	LastAddress string
	JoinedAt    time.Time
}

// FullName returns "First Last" for display.
func (e Employee) FullName() string {
	return fmt.Sprintf("%s %s", e.FirstName, e.LastName)
}

// Truck is a vehicle with an assigned set of drivers.
type Truck struct {
	ID          string
	TruckNumber string
	Drivers     []Employee
	CreatedAt   time.Time
}

// Load is a haul from origin to destination, assigned to a truck.
type Load struct {
	ID             string
	RefID          int64
	Origin         string
	Destination    string
	Distance       float64
	DeliveryCost   float64
	Status         string
	AssignedTruck  string
	DispatchedDate time.Time
	PickUpDate     *time.Time
	DeliveryDate   *time.Time
}

// Notification is a tenant-wide message shown to dispatchers.
type Notification struct {
	ID        string
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

// TruckStats is one row of the truck-statistics aggregate: per-truck gross
// and distance over the delivered loads in a date range, with the truck's
// drivers hydrated for display.
type TruckStats struct {
	TruckID     string
	TruckNumber string
	Gross       float64
	Distance    float64
	Drivers     []Employee
}
