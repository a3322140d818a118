package domain

import (
	"encoding/json"
	"time"
)

// Event types understood by live-tracking clients.
const (
	EventLocationUpdated    = "location.updated"
	EventLoadStatusChanged  = "load.status_changed"
	EventNotificationRaised = "notification.raised"
)

// Subscription groups within a tenant. Per-driver groups use DriverGroup.
const (
	GroupDispatchers = "dispatchers"
	GroupDrivers     = "drivers"
)

// DriverGroup names the subscription group for a single driver's truck.
func DriverGroup(driverID string) string {
	return "driver:" + driverID
}

// Event is an immutable fact produced by a successful command and consumed
// exactly once by the broadcast hub. Group selects the target audience
// within the tenant.
type Event struct {
	Type       string          `json:"type"`
	TenantID   string          `json:"tenantId"`
	Group      string          `json:"-"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// LocationUpdate is the payload of a location.updated event.
type LocationUpdate struct {
	DriverID   string  `json:"driverId"`
	DriverName string  `json:"driverName"`
	TruckID    string  `json:"truckId,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address,omitempty"`
}

// LoadStatusChange is the payload of a load.status_changed event.
type LoadStatusChange struct {
	LoadID string `json:"loadId"`
	RefID  int64  `json:"refId"`
	Status string `json:"status"`
}

// NotificationPayload is the payload of a notification.raised event.
type NotificationPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func newEvent(eventType, tenantID, group string, payload any) Event {
	data, _ := json.Marshal(payload)
	return Event{
		Type:       eventType,
		TenantID:   tenantID,
		Group:      group,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// NewLocationUpdated builds a location.updated event for a tenant's dispatchers.
func NewLocationUpdated(tenantID string, upd LocationUpdate) Event {
	return newEvent(EventLocationUpdated, tenantID, GroupDispatchers, upd)
}

// NewLoadStatusChanged builds a load.status_changed event for a tenant's dispatchers.
func NewLoadStatusChanged(tenantID string, change LoadStatusChange) Event {
	return newEvent(EventLoadStatusChanged, tenantID, GroupDispatchers, change)
}

// NewNotificationRaised builds a notification.raised event for a tenant's dispatchers.
func NewNotificationRaised(tenantID string, n NotificationPayload) Event {
	return newEvent(EventNotificationRaised, tenantID, GroupDispatchers, n)
}
