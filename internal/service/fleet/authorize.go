package fleet

import (
	"fleetops/internal/domain"
)

// Authorize is the delegated authorization step for fleet requests: a role
// check per request type. Denial short-circuits execution in the pipeline.
func Authorize(p domain.ContextPrincipal, req any) error {
	switch req.(type) {
	case UpdateTruckCommand, CreateLoadCommand, UpdateLoadStatusCommand,
		RaiseNotificationCommand, MarkNotificationReadCommand:
		return requireRole(p, domain.RoleDispatcher, domain.RoleManager)
	case UpdateTruckLocationCommand:
		return requireRole(p, domain.RoleDriver)
	case SetDriverDeviceTokenCommand:
		return requireRole(p, domain.RoleDriver, domain.RoleDispatcher, domain.RoleManager)
	case GetTruckStatsQuery, GetTruckQuery, ListEmployeesQuery, ListNotificationsQuery:
		return requireRole(p, domain.RoleDispatcher, domain.RoleManager)
	default:
		return domain.ErrAccessDenied("unknown request type")
	}
}

func requireRole(p domain.ContextPrincipal, roles ...string) error {
	for _, role := range roles {
		if p.HasRole(role) {
			return nil
		}
	}
	return domain.ErrAccessDenied("role not permitted for this operation")
}
