package domain

import "time"

// Tenant is an isolated customer (trucking company). Its business data lives
// in its own database file named by DBName; the master store only holds this
// descriptor row.
type Tenant struct {
	ID          string
	Name        string
	DisplayName string
	DBName      string
	CreatedAt   time.Time
}
