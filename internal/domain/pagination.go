package domain

import (
	"math"
	"strings"
)

// PageRequest holds pagination parameters for paged queries. Pages are
// 1-based; PageSize must exceed one.
type PageRequest struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the requested page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Validate checks the paging rule before any query executes. Violations are
// coalesced into a single space-joined message.
func (p PageRequest) Validate() error {
	var problems []string
	if p.Page < 1 {
		problems = append(problems, "page number must be at least 1.")
	}
	if p.PageSize <= 1 {
		problems = append(problems, "page size must be greater than one.")
	}
	if len(problems) > 0 {
		return ErrValidation("%s", strings.Join(problems, " "))
	}
	return nil
}

// TotalPages computes ceil(totalItems / pageSize).
func TotalPages(totalItems int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalItems) / float64(pageSize)))
}

// Page is the paged result shape returned to callers.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// NewPage wraps items with the totals derived from the request's page size.
func NewPage[T any](items []T, totalItems int64, pageSize int) Page[T] {
	return Page[T]{
		Items:      items,
		TotalItems: totalItems,
		TotalPages: TotalPages(totalItems, pageSize),
	}
}
