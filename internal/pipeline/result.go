// Package pipeline wraps every command and query in the validate-then-execute
// contract: per-request validation, delegated authorization, tenant-scoped
// execution, and failure normalization. No fault escapes the pipeline
// boundary as a panic or raw error; callers always receive a Result.
package pipeline

import "strings"

// Result is the tagged outcome of a handled request: success with an
// optional payload, or failure with a human-readable description.
type Result[T any] struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// OK wraps a payload in a successful result.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail builds a failed result carrying the given description.
func Fail[T any](description string) Result[T] {
	return Result[T]{Error: description}
}

// Coalesce joins validation problems into the single space-joined message
// contract that external consumers depend on. Returns "" when there are no
// problems.
func Coalesce(problems []string) string {
	return strings.Join(problems, " ")
}
