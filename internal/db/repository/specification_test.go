package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fleetops/internal/domain"
)

func TestSpecificationClauses(t *testing.T) {
	t.Parallel()

	t.Run("empty matches all rows", func(t *testing.T) {
		t.Parallel()
		sql, args := NewSpecification().clauses()
		assert.Empty(t, sql)
		assert.Empty(t, args)
	})

	t.Run("predicates are AND-ed", func(t *testing.T) {
		t.Parallel()
		spec := NewSpecification().
			Where("role = ?", "driver").
			Where("last_name LIKE ?", "%mill%")
		sql, args := spec.whereClause()
		assert.Equal(t, " WHERE role = ? AND last_name LIKE ?", sql)
		assert.Equal(t, []any{"driver", "%mill%"}, args)
	})

	t.Run("order and paging render after where", func(t *testing.T) {
		t.Parallel()
		spec := NewSpecification().
			Where("role = ?", "driver").
			OrderBy("last_name", true).
			Paginate(domain.PageRequest{Page: 3, PageSize: 10})
		sql, args := spec.clauses()
		assert.Equal(t, " WHERE role = ? ORDER BY last_name DESC LIMIT ? OFFSET ?", sql)
		assert.Equal(t, []any{"driver", 10, 20}, args)
	})
}
