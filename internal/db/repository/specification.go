package repository

import (
	"strings"

	"fleetops/internal/domain"
)

// Specification is a composable predicate + ordering + paging descriptor
// compiled into SQL clauses. It deliberately has no say in which tenant's
// store it runs against; the repository's handle enforces that.
type Specification struct {
	conds   []string
	args    []any
	orderBy string
	desc    bool
	page    domain.PageRequest
	paged   bool
}

// NewSpecification returns an empty specification matching all rows.
func NewSpecification() *Specification {
	return &Specification{}
}

// Where adds a predicate fragment. Fragments are AND-ed together.
func (s *Specification) Where(cond string, args ...any) *Specification {
	s.conds = append(s.conds, cond)
	s.args = append(s.args, args...)
	return s
}

// OrderBy sets the ordering column and direction. The column must come from
// a fixed whitelist at the call site, never from raw user input.
func (s *Specification) OrderBy(column string, descending bool) *Specification {
	s.orderBy = column
	s.desc = descending
	return s
}

// Paginate applies a page window to the result.
func (s *Specification) Paginate(page domain.PageRequest) *Specification {
	s.page = page
	s.paged = true
	return s
}

// whereClause renders the WHERE fragment (with leading space) and its args.
// Empty when no predicates were added.
func (s *Specification) whereClause() (string, []any) {
	if len(s.conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(s.conds, " AND "), s.args
}

// clauses renders WHERE + ORDER BY + LIMIT/OFFSET and the full arg list.
func (s *Specification) clauses() (string, []any) {
	sql, args := s.whereClause()

	if s.orderBy != "" {
		sql += " ORDER BY " + s.orderBy
		if s.desc {
			sql += " DESC"
		}
	}

	if s.paged {
		sql += " LIMIT ? OFFSET ?"
		args = append(args, s.page.PageSize, s.page.Offset())
	}

	return sql, args
}
