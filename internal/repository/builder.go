package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// queryBuilder accumulates WHERE clauses with '?' placeholders and
// renders a Postgres query with positional arguments
type queryBuilder struct {
	base    string
	clauses []string
	args    []any
	suffix  string
}

func newQueryBuilder(base string) *queryBuilder {
	return &queryBuilder{base: base}
}

func (b *queryBuilder) Where(clause string, args ...any) *queryBuilder {
	b.clauses = append(b.clauses, clause)
	b.args = append(b.args, args...)
	return b
}

func (b *queryBuilder) OrderBy(column, direction string) *queryBuilder {
	if !isSafeIdentifier(column) {
		column = "created_at"
	}
	if !strings.EqualFold(direction, "asc") && !strings.EqualFold(direction, "desc") {
		direction = "desc"
	}
	b.suffix += fmt.Sprintf(" ORDER BY %s %s", column, strings.ToUpper(direction))
	return b
}

func (b *queryBuilder) Paginate(limit, offset int) *queryBuilder {
	b.suffix += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	return b
}

// Build renders the final query, rewriting '?' placeholders to $1..$n
func (b *queryBuilder) Build() (string, []any) {
	query := b.base
	if len(b.clauses) > 0 {
		query += " WHERE " + strings.Join(b.clauses, " AND ")
	}

	var sb strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String() + b.suffix, b.args
}

// isSafeIdentifier guards ORDER BY columns against injection since they
// cannot be parameterized
func isSafeIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' || ch == '_' {
			continue
		}
		return false
	}
	return true
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
