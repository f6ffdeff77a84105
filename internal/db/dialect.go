// internal/db/dialect.go
package db

import (
	"strconv"
	"strings"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// MigrateDriverName is the database name golang-migrate registers for the dialect.
func (d Dialect) MigrateDriverName() string {
	if d == DialectSQLite {
		return "sqlite3"
	}
	return string(d)
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
// Queries in this package never contain '?' inside string literals.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
