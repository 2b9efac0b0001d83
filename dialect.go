package schemaver

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
)

// MissingTableFunc reports whether err was caused by querying a table which doesn't exist.
type MissingTableFunc func(err error) bool

// IsMissingTable recognizes the "undefined table" errors of PostgreSQL (lib/pq)
// and SQLite (modernc.org/sqlite). It is the default MissingTableFunc.
func IsMissingTable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "undefined_table"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return strings.Contains(liteErr.Error(), "no such table")
	}
	return false
}
