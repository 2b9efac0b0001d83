package schemaver

import (
	"context"
	"database/sql"
	"fmt"
	"path"
)

// A Session is handed to migration bodies. It executes statements within the
// transaction of the running step.
type Session struct {
	version int64
	q       Querier
}

// Version returns the version of the running migration.
func (s *Session) Version() int64 { return s.version }

// Exec executes a statement and returns the number of affected rows.
//
// Exec returns 0 and no error when the driver cannot report affected rows
// for the statement. Migrations that depend on an exact count should Query it.
func (s *Session) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// Query runs a query returning rows. The caller must close the rows.
func (s *Session) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, query, args...)
}

// handle is a migration bound to its version and step transaction.
type handle struct {
	migration Migration
	session   *Session
}

func (h *handle) Up(ctx context.Context) error   { return h.migration.Up(ctx, h.session) }
func (h *handle) Down(ctx context.Context) error { return h.migration.Down(ctx, h.session) }

// resolve maps version to an invocable migration.
//
// Registered Go migrations take precedence over SQL files. A registration
// must carry the name of the catalog entry, extension aside.
func (m *Migrator) resolve(catalog *Catalog, version int64, q Querier) (*handle, error) {
	d, ok := catalog.Descriptor(version)
	if !ok {
		return nil, &UnresolvableMigrationError{Version: version, Reason: "no migration with this version is available"}
	}

	session := &Session{version: version, q: q}

	if e, ok := m.registry.find(version); ok {
		if stem(e.source) != stem(d.Name) {
			return nil, &UnresolvableMigrationError{Version: version, Reason: fmt.Sprintf("registered migration %s does not match %s", e.source, d.Source)}
		}
		return &handle{migration: e.migration, session: session}, nil
	}

	if path.Ext(d.Name) == ".sql" {
		mig, err := loadSQLMigration(m.fsys, d.Source)
		if err != nil {
			return nil, &UnresolvableMigrationError{Version: version, Reason: err.Error()}
		}
		return &handle{migration: mig, session: session}, nil
	}

	return nil, &UnresolvableMigrationError{Version: version, Reason: "no Go migration registered for " + d.Source}
}
