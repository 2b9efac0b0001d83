package schemaver

import (
	"context"
	"path"
	"strings"
	"sync"
)

// MigrationFunc is the body of one direction of a migration.
type MigrationFunc func(ctx context.Context, s *Session) error

// A Migration changes the schema forward with Up and reverts the change with Down.
//
// Both run inside the transaction of their plan step. A returned error rolls
// the step back and aborts the plan.
type Migration interface {
	Up(ctx context.Context, s *Session) error
	Down(ctx context.Context, s *Session) error
}

type funcMigration struct {
	up, down MigrationFunc
}

func (f funcMigration) Up(ctx context.Context, s *Session) error   { return run(ctx, f.up, s) }
func (f funcMigration) Down(ctx context.Context, s *Session) error { return run(ctx, f.down, s) }

func run(ctx context.Context, fn MigrationFunc, s *Session) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, s)
}

// DefaultRegistry is the registry used by Register and by a Migrator without WithRegistry.
var DefaultRegistry = NewRegistry()

// Register adds a Go migration to DefaultRegistry. It is meant to be called
// from the init func of a migration file:
//
//   func init() {
//   	schemaver.Register("20190305173612_create_users.go", upCreateUsers, downCreateUsers)
//   }
//
// The version is parsed from the base name of source. A nil func is a no-op.
func Register(source string, up, down MigrationFunc) {
	DefaultRegistry.Register(source, up, down)
}

// A Registry maps versions to Go migrations known at compile time.
type Registry struct {
	mu      sync.Mutex
	entries []registration
}

type registration struct {
	source    string
	migration Migration
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds up and down as the migration named source.
func (r *Registry) Register(source string, up, down MigrationFunc) {
	r.RegisterMigration(source, funcMigration{up: up, down: down})
}

// RegisterMigration adds mig as the migration named source.
//
// Invalid or duplicate names are reported when a catalog is built from Sources.
func (r *Registry) RegisterMigration(source string, mig Migration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, registration{source: source, migration: mig})
}

// Sources returns the names of all registered migrations in registration order.
//
//   catalog, err := schemaver.NewCatalog(registry.Sources())
func (r *Registry) Sources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sources := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		sources = append(sources, e.source)
	}
	return sources
}

// Lookup returns the first migration registered for version.
func (r *Registry) Lookup(version int64) (Migration, bool) {
	e, ok := r.find(version)
	return e.migration, ok
}

func (r *Registry) find(version int64) (registration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if v, err := parseVersion(path.Base(e.source)); err == nil && v == version {
			return e, true
		}
	}
	return registration{}, false
}

// stem strips directory and extension: migrations/1_a.go becomes 1_a.
func stem(source string) string {
	base := path.Base(source)
	return strings.TrimSuffix(base, path.Ext(base))
}
