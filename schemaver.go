package schemaver

import (
	"context"
	"database/sql"
	"io"
	"io/fs"
	"io/ioutil"
	"log"
	"os"
	"sync"
	"time"
)

const (
	defaultHistoryTable    = "schema_info"
	defaultTimestampFormat = "20060102150405"
)

// Logger is a generic logging func.
type Logger func(...interface{})

// FilenameFormatter takes a migration name and the creation time and formats it into a filename.
type FilenameFormatter func(name string, now time.Time) string

// Querier executes statements and queries. *sql.DB, *sql.Conn and *sql.Tx implement it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// DB is a Querier which can begin transactions. *sql.DB and *sql.Conn implement it.
//
// A Migrator assumes exclusive use of DB for the duration of a run. Prefer a
// *sql.Conn when the schema lives in a connection local database.
type DB interface {
	Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// A Migrator reconciles the migrations found in a directory with the versions
// recorded in the history table of a database.
//
// An empty Migrator path is treated as ".".
type Migrator struct {
	db        DB
	path      string
	fsys      fs.FS
	table     string
	formatter FilenameFormatter
	logger    Logger
	missing   MissingTableFunc
	registry  *Registry
	now       func() time.Time
	ledger    *Ledger

	loadCatalog func() (*Catalog, error)
	catalog     *Catalog
	catalogErr  error
	catalogOnce sync.Once
}

// New returns a new Migrator working on db with migrations located in path.
//
// The catalog is loaded lazily on first use. db may be nil if the Migrator is
// only used to create migration stubs.
func New(db DB, path string, options ...Option) *Migrator {
	if path == "" {
		path = "."
	}
	m := &Migrator{db: db, path: path}

	for _, option := range options {
		option(m)
	}

	if m.fsys == nil {
		m.fsys = os.DirFS(m.path)
	}
	if m.formatter == nil {
		m.formatter = defaultFilenameFormatter
	}
	if m.table == "" {
		m.table = defaultHistoryTable
	}
	if m.logger == nil {
		m.logger = log.New(ioutil.Discard, "", 0).Print
	}
	if m.missing == nil {
		m.missing = IsMissingTable
	}
	if m.registry == nil {
		m.registry = DefaultRegistry
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.loadCatalog == nil {
		m.loadCatalog = func() (*Catalog, error) { return LoadCatalog(m.fsys, ".") }
	}
	m.ledger = &Ledger{db: db, table: m.table, missing: m.missing, logger: m.logger}

	return m
}

// Ledger returns the history table of the Migrator.
func (m *Migrator) Ledger() *Ledger { return m.ledger }

// Catalog returns the available migrations. The catalog is loaded once per Migrator.
func (m *Migrator) Catalog() (*Catalog, error) {
	m.catalogOnce.Do(func() {
		m.catalog, m.catalogErr = m.loadCatalog()
	})
	return m.catalog, m.catalogErr
}

// CurrentVersion returns the highest applied version, 0 if nothing was migrated yet.
func (m *Migrator) CurrentVersion(ctx context.Context) (int64, error) {
	return m.ledger.CurrentVersion(ctx)
}

// transaction is a utility function to execute SQL inside a transaction
//
// see: https://stackoverflow.com/a/23502629
func transaction(ctx context.Context, db DB, logger Logger, txFunc func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &DriverError{"failed to begin db transaction", err}
	}

	defer func() {
		if p := recover(); p != nil {
			if err := tx.Rollback(); err != nil {
				logger(err)
			}
			panic(p) // re-throw panic after Rollback
		} else if err != nil {
			// err is non-nil; don't change it
			if err := tx.Rollback(); err != nil {
				logger(err)
			}
		} else if cerr := tx.Commit(); cerr != nil {
			err = &DriverError{"failed to commit db transaction", cerr}
		}
	}()

	err = txFunc(tx)

	return err
}

// logCloser is a convenience logger for deferred execution.
//
// This fuction takes any struct implementing the io.Closer interface and closes
// it it upon execution. Errors get logged to the provided logger.
//
//   rows, _ := db.Query("SELECT version FROM schema_info")
//   defer logCloser(rows, logger)
func logCloser(c io.Closer, logger Logger) {
	if err := c.Close(); err != nil {
		logger("failed to close handle: " + err.Error())
	}
}

// Option controls some aspects of migration behavior.
type Option func(*Migrator)

// WithHistoryTable tells New to use the provided name as history table
// name for applied versions.
func WithHistoryTable(name string) Option {
	return func(m *Migrator) {
		m.table = name
	}
}

// WithLogger tells New to use the provided logger for internal logging.
func WithLogger(logger Logger) Option {
	return func(m *Migrator) {
		m.logger = logger
	}
}

// WithFilenameFormatter tells New to use the provided formatter for new migration files.
func WithFilenameFormatter(formatter FilenameFormatter) Option {
	return func(m *Migrator) {
		m.formatter = formatter
	}
}

// WithMissingTableFunc overrides how a missing history table is recognized.
func WithMissingTableFunc(fn MissingTableFunc) Option {
	return func(m *Migrator) {
		m.missing = fn
	}
}

// WithRegistry tells New to resolve Go migrations from r instead of DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(m *Migrator) {
		m.registry = r
	}
}

// WithSourceFS tells New to read migration files from fsys (e.g. an embed.FS
// sub tree) instead of the directory given to New. Create still writes to
// the directory.
func WithSourceFS(fsys fs.FS) Option {
	return func(m *Migrator) {
		m.fsys = fsys
	}
}

// WithCatalog tells New to use c instead of discovering migration files.
//
//   m := schemaver.New(db, "", schemaver.WithCatalog(catalog))
func WithCatalog(c *Catalog) Option {
	return func(m *Migrator) {
		m.loadCatalog = func() (*Catalog, error) { return c, nil }
	}
}

// WithClock tells New to use now when naming new migration files.
func WithClock(now func() time.Time) Option {
	return func(m *Migrator) {
		m.now = now
	}
}
