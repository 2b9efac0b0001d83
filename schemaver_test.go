package schemaver

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"reflect"
	"testing"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var (
	flagWithDb = flag.Bool("db", false, "Run tests against a PostgreSQL test database.")
	database   *sql.DB // populated by TestMain when using flag -db
	nullLogger = log.New(ioutil.Discard, "", 0).Print
)

func TestMain(m *testing.M) {
	flag.Parse()

	if *flagWithDb {
		db, err := connect()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer db.Close()
		database = db // make db globally available
	}

	os.Exit(m.Run())
}

func connect() (*sql.DB, error) {
	dsn := "dbname=postgres user=postgres sslmode=disable connect_timeout=5"

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %v", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping test database: %v", err)
	}

	return db, nil
}

func cleanup(ctx context.Context, db *sql.DB, t *testing.T) {
	cmd := `DROP SCHEMA public CASCADE; CREATE SCHEMA public;`

	err := transaction(ctx, db, nullLogger, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, cmd); err != nil {
			return &DriverError{"failed to reset public test schema", err}
		}
		return nil
	})
	if err != nil {
		t.Errorf("%+v", err)
	}
}

// newTestDB returns an in-memory SQLite database limited to a single
// connection, so every statement sees the same schema.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	return n == 1
}

func ledgerRows(t *testing.T, db *sql.DB, table string) []int64 {
	t.Helper()
	rows, err := db.Query(fmt.Sprintf(`SELECT version FROM %s ORDER BY version ASC`, table))
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	versions := []int64{}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			t.Fatal(err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	return versions
}

func Test_transaction(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	cmd := `CREATE TABLEups data();`

	err := transaction(ctx, db, nullLogger, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, cmd); err != nil {
			return &DriverError{"wrong syntax", err}
		}
		return nil
	})
	if err == nil {
		t.Fatal("err is nil, should not")
	}

	err = transaction(ctx, db, nullLogger, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `CREATE TABLE data (id BIGINT);`)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if !tableExists(t, db, "data") {
		t.Error("committed table should exist but does not")
	}
}

func Test_transactionRollback(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	err := transaction(ctx, db, nullLogger, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `CREATE TABLE data (id BIGINT);`); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	if err == nil || err.Error() != "abort" {
		t.Fatalf("wanted original error, got %v", err)
	}
	if tableExists(t, db, "data") {
		t.Error("rolled back table should not exist but does")
	}
}

func Test_transactionPanic(t *testing.T) {
	db := newTestDB(t)

	defer func() {
		if p := recover(); p == nil {
			t.Fatal("should have panicked, did not")
		}
	}()

	transaction(context.Background(), db, nullLogger, func(tx *sql.Tx) error {
		panic("random access memory")
	})
}

type closer struct{}

func (closer) Close() error {
	return fmt.Errorf("not closed")
}

func Test_logCloser(t *testing.T) {
	c := &closer{}
	got := ""
	l := func(a ...interface{}) {
		got = fmt.Sprint(a)
	}
	logCloser(c, l)
	want := "[failed to close handle: not closed]"
	if got != want {
		t.Errorf("wrong logCloser output: got %s, want %s", got, want)
	}
}

func TestNew(t *testing.T) {
	table := "history"
	formatter := func(name string, now time.Time) string {
		return fmt.Sprintf("%d_%s", now.Unix(), name)
	}
	m := New(nil, "", WithHistoryTable(table), WithFilenameFormatter(formatter), WithLogger(nullLogger))
	if m.path != "." {
		t.Errorf("empty path should default to \".\", got %q", m.path)
	}
	if m.Ledger().Table() != table {
		t.Errorf("Ledger().Table() = %q, want %q", m.Ledger().Table(), table)
	}
	if m.registry != DefaultRegistry {
		t.Error("registry should default to DefaultRegistry")
	}

	m = New(nil, "testdata/basic")
	if m.Ledger().Table() != defaultHistoryTable {
		t.Errorf("Ledger().Table() = %q, want %q", m.Ledger().Table(), defaultHistoryTable)
	}
}

func TestMigrator_CatalogOnce(t *testing.T) {
	calls := 0
	m := New(nil, "testdata/basic")
	m.loadCatalog = func() (*Catalog, error) {
		calls++
		return NewCatalog([]string{"1_a.sql"})
	}
	for i := 0; i < 3; i++ {
		if _, err := m.Catalog(); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("catalog loaded %d times, want 1", calls)
	}
}

func TestMigratePostgres(t *testing.T) {
	if *flagWithDb == false {
		t.Skip("skipping test: need a database")
	}

	ctx := context.Background()
	defer cleanup(ctx, database, t)

	conn, err := database.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	m := New(conn, "testdata/basic", WithRegistry(NewRegistry()))

	// apply all migrations
	n, err := m.Migrate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("Migrate() = %d, want 3", n)
	}
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if current != 20190306090000 {
		t.Errorf("CurrentVersion() = %d, want 20190306090000", current)
	}

	// revert everything
	n, err = m.MigrateTo(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("MigrateTo(0) = %d, want 3", n)
	}
	applied, err := m.Ledger().Applied(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(applied, []int64{}) {
		t.Errorf("Applied() = %v, want none", applied)
	}
}
