// Schemaver is a schema migration handler for PostgreSQL and SQLite.
//
// Complete documentation is available at https://github.com/denisbrodbeck/schemaver/.
//
// Usage:
//
// 	schemaver <command> [arguments]
//
// The commands are:
//
// 	create              create a new migration file
// 	migrate             migrate to the latest or the given version
// 	mark-as-migrated    mark migrations as applied without running them
// 	status              list migrations and their state
// 	version             print schemaver version
//
// 	schemaver create add_users_table
// 	schemaver migrate [version]
// 	schemaver mark-as-migrated [version]
//
// The arguments are:
//
// 	-path         path to the migrations files to be executed (default migrations)
// 	-table        name of applied migrations history table (default schema_info)
// 	-driver       database driver: postgres or sqlite (default postgres)
// 	-dsn          data source name, overrides the connection flags below
// 	-host         database hostname (default localhost)
// 	-port         database port (default 5432)
// 	-name         database name (default postgres)
// 	-user         database user (default postgres)
// 	-pass         database password (default empty)
// 	-timeout      connection timeout in seconds (default 10s)
// 	-sslmode      SSL mode (default disable - see [SSL modes])
// 	-sslcert      PEM encoded cert file location
// 	-sslkey       PEM encoded key file location
// 	-sslrootcert  PEM encoded root certificate file location
// 	-go-package   create Go migrations in this package instead of SQL files
// 	-config       file with one "flag value" pair per line
//
// Every flag can be set in the environment as well, e.g. SCHEMAVER_PASS.
//
// Available SSL modes:
//
// 	disable      no SSL
// 	require      always SSL (skip verification)
// 	verify-ca    always SSL (verify server cert was signed by a trusted CA)
// 	verify-full  always SSL (verify server cert matches hostname and was signed by a trusted CA)
package main

import (
	"os"
)

var usage = `
schemaver is a schema migration handler for PostgreSQL and SQLite.

Complete documentation is available at https://github.com/denisbrodbeck/schemaver/.

Usage:

	schemaver <command> [arguments]

The commands are:

	create              create a new migration file
	migrate             migrate to the latest or the given version
	mark-as-migrated    mark migrations as applied without running them
	status              list migrations and their state
	version             print schemaver version

	schemaver create add_users_table
	schemaver migrate [version]
	schemaver mark-as-migrated [version]

The arguments are:

	-path         path to the migrations files to be executed (default migrations)
	-table        name of applied migrations history table (default schema_info)
	-driver       database driver: postgres or sqlite (default postgres)
	-dsn          data source name, overrides the connection flags below
	-host         database hostname (default localhost)
	-port         database port (default 5432)
	-name         database name (default postgres)
	-user         database user (default postgres)
	-pass         database password (default empty)
	-timeout      connection timeout in seconds (default 10s)
	-sslmode      SSL mode (default disable - see [SSL modes])
	-sslcert      PEM encoded cert file location
	-sslkey       PEM encoded key file location
	-sslrootcert  PEM encoded root certificate file location
	-go-package   create Go migrations in this package instead of SQL files
	-config       file with one "flag value" pair per line

Every flag can be set in the environment as well, e.g. SCHEMAVER_PASS.

Available SSL modes:

	disable      no SSL
	require      always SSL (skip verification)
	verify-ca    always SSL (verify server cert was signed by a trusted CA)
	verify-full  always SSL (verify server cert matches hostname and was signed by a trusted CA)
`[1:]

// set by ldflags when built
var (
	gitTag = "<not set>"
)

func main() {
	// main() is untestable --> do any work outside of main()
	os.Exit(ParseAndRun(os.Stdout, os.Stderr, os.Stdin, os.Args[1:]))
}
