package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/denisbrodbeck/schemaver"
	"github.com/peterbourgon/ff"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	exitOK = iota
	exitUsage
	exitConnect
	exitCreate
	exitMigrate
)

// ParseAndRun parses the command line, and then runs the passed commands.
func ParseAndRun(stdout, stderr io.Writer, stdin io.Reader, args []string) int {
	out := log.New(stdout, "", 0)
	errlog := log.New(stderr, "", 0)

	fs := flag.NewFlagSet("schemaver", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fs.Output().Write([]byte(usage))
	}
	var (
		flagPath        = fs.String("path", "migrations", "the path to the migrations files to be executed")
		flagTable       = fs.String("table", "schema_info", "name of applied migrations history table")
		flagDriver      = fs.String("driver", "postgres", "database driver: postgres or sqlite")
		flagDSN         = fs.String("dsn", "", "data source name, overrides the connection flags")
		flagHost        = fs.String("host", "localhost", "database host")
		flagPort        = fs.String("port", "5432", "database port")
		flagName        = fs.String("name", "postgres", "database name")
		flagUser        = fs.String("user", "postgres", "database user")
		flagPass        = fs.String("pass", "", "database password")
		flagTimeout     = fs.Duration("timeout", time.Second*10, "connection timeout in seconds (default 10s)")
		flagSSLMode     = fs.String("sslmode", "disable", "database SSL mode (see options)")
		flagSSLCert     = fs.String("sslcert", "", "PEM encoded cert file location")
		flagSSLKey      = fs.String("sslkey", "", "PEM encoded key file location")
		flagSSLRootCert = fs.String("sslrootcert", "", "PEM encoded root certificate file location")
		flagGoPackage   = fs.String("go-package", "", "create Go migrations in this package instead of SQL files")
		_               = fs.String("config", "", "config file (optional)")
	)
	err := ff.Parse(fs, args,
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix("SCHEMAVER"),
	)
	if err != nil {
		if err != flag.ErrHelp {
			fs.Output().Write([]byte(fmt.Sprintf("\nUsage error: %s\n", err)))
		}
		return exitUsage
	}

	commands := fs.Args()
	if len(commands) == 0 {
		fs.Usage()
		return exitUsage
	}

	// connect library logger to stdout
	options := []schemaver.Option{
		schemaver.WithHistoryTable(*flagTable),
		schemaver.WithLogger(out.Print),
	}
	open := func(ctx context.Context) (*sql.DB, *sql.Conn, error) {
		dsn := *flagDSN
		if dsn == "" && *flagDriver == "postgres" {
			dsn = createDSN(*flagHost, *flagPort, *flagName, *flagUser, *flagPass, *flagSSLMode, *flagSSLCert, *flagSSLKey, *flagSSLRootCert, *flagTimeout)
		}
		return connect(ctx, *flagDriver, dsn)
	}

	switch strings.ToLower(commands[0]) {
	case "create":
		name := "placeholder"
		if len(commands) >= 2 {
			name = commands[1]
		}

		migration := schemaver.New(nil, *flagPath, options...)
		var path string
		if *flagGoPackage != "" {
			path, err = migration.CreateGo(*flagGoPackage, name)
		} else {
			path, err = migration.Create(name)
		}
		if err != nil {
			errlog.Println(err)
			return exitCreate
		}
		out.Printf("Created Migration: %s", path)
	case "migrate", "mark-as-migrated", "status":
		target, hasTarget, err := parseTarget(commands[1:])
		if err != nil {
			errlog.Printf("Usage error: %v", err)
			return exitUsage
		}

		// give a generous timeout of 5 minutes
		ctx, cancelFunc := context.WithTimeout(context.Background(), time.Minute*5)
		defer cancelFunc()

		db, conn, err := open(ctx)
		if err != nil {
			errlog.Println(err)
			return exitConnect
		}
		defer logCloser(db, errlog)
		defer logCloser(conn, errlog)

		migration := schemaver.New(conn, *flagPath, options...)
		if err := run(ctx, migration, strings.ToLower(commands[0]), target, hasTarget, out); err != nil {
			errlog.Printf("failed to run migrations: %v", err)
			if pqerr := schemaver.UnderlyingError(err); pqerr != err {
				errlog.Println(formatPqError(pqerr))
			}
			return exitMigrate
		}
	case "version":
		out.Println(gitTag)
	default:
		errlog.Printf("Usage error: unknown command %q", commands[0])
		return exitUsage
	}

	return exitOK
}

// run executes one of the database commands.
func run(ctx context.Context, migration *schemaver.Migrator, command string, target int64, hasTarget bool, out *log.Logger) error {
	switch command {
	case "migrate":
		var executed int
		var err error
		if hasTarget {
			executed, err = migration.MigrateTo(ctx, target)
		} else {
			executed, err = migration.Migrate(ctx)
		}
		if executed > 0 {
			out.Printf("Executed migrations: %d\n", executed)
		}
		return err
	case "mark-as-migrated":
		var marked []int64
		var err error
		if hasTarget {
			marked, err = migration.MarkAsMigratedTo(ctx, target)
		} else {
			marked, err = migration.MarkAsMigrated(ctx)
		}
		if len(marked) > 0 {
			out.Printf("Marked migrations: %d\n", len(marked))
		}
		return err
	case "status":
		status, err := migration.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range status {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			source := s.Source
			if source == "" {
				source = "(missing)"
			}
			out.Printf("%-8s %d %s\n", state, s.Version, source)
		}
		current, err := migration.CurrentVersion(ctx)
		if err != nil {
			return err
		}
		out.Printf("Current version: %d\n", current)
	}
	return nil
}

// parseTarget reads the optional target version argument.
func parseTarget(args []string) (target int64, ok bool, err error) {
	if len(args) == 0 {
		return 0, false, nil
	}
	target, err = strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("target version %q is not a number", args[0])
	}
	return target, true, nil
}

func createDSN(host, port, name, user, pass, sslmode, sslcert, sslkey, sslrootcert string, timeout time.Duration) string {
	dsn := ""
	if host != "" {
		dsn += fmt.Sprintf("host=%s ", host)
	}
	if port != "" {
		dsn += fmt.Sprintf("port=%s ", port)
	}
	if name != "" {
		dsn += fmt.Sprintf("dbname='%s' ", name)
	}
	if user != "" {
		dsn += fmt.Sprintf("user='%s' ", user)
	}
	if pass != "" {
		// values with spaces must be surrounded with '': e.g. 'se cret'
		// further ' within the value must be escaped with \
		password := strings.Replace(pass, "'", `\'`, -1)
		dsn += fmt.Sprintf("password='%s' ", password)
	}
	if sslmode != "" {
		dsn += fmt.Sprintf("sslmode=%s ", sslmode)
	}
	if sslcert != "" {
		dsn += fmt.Sprintf("sslcert='%s' ", sslcert)
	}
	if sslkey != "" {
		dsn += fmt.Sprintf("sslkey='%s' ", sslkey)
	}
	if sslrootcert != "" {
		dsn += fmt.Sprintf("sslrootcert='%s' ", sslrootcert)
	}
	if timeout.Seconds() > 0 {
		dsn += fmt.Sprintf("connect_timeout=%.f ", timeout.Seconds())
	}

	return strings.TrimSpace(dsn)
}

// connect opens the database and reserves a single connection for the run.
func connect(ctx context.Context, driver, dsn string) (*sql.DB, *sql.Conn, error) {
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	// "open" just validates the provided dsn
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open connection to database with dsn %q: %v", dsn, err)
	}

	// dsn did validate, now try to actually reach the database
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to database server: %v", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to database server: %v", err)
	}

	return db, conn, nil
}
