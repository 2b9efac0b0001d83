package schemaver

import (
	"context"
	"database/sql"
	"fmt"
)

// A Ledger keeps the set of applied versions in a single column history table.
//
// Row existence means applied. The table is created on first access and
// seeded with the sentinel version 0.
type Ledger struct {
	db      DB
	table   string
	missing MissingTableFunc
	logger  Logger
}

// Table returns the name of the history table.
func (l *Ledger) Table() string { return l.table }

// CurrentVersion returns the highest applied version.
//
// Only a missing history table triggers initialization, every other failure
// is returned as LedgerAccessError.
func (l *Ledger) CurrentVersion(ctx context.Context) (int64, error) {
	cmd := fmt.Sprintf(`SELECT version FROM %s ORDER BY version DESC LIMIT 1;`, l.table)
	versions, err := l.query(ctx, l.db, cmd)
	if err != nil {
		if !l.missing(UnderlyingError(err)) {
			return 0, err
		}
		if err := l.initialize(ctx); err != nil {
			return 0, err
		}
		l.logger(fmt.Sprintf("History table %s created successfully.", l.table))
		return 0, nil
	}
	if len(versions) == 0 {
		return 0, nil
	}
	return versions[0], nil
}

// MarkApplied records version as applied. Marking an applied version again is a no-op.
//
// q is usually the transaction of the migration step.
func (l *Ledger) MarkApplied(ctx context.Context, q Querier, version int64) error {
	cmd := fmt.Sprintf(`INSERT INTO %[1]s (version) SELECT %[2]d WHERE NOT EXISTS (SELECT 1 FROM %[1]s WHERE version = %[2]d);`, l.table, version)
	if _, err := q.ExecContext(ctx, cmd); err != nil {
		return &LedgerAccessError{l.table, &DriverError{fmt.Sprintf("failed to mark version %d as applied", version), err}}
	}
	return nil
}

// MarkUnapplied removes version from the ledger. Removing an absent version is a no-op.
func (l *Ledger) MarkUnapplied(ctx context.Context, q Querier, version int64) error {
	cmd := fmt.Sprintf(`DELETE FROM %s WHERE version = %d;`, l.table, version)
	if _, err := q.ExecContext(ctx, cmd); err != nil {
		return &LedgerAccessError{l.table, &DriverError{fmt.Sprintf("failed to mark version %d as unapplied", version), err}}
	}
	return nil
}

// AppliedAfter returns all applied versions greater than version in ascending order.
func (l *Ledger) AppliedAfter(ctx context.Context, version int64) ([]int64, error) {
	cmd := fmt.Sprintf(`SELECT version FROM %s WHERE version > %d ORDER BY version ASC;`, l.table, version)
	return l.query(ctx, l.db, cmd)
}

// AppliedUpTo returns all applied versions less than or equal to version in
// ascending order. The sentinel 0 is included.
func (l *Ledger) AppliedUpTo(ctx context.Context, version int64) ([]int64, error) {
	cmd := fmt.Sprintf(`SELECT version FROM %s WHERE version <= %d ORDER BY version ASC;`, l.table, version)
	return l.query(ctx, l.db, cmd)
}

// Applied returns every applied version except the sentinel.
func (l *Ledger) Applied(ctx context.Context) ([]int64, error) {
	return l.AppliedAfter(ctx, 0)
}

// initialize creates the history table and inserts the sentinel version.
func (l *Ledger) initialize(ctx context.Context) error {
	create := fmt.Sprintf(`CREATE TABLE %s (version BIGINT);`, l.table)
	seed := fmt.Sprintf(`INSERT INTO %s (version) VALUES (0);`, l.table)

	return transaction(ctx, l.db, l.logger, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return &LedgerAccessError{l.table, &DriverError{"failed to create history table", err}}
		}
		if _, err := tx.ExecContext(ctx, seed); err != nil {
			return &LedgerAccessError{l.table, &DriverError{"failed to seed history table", err}}
		}
		return nil
	})
}

func (l *Ledger) query(ctx context.Context, q Querier, cmd string) ([]int64, error) {
	rows, err := q.QueryContext(ctx, cmd)
	if err != nil {
		return nil, &LedgerAccessError{l.table, &DriverError{"failed to query applied versions", err}}
	}
	defer logCloser(rows, l.logger)

	versions := []int64{}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, &LedgerAccessError{l.table, &DriverError{"failed to row scan entry in query for applied versions", err}}
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, &LedgerAccessError{l.table, &DriverError{"failed to query applied versions", err}}
	}

	return versions, nil
}
