package schemaver

import (
	"context"
	"database/sql"
	"fmt"
)

// MarkAsMigrated records every pending migration as applied without running it.
//
// This adopts migrations on a database whose schema was built by other means.
func (m *Migrator) MarkAsMigrated(ctx context.Context) (marked []int64, err error) {
	catalog, err := m.Catalog()
	if err != nil {
		return []int64{}, err
	}
	if catalog.Len() == 0 {
		return []int64{}, ErrEmptyCatalog
	}
	return m.markUpTo(ctx, catalog, catalog.MaxVersion())
}

// MarkAsMigratedTo records every pending migration up to and including target as applied.
func (m *Migrator) MarkAsMigratedTo(ctx context.Context, target int64) (marked []int64, err error) {
	catalog, err := m.Catalog()
	if err != nil {
		return []int64{}, err
	}
	if catalog.Len() == 0 {
		return []int64{}, ErrEmptyCatalog
	}
	if err := validateTarget(catalog, target); err != nil {
		return []int64{}, err
	}
	return m.markUpTo(ctx, catalog, target)
}

func (m *Migrator) markUpTo(ctx context.Context, catalog *Catalog, target int64) ([]int64, error) {
	// ensures the history table exists
	if _, err := m.ledger.CurrentVersion(ctx); err != nil {
		return []int64{}, err
	}
	pending, err := m.pendingUpTo(ctx, catalog, target)
	if err != nil {
		return []int64{}, err
	}

	marked := []int64{}
	for _, version := range pending {
		err := transaction(ctx, m.db, m.logger, func(tx *sql.Tx) error {
			return m.ledger.MarkApplied(ctx, tx, version)
		})
		if err != nil {
			return marked, err
		}
		marked = append(marked, version)
		m.logger(fmt.Sprintf("Marked as migrated: %d", version))
	}

	return marked, nil
}
