package schemaver

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate migrates to the highest available version and returns the number
// of executed migrations.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	p, err := m.Plan(ctx)
	if err != nil {
		return 0, err
	}
	return m.Execute(ctx, p)
}

// MigrateTo migrates up or down to target and returns the number of executed
// migrations.
//
// On failure the count of committed migrations is returned together with a
// *StepError. Committed migrations stay applied.
func (m *Migrator) MigrateTo(ctx context.Context, target int64) (int, error) {
	p, err := m.PlanTo(ctx, target)
	if err != nil {
		return 0, err
	}
	return m.Execute(ctx, p)
}

// Execute runs every step of p in order, each inside its own transaction.
//
// The first failing step is rolled back and no further step is attempted.
func (m *Migrator) Execute(ctx context.Context, p *Plan) (executed int, err error) {
	catalog, err := m.Catalog()
	if err != nil {
		return 0, err
	}

	for _, version := range p.Versions {
		if err := m.step(ctx, catalog, p.Direction, version); err != nil {
			return executed, &StepError{Version: version, Direction: p.Direction, Err: err}
		}
		executed++
		m.logger(fmt.Sprintf("Migrated %s: %d", p.Direction, version))
	}

	return executed, nil
}

func (m *Migrator) step(ctx context.Context, catalog *Catalog, dir Direction, version int64) error {
	return transaction(ctx, m.db, m.logger, func(tx *sql.Tx) error {
		h, err := m.resolve(catalog, version, tx)
		if err != nil {
			return err
		}
		if dir == Down {
			if err := h.Down(ctx); err != nil {
				return err
			}
			return m.ledger.MarkUnapplied(ctx, tx, version)
		}
		if err := h.Up(ctx); err != nil {
			return err
		}
		return m.ledger.MarkApplied(ctx, tx, version)
	})
}
