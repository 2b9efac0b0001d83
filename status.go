package schemaver

import (
	"context"
	"sort"
)

// MigrationStatus tells whether a version is applied.
//
// Source is empty for applied versions whose migration is no longer available.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

// Status lists all available migrations and all applied versions in ascending order.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	catalog, err := m.Catalog()
	if err != nil {
		return nil, err
	}
	// ensures the history table exists
	if _, err := m.ledger.CurrentVersion(ctx); err != nil {
		return nil, err
	}
	applied, err := m.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}

	isApplied := make(map[int64]bool, len(applied))
	for _, v := range applied {
		isApplied[v] = true
	}

	status := []MigrationStatus{}
	for _, v := range catalog.Versions() {
		d, _ := catalog.Descriptor(v)
		status = append(status, MigrationStatus{Version: v, Source: d.Source, Applied: isApplied[v]})
	}
	for _, v := range applied {
		if _, ok := catalog.Descriptor(v); !ok {
			status = append(status, MigrationStatus{Version: v, Applied: true})
		}
	}
	sort.Slice(status, func(i, j int) bool { return status[i].Version < status[j].Version })

	return status, nil
}
