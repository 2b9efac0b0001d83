package schemaver

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestMarkAsMigrated(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	m, j := newTableMigrator(t, db)

	marked, err := m.MarkAsMigratedTo(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(marked, []int64{1, 2}) {
		t.Errorf("MarkAsMigratedTo(2)\ngot  %v\nwant [1 2]\n", marked)
	}
	if len(j.calls) != 0 || tableExists(t, db, "t1") {
		t.Errorf("no migration body should run, got %v", j.calls)
	}

	marked, err = m.MarkAsMigrated(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(marked, []int64{3}) {
		t.Errorf("MarkAsMigrated()\ngot  %v\nwant [3]\n", marked)
	}
	if rows := ledgerRows(t, db, "schema_info"); !reflect.DeepEqual(rows, []int64{0, 1, 2, 3}) {
		t.Errorf("ledger rows\ngot  %v\nwant [0 1 2 3]\n", rows)
	}

	// everything applied already
	marked, err = m.MarkAsMigrated(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(marked) != 0 {
		t.Errorf("MarkAsMigrated() = %v, want none", marked)
	}
}

func TestMarkAsMigratedInvalidTarget(t *testing.T) {
	m, _ := newTableMigrator(t, newTestDB(t))

	_, err := m.MarkAsMigratedTo(context.Background(), 4)
	var ierr *InvalidTargetError
	if !errors.As(err, &ierr) {
		t.Fatalf("wanted InvalidTargetError, got %v", err)
	}
}
