package schemaver

import (
	"errors"
	"fmt"
	"testing"
)

func TestDriverError(t *testing.T) {
	uerr := fmt.Errorf("some driver error")
	err := &DriverError{"you won't believe what happened next", uerr}

	got := err.Error()
	want := "you won't believe what happened next: some driver error"
	if got != want {
		t.Errorf("Error messages did not match\ngot  %q\nwant %q\n", got, want)
	}
	got = UnderlyingError(err).Error()
	want = "some driver error"
	if got != want {
		t.Errorf("underlying error does not match\ngot  %q\nwant %q\n", got, want)
	}
	got = UnderlyingError(fmt.Errorf("not DriverError")).Error()
	want = "not DriverError"
	if got != want {
		t.Errorf("underlying error returned something wrong\ngot  %q\nwant %q\n", got, want)
	}
}

func TestStepError(t *testing.T) {
	uerr := fmt.Errorf("relation does not exist")
	err := &StepError{Version: 20190305173612, Direction: Down, Err: &DriverError{"failed to execute SQL script", uerr}}

	got := err.Error()
	want := "failed to migrate down 20190305173612: failed to execute SQL script: relation does not exist"
	if got != want {
		t.Errorf("Error messages did not match\ngot  %q\nwant %q\n", got, want)
	}
	if UnderlyingError(err) != uerr {
		t.Errorf("UnderlyingError() = %v, want %v", UnderlyingError(err), uerr)
	}
	if !errors.Is(err, uerr) {
		t.Error("errors.Is should reach the driver error")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ParseError{"abc.sql", "name does not begin with a version number"}, `failed to parse version from migration "abc.sql": name does not begin with a version number`},
		{&DuplicateVersionError{1, "01_b.sql", "1_a.sql"}, `migration "01_b.sql" conflicts with "1_a.sql": both have version 1`},
		{&InvalidTargetError{5, 3}, "migration 5 does not exist (valid targets are 0 to 3)"},
		{&LedgerAccessError{"schema_info", fmt.Errorf("boom")}, `failed to access history table "schema_info": boom`},
		{&UnresolvableMigrationError{7, "gone"}, "failed to resolve migration 7: gone"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error()\ngot  %q\nwant %q\n", got, tt.want)
		}
	}
}
