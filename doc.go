// Package schemaver provides versioned SQL schema migrations with up and down steps.
//
//   https://github.com/denisbrodbeck/schemaver
//
// Features
//
// • migrate up or down to any version
//
// • SQL file and Go migrations
//
// • one transaction per migration, the history table is updated inside it
//
// • mark migrations as applied without running them
//
// Every migration carries a version, taken from the leading digits of its name
// (e.g. 20190305173612_create_users.sql). Applied versions are stored in a
// single column history table (default schema_info), created on first use and
// seeded with version 0, which stands for "nothing migrated".
//
// Migrating runs all pending migrations in ascending order. Migrating to a
// lower version runs the down step of every applied version above the target,
// also in ascending order. The first failing migration is rolled back and
// stops the run; migrations committed before it stay applied.
//
// A Migrator expects exclusive use of its database connection. Concurrent
// runs against the same history table are not guarded against.
package schemaver
