// Package store provides the SQLite-backed relational store of experiment
// metadata.
//
// Tables:
//   - experiments: one row per experiment, keyed by URI
//   - experiment_projects: projects an experiment belongs to
//   - experiment_variables: variables measured in an experiment
//   - experiment_sensors: sensors deployed in an experiment
//
// # Searching
//
// CountExperiments and FindExperiments are compiled from one queryir.Select
// built from the criteria: the count is its Count() derivation, so both
// queries always share the same WHERE clause. Row queries are ordered by
// uri COLLATE BINARY so pages are stable.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Writes that touch several rows run in one transaction.
package store
