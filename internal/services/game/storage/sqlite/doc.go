// Package sqlite implements the turn journal and telemetry stores on SQLite.
//
// The schema lives in embedded migrations applied when the store opens.
package sqlite
