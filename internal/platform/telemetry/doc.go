// Package telemetry records operational events, such as audited rpc calls,
// in the game journal.
//
// Telemetry is separate from the turn journal: turn records describe what
// the simulation produced, telemetry describes how the service was used.
package telemetry
