// Package server composes the game gRPC entrypoint.
//
// It opens the sqlite journal, builds the session registry and shared
// application, and wires the sect service behind the metadata and audit
// interceptors.
package server
