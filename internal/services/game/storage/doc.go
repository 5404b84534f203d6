// Package storage defines the persistence contracts of the game service.
//
// Persistence is an append-only journal: sessions live in memory, and the
// journal records what each turn produced plus the audit trail of rpc calls.
// Nothing is ever restored from it.
package storage
