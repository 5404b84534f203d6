// Package migrations embeds the SQL migrations of the journal store.
package migrations

import "embed"

// JournalFS holds journal/*.sql.
//
//go:embed journal/*.sql
var JournalFS embed.FS
