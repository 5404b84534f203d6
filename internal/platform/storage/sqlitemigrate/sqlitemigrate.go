// Package sqlitemigrate applies ordered SQL files from an fs.FS to a SQLite
// database, recording each applied file in a bookkeeping table.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const (
	ledgerTable = "schema_migrations"
	upMarker    = "-- +migrate Up"
	downMarker  = "-- +migrate Down"
)

// Migration is one SQL file. Key is the path recorded in the ledger.
type Migration struct {
	Key string
	Up  string
}

// Load reads every .sql file directly under root, in name order.
func Load(fsys fs.FS, root string) ([]Migration, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		key := path.Join(root, name)
		content, err := fs.ReadFile(fsys, key)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, Migration{Key: key, Up: UpSection(string(content))})
	}
	return out, nil
}

// Apply runs the pending migrations under root and returns the keys it
// applied. Each file commits in its own transaction; a failing file is not
// recorded.
func Apply(ctx context.Context, db *sql.DB, fsys fs.FS, root string) ([]string, error) {
	if db == nil {
		return nil, errors.New("sql db is required")
	}
	migrations, err := Load(fsys, root)
	if err != nil {
		return nil, err
	}

	ddl := `CREATE TABLE IF NOT EXISTS ` + ledgerTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure migration ledger: %w", err)
	}

	var applied []string
	for _, m := range migrations {
		ok, err := apply(ctx, db, m)
		if err != nil {
			return applied, err
		}
		if ok {
			applied = append(applied, m.Key)
		}
	}
	return applied, nil
}

func apply(ctx context.Context, db *sql.DB, m Migration) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin migration %s: %w", m.Key, err)
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM "+ledgerTable+" WHERE name = ?", m.Key).Scan(&one)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("check migration %s: %w", m.Key, err)
	}

	if strings.TrimSpace(m.Up) != "" {
		if _, err := tx.ExecContext(ctx, m.Up); err != nil && !AlreadyExists(err) {
			return false, fmt.Errorf("exec migration %s: %w", m.Key, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO "+ledgerTable+" (name, applied_at) VALUES (?, ?)",
		m.Key, time.Now().UTC().UnixMilli(),
	); err != nil {
		return false, fmt.Errorf("record migration %s: %w", m.Key, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit migration %s: %w", m.Key, err)
	}
	return true, nil
}

// UpSection returns the SQL between the Up and Down markers, or the whole
// content when there is no Up marker.
func UpSection(content string) string {
	up := strings.Index(content, upMarker)
	if up == -1 {
		return content
	}
	body := content[up+len(upMarker):]
	if down := strings.Index(body, downMarker); down != -1 {
		body = body[:down]
	}
	return body
}

// AlreadyExists reports whether err is SQLite rejecting DDL that has
// already taken effect.
func AlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column name")
}
