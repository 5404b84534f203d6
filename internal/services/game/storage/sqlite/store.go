package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/sect.ascension/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/sect.ascension/internal/services/game/storage"
	"github.com/louisbranch/sect.ascension/internal/services/game/storage/sqlite/migrations"
)

var (
	_ storage.JournalStore   = (*Store)(nil)
	_ storage.TelemetryStore = (*Store)(nil)
)

// Store is the SQLite journal.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the journal at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	if path == ":memory:" {
		dsn = path
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(ctx, sqlDB, migrations.JournalFS, "journal"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// AppendTurn writes a turn record and its outcomes in one transaction.
func (s *Store) AppendTurn(ctx context.Context, rec storage.TurnRecord, outcomes []storage.OutcomeRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(rec.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if rec.Stage != storage.StageStart && rec.Stage != storage.StageResolve {
		return fmt.Errorf("unknown stage %q", rec.Stage)
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	if len(rec.PayloadJSON) == 0 {
		rec.PayloadJSON = []byte("{}")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append turn: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO turns (session_id, turn, stage, state, event_count, payload_json, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Turn, string(rec.Stage), rec.State, rec.EventCount, rec.PayloadJSON, toMillis(rec.RecordedAt),
	); err != nil {
		return fmt.Errorf("insert turn %s/%d/%s: %w", rec.SessionID, rec.Turn, rec.Stage, err)
	}

	for _, o := range outcomes {
		if o.SessionID != rec.SessionID || o.Turn != rec.Turn {
			return fmt.Errorf("outcome %s/%s does not belong to turn %d", o.TaskID, o.DiscipleID, rec.Turn)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO turn_outcomes (session_id, turn, task_id, disciple_id, kind, verdict, chance, progress, resources, reputation, dao_heart)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.SessionID, o.Turn, o.TaskID, o.DiscipleID, o.Kind, o.Verdict, o.Chance, o.Progress, o.Resources, o.Reputation, o.DaoHeart,
		); err != nil {
			return fmt.Errorf("insert outcome %s/%s: %w", o.TaskID, o.DiscipleID, err)
		}
	}
	return tx.Commit()
}

// ListTurns returns the journaled phases of a session in turn order.
func (s *Store) ListTurns(ctx context.Context, sessionID string) ([]storage.TurnRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT session_id, turn, stage, state, event_count, payload_json, recorded_at
FROM turns WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var out []storage.TurnRecord
	for rows.Next() {
		var (
			rec   storage.TurnRecord
			stage string
			at    int64
		)
		if err := rows.Scan(&rec.SessionID, &rec.Turn, &stage, &rec.State, &rec.EventCount, &rec.PayloadJSON, &at); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		rec.Stage = storage.Stage(stage)
		rec.RecordedAt = fromMillis(at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListOutcomes returns outcomes of turns after afterTurn, ordered by turn,
// task and disciple.
func (s *Store) ListOutcomes(ctx context.Context, sessionID string, afterTurn int) ([]storage.OutcomeRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT session_id, turn, task_id, disciple_id, kind, verdict, chance, progress, resources, reputation, dao_heart
FROM turn_outcomes WHERE session_id = ? AND turn > ?
ORDER BY turn, task_id, disciple_id`, sessionID, afterTurn)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var out []storage.OutcomeRecord
	for rows.Next() {
		var o storage.OutcomeRecord
		if err := rows.Scan(&o.SessionID, &o.Turn, &o.TaskID, &o.DiscipleID, &o.Kind, &o.Verdict, &o.Chance, &o.Progress, &o.Resources, &o.Reputation, &o.DaoHeart); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
