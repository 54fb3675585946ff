package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteService struct {
	db          *sql.DB
	recentLimit int
}

func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteLedgerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteService{
		db:          db,
		recentLimit: defaultRecentLimit,
	}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) StartRun(ctx context.Context, userID uint64, runID string, seed int64, startedAt time.Time) error {
	runID = strings.TrimSpace(runID)
	if userID == 0 || runID == "" {
		return fmt.Errorf("user id and run id are required")
	}
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	nowMs := time.Now().UTC().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO ledger_runs (
    user_id, run_id, seed, started_at_ms, updated_at_ms
)
VALUES (?, ?, ?, ?, ?)
`, userID, runID, seed, startedAt.UnixMilli(), nowMs); err != nil {
		if isSQLiteUnique(err) {
			return ErrDuplicate
		}
		return err
	}

	if s.recentLimit > 0 {
		if _, err := tx.ExecContext(ctx, `
DELETE FROM ledger_runs
WHERE user_id = ?
  AND id IN (
      SELECT id
      FROM ledger_runs
      WHERE user_id = ?
      ORDER BY started_at_ms DESC, id DESC
      LIMIT -1 OFFSET ?
  )
`, userID, userID, s.recentLimit); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteService) AppendRound(ctx context.Context, userID uint64, runID string, round RoundItem) error {
	if err := s.requireRun(ctx, userID, runID); err != nil {
		return err
	}
	nowMs := time.Now().UTC().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO ledger_rounds (
    user_id, run_id, round, enemy, outcome, bet, payout, chips, hp, sanity, created_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, run_id, round) DO UPDATE
SET
    enemy = excluded.enemy,
    outcome = excluded.outcome,
    bet = excluded.bet,
    payout = excluded.payout,
    chips = excluded.chips,
    hp = excluded.hp,
    sanity = excluded.sanity
`, userID, runID, round.Round, round.Enemy, round.Outcome, round.Bet, round.Payout, round.Chips, round.HP, round.Sanity, nowMs); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE ledger_runs
SET rounds = (
        SELECT COUNT(1) FROM ledger_rounds
        WHERE user_id = ? AND run_id = ?
    ),
    updated_at_ms = ?
WHERE user_id = ? AND run_id = ?
`, userID, runID, nowMs, userID, runID); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteService) FinishRun(ctx context.Context, userID uint64, runID string, summary RunSummary) error {
	nowMs := time.Now().UTC().UnixMilli()
	res, err := s.db.ExecContext(ctx, `
UPDATE ledger_runs
SET finished_at_ms = ?,
    result = ?,
    final_chips = ?,
    enemies_defeated = ?,
    updated_at_ms = ?
WHERE user_id = ? AND run_id = ?
`, nowMs, summary.Result, summary.FinalChips, summary.EnemiesDefeated, nowMs, userID, runID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteService) ListRuns(ctx context.Context, userID uint64, limit int) ([]RunItem, error) {
	if userID == 0 {
		return []RunItem{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, seed, started_at_ms, finished_at_ms, result, rounds, final_chips, enemies_defeated
FROM ledger_runs
WHERE user_id = ?
ORDER BY started_at_ms DESC, id DESC
LIMIT ?
`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]RunItem, 0, limit)
	for rows.Next() {
		var item RunItem
		var startedMs int64
		var finishedMs sql.NullInt64
		var result sql.NullString
		if err := rows.Scan(&item.RunID, &item.Seed, &startedMs, &finishedMs, &result, &item.Rounds, &item.FinalChips, &item.EnemiesDefeated); err != nil {
			return nil, err
		}
		item.StartedAt = time.UnixMilli(startedMs).UTC()
		if finishedMs.Valid {
			t := time.UnixMilli(finishedMs.Int64).UTC()
			item.FinishedAt = &t
		}
		item.Result = result.String
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLiteService) GetRunRounds(ctx context.Context, userID uint64, runID string) ([]RoundItem, error) {
	if err := s.requireRun(ctx, userID, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT round, enemy, outcome, bet, payout, chips, hp, sanity
FROM ledger_rounds
WHERE user_id = ? AND run_id = ?
ORDER BY round ASC
`, userID, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]RoundItem, 0, 16)
	for rows.Next() {
		var r RoundItem
		if err := rows.Scan(&r.Round, &r.Enemy, &r.Outcome, &r.Bet, &r.Payout, &r.Chips, &r.HP, &r.Sanity); err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

func (s *SQLiteService) requireRun(ctx context.Context, userID uint64, runID string) error {
	runID = strings.TrimSpace(runID)
	if userID == 0 || runID == "" {
		return ErrNotFound
	}
	var exists bool
	err := s.db.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1 FROM ledger_runs
    WHERE user_id = ? AND run_id = ?
)`, userID, runID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func ensureSQLiteLedgerSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS ledger_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    run_id TEXT NOT NULL,
    seed INTEGER NOT NULL DEFAULT 0,
    started_at_ms INTEGER NOT NULL,
    finished_at_ms INTEGER,
    result TEXT NOT NULL DEFAULT '',
    rounds INTEGER NOT NULL DEFAULT 0,
    final_chips INTEGER NOT NULL DEFAULT 0,
    enemies_defeated INTEGER NOT NULL DEFAULT 0,
    updated_at_ms INTEGER NOT NULL
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_ledger_runs_user_run ON ledger_runs(user_id, run_id)`,
		`
CREATE TABLE IF NOT EXISTS ledger_rounds (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    run_id TEXT NOT NULL,
    round INTEGER NOT NULL,
    enemy TEXT NOT NULL DEFAULT '',
    outcome TEXT NOT NULL DEFAULT '',
    bet INTEGER NOT NULL DEFAULT 0,
    payout INTEGER NOT NULL DEFAULT 0,
    chips INTEGER NOT NULL DEFAULT 0,
    hp INTEGER NOT NULL DEFAULT 0,
    sanity INTEGER NOT NULL DEFAULT 0,
    created_at_ms INTEGER NOT NULL
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_ledger_rounds_run_round ON ledger_rounds(user_id, run_id, round)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func isSQLiteUnique(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
