package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

type PostgresService struct {
	db          *sql.DB
	recentLimit int
}

// NewPostgresService connects to a pre-initialized database. Like the
// auth backend it refuses to create its own schema.
func NewPostgresService(dsn string) (*PostgresService, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	var schemaReady bool
	if err := db.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1
    FROM information_schema.tables
    WHERE table_schema = 'public'
      AND table_name = 'ledger_runs'
)`).Scan(&schemaReady); err != nil {
		_ = db.Close()
		return nil, err
	}
	if !schemaReady {
		_ = db.Close()
		return nil, fmt.Errorf("ledger schema not initialized: missing table ledger_runs")
	}

	return &PostgresService{
		db:          db,
		recentLimit: defaultRecentLimit,
	}, nil
}

func (s *PostgresService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresService) StartRun(ctx context.Context, userID uint64, runID string, seed int64, startedAt time.Time) error {
	runID = strings.TrimSpace(runID)
	if userID == 0 || runID == "" {
		return fmt.Errorf("user id and run id are required")
	}
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO ledger_runs (user_id, run_id, seed, started_at)
VALUES ($1, $2, $3, $4)
`, userID, runID, seed, startedAt); err != nil {
		if isPostgresUnique(err) {
			return ErrDuplicate
		}
		return err
	}

	if s.recentLimit > 0 {
		if _, err := tx.ExecContext(ctx, `
DELETE FROM ledger_runs
WHERE user_id = $1
  AND id IN (
      SELECT id
      FROM ledger_runs
      WHERE user_id = $1
      ORDER BY started_at DESC, id DESC
      OFFSET $2
  )
`, userID, s.recentLimit); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresService) AppendRound(ctx context.Context, userID uint64, runID string, round RoundItem) error {
	if err := s.requireRun(ctx, userID, runID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO ledger_rounds (
    user_id, run_id, round, enemy, outcome, bet, payout, chips, hp, sanity
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id, run_id, round) DO UPDATE
SET
    enemy = EXCLUDED.enemy,
    outcome = EXCLUDED.outcome,
    bet = EXCLUDED.bet,
    payout = EXCLUDED.payout,
    chips = EXCLUDED.chips,
    hp = EXCLUDED.hp,
    sanity = EXCLUDED.sanity
`, userID, runID, round.Round, round.Enemy, round.Outcome, round.Bet, round.Payout, round.Chips, round.HP, round.Sanity); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE ledger_runs
SET rounds = (
        SELECT COUNT(1) FROM ledger_rounds
        WHERE user_id = $1 AND run_id = $2
    ),
    updated_at = NOW()
WHERE user_id = $1 AND run_id = $2
`, userID, runID); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PostgresService) FinishRun(ctx context.Context, userID uint64, runID string, summary RunSummary) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE ledger_runs
SET finished_at = NOW(),
    result = $3,
    final_chips = $4,
    enemies_defeated = $5,
    updated_at = NOW()
WHERE user_id = $1 AND run_id = $2
`, userID, runID, summary.Result, summary.FinalChips, summary.EnemiesDefeated)
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

func (s *PostgresService) ListRuns(ctx context.Context, userID uint64, limit int) ([]RunItem, error) {
	if userID == 0 {
		return []RunItem{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, seed, started_at, finished_at, result, rounds, final_chips, enemies_defeated
FROM ledger_runs
WHERE user_id = $1
ORDER BY started_at DESC, id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]RunItem, 0, limit)
	for rows.Next() {
		var item RunItem
		var finishedAt sql.NullTime
		var result sql.NullString
		if err := rows.Scan(&item.RunID, &item.Seed, &item.StartedAt, &finishedAt, &result, &item.Rounds, &item.FinalChips, &item.EnemiesDefeated); err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			item.FinishedAt = &t
		}
		item.Result = result.String
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresService) GetRunRounds(ctx context.Context, userID uint64, runID string) ([]RoundItem, error) {
	if err := s.requireRun(ctx, userID, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT round, enemy, outcome, bet, payout, chips, hp, sanity
FROM ledger_rounds
WHERE user_id = $1 AND run_id = $2
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

func (s *PostgresService) requireRun(ctx context.Context, userID uint64, runID string) error {
	runID = strings.TrimSpace(runID)
	if userID == 0 || runID == "" {
		return ErrNotFound
	}
	var exists bool
	err := s.db.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1 FROM ledger_runs
    WHERE user_id = $1 AND run_id = $2
)`, userID, runID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func isPostgresUnique(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
