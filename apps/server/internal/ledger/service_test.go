package ledger

import (
	"context"
	"errors"
	"testing"
	"time"
)

func ledgerBackends(t *testing.T) map[string]Service {
	t.Helper()
	sqlite, err := NewSQLiteService(":memory:")
	if err != nil {
		t.Fatalf("sqlite service: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Service{
		"memory": NewMemoryService(),
		"sqlite": sqlite,
	}
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, s := range ledgerBackends(t) {
		t.Run(name, func(t *testing.T) {
			started := time.Now().UTC().Truncate(time.Millisecond)
			if err := s.StartRun(ctx, 7, "run_a", 42, started); err != nil {
				t.Fatalf("start run: %v", err)
			}
			if err := s.AppendRound(ctx, 7, "run_a", RoundItem{
				Round: 1, Enemy: "pit_boss", Outcome: "win",
				Bet: 10, Payout: 20, Chips: 110, HP: 80, Sanity: 60,
			}); err != nil {
				t.Fatalf("append round: %v", err)
			}
			if err := s.AppendRound(ctx, 7, "run_a", RoundItem{
				Round: 2, Enemy: "pit_boss", Outcome: "bust",
				Bet: 20, Chips: 90, HP: 70, Sanity: 55,
			}); err != nil {
				t.Fatalf("append round: %v", err)
			}
			if err := s.FinishRun(ctx, 7, "run_a", RunSummary{
				Result: "defeat", FinalChips: 90, EnemiesDefeated: 1,
			}); err != nil {
				t.Fatalf("finish run: %v", err)
			}

			items, err := s.ListRuns(ctx, 7, 0)
			if err != nil {
				t.Fatalf("list runs: %v", err)
			}
			if len(items) != 1 {
				t.Fatalf("expected 1 run, got %d", len(items))
			}
			run := items[0]
			if run.RunID != "run_a" || run.Seed != 42 {
				t.Fatalf("unexpected run item: %+v", run)
			}
			if run.Rounds != 2 {
				t.Fatalf("expected 2 rounds, got %d", run.Rounds)
			}
			if run.FinishedAt == nil || run.Result != "defeat" || run.FinalChips != 90 {
				t.Fatalf("expected finished run, got %+v", run)
			}

			rounds, err := s.GetRunRounds(ctx, 7, "run_a")
			if err != nil {
				t.Fatalf("get rounds: %v", err)
			}
			if len(rounds) != 2 {
				t.Fatalf("expected 2 rounds, got %d", len(rounds))
			}
			if rounds[0].Round != 1 || rounds[0].Outcome != "win" || rounds[0].Payout != 20 {
				t.Fatalf("unexpected first round: %+v", rounds[0])
			}
			if rounds[1].Outcome != "bust" {
				t.Fatalf("unexpected second round: %+v", rounds[1])
			}
		})
	}
}

func TestStartRunRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	for name, s := range ledgerBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.StartRun(ctx, 7, "run_a", 1, time.Now()); err != nil {
				t.Fatalf("start run: %v", err)
			}
			if err := s.StartRun(ctx, 7, "run_a", 1, time.Now()); !errors.Is(err, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
		})
	}
}

func TestRunsAreScopedToUser(t *testing.T) {
	ctx := context.Background()
	for name, s := range ledgerBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.StartRun(ctx, 7, "run_a", 1, time.Now()); err != nil {
				t.Fatalf("start run: %v", err)
			}
			if _, err := s.GetRunRounds(ctx, 8, "run_a"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for other user, got %v", err)
			}
			if err := s.FinishRun(ctx, 8, "run_a", RunSummary{}); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for other user, got %v", err)
			}
			items, err := s.ListRuns(ctx, 8, 0)
			if err != nil {
				t.Fatalf("list runs: %v", err)
			}
			if len(items) != 0 {
				t.Fatalf("expected no runs for other user, got %d", len(items))
			}
		})
	}
}

func TestMemoryServiceTrimsOldRuns(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryService()
	s.recentLimit = 3
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		runID := "run_" + string(rune('a'+i))
		if err := s.StartRun(ctx, 7, runID, int64(i), base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("start run: %v", err)
		}
	}
	items, err := s.ListRuns(ctx, 7, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 runs after trim, got %d", len(items))
	}
	if items[0].RunID != "run_e" {
		t.Fatalf("expected newest run first, got %s", items[0].RunID)
	}
	if _, err := s.GetRunRounds(ctx, 7, "run_a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected trimmed run to be gone, got %v", err)
	}
}
