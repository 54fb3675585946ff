// Package ledger records finished runs and their per-round results so
// players can review past sessions. Backends mirror the auth package:
// memory for single-binary play, sqlite for local persistence, postgres
// for hosted deployments.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultRecentLimit = 200
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("run already exists")
)

type Service interface {
	Close() error
	StartRun(ctx context.Context, userID uint64, runID string, seed int64, startedAt time.Time) error
	AppendRound(ctx context.Context, userID uint64, runID string, round RoundItem) error
	FinishRun(ctx context.Context, userID uint64, runID string, summary RunSummary) error
	ListRuns(ctx context.Context, userID uint64, limit int) ([]RunItem, error)
	GetRunRounds(ctx context.Context, userID uint64, runID string) ([]RoundItem, error)
}

type RunItem struct {
	RunID           string     `json:"run_id"`
	Seed            int64      `json:"seed"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	Result          string     `json:"result,omitempty"`
	Rounds          int        `json:"rounds"`
	FinalChips      int        `json:"final_chips"`
	EnemiesDefeated int        `json:"enemies_defeated"`
}

type RoundItem struct {
	Round   int    `json:"round"`
	Enemy   string `json:"enemy,omitempty"`
	Outcome string `json:"outcome"`
	Bet     int    `json:"bet"`
	Payout  int    `json:"payout"`
	Chips   int    `json:"chips"`
	HP      int    `json:"hp"`
	Sanity  int    `json:"sanity"`
}

type RunSummary struct {
	Result          string `json:"result"`
	FinalChips      int    `json:"final_chips"`
	EnemiesDefeated int    `json:"enemies_defeated"`
}

const (
	ModeMemory   = "memory"
	ModeSQLite   = "sqlite"
	ModePostgres = "postgres"
)

// NewService builds the ledger backend for the configured mode.
func NewService(mode, sqlitePath, postgresDSN string) (Service, string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeMemory, "mem":
		return NewMemoryService(), ModeMemory, nil
	case ModeSQLite, "local":
		service, err := NewSQLiteService(sqlitePath)
		if err != nil {
			return nil, ModeSQLite, err
		}
		return service, ModeSQLite, nil
	case ModePostgres, "postgresql", "db":
		service, err := NewPostgresService(postgresDSN)
		if err != nil {
			return nil, ModePostgres, err
		}
		return service, ModePostgres, nil
	default:
		return nil, mode, fmt.Errorf("invalid ledger mode %q (supported: %s, %s, %s)", mode, ModeMemory, ModeSQLite, ModePostgres)
	}
}

type runRecord struct {
	userID uint64
	item   RunItem
	rounds []RoundItem
}

type MemoryService struct {
	mu          sync.Mutex
	runs        map[string]*runRecord // run id -> record
	byUser      map[uint64][]string   // insertion order, oldest first
	recentLimit int
}

func NewMemoryService() *MemoryService {
	return &MemoryService{
		runs:        make(map[string]*runRecord),
		byUser:      make(map[uint64][]string),
		recentLimit: defaultRecentLimit,
	}
}

func (s *MemoryService) Close() error { return nil }

func (s *MemoryService) StartRun(_ context.Context, userID uint64, runID string, seed int64, startedAt time.Time) error {
	runID = strings.TrimSpace(runID)
	if userID == 0 || runID == "" {
		return fmt.Errorf("user id and run id are required")
	}
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; exists {
		return ErrDuplicate
	}
	s.runs[runID] = &runRecord{
		userID: userID,
		item: RunItem{
			RunID:     runID,
			Seed:      seed,
			StartedAt: startedAt,
		},
	}
	s.byUser[userID] = append(s.byUser[userID], runID)
	s.trimLocked(userID)
	return nil
}

func (s *MemoryService) AppendRound(_ context.Context, userID uint64, runID string, round RoundItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookupLocked(userID, runID)
	if err != nil {
		return err
	}
	rec.rounds = append(rec.rounds, round)
	rec.item.Rounds = len(rec.rounds)
	return nil
}

func (s *MemoryService) FinishRun(_ context.Context, userID uint64, runID string, summary RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookupLocked(userID, runID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec.item.FinishedAt = &now
	rec.item.Result = summary.Result
	rec.item.FinalChips = summary.FinalChips
	rec.item.EnemiesDefeated = summary.EnemiesDefeated
	return nil
}

func (s *MemoryService) ListRuns(_ context.Context, userID uint64, limit int) ([]RunItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byUser[userID]
	items := make([]RunItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, s.runs[id].item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartedAt.After(items[j].StartedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *MemoryService) GetRunRounds(_ context.Context, userID uint64, runID string) ([]RoundItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookupLocked(userID, runID)
	if err != nil {
		return nil, err
	}
	rounds := make([]RoundItem, len(rec.rounds))
	copy(rounds, rec.rounds)
	return rounds, nil
}

func (s *MemoryService) lookupLocked(userID uint64, runID string) (*runRecord, error) {
	rec, exists := s.runs[strings.TrimSpace(runID)]
	if !exists || rec.userID != userID {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryService) trimLocked(userID uint64) {
	ids := s.byUser[userID]
	if s.recentLimit <= 0 || len(ids) <= s.recentLimit {
		return
	}
	drop := ids[:len(ids)-s.recentLimit]
	for _, id := range drop {
		delete(s.runs, id)
	}
	s.byUser[userID] = append([]string(nil), ids[len(ids)-s.recentLimit:]...)
}
