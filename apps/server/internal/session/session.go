// Package session runs one blackjack game per connected account. Each
// session is an actor: commands arrive on a channel, a ticker drives the
// engine clock, and state changes are pushed back as JSON frames.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"blackjack-lite/apps/server/internal/codec"
	"blackjack-lite/apps/server/internal/ledger"
	"blackjack-lite/blackjack"
	"blackjack-lite/blackjack/encounter"
)

var ErrSessionClosed = errors.New("session closed")

type EventType int

const (
	EventBet EventType = iota
	EventMove
	EventStartCombat
	EventDrawEncounter
	EventRerollEvent
	EventChoice
	EventRerollTrinket
	EventResync
	EventClose
)

// Event is a message to the session actor. Response, when non-nil,
// receives the outcome exactly once.
type Event struct {
	Type     EventType
	Amount   int
	Move     blackjack.Action
	Enemy    string
	Choice   int
	Slot     int
	Response chan error
}

type Config struct {
	UserID   uint64
	Username string
	RunID    string
	Class    blackjack.Class
	Seed     int64
	Tick     time.Duration
}

type Session struct {
	UserID uint64
	RunID  string

	mu   sync.Mutex
	game *blackjack.Game
	data *blackjack.GameData
	seat int
	seed int64

	events   chan Event
	done     chan struct{}
	stopOnce sync.Once

	serverSeq uint64
	lastSig   string
	lastBet   int

	recordedRound   int
	enemiesDefeated int
	currentEnemy    string
	inVictory       bool
	finished        bool

	send   func(data []byte)
	ledger ledger.Service
	log    *logrus.Entry
	tick   time.Duration
}

// New creates a session, starts its run and its actor goroutine.
func New(cfg Config, data *blackjack.GameData, sendFn func([]byte), ledgerService ledger.Service, logger *logrus.Logger) (*Session, error) {
	if data == nil {
		return nil, fmt.Errorf("game data is required")
	}
	if sendFn == nil {
		sendFn = func([]byte) {}
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 100 * time.Millisecond
	}

	gameCfg := blackjack.DefaultConfig()
	gameCfg.MaxPlayers = 2
	if cfg.Seed != 0 {
		gameCfg.Seed = cfg.Seed
	}

	game, err := blackjack.NewGame(gameCfg, data.Registry, data.Events)
	if err != nil {
		return nil, err
	}
	seat, err := game.AddPlayer(cfg.Username, cfg.Class)
	if err != nil {
		return nil, err
	}
	if err := game.StartRun(); err != nil {
		return nil, err
	}

	s := &Session{
		UserID: cfg.UserID,
		RunID:  cfg.RunID,
		game:   game,
		data:   data,
		seat:   seat,
		seed:   gameCfg.Seed,
		events: make(chan Event, 256),
		done:   make(chan struct{}),
		send:   sendFn,
		ledger: ledgerService,
		tick:   cfg.Tick,
		log: logger.WithFields(logrus.Fields{
			"user": cfg.UserID,
			"run":  cfg.RunID,
		}),
	}
	if s.ledger != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.ledger.StartRun(ctx, s.UserID, s.RunID, s.seed, time.Now().UTC()); err != nil {
			s.log.WithError(err).Warn("ledger start run failed")
		}
	}

	go s.run()

	s.log.WithField("seat", seat).Info("session started")
	return s, nil
}

// Dispatch queues an event and waits for the actor to process it.
func (s *Session) Dispatch(e Event) error {
	response := make(chan error, 1)
	e.Response = response
	select {
	case s.events <- e:
	case <-s.done:
		return ErrSessionClosed
	}
	select {
	case err := <-response:
		return err
	case <-s.done:
		return ErrSessionClosed
	}
}

// Close stops the actor. Idempotent.
func (s *Session) Close() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.log.Info("session stopped")
	})
}

func (s *Session) run() {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case event := <-s.events:
			err := s.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.advance(dt)
		case <-s.done:
			return
		}
	}
}

func (s *Session) handleEvent(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished && e.Type != EventResync && e.Type != EventClose {
		return fmt.Errorf("run is over")
	}

	switch e.Type {
	case EventBet:
		if err := s.game.PlaceBet(s.seat, e.Amount); err != nil {
			return err
		}
		s.lastBet = e.Amount
		return nil
	case EventMove:
		return s.game.PlayerAct(s.seat, e.Move)
	case EventStartCombat:
		return s.startCombatLocked(e.Enemy)
	case EventDrawEncounter:
		enc, err := s.game.DrawEncounter()
		if err != nil {
			return err
		}
		s.pushEncounterLocked(enc)
		return nil
	case EventRerollEvent:
		enc, err := s.game.RerollEncounter(s.seat)
		if err != nil {
			return err
		}
		s.pushEncounterLocked(enc)
		return nil
	case EventChoice:
		text, err := s.game.SelectEventChoice(s.seat, e.Choice)
		if err != nil {
			return err
		}
		s.pushLocked(codec.TypeChoiceText, codec.ChoiceText{Text: text})
		s.pushSnapshotLocked(true)
		return nil
	case EventRerollTrinket:
		if err := s.game.RerollTrinket(s.seat, e.Slot); err != nil {
			return err
		}
		s.pushSnapshotLocked(true)
		return nil
	case EventResync:
		s.pushSnapshotLocked(true)
		return nil
	case EventClose:
		s.Close()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (s *Session) startCombatLocked(key string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	tpl, ok := s.data.Enemies[key]
	if !ok {
		return fmt.Errorf("unknown enemy %q", key)
	}
	if err := s.game.StartCombat(tpl.Spawn()); err != nil {
		return err
	}
	s.currentEnemy = key
	s.pushSnapshotLocked(true)
	return nil
}

func (s *Session) advance(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return
	}
	s.game.Advance(dt)
	s.observeLocked()
}

// observeLocked compares engine state against what has been reported and
// pushes the difference: snapshots on any visible change, round results
// once per resolved round, a run end frame once on game over.
func (s *Session) observeLocked() {
	state := s.game.State()

	if result := s.game.LastRound(); result != nil && result.Round > s.recordedRound {
		s.recordedRound = result.Round
		s.recordRoundLocked(result)
	}

	if state == blackjack.StateCombatVictory {
		if !s.inVictory {
			s.inVictory = true
			s.enemiesDefeated++
			s.currentEnemy = ""
		}
	} else {
		s.inVictory = false
	}

	if state == blackjack.StateGameOver {
		s.finishLocked()
		return
	}

	s.pushSnapshotLocked(false)
}

func (s *Session) recordRoundLocked(result *blackjack.RoundResult) {
	item := ledger.RoundItem{
		Round: result.Round,
		Enemy: s.currentEnemy,
		Bet:   s.lastBet,
	}
	for _, sr := range result.Seats {
		if sr.Seat != s.seat {
			continue
		}
		item.Outcome = sr.Outcome.String()
		item.Payout = sr.ChipsDelta
	}
	if p, err := s.game.Player(s.seat); err == nil {
		item.Chips = p.Chips()
		item.HP = p.HP()
		item.Sanity = p.Sanity()
	}

	if s.ledger != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.ledger.AppendRound(ctx, s.UserID, s.RunID, item); err != nil {
			s.log.WithError(err).Warn("ledger append round failed")
		}
	}

	s.pushLocked(codec.TypeRoundResult, codec.RoundResultToView(result))
}

func (s *Session) finishLocked() {
	if s.finished {
		return
	}
	s.finished = true

	summary := ledger.RunSummary{Result: "defeat", EnemiesDefeated: s.enemiesDefeated}
	if p, err := s.game.Player(s.seat); err == nil {
		summary.FinalChips = p.Chips()
	}
	if s.ledger != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.ledger.FinishRun(ctx, s.UserID, s.RunID, summary); err != nil {
			s.log.WithError(err).Warn("ledger finish run failed")
		}
	}

	s.pushSnapshotLocked(true)
	s.pushLocked(codec.TypeRunEnd, codec.RunEnd{
		Result: summary.Result,
		Rounds: s.recordedRound,
	})
	s.log.WithFields(logrus.Fields{
		"rounds":  s.recordedRound,
		"enemies": s.enemiesDefeated,
	}).Info("run finished")
}

func (s *Session) pushEncounterLocked(enc *encounter.Encounter) {
	p, err := s.game.Player(s.seat)
	if err != nil {
		return
	}
	view := codec.EncounterToView(enc, s.game.RerollCost(), func(c *encounter.Choice) bool {
		return c.Unlocked(p, s.game.Tags())
	})
	s.pushLocked(codec.TypeEncounter, view)
}

// pushSnapshotLocked sends the current snapshot, skipping a resend when
// nothing visible changed since the last push. force bypasses the check.
func (s *Session) pushSnapshotLocked(force bool) {
	view := codec.SnapshotToView(s.game.Snapshot())
	raw, err := json.Marshal(view)
	if err != nil {
		s.log.WithError(err).Warn("marshal snapshot failed")
		return
	}
	sig := string(raw)
	if !force && sig == s.lastSig {
		return
	}
	s.lastSig = sig
	s.pushLocked(codec.TypeSnapshot, view)
}

func (s *Session) pushLocked(msgType string, payload interface{}) {
	s.serverSeq++
	data, err := codec.EncodeServer(msgType, s.serverSeq, payload)
	if err != nil {
		s.log.WithError(err).WithField("type", msgType).Warn("encode frame failed")
		return
	}
	s.send(data)
}

// ParseClass maps a wire class name onto the engine enum. Empty input
// falls back to the degenerate.
func ParseClass(name string) (blackjack.Class, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return blackjack.ClassDegenerate, nil
	}
	for class, candidate := range blackjack.ClassDictionary {
		if candidate == name {
			return class, nil
		}
	}
	return 0, fmt.Errorf("unknown class %q", name)
}

// ParseMove maps a wire move name onto the engine enum.
func ParseMove(name string) (blackjack.Action, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for action, candidate := range blackjack.ActionDictionary {
		if action == blackjack.ActionNone {
			continue
		}
		if candidate == name {
			return action, nil
		}
	}
	return 0, fmt.Errorf("unknown move %q", name)
}
