package replay

import (
	"encoding/json"
	"fmt"

	"blackjack-lite/blackjack"
	"blackjack-lite/blackjack/encounter"
	"blackjack-lite/trinket"
)

const (
	tapeVersion  = 1
	defaultRunID = "replay_local"
	defaultSeed  = 1

	// advanceStep drives the state machine between scripted inputs; it is
	// below every pacing delay so no phase is skipped.
	advanceStep = 0.5
	// maxTicks bounds the dealer turn and round-end drains.
	maxTicks = 200
)

// GenerateRunTape replays a scripted run fragment against a fresh engine
// and records the resulting event stream. The same spec always yields
// the same tape.
func GenerateRunTape(spec RunSpec) (*RunTape, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	cfg := blackjack.DefaultConfig()
	cfg.MinBet = ns.table.MinBet
	cfg.MaxBet = ns.table.MaxBet
	cfg.StartingChips = ns.table.StartingChips
	cfg.MaxPlayers = len(ns.seats) + 1
	cfg.Seed = seedFromSpec(spec.RNG)
	cfg.DeckOverride = ns.deck

	game, err := blackjack.NewGame(cfg, trinket.NewRegistry(), encounter.NewPool())
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}
	for _, seat := range ns.seats {
		idx, err := game.AddPlayer(seat.id, seat.class)
		if err != nil {
			return nil, &ReplayError{StepIndex: -1, Reason: "seat_init_failed", Message: err.Error()}
		}
		if seat.chips != ns.table.StartingChips {
			p, _ := game.Player(idx)
			p.AddChips(seat.chips - p.Chips())
		}
	}

	builder := newTapeBuilder(defaultRunID, ns.heroSeat)
	builder.addSnapshot(game.Snapshot())

	if err := game.StartRun(); err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "start_run_failed", Message: err.Error()}
	}

	stepIdx := 0
	for roundIdx, round := range ns.rounds {
		if game.State() != blackjack.StateBetting {
			return nil, &ReplayError{
				StepIndex: int32(stepIdx),
				Reason:    "unexpected_state",
				Message:   fmt.Sprintf("round %d opens in state %s, not betting", roundIdx, game.State()),
			}
		}
		builder.addRoundStart(game.Round(), cfg.MinBet)

		for _, bet := range round.bets {
			if err := game.PlaceBet(bet.seat, bet.amount); err != nil {
				return nil, &ReplayError{
					StepIndex: int32(stepIdx),
					Reason:    "bet_apply_failed",
					Message:   err.Error(),
					Expected:  &ExpectedState{ActionSeat: bet.seat, State: game.State().String(), MinBet: cfg.MinBet},
				}
			}
			builder.addBet(bet.seat, bet.amount)
			stepIdx++
		}

		game.Advance(0)
		if game.State() == blackjack.StateBetting {
			return nil, &ReplayError{
				StepIndex: int32(stepIdx),
				Reason:    "missing_bets",
				Message:   fmt.Sprintf("round %d: not every live seat has a bet down", roundIdx),
			}
		}
		if game.State() == blackjack.StateGameOver {
			break
		}
		if !advanceUntil(game, blackjack.StatePlayerTurn) {
			return nil, &ReplayError{StepIndex: int32(stepIdx), Reason: "deal_stalled", Message: "dealing never reached the player turn"}
		}
		builder.addSnapshot(game.Snapshot())

		for _, move := range round.moves {
			before := game.Snapshot()
			if before.State != blackjack.StatePlayerTurn {
				return nil, &ReplayError{
					StepIndex: int32(stepIdx),
					Reason:    "no_action_expected",
					Message:   fmt.Sprintf("round %d is past the player turn; no further moves are allowed", roundIdx),
				}
			}
			if before.ActionSeat != move.seat {
				return nil, &ReplayError{
					StepIndex: int32(stepIdx),
					Reason:    "out_of_turn",
					Message:   fmt.Sprintf("expected action seat %d, got %d", before.ActionSeat, move.seat),
					Expected:  expectedStateForSeat(game, before.ActionSeat),
				}
			}
			if err := game.PlayerAct(move.seat, move.action); err != nil {
				return nil, &ReplayError{
					StepIndex: int32(stepIdx),
					Reason:    "action_apply_failed",
					Message:   err.Error(),
					Expected:  expectedStateForSeat(game, move.seat),
				}
			}
			builder.addMoveResult(game, move.seat, move.action)
			stepIdx++
			game.Advance(0)
		}

		if !drainRound(game) {
			return nil, &ReplayError{
				StepIndex: int32(stepIdx),
				Reason:    "round_incomplete",
				Message:   fmt.Sprintf("round %d: a scripted seat still has cards to play", roundIdx),
			}
		}
		if last := game.LastRound(); last != nil {
			builder.addRoundResult(last)
		}
		if game.State() == blackjack.StateGameOver {
			break
		}
	}

	builder.addSnapshot(game.Snapshot())
	return builder.tape, nil
}

// advanceUntil ticks the clock until the game reaches want. False means
// the state machine settled somewhere else.
func advanceUntil(game *blackjack.Game, want blackjack.State) bool {
	for i := 0; i < maxTicks; i++ {
		if game.State() == want {
			return true
		}
		game.Advance(advanceStep)
	}
	return false
}

// drainRound ticks through the dealer turn and settlement until the next
// betting round (or the end of the run). False means a seat the script
// never resolved is still holding the turn.
func drainRound(game *blackjack.Game) bool {
	for i := 0; i < maxTicks; i++ {
		switch game.State() {
		case blackjack.StateBetting, blackjack.StateGameOver:
			return true
		case blackjack.StatePlayerTurn:
			snap := game.Snapshot()
			if seatIsStuck(game, snap.ActionSeat) {
				return false
			}
		}
		game.Advance(advanceStep)
	}
	return false
}

// seatIsStuck reports a live human seat waiting for input that the
// script will never deliver.
func seatIsStuck(game *blackjack.Game, seat int) bool {
	p, err := game.Player(seat)
	if err != nil {
		return false
	}
	return !p.IsAI() && p.State() == blackjack.PlayerStatePlaying
}

func expectedStateForSeat(game *blackjack.Game, seat int) *ExpectedState {
	out := &ExpectedState{ActionSeat: seat, State: game.State().String()}
	p, err := game.Player(seat)
	if err != nil {
		return out
	}
	if p.State() == blackjack.PlayerStatePlaying {
		out.LegalMoves = []string{blackjack.ActionHit.String(), blackjack.ActionStand.String()}
		if len(p.Hand().Cards()) == 2 && p.Chips() >= p.Bet() {
			out.LegalMoves = append(out.LegalMoves, blackjack.ActionDouble.String())
		}
	}
	return out
}

func seedFromSpec(rng *RNGSpec) int64 {
	if rng == nil || rng.Seed == 0 {
		return defaultSeed
	}
	return rng.Seed
}

// tapeBuilder accumulates sequenced events.
type tapeBuilder struct {
	tape *RunTape
	seq  uint64
}

func newTapeBuilder(runID string, heroSeat int) *tapeBuilder {
	return &tapeBuilder{
		tape: &RunTape{TapeVersion: tapeVersion, RunID: runID, HeroSeat: heroSeat},
	}
}

func (b *tapeBuilder) add(eventType string, payload interface{}) {
	b.seq++
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = nil
	}
	b.tape.Events = append(b.tape.Events, RunEvent{Type: eventType, Seq: b.seq, Payload: raw})
}

func (b *tapeBuilder) addSnapshot(snap blackjack.Snapshot) {
	b.add("snapshot", snapshotPayload(snap))
}

func (b *tapeBuilder) addRoundStart(round, minBet int) {
	b.add("roundStart", map[string]interface{}{"round": round, "minBet": minBet})
}

func (b *tapeBuilder) addBet(seat, amount int) {
	b.add("bet", map[string]interface{}{"seat": seat, "amount": amount})
}

func (b *tapeBuilder) addMoveResult(game *blackjack.Game, seat int, action blackjack.Action) {
	p, err := game.Player(seat)
	if err != nil {
		return
	}
	b.add("moveResult", map[string]interface{}{
		"seat":  seat,
		"move":  action.String(),
		"total": p.Hand().Total(),
		"state": p.State().String(),
	})
}

func (b *tapeBuilder) addRoundResult(result *blackjack.RoundResult) {
	b.add("roundResult", result)
}
