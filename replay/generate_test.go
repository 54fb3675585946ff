package replay

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestGenerateRunTape_IsDeterministic(t *testing.T) {
	spec := baseRunSpec()

	tapeA, err := GenerateRunTape(spec)
	if err != nil {
		t.Fatalf("GenerateRunTape A failed: %v", err)
	}
	tapeB, err := GenerateRunTape(spec)
	if err != nil {
		t.Fatalf("GenerateRunTape B failed: %v", err)
	}

	if !reflect.DeepEqual(tapeA, tapeB) {
		t.Fatalf("expected deterministic run tape for the same RunSpec")
	}
	if len(tapeA.Events) == 0 {
		t.Fatalf("expected non-empty run tape")
	}

	foundRoundStart := false
	foundMoveResult := false
	foundRoundResult := false
	for _, e := range tapeA.Events {
		switch e.Type {
		case "roundStart":
			foundRoundStart = true
		case "moveResult":
			foundMoveResult = true
		case "roundResult":
			foundRoundResult = true
		}
	}
	if !foundRoundStart || !foundMoveResult || !foundRoundResult {
		t.Fatalf("expected run tape to contain roundStart, moveResult and roundResult events")
	}
}

func TestGenerateRunTape_RiggedDeckOutcome(t *testing.T) {
	// The rigged deck gives the hero J+9 = 19 against a pat dealer 17,
	// so the round must settle as a plain win at even money.
	tape, err := GenerateRunTape(baseRunSpec())
	if err != nil {
		t.Fatalf("GenerateRunTape failed: %v", err)
	}

	var final snapshotView
	for _, e := range tape.Events {
		if e.Type != "snapshot" {
			continue
		}
		if err := json.Unmarshal(e.Payload, &final); err != nil {
			t.Fatalf("snapshot payload did not parse: %v", err)
		}
	}
	if len(final.Players) != 2 {
		t.Fatalf("expected dealer plus hero in final snapshot, got %d seats", len(final.Players))
	}
	hero := final.Players[1]
	if hero.Chips != 110 {
		t.Fatalf("hero chips = %d, want 110 after winning a 10 chip bet", hero.Chips)
	}
}

func TestGenerateRunTape_ReturnsReplayErrorOnOutOfTurnMove(t *testing.T) {
	spec := baseRunSpec()
	spec.Seats = append(spec.Seats, SeatSpec{ID: "villain"})
	spec.Deck = []string{"2h", "Jc", "Qs", "7d", "9s", "8c"}
	spec.Rounds[0].Bets = append(spec.Rounds[0].Bets, BetSpec{Seat: 2, Amount: 10})
	spec.Rounds[0].Moves = []MoveSpec{{Seat: 2, Move: "STAND"}}

	_, err := GenerateRunTape(spec)
	if err == nil {
		t.Fatalf("expected tape generation to fail on out-of-turn move")
	}
	replayErr, ok := err.(*ReplayError)
	if !ok {
		t.Fatalf("expected ReplayError type, got %T", err)
	}
	if replayErr.Reason != "out_of_turn" {
		t.Fatalf("unexpected reason: %s", replayErr.Reason)
	}
	if replayErr.Expected == nil || replayErr.Expected.ActionSeat != 1 {
		t.Fatalf("expected replay error to name the seat holding the turn")
	}
}

func TestGenerateRunTape_RejectsDuplicateDeckCards(t *testing.T) {
	spec := baseRunSpec()
	spec.Deck = []string{"10h", "10h"}

	_, err := GenerateRunTape(spec)
	if err == nil {
		t.Fatalf("expected duplicate deck card to fail")
	}
	replayErr, ok := err.(*ReplayError)
	if !ok {
		t.Fatalf("expected ReplayError type, got %T", err)
	}
	if replayErr.Reason != "invalid_deck" {
		t.Fatalf("unexpected reason: %s", replayErr.Reason)
	}
}

func TestGenerateRunTape_ReportsUnresolvedSeat(t *testing.T) {
	spec := baseRunSpec()
	spec.Rounds[0].Moves = nil

	_, err := GenerateRunTape(spec)
	if err == nil {
		t.Fatalf("expected tape generation to fail with the hero still to act")
	}
	replayErr, ok := err.(*ReplayError)
	if !ok {
		t.Fatalf("expected ReplayError type, got %T", err)
	}
	if replayErr.Reason != "round_incomplete" {
		t.Fatalf("unexpected reason: %s", replayErr.Reason)
	}
}

func baseRunSpec() RunSpec {
	return RunSpec{
		Table: TableSpec{MinBet: 5, MaxBet: 100, StartingChips: 100},
		Seats: []SeatSpec{
			{ID: "hero", IsHero: true},
		},
		// Deal order: dealer hole, hero, dealer upcard, hero.
		Deck: []string{"10h", "Jc", "7d", "9s"},
		Rounds: []RoundSpec{
			{
				Bets:  []BetSpec{{Seat: 1, Amount: 10}},
				Moves: []MoveSpec{{Seat: 1, Move: "STAND"}},
			},
		},
		RNG: &RNGSpec{Seed: 42},
	}
}
