package replay

import "encoding/json"

// RunSpec scripts a deterministic run fragment: seats, an optional
// rigged deck, and the bets and moves for each round in order.
type RunSpec struct {
	Table  TableSpec   `json:"table"`
	Seats  []SeatSpec  `json:"seats"`
	Deck   []string    `json:"deck,omitempty"`
	Rounds []RoundSpec `json:"rounds"`
	RNG    *RNGSpec    `json:"rng,omitempty"`
}

type TableSpec struct {
	MinBet        int `json:"min_bet"`
	MaxBet        int `json:"max_bet"`
	StartingChips int `json:"starting_chips"`
}

type SeatSpec struct {
	ID     string `json:"id"`
	Class  string `json:"class,omitempty"`
	Chips  int    `json:"chips,omitempty"`
	IsHero bool   `json:"is_hero,omitempty"`
}

type RoundSpec struct {
	Bets  []BetSpec  `json:"bets"`
	Moves []MoveSpec `json:"moves"`
}

type BetSpec struct {
	Seat   int `json:"seat"`
	Amount int `json:"amount"`
}

type MoveSpec struct {
	Seat int    `json:"seat"`
	Move string `json:"move"`
}

type RNGSpec struct {
	Seed int64 `json:"seed"`
}

type RunTape struct {
	TapeVersion int        `json:"tape_version"`
	RunID       string     `json:"run_id"`
	HeroSeat    int        `json:"hero_seat"`
	Events      []RunEvent `json:"events"`
}

type RunEvent struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
