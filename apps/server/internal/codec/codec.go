// Package codec defines the JSON envelopes exchanged over the websocket
// and the wire views of engine state. Cards travel as strings ("Ah",
// "10d"); face-down cards arrive already masked by the engine.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"blackjack-lite/blackjack"
	"blackjack-lite/blackjack/encounter"
)

// Client message types.
const (
	TypeStartRun      = "startRun"
	TypeBet           = "bet"
	TypeMove          = "move"
	TypeStartCombat   = "startCombat"
	TypeDrawEncounter = "drawEncounter"
	TypeRerollEvent   = "rerollEvent"
	TypeChoice        = "choice"
	TypeRerollTrinket = "rerollTrinket"
	TypeResync        = "resync"
)

// Server message types.
const (
	TypeError       = "error"
	TypeSnapshot    = "snapshot"
	TypeRoundResult = "roundResult"
	TypeEncounter   = "encounter"
	TypeChoiceText  = "choiceText"
	TypeRunEnd      = "runEnd"
)

type ClientEnvelope struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ServerEnvelope struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq"`
	TsMs    int64           `json:"ts_ms"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client payloads.

type StartRunRequest struct {
	Class string `json:"class,omitempty"`
	Seed  int64  `json:"seed,omitempty"`
}

type BetRequest struct {
	Amount int `json:"amount"`
}

type MoveRequest struct {
	Move string `json:"move"`
}

type StartCombatRequest struct {
	Enemy string `json:"enemy"`
}

type ChoiceRequest struct {
	Choice int `json:"choice"`
}

type RerollTrinketRequest struct {
	Slot int `json:"slot"`
}

// Server payloads.

type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ClientSeq uint64 `json:"client_seq,omitempty"`
}

type ChoiceText struct {
	Text string `json:"text"`
}

type RunEnd struct {
	Result string `json:"result"`
	Rounds int    `json:"rounds"`
}

// DecodeClient parses one inbound frame.
func DecodeClient(data []byte) (ClientEnvelope, error) {
	var env ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("invalid envelope: %w", err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("envelope missing type")
	}
	return env, nil
}

// DecodePayload parses an envelope payload into a request struct.
// Unknown fields are rejected so client bugs surface early.
func DecodePayload(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// EncodeServer wraps a payload into a sequenced, timestamped frame.
func EncodeServer(msgType string, seq uint64, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ServerEnvelope{
		Type:    msgType,
		Seq:     seq,
		TsMs:    time.Now().UnixMilli(),
		Payload: raw,
	})
}

// SnapshotView is the client-facing snapshot shape.
type SnapshotView struct {
	State       string     `json:"state"`
	Round       int        `json:"round"`
	Act         int        `json:"act"`
	ActionSeat  int        `json:"action_seat"`
	DeckSize    int        `json:"deck_size"`
	DiscardSize int        `json:"discard_size"`
	InCombat    bool       `json:"in_combat,omitempty"`
	Enemy       *EnemyView `json:"enemy,omitempty"`
	Players     []SeatView `json:"players"`
	RerollCost  int        `json:"reroll_cost"`
}

type EnemyView struct {
	Name       string `json:"name"`
	HP         int    `json:"hp"`
	MaxHP      int    `json:"max_hp"`
	ChipThreat int    `json:"chip_threat"`
}

type SeatView struct {
	ID       string       `json:"id"`
	Seat     int          `json:"seat"`
	Dealer   bool         `json:"dealer,omitempty"`
	Chips    int          `json:"chips"`
	HP       int          `json:"hp"`
	MaxHP    int          `json:"max_hp"`
	Sanity   int          `json:"sanity"`
	Tier     string       `json:"tier"`
	Bet      int          `json:"bet,omitempty"`
	State    string       `json:"state"`
	Cards    []string     `json:"cards,omitempty"`
	Total    int          `json:"total,omitempty"`
	Trinkets []string     `json:"trinkets,omitempty"`
	Statuses []StatusView `json:"statuses,omitempty"`
}

type StatusView struct {
	Kind     string `json:"kind"`
	Value    int    `json:"value"`
	Duration int    `json:"duration"`
}

func SnapshotToView(snap blackjack.Snapshot) SnapshotView {
	out := SnapshotView{
		State:       snap.State.String(),
		Round:       snap.Round,
		Act:         snap.Act,
		ActionSeat:  snap.ActionSeat,
		DeckSize:    snap.DeckSize,
		DiscardSize: snap.DiscardSize,
		InCombat:    snap.InCombat,
		RerollCost:  snap.RerollCost,
	}
	if snap.Enemy != nil {
		out.Enemy = &EnemyView{
			Name:       snap.Enemy.Name,
			HP:         snap.Enemy.HP,
			MaxHP:      snap.Enemy.MaxHP,
			ChipThreat: snap.Enemy.ChipThreat,
		}
	}
	for _, ps := range snap.Players {
		seat := SeatView{
			ID:     ps.ID,
			Seat:   ps.Seat,
			Dealer: ps.Dealer,
			Chips:  ps.Chips,
			HP:     ps.HP,
			MaxHP:  ps.MaxHP,
			Sanity: ps.Sanity,
			Tier:   ps.Tier.String(),
			Bet:    ps.Bet,
			State:  ps.State.String(),
			Total:  ps.Total,
		}
		for _, cs := range ps.Cards {
			seat.Cards = append(seat.Cards, cs.Card.String())
		}
		for _, slot := range ps.Slots {
			if slot.Occupied {
				seat.Trinkets = append(seat.Trinkets, slot.Inst.TemplateKey)
			}
		}
		for _, st := range ps.Statuses {
			seat.Statuses = append(seat.Statuses, StatusView{
				Kind:     st.Kind.String(),
				Value:    st.Value,
				Duration: st.Duration,
			})
		}
		out.Players = append(out.Players, seat)
	}
	return out
}

// RoundResultView flattens the engine's round result for clients.
type RoundResultView struct {
	Round           int              `json:"round"`
	DealerTotal     int              `json:"dealer_total"`
	DealerBust      bool             `json:"dealer_bust,omitempty"`
	DealerBlackjack bool             `json:"dealer_blackjack,omitempty"`
	Glitched        bool             `json:"glitched,omitempty"`
	Seats           []SeatResultView `json:"seats"`
}

type SeatResultView struct {
	Seat        int    `json:"seat"`
	Outcome     string `json:"outcome"`
	ChipsDelta  int    `json:"chips_delta"`
	DamageDealt int    `json:"damage_dealt,omitempty"`
	DamageTaken int    `json:"damage_taken,omitempty"`
	Crit        bool   `json:"crit,omitempty"`
}

func RoundResultToView(result *blackjack.RoundResult) RoundResultView {
	out := RoundResultView{
		Round:           result.Round,
		DealerTotal:     result.DealerTotal,
		DealerBust:      result.DealerBust,
		DealerBlackjack: result.DealerBlackjack,
		Glitched:        result.Glitched,
	}
	for _, sr := range result.Seats {
		out.Seats = append(out.Seats, SeatResultView{
			Seat:        sr.Seat,
			Outcome:     sr.Outcome.String(),
			ChipsDelta:  sr.ChipsDelta,
			DamageDealt: sr.DamageDealt,
			DamageTaken: sr.DamageTaken,
			Crit:        sr.Crit,
		})
	}
	return out
}

// EncounterView strips an encounter to what the client may see.
type EncounterView struct {
	Key         string       `json:"key"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Choices     []ChoiceView `json:"choices"`
	RerollCost  int          `json:"reroll_cost"`
}

type ChoiceView struct {
	Text   string `json:"text"`
	Locked bool   `json:"locked"`
}

func EncounterToView(enc *encounter.Encounter, rerollCost int, unlocked func(c *encounter.Choice) bool) EncounterView {
	out := EncounterView{
		Key:         enc.Key,
		Title:       enc.Title,
		Description: enc.Description,
		RerollCost:  rerollCost,
	}
	for i := range enc.Choices {
		c := &enc.Choices[i]
		out.Choices = append(out.Choices, ChoiceView{
			Text:   c.Text,
			Locked: unlocked != nil && !unlocked(c),
		})
	}
	return out
}
