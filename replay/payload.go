package replay

import "blackjack-lite/blackjack"

// snapshotView is the JSON shape of an engine snapshot inside a tape.
// Cards travel as strings ("Ah", "Td"); face-down cards are already
// masked by the engine.
type snapshotView struct {
	State       string         `json:"state"`
	Round       int            `json:"round"`
	Act         int            `json:"act"`
	ActionSeat  int            `json:"action_seat"`
	DeckSize    int            `json:"deck_size"`
	DiscardSize int            `json:"discard_size"`
	Players     []snapshotSeat `json:"players"`
}

type snapshotSeat struct {
	ID     string   `json:"id"`
	Seat   int      `json:"seat"`
	Dealer bool     `json:"dealer,omitempty"`
	Chips  int      `json:"chips"`
	HP     int      `json:"hp"`
	Sanity int      `json:"sanity"`
	Bet    int      `json:"bet,omitempty"`
	State  string   `json:"state"`
	Cards  []string `json:"cards,omitempty"`
	Total  int      `json:"total,omitempty"`
}

func snapshotPayload(snap blackjack.Snapshot) snapshotView {
	out := snapshotView{
		State:       snap.State.String(),
		Round:       snap.Round,
		Act:         snap.Act,
		ActionSeat:  snap.ActionSeat,
		DeckSize:    snap.DeckSize,
		DiscardSize: snap.DiscardSize,
	}
	for _, ps := range snap.Players {
		seat := snapshotSeat{
			ID:     ps.ID,
			Seat:   ps.Seat,
			Dealer: ps.Dealer,
			Chips:  ps.Chips,
			HP:     ps.HP,
			Sanity: ps.Sanity,
			Bet:    ps.Bet,
			State:  ps.State.String(),
			Total:  ps.Total,
		}
		for _, cs := range ps.Cards {
			seat.Cards = append(seat.Cards, cs.Card.String())
		}
		out.Players = append(out.Players, seat)
	}
	return out
}
