package replay

import (
	"fmt"
	"strings"

	"blackjack-lite/blackjack"
	"blackjack-lite/card"
)

type normalizedSeat struct {
	id     string
	class  blackjack.Class
	chips  int
	isHero bool
}

type normalizedBet struct {
	seat   int
	amount int
}

type normalizedMove struct {
	seat   int
	action blackjack.Action
}

type normalizedRound struct {
	bets  []normalizedBet
	moves []normalizedMove
}

type normalizedSpec struct {
	table    TableSpec
	seats    []normalizedSeat
	heroSeat int
	deck     []card.Card
	rounds   []normalizedRound
}

func normalizeSpec(spec RunSpec) (normalizedSpec, error) {
	var out normalizedSpec
	out.table = spec.Table

	if out.table.MinBet <= 0 || out.table.MaxBet < out.table.MinBet {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_table", Message: "invalid bet range"}
	}
	if out.table.StartingChips <= 0 {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_table", Message: "table.starting_chips must be > 0"}
	}
	if len(spec.Seats) == 0 {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_seats", Message: "at least 1 seat is required"}
	}
	if len(spec.Rounds) == 0 {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_rounds", Message: "at least 1 round is required"}
	}

	seenID := make(map[string]struct{}, len(spec.Seats))
	heroCount := 0
	for i, seat := range spec.Seats {
		if seat.ID == "" {
			return out, &ReplayError{StepIndex: -1, Reason: "invalid_seat", Message: fmt.Sprintf("seat %d has an empty id", i)}
		}
		if _, dup := seenID[seat.ID]; dup {
			return out, &ReplayError{StepIndex: -1, Reason: "duplicate_seat", Message: fmt.Sprintf("duplicate seat id %q", seat.ID)}
		}
		seenID[seat.ID] = struct{}{}

		class, err := parseClass(seat.Class)
		if err != nil {
			return out, &ReplayError{StepIndex: -1, Reason: "invalid_class", Message: err.Error()}
		}
		chips := seat.Chips
		if chips == 0 {
			chips = out.table.StartingChips
		}
		if chips < 0 {
			return out, &ReplayError{StepIndex: -1, Reason: "invalid_seat", Message: fmt.Sprintf("seat %d chips must be >= 0", i)}
		}
		if seat.IsHero {
			heroCount++
			// Engine seats are handed out after the dealer, in join order.
			out.heroSeat = i + 1
		}
		out.seats = append(out.seats, normalizedSeat{id: seat.ID, class: class, chips: chips, isHero: seat.IsHero})
	}
	if heroCount > 1 {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_seats", Message: "at most one hero seat"}
	}
	if heroCount == 0 {
		out.heroSeat = 1
	}

	deck, err := parseDeck(spec.Deck)
	if err != nil {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_deck", Message: err.Error()}
	}
	out.deck = deck

	maxSeat := len(spec.Seats)
	for r, round := range spec.Rounds {
		var nr normalizedRound
		for i, bet := range round.Bets {
			if bet.Seat < 1 || bet.Seat > maxSeat {
				return out, &ReplayError{StepIndex: -1, Reason: "invalid_bet", Message: fmt.Sprintf("round %d bet %d: seat %d out of range", r, i, bet.Seat)}
			}
			if bet.Amount < out.table.MinBet {
				return out, &ReplayError{StepIndex: -1, Reason: "invalid_bet", Message: fmt.Sprintf("round %d bet %d: amount %d below table minimum %d", r, i, bet.Amount, out.table.MinBet)}
			}
			nr.bets = append(nr.bets, normalizedBet{seat: bet.Seat, amount: bet.Amount})
		}
		for i, move := range round.Moves {
			if move.Seat < 1 || move.Seat > maxSeat {
				return out, &ReplayError{StepIndex: -1, Reason: "invalid_move", Message: fmt.Sprintf("round %d move %d: seat %d out of range", r, i, move.Seat)}
			}
			action, err := parseMove(move.Move)
			if err != nil {
				return out, &ReplayError{StepIndex: -1, Reason: "invalid_move", Message: fmt.Sprintf("round %d move %d: %v", r, i, err)}
			}
			nr.moves = append(nr.moves, normalizedMove{seat: move.Seat, action: action})
		}
		out.rounds = append(out.rounds, nr)
	}

	return out, nil
}

func parseClass(name string) (blackjack.Class, error) {
	if name == "" {
		return blackjack.ClassDegenerate, nil
	}
	lower := strings.ToLower(strings.TrimSpace(name))
	for class, className := range blackjack.ClassDictionary {
		if className == lower {
			return class, nil
		}
	}
	return 0, fmt.Errorf("unknown class %q", name)
}

func parseMove(name string) (blackjack.Action, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for action, actionName := range blackjack.ActionDictionary {
		if actionName == upper && action != blackjack.ActionNone {
			return action, nil
		}
	}
	return 0, fmt.Errorf("unknown move %q", name)
}

func parseDeck(specs []string) ([]card.Card, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	seen := make(map[card.Card]struct{}, len(specs))
	cards := make([]card.Card, 0, len(specs))
	for i, s := range specs {
		c, err := card.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("deck card %d: %v", i, err)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("deck card %d: duplicate %s", i, c)
		}
		seen[c] = struct{}{}
		cards = append(cards, c)
	}
	return cards, nil
}
