package blackjack

// DealerSeat is the reserved seat index for the dealer.
const DealerSeat = 0

// State is the top-level game state for a run.
type State byte

const (
	StateMenu          State = 0
	StateBetting       State = 1
	StateDealing       State = 2
	StatePlayerTurn    State = 3
	StateDealerTurn    State = 4
	StateShowdown      State = 5
	StateRoundEnd      State = 6
	StateCombatVictory State = 7
	StateGameOver      State = 8
)

var StateDictionary = map[State]string{
	StateMenu:          "menu",
	StateBetting:       "betting",
	StateDealing:       "dealing",
	StatePlayerTurn:    "playerturn",
	StateDealerTurn:    "dealerturn",
	StateShowdown:      "showdown",
	StateRoundEnd:      "roundend",
	StateCombatVictory: "combatvictory",
	StateGameOver:      "gameover",
}

func (s State) String() string {
	if name, ok := StateDictionary[s]; ok {
		return name
	}
	return "unknown"
}

// PlayerState tracks where a single seat is within the round.
type PlayerState byte

const (
	PlayerStateWaiting   PlayerState = 0
	PlayerStateBetting   PlayerState = 1
	PlayerStatePlaying   PlayerState = 2
	PlayerStateStand     PlayerState = 3
	PlayerStateBust      PlayerState = 4
	PlayerStateBlackjack PlayerState = 5
	PlayerStateWon       PlayerState = 6
	PlayerStateLost      PlayerState = 7
	PlayerStatePush      PlayerState = 8
)

var PlayerStateDictionary = map[PlayerState]string{
	PlayerStateWaiting:   "waiting",
	PlayerStateBetting:   "betting",
	PlayerStatePlaying:   "playing",
	PlayerStateStand:     "stand",
	PlayerStateBust:      "bust",
	PlayerStateBlackjack: "blackjack",
	PlayerStateWon:       "won",
	PlayerStateLost:      "lost",
	PlayerStatePush:      "push",
}

func (s PlayerState) String() string {
	if name, ok := PlayerStateDictionary[s]; ok {
		return name
	}
	return "unknown"
}

// terminal player states end the seat's turn
func (s PlayerState) isTerminal() bool {
	return s == PlayerStateStand || s == PlayerStateBust || s == PlayerStateBlackjack
}

// Action 1-HIT 2-STAND 3-DOUBLE 4-SPLIT
type Action byte

const (
	ActionNone   Action = 0
	ActionHit    Action = 1
	ActionStand  Action = 2
	ActionDouble Action = 3
	ActionSplit  Action = 4
)

var ActionDictionary = map[Action]string{
	ActionNone:   "NONE",
	ActionHit:    "HIT",
	ActionStand:  "STAND",
	ActionDouble: "DOUBLE",
	ActionSplit:  "SPLIT",
}

func (a Action) String() string {
	if name, ok := ActionDictionary[a]; ok {
		return name
	}
	return "UNKNOWN"
}

// DealerPhase is the nested sub-state driving DEALER_TURN. It exists only
// while the game state is StateDealerTurn.
type DealerPhase byte

const (
	DealerPhaseCheckReveal DealerPhase = 0
	DealerPhaseDecide      DealerPhase = 1
	DealerPhaseAction      DealerPhase = 2
	DealerPhaseWait        DealerPhase = 3
)

var DealerPhaseDictionary = map[DealerPhase]string{
	DealerPhaseCheckReveal: "checkreveal",
	DealerPhaseDecide:      "decide",
	DealerPhaseAction:      "action",
	DealerPhaseWait:        "wait",
}

func (p DealerPhase) String() string {
	if name, ok := DealerPhaseDictionary[p]; ok {
		return name
	}
	return "unknown"
}

// Event kinds dispatched through the bus.
type Event byte

const (
	EventCombatStart     Event = 0
	EventCardDrawn       Event = 1
	EventPlayerWin       Event = 2
	EventPlayerLoss      Event = 3
	EventPlayerBust      Event = 4
	EventPlayerBlackjack Event = 5
	EventPlayerPush      Event = 6
	// EventOnEquip is synthetic: fired once when a trinket enters a slot,
	// never as part of round resolution.
	EventOnEquip Event = 7
)

var EventDictionary = map[Event]string{
	EventCombatStart:     "COMBAT_START",
	EventCardDrawn:       "CARD_DRAWN",
	EventPlayerWin:       "PLAYER_WIN",
	EventPlayerLoss:      "PLAYER_LOSS",
	EventPlayerBust:      "PLAYER_BUST",
	EventPlayerBlackjack: "PLAYER_BLACKJACK",
	EventPlayerPush:      "PLAYER_PUSH",
	EventOnEquip:         "ON_EQUIP",
}

func (e Event) String() string {
	if name, ok := EventDictionary[e]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseEvent accepts the event names used in trinket data files.
func ParseEvent(name string) (Event, bool) {
	for event, eventName := range EventDictionary {
		if eventName == name {
			return event, true
		}
	}
	return 0, false
}

// Class selects the run class; each class has its own sanity thresholds.
type Class byte

const (
	ClassDegenerate Class = 0
	ClassDealer     Class = 1
	ClassDetective  Class = 2
	ClassDreamer    Class = 3
)

var ClassDictionary = map[Class]string{
	ClassDegenerate: "degenerate",
	ClassDealer:     "dealer",
	ClassDetective:  "detective",
	ClassDreamer:    "dreamer",
}

func (c Class) String() string {
	if name, ok := ClassDictionary[c]; ok {
		return name
	}
	return "unknown"
}
