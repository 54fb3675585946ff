package blackjack

import "errors"

var (
	ErrRoundEnded     = errors.New("round already ended")
	ErrOutOfTurn      = errors.New("action out of turn")
	ErrNotEnoughChips = errors.New("not enough chips")
	ErrNoSuchSeat     = errors.New("no such seat")
	ErrChoiceLocked   = errors.New("event choice requirement not met")
	ErrNoEncounter    = errors.New("no active event encounter")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
