package game

import (
	"errors"
	"fmt"
)

var (
	ErrNotYourTurn       = errors.New("not your turn")
	ErrIllegalAction     = errors.New("action not allowed")
	ErrAmountOutOfRange  = errors.New("amount out of range")
	ErrHandNotInProgress = errors.New("no hand in progress")
	ErrHandInProgress    = errors.New("hand already in progress")
	ErrUnknownSeat       = errors.New("unknown seat")
	ErrNotEnoughPlayers  = errors.New("at least 2 seats with chips are required")
	ErrInvalidConfig     = errors.New("invalid table config")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
	// ErrInvariantBroken halts the table. Every later call returns it.
	ErrInvariantBroken = errors.New("chip conservation invariant broken")
)

// ActionError describes a rejected action. The table state is unchanged.
type ActionError struct {
	Seat   int
	Action Action
	Amount int
	Reason string
	Err    error
}

func (e *ActionError) Error() string {
	msg := fmt.Sprintf("seat %d %s", e.Seat, e.Action)
	if e.Action == Raise {
		msg += fmt.Sprintf(" %d", e.Amount)
	}
	msg += ": " + e.Err.Error()
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *ActionError) Unwrap() error { return e.Err }

func reject(seat int, d Decision, err error, format string, args ...any) *ActionError {
	return &ActionError{
		Seat:   seat,
		Action: d.Action,
		Amount: d.Amount,
		Reason: fmt.Sprintf(format, args...),
		Err:    err,
	}
}
