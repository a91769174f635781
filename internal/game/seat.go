package game

import (
	"fmt"

	"github.com/lox/holdem/poker"
)

// Status is a seat's participation state within a hand
type Status uint8

const (
	Active Status = iota
	Folded
	AllInStatus
	Out
)

func (s Status) String() string {
	if s > Out {
		return "unknown"
	}
	return [...]string{"active", "folded", "allin", "out"}[s]
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "active":
		*s = Active
	case "folded":
		*s = Folded
	case "allin":
		*s = AllInStatus
	case "out":
		*s = Out
	default:
		return fmt.Errorf("unknown seat status %q", b)
	}
	return nil
}

// Seat is one player's per-hand record. The table owns every Seat; callers
// only ever see copies through Snapshot and View.
type Seat struct {
	ID         int          `json:"id"`
	Name       string       `json:"name"`
	Human      bool         `json:"human,omitempty"`
	Chips      int          `json:"chips"`
	Hole       []poker.Card `json:"hole,omitempty"`
	Bet        int          `json:"bet"`       // chips put in during the current betting round
	TotalBet   int          `json:"total_bet"` // chips put in during the whole hand
	Status     Status       `json:"status"`
	Dealer     bool         `json:"dealer,omitempty"`
	SmallBlind bool         `json:"small_blind,omitempty"`
	BigBlind   bool         `json:"big_blind,omitempty"`
	LastAction Action       `json:"last_action"`
	Acted      bool         `json:"acted,omitempty"`
	Intent     Intent       `json:"intent,omitempty"`
	Left       bool         `json:"left,omitempty"` // removed from the table, never dealt in again
}

// InHand reports whether the seat can still win the pot.
func (s *Seat) InHand() bool {
	return s.Status == Active || s.Status == AllInStatus
}

// CanAct reports whether the seat still makes decisions.
func (s *Seat) CanAct() bool {
	return s.Status == Active
}

func (s *Seat) resetForHand() {
	s.Hole = nil
	s.Bet = 0
	s.TotalBet = 0
	s.Dealer, s.SmallBlind, s.BigBlind = false, false, false
	s.LastAction = NoAction
	s.Acted = false
	s.Intent = IntentNone
	if s.Chips <= 0 || s.Left {
		s.Status = Out
		return
	}
	s.Status = Active
}

func (s *Seat) resetForRound() {
	s.Bet = 0
	s.Acted = false
	s.Intent = IntentNone
}

// put moves chips from the stack into the pot, capped at the stack. A seat
// left with nothing becomes all-in.
func (s *Seat) put(amount int) int {
	if amount > s.Chips {
		amount = s.Chips
	}
	s.Chips -= amount
	s.Bet += amount
	s.TotalBet += amount
	if s.Chips == 0 && s.Status == Active {
		s.Status = AllInStatus
	}
	return amount
}
