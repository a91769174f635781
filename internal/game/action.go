package game

import (
	"fmt"
	"strings"
)

// Action represents a seat action
type Action uint8

const (
	NoAction Action = iota
	Fold
	Check
	Call
	Raise
	AllIn
)

func (a Action) String() string {
	if a > AllIn {
		return "unknown"
	}
	return [...]string{"none", "fold", "check", "call", "raise", "allin"}[a]
}

// ParseAction parses an action name such as "call" or "all-in".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold", "f":
		return Fold, nil
	case "check", "k":
		return Check, nil
	case "call", "c":
		return Call, nil
	case "raise", "bet", "r":
		return Raise, nil
	case "allin", "all-in", "all_in", "a":
		return AllIn, nil
	default:
		return NoAction, fmt.Errorf("unknown action %q", s)
	}
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Action) UnmarshalText(b []byte) error {
	if string(b) == "none" || len(b) == 0 {
		*a = NoAction
		return nil
	}
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Intent is a per-seat, per-street plan recorded alongside an action.
type Intent uint8

const (
	IntentNone Intent = iota
	// IntentCheckRaise marks a seat that checked or called planning to raise
	// if someone bets into it later in the same betting round.
	IntentCheckRaise
)

func (i Intent) String() string {
	switch i {
	case IntentCheckRaise:
		return "check-raise"
	default:
		return "none"
	}
}

func (i Intent) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *Intent) UnmarshalText(b []byte) error {
	switch string(b) {
	case "check-raise":
		*i = IntentCheckRaise
	case "none", "":
		*i = IntentNone
	default:
		return fmt.Errorf("unknown intent %q", b)
	}
	return nil
}

// LegalAction is one member of a seat's legal action set. Only the fields
// relevant to the action are set: Call and AllIn carry Amount (chips the seat
// would add), Raise carries the Min and Max total bet.
type LegalAction struct {
	Action Action `json:"action"`
	Amount int    `json:"amount,omitempty"`
	Min    int    `json:"min,omitempty"`
	Max    int    `json:"max,omitempty"`
}

func (l LegalAction) String() string {
	switch l.Action {
	case Call, AllIn:
		return fmt.Sprintf("%s(%d)", l.Action, l.Amount)
	case Raise:
		return fmt.Sprintf("raise(%d-%d)", l.Min, l.Max)
	default:
		return l.Action.String()
	}
}

// FindLegal returns the entry for action a, if present.
func FindLegal(legal []LegalAction, a Action) (LegalAction, bool) {
	for _, l := range legal {
		if l.Action == a {
			return l, true
		}
	}
	return LegalAction{}, false
}

// Decision is a request to act. Amount is only read for Raise, where it is
// the total bet to raise to.
type Decision struct {
	Action    Action `json:"action"`
	Amount    int    `json:"amount,omitempty"`
	Intent    Intent `json:"intent,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Tag renders the decision as an action tag, e.g. "check-intending-raise".
func (d Decision) Tag() string {
	if d.Intent == IntentCheckRaise {
		return d.Action.String() + "-intending-raise"
	}
	if d.Action == Raise {
		return fmt.Sprintf("raise-to-%d", d.Amount)
	}
	return d.Action.String()
}
