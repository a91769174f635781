package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

// MessageType identifies a websocket message
type MessageType string

const (
	MessageTypeEvent    MessageType = "event"
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeAction   MessageType = "action"
	MessageTypeError    MessageType = "error"
)

// Message is the single envelope used in both directions. Only the fields
// for its type are set.
type Message struct {
	Type MessageType `json:"type"`

	// event
	Event game.EventType  `json:"event,omitempty"`
	Time  *time.Time      `json:"time,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`

	// snapshot
	Seat     *int               `json:"seat,omitempty"`
	Snapshot *game.Snapshot     `json:"snapshot,omitempty"`
	Legal    []game.LegalAction `json:"legal,omitempty"`

	// action
	Action game.Action `json:"action,omitempty"`
	Amount int         `json:"amount,omitempty"`
	Intent game.Intent `json:"intent,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// Decision converts an action message
func (m *Message) Decision() game.Decision {
	return game.Decision{Action: m.Action, Amount: m.Amount, Intent: m.Intent}
}

func newEventMessage(e game.Event) (*Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", e.EventType(), err)
	}
	ts := e.Timestamp()
	return &Message{Type: MessageTypeEvent, Event: e.EventType(), Time: &ts, Data: data}, nil
}

func newErrorMessage(err error) *Message {
	return &Message{Type: MessageTypeError, Error: err.Error()}
}

// redactEvent removes what seat may not see: other seats' hole cards and
// the reasoning behind other seats' actions.
func redactEvent(e game.Event, seat int) game.Event {
	switch ev := e.(type) {
	case game.HandStartedEvent:
		hole := ev.Hole
		ev.Hole = nil
		if cards, ok := hole[seat]; ok {
			ev.Hole = map[int][]poker.Card{seat: cards}
		}
		return ev
	case game.ActionAppliedEvent:
		if ev.Seat != seat {
			ev.Reasoning = ""
			ev.Intent = game.IntentNone
		}
		return ev
	}
	return e
}
