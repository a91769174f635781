package game

import (
	"reflect"
	"sync"
	"time"

	"github.com/lox/holdem/poker"
)

// EventType identifies a table event
type EventType string

const (
	EventTypeHandStarted   EventType = "hand_started"
	EventTypeActionApplied EventType = "action_applied"
	EventTypePhaseAdvanced EventType = "phase_advanced"
	EventTypeHandEnded     EventType = "hand_ended"
)

func (et EventType) String() string {
	return string(et)
}

// Event is anything the table publishes to observers. Events carry private
// information (hole cards); transports must redact before forwarding.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// BlindPost records one forced bet.
type BlindPost struct {
	Seat   int `json:"seat"`
	Amount int `json:"amount"`
}

// HandStartedEvent is published once blinds are posted and hole cards dealt
type HandStartedEvent struct {
	HandID     string               `json:"hand_id"`
	HandNumber int                  `json:"hand_number"`
	Dealer     int                  `json:"dealer"`
	SmallBlind int                  `json:"small_blind"`
	BigBlind   int                  `json:"big_blind"`
	Blinds     []BlindPost          `json:"blinds"`
	Stacks     map[int]int          `json:"stacks"` // chips before blinds
	Names      map[int]string       `json:"names"`
	Hole       map[int][]poker.Card `json:"hole,omitempty"`
	timestamp  time.Time
}

func (e HandStartedEvent) EventType() EventType { return EventTypeHandStarted }
func (e HandStartedEvent) Timestamp() time.Time { return e.timestamp }

// ActionAppliedEvent is published after every accepted action
type ActionAppliedEvent struct {
	HandID    string `json:"hand_id"`
	Seat      int    `json:"seat"`
	Phase     Phase  `json:"phase"`
	Action    Action `json:"action"`
	Added     int    `json:"added"`     // chips moved into the pot
	BetTotal  int    `json:"bet_total"` // seat's bet this round after the action
	Pot       int    `json:"pot"`
	Intent    Intent `json:"intent,omitempty"`
	Forced    bool   `json:"forced,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	timestamp time.Time
}

func (e ActionAppliedEvent) EventType() EventType { return EventTypeActionApplied }
func (e ActionAppliedEvent) Timestamp() time.Time { return e.timestamp }

// PhaseAdvancedEvent is published when community cards are dealt
type PhaseAdvancedEvent struct {
	HandID    string       `json:"hand_id"`
	Phase     Phase        `json:"phase"`
	Dealt     []poker.Card `json:"dealt"`
	Board     []poker.Card `json:"board"`
	Pot       int          `json:"pot"`
	timestamp time.Time
}

func (e PhaseAdvancedEvent) EventType() EventType { return EventTypePhaseAdvanced }
func (e PhaseAdvancedEvent) Timestamp() time.Time { return e.timestamp }

// HandEndedEvent is published once the pot has been paid out
type HandEndedEvent struct {
	HandID     string       `json:"hand_id"`
	Settlement Settlement   `json:"settlement"`
	Board      []poker.Card `json:"board"`
	Stacks     map[int]int  `json:"stacks"` // chips after payout
	timestamp  time.Time
}

func (e HandEndedEvent) EventType() EventType { return EventTypeHandEnded }
func (e HandEndedEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber receives table events
type EventSubscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to EventSubscriber
type SubscriberFunc func(Event)

func (f SubscriberFunc) OnEvent(e Event) { f(e) }

// EventBus fans events out to subscribers
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus delivers events synchronously in subscription order
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

func (b *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, subscriber)
}

// Unsubscribe removes a subscriber. Non-comparable subscribers such as a
// bare SubscriberFunc cannot be removed; subscribe a pointer instead.
func (b *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	if subscriber == nil || !reflect.TypeOf(subscriber).Comparable() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subscribers {
		if reflect.TypeOf(s).Comparable() && s == subscriber {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

func (b *SimpleEventBus) Publish(event Event) {
	b.mu.RLock()
	subs := make([]EventSubscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, s := range subs {
		s.OnEvent(event)
	}
}
