package game

import (
	"fmt"
	"slices"

	"github.com/lox/holdem/poker"
)

// Snapshot is a complete, serialisable copy of a table. Restoring it into a
// table with the same configuration reproduces the table exactly, including the
// undealt cards.
type Snapshot struct {
	HandID     string       `json:"hand_id"`
	HandNumber int          `json:"hand_number"`
	Phase      Phase        `json:"phase"`
	Board      []poker.Card `json:"board"`
	Pot        int          `json:"pot"`
	CurrentBet int          `json:"current_bet"`
	MinRaise   int          `json:"min_raise"`
	Dealer     int          `json:"dealer"`
	Actor      int          `json:"actor"`
	SmallBlind int          `json:"small_blind"`
	BigBlind   int          `json:"big_blind"`
	Issued     int          `json:"issued"`
	Seats      []Seat       `json:"seats"`
	Deck       []poker.Card `json:"deck,omitempty"`
	Settlement *Settlement  `json:"settlement,omitempty"`
}

// Snapshot copies the table state.
func (t *Table) Snapshot() Snapshot {
	snap := Snapshot{
		HandID:     t.handID,
		HandNumber: t.handNumber,
		Phase:      t.phase,
		Board:      slices.Clone(t.board),
		Pot:        t.pot,
		CurrentBet: t.currentBet,
		MinRaise:   t.minRaise,
		Dealer:     t.dealer,
		Actor:      t.Actor(),
		SmallBlind: t.smallBlind,
		BigBlind:   t.bigBlind,
		Issued:     t.issued,
		Seats:      make([]Seat, len(t.seats)),
	}
	for i, s := range t.seats {
		snap.Seats[i] = *s
		snap.Seats[i].Hole = slices.Clone(s.Hole)
	}
	if t.phase.Betting() {
		snap.Deck = t.deck.Remaining()
	}
	if t.settlement != nil {
		st := *t.settlement
		snap.Settlement = &st
	}
	return snap
}

// Redact hides what viewer is not allowed to see: the deck and other seats'
// hole cards. Hands still live at showdown are revealed. A viewer of -1 sees
// no hole cards at all.
func (s Snapshot) Redact(viewer int) Snapshot {
	out := s
	out.Deck = nil
	out.Seats = make([]Seat, len(s.Seats))
	for i, seat := range s.Seats {
		out.Seats[i] = seat
		reveal := seat.ID == viewer || (s.Phase == Showdown && seat.InHand() && s.Settlement != nil && s.Settlement.Reason == ReasonShowdown)
		if reveal {
			out.Seats[i].Hole = slices.Clone(seat.Hole)
		} else {
			out.Seats[i].Hole = nil
		}
	}
	return out
}

// Restore replaces the table state with snap after validating it. Blinds
// come from the snapshot; options such as side pots and the event bus are kept.
func (t *Table) Restore(snap Snapshot) error {
	if err := snap.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if err := t.deck.Stack(snap.Deck); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	t.handID = snap.HandID
	t.handNumber = snap.HandNumber
	t.phase = snap.Phase
	t.board = slices.Clone(snap.Board)
	t.pot = snap.Pot
	t.currentBet = snap.CurrentBet
	t.minRaise = snap.MinRaise
	t.dealer = snap.Dealer
	t.actor = snap.Actor
	t.smallBlind = snap.SmallBlind
	t.bigBlind = snap.BigBlind
	t.issued = snap.Issued
	t.halted = nil
	t.seats = make([]*Seat, len(snap.Seats))
	for i := range snap.Seats {
		s := snap.Seats[i]
		s.Hole = slices.Clone(s.Hole)
		t.seats[i] = &s
	}
	t.settlement = nil
	if snap.Settlement != nil {
		st := *snap.Settlement
		t.settlement = &st
	}
	return t.CheckConservation()
}

func (s Snapshot) validate() error {
	if len(s.Seats) > MaxSeats {
		return fmt.Errorf("%d seats", len(s.Seats))
	}
	if s.Phase > Showdown {
		return fmt.Errorf("unknown phase %d", s.Phase)
	}
	if s.BigBlind <= 0 || s.SmallBlind < 0 || s.MinRaise < 0 || s.Pot < 0 || s.CurrentBet < 0 {
		return fmt.Errorf("negative amounts")
	}

	total := s.Pot
	seen := make(map[poker.Card]bool)
	addCards := func(cards []poker.Card) error {
		for _, c := range cards {
			if !c.Valid() {
				return fmt.Errorf("invalid card %v", c)
			}
			if seen[c] {
				return fmt.Errorf("card %s appears twice", c)
			}
			seen[c] = true
		}
		return nil
	}
	for i, seat := range s.Seats {
		if seat.ID != i {
			return fmt.Errorf("seat %d has id %d", i, seat.ID)
		}
		if seat.Chips < 0 || seat.Bet < 0 || seat.TotalBet < seat.Bet {
			return fmt.Errorf("seat %d has inconsistent chips", i)
		}
		if len(seat.Hole) != 0 && len(seat.Hole) != 2 {
			return fmt.Errorf("seat %d has %d hole cards", i, len(seat.Hole))
		}
		if err := addCards(seat.Hole); err != nil {
			return err
		}
		total += seat.Chips
	}
	if total != s.Issued {
		return fmt.Errorf("%d chips on table, %d issued", total, s.Issued)
	}
	if err := addCards(s.Board); err != nil {
		return err
	}
	if err := addCards(s.Deck); err != nil {
		return err
	}

	if !s.Phase.Betting() {
		return nil
	}
	want := map[Phase]int{Preflop: 0, Flop: 3, Turn: 4, River: 5}[s.Phase]
	if len(s.Board) != want {
		return fmt.Errorf("%s with %d board cards", s.Phase, len(s.Board))
	}
	if s.Actor < 0 || s.Actor >= len(s.Seats) || !s.Seats[s.Actor].CanAct() {
		return fmt.Errorf("actor %d cannot act", s.Actor)
	}
	if s.Dealer < 0 || s.Dealer >= len(s.Seats) {
		return fmt.Errorf("dealer %d out of range", s.Dealer)
	}
	return nil
}

// PlayerView is the public part of another seat
type PlayerView struct {
	Seat       int    `json:"seat"`
	Name       string `json:"name"`
	Chips      int    `json:"chips"`
	Bet        int    `json:"bet"`
	Status     Status `json:"status"`
	LastAction Action `json:"last_action"`
	Dealer     bool   `json:"dealer,omitempty"`
}

// SeatView is everything one seat may know when deciding. It is the only
// input a decision policy gets.
type SeatView struct {
	Seat       int           `json:"seat"`
	HandNumber int           `json:"hand_number"`
	Phase      Phase         `json:"phase"`
	Hole       []poker.Card  `json:"hole"`
	Board      []poker.Card  `json:"board"`
	Chips      int           `json:"chips"`
	Bet        int           `json:"bet"`
	ToCall     int           `json:"to_call"`
	Pot        int           `json:"pot"`
	CurrentBet int           `json:"current_bet"`
	MinRaise   int           `json:"min_raise"`
	BigBlind   int           `json:"big_blind"`
	Legal      []LegalAction `json:"legal"`
	// Position runs from 0 for the first seat to act after the flop to 1
	// for the button, over seats still in the hand.
	Position  float64      `json:"position"`
	Opponents int          `json:"opponents"` // other seats still in the hand
	Intent    Intent       `json:"intent,omitempty"`
	Players   []PlayerView `json:"players"`
}

// View projects the table for seatID.
func (t *Table) View(seatID int) (SeatView, error) {
	if t.halted != nil {
		return SeatView{}, t.halted
	}
	s, err := t.seat(seatID)
	if err != nil {
		return SeatView{}, err
	}
	v := SeatView{
		Seat:       seatID,
		HandNumber: t.handNumber,
		Phase:      t.phase,
		Hole:       slices.Clone(s.Hole),
		Board:      slices.Clone(t.board),
		Chips:      s.Chips,
		Bet:        s.Bet,
		ToCall:     t.toCall(s),
		Pot:        t.pot,
		CurrentBet: t.currentBet,
		MinRaise:   t.minRaise,
		BigBlind:   t.bigBlind,
		Intent:     s.Intent,
	}
	if t.phase.Betting() && seatID == t.actor {
		v.Legal = t.legal(s)
	}

	var order []int
	for i := 1; i <= len(t.seats); i++ {
		o := t.seats[(t.dealer+i)%len(t.seats)]
		if o.InHand() {
			order = append(order, o.ID)
		}
	}
	if idx := slices.Index(order, seatID); idx >= 0 && len(order) > 1 {
		v.Position = float64(idx) / float64(len(order)-1)
		v.Opponents = len(order) - 1
	}

	for _, o := range t.seats {
		if o.Left {
			continue
		}
		v.Players = append(v.Players, PlayerView{
			Seat:       o.ID,
			Name:       o.Name,
			Chips:      o.Chips,
			Bet:        o.Bet,
			Status:     o.Status,
			LastAction: o.LastAction,
			Dealer:     o.Dealer,
		})
	}
	return v, nil
}
