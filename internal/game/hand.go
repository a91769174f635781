package game

import (
	"fmt"
	"slices"

	"github.com/lox/holdem/poker"
)

// Result describes the table after an accepted action
type Result struct {
	Phase        Phase
	PhaseChanged bool
	HandComplete bool
	Settlement   *Settlement
}

// StartHand shuffles, moves the button, posts blinds and deals hole cards.
// Seats without chips sit the hand out.
func (t *Table) StartHand() (Snapshot, error) {
	if t.halted != nil {
		return Snapshot{}, t.halted
	}
	if t.phase.Betting() {
		return Snapshot{}, ErrHandInProgress
	}
	if t.FundedSeats() < 2 {
		return Snapshot{}, ErrNotEnoughPlayers
	}

	t.deck.Shuffle()
	t.board = nil
	t.pot = 0
	t.settlement = nil
	stacks := make(map[int]int)
	names := make(map[int]string)
	for _, s := range t.seats {
		s.resetForHand()
		if dealtIn(s) {
			stacks[s.ID] = s.Chips
			names[s.ID] = s.Name
		}
	}

	t.dealer = t.nextSeat(t.dealer, dealtIn)
	sb := t.nextSeat(t.dealer, dealtIn)
	if t.countSeats(dealtIn) == 2 {
		sb = t.dealer
	}
	bb := t.nextSeat(sb, dealtIn)
	t.seats[t.dealer].Dealer = true
	t.seats[sb].SmallBlind = true
	t.seats[bb].BigBlind = true

	blinds := []BlindPost{
		{Seat: sb, Amount: t.post(t.seats[sb], t.smallBlind)},
		{Seat: bb, Amount: t.post(t.seats[bb], t.bigBlind)},
	}
	t.currentBet = t.bigBlind
	t.minRaise = t.bigBlind

	hole := make(map[int][]poker.Card)
	for _, s := range t.seats {
		if dealtIn(s) {
			s.Hole = t.deck.Deal(2)
			hole[s.ID] = slices.Clone(s.Hole)
		}
	}

	t.handNumber++
	t.handID = t.nextHandID()
	t.phase = Preflop
	t.actor = t.nextSeat(bb, t.needsAction)

	t.publish(HandStartedEvent{
		HandID:     t.handID,
		HandNumber: t.handNumber,
		Dealer:     t.dealer,
		SmallBlind: sb,
		BigBlind:   bb,
		Blinds:     blinds,
		Stacks:     stacks,
		Names:      names,
		Hole:       hole,
		timestamp:  t.now(),
	})

	if err := t.CheckConservation(); err != nil {
		return Snapshot{}, err
	}
	if t.roundComplete() {
		if err := t.endRound(); err != nil {
			return Snapshot{}, err
		}
	}
	return t.Snapshot(), nil
}

func (t *Table) post(s *Seat, blind int) int {
	added := s.put(blind)
	t.pot += added
	return added
}

// LegalActions returns what seat may do right now. Seats that are not on turn
// get an empty set.
func (t *Table) LegalActions(seatID int) ([]LegalAction, error) {
	if t.halted != nil {
		return nil, t.halted
	}
	s, err := t.seat(seatID)
	if err != nil {
		return nil, err
	}
	if !t.phase.Betting() {
		return nil, ErrHandNotInProgress
	}
	if seatID != t.actor {
		return nil, nil
	}
	return t.legal(s), nil
}

func (t *Table) legal(s *Seat) []LegalAction {
	if !s.CanAct() {
		return nil
	}
	toCall := t.toCall(s)
	legal := []LegalAction{{Action: Fold}}
	if toCall == 0 {
		legal = append(legal, LegalAction{Action: Check})
	}
	if toCall > 0 && toCall < s.Chips {
		legal = append(legal, LegalAction{Action: Call, Amount: toCall})
	}
	minTotal := t.currentBet + t.minRaise
	maxTotal := s.Bet + s.Chips
	if s.Chips > toCall && maxTotal >= minTotal {
		legal = append(legal, LegalAction{Action: Raise, Min: minTotal, Max: maxTotal})
	}
	if s.Chips > 0 {
		legal = append(legal, LegalAction{Action: AllIn, Amount: s.Chips})
	}
	return legal
}

func (t *Table) toCall(s *Seat) int {
	return max(0, t.currentBet-s.Bet)
}

// ApplyAction validates and applies one decision for the seat on turn. A
// rejected action returns an *ActionError and leaves the table untouched.
func (t *Table) ApplyAction(seatID int, d Decision) (Result, error) {
	if t.halted != nil {
		return Result{}, t.halted
	}
	s, err := t.seat(seatID)
	if err != nil {
		return Result{}, reject(seatID, d, ErrUnknownSeat, "%d seats", len(t.seats))
	}
	if !t.phase.Betting() {
		return Result{}, reject(seatID, d, ErrHandNotInProgress, "phase %s", t.phase)
	}
	if seatID != t.actor {
		return Result{}, reject(seatID, d, ErrNotYourTurn, "seat %d to act", t.actor)
	}
	l, ok := FindLegal(t.legal(s), d.Action)
	if !ok {
		return Result{}, reject(seatID, d, ErrIllegalAction, "to call %d with %d chips", t.toCall(s), s.Chips)
	}
	if d.Action == Raise && (d.Amount < l.Min || d.Amount > l.Max) {
		return Result{}, reject(seatID, d, ErrAmountOutOfRange, "raise to %d-%d", l.Min, l.Max)
	}

	prev := t.phase
	added := 0
	intent := IntentNone
	switch d.Action {
	case Fold:
		s.Status = Folded
	case Check:
		intent = d.Intent
	case Call:
		added = s.put(l.Amount)
		intent = d.Intent
	case Raise:
		added = s.put(d.Amount - s.Bet)
		t.minRaise = d.Amount - t.currentBet
		t.currentBet = d.Amount
		t.reopen(s)
	case AllIn:
		added = s.put(s.Chips)
		if s.Bet > t.currentBet {
			if inc := s.Bet - t.currentBet; inc >= t.minRaise {
				t.minRaise = inc
			}
			t.currentBet = s.Bet
			t.reopen(s)
		}
	}
	t.pot += added
	s.Intent = intent
	s.Acted = true
	s.LastAction = d.Action

	t.publish(ActionAppliedEvent{
		HandID:    t.handID,
		Seat:      seatID,
		Phase:     prev,
		Action:    d.Action,
		Added:     added,
		BetTotal:  s.Bet,
		Pot:       t.pot,
		Intent:    intent,
		Reasoning: d.Reasoning,
		timestamp: t.now(),
	})

	if err := t.CheckConservation(); err != nil {
		return Result{}, err
	}
	if err := t.progress(true); err != nil {
		return Result{}, err
	}
	return t.result(prev), nil
}

// ForceFold folds an active seat out of turn, e.g. on disconnect or timeout.
func (t *Table) ForceFold(seatID int) (Result, error) {
	if t.halted != nil {
		return Result{}, t.halted
	}
	s, err := t.seat(seatID)
	if err != nil {
		return Result{}, err
	}
	d := Decision{Action: Fold}
	if !t.phase.Betting() {
		return Result{}, reject(seatID, d, ErrHandNotInProgress, "phase %s", t.phase)
	}
	if !s.CanAct() {
		return Result{}, reject(seatID, d, ErrIllegalAction, "seat is %s", s.Status)
	}

	prev := t.phase
	s.Status = Folded
	s.Intent = IntentNone
	s.Acted = true
	s.LastAction = Fold
	t.publish(ActionAppliedEvent{
		HandID:    t.handID,
		Seat:      seatID,
		Phase:     t.phase,
		Action:    Fold,
		BetTotal:  s.Bet,
		Pot:       t.pot,
		Forced:    true,
		timestamp: t.now(),
	})

	if err := t.CheckConservation(); err != nil {
		return Result{}, err
	}
	if err := t.progress(seatID == t.actor); err != nil {
		return Result{}, err
	}
	return t.result(prev), nil
}

func (t *Table) result(prev Phase) Result {
	r := Result{
		Phase:        t.phase,
		PhaseChanged: t.phase != prev,
		HandComplete: t.phase == Showdown,
	}
	if r.HandComplete && t.settlement != nil {
		st := *t.settlement
		r.Settlement = &st
	}
	return r
}

// reopen gives every other active seat another decision after a raise.
func (t *Table) reopen(raiser *Seat) {
	for _, s := range t.seats {
		if s != raiser && s.CanAct() {
			s.Acted = false
		}
	}
}

func (t *Table) needsAction(s *Seat) bool {
	return s.CanAct() && (!s.Acted || s.Bet < t.currentBet)
}

// roundComplete reports whether the current betting round is closed.
func (t *Table) roundComplete() bool {
	if t.countSeats(inHand) <= 1 {
		return true
	}
	active := 0
	var last *Seat
	for _, s := range t.seats {
		if s.CanAct() {
			active++
			last = s
		}
	}
	switch active {
	case 0:
		return true
	case 1:
		// Nobody left to bet against.
		return last.Bet >= t.currentBet
	}
	for _, s := range t.seats {
		if t.needsAction(s) {
			return false
		}
	}
	return true
}

// progress moves play on after a seat stopped acting. advance passes the turn
// when that seat was the actor.
func (t *Table) progress(advance bool) error {
	if t.countSeats(inHand) <= 1 {
		return t.awardFold()
	}
	if t.roundComplete() {
		return t.endRound()
	}
	if advance || !t.seats[t.actor].CanAct() {
		t.actor = t.nextSeat(t.actor, t.needsAction)
	}
	return nil
}

// endRound deals the next street, running the board out while nobody can
// bet, and goes to showdown after the river.
func (t *Table) endRound() error {
	for {
		if t.phase == River {
			return t.showdown()
		}
		for _, s := range t.seats {
			s.resetForRound()
		}
		t.currentBet = 0
		t.minRaise = t.bigBlind

		t.deck.Burn()
		n := 1
		if t.phase == Preflop {
			n = 3
		}
		dealt := t.deck.Deal(n)
		if dealt == nil {
			t.halted = fmt.Errorf("%w: deck exhausted", ErrInvariantBroken)
			return t.halted
		}
		t.board = append(t.board, dealt...)
		t.phase++
		t.actor = t.nextSeat(t.dealer, t.needsAction)

		t.publish(PhaseAdvancedEvent{
			HandID:    t.handID,
			Phase:     t.phase,
			Dealt:     dealt,
			Board:     slices.Clone(t.board),
			Pot:       t.pot,
			timestamp: t.now(),
		})

		if !t.roundComplete() {
			return nil
		}
	}
}

// awardFold gives the whole pot to the last seat in the hand.
func (t *Table) awardFold() error {
	winner := t.nextSeat(-1, inHand)
	st := &Settlement{Reason: ReasonFold, Pot: t.pot}
	if winner >= 0 {
		t.seats[winner].Chips += t.pot
		st.Payouts = []Payout{{Seat: winner, Amount: t.pot}}
		st.Pots = []Pot{{Amount: t.pot, Eligible: []int{winner}, Winners: []int{winner}}}
	}
	t.pot = 0
	return t.finish(st)
}

// showdown ranks the remaining seats and pays each pot.
func (t *Table) showdown() error {
	evals := make(map[int]poker.HandEvaluation)
	for _, s := range t.seats {
		if !s.InHand() {
			continue
		}
		ev, err := poker.Evaluate(s.Hole, t.board)
		if err != nil {
			t.halted = fmt.Errorf("%w: seat %d: %w", ErrInvariantBroken, s.ID, err)
			return t.halted
		}
		evals[s.ID] = ev
	}

	var pots []Pot
	if t.sidePots {
		pots = buildSidePots(t.seats, t.pot)
	} else {
		var eligible []int
		for _, s := range t.seats {
			if s.InHand() {
				eligible = append(eligible, s.ID)
			}
		}
		pots = []Pot{{Amount: t.pot, Eligible: eligible}}
	}

	won := make(map[int]int)
	for i := range pots {
		p := &pots[i]
		var best int64
		for _, id := range p.Eligible {
			if score := evals[id].Score; len(p.Winners) == 0 || score > best {
				best = score
				p.Winners = []int{id}
			} else if score == best {
				p.Winners = append(p.Winners, id)
			}
		}
		for id, amount := range splitPot(p.Amount, p.Winners) {
			won[id] += amount
		}
	}

	st := &Settlement{Reason: ReasonShowdown, Pot: t.pot, Evaluations: evals, Pots: pots}
	for _, s := range t.seats {
		amount, ok := won[s.ID]
		if !ok {
			continue
		}
		s.Chips += amount
		ev := evals[s.ID]
		st.Payouts = append(st.Payouts, Payout{Seat: s.ID, Amount: amount, Hand: &ev})
	}
	t.pot = 0
	return t.finish(st)
}

func (t *Table) finish(st *Settlement) error {
	t.phase = Showdown
	t.actor = -1
	t.currentBet = 0
	t.settlement = st

	stacks := make(map[int]int)
	for _, s := range t.seats {
		if !s.Left {
			stacks[s.ID] = s.Chips
		}
	}
	t.publish(HandEndedEvent{
		HandID:     t.handID,
		Settlement: *st,
		Board:      slices.Clone(t.board),
		Stacks:     stacks,
		timestamp:  t.now(),
	})
	return t.CheckConservation()
}
