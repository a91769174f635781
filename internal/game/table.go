package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/lox/holdem/internal/handid"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

// MaxSeats is the largest table supported
const MaxSeats = 10

// Phase is the table's position in the hand lifecycle
type Phase uint8

const (
	Waiting Phase = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

func (p Phase) String() string {
	if p > Showdown {
		return "unknown"
	}
	return [...]string{"waiting", "preflop", "flop", "turn", "river", "showdown"}[p]
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	for candidate := Waiting; candidate <= Showdown; candidate++ {
		if candidate.String() == string(b) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Betting reports whether actions are accepted in this phase.
func (p Phase) Betting() bool {
	return p >= Preflop && p <= River
}

// SeatConfig describes a seat at table creation
type SeatConfig struct {
	Name  string
	Chips int
	Human bool
}

// TableConfig holds the fixed parameters of a table
type TableConfig struct {
	SmallBlind int
	BigBlind   int
	Seats      []SeatConfig
}

// Validate checks blinds and seats
func (c TableConfig) Validate() error {
	var errs []error
	if c.BigBlind <= 0 {
		errs = append(errs, fmt.Errorf("big blind must be positive, got %d", c.BigBlind))
	}
	if c.SmallBlind < 0 || c.SmallBlind > c.BigBlind {
		errs = append(errs, fmt.Errorf("small blind must be between 0 and the big blind, got %d", c.SmallBlind))
	}
	if len(c.Seats) > MaxSeats {
		errs = append(errs, fmt.Errorf("at most %d seats, got %d", MaxSeats, len(c.Seats)))
	}
	for i, s := range c.Seats {
		if s.Chips < 0 {
			errs = append(errs, fmt.Errorf("seat %d has negative chips", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Table is the betting engine for one table. It is not safe for concurrent
// use; a host serialises access.
type Table struct {
	smallBlind int
	bigBlind   int

	rng   *rand.Rand
	deck  *poker.Deck
	seats []*Seat

	phase      Phase
	board      []poker.Card
	pot        int
	currentBet int
	minRaise   int
	dealer     int
	actor      int
	handNumber int
	handID     string
	issued     int
	halted     error

	sidePots   bool
	bus        EventBus
	nextHandID func() string
	now        func() time.Time
	settlement *Settlement
}

// TableOption configures a Table during creation.
type TableOption func(*Table)

// WithDeck uses a specific deck. A stacked deck deals the same cards every hand.
func WithDeck(deck *poker.Deck) TableOption {
	return func(t *Table) { t.deck = deck }
}

// WithButton makes seat be the dealer on the first hand.
func WithButton(seat int) TableOption {
	return func(t *Table) { t.dealer = seat - 1 }
}

// WithSidePots settles all-in hands with layered side pots instead of a single pot.
func WithSidePots() TableOption {
	return func(t *Table) { t.sidePots = true }
}

// WithEventBus publishes table events to bus.
func WithEventBus(bus EventBus) TableOption {
	return func(t *Table) { t.bus = bus }
}

// WithHandIDs overrides hand ID generation.
func WithHandIDs(next func() string) TableOption {
	return func(t *Table) { t.nextHandID = next }
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) TableOption {
	return func(t *Table) { t.now = now }
}

// NewTable creates a table. The rng drives shuffling and default hand IDs so
// identical seeds replay identical hands.
//
//	rng := randutil.New(42)
//	t, err := game.NewTable(game.TableConfig{
//	    SmallBlind: 10, BigBlind: 20,
//	    Seats: []game.SeatConfig{{Name: "alice", Chips: 1000}, {Name: "bob", Chips: 1000}},
//	}, rng, game.WithButton(0))
func NewTable(cfg TableConfig, rng *rand.Rand, opts ...TableOption) (*Table, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: rng is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Table{
		smallBlind: cfg.SmallBlind,
		bigBlind:   cfg.BigBlind,
		rng:        rng,
		actor:      -1,
		minRaise:   cfg.BigBlind,
		now:        time.Now,
	}
	for i, sc := range cfg.Seats {
		name := sc.Name
		if name == "" {
			name = fmt.Sprintf("seat%d", i+1)
		}
		t.seats = append(t.seats, &Seat{ID: i, Name: name, Human: sc.Human, Chips: sc.Chips, Status: Out})
		t.issued += sc.Chips
	}
	if len(t.seats) > 0 {
		t.dealer = rng.IntN(len(t.seats)) - 1
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.deck == nil {
		t.deck = poker.NewDeck(randutil.Child(rng))
	}
	if t.nextHandID == nil {
		t.nextHandID = handid.NewGenerator(randutil.Child(rng)).Next
	}
	if t.bus == nil {
		t.bus = NewEventBus()
	}
	if n := len(t.seats); n > 0 {
		t.dealer = ((t.dealer % n) + n) % n
	}
	return t, nil
}

// Bus returns the table's event bus.
func (t *Table) Bus() EventBus { return t.bus }

// Phase returns the current phase.
func (t *Table) Phase() Phase { return t.phase }

// Actor returns the seat whose turn it is, or -1.
func (t *Table) Actor() int {
	if !t.phase.Betting() {
		return -1
	}
	return t.actor
}

// HandID returns the current (or last) hand's ID.
func (t *Table) HandID() string { return t.handID }

// BigBlind returns the big blind amount.
func (t *Table) BigBlind() int { return t.bigBlind }

// Halted returns the error that halted the table, if any.
func (t *Table) Halted() error { return t.halted }

// SeatCount returns the number of seats including those that left.
func (t *Table) SeatCount() int { return len(t.seats) }

// Seat returns a copy of a seat.
func (t *Table) Seat(id int) (Seat, error) {
	s, err := t.seat(id)
	if err != nil {
		return Seat{}, err
	}
	cp := *s
	cp.Hole = append([]poker.Card(nil), s.Hole...)
	return cp, nil
}

// LastSettlement returns the result of the most recent completed hand.
func (t *Table) LastSettlement() (Settlement, bool) {
	if t.settlement == nil {
		return Settlement{}, false
	}
	return *t.settlement, true
}

// FundedSeats counts seats that would be dealt into the next hand.
func (t *Table) FundedSeats() int {
	n := 0
	for _, s := range t.seats {
		if s.Chips > 0 && !s.Left {
			n++
		}
	}
	return n
}

// AddSeat seats a new player between hands.
func (t *Table) AddSeat(cfg SeatConfig) (int, error) {
	if t.halted != nil {
		return -1, t.halted
	}
	if t.phase.Betting() {
		return -1, ErrHandInProgress
	}
	if len(t.seats) >= MaxSeats {
		return -1, fmt.Errorf("%w: table is full", ErrInvalidConfig)
	}
	if cfg.Chips < 0 {
		return -1, fmt.Errorf("%w: negative chips", ErrInvalidConfig)
	}
	id := len(t.seats)
	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("seat%d", id+1)
	}
	t.seats = append(t.seats, &Seat{ID: id, Name: name, Human: cfg.Human, Chips: cfg.Chips, Status: Out})
	t.issued += cfg.Chips
	return id, nil
}

// RemoveSeat cashes a seat out between hands. The seat keeps its ID but is
// never dealt in again; its chips leave the table.
func (t *Table) RemoveSeat(id int) (int, error) {
	if t.halted != nil {
		return 0, t.halted
	}
	if t.phase.Betting() {
		return 0, ErrHandInProgress
	}
	s, err := t.seat(id)
	if err != nil {
		return 0, err
	}
	chips := s.Chips
	t.issued -= chips
	s.Chips = 0
	s.Left = true
	s.Status = Out
	return chips, nil
}

func (t *Table) seat(id int) (*Seat, error) {
	if id < 0 || id >= len(t.seats) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeat, id)
	}
	return t.seats[id], nil
}

// CheckConservation verifies that chips on the table equal chips issued.
// A failure halts the table.
func (t *Table) CheckConservation() error {
	if t.halted != nil {
		return t.halted
	}
	total := t.pot
	for _, s := range t.seats {
		if s.Chips < 0 {
			t.halted = fmt.Errorf("%w: seat %d has %d chips", ErrInvariantBroken, s.ID, s.Chips)
			return t.halted
		}
		total += s.Chips
	}
	if total != t.issued {
		t.halted = fmt.Errorf("%w: %d chips on table, %d issued", ErrInvariantBroken, total, t.issued)
		return t.halted
	}
	return nil
}

func (t *Table) publish(e Event) {
	if t.bus != nil {
		t.bus.Publish(e)
	}
}

// nextSeat returns the first seat after from (exclusive, wrapping) matching ok, or -1.
func (t *Table) nextSeat(from int, ok func(*Seat) bool) int {
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		idx := ((from+i)%n + n) % n
		if ok(t.seats[idx]) {
			return idx
		}
	}
	return -1
}

func (t *Table) countSeats(ok func(*Seat) bool) int {
	n := 0
	for _, s := range t.seats {
		if ok(s) {
			n++
		}
	}
	return n
}

func dealtIn(s *Seat) bool { return s.Status != Out }
func inHand(s *Seat) bool  { return s.InHand() }
