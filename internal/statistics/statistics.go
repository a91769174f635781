// Package statistics accumulates per-seat results from table events.
package statistics

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/lox/holdem/internal/game"
)

// HandResult is one seat's outcome for one hand
type HandResult struct {
	NetBB          float64 // big blinds won or lost
	Position       int     // seats after the dealer, 0 is the button
	WentToShowdown bool
	Voluntary      bool // put chips in preflop without being forced to
	Raised         bool // raised preflop
	FinalPot       int  // chips
	BigBlind       int
}

// Stats tracks a running set of results in big blinds
type Stats struct {
	Hands  int
	SumBB  float64
	SumBB2 float64 // sum of squares for variance

	ShowdownWins    int
	NonShowdownWins int
	ShowdownBB      float64
	NonShowdownBB   float64

	VPIP int
	PFR  int

	ByPosition [game.MaxSeats]PositionStats

	MaxPotBB float64
}

// PositionStats tracks results from one position
type PositionStats struct {
	Hands int
	SumBB float64
}

// Add incorporates a hand result
func (s *Stats) Add(r HandResult) {
	s.Hands++
	s.SumBB += r.NetBB
	s.SumBB2 += r.NetBB * r.NetBB

	if r.WentToShowdown {
		s.ShowdownBB += r.NetBB
		if r.NetBB > 0 {
			s.ShowdownWins++
		}
	} else {
		s.NonShowdownBB += r.NetBB
		if r.NetBB > 0 {
			s.NonShowdownWins++
		}
	}
	if r.Voluntary {
		s.VPIP++
	}
	if r.Raised {
		s.PFR++
	}
	if r.Position >= 0 && r.Position < len(s.ByPosition) {
		s.ByPosition[r.Position].Hands++
		s.ByPosition[r.Position].SumBB += r.NetBB
	}
	if r.BigBlind > 0 {
		s.MaxPotBB = max(s.MaxPotBB, float64(r.FinalPot)/float64(r.BigBlind))
	}
}

// Mean returns big blinds won per hand
func (s *Stats) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// BB100 returns big blinds won per hundred hands
func (s *Stats) BB100() float64 { return s.Mean() * 100 }

// Variance returns the sample variance
func (s *Stats) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation
func (s *Stats) StdDev() float64 {
	return math.Sqrt(max(s.Variance(), 0))
}

// StdError returns the standard error of the mean
func (s *Stats) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Stats) ConfidenceInterval95() (float64, float64) {
	margin := 1.96 * s.StdError()
	return s.Mean() - margin, s.Mean() + margin
}

// VPIPRate is the share of hands the seat voluntarily played
func (s *Stats) VPIPRate() float64 { return rate(s.VPIP, s.Hands) }

// PFRRate is the share of hands the seat raised preflop
func (s *Stats) PFRRate() float64 { return rate(s.PFR, s.Hands) }

// PositionMean returns big blinds per hand from position
func (s *Stats) PositionMean(position int) float64 {
	if position < 0 || position >= len(s.ByPosition) {
		return 0
	}
	ps := s.ByPosition[position]
	if ps.Hands == 0 {
		return 0
	}
	return ps.SumBB / float64(ps.Hands)
}

// Validate checks the buckets add up
func (s *Stats) Validate() error {
	if math.Abs(s.SumBB-s.ShowdownBB-s.NonShowdownBB) > 1e-6 {
		return fmt.Errorf("ledger mismatch: total=%.6f showdown=%.6f non-showdown=%.6f", s.SumBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("wins (%d) exceed hands (%d)", wins, s.Hands)
	}
	if s.PFR > s.VPIP {
		return fmt.Errorf("preflop raises (%d) exceed voluntary hands (%d)", s.PFR, s.VPIP)
	}
	positions := 0
	for _, ps := range s.ByPosition {
		positions += ps.Hands
	}
	if positions != s.Hands {
		return fmt.Errorf("position hands (%d) do not match hands (%d)", positions, s.Hands)
	}
	return nil
}

func rate(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Collector is an event subscriber that turns finished hands into
// per-seat Stats.
type Collector struct {
	mu    sync.Mutex
	seats map[int]*Stats
	hand  *handState
}

type handState struct {
	id       string
	bigBlind int
	start    map[int]int
	position map[int]int
	vpip     map[int]bool
	pfr      map[int]bool
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{seats: make(map[int]*Stats)}
}

func (c *Collector) OnEvent(e game.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := e.(type) {
	case game.HandStartedEvent:
		c.hand = newHandState(ev)
	case game.ActionAppliedEvent:
		h := c.hand
		if h == nil || h.id != ev.HandID || ev.Phase != game.Preflop || ev.Forced {
			return
		}
		switch ev.Action {
		case game.Call:
			h.vpip[ev.Seat] = true
		case game.Raise, game.AllIn:
			h.vpip[ev.Seat] = true
			h.pfr[ev.Seat] = true
		}
	case game.HandEndedEvent:
		h := c.hand
		if h == nil || h.id != ev.HandID {
			return
		}
		c.hand = nil
		for seat, before := range h.start {
			_, shown := ev.Settlement.Evaluations[seat]
			st := c.seats[seat]
			if st == nil {
				st = &Stats{}
				c.seats[seat] = st
			}
			st.Add(HandResult{
				NetBB:          float64(ev.Stacks[seat]-before) / float64(h.bigBlind),
				Position:       h.position[seat],
				WentToShowdown: ev.Settlement.Reason == game.ReasonShowdown && shown,
				Voluntary:      h.vpip[seat],
				Raised:         h.pfr[seat],
				FinalPot:       ev.Settlement.Pot,
				BigBlind:       h.bigBlind,
			})
		}
	}
}

func newHandState(ev game.HandStartedEvent) *handState {
	h := &handState{
		id:       ev.HandID,
		bigBlind: max(ev.BigBlind, 1),
		start:    ev.Stacks,
		position: make(map[int]int, len(ev.Stacks)),
		vpip:     make(map[int]bool),
		pfr:      make(map[int]bool),
	}
	seats := make([]int, 0, len(ev.Stacks))
	for seat := range ev.Stacks {
		seats = append(seats, seat)
	}
	slices.Sort(seats)
	dealer := slices.Index(seats, ev.Dealer)
	for i, seat := range seats {
		h.position[seat] = (i - dealer + len(seats)) % len(seats)
	}
	return h
}

// Seats returns a copy of the stats for every seat that has played a hand.
func (c *Collector) Seats() map[int]Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]Stats, len(c.seats))
	for seat, st := range c.seats {
		out[seat] = *st
	}
	return out
}
