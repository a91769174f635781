package game

import (
	"slices"

	"github.com/lox/holdem/poker"
)

// Settlement reasons
const (
	ReasonFold     = "fold"
	ReasonShowdown = "showdown"
)

// Pot is one layer of chips and the seats that can win it
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
	Winners  []int `json:"winners,omitempty"`
}

// Payout is the chips awarded to one seat
type Payout struct {
	Seat   int                   `json:"seat"`
	Amount int                   `json:"amount"`
	Hand   *poker.HandEvaluation `json:"hand,omitempty"`
}

// Settlement is the outcome of a finished hand.
type Settlement struct {
	Reason      string                       `json:"reason"`
	Pot         int                          `json:"pot"`
	Payouts     []Payout                     `json:"payouts"`
	Evaluations map[int]poker.HandEvaluation `json:"evaluations,omitempty"`
	Pots        []Pot                        `json:"pots"`
}

// Winners lists the seats that received chips, in seat order.
func (s Settlement) Winners() []int {
	out := make([]int, 0, len(s.Payouts))
	for _, p := range s.Payouts {
		out = append(out, p.Seat)
	}
	return out
}

// AmountFor returns the chips awarded to seat.
func (s Settlement) AmountFor(seat int) int {
	for _, p := range s.Payouts {
		if p.Seat == seat {
			return p.Amount
		}
	}
	return 0
}

// splitPot divides amount between winners. Each gets an equal floor share and
// the first winner (lowest seat) takes the remainder.
func splitPot(amount int, winners []int) map[int]int {
	out := make(map[int]int, len(winners))
	if len(winners) == 0 {
		return out
	}
	share := amount / len(winners)
	for _, w := range winners {
		out[w] = share
	}
	out[winners[0]] += amount - share*len(winners)
	return out
}

// buildSidePots layers the pot by each contender's total contribution. Chips
// put in by folded seats fill the layers they reach; anything above the top
// layer joins the last pot. Adjacent layers with the same contenders merge.
func buildSidePots(seats []*Seat, pot int) []Pot {
	var levels []int
	for _, s := range seats {
		if s.InHand() && !slices.Contains(levels, s.TotalBet) {
			levels = append(levels, s.TotalBet)
		}
	}
	slices.Sort(levels)

	var pots []Pot
	allocated := 0
	prev := 0
	for _, lvl := range levels {
		amount := 0
		for _, s := range seats {
			amount += min(s.TotalBet, lvl) - min(s.TotalBet, prev)
		}
		var eligible []int
		for _, s := range seats {
			if s.InHand() && s.TotalBet >= lvl {
				eligible = append(eligible, s.ID)
			}
		}
		prev = lvl
		allocated += amount
		if amount == 0 {
			continue
		}
		if n := len(pots); n > 0 && slices.Equal(pots[n-1].Eligible, eligible) {
			pots[n-1].Amount += amount
			continue
		}
		pots = append(pots, Pot{Amount: amount, Eligible: eligible})
	}

	if excess := pot - allocated; excess > 0 {
		if len(pots) == 0 {
			var eligible []int
			for _, s := range seats {
				if s.InHand() {
					eligible = append(eligible, s.ID)
				}
			}
			pots = append(pots, Pot{Eligible: eligible})
		}
		pots[len(pots)-1].Amount += excess
	}
	return pots
}
