package policy

import (
	"math"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

// opponentDecay discounts equity for every opponent beyond the first.
const opponentDecay = 0.85

// HandStrength estimates how good a hand is on a 0-1 scale. Preflop it is the
// starting hand's place in the 169-hand ranking; postflop it is the made
// hand's category with a kicker term.
func HandStrength(hole, board []poker.Card) float64 {
	if len(hole) != 2 {
		return 0
	}
	if len(board) == 0 {
		return poker.StartingHandStrength(hole[0], hole[1])
	}
	ev, err := poker.Evaluate(hole, board)
	if err != nil {
		return 0.2
	}
	strength := float64(ev.Category) / 10
	if len(ev.Ranks) > 0 {
		strength += float64(ev.Ranks[0]-poker.Two) / 12 * 0.08
	}
	return math.Min(1, strength)
}

// situation is everything the decision tree reads, computed once per call
type situation struct {
	view      game.SeatView
	strength  float64
	draws     Draws
	equity    float64
	potOdds   float64
	spr       float64
	toCall    int
	preflop   bool
	river     bool
	opponents int
}

func assess(view game.SeatView) situation {
	s := situation{
		view:      view,
		toCall:    view.ToCall,
		preflop:   len(view.Board) == 0,
		river:     len(view.Board) == 5,
		opponents: max(1, view.Opponents),
		strength:  HandStrength(view.Hole, view.Board),
		draws:     FindDraws(view.Hole, view.Board),
	}
	if view.ToCall > 0 {
		s.potOdds = float64(view.ToCall) / float64(view.Pot+view.ToCall)
	}
	if view.Pot > 0 {
		s.spr = float64(view.Chips) / float64(view.Pot)
	} else {
		s.spr = math.Inf(1)
	}

	equity := s.strength
	if !s.preflop {
		equity = s.strength + (1-s.strength)*s.draws.Potential
	}
	s.equity = clamp(equity * math.Pow(opponentDecay, float64(s.opponents-1)))
	return s
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
