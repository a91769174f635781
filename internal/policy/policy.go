// Package policy decides actions for seats without a human behind them.
//
// A Policy reads only a game.SeatView and always returns one of the view's
// legal actions. Three difficulties share one decision tree and differ in
// thresholds, noise and depth; a Personality shifts the thresholds; analytic
// mode replaces the tree with an expected value calculation.
package policy

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/lox/holdem/internal/game"
)

// Policy makes decisions for one seat. It is not safe for concurrent use.
type Policy struct {
	cfg  Config
	tier tier
	rng  *rand.Rand
}

// New creates a policy. All of its randomness comes from rng.
func New(cfg Config, rng *rand.Rand) (*Policy, error) {
	if rng == nil {
		return nil, fmt.Errorf("policy: rng is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	if cfg.Samples == 0 {
		cfg.Samples = DefaultSamples
	}
	t := tiers[cfg.Difficulty]
	if cfg.SlowPlay > 0 {
		t.slowPlay = cfg.SlowPlay
	}
	return &Policy{cfg: cfg, tier: t, rng: rng}, nil
}

// Config returns the policy's configuration
func (p *Policy) Config() Config { return p.cfg }

// ThinkDelay returns a random delay within the configured bounds.
func (p *Policy) ThinkDelay() time.Duration {
	spread := p.cfg.ThinkMax - p.cfg.ThinkMin
	if spread <= 0 {
		return p.cfg.ThinkMin
	}
	return p.cfg.ThinkMin + time.Duration(p.rng.Int64N(int64(spread)+1))
}

// Decide picks an action for the seat described by view. The result is always
// a member of view.Legal; with no legal actions it is a Fold.
func (p *Policy) Decide(view game.SeatView) game.Decision {
	if len(view.Legal) == 0 {
		return game.Decision{Action: game.Fold, Reasoning: "no legal actions"}
	}
	s := assess(view)
	if p.tier.sample && p.cfg.Samples > 0 && !s.preflop {
		if mc, err := Equity(context.Background(), view.Hole, view.Board, s.opponents, p.cfg.Samples, p.rng); err == nil {
			s.equity = 0.5*s.equity + 0.5*mc
		}
	}

	var d game.Decision
	if p.cfg.Analytic {
		d = p.analytic(s)
	} else {
		d = p.heuristic(s)
	}
	d = legalise(view, d)
	d.Reasoning = fmt.Sprintf("equity=%.2f odds=%.2f %s", s.equity, s.potOdds, d.Reasoning)
	return d
}

// analytic acts on expected value alone.
func (p *Policy) analytic(s situation) game.Decision {
	pot := float64(s.view.Pot)
	toCall := float64(s.toCall)
	evCall := s.equity*(pot+toCall) - toCall

	evRaise := math.Inf(-1)
	amount := 0
	if l, ok := game.FindLegal(s.view.Legal, game.Raise); ok {
		amount = raiseTo(l, s.view.Pot, 0.66)
		risk := float64(amount - s.view.Bet)
		foldEquity := 0.2 + 0.2*p.cfg.Personality.Aggression
		evRaise = foldEquity*pot + (1-foldEquity)*(s.equity*(pot+2*risk)-risk)
	}

	threshold := p.cfg.EVThreshold
	switch {
	case evRaise > threshold && evRaise >= evCall:
		return game.Decision{Action: game.Raise, Amount: amount, Reasoning: fmt.Sprintf("ev_raise=%.1f", evRaise)}
	case s.toCall == 0:
		return game.Decision{Action: game.Check, Reasoning: fmt.Sprintf("ev_raise=%.1f", evRaise)}
	case evCall > threshold:
		return game.Decision{Action: game.Call, Reasoning: fmt.Sprintf("ev_call=%.1f", evCall)}
	default:
		return game.Decision{Action: game.Fold, Reasoning: fmt.Sprintf("ev_call=%.1f", evCall)}
	}
}

// heuristic walks the shared decision tree.
func (p *Policy) heuristic(s situation) game.Decision {
	t := p.tier
	pers := p.cfg.Personality
	equity := clamp(s.equity + (p.rng.Float64()*2-1)*t.noise)

	if s.view.Intent == game.IntentCheckRaise && s.toCall > 0 {
		if l, ok := game.FindLegal(s.view.Legal, game.Raise); ok {
			return game.Decision{Action: game.Raise, Amount: raiseTo(l, s.view.Pot, t.sizes[2]), Reasoning: "check-raise"}
		}
	}

	if t.pushFoldSPR > 0 && s.spr <= t.pushFoldSPR && s.toCall > 0 {
		if equity >= 0.45+0.1*pers.FoldToPressure {
			return game.Decision{Action: game.AllIn, Reasoning: "push, low spr"}
		}
		return game.Decision{Action: game.Fold, Reasoning: "fold, low spr"}
	}

	if s.preflop {
		return p.preflop(s, equity)
	}

	foldBelow := t.foldBelow + (pers.FoldToPressure-0.5)*0.2*s.potOdds
	raiseAbove := t.raiseAbove - (pers.Aggression-0.5)*0.2

	switch {
	case equity < foldBelow:
		if s.toCall == 0 {
			if p.bluff(s) {
				return p.raise(s, t.sizes[1], "bluff")
			}
			return game.Decision{Action: game.Check, Reasoning: "weak"}
		}
		if p.bluff(s) {
			return p.raise(s, t.sizes[1], "bluff")
		}
		return game.Decision{Action: game.Fold, Reasoning: "weak"}

	case equity < t.callBelow:
		if s.toCall == 0 {
			return game.Decision{Action: game.Check, Reasoning: "marginal"}
		}
		if s.potOdds < equity || s.toCall <= s.view.BigBlind {
			return game.Decision{Action: game.Call, Reasoning: "pot odds"}
		}
		return game.Decision{Action: game.Fold, Reasoning: "price too high"}

	case equity < raiseAbove:
		if s.toCall == 0 {
			if s.draws.Outs >= 8 && p.rng.Float64() < pers.Aggression*0.4 {
				return p.raise(s, t.sizes[0], "semi-bluff")
			}
			return game.Decision{Action: game.Check, Reasoning: "medium"}
		}
		if s.potOdds < equity+0.1 {
			return game.Decision{Action: game.Call, Reasoning: "medium, pot odds"}
		}
		return game.Decision{Action: game.Fold, Reasoning: "medium, price too high"}
	}

	if t.slowPlay > 0 && equity > t.slowPlayAt && !(p.cfg.Difficulty == Hard && s.river) && p.rng.Float64() < t.slowPlay {
		if s.toCall == 0 {
			return game.Decision{Action: game.Check, Intent: game.IntentCheckRaise, Reasoning: "slow-play"}
		}
		return game.Decision{Action: game.Call, Intent: game.IntentCheckRaise, Reasoning: "slow-play"}
	}

	size := t.sizes[0]
	switch {
	case equity > 0.85:
		size = t.sizes[2]
	case equity > 0.7:
		size = t.sizes[1]
	}
	return p.raise(s, size, "value")
}

// preflop plays the starting-hand ranking against the personality's ranges.
func (p *Policy) preflop(s situation, strength float64) game.Decision {
	pers := p.cfg.Personality
	facingRaise := s.view.CurrentBet > s.view.BigBlind

	if strength >= 1-pers.RaiseRate {
		if p.tier.threeBet && facingRaise {
			if l, ok := game.FindLegal(s.view.Legal, game.Raise); ok {
				amount := min(max(3*s.view.CurrentBet, l.Min), l.Max)
				return game.Decision{Action: game.Raise, Amount: amount, Reasoning: "3-bet"}
			}
		}
		if l, ok := game.FindLegal(s.view.Legal, game.Raise); ok {
			amount := min(max(s.view.CurrentBet+2*s.view.BigBlind, l.Min), l.Max)
			return game.Decision{Action: game.Raise, Amount: amount, Reasoning: "open raise"}
		}
		return game.Decision{Action: game.Call, Reasoning: "premium"}
	}

	entry := 1 - pers.EntryRate
	if facingRaise {
		entry += (1 - entry) * pers.FoldToPressure * 0.5
	}
	if strength >= entry {
		if s.toCall == 0 {
			return game.Decision{Action: game.Check, Reasoning: "playable"}
		}
		return game.Decision{Action: game.Call, Reasoning: "playable"}
	}
	if s.toCall == 0 {
		return game.Decision{Action: game.Check, Reasoning: "free look"}
	}
	if p.bluff(s) {
		return p.raise(s, p.tier.sizes[0], "steal")
	}
	return game.Decision{Action: game.Fold, Reasoning: "outside range"}
}

// bluff rolls the bluff trigger. Late position, few opponents and the river
// make it more likely; early position never bluffs.
func (p *Policy) bluff(s situation) bool {
	if s.view.Position < 0.5 {
		return false
	}
	prob := p.cfg.Personality.BluffFrequency * p.tier.bluffScale * (0.5 + s.view.Position)
	if s.river {
		prob *= 1.5
	}
	if s.opponents <= 1 {
		prob *= 1.3
	}
	return p.rng.Float64() < prob
}

func (p *Policy) raise(s situation, fraction float64, why string) game.Decision {
	l, ok := game.FindLegal(s.view.Legal, game.Raise)
	if !ok {
		if s.toCall == 0 {
			return game.Decision{Action: game.Check, Reasoning: why + ", cannot raise"}
		}
		return game.Decision{Action: game.Call, Reasoning: why + ", cannot raise"}
	}
	return game.Decision{Action: game.Raise, Amount: raiseTo(l, s.view.Pot, fraction), Reasoning: why}
}

// raiseTo sizes a raise as the minimum plus a fraction of the pot.
func raiseTo(l game.LegalAction, pot int, fraction float64) int {
	amount := l.Min + int(math.Floor(float64(pot)*fraction))
	return min(max(amount, l.Min), l.Max)
}

// legalise maps d onto the legal set. A wanted call that the stack cannot
// cover becomes an all-in; otherwise the fallback order is check, call, fold.
func legalise(view game.SeatView, d game.Decision) game.Decision {
	if l, ok := game.FindLegal(view.Legal, d.Action); ok {
		if d.Action == game.Raise {
			d.Amount = min(max(d.Amount, l.Min), l.Max)
		}
		if d.Action != game.Check && d.Action != game.Call {
			d.Intent = game.IntentNone
		}
		return d
	}
	if d.Action == game.Call || d.Action == game.Raise {
		if l, ok := game.FindLegal(view.Legal, game.AllIn); ok && (d.Action == game.Call || l.Amount <= view.ToCall) {
			return game.Decision{Action: game.AllIn, Reasoning: d.Reasoning + ", all in"}
		}
	}
	for _, a := range []game.Action{game.Check, game.Call, game.Fold} {
		if _, ok := game.FindLegal(view.Legal, a); ok {
			return game.Decision{Action: a, Intent: intentFor(a, d.Intent), Reasoning: d.Reasoning + ", fallback"}
		}
	}
	return game.Decision{Action: view.Legal[0].Action, Reasoning: d.Reasoning + ", fallback"}
}

func intentFor(a game.Action, i game.Intent) game.Intent {
	if a == game.Check || a == game.Call {
		return i
	}
	return game.IntentNone
}
