package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lox/holdem/internal/display"
	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

// EvalCmd scores hole cards against a board
type EvalCmd struct {
	Hands     []string `arg:"" help:"Hole cards, e.g. 'As Kd'"`
	Board     string   `short:"b" help:"Board cards, e.g. 'Qs Jh Tc'"`
	Opponents int      `help:"Estimate equity of the first hand against this many random hands"`
	Samples   int      `help:"Monte Carlo samples for equity" default:"20000"`
	Seed      int64    `help:"RNG seed for equity"`
}

func (c *EvalCmd) Run() error {
	board, err := poker.ParseCards(c.Board)
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}

	holes := make([][]poker.Card, len(c.Hands))
	for i, h := range c.Hands {
		if holes[i], err = poker.ParseCards(h); err != nil {
			return fmt.Errorf("hand %q: %w", h, err)
		}
		if len(holes[i]) != 2 {
			return fmt.Errorf("hand %q: want 2 cards, got %d", h, len(holes[i]))
		}
	}

	d := display.New(os.Stdout)
	if len(board)+2 >= 5 {
		evals, err := poker.EvaluateAll(board, holes...)
		if err != nil {
			return err
		}
		best := 0
		for i, ev := range evals {
			if poker.Compare(ev, evals[best]) > 0 {
				best = i
			}
		}
		for i, ev := range evals {
			marker := " "
			if poker.Compare(ev, evals[best]) == 0 && len(evals) > 1 {
				marker = "*"
			}
			fmt.Printf("%s %s  %s  %s\n", marker, d.Cards(holes[i]), d.Cards(ev.BestFive[:]), ev.Describe())
		}
	} else {
		for _, hole := range holes {
			fmt.Printf("  %s  %s (%s)\n", d.Cards(hole), poker.CategorizeHoleCards(hole[0], hole[1]), poker.StartingHandKey(hole[0], hole[1]))
		}
	}

	if c.Opponents > 0 {
		rng := randutil.New(randutil.Seed(c.Seed))
		eq, err := policy.Equity(context.Background(), holes[0], board, c.Opponents, c.Samples, rng)
		if err != nil {
			return err
		}
		fmt.Printf("equity vs %d: %.1f%%\n", c.Opponents, eq*100)
	}
	return nil
}
