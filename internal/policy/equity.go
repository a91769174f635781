package policy

import (
	"context"
	"errors"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

// equityWorkers is fixed so a given rng always yields the same estimate.
const equityWorkers = 4

// ErrBadEquityInput is returned for impossible equity queries
var ErrBadEquityInput = errors.New("equity needs 2 hole cards, at most 5 board cards and at least 1 opponent")

// Equity estimates the share of the pot hole wins against opponents holding
// random hands, by dealing out the rest of the board samples times. Ties
// count as a fractional win. Workers run in parallel with seeds drawn from
// rng up front, so the estimate is reproducible.
func Equity(ctx context.Context, hole, board []poker.Card, opponents, samples int, rng *rand.Rand) (float64, error) {
	if len(hole) != 2 || len(board) > 5 || opponents < 1 || 2+len(board)+2*opponents+(5-len(board)) > 52 {
		return 0, ErrBadEquityInput
	}
	if samples <= 0 {
		return 0, nil
	}

	known := make(map[poker.Card]bool, 7)
	for _, c := range hole {
		known[c] = true
	}
	for _, c := range board {
		known[c] = true
	}
	var available []poker.Card
	for suit := poker.Spades; suit <= poker.Clubs; suit++ {
		for rank := poker.Two; rank <= poker.Ace; rank++ {
			if c := poker.NewCard(rank, suit); !known[c] {
				available = append(available, c)
			}
		}
	}

	workers := min(equityWorkers, samples)
	rngs := make([]*rand.Rand, workers)
	for i := range rngs {
		rngs[i] = randutil.Child(rng)
	}
	wins := make([]float64, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		n := samples / workers
		if w < samples%workers {
			n++
		}
		g.Go(func() error {
			won, err := runEquityWorker(ctx, hole, board, available, opponents, n, rngs[w])
			wins[w] = won
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0.0
	for _, w := range wins {
		total += w
	}
	return total / float64(samples), nil
}

func runEquityWorker(ctx context.Context, hole, board, available []poker.Card, opponents, samples int, rng *rand.Rand) (float64, error) {
	deck := make([]poker.Card, len(available))
	need := 2*opponents + 5 - len(board)
	full := make([]poker.Card, 5)
	copy(full, board)
	won := 0.0

	for i := 0; i < samples; i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		copy(deck, available)
		// Partial Fisher-Yates: the first need cards are a uniform draw.
		for j := 0; j < need; j++ {
			k := j + rng.IntN(len(deck)-j)
			deck[j], deck[k] = deck[k], deck[j]
		}
		copy(full[len(board):], deck[2*opponents:need])

		hero, err := poker.Evaluate(hole, full)
		if err != nil {
			return 0, err
		}
		best, ties := true, 0
		for o := 0; o < opponents; o++ {
			opp, err := poker.Evaluate(deck[2*o:2*o+2], full)
			if err != nil {
				return 0, err
			}
			switch poker.Compare(hero, opp) {
			case -1:
				best = false
			case 0:
				ties++
			}
			if !best {
				break
			}
		}
		if best {
			won += 1 / float64(ties+1)
		}
	}
	return won, nil
}
