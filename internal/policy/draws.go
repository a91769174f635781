package policy

import (
	"slices"

	"github.com/lox/holdem/poker"
)

// Draws describes unmade flush and straight draws
type Draws struct {
	FlushDraw     bool // four to a flush
	BackdoorFlush bool // three to a flush on the flop
	OpenEnded     bool
	Gutshot       bool
	Outs          int
	// Potential approximates the chance of completing a draw by the river
	// with the rule of four and two; zero on the river.
	Potential float64
}

// FindDraws counts outs for the hand. Made flushes and straights are not draws.
func FindDraws(hole, board []poker.Card) Draws {
	var d Draws
	cards := make([]poker.Card, 0, len(hole)+len(board))
	cards = append(cards, hole...)
	cards = append(cards, board...)
	if len(board) < 3 || len(board) >= 5 {
		return d
	}

	var suits [4]int
	for _, c := range cards {
		suits[c.Suit]++
	}
	best := slices.Max(suits[:])
	switch {
	case best == 4:
		d.FlushDraw = true
		d.Outs += 9
	case best == 3 && len(board) == 3:
		d.BackdoorFlush = true
	}

	var present [poker.Ace + 1]bool
	for _, c := range cards {
		present[c.Rank] = true
		if c.Rank == poker.Ace {
			present[1] = true
		}
	}
	has := func(r int) bool { return r >= 1 && r <= int(poker.Ace) && present[r] }

	madeStraight := false
	completions := 0
	// A rank completes a straight when some 5-rank window then has all five ranks.
	for r := 1; r <= int(poker.Ace); r++ {
		if r == 1 {
			continue // the ace is counted at 14
		}
		if present[r] {
			continue
		}
		for low := max(1, r-4); low <= r && low+4 <= int(poker.Ace); low++ {
			complete := true
			for k := low; k < low+5; k++ {
				if k != r && !has(k) {
					complete = false
					break
				}
			}
			if complete {
				completions++
				break
			}
		}
	}
	for low := 1; low+4 <= int(poker.Ace); low++ {
		run := true
		for k := low; k < low+5; k++ {
			if !has(k) {
				run = false
				break
			}
		}
		if run {
			madeStraight = true
		}
	}
	if !madeStraight {
		switch {
		case completions >= 2:
			d.OpenEnded = true
			d.Outs += 8
		case completions == 1:
			d.Gutshot = true
			d.Outs += 4
		}
	}
	if d.FlushDraw && (d.OpenEnded || d.Gutshot) {
		// Straight cards of the flush suit are already counted.
		d.Outs -= 2
		if d.Gutshot {
			d.Outs++
		}
	}

	perCard := 0.02
	if len(board) == 3 {
		perCard = 0.04
	}
	d.Potential = min(1, float64(d.Outs)*perCard)
	if d.BackdoorFlush {
		d.Potential += 0.04
	}
	return d
}
