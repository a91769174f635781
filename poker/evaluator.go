package poker

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNotEnoughCards is returned when fewer than five cards are supplied for evaluation.
var ErrNotEnoughCards = errors.New("at least 5 cards are required to evaluate a hand")

// Category enumerates hand categories ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (c Category) String() string {
	if c < HighCard || c > RoyalFlush {
		return "Unknown"
	}
	return [...]string{
		"High Card", "One Pair", "Two Pair", "Three of a Kind", "Straight",
		"Flush", "Full House", "Four of a Kind", "Straight Flush", "Royal Flush",
	}[c-HighCard]
}

const (
	// rankRadix is the base each comparator rank occupies in a score.
	rankRadix = 100
	// categoryWeight sits above the five comparator digits so categories never overlap.
	categoryWeight int64 = rankRadix * rankRadix * rankRadix * rankRadix * rankRadix
)

// HandEvaluation is the result of evaluating a hand.
// Higher Score always means a stronger hand; equal scores tie.
type HandEvaluation struct {
	Category Category `json:"category"`
	Score    int64    `json:"score"`
	BestFive [5]Card  `json:"best_five"`
	Ranks    []Rank   `json:"ranks"` // comparator ranks, grouped ranks before kickers
}

// Describe returns a short human-readable description, e.g. "One Pair, Aces".
func (e HandEvaluation) Describe() string {
	if len(e.Ranks) == 0 {
		return e.Category.String()
	}
	switch e.Category {
	case OnePair, ThreeOfAKind, FourOfAKind:
		return fmt.Sprintf("%s, %s", e.Category, rankPlural(e.Ranks[0]))
	case TwoPair:
		return fmt.Sprintf("%s, %s and %s", e.Category, rankPlural(e.Ranks[0]), rankPlural(e.Ranks[1]))
	case FullHouse:
		return fmt.Sprintf("%s, %s full of %s", e.Category, rankPlural(e.Ranks[0]), rankPlural(e.Ranks[1]))
	case RoyalFlush:
		return e.Category.String()
	default:
		return fmt.Sprintf("%s, %s high", e.Category, rankName(e.Ranks[0]))
	}
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 on a tie.
func Compare(a, b HandEvaluation) int {
	switch {
	case a.Score > b.Score:
		return 1
	case a.Score < b.Score:
		return -1
	default:
		return 0
	}
}

// Evaluate returns the best five-card hand that can be made from the hole and
// community cards. Every five-card subset is scored; input order does not matter.
func Evaluate(hole, board []Card) (HandEvaluation, error) {
	all := make([]Card, 0, len(hole)+len(board))
	all = append(all, hole...)
	all = append(all, board...)
	return EvaluateCards(all)
}

// EvaluateCards is Evaluate over a single combined slice of at least five cards.
func EvaluateCards(cards []Card) (HandEvaluation, error) {
	if len(cards) < 5 {
		return HandEvaluation{}, fmt.Errorf("%w: got %d", ErrNotEnoughCards, len(cards))
	}

	sorted := slices.Clone(cards)
	slices.SortFunc(sorted, cardOrder)

	var (
		best  HandEvaluation
		found bool
		five  [5]Card
	)
	n := len(sorted)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						five = [5]Card{sorted[a], sorted[b], sorted[c], sorted[d], sorted[e]}
						ev := EvaluateFive(five)
						if !found || ev.Score > best.Score {
							best = ev
							found = true
						}
					}
				}
			}
		}
	}
	return best, nil
}

// EvaluateFive categorises and scores exactly five cards.
func EvaluateFive(cards [5]Card) HandEvaluation {
	hand := cards
	slices.SortFunc(hand[:], cardOrder)

	flush := true
	for _, c := range hand[1:] {
		if c.Suit != hand[0].Suit {
			flush = false
			break
		}
	}
	straightHigh := straightHighCard(hand)

	// Group ranks by multiplicity, larger groups first then higher rank.
	var counts [Ace + 1]int
	for _, c := range hand {
		counts[c.Rank]++
	}
	type group struct {
		rank  Rank
		count int
	}
	groups := make([]group, 0, 5)
	for r := Ace; r >= Two; r-- {
		if counts[r] > 0 {
			groups = append(groups, group{rank: r, count: counts[r]})
		}
	}
	slices.SortStableFunc(groups, func(a, b group) int { return b.count - a.count })

	ranksOf := func() []Rank {
		out := make([]Rank, len(groups))
		for i, g := range groups {
			out[i] = g.rank
		}
		return out
	}
	allRanks := []Rank{hand[0].Rank, hand[1].Rank, hand[2].Rank, hand[3].Rank, hand[4].Rank}

	var category Category
	var ranks []Rank
	switch {
	case flush && straightHigh == Ace:
		category, ranks = RoyalFlush, []Rank{Ace}
	case flush && straightHigh > 0:
		category, ranks = StraightFlush, []Rank{straightHigh}
	case groups[0].count == 4:
		category, ranks = FourOfAKind, ranksOf()
	case groups[0].count == 3 && groups[1].count == 2:
		category, ranks = FullHouse, ranksOf()
	case flush:
		category, ranks = Flush, allRanks
	case straightHigh > 0:
		category, ranks = Straight, []Rank{straightHigh}
	case groups[0].count == 3:
		category, ranks = ThreeOfAKind, ranksOf()
	case groups[0].count == 2 && groups[1].count == 2:
		category, ranks = TwoPair, ranksOf()
	case groups[0].count == 2:
		category, ranks = OnePair, ranksOf()
	default:
		category, ranks = HighCard, allRanks
	}

	best := hand
	if straightHigh == Five {
		// Present the wheel as 5-4-3-2-A.
		best = [5]Card{hand[1], hand[2], hand[3], hand[4], hand[0]}
	}

	return HandEvaluation{
		Category: category,
		Score:    score(category, ranks),
		BestFive: best,
		Ranks:    ranks,
	}
}

// score packs the category and up to five comparator ranks into one integer:
// category*100^5 + Σ rank[i]*100^(4-i).
func score(category Category, ranks []Rank) int64 {
	s := int64(category) * categoryWeight
	weight := categoryWeight / rankRadix
	for i := 0; i < len(ranks) && i < 5; i++ {
		s += int64(ranks[i]) * weight
		weight /= rankRadix
	}
	return s
}

// straightHighCard returns the high card of a straight in a rank-descending hand,
// Five for the wheel, or 0 when the hand is not a straight.
func straightHighCard(hand [5]Card) Rank {
	for i := 1; i < 5; i++ {
		if hand[i].Rank == hand[i-1].Rank {
			return 0
		}
	}
	if hand[0].Rank-hand[4].Rank == 4 {
		return hand[0].Rank
	}
	if hand[0].Rank == Ace && hand[1].Rank == Five && hand[4].Rank == Two {
		return Five
	}
	return 0
}

// cardOrder sorts by rank descending, then suit, giving a canonical order.
func cardOrder(a, b Card) int {
	if a.Rank != b.Rank {
		return int(b.Rank) - int(a.Rank)
	}
	return int(a.Suit) - int(b.Suit)
}

func rankName(r Rank) string {
	switch r {
	case Ace:
		return "Ace"
	case King:
		return "King"
	case Queen:
		return "Queen"
	case Jack:
		return "Jack"
	case Ten:
		return "Ten"
	case Nine:
		return "Nine"
	case Eight:
		return "Eight"
	case Seven:
		return "Seven"
	case Six:
		return "Six"
	case Five:
		return "Five"
	case Four:
		return "Four"
	case Three:
		return "Three"
	case Two:
		return "Two"
	default:
		return "?"
	}
}

func rankPlural(r Rank) string {
	if r == Six {
		return "Sixes"
	}
	return rankName(r) + "s"
}

// EvaluateAll evaluates each hole pair against a shared board.
func EvaluateAll(board []Card, holes ...[]Card) ([]HandEvaluation, error) {
	out := make([]HandEvaluation, len(holes))
	for i, hole := range holes {
		ev, err := Evaluate(hole, board)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i, err)
		}
		out[i] = ev
	}
	return out, nil
}
