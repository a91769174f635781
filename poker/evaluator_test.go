package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/randutil"
)

func mustEvaluate(t *testing.T, hole, board string) HandEvaluation {
	t.Helper()
	ev, err := Evaluate(MustParseCards(hole), MustParseCards(board))
	require.NoError(t, err)
	return ev
}

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		hole     string
		board    string
		category Category
		ranks    []Rank
	}{
		{"royal flush", "As Ks", "Qs Js Ts 2c 3d", RoyalFlush, []Rank{Ace}},
		{"straight flush", "9h 8h", "7h 6h 5h Ac Ad", StraightFlush, []Rank{Nine}},
		{"steel wheel", "Ad 2d", "3d 4d 5d Kc Qh", StraightFlush, []Rank{Five}},
		{"four of a kind", "7c 7d", "7h 7s Kd 2c 3c", FourOfAKind, []Rank{Seven, King}},
		{"full house", "Qc Qd", "Qh 4s 4d 9c 2c", FullHouse, []Rank{Queen, Four}},
		{"full house from two trips", "8c 8d", "8h 5s 5d 5c 2c", FullHouse, []Rank{Eight, Five}},
		{"flush", "Ah 9h", "6h 4h 2h Kc Kd", Flush, []Rank{Ace, Nine, Six, Four, Two}},
		{"straight", "Tc 9d", "8h 7s 6d 2c 2h", Straight, []Rank{Ten}},
		{"broadway", "Ac Kd", "Qh Js Td 2c 3h", Straight, []Rank{Ace}},
		{"wheel", "Ac 2d", "3h 4s 5d Kc 9h", Straight, []Rank{Five}},
		{"three of a kind", "Jc Jd", "Jh 9s 4d 2c 3h", ThreeOfAKind, []Rank{Jack, Nine, Four}},
		{"two pair", "Kc Kd", "4h 4s Ad 2c 3h", TwoPair, []Rank{King, Four, Ace}},
		{"three pairs keep best kicker", "Kc Kd", "4h 4s 2d 2c Qh", TwoPair, []Rank{King, Four, Queen}},
		{"one pair", "Ac Ad", "Kh 9s 7d 2c 3h", OnePair, []Rank{Ace, King, Nine, Seven}},
		{"high card", "Ac Jd", "9h 7s 5d 3c 2h", HighCard, []Rank{Ace, Jack, Nine, Seven, Five}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev := mustEvaluate(t, tt.hole, tt.board)
			assert.Equal(t, tt.category, ev.Category, ev.Describe())
			assert.Equal(t, tt.ranks, ev.Ranks)
			assert.Equal(t, score(tt.category, tt.ranks), ev.Score)
		})
	}
}

func TestScoreFormula(t *testing.T) {
	t.Parallel()
	ev := mustEvaluate(t, "Ac Kd", "9h 5s 3d")
	assert.Equal(t, HighCard, ev.Category)
	assert.Equal(t, int64(1_14_13_09_05_03), ev.Score)

	royal := mustEvaluate(t, "As Ks", "Qs Js Ts")
	assert.Equal(t, int64(10_14_00_00_00_00), royal.Score)
}

func TestRankingOrder(t *testing.T) {
	t.Parallel()

	t.Run("royal flush beats straight flush of another suit", func(t *testing.T) {
		t.Parallel()
		royal := mustEvaluate(t, "Ah Kh", "Qh Jh Th")
		sf := mustEvaluate(t, "Ks Qs", "Js Ts 9s")
		assert.Equal(t, 1, Compare(royal, sf))
	})

	t.Run("full house beats any flush", func(t *testing.T) {
		t.Parallel()
		boat := mustEvaluate(t, "2c 2d", "2h 3s 3d")
		flush := mustEvaluate(t, "As Ks", "Qs Js 9s")
		assert.Equal(t, 1, Compare(boat, flush))
	})

	t.Run("wheel is the lowest straight", func(t *testing.T) {
		t.Parallel()
		wheel := mustEvaluate(t, "Ac 2d", "3h 4s 5d")
		six := mustEvaluate(t, "2c 3d", "4h 5s 6d")
		assert.Equal(t, Five, wheel.Ranks[0])
		assert.Equal(t, -1, Compare(wheel, six))
		assert.Equal(t, Five, wheel.BestFive[0].Rank)
		assert.Equal(t, Ace, wheel.BestFive[4].Rank)
	})

	t.Run("pair of aces loses to seven high flush", func(t *testing.T) {
		t.Parallel()
		aces := mustEvaluate(t, "As Ah", "Kd Qc Jd")
		flush := mustEvaluate(t, "7c 5c", "4c 3c 2c")
		assert.Equal(t, Flush, flush.Category)
		assert.Equal(t, -1, Compare(aces, flush))
	})

	t.Run("kicker breaks pair tie", func(t *testing.T) {
		t.Parallel()
		board := "Ad 8c 5h 3s 2d"
		kingKicker := mustEvaluate(t, "Ac Kh", board)
		queenKicker := mustEvaluate(t, "As Qh", board)
		assert.Equal(t, 1, Compare(kingKicker, queenKicker))
	})

	t.Run("board plays gives a tie", func(t *testing.T) {
		t.Parallel()
		board := "Ac Kc Qd Jh Ts"
		a := mustEvaluate(t, "2c 3d", board)
		b := mustEvaluate(t, "4h 5s", board)
		assert.Equal(t, 0, Compare(a, b))
	})
}

func TestEvaluateOrderIndependent(t *testing.T) {
	t.Parallel()
	rng := randutil.New(99)
	for trial := 0; trial < 200; trial++ {
		d := NewDeck(rng)
		cards := d.Deal(7)

		want, err := EvaluateCards(cards)
		require.NoError(t, err)

		for p := 0; p < 5; p++ {
			shuffled := append([]Card(nil), cards...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			got, err := Evaluate(shuffled[:2], shuffled[2:])
			require.NoError(t, err)
			require.Equal(t, want, got, "cards %s", FormatCards(shuffled))
		}
	}
}

func TestEvaluateNotEnoughCards(t *testing.T) {
	t.Parallel()
	_, err := Evaluate(MustParseCards("As Kd"), MustParseCards("2c 3d"))
	require.ErrorIs(t, err, ErrNotEnoughCards)

	_, err = EvaluateCards(nil)
	require.ErrorIs(t, err, ErrNotEnoughCards)
}

func TestHeadsUpAcesOverKings(t *testing.T) {
	t.Parallel()
	board := "2d 7c 9s Jh 3c"
	aces := mustEvaluate(t, "As Ah", board)
	kings := mustEvaluate(t, "Kc Kd", board)

	assert.Equal(t, OnePair, aces.Category)
	assert.Equal(t, OnePair, kings.Category)
	assert.Equal(t, "One Pair, Aces", aces.Describe())
	assert.Equal(t, 1, Compare(aces, kings))
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Full House, Sixes full of Twos", mustEvaluate(t, "6c 6d", "6h 2s 2d").Describe())
	assert.Equal(t, "Two Pair, Kings and Fours", mustEvaluate(t, "Kc Kd", "4h 4s Ad").Describe())
	assert.Equal(t, "Straight, Five high", mustEvaluate(t, "Ac 2d", "3h 4s 5d").Describe())
	assert.Equal(t, "Royal Flush", mustEvaluate(t, "As Ks", "Qs Js Ts").Describe())
	assert.Equal(t, "Unknown", Category(0).String())
}

func BenchmarkEvaluateSeven(b *testing.B) {
	cards := MustParseCards("As Kd 9h 7c 5s 3d 2h")
	b.ReportAllocs()
	for b.Loop() {
		_, _ = EvaluateCards(cards)
	}
}

func TestEvaluateAll(t *testing.T) {
	t.Parallel()
	board := MustParseCards("2d 7c 9s Jh 3c")
	evals, err := EvaluateAll(board, MustParseCards("As Ah"), MustParseCards("Kc Kd"))
	require.NoError(t, err)
	require.Len(t, evals, 2)
	assert.Equal(t, 1, Compare(evals[0], evals[1]))

	_, err = EvaluateAll(board[:2], MustParseCards("As Ah"))
	require.ErrorIs(t, err, ErrNotEnoughCards)
}
