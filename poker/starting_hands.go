package poker

// startingHands lists the 169 distinct starting hands from strongest to weakest.
// Pairs are written "AA", suited hands "AKs" and offsuit hands "AKo".
var startingHands = [169]string{
	"AA", "KK", "QQ", "AKs", "JJ", "AQs", "KQs", "AJs", "KJs", "TT", "AKo", "ATs", "QJs",
	"KTs", "QTs", "JTs", "99", "AQo", "A9s", "KQo", "88", "K9s", "T9s", "A8s", "Q9s", "J9s",
	"AJo", "A5s", "77", "A7s", "KJo", "A4s", "A3s", "A6s", "QJo", "66", "K8s", "T8s", "A2s",
	"98s", "J8s", "ATo", "Q8s", "K7s", "KTo", "55", "JTo", "87s", "QTo", "44", "22", "33",
	"K6s", "97s", "K5s", "76s", "T7s", "K4s", "K2s", "K3s", "Q7s", "86s", "65s", "J7s", "54s",
	"Q6s", "75s", "96s", "Q5s", "64s", "Q4s", "Q3s", "T9o", "T6s", "Q2s", "A9o", "53s", "85s",
	"J6s", "J9o", "K9o", "J5s", "Q9o", "43s", "74s", "J4s", "J3s", "95s", "J2s", "63s", "A8o",
	"52s", "T5s", "84s", "T4s", "T3s", "42s", "T2s", "98o", "T8o", "A5o", "A7o", "73s", "A4o",
	"32s", "94s", "93s", "J8o", "A3o", "62s", "92s", "K8o", "A6o", "87o", "Q8o", "83s", "A2o",
	"82s", "97o", "72s", "76o", "K7o", "65o", "T7o", "K6o", "86o", "54o", "K5o", "J7o", "75o",
	"Q7o", "K4o", "K3o", "96o", "K2o", "64o", "Q6o", "53o", "85o", "T6o", "Q5o", "43o", "Q4o",
	"Q3o", "74o", "Q2o", "J6o", "63o", "J5o", "95o", "52o", "J4o", "J3o", "42o", "J2o", "84o",
	"T5o", "T4o", "32o", "T3o", "73o", "T2o", "62o", "94o", "93o", "92o", "83o", "82o", "72o",
}

var startingHandIndex = func() map[string]int {
	idx := make(map[string]int, len(startingHands))
	for i, k := range startingHands {
		idx[k] = i
	}
	return idx
}()

// StartingHandKey returns the class name for two hole cards, e.g. "AKs", "72o" or "TT".
func StartingHandKey(a, b Card) string {
	hi, lo := a.Rank, b.Rank
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi == lo {
		return hi.String() + lo.String()
	}
	if a.Suit == b.Suit {
		return hi.String() + lo.String() + "s"
	}
	return hi.String() + lo.String() + "o"
}

// StartingHandStrength returns the normalised strength of a starting hand,
// 1.0 for AA down to 0.0 for 72o.
func StartingHandStrength(a, b Card) float64 {
	i, ok := startingHandIndex[StartingHandKey(a, b)]
	if !ok {
		return 0
	}
	return 1 - float64(i)/float64(len(startingHands)-1)
}
