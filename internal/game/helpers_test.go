package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

var testNames = []string{"alice", "bob", "carol", "dave", "erin", "frank"}

func testConfig(small, big int, chips ...int) TableConfig {
	cfg := TableConfig{SmallBlind: small, BigBlind: big}
	for i, c := range chips {
		cfg.Seats = append(cfg.Seats, SeatConfig{Name: testNames[i], Chips: c})
	}
	return cfg
}

func newTestTable(t *testing.T, cfg TableConfig, opts ...TableOption) *Table {
	t.Helper()
	tbl, err := NewTable(cfg, randutil.New(42), opts...)
	require.NoError(t, err)
	return tbl
}

// stackedTable deals cards in the given order: two hole cards per seat in seat
// order, then burn, flop, burn, turn, burn, river.
func stackedTable(t *testing.T, cfg TableConfig, cards string, opts ...TableOption) *Table {
	t.Helper()
	deck, err := poker.NewStackedDeck(poker.MustParseCards(cards))
	require.NoError(t, err)
	opts = append([]TableOption{WithDeck(deck), WithButton(0)}, opts...)
	return newTestTable(t, cfg, opts...)
}

func act(t *testing.T, tbl *Table, a Action, amount ...int) Result {
	t.Helper()
	d := Decision{Action: a}
	if len(amount) > 0 {
		d.Amount = amount[0]
	}
	res, err := tbl.ApplyAction(tbl.Actor(), d)
	require.NoError(t, err, "seat %d %s", tbl.Actor(), a)
	return res
}

// checkDown checks or calls until the hand ends.
func checkDown(t *testing.T, tbl *Table) Result {
	t.Helper()
	var res Result
	for tbl.Phase().Betting() {
		legal, err := tbl.LegalActions(tbl.Actor())
		require.NoError(t, err)
		if _, ok := FindLegal(legal, Check); ok {
			res = act(t, tbl, Check)
		} else {
			res = act(t, tbl, Call)
		}
	}
	return res
}
