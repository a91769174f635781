package display

import (
	"bytes"
	"io"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

func plain() *Renderer {
	return New(io.Discard, WithProfile(termenv.Ascii))
}

func TestCards(t *testing.T) {
	t.Parallel()

	d := plain()
	assert.Equal(t, "A♠ T♥", d.Cards(poker.MustParseCards("As Th")))
	assert.Equal(t, "--", d.Cards(nil))
}

func playHeadsUp(t *testing.T, w io.Writer, viewer int) *game.Table {
	t.Helper()
	deck, err := poker.NewStackedDeck(poker.MustParseCards("As Ah Ks Kh 2c 7d 8c 9h 3c 4d 5c Jh"))
	require.NoError(t, err)
	tbl, err := game.NewTable(game.TableConfig{
		SmallBlind: 10,
		BigBlind:   20,
		Seats:      []game.SeatConfig{{Name: "alice", Chips: 1000}, {Name: "bob", Chips: 1000}},
	}, randutil.New(1), game.WithDeck(deck), game.WithButton(0), game.WithHandIDs(func() string { return "h1" }))
	require.NoError(t, err)
	if w != nil {
		tbl.Bus().Subscribe(NewPrinter(w, plain(), viewer))
	}
	_, err = tbl.StartHand()
	require.NoError(t, err)
	_, err = tbl.ApplyAction(0, game.Decision{Action: game.Raise, Amount: 60})
	require.NoError(t, err)
	_, err = tbl.ApplyAction(1, game.Decision{Action: game.Call})
	require.NoError(t, err)
	for tbl.Phase().Betting() {
		_, err = tbl.ApplyAction(tbl.Actor(), game.Decision{Action: game.Check})
		require.NoError(t, err)
	}
	return tbl
}

func TestPrinter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		viewer  int
		want    []string
		notWant []string
	}{
		{
			name:   "spectator sees everything",
			viewer: -1,
			want:   []string{"alice: A♠ A♥", "bob: K♠ K♥"},
		},
		{
			name:    "player sees own cards",
			viewer:  1,
			want:    []string{"bob: K♠ K♥"},
			notWant: []string{"alice: A♠ A♥"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			playHeadsUp(t, &buf, tt.viewer)
			out := buf.String()

			for _, s := range append([]string{
				"Hand #1",
				"h1  dealer alice",
				"alice posts 10",
				"bob posts 20",
				"alice raises to 60  pot 80",
				"bob calls 40  pot 120",
				"FLOP 7♦ 8♣ 9♥  pot 120",
				"RIVER 7♦ 8♣ 9♥ 4♦ J♥",
				"alice shows",
				"alice wins 120 with One Pair, Aces",
			}, tt.want...) {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestTable(t *testing.T) {
	t.Parallel()

	d := plain()
	tbl, err := game.NewTable(game.TableConfig{
		SmallBlind: 10,
		BigBlind:   20,
		Seats:      []game.SeatConfig{{Name: "alice", Chips: 1000}, {Name: "bob", Chips: 1000}, {Name: "carol", Chips: 1000}},
	}, randutil.New(4), game.WithButton(0))
	require.NoError(t, err)
	_, err = tbl.StartHand()
	require.NoError(t, err)

	snap := tbl.Snapshot().Redact(0)
	out := d.Table(snap)
	assert.Contains(t, out, "Hand #1")
	assert.Contains(t, out, "PREFLOP")
	assert.Contains(t, out, "Pot: 30")
	assert.Contains(t, out, "> alice [D]")
	assert.Contains(t, out, "bob [SB]")
	assert.Contains(t, out, "bet 20")
	assert.Contains(t, out, d.Cards(snap.Seats[0].Hole))
	assert.Contains(t, out, "?? ??")

	done := playHeadsUp(t, nil, -1).Snapshot().Redact(-1)
	out = d.Table(done)
	assert.Contains(t, out, "SHOWDOWN")
	assert.Contains(t, out, "alice wins 120 with One Pair, Aces")
	assert.Contains(t, out, "A♠ A♥", "live hands are shown at showdown")
}
