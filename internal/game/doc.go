// Package game implements the Texas Hold'em betting engine.
//
// The main type is Table, which owns every seat, the deck, the board and the
// pot. All state changes go through a handful of methods so the same table
// behaves identically whether a local loop or a server drives it.
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	t, _ := game.NewTable(game.TableConfig{
//	    SmallBlind: 10,
//	    BigBlind:   20,
//	    Seats:      []game.SeatConfig{{Name: "alice", Chips: 1000}, {Name: "bob", Chips: 1000}},
//	}, rng)
//	t.StartHand()
//	legal, _ := t.LegalActions(t.Actor())
//	res, err := t.ApplyAction(t.Actor(), game.Decision{Action: game.Call})
//	if res.HandComplete {
//	    fmt.Println(res.Settlement.Winners())
//	}
//
// # Deterministic Testing
//
// A table never reads global randomness. The same seed deals the same cards
// and generates the same hand IDs. For complete control stack the deck:
//
//	deck, _ := poker.NewStackedDeck(poker.MustParseCards("As Ah Kc Kd"))
//	t, _ := game.NewTable(cfg, rng, game.WithDeck(deck), game.WithButton(0))
//
// # Pots
//
// By default the whole pot goes to the best hand among the seats still in,
// split evenly with the odd chips going to the lowest seat. WithSidePots
// layers the pot by contribution instead.
//
// # Invariants
//
// Chips are conserved: seat stacks plus the pot always equal the chips
// issued. The table checks this after every mutation and halts with
// ErrInvariantBroken on failure.
package game
