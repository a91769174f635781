package poker

import (
	"fmt"
	"math/rand/v2"
)

// Deck represents a standard 52-card deck
type Deck struct {
	cards [52]Card
	next  int
	rng   *rand.Rand
}

// NewDeck creates a new shuffled deck. The rng drives every shuffle so
// identical seeds deal identical hands.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.fill()
	d.Shuffle()
	return d
}

// NewStackedDeck creates a deck whose first cards are dealt in the given order.
// Remaining cards follow in a fixed order. Shuffle must not be called on a stacked
// deck when the order matters.
func NewStackedDeck(top []Card) (*Deck, error) {
	d := &Deck{}
	if err := d.Stack(top); err != nil {
		return nil, err
	}
	return d, nil
}

// Stack rewinds the deck so the given cards are dealt first, in order, followed
// by the rest of the deck in a fixed order. The deck's rng is kept, so the next
// Shuffle randomises again.
func (d *Deck) Stack(top []Card) error {
	var cards [52]Card
	seen := make(map[Card]bool, len(top))
	i := 0
	for _, c := range top {
		if !c.Valid() {
			return fmt.Errorf("invalid card %v in stacked deck", c)
		}
		if seen[c] {
			return fmt.Errorf("duplicate card %s in stacked deck", c)
		}
		seen[c] = true
		cards[i] = c
		i++
	}
	for _, c := range fullDeck() {
		if !seen[c] {
			cards[i] = c
			i++
		}
	}
	d.cards = cards
	d.next = 0
	return nil
}

func fullDeck() [52]Card {
	var cards [52]Card
	i := 0
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards[i] = NewCard(rank, suit)
			i++
		}
	}
	return cards
}

func (d *Deck) fill() {
	d.cards = fullDeck()
	d.next = 0
}

// Shuffle restores all 52 cards and shuffles them using Fisher-Yates.
// A deck without an rng (stacked) is only rewound.
func (d *Deck) Shuffle() {
	d.next = 0
	if d.rng == nil {
		return
	}
	d.cards = fullDeck()
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck, nil if not enough remain
func (d *Deck) Deal(n int) []Card {
	if n < 0 || d.next+n > len(d.cards) {
		return nil
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards
}

// DealOne deals a single card from the deck
func (d *Deck) DealOne() (Card, bool) {
	if d.next >= len(d.cards) {
		return Card{}, false
	}
	card := d.cards[d.next]
	d.next++
	return card, true
}

// Burn discards the top card
func (d *Deck) Burn() {
	if d.next < len(d.cards) {
		d.next++
	}
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}

// Remaining returns a copy of the undealt cards
func (d *Deck) Remaining() []Card {
	out := make([]Card, len(d.cards)-d.next)
	copy(out, d.cards[d.next:])
	return out
}

