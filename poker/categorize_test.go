package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeHoleCards(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		cards    string
		expected HoleCardCategory
	}{
		{"pocket aces", "As Ah", CategoryPremium},
		{"ace king suited", "As Ks", CategoryPremium},
		{"pocket jacks", "Jh Jd", CategoryPremium},
		{"ace king offsuit", "Ac Kh", CategoryStrong},
		{"pocket tens", "Tc Th", CategoryStrong},
		{"king ten suited", "Ks Ts", CategoryStrong},
		{"suited connectors", "Ts 9s", CategoryMedium},
		{"pocket sevens", "7h 7c", CategoryMedium},
		{"king jack offsuit", "Kd Jc", CategoryMedium},
		{"pocket deuces", "2c 2d", CategoryWeak},
		{"suited king small", "Ks 4s", CategoryWeak},
		{"seven deuce", "7c 2h", CategoryTrash},
		{"offsuit junk", "9d 3c", CategoryTrash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cards := MustParseCards(tt.cards)
			assert.Equal(t, tt.expected, CategorizeHoleCards(cards[0], cards[1]))
			assert.Equal(t, tt.expected, CategorizeHoleCards(cards[1], cards[0]), "order must not matter")
		})
	}
}

func TestCategorizeHoleCardsInvalid(t *testing.T) {
	t.Parallel()
	as := NewCard(Ace, Spades)
	assert.Equal(t, CategoryUnknown, CategorizeHoleCards(as, as))
	assert.Equal(t, CategoryUnknown, CategorizeHoleCards(as, Card{}))
}
