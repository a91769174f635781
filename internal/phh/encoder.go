package phh

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

// Encode writes hand as PHH TOML.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes hand and returns the result.
func EncodeToBytes(hand *HandHistory) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a PHH TOML document.
func Decode(r io.Reader) (*HandHistory, error) {
	var hand HandHistory
	if _, err := toml.NewDecoder(r).Decode(&hand); err != nil {
		return nil, fmt.Errorf("phh: %w", err)
	}
	return &hand, nil
}

// FormatAction renders one player action. player is the 1-based PHH player
// index; betTotal is the player's bet this round after the action and
// facing is the bet they faced. All-ins that do not exceed the bet they faced
// are calls.
func FormatAction(player int, action game.Action, betTotal, facing int) string {
	p := fmt.Sprintf("p%d", player)
	switch action {
	case game.Fold:
		return p + " f"
	case game.Check, game.Call:
		return p + " cc"
	case game.Raise:
		return fmt.Sprintf("%s cbr %d", p, betTotal)
	case game.AllIn:
		if betTotal > facing {
			return fmt.Sprintf("%s cbr %d", p, betTotal)
		}
		return p + " cc"
	default:
		return fmt.Sprintf("# %s %s", p, action)
	}
}

// cards renders cards without separators, e.g. "AhKd".
func cards(cs []poker.Card) string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteString(c.String())
	}
	return b.String()
}
