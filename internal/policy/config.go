package policy

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Difficulty selects how sophisticated the decision tree is
type Difficulty uint8

const (
	Easy Difficulty = iota
	Medium
	Hard
)

func (d Difficulty) String() string {
	if d > Hard {
		return "unknown"
	}
	return [...]string{"easy", "medium", "hard"}[d]
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium", "":
		return Medium, nil
	case "hard":
		return Hard, nil
	default:
		return Medium, fmt.Errorf("unknown difficulty %q", s)
	}
}

func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Difficulty) UnmarshalText(b []byte) error {
	parsed, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Personality is a set of sliders in [0, 1] that shift the thresholds every
// difficulty shares.
type Personality struct {
	Name           string  `json:"name"`
	EntryRate      float64 `json:"entry_rate"`       // share of starting hands played (VPIP)
	RaiseRate      float64 `json:"raise_rate"`       // share of starting hands raised (PFR)
	Aggression     float64 `json:"aggression"`       // lowers the raise threshold
	BluffFrequency float64 `json:"bluff_frequency"`  // base bluff probability
	FoldToPressure float64 `json:"fold_to_pressure"` // raises the fold threshold when facing bets
}

// Personality presets
var (
	Conservative = Personality{Name: "conservative", EntryRate: 0.15, RaiseRate: 0.10, Aggression: 0.3, BluffFrequency: 0.05, FoldToPressure: 0.7}
	Balanced     = Personality{Name: "balanced", EntryRate: 0.25, RaiseRate: 0.18, Aggression: 0.5, BluffFrequency: 0.15, FoldToPressure: 0.5}
	Aggressive   = Personality{Name: "aggressive", EntryRate: 0.35, RaiseRate: 0.28, Aggression: 0.7, BluffFrequency: 0.25, FoldToPressure: 0.3}
	Maniac       = Personality{Name: "maniac", EntryRate: 0.50, RaiseRate: 0.40, Aggression: 0.9, BluffFrequency: 0.40, FoldToPressure: 0.15}
)

// Personalities lists the presets in order of looseness.
func Personalities() []Personality {
	return []Personality{Conservative, Balanced, Aggressive, Maniac}
}

// ParsePersonality returns the preset with the given name.
func ParsePersonality(name string) (Personality, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Balanced, nil
	}
	for _, p := range Personalities() {
		if p.Name == name {
			return p, nil
		}
	}
	return Balanced, fmt.Errorf("unknown personality %q", name)
}

// Validate checks every slider is within [0, 1].
func (p Personality) Validate() error {
	var errs []error
	for name, v := range map[string]float64{
		"entry_rate":       p.EntryRate,
		"raise_rate":       p.RaiseRate,
		"aggression":       p.Aggression,
		"bluff_frequency":  p.BluffFrequency,
		"fold_to_pressure": p.FoldToPressure,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %g", name, v))
		}
	}
	if p.RaiseRate > p.EntryRate {
		errs = append(errs, fmt.Errorf("raise_rate %g exceeds entry_rate %g", p.RaiseRate, p.EntryRate))
	}
	return errors.Join(errs...)
}

// Config configures a Policy
type Config struct {
	Difficulty  Difficulty
	Personality Personality

	// Analytic replaces the heuristic tree with a pure expected value
	// calculation. The seat acts only when EV exceeds EVThreshold chips.
	Analytic    bool
	EVThreshold float64

	// SlowPlay overrides the tier's trap probability when positive.
	SlowPlay float64

	// Samples is the Monte Carlo sample count used by Hard. Zero uses the
	// default; negative disables sampling.
	Samples int

	ThinkMin time.Duration
	ThinkMax time.Duration
}

// DefaultSamples is the Monte Carlo sample count Hard uses by default
const DefaultSamples = 400

// DefaultConfig returns a medium, balanced opponent with the usual thinking delay.
func DefaultConfig() Config {
	return Config{
		Difficulty:  Medium,
		Personality: Balanced,
		ThinkMin:    1500 * time.Millisecond,
		ThinkMax:    3500 * time.Millisecond,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	var errs []error
	if c.Difficulty > Hard {
		errs = append(errs, fmt.Errorf("unknown difficulty %d", c.Difficulty))
	}
	if err := c.Personality.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.SlowPlay < 0 || c.SlowPlay > 1 {
		errs = append(errs, fmt.Errorf("slow_play must be within [0, 1], got %g", c.SlowPlay))
	}
	if c.ThinkMin < 0 || c.ThinkMax < c.ThinkMin {
		errs = append(errs, fmt.Errorf("think delay range %s-%s is invalid", c.ThinkMin, c.ThinkMax))
	}
	return errors.Join(errs...)
}

// tier holds the thresholds of one difficulty.
type tier struct {
	noise       float64 // equity is perturbed by up to ±noise
	foldBelow   float64
	callBelow   float64
	raiseAbove  float64
	pushFoldSPR float64 // stack-to-pot ratio at or below which play is push or fold; 0 disables
	slowPlayAt  float64
	slowPlay    float64
	bluffScale  float64
	sizes       [3]float64 // pot fractions for medium, strong and very strong raises
	threeBet    bool
	sample      bool
}

var tiers = [...]tier{
	Easy: {
		noise:      0.15,
		foldBelow:  0.2,
		callBelow:  0.5,
		raiseAbove: 0.6,
		bluffScale: 0.5,
		sizes:      [3]float64{0.2, 0.3, 0.3},
	},
	Medium: {
		foldBelow:  0.2,
		callBelow:  0.3,
		raiseAbove: 0.55,
		slowPlayAt: 0.8,
		slowPlay:   0.2,
		bluffScale: 1,
		sizes:      [3]float64{0.4, 0.4, 0.7},
	},
	Hard: {
		foldBelow:   0.15,
		callBelow:   0.35,
		raiseAbove:  0.6,
		pushFoldSPR: 2,
		slowPlayAt:  0.85,
		slowPlay:    0.25,
		bluffScale:  1.3,
		sizes:       [3]float64{0.4, 0.6, 0.8},
		threeBet:    true,
		sample:      true,
	},
}
