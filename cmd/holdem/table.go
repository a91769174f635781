package main

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/config"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/randutil"
)

// loadConfig reads and validates path after applying overrides.
func loadConfig(path string, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newTable builds the table and a policy for every bot seat. With
// autopilot set, human seats get a policy too.
func newTable(cfg *config.Config, rng *rand.Rand, autopilot bool, logger *log.Logger) (*game.Table, map[int]*policy.Policy, error) {
	var opts []game.TableOption
	if cfg.Table.SidePots {
		opts = append(opts, game.WithSidePots())
	}
	tbl, err := game.NewTable(cfg.TableConfig(), randutil.Child(rng), opts...)
	if err != nil {
		return nil, nil, err
	}

	policies := make(map[int]*policy.Policy)
	for i, seat := range cfg.Seats {
		if seat.Human && !autopilot {
			continue
		}
		pc, err := cfg.PolicyConfig(i)
		if err != nil {
			return nil, nil, err
		}
		p, err := policy.New(pc, randutil.Child(rng))
		if err != nil {
			return nil, nil, err
		}
		policies[i] = p
		logger.Debug("Seat", "seat", i, "name", seat.Name, "difficulty", pc.Difficulty, "personality", pc.Personality.Name)
	}
	return tbl, policies, nil
}
