package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/config"
	"github.com/lox/holdem/internal/host"
	"github.com/lox/holdem/internal/randutil"
)

const threeSeats = `
table "t" {
  big_blind = 20
  seed = 9
}
seat "alice" { human = true }
seat "bob" { difficulty = "easy" }
seat "carol" { personality = "maniac" }
`

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holdem.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(writeConfig(t, threeSeats), func(c *config.Config) { c.Table.Seed = 1 })
	require.NoError(t, err)
	assert.Equal(t, int64(1), cfg.Table.Seed)

	_, err = loadConfig(writeConfig(t, threeSeats), func(c *config.Config) { c.Seats = c.Seats[:1] })
	assert.ErrorContains(t, err, "seats")
}

func TestNewTableAssignsPolicies(t *testing.T) {
	t.Parallel()
	logger := log.NewWithOptions(io.Discard, log.Options{})

	cfg, err := loadConfig(writeConfig(t, threeSeats), nil)
	require.NoError(t, err)

	_, policies, err := newTable(cfg, randutil.New(1), false, logger)
	require.NoError(t, err)
	assert.Len(t, policies, 2)
	assert.NotContains(t, policies, 0)

	tbl, policies, err := newTable(cfg, randutil.New(1), true, logger)
	require.NoError(t, err)
	assert.Len(t, policies, 3)

	runner := host.New(tbl, host.Options{Logger: logger, Policies: policies})
	t.Cleanup(runner.Close)
	sum, err := runner.Simulate(context.Background(), 10)
	require.NoError(t, err)
	total := 0
	for _, chips := range sum.Stacks {
		total += chips
	}
	assert.Equal(t, 3*cfg.Table.StartingChips, total)
}
