package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/policy"
)

const sample = `
server {
  port = 9090
  log_level = "debug"
  history_dir = "hands"
}

table "main" {
  small_blind = 10
  big_blind = 20
  starting_chips = 1000
  seed = 42
  side_pots = true
  action_timeout_ms = 30000
}

seat "alice" {
  human = true
}

seat "bob" {
  difficulty = "hard"
  personality = "aggressive"
  think_min_ms = 100
  think_max_ms = 200
}

seat "carol" {
  analytic = true
  ev_threshold = 5
  chips = 500
}
`

func TestParse(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(sample), "sample.hcl")
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "localhost:9090", c.Address())
	assert.Equal(t, "hands", c.Server.HistoryDir)
	assert.Equal(t, "main", c.Table.Name)
	assert.Equal(t, int64(42), c.Table.Seed)
	assert.True(t, c.Table.SidePots)
	assert.Equal(t, 30*time.Second, c.ActionTimeout())
	assert.Zero(t, c.NextHandDelay())

	tc := c.TableConfig()
	assert.Equal(t, 10, tc.SmallBlind)
	assert.Equal(t, 20, tc.BigBlind)
	require.Len(t, tc.Seats, 3)
	assert.True(t, tc.Seats[0].Human)
	assert.Equal(t, 1000, tc.Seats[1].Chips)
	assert.Equal(t, 500, tc.Seats[2].Chips)

	bob, err := c.PolicyConfig(1)
	require.NoError(t, err)
	assert.Equal(t, policy.Hard, bob.Difficulty)
	assert.Equal(t, policy.Aggressive, bob.Personality)
	assert.Equal(t, 100*time.Millisecond, bob.ThinkMin)
	assert.Equal(t, 200*time.Millisecond, bob.ThinkMax)

	carol, err := c.PolicyConfig(2)
	require.NoError(t, err)
	assert.Equal(t, policy.Medium, carol.Difficulty)
	assert.Equal(t, policy.Balanced, carol.Personality)
	assert.True(t, carol.Analytic)
	assert.Equal(t, 5.0, carol.EVThreshold)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	c, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, Default(), c)
	assert.Equal(t, 10, c.Table.SmallBlind)
	assert.Equal(t, 1000, c.Seats[0].Chips)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "holdem.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Seats, 3)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{name: "syntax", src: `table "main" {`},
		{name: "unknown attribute", src: `table "main" { colour = "red" }`},
		{name: "wrong type", src: `table "main" { big_blind = "lots" }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "one seat",
			src:     `seat "a" { human = true }`,
			wantErr: "between 2 and 10 seats",
		},
		{
			name:    "small blind above big blind",
			src:     `table "t" { small_blind = 50 big_blind = 20 }` + "\n" + `seat "a" {}` + "\n" + `seat "b" {}`,
			wantErr: "small blind",
		},
		{
			name:    "unknown difficulty",
			src:     `seat "a" { difficulty = "grandmaster" }` + "\n" + `seat "b" {}`,
			wantErr: "unknown difficulty",
		},
		{
			name:    "unknown personality",
			src:     `seat "a" { personality = "shy" }` + "\n" + `seat "b" {}`,
			wantErr: "unknown personality",
		},
		{
			name:    "duplicate names",
			src:     `seat "a" {}` + "\n" + `seat "a" {}`,
			wantErr: "duplicate name",
		},
		{
			name:    "bad log level",
			src:     `server { log_level = "loud" }` + "\n" + `seat "a" {}` + "\n" + `seat "b" {}`,
			wantErr: "loud",
		},
		{
			name:    "slow play out of range",
			src:     `seat "a" { slow_play = 2 }` + "\n" + `seat "b" {}`,
			wantErr: "slow_play",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := Parse([]byte(tt.src), "test.hcl")
			require.NoError(t, err)
			err = c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExampleConfig(t *testing.T) {
	t.Parallel()

	c, err := Load(filepath.Join("..", "..", "holdem.hcl"))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Len(t, c.Seats, 4)
	assert.True(t, c.Seats[0].Human)
	assert.Equal(t, 3*time.Second, c.NextHandDelay())
}
