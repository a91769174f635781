// Package config loads table and seat definitions from HCL.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/policy"
)

// Config is the complete configuration file
type Config struct {
	Server *ServerSettings `hcl:"server,block"`
	Table  *TableSettings  `hcl:"table,block"`
	Seats  []SeatSettings  `hcl:"seat,block"`
}

// ServerSettings configures the websocket adapter and persistence
type ServerSettings struct {
	Address    string `hcl:"address,optional"`
	Port       int    `hcl:"port,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	HistoryDir string `hcl:"history_dir,optional"`
	RedisAddr  string `hcl:"redis_addr,optional"`
}

// TableSettings describes the table
type TableSettings struct {
	Name            string `hcl:"name,label"`
	SmallBlind      int    `hcl:"small_blind,optional"`
	BigBlind        int    `hcl:"big_blind,optional"`
	StartingChips   int    `hcl:"starting_chips,optional"`
	Seed            int64  `hcl:"seed,optional"`
	SidePots        bool   `hcl:"side_pots,optional"`
	ActionTimeoutMS int    `hcl:"action_timeout_ms,optional"`
	NextHandDelayMS int    `hcl:"next_hand_delay_ms,optional"`
}

// SeatSettings describes one seat. Seats without human = true are played by a policy.
type SeatSettings struct {
	Name        string   `hcl:"name,label"`
	Human       bool     `hcl:"human,optional"`
	Chips       int      `hcl:"chips,optional"`
	Difficulty  string   `hcl:"difficulty,optional"`
	Personality string   `hcl:"personality,optional"`
	Analytic    bool     `hcl:"analytic,optional"`
	EVThreshold float64  `hcl:"ev_threshold,optional"`
	SlowPlay    *float64 `hcl:"slow_play,optional"`
	ThinkMinMS  *int     `hcl:"think_min_ms,optional"`
	ThinkMaxMS  *int     `hcl:"think_max_ms,optional"`
}

// Default returns a heads-up game against a medium bot
func Default() *Config {
	c := &Config{
		Seats: []SeatSettings{
			{Name: "you", Human: true},
			{Name: "bot", Difficulty: "medium", Personality: "balanced"},
		},
	}
	c.applyDefaults()
	return c
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes HCL source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var c Config
	diags = gohcl.DecodeBody(file.Body, nil, &c)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Table == nil {
		c.Table = &TableSettings{Name: "main"}
	}
	if c.Table.BigBlind == 0 {
		c.Table.BigBlind = 20
	}
	if c.Table.SmallBlind == 0 {
		c.Table.SmallBlind = c.Table.BigBlind / 2
	}
	if c.Table.StartingChips == 0 {
		c.Table.StartingChips = c.Table.BigBlind * 50
	}

	for i := range c.Seats {
		s := &c.Seats[i]
		if s.Chips == 0 {
			s.Chips = c.Table.StartingChips
		}
		if s.Human {
			continue
		}
		if s.Difficulty == "" {
			s.Difficulty = "medium"
		}
		if s.Personality == "" {
			s.Personality = "balanced"
		}
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Server.Port))
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level %q: %w", c.Server.LogLevel, err))
	}
	if c.Table.ActionTimeoutMS < 0 || c.Table.NextHandDelayMS < 0 {
		errs = append(errs, fmt.Errorf("table %s: delays must not be negative", c.Table.Name))
	}
	if len(c.Seats) < 2 || len(c.Seats) > game.MaxSeats {
		errs = append(errs, fmt.Errorf("between 2 and %d seats are required, got %d", game.MaxSeats, len(c.Seats)))
	}
	if err := c.TableConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("table %s: %w", c.Table.Name, err))
	}

	names := make(map[string]bool)
	for i, s := range c.Seats {
		if names[s.Name] {
			errs = append(errs, fmt.Errorf("seat %s: duplicate name", s.Name))
		}
		names[s.Name] = true
		if s.Chips <= 0 {
			errs = append(errs, fmt.Errorf("seat %s: chips must be positive", s.Name))
		}
		if s.Human {
			continue
		}
		if _, err := c.PolicyConfig(i); err != nil {
			errs = append(errs, fmt.Errorf("seat %s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Address returns host:port for the websocket adapter.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// ActionTimeout is how long a human seat has to act.
func (c *Config) ActionTimeout() time.Duration {
	return time.Duration(c.Table.ActionTimeoutMS) * time.Millisecond
}

// NextHandDelay is the pause between hands when hosting.
func (c *Config) NextHandDelay() time.Duration {
	return time.Duration(c.Table.NextHandDelayMS) * time.Millisecond
}

// TableConfig converts the table and seats for game.NewTable.
func (c *Config) TableConfig() game.TableConfig {
	tc := game.TableConfig{SmallBlind: c.Table.SmallBlind, BigBlind: c.Table.BigBlind}
	for _, s := range c.Seats {
		tc.Seats = append(tc.Seats, game.SeatConfig{Name: s.Name, Chips: s.Chips, Human: s.Human})
	}
	return tc
}

// PolicyConfig builds the policy configuration for seat i.
func (c *Config) PolicyConfig(i int) (policy.Config, error) {
	if i < 0 || i >= len(c.Seats) {
		return policy.Config{}, fmt.Errorf("no seat %d", i)
	}
	s := c.Seats[i]
	cfg := policy.DefaultConfig()

	d, err := policy.ParseDifficulty(s.Difficulty)
	if err != nil {
		return policy.Config{}, err
	}
	p, err := policy.ParsePersonality(s.Personality)
	if err != nil {
		return policy.Config{}, err
	}
	cfg.Difficulty = d
	cfg.Personality = p
	cfg.Analytic = s.Analytic
	cfg.EVThreshold = s.EVThreshold
	if s.SlowPlay != nil {
		cfg.SlowPlay = *s.SlowPlay
	}
	if s.ThinkMinMS != nil {
		cfg.ThinkMin = time.Duration(*s.ThinkMinMS) * time.Millisecond
	}
	if s.ThinkMaxMS != nil {
		cfg.ThinkMax = time.Duration(*s.ThinkMaxMS) * time.Millisecond
	}
	if cfg.ThinkMax < cfg.ThinkMin {
		cfg.ThinkMax = cfg.ThinkMin
	}
	return cfg, cfg.Validate()
}
