package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/lox/holdem/internal/config"
	"github.com/lox/holdem/internal/display"
	"github.com/lox/holdem/internal/host"
	"github.com/lox/holdem/internal/phh"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/statistics"
)

// SimulateCmd plays every seat with a policy
type SimulateCmd struct {
	Config     string `short:"c" help:"HCL config file" default:"holdem.hcl" type:"path"`
	Hands      int    `short:"n" help:"Number of hands to play" default:"100"`
	Seed       int64  `help:"RNG seed, 0 picks one from the clock"`
	Verbose    bool   `help:"Print every action"`
	HistoryDir string `help:"Write PHH hand histories to this directory" type:"path"`
}

func (c *SimulateCmd) Run(cli *CLI) error {
	logger := newLogger(cli.LogLevel)

	cfg, err := loadConfig(c.Config, func(cfg *config.Config) {
		if c.Seed != 0 {
			cfg.Table.Seed = c.Seed
		}
		if c.HistoryDir != "" {
			cfg.Server.HistoryDir = c.HistoryDir
		}
	})
	if err != nil {
		return err
	}
	if c.Hands <= 0 {
		return fmt.Errorf("hands must be positive, got %d", c.Hands)
	}

	seed := randutil.Seed(cfg.Table.Seed)
	logger.Info("Simulating", "hands", c.Hands, "seats", len(cfg.Seats), "seed", seed)

	tbl, policies, err := newTable(cfg, randutil.New(seed), true, logger)
	if err != nil {
		return err
	}
	runner := host.New(tbl, host.Options{Logger: logger, Policies: policies, TableID: cfg.Table.Name})
	defer runner.Close()

	var rec *phh.Recorder
	if dir := cfg.Server.HistoryDir; dir != "" {
		rec = phh.NewRecorder(dir, cfg.Table.Name, logger)
		runner.Subscribe(rec)
	}
	stats := statistics.NewCollector()
	runner.Subscribe(stats)
	r := display.New(os.Stdout)
	if c.Verbose {
		runner.Subscribe(display.NewPrinter(os.Stdout, r, -1))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := runner.Simulate(ctx, c.Hands)
	printSummary(cfg, sum, stats.Seats())
	if rec != nil && rec.Err() != nil {
		logger.Warn("Some hand histories were not written", "error", rec.Err())
	}
	if ctx.Err() != nil {
		logger.Info("Interrupted", "hands", sum.Hands)
		return nil
	}
	return err
}

func printSummary(cfg *config.Config, sum host.Summary, stats map[int]statistics.Stats) {
	seats := make([]int, 0, len(sum.Stacks))
	for seat := range sum.Stacks {
		seats = append(seats, seat)
	}
	sort.Slice(seats, func(i, j int) bool { return sum.Stacks[seats[i]] > sum.Stacks[seats[j]] })

	fmt.Printf("\n%d hands played\n", sum.Hands)
	fmt.Printf("  %-12s %8s %8s %16s %6s %6s\n", "seat", "chips", "net", "bb/100", "vpip", "pfr")
	for _, seat := range seats {
		s := cfg.Seats[seat]
		st := stats[seat]
		fmt.Printf("  %-12s %8d %+8d %8.1f ±%6.1f %5.0f%% %5.0f%%\n",
			s.Name, sum.Stacks[seat], sum.Stacks[seat]-s.Chips,
			st.BB100(), 196*st.StdError(), st.VPIPRate()*100, st.PFRRate()*100)
	}
}
