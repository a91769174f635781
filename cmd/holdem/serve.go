package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/config"
	"github.com/lox/holdem/internal/display"
	"github.com/lox/holdem/internal/host"
	"github.com/lox/holdem/internal/phh"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/server"
	"github.com/lox/holdem/internal/store"
)

// ServeCmd hosts the configured table
type ServeCmd struct {
	Config     string `short:"c" help:"HCL config file" default:"holdem.hcl" type:"path"`
	Port       int    `help:"Override the listen port"`
	Seed       int64  `help:"Override the table seed"`
	HistoryDir string `help:"Write PHH hand histories and table snapshots here" type:"path"`
	Redis      string `help:"Keep table snapshots in Redis at this address" env:"HOLDEM_REDIS"`
	Quiet      bool   `short:"q" help:"Do not print the hands to stdout"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(c.Config, func(cfg *config.Config) {
		if c.Port != 0 {
			cfg.Server.Port = c.Port
		}
		if c.Seed != 0 {
			cfg.Table.Seed = c.Seed
		}
		if c.HistoryDir != "" {
			cfg.Server.HistoryDir = c.HistoryDir
		}
		if c.Redis != "" {
			cfg.Server.RedisAddr = c.Redis
		}
	})
	if err != nil {
		return err
	}

	level := cli.LogLevel
	if level == "info" && cfg.Server.LogLevel != "" {
		level = cfg.Server.LogLevel
	}
	logger := newLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshots, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	seed := randutil.Seed(cfg.Table.Seed)
	tbl, policies, err := newTable(cfg, randutil.New(seed), false, logger)
	if err != nil {
		return err
	}
	runner := host.New(tbl, host.Options{
		Logger:        logger,
		Policies:      policies,
		ActionTimeout: cfg.ActionTimeout(),
		NextHandDelay: cfg.NextHandDelay(),
		Store:         snapshots,
		TableID:       cfg.Table.Name,
	})
	defer runner.Close()

	if dir := cfg.Server.HistoryDir; dir != "" {
		runner.Subscribe(phh.NewRecorder(dir, cfg.Table.Name, logger))
	}
	if !c.Quiet {
		runner.Subscribe(display.NewPrinter(os.Stdout, display.New(os.Stdout), -1))
	}
	srv := server.New(runner, logger)

	resumed, err := runner.Resume(ctx)
	if err != nil {
		logger.Warn("Could not resume table, starting fresh", "error", err)
	}
	// a resumed hand that already finished waits for the next hand delay
	idle := resumed && !runner.Snapshot().Phase.Betting() && cfg.NextHandDelay() <= 0
	if !resumed || idle {
		if _, err := runner.StartHand(); err != nil {
			return err
		}
	}

	logger.Info("Starting table",
		"table", cfg.Table.Name,
		"address", cfg.Address(),
		"seats", len(cfg.Seats),
		"bots", len(policies),
		"blinds", []int{cfg.Table.SmallBlind, cfg.Table.BigBlind},
		"seed", seed,
		"resumed", resumed)

	err = srv.ListenAndServe(ctx, cfg.Address())
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// openStore picks Redis, then a snapshot directory beside the hand
// histories, then memory.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (store.SnapshotStore, func(), error) {
	switch {
	case cfg.Server.RedisAddr != "":
		rs, err := store.DialRedis(ctx, cfg.Server.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using redis snapshots", "addr", cfg.Server.RedisAddr)
		return rs, func() { _ = rs.Close() }, nil
	case cfg.Server.HistoryDir != "":
		dir := filepath.Join(cfg.Server.HistoryDir, "snapshots")
		logger.Info("Using file snapshots", "dir", dir)
		return store.NewFile(dir), func() {}, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}
