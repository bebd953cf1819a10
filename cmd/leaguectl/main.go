// Package main provides leaguectl, an offline tool for the persisted league
// document. Stop the server first: the durable store takes an exclusive lock.
//
// Usage:
//
//	leaguectl show   [config flags]
//	leaguectl export <file> [config flags]
//	leaguectl import <file> [config flags]
//	leaguectl reset  [config flags]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dominopro/dominopro-server/internal/backup"
	"github.com/dominopro/dominopro-server/internal/config"
	"github.com/dominopro/dominopro-server/internal/league"
	"github.com/dominopro/dominopro-server/internal/logger"
	"github.com/dominopro/dominopro-server/internal/rewards"
	"github.com/dominopro/dominopro-server/internal/store"
	"github.com/dominopro/dominopro-server/internal/store/sqlite"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "leaguectl: %v\n", err)
		os.Exit(1)
	}
}

func usage() error {
	return errors.New("usage: leaguectl show|export <file>|import <file>|reset [config flags]")
}

func run(args []string) error {
	if len(args) == 0 {
		return usage()
	}
	cmd, args := args[0], args[1:]

	var file string
	switch cmd {
	case "export", "import":
		if len(args) == 0 {
			return usage()
		}
		file, args = args[0], args[1:]
	case "show", "reset":
	default:
		return usage()
	}

	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
		Writer:      os.Stderr,
	})

	ctx := context.Background()
	lg, closeStorage, err := openLeague(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	switch cmd {
	case "show":
		return show(lg)
	case "export":
		data, err := lg.ExportData()
		if err != nil {
			return err
		}
		if err := os.WriteFile(file, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file, err)
		}
		fmt.Printf("Exported to %s\n", file)
	case "import":
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		state, err := lg.ImportData(ctx, data)
		if err != nil {
			return err
		}
		c := backup.CountsOf(state)
		fmt.Printf("Imported %d players, %d games, %d active sessions\n", c.Players, c.Games, c.ActiveSessions)
	case "reset":
		if err := lg.ResetData(ctx); err != nil {
			return err
		}
		fmt.Println("League reset")
	}
	return nil
}

// openLeague loads the league from the storage chain. Unlike the server it
// refuses to run without the durable store.
func openLeague(ctx context.Context, cfg *config.Config, log *logger.Logger) (*league.League, func(), error) {
	durable, err := store.New(cfg.Storage.DurableDir, log.Component("store"))
	if err != nil {
		return nil, nil, fmt.Errorf("open durable store (is the server running?): %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.CachePath), 0o755); err != nil {
		_ = durable.Close()
		return nil, nil, err
	}
	cache, err := sqlite.Open(ctx, cfg.Storage.CachePath, log.Component("cache"))
	if err != nil {
		_ = durable.Close()
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}

	lg := league.New(league.Options{
		Store:          store.NewChain(durable, cache, log.Component("chain")),
		Logger:         log.Component("league"),
		PersistTimeout: cfg.Storage.PersistTimeout,
	})
	report := lg.Load(ctx)
	log.Debug("League loaded", "source", report.Source, "healed", report.Healed)

	return lg, func() {
		lg.Close()
		_ = cache.Close()
		_ = durable.Close()
	}, nil
}

func show(lg *league.League) error {
	state := lg.Snapshot()
	c := backup.CountsOf(state)
	fmt.Printf("Players: %d  Games: %d  Active sessions: %d\n\n", c.Players, c.Games, c.ActiveSessions)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPLAYER\tLEVEL\tXP\tW\tL\tPROGRESS")
	for i, p := range lg.Standings() {
		progress := rewards.ProgressFor(p.XP)
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d%%\n",
			i+1, p.DisplayName(), p.Level, p.XP, p.Wins, p.Losses, progress.Percent)
	}
	return w.Flush()
}
