// Package main is the entry point for SageQuest.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samdwyer/sagequest/data"
	"github.com/samdwyer/sagequest/internal/config"
	"github.com/samdwyer/sagequest/internal/game"
	"github.com/samdwyer/sagequest/internal/save"
	"github.com/samdwyer/sagequest/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "sagequest",
		Usage: "explore the world and defeat the dungeon's guardians by answering their questions",
		Commands: []*cli.Command{
			playCommand(cfg),
			savesCommand(cfg),
			validateCommand(cfg),
		},
		DefaultCommand: "play",
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "sagequest: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// resources returns DataDir when set, otherwise the embedded resources.
func resources(cfg *config.Config) fs.FS {
	if cfg.DataDir != "" {
		return os.DirFS(cfg.DataDir)
	}
	return data.FS()
}

// gameConfig maps the player settings onto the session configuration.
func gameConfig(cfg *config.Config, seed int64) game.Config {
	gc := game.DefaultConfig()
	gc.Seed = seed
	gc.Locale = cfg.Settings.Locale
	gc.TickRate = cfg.Settings.TickRate
	gc.KeyHold = cfg.Settings.KeyHoldTicks()
	return gc
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (save.Store, error) {
	return save.Open(ctx, save.Options{
		Backend:     cfg.SaveBackend,
		File:        cfg.SaveFile,
		RedisURL:    cfg.RedisURL,
		PostgresDSN: cfg.PostgresDSN,
	}, log)
}

func savesCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "saves",
		Usage: "list saved games, most recent first",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := openStore(ctx, cfg, slog.Default())
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.Root().Writer, "No saved games.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSER\tTRACK\tLEVEL\tPOSITION\tSAVED")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t(%d,%d)\t%s\n",
					r.ID, r.UserName, r.LanguageTrack, r.Level, r.CoordX, r.CoordY,
					r.Timestamp.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func validateCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "load every map and resource and check level anchors",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var locales []string
			for _, tag := range config.Locales {
				base, _ := tag.Base()
				locales = append(locales, base.String())
			}

			report, err := game.CheckResources(ctx, resources(cfg), gameConfig(cfg, 1), locales)
			if err != nil {
				return errors.Join(errors.New("resource check failed"), err)
			}
			fmt.Fprintf(cmd.Root().Writer, "OK: %d levels, %d maps, tracks %v\n",
				report.Levels, report.Maps, report.Tracks)
			return nil
		},
	}
}

// startTelemetry configures tracing and returns its shutdown hook.
func startTelemetry(ctx context.Context, cfg *config.Config) func() {
	telemetry.ConfigureHoneycomb()
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Warn("Telemetry setup failed, running without traces", "error", err)
		return func() {}
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("Error shutting down telemetry", "error", err)
		}
	}
}
