package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/samdwyer/sagequest/internal/config"
	"github.com/samdwyer/sagequest/internal/game"
	"github.com/samdwyer/sagequest/internal/logger"
	"github.com/samdwyer/sagequest/internal/save"
	"github.com/samdwyer/sagequest/internal/spectate"
	"github.com/samdwyer/sagequest/internal/ui"
)

type playOptions struct {
	saveID string
	name   string
	track  string
	seed   int64
}

func playCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "run the game; continues the latest save unless told otherwise",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "save", Usage: "resume the save with this `ID`"},
			&cli.StringFlag{Name: "new", Usage: "start a new game for player `NAME`"},
			&cli.StringFlag{Name: "track", Value: "Python", Usage: "language `TRACK` of a new game"},
			&cli.Int64Flag{Name: "seed", Usage: "random seed, 0 picks one"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.String("save") != "" && cmd.String("new") != "" {
				return errors.New("--save and --new are mutually exclusive")
			}
			return play(ctx, cfg, playOptions{
				saveID: cmd.String("save"),
				name:   cmd.String("new"),
				track:  cmd.String("track"),
				seed:   cmd.Int64("seed"),
			})
		},
	}
}

func play(ctx context.Context, cfg *config.Config, opts playOptions) error {
	log, logFile, err := logger.Setup(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()
	defer startTelemetry(ctx, cfg)()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := pickRecord(ctx, store, opts)
	if err != nil {
		return err
	}

	session, err := game.New(ctx, gameConfig(cfg, opts.seed), game.Deps{
		FS:     resources(cfg),
		Store:  store,
		Record: rec,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	palette, err := ui.DefaultPalette().WithOverrides(cfg.Settings.Palette)
	if err != nil {
		return err
	}

	screen, err := ui.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	defer screen.Close()
	renderer := ui.NewRenderer(screen, palette)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := startSpectate(runCtx, cfg, log)
	go screen.Capture(session.Input())

	runErr := session.Run(runCtx, func(snap game.Snapshot) {
		renderer.Render(snap)
		if hub != nil {
			hub.Publish(snap)
		}
	})

	if session.Mode() != game.ModeCompleted {
		if err := session.Save(context.WithoutCancel(ctx)); err != nil {
			return errors.Join(runErr, err)
		}
	}
	log.Info("Session ended", "level", session.Record().Level, "mode", session.Mode().String())
	return runErr
}

// pickRecord resumes a save by id, creates a new one, or falls back to the
// most recent save.
func pickRecord(ctx context.Context, store save.Store, opts playOptions) (save.Record, error) {
	switch {
	case opts.saveID != "":
		id, err := uuid.Parse(opts.saveID)
		if err != nil {
			return save.Record{}, fmt.Errorf("invalid save id %q: %w", opts.saveID, err)
		}
		return store.Load(ctx, id)

	case opts.name != "":
		rec := save.NewRecord(opts.name, opts.track)
		if err := store.Create(ctx, rec); err != nil {
			return save.Record{}, fmt.Errorf("failed to create save: %w", err)
		}
		return rec, nil
	}

	rec, err := save.Latest(ctx, store)
	if errors.Is(err, save.ErrNotFound) {
		return save.Record{}, errors.New("no saved game, start one with --new NAME")
	}
	return rec, err
}

// startSpectate serves the spectate feed when an address is configured.
func startSpectate(ctx context.Context, cfg *config.Config, log *slog.Logger) *spectate.Hub {
	if cfg.SpectateAddr == "" {
		return nil
	}

	hub := spectate.NewHub(max(1, cfg.Settings.TickRate/10), log)
	go hub.Run(ctx)
	go func() {
		if err := hub.ListenAndServe(ctx, cfg.SpectateAddr); err != nil {
			log.Error("Spectate server failed", "error", err)
		}
	}()
	return hub
}
