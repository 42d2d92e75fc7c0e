package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/sagequest/internal/dialogue"
	"github.com/samdwyer/sagequest/internal/dungeon"
	"github.com/samdwyer/sagequest/internal/entity"
	"github.com/samdwyer/sagequest/internal/interaction"
	"github.com/samdwyer/sagequest/internal/location"
	"github.com/samdwyer/sagequest/internal/notify"
	"github.com/samdwyer/sagequest/internal/npc"
	"github.com/samdwyer/sagequest/internal/save"
	"github.com/samdwyer/sagequest/internal/telemetry"
	"github.com/samdwyer/sagequest/internal/tilemap"
)

// Deps are the collaborators a session is built from.
type Deps struct {
	// FS holds maps, location config and track resources.
	FS fs.FS
	// Store receives saves. Nil disables persistence.
	Store save.Store
	// Record is the save the session resumes.
	Record save.Record
	Logger *slog.Logger
}

// Session holds the entire world state. Everything except Input is owned
// by the goroutine calling Update.
type Session struct {
	cfg    Config
	fsys   fs.FS
	store  save.Store
	record save.Record
	track  string
	logger *slog.Logger
	rng    *rand.Rand

	registry   *location.Registry
	factory    *npc.Factory
	controller *interaction.Controller
	board      *notify.Board
	input      *Input

	overworld *tilemap.TileMap
	houses    map[location.HouseSize]*tilemap.TileMap
	current   *tilemap.TileMap
	mapName   string

	player  *entity.Player
	tracker *dungeon.Tracker
	talk    *dialogue.Session
	mode    Mode
	tick    uint64
	done    bool
}

// New builds a session from a save record. A record at (0,0) starts at the
// level's spawn point with a welcome banner.
func New(ctx context.Context, cfg Config, deps Deps) (*Session, error) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "session.new")
	defer span.End()

	cfg = cfg.withDefaults()
	if deps.FS == nil {
		return nil, errors.New("game: no resource filesystem")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	registry, err := location.LoadRegistry(deps.FS, cfg.LocationsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}

	rec := deps.Record
	if rec.Level < 1 {
		return nil, fmt.Errorf("%w: save level %d", location.ErrInvalidLevel, rec.Level)
	}
	mode := ModePlaying
	active := rec.Level
	if active > registry.LevelCount() {
		mode = ModeCompleted
		active = registry.LevelCount()
	}
	if err := registry.Select(active); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:      cfg,
		fsys:     deps.FS,
		store:    deps.Store,
		record:   rec,
		track:    strings.ToLower(rec.LanguageTrack),
		logger:   logger,
		rng:      rng,
		registry: registry,
		board:    notify.NewBoard(cfg.TickRate),
		input:    NewInput(cfg.KeyHold),
		houses:   make(map[location.HouseSize]*tilemap.TileMap),
		mode:     mode,
	}
	s.factory = npc.NewFactory(deps.FS, registry, cfg.Locale, rng)
	s.controller = interaction.NewController(registry, &host{s: s})

	if s.overworld, err = tilemap.Load(ctx, deps.FS, cfg.Maps.Overworld); err != nil {
		return nil, err
	}
	for size, name := range map[location.HouseSize]string{
		location.HouseSmall: cfg.Maps.HouseSmall,
		location.HouseLarge: cfg.Maps.HouseLarge,
	} {
		m, err := tilemap.Load(ctx, deps.FS, name)
		if err != nil {
			return nil, err
		}
		s.houses[size] = m
	}

	roster, err := s.factory.Spawn(ctx, active, 0, s.track)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn overworld npcs: %w", err)
	}

	at := location.Point{X: rec.CoordX, Y: rec.CoordY}
	if at == (location.Point{}) {
		at = registry.Spawn()
		s.board.Post(notify.NoticeWelcome)
	}
	s.player = entity.NewPlayer(at.X, at.Y, rec.Level)
	s.switchMap(s.overworld, cfg.Maps.Overworld, at, roster)

	if mode == ModeCompleted {
		s.board.Post(notify.NoticeGameComplete)
	}
	s.board.SetHint(s.controller.Update(at.X, at.Y))

	span.SetAttributes(
		attribute.String("session.user", rec.UserName),
		attribute.String("session.track", s.track),
		attribute.Int("session.level", rec.Level),
		attribute.String("session.mode", mode.String()),
	)
	logger.Info("Session started",
		"user", rec.UserName, "track", s.track, "level", rec.Level, "x", at.X, "y", at.Y)

	return s, nil
}

// Input returns the input written by capture goroutines.
func (s *Session) Input() *Input {
	return s.input
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// Done reports whether the loop should stop.
func (s *Session) Done() bool {
	return s.done
}

// Record returns the save record as last written.
func (s *Session) Record() save.Record {
	return s.record
}

// Run ticks the session at the configured rate, rendering after every tick,
// until ctx is cancelled or the player quits.
func (s *Session) Run(ctx context.Context, render func(Snapshot)) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.TickRate))
	defer ticker.Stop()

	render(s.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Update(ctx); err != nil {
				s.logger.Error("Tick failed", "error", err, "tick", s.tick)
			}
			render(s.Snapshot())
			if s.done {
				return nil
			}
		}
	}
}

// Update advances the world by one tick.
func (s *Session) Update(ctx context.Context) error {
	f := s.input.consume()

	if f.Quit {
		s.done = true
		return nil
	}
	if f.Pause && s.mode != ModeCompleted {
		if s.mode == ModePaused {
			s.mode = ModePlaying
		} else {
			s.mode = ModePaused
		}
	}
	if s.mode == ModePaused {
		if f.Cancel {
			s.mode = ModePlaying
		}
		return nil
	}

	s.tick++
	s.board.Tick()

	if s.mode == ModeCompleted {
		if f.Confirm || f.Cancel {
			s.done = true
		}
		return nil
	}

	var err error
	if s.talk.IsOpen() {
		err = s.handleDialogue(ctx, f)
	}

	s.player.Step(s.current, f.Keys)
	roster := s.registry.NPCs()
	for i := range roster {
		roster[i].Anim.Advance()
	}

	s.board.SetHint(s.controller.Update(s.player.X, s.player.Y))

	if f.Interact && s.mode == ModePlaying {
		trig, ierr := s.controller.Interact(ctx)
		if ierr != nil {
			s.logger.Warn("Interaction failed", "trigger", trig.String(), "error", ierr)
			err = errors.Join(err, ierr)
		}
		s.board.SetHint(s.controller.Update(s.player.X, s.player.Y))
	}
	return err
}

func (s *Session) handleDialogue(ctx context.Context, f Frame) error {
	if f.Cancel {
		s.talk.Cancel()
		s.endTalk()
		return nil
	}
	if f.Select >= 0 {
		s.talk.Select(f.Select)
	}
	if f.Cycle != 0 {
		s.talk.Cycle(f.Cycle)
	}
	if !f.Confirm {
		return nil
	}

	res := s.talk.Advance()
	if !s.talk.IsOpen() {
		s.endTalk()
	}
	return s.handleResult(ctx, res)
}

func (s *Session) endTalk() {
	s.talk = nil
	s.controller.Release()
}

// handleResult posts the banner for a dialogue outcome and reacts to a
// cleared dungeon.
func (s *Session) handleResult(ctx context.Context, res dialogue.Result) error {
	switch res.Outcome {
	case dialogue.OutcomeWrong:
		s.board.Post(notify.NoticeWrongAnswer)
	case dialogue.OutcomeIncomplete:
		s.board.Post(notify.NoticeIncomplete)
	case dialogue.OutcomeAlreadyDefeated:
		s.board.Post(notify.NoticeAlreadyDefeated)
	case dialogue.OutcomeDefeated:
		s.board.Post(notify.NoticeDefeated)
	}

	if !res.DungeonCleared {
		return nil
	}
	if !s.registry.Final() {
		s.controller.EnableFinalDoor(true)
		s.board.Post(notify.NoticeLevelCleared)
		s.logger.Info("Dungeon cleared", "level", s.registry.Level())
		return nil
	}
	return s.complete(ctx)
}

// complete finishes the game after the last dungeon.
func (s *Session) complete(ctx context.Context) error {
	s.player.Level++
	s.mode = ModeCompleted
	if s.talk != nil {
		s.endTalk()
	}
	s.board.Post(notify.NoticeGameComplete)
	s.logger.Info("Game completed", "user", s.record.UserName, "track", s.track)
	return s.Save(ctx)
}

// Save writes the player's level and position. Away from the overworld the
// position saved is where the player will re-enter it.
func (s *Session) Save(ctx context.Context) error {
	x, y := s.player.Position()
	if s.controller.Place() != interaction.PlaceOverworld {
		p := s.controller.Reentry()
		x, y = p.X, p.Y
	}

	s.record.Level = s.player.Level
	s.record.CoordX = x
	s.record.CoordY = y
	s.record.Timestamp = time.Now().UTC()
	s.board.Post(notify.NoticeSaving)

	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, s.record); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	s.logger.Info("Game saved", "id", s.record.ID, "level", s.record.Level, "x", x, "y", y)
	return nil
}

// switchMap makes m the current map with the player at an offset and a new
// roster. Callers load everything before calling it.
func (s *Session) switchMap(m *tilemap.TileMap, name string, at location.Point, roster []npc.NPC) {
	s.current = m
	s.mapName = name
	s.player.MoveTo(at.X, at.Y)
	s.registry.SetNPCs(roster)
}
