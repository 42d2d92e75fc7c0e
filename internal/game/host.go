package game

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/sagequest/internal/dialogue"
	"github.com/samdwyer/sagequest/internal/dungeon"
	"github.com/samdwyer/sagequest/internal/interaction"
	"github.com/samdwyer/sagequest/internal/location"
	"github.com/samdwyer/sagequest/internal/npc"
	"github.com/samdwyer/sagequest/internal/telemetry"
	"github.com/samdwyer/sagequest/internal/tilemap"
)

// host applies the controller's transitions to a session. Each method
// loads what it needs before touching the session.
type host struct {
	s *Session
}

var _ interaction.Host = (*host)(nil)

func (h *host) EnterHouse(ctx context.Context, house location.House) error {
	s := h.s
	m, ok := s.houses[house.Size]
	if !ok {
		return fmt.Errorf("%w: %v", location.ErrUnknownSize, house.Size)
	}
	roster, err := s.factory.Spawn(ctx, s.registry.Level(), house.ID, s.track)
	if err != nil {
		return err
	}

	name := s.cfg.Maps.HouseSmall
	if house.Size == location.HouseLarge {
		name = s.cfg.Maps.HouseLarge
	}
	s.switchMap(m, name, house.Size.ExitAnchor(), roster)
	s.logger.Debug("Entered house", "house", house.ID, "size", house.Size.String())
	return nil
}

func (h *host) EnterOverworld(ctx context.Context, at location.Point) error {
	s := h.s
	roster, err := s.factory.Spawn(ctx, s.registry.Level(), 0, s.track)
	if err != nil {
		return err
	}
	s.switchMap(s.overworld, s.cfg.Maps.Overworld, at, roster)
	return nil
}

func (h *host) EnterDungeon(ctx context.Context, gate location.Point) error {
	s := h.s
	level := s.registry.Level()
	name := fmt.Sprintf(s.cfg.Maps.Dungeon, level)

	m, err := tilemap.Load(ctx, s.fsys, name)
	if err != nil {
		return err
	}
	roster, err := s.factory.Spawn(ctx, level, npc.DungeonArea, s.track)
	if err != nil {
		return err
	}

	if !s.tracker.Started() {
		s.tracker = dungeon.NewTracker(len(roster))
	}
	s.switchMap(m, name, gate, roster)
	s.logger.Debug("Entered dungeon", "level", level, "opponents", len(roster), "defeated", s.tracker.Count())
	return nil
}

func (h *host) TalkTo(ctx context.Context, index int) (bool, error) {
	s := h.s
	roster := s.registry.NPCs()
	if index < 0 || index >= len(roster) {
		return false, fmt.Errorf("no npc at index %d", index)
	}
	n := roster[index]

	var tracker *dungeon.Tracker
	if n.Kind.Quizzed() {
		tracker = s.tracker
	}
	session, res := dialogue.Open(n, tracker, s.rng)
	s.talk = session
	if err := s.handleResult(ctx, res); err != nil {
		return session.IsOpen(), err
	}
	return session.IsOpen(), nil
}

// LevelUp moves the session to the next level's spawn. The next overworld
// roster is spawned before anything is committed, so a failed load leaves
// the session on the current level inside the dungeon.
func (h *host) LevelUp(ctx context.Context) (location.Point, error) {
	s := h.s
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "session.level_up")
	defer span.End()

	next := s.registry.Level() + 1
	span.SetAttributes(attribute.Int("session.level", next))
	if next > s.registry.LevelCount() {
		err := fmt.Errorf("%w: %d", location.ErrInvalidLevel, next)
		span.RecordError(err)
		return location.Point{}, err
	}

	roster, err := s.factory.Spawn(ctx, next, 0, s.track)
	if err != nil {
		span.RecordError(err)
		return location.Point{}, fmt.Errorf("failed to spawn level %d overworld: %w", next, err)
	}
	if err := s.registry.Select(next); err != nil {
		span.RecordError(err)
		return location.Point{}, err
	}

	spawn := s.registry.Spawn()
	s.player.Level = next
	s.tracker = nil
	s.switchMap(s.overworld, s.cfg.Maps.Overworld, spawn, roster)

	s.logger.Info("Level up", "level", next)
	return spawn, nil
}

func (h *host) Persist(ctx context.Context) error {
	return h.s.Save(ctx)
}
