package npc

import (
	"context"
	"fmt"
	"io/fs"
	"math/rand"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/sagequest/internal/entity"
	"github.com/samdwyer/sagequest/internal/gamedata"
	"github.com/samdwyer/sagequest/internal/telemetry"
)

// DungeonArea selects a level's dungeon roster in Spawn.
const DungeonArea = -1

const (
	// FriendlySkins is the number of cosmetic variants for friendly NPCs.
	FriendlySkins = 8
	// HostileSkins is the number of cosmetic variants for hostile NPCs.
	HostileSkins = 4
)

// PlacementSource resolves where a sub-area's NPCs stand.
// Sub-area DungeonArea is the dungeon, 0 the overworld, any other value a house id.
type PlacementSource interface {
	Placements(level, subArea int) ([]gamedata.NPCPlacement, error)
	LevelCount() int
}

// Factory builds NPC rosters from location, dialogue and quiz resources.
type Factory struct {
	fsys   fs.FS
	places PlacementSource
	locale string
	rng    *rand.Rand
}

// NewFactory creates a factory reading track resources from fsys.
func NewFactory(fsys fs.FS, places PlacementSource, locale string, rng *rand.Rand) *Factory {
	return &Factory{
		fsys:   fsys,
		places: places,
		locale: locale,
		rng:    rng,
	}
}

// Spawn builds the roster of a level's sub-area for a language track.
// Resources are re-read on every call. An NPC without a matching dialogue
// or quiz entry gets an empty payload.
func (f *Factory) Spawn(ctx context.Context, level, subArea int, track string) ([]NPC, error) {
	tracer := telemetry.Tracer("npc")
	_, span := tracer.Start(ctx, "npc.spawn")
	defer span.End()

	placements, err := f.places.Placements(level, subArea)
	if err != nil {
		return nil, err
	}

	kind := KindFriendly
	if subArea == DungeonArea {
		kind = KindHostile
		if level == f.places.LevelCount() {
			kind = KindBoss
		}
	}

	roster := make([]NPC, 0, len(placements))
	if kind.Quizzed() {
		quizzes, err := gamedata.LoadQuiz(f.fsys, track, f.locale)
		if err != nil {
			return nil, err
		}
		for i, p := range placements {
			k, err := placedKind(p, kind)
			if err != nil {
				return nil, err
			}
			roster = append(roster, f.build(i, p, k, quizFrom(quizzes[p.NPCID])))
		}
	} else {
		dialogue, err := gamedata.LoadDialogue(f.fsys, track, f.locale)
		if err != nil {
			return nil, err
		}
		for i, p := range placements {
			k, err := placedKind(p, kind)
			if err != nil {
				return nil, err
			}
			roster = append(roster, f.build(i, p, k, Lines(dialogue[p.NPCID])))
		}
	}

	span.SetAttributes(
		attribute.Int("npc.level", level),
		attribute.Int("npc.sub_area", subArea),
		attribute.String("npc.kind", kind.String()),
		attribute.Int("npc.count", len(roster)),
	)

	return roster, nil
}

// placedKind returns the placement's explicit kind, or the area kind. An
// explicit kind must carry the same payload as the area.
func placedKind(p gamedata.NPCPlacement, area Kind) (Kind, error) {
	if p.Kind == "" {
		return area, nil
	}
	k, err := ParseKind(p.Kind)
	if err != nil {
		return 0, fmt.Errorf("npc %d: %w", p.NPCID, err)
	}
	if k.Quizzed() != area.Quizzed() {
		return 0, fmt.Errorf("npc %d: %w: %s in a %s area", p.NPCID, ErrUnknownKind, k, area)
	}
	return k, nil
}

func (f *Factory) build(index int, p gamedata.NPCPlacement, kind Kind, payload Payload) NPC {
	return NPC{
		Index:   index,
		ID:      p.NPCID,
		Kind:    kind,
		X:       p.Anchor.X,
		Y:       p.Anchor.Y,
		Skin:    f.skin(kind),
		Payload: payload,
		Anim:    entity.NewAnimation(),
	}
}

func (f *Factory) skin(kind Kind) int {
	switch kind {
	case KindFriendly:
		return f.rng.Intn(FriendlySkins)
	case KindHostile:
		return f.rng.Intn(HostileSkins)
	default:
		return 0
	}
}

func quizFrom(e gamedata.QuizEntry) Quiz {
	steps := make([]Step, 0, len(e.Question))
	for i, q := range e.Question {
		answers := make([]string, len(e.Answers[i]))
		copy(answers, e.Answers[i])
		steps = append(steps, Step{Question: q, Answers: answers})
	}
	return Quiz{Steps: steps}
}
