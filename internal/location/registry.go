// Package location exposes the per-level houses, dungeon anchors and spawn
// point of the location config, selected by the player's current level.
package location

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/samdwyer/sagequest/internal/gamedata"
	"github.com/samdwyer/sagequest/internal/npc"
)

var (
	// ErrInvalidLevel is returned for a level outside the configured range.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrUnknownSize is returned for a house size tag that is not small or large.
	ErrUnknownSize = errors.New("unknown house size")
	// ErrUnknownHouse is returned when a sub-area names a house the level lacks.
	ErrUnknownHouse = errors.New("unknown house")
	// ErrMisplacedKind is returned for a quiz NPC outside a dungeon or a
	// friendly NPC inside one.
	ErrMisplacedKind = errors.New("npc kind not allowed in area")
)

// Point is a signed camera offset.
type Point = gamedata.Point

// HouseSize selects the interior map of a house.
type HouseSize int

const (
	HouseSmall HouseSize = iota
	HouseLarge
)

// String returns the size tag.
func (s HouseSize) String() string {
	switch s {
	case HouseSmall:
		return "small"
	case HouseLarge:
		return "large"
	default:
		return "unknown"
	}
}

// ParseHouseSize converts a size tag into a HouseSize.
func ParseHouseSize(tag string) (HouseSize, error) {
	switch strings.ToLower(tag) {
	case "small":
		return HouseSmall, nil
	case "large":
		return HouseLarge, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSize, tag)
	}
}

// ExitAnchor is where the player stands after entering a house of this
// size, and the anchor that leads back outside.
func (s HouseSize) ExitAnchor() Point {
	if s == HouseLarge {
		return Point{X: 14, Y: -288}
	}
	return Point{X: 18, Y: -230}
}

// House is an enterable house on the overworld.
type House struct {
	ID     int
	Size   HouseSize
	Anchor Point
	NPCs   []gamedata.NPCPlacement
}

// Dungeon holds a level's dungeon anchors. Exit is nil on the final level.
type Dungeon struct {
	Entrance Point
	Gate     Point
	Exit     *Point
	NPCs     []gamedata.NPCPlacement
}

// Level is the resolved location data of one level.
type Level struct {
	Number    int
	Overworld []gamedata.NPCPlacement
	Houses    []House
	Dungeon   *Dungeon
	Spawn     Point
}

// Registry holds every configured level and the one currently selected,
// plus the NPC roster assigned to the player's current area.
type Registry struct {
	levels  []Level
	current int
	npcs    []npc.NPC
}

// NewRegistry resolves a location config and selects level 1.
func NewRegistry(cfg gamedata.LocationConfig) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	levels := make([]Level, 0, len(cfg.Levels))
	for _, rec := range cfg.Levels {
		lvl := Level{Number: rec.Level, Spawn: rec.Spawn}
		for _, h := range rec.Houses {
			if err := checkKinds(h.NPCs, false); err != nil {
				return nil, fmt.Errorf("level %d house %d: %w", rec.Level, h.ID, err)
			}
			if h.ID == 0 {
				lvl.Overworld = h.NPCs
				continue
			}
			size, err := ParseHouseSize(h.Size)
			if err != nil {
				return nil, fmt.Errorf("level %d house %d: %w", rec.Level, h.ID, err)
			}
			lvl.Houses = append(lvl.Houses, House{ID: h.ID, Size: size, Anchor: h.Anchor, NPCs: h.NPCs})
		}
		if d := rec.Dungeon; d != nil {
			if err := checkKinds(d.NPCs, true); err != nil {
				return nil, fmt.Errorf("level %d dungeon: %w", rec.Level, err)
			}
			lvl.Dungeon = &Dungeon{Entrance: d.Entrance, Gate: d.Gate, Exit: d.Exit, NPCs: d.NPCs}
		}
		levels = append(levels, lvl)
	}

	return &Registry{levels: levels}, nil
}

// checkKinds validates the optional kind tokens of an area's placements.
func checkKinds(placements []gamedata.NPCPlacement, dungeon bool) error {
	for _, p := range placements {
		if p.Kind == "" {
			continue
		}
		kind, err := npc.ParseKind(p.Kind)
		if err != nil {
			return fmt.Errorf("npc %d: %w", p.NPCID, err)
		}
		if kind.Quizzed() != dungeon {
			return fmt.Errorf("%w: npc %d is %s", ErrMisplacedKind, p.NPCID, kind)
		}
	}
	return nil
}

// LoadRegistry reads the location config from fsys and builds a registry.
func LoadRegistry(fsys fs.FS, filename string) (*Registry, error) {
	cfg, err := gamedata.LoadLocations(fsys, filename)
	if err != nil {
		return nil, err
	}
	return NewRegistry(cfg)
}

// MustLoadRegistry loads a registry, panicking on error.
func MustLoadRegistry(fsys fs.FS, filename string) *Registry {
	r, err := LoadRegistry(fsys, filename)
	if err != nil {
		panic(err)
	}
	return r
}

// Select makes level the active level. The previous selection is kept
// when level is out of range.
func (r *Registry) Select(level int) error {
	if level < 1 || level > len(r.levels) {
		return fmt.Errorf("%w: %d (configured 1..%d)", ErrInvalidLevel, level, len(r.levels))
	}
	r.current = level - 1
	return nil
}

// Level returns the active level number.
func (r *Registry) Level() int {
	return r.levels[r.current].Number
}

// LevelCount returns the number of configured levels.
func (r *Registry) LevelCount() int {
	return len(r.levels)
}

// Final reports whether the active level is the last configured one.
func (r *Registry) Final() bool {
	return r.current == len(r.levels)-1
}

// Houses returns the active level's houses.
func (r *Registry) Houses() []House {
	out := make([]House, len(r.levels[r.current].Houses))
	copy(out, r.levels[r.current].Houses)
	return out
}

// House looks up a house of the active level by id.
func (r *Registry) House(id int) (House, bool) {
	for _, h := range r.levels[r.current].Houses {
		if h.ID == id {
			return h, true
		}
	}
	return House{}, false
}

// Dungeon returns the active level's dungeon, or nil when it has none.
func (r *Registry) Dungeon() *Dungeon {
	d := r.levels[r.current].Dungeon
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}

// Spawn returns the active level's spawn anchor.
func (r *Registry) Spawn() Point {
	return r.levels[r.current].Spawn
}

// NPCs returns the roster assigned to the current area.
func (r *Registry) NPCs() []npc.NPC {
	return r.npcs
}

// SetNPCs replaces the roster of the current area.
func (r *Registry) SetNPCs(roster []npc.NPC) {
	r.npcs = roster
}

// Placements returns where the NPCs of a sub-area of any level stand:
// npc.DungeonArea for the dungeon, 0 for the overworld, otherwise a house id.
func (r *Registry) Placements(level, subArea int) ([]gamedata.NPCPlacement, error) {
	if level < 1 || level > len(r.levels) {
		return nil, fmt.Errorf("%w: %d (configured 1..%d)", ErrInvalidLevel, level, len(r.levels))
	}
	lvl := r.levels[level-1]

	switch {
	case subArea == npc.DungeonArea:
		if lvl.Dungeon == nil {
			return nil, nil
		}
		return lvl.Dungeon.NPCs, nil
	case subArea == 0:
		return lvl.Overworld, nil
	case subArea > 0:
		for _, h := range lvl.Houses {
			if h.ID == subArea {
				return h.NPCs, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: level %d has no sub-area %d", ErrUnknownHouse, level, subArea)
}
