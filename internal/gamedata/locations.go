package gamedata

import (
	"errors"
	"fmt"
	"io/fs"
)

// LocationsFile is the default location config path inside the data filesystem.
const LocationsFile = "locations.json"

// ErrMalformed marks a resource that parsed but violates its schema.
var ErrMalformed = errors.New("malformed resource")

// Point is a signed camera offset.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NPCPlacement anchors one NPC id inside a house or dungeon. Kind is an
// optional kind token; when empty the kind follows from the area.
type NPCPlacement struct {
	NPCID  int    `json:"npcId"`
	Anchor Point  `json:"anchor"`
	Kind   string `json:"kind,omitempty"`
}

// HouseRecord describes one house of a level. Id 0 is the overworld itself.
type HouseRecord struct {
	ID     int            `json:"id"`
	Size   string         `json:"size"`
	Anchor Point          `json:"anchor"`
	NPCs   []NPCPlacement `json:"npcs"`
}

// DungeonRecord holds the dungeon anchors of a level. Exit is absent on the
// final level, whose dungeon ends the game instead.
type DungeonRecord struct {
	Entrance Point          `json:"entrance"`
	Gate     Point          `json:"gate"`
	Exit     *Point         `json:"exit"`
	NPCs     []NPCPlacement `json:"npcs"`
}

// LevelRecord is the location config of one level.
type LevelRecord struct {
	Level   int            `json:"level"`
	Houses  []HouseRecord  `json:"houses"`
	Dungeon *DungeonRecord `json:"dungeon"`
	Spawn   Point          `json:"spawn"`
}

// LocationConfig is the root of the location config resource.
type LocationConfig struct {
	Levels []LevelRecord `json:"levels"`
}

// LoadLocations reads and validates the location config.
func LoadLocations(fsys fs.FS, filename string) (LocationConfig, error) {
	cfg, err := Load[LocationConfig](fsys, filename)
	if err != nil {
		return LocationConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return LocationConfig{}, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks the structural invariants: at least one level, levels
// numbered 1..N in order, unique house ids per level.
func (c LocationConfig) Validate() error {
	if len(c.Levels) == 0 {
		return fmt.Errorf("%w: no levels configured", ErrMalformed)
	}
	for i, lvl := range c.Levels {
		if lvl.Level != i+1 {
			return fmt.Errorf("%w: level record %d is numbered %d", ErrMalformed, i, lvl.Level)
		}
		seen := make(map[int]bool, len(lvl.Houses))
		for _, h := range lvl.Houses {
			if h.ID < 0 {
				return fmt.Errorf("%w: level %d: negative house id %d", ErrMalformed, lvl.Level, h.ID)
			}
			if seen[h.ID] {
				return fmt.Errorf("%w: level %d: duplicate house id %d", ErrMalformed, lvl.Level, h.ID)
			}
			seen[h.ID] = true
		}
	}
	return nil
}
