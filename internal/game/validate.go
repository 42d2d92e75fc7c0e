package game

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"

	"github.com/samdwyer/sagequest/internal/gamedata"
	"github.com/samdwyer/sagequest/internal/location"
	"github.com/samdwyer/sagequest/internal/tilemap"
)

// Report summarises a successful resource check.
type Report struct {
	Levels int
	Maps   int
	Tracks []string
}

// CheckResources loads every map, location record and track resource a
// session can reach and checks that every anchor lies inside its map. All
// problems found are returned joined.
func CheckResources(ctx context.Context, fsys fs.FS, cfg Config, locales []string) (Report, error) {
	cfg = cfg.withDefaults()
	var report Report

	locs, err := gamedata.LoadLocations(fsys, cfg.LocationsFile)
	if err != nil {
		return report, err
	}
	report.Levels = len(locs.Levels)

	maps := make(map[string]*tilemap.TileMap)
	var problems []error
	load := func(name string) *tilemap.TileMap {
		if m, ok := maps[name]; ok {
			return m
		}
		m, err := tilemap.Load(ctx, fsys, name)
		if err != nil {
			problems = append(problems, err)
		}
		maps[name] = m
		return m
	}
	inside := func(m *tilemap.TileMap, p gamedata.Point, what string, level int) {
		if m == nil {
			return
		}
		cx, cy := m.CellAt(p.X, p.Y)
		if !m.InBounds(int(math.Floor(cx)), int(math.Floor(cy))) {
			problems = append(problems, fmt.Errorf("level %d: %s at (%d,%d) lies outside %s", level, what, p.X, p.Y, m.Path))
		}
	}

	overworld := load(cfg.Maps.Overworld)
	houseMaps := map[location.HouseSize]*tilemap.TileMap{
		location.HouseSmall: load(cfg.Maps.HouseSmall),
		location.HouseLarge: load(cfg.Maps.HouseLarge),
	}

	for _, lvl := range locs.Levels {
		n := lvl.Level
		inside(overworld, lvl.Spawn, "spawn", n)

		for _, h := range lvl.Houses {
			if h.ID == 0 {
				for _, p := range h.NPCs {
					inside(overworld, p.Anchor, fmt.Sprintf("npc %d", p.NPCID), n)
				}
				continue
			}
			size, err := location.ParseHouseSize(h.Size)
			if err != nil {
				problems = append(problems, fmt.Errorf("level %d house %d: %w", n, h.ID, err))
				continue
			}
			inside(overworld, h.Anchor, fmt.Sprintf("house %d", h.ID), n)
			inside(houseMaps[size], size.ExitAnchor(), fmt.Sprintf("house %d exit", h.ID), n)
			for _, p := range h.NPCs {
				inside(houseMaps[size], p.Anchor, fmt.Sprintf("house %d npc %d", h.ID, p.NPCID), n)
			}
		}

		if d := lvl.Dungeon; d != nil {
			dm := load(fmt.Sprintf(cfg.Maps.Dungeon, n))
			inside(overworld, d.Entrance, "dungeon entrance", n)
			inside(dm, d.Gate, "dungeon gate", n)
			if d.Exit != nil {
				inside(dm, *d.Exit, "dungeon exit", n)
			}
			for _, p := range d.NPCs {
				inside(dm, p.Anchor, fmt.Sprintf("dungeon npc %d", p.NPCID), n)
			}
		}
	}
	report.Maps = len(maps)

	entries, err := fs.ReadDir(fsys, "tracks")
	if err != nil {
		problems = append(problems, fmt.Errorf("failed to list tracks: %w", err))
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		report.Tracks = append(report.Tracks, e.Name())
		for _, locale := range locales {
			if _, err := gamedata.LoadDialogue(fsys, e.Name(), locale); err != nil {
				problems = append(problems, err)
			}
			if _, err := gamedata.LoadQuiz(fsys, e.Name(), locale); err != nil {
				problems = append(problems, err)
			}
		}
	}

	return report, errors.Join(problems...)
}
