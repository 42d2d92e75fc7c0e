// Package interaction detects which location or NPC the player is standing
// next to and performs the matching transition when the player interacts.
package interaction

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/sagequest/internal/location"
	"github.com/samdwyer/sagequest/internal/npc"
	"github.com/samdwyer/sagequest/internal/telemetry"
)

const (
	// AnchorRange is the per-axis distance under which a location anchor triggers.
	AnchorRange = 20
	// NPCRange is the per-axis distance under which an NPC triggers.
	NPCRange = 40
)

// Trigger is the proximity state of the player, in priority order.
type Trigger int

const (
	TriggerIdle Trigger = iota
	TriggerHouse
	TriggerHouseExit
	TriggerNPC
	TriggerDungeonEntrance
	TriggerDungeonGate
	TriggerDungeonExit
)

// String returns a human-readable trigger name.
func (t Trigger) String() string {
	switch t {
	case TriggerIdle:
		return "idle"
	case TriggerHouse:
		return "house"
	case TriggerHouseExit:
		return "house exit"
	case TriggerNPC:
		return "npc"
	case TriggerDungeonEntrance:
		return "dungeon entrance"
	case TriggerDungeonGate:
		return "dungeon gate"
	case TriggerDungeonExit:
		return "dungeon exit"
	default:
		return "unknown"
	}
}

// Place is the kind of map the player is on.
type Place int

const (
	PlaceOverworld Place = iota
	PlaceHouse
	PlaceDungeon
)

// String returns a human-readable place name.
func (p Place) String() string {
	switch p {
	case PlaceOverworld:
		return "overworld"
	case PlaceHouse:
		return "house"
	case PlaceDungeon:
		return "dungeon"
	default:
		return "unknown"
	}
}

// Hint describes what the player could interact with right now.
type Hint struct {
	Trigger   Trigger
	Place     Place
	HouseID   int
	HouseSize location.HouseSize
	NPC       int
	NPCKind   npc.Kind
}

// Host performs the world changes a transition needs. Every method must
// leave the world untouched when it returns an error.
type Host interface {
	EnterHouse(ctx context.Context, house location.House) error
	EnterOverworld(ctx context.Context, at location.Point) error
	EnterDungeon(ctx context.Context, gate location.Point) error
	TalkTo(ctx context.Context, index int) (opened bool, err error)
	// LevelUp advances to the next level and places the player on its
	// spawn, which it returns.
	LevelUp(ctx context.Context) (spawn location.Point, err error)
	Persist(ctx context.Context) error
}

// Controller is the proximity state machine. It is driven by a single
// goroutine and is not safe for concurrent use.
type Controller struct {
	registry  *location.Registry
	host      Host
	place     Place
	house     location.House
	reentry   location.Point
	x, y      int
	talking   bool
	finalDoor bool
}

// NewController creates a controller with the player on the overworld.
func NewController(registry *location.Registry, host Host) *Controller {
	return &Controller{
		registry: registry,
		host:     host,
		place:    PlaceOverworld,
	}
}

// Update records the player's offset and returns the hint to publish.
// It never changes the world.
func (c *Controller) Update(x, y int) Hint {
	c.x, c.y = x, y
	return c.evaluate()
}

// Interact performs the transition of the current trigger. It is a no-op
// while a dialogue is open.
func (c *Controller) Interact(ctx context.Context) (Trigger, error) {
	if c.talking {
		return TriggerIdle, nil
	}

	h := c.evaluate()
	if h.Trigger == TriggerIdle {
		return TriggerIdle, nil
	}

	tracer := telemetry.Tracer("interaction")
	ctx, span := tracer.Start(ctx, "interaction.interact")
	defer span.End()
	span.SetAttributes(
		attribute.String("interaction.trigger", h.Trigger.String()),
		attribute.String("interaction.place", c.place.String()),
		attribute.Int("interaction.level", c.registry.Level()),
	)

	err := c.perform(ctx, h)
	if err != nil {
		span.RecordError(err)
	}
	return h.Trigger, err
}

func (c *Controller) perform(ctx context.Context, h Hint) error {
	here := location.Point{X: c.x, Y: c.y}

	switch h.Trigger {
	case TriggerHouse:
		house, _ := c.registry.House(h.HouseID)
		if err := c.host.EnterHouse(ctx, house); err != nil {
			return err
		}
		c.reentry = here
		c.place = PlaceHouse
		c.house = house

	case TriggerHouseExit, TriggerDungeonGate:
		if err := c.host.EnterOverworld(ctx, c.reentry); err != nil {
			return err
		}
		c.place = PlaceOverworld
		c.house = location.House{}

	case TriggerNPC:
		opened, err := c.host.TalkTo(ctx, h.NPC)
		if err != nil {
			return err
		}
		c.talking = opened

	case TriggerDungeonEntrance:
		d := c.registry.Dungeon()
		if err := c.host.EnterDungeon(ctx, d.Gate); err != nil {
			return err
		}
		c.reentry = here
		c.place = PlaceDungeon

	case TriggerDungeonExit:
		spawn, err := c.host.LevelUp(ctx)
		if err != nil {
			return err
		}
		c.reentry = spawn
		c.finalDoor = false
		c.place = PlaceOverworld
		return c.host.Persist(ctx)
	}
	return nil
}

// evaluate finds the highest-priority trigger for the recorded offset.
func (c *Controller) evaluate() Hint {
	h := Hint{Trigger: TriggerIdle, Place: c.place, NPC: -1}
	d := c.registry.Dungeon()

	if c.place == PlaceOverworld {
		for _, house := range c.registry.Houses() {
			if near(c.x, c.y, house.Anchor, AnchorRange) {
				h.Trigger = TriggerHouse
				h.HouseID = house.ID
				h.HouseSize = house.Size
				return h
			}
		}
	}

	if c.place == PlaceHouse && near(c.x, c.y, c.house.Size.ExitAnchor(), AnchorRange) {
		h.Trigger = TriggerHouseExit
		h.HouseID = c.house.ID
		h.HouseSize = c.house.Size
		return h
	}

	if !c.talking {
		for i, n := range c.registry.NPCs() {
			if near(c.x, c.y, location.Point{X: n.X, Y: n.Y}, NPCRange) {
				h.Trigger = TriggerNPC
				h.NPC = i
				h.NPCKind = n.Kind
				return h
			}
		}
	}

	if d == nil {
		return h
	}

	if c.place == PlaceOverworld && near(c.x, c.y, d.Entrance, AnchorRange) {
		h.Trigger = TriggerDungeonEntrance
		return h
	}

	if c.place != PlaceDungeon {
		return h
	}

	if near(c.x, c.y, d.Gate, AnchorRange) {
		h.Trigger = TriggerDungeonGate
		return h
	}

	if c.finalDoor && d.Exit != nil && near(c.x, c.y, *d.Exit, AnchorRange) {
		h.Trigger = TriggerDungeonExit
	}
	return h
}

// Release re-enables proximity triggers after a dialogue ends.
func (c *Controller) Release() {
	c.talking = false
}

// Talking reports whether a dialogue currently suppresses triggers.
func (c *Controller) Talking() bool {
	return c.talking
}

// EnableFinalDoor opens or closes the dungeon's final exit.
func (c *Controller) EnableFinalDoor(enabled bool) {
	c.finalDoor = enabled
}

// FinalDoor reports whether the dungeon's final exit is open.
func (c *Controller) FinalDoor() bool {
	return c.finalDoor
}

// Place returns the kind of map the player is on.
func (c *Controller) Place() Place {
	return c.place
}

// House returns the house the player is in, if any.
func (c *Controller) House() (location.House, bool) {
	return c.house, c.place == PlaceHouse
}

// Reentry returns the overworld offset the player returns to when leaving
// the current house or dungeon.
func (c *Controller) Reentry() location.Point {
	return c.reentry
}

func near(x, y int, anchor location.Point, limit int) bool {
	return abs(x-anchor.X) < limit && abs(y-anchor.Y) < limit
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
