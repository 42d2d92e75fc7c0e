// Package entity provides the player character and the per-entity
// animation state shared by everything that walks.
package entity

import (
	"math"

	"github.com/samdwyer/sagequest/internal/tilemap"
)

// Speed is the number of offset units the player moves per tick.
const Speed = 2

// Direction is a movement or facing direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// Keys is the held state of the four movement keys for one tick.
type Keys struct {
	Up, Down, Left, Right bool
}

// Any reports whether a movement key is held.
func (k Keys) Any() bool {
	return k.Up || k.Down || k.Left || k.Right
}

// Player is the player character. X and Y are the camera offset of the
// map, so moving up increases Y and moving left increases X.
type Player struct {
	X, Y   int
	Level  int
	Facing Direction
	Moving bool
	Anim   Animation
}

// NewPlayer creates a player at the given offset, facing the camera.
func NewPlayer(x, y, level int) *Player {
	return &Player{
		X:      x,
		Y:      y,
		Level:  level,
		Facing: DirDown,
		Anim:   NewAnimation(),
	}
}

// Position returns the current offset.
func (p *Player) Position() (int, int) {
	return p.X, p.Y
}

// MoveTo places the player at an offset.
func (p *Player) MoveTo(x, y int) {
	p.X = x
	p.Y = y
}

// Step applies one tick of movement against the map's collision mask.
// Only one direction is honoured per tick, in the order up, down, left,
// right. The facing and animation advance even when the move is blocked.
// It returns whether the offset changed.
func (p *Player) Step(m *tilemap.TileMap, keys Keys) bool {
	p.Moving = keys.Any()
	if !p.Moving {
		return false
	}

	cx, cy := m.CellAt(p.X, p.Y)
	moved := false

	switch {
	case keys.Up:
		tx, ty := int(math.Floor(cx)), int(math.Floor(cy))-1
		if ty >= 2 && !m.Blocked(tx, ty) {
			p.Y += Speed
			moved = true
		}
		p.Facing = DirUp
	case keys.Down:
		tx, ty := int(math.Floor(cx)), int(math.Floor(cy))+1
		if ty < m.Height-2 && !m.Blocked(tx, ty) {
			p.Y -= Speed
			moved = true
		}
		p.Facing = DirDown
	case keys.Left:
		tx, ty := int(math.Ceil(cx))-1, int(math.Floor(cy+0.5))
		if tx >= 2 && !m.Blocked(tx, ty) {
			p.X += Speed
			moved = true
		}
		p.Facing = DirLeft
	case keys.Right:
		tx, ty := int(math.Ceil(cx))+1, int(math.Floor(cy+0.5))
		if tx < m.Width-1 && !m.Blocked(tx, ty) {
			p.X -= Speed
			moved = true
		}
		p.Facing = DirRight
	}

	p.Anim.Advance()
	return moved
}
