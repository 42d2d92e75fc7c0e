// Package tilemap loads Tiled TMX maps into layered tile grids and derives
// the collision mask the player moves against.
package tilemap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png" // tileset images
	"io/fs"
	"path"

	"github.com/lafriks/go-tiled"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/sagequest/internal/telemetry"
)

const (
	// TileSize is the edge length of a tile in map units.
	TileSize = 16

	// CollisionLayer is the reserved name of the layer whose nonzero cells block movement.
	CollisionLayer = "Colisiones"
)

// ErrMalformed is returned when a map resource cannot be parsed.
var ErrMalformed = errors.New("malformed tile map")

// Layer is one named grid of tile ids, indexed [y][x].
type Layer struct {
	Name  string
	Cells [][]int
}

// TilesetRef points at a tileset image and the first global id it owns.
type TilesetRef struct {
	FirstGID int
	Image    string
	Columns  int
}

// Mask is a per-cell blocking grid, indexed [y][x].
type Mask [][]bool

// TileMap is a fully parsed map. It is never mutated after Load returns.
type TileMap struct {
	Path      string
	Width     int
	Height    int
	Layers    []Layer
	Tilesets  []TilesetRef
	Collision Mask
}

// Load parses the TMX map at name. Tilesets are embedded in the map and
// their image paths are resolved relative to the map file; each image must
// exist in fsys. Every call re-reads the resource; no partial map is
// returned on error.
func Load(ctx context.Context, fsys fs.FS, name string) (*TileMap, error) {
	tracer := telemetry.Tracer("tilemap")
	_, span := tracer.Start(ctx, "tilemap.load")
	defer span.End()

	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read map %s: %w", name, err)
	}

	dir := path.Dir(name)
	doc, err := tiled.LoadReader(dir, bytes.NewReader(raw), tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: size %dx%d", ErrMalformed, name, doc.Width, doc.Height)
	}

	m := &TileMap{
		Path:      name,
		Width:     doc.Width,
		Height:    doc.Height,
		Layers:    make([]Layer, 0, len(doc.Layers)),
		Tilesets:  make([]TilesetRef, 0, len(doc.Tilesets)),
		Collision: newMask(doc.Width, doc.Height),
	}

	for _, ts := range doc.Tilesets {
		ref, err := loadTileset(fsys, dir, ts)
		if err != nil {
			return nil, fmt.Errorf("map %s: %w", name, err)
		}
		m.Tilesets = append(m.Tilesets, ref)
	}

	for _, l := range doc.Layers {
		cells, err := layerCells(l, doc.Width, doc.Height)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: layer %q: %v", ErrMalformed, name, l.Name, err)
		}
		layer := Layer{Name: l.Name, Cells: cells}
		m.Collision.or(layer.blocking())
		m.Layers = append(m.Layers, layer)
	}

	span.SetAttributes(
		attribute.String("tilemap.path", name),
		attribute.Int("tilemap.width", m.Width),
		attribute.Int("tilemap.height", m.Height),
		attribute.Int("tilemap.layers", len(m.Layers)),
		attribute.Int("tilemap.tilesets", len(m.Tilesets)),
		attribute.Int("tilemap.blocking_cells", m.Collision.Count()),
	)

	return m, nil
}

// MustLoad loads a map, panicking on error.
// Use this for embedded maps that must be present for the game to function.
func MustLoad(ctx context.Context, fsys fs.FS, name string) *TileMap {
	m, err := Load(ctx, fsys, name)
	if err != nil {
		panic(err)
	}
	return m
}

// loadTileset checks that the tileset image exists and derives its column
// count from the image width.
func loadTileset(fsys fs.FS, dir string, ts *tiled.Tileset) (TilesetRef, error) {
	first := int(ts.FirstGID)
	if first <= 0 {
		return TilesetRef{}, fmt.Errorf("%w: tileset %q: firstgid %d", ErrMalformed, ts.Name, first)
	}
	if ts.Image == nil || ts.Image.Source == "" {
		return TilesetRef{}, fmt.Errorf("%w: tileset %d has no image", ErrMalformed, first)
	}
	imgPath := path.Join(dir, ts.Image.Source)

	f, err := fsys.Open(imgPath)
	if err != nil {
		return TilesetRef{}, fmt.Errorf("failed to open tileset image %s: %w", imgPath, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return TilesetRef{}, fmt.Errorf("%w: tileset image %s: %v", ErrMalformed, imgPath, err)
	}
	cols := cfg.Width / TileSize
	if cols == 0 {
		return TilesetRef{}, fmt.Errorf("%w: tileset image %s narrower than one tile", ErrMalformed, imgPath)
	}

	return TilesetRef{FirstGID: first, Image: imgPath, Columns: cols}, nil
}

// layerCells turns the decoded layer tiles back into global ids, row-major.
func layerCells(l *tiled.Layer, width, height int) ([][]int, error) {
	if len(l.Tiles) != width*height {
		return nil, fmt.Errorf("expected %d tiles, got %d", width*height, len(l.Tiles))
	}

	cells := make([][]int, height)
	for y := range cells {
		cells[y] = make([]int, width)
		for x := range cells[y] {
			t := l.Tiles[y*width+x]
			if t == nil || t.Nil || t.Tileset == nil {
				continue
			}
			cells[y][x] = int(t.Tileset.FirstGID + t.ID)
		}
	}
	return cells, nil
}

// blocking returns the layer's own collision grid: a cell blocks when the
// layer is the collision layer and holds a nonzero id.
func (l Layer) blocking() Mask {
	grid := make(Mask, len(l.Cells))
	isCollision := l.Name == CollisionLayer
	for y, row := range l.Cells {
		grid[y] = make([]bool, len(row))
		if !isCollision {
			continue
		}
		for x, id := range row {
			grid[y][x] = id != 0
		}
	}
	return grid
}

func newMask(width, height int) Mask {
	m := make(Mask, height)
	for y := range m {
		m[y] = make([]bool, width)
	}
	return m
}

func (m Mask) or(other Mask) {
	for y := range m {
		for x := range m[y] {
			m[y][x] = m[y][x] || other[y][x]
		}
	}
}

// Count returns the number of blocking cells.
func (m Mask) Count() int {
	n := 0
	for _, row := range m {
		for _, b := range row {
			if b {
				n++
			}
		}
	}
	return n
}

// InBounds reports whether the cell lies inside the map.
func (m *TileMap) InBounds(cx, cy int) bool {
	return cx >= 0 && cx < m.Width && cy >= 0 && cy < m.Height
}

// Blocked reports whether the cell cannot be entered. Cells outside the map block.
func (m *TileMap) Blocked(cx, cy int) bool {
	if !m.InBounds(cx, cy) {
		return true
	}
	return m.Collision[cy][cx]
}

// CellAt converts a camera offset into fractional cell coordinates. Each map
// unit spans two screen units, so a cell is 32 offset units wide.
func (m *TileMap) CellAt(offsetX, offsetY int) (float64, float64) {
	span := float64(TileSize * 2)
	cx := float64(m.Width*TileSize-offsetX) / span
	cy := float64(m.Height*TileSize-offsetY) / span
	return cx, cy
}

// OffsetOf is the inverse of CellAt for whole cells.
func (m *TileMap) OffsetOf(cx, cy int) (int, int) {
	return m.Width*TileSize - cx*TileSize*2, m.Height*TileSize - cy*TileSize*2
}

// Layer returns the layer with the given name.
func (m *TileMap) Layer(name string) (Layer, bool) {
	for _, l := range m.Layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// TopTile returns the id of the topmost non-collision layer with a tile at
// the cell, or 0 when the cell is empty.
func (m *TileMap) TopTile(cx, cy int) int {
	if !m.InBounds(cx, cy) {
		return 0
	}
	for i := len(m.Layers) - 1; i >= 0; i-- {
		l := m.Layers[i]
		if l.Name == CollisionLayer {
			continue
		}
		if id := l.Cells[cy][cx]; id != 0 {
			return id
		}
	}
	return 0
}
