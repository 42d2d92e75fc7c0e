package tilemap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/samdwyer/sagequest/data"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func tmx(width, height string, layers ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<map width="` + width + `" height="` + height + `" tilewidth="16" tileheight="16">` + "\n")
	b.WriteString(tileset("1", "ground", 64, 32))
	b.WriteString(tileset("9", "walls", 32, 32))
	size := `<layer width="` + width + `" height="` + height + `" `
	for _, l := range layers {
		b.WriteString(strings.Replace(l, "<layer ", size, 1))
	}
	b.WriteString("</map>\n")
	return b.String()
}

func tileset(firstGID, name string, w, h int) string {
	return fmt.Sprintf(` <tileset firstgid="%s" name="%s" tilewidth="16" tileheight="16" tilecount="%d" columns="%d">`+
		`<image source="sets/%s.png" width="%d" height="%d"/></tileset>`+"\n",
		firstGID, name, (w/16)*(h/16), w/16, name, w, h)
}

func layer(name, csv string) string {
	return ` <layer name="` + name + `"><data encoding="csv">` + csv + "</data></layer>\n"
}

func fixture(t *testing.T, doc string) fstest.MapFS {
	t.Helper()
	return fstest.MapFS{
		"maps/test.tmx":        {Data: []byte(doc)},
		"maps/sets/ground.png": {Data: pngBytes(t, 64, 32)},
		"maps/sets/walls.png":  {Data: pngBytes(t, 32, 32)},
	}
}

func TestLoadParsesLayersAndTilesets(t *testing.T) {
	doc := tmx("3", "2",
		layer("Suelo", "1,2,3,\n4,5,6"),
		layer(CollisionLayer, "0,9,0,\n0,0,10"),
	)
	m, err := Load(context.Background(), fixture(t, doc), "maps/test.tmx")
	if err != nil {
		t.Fatalf("Failed to load map: %v", err)
	}

	if m.Width != 3 || m.Height != 2 {
		t.Fatalf("Expected 3x2 map, got %dx%d", m.Width, m.Height)
	}
	if len(m.Layers) != 2 {
		t.Fatalf("Expected 2 layers, got %d", len(m.Layers))
	}
	if got := m.Layers[0].Cells[1][2]; got != 6 {
		t.Errorf("Expected Suelo[1][2] = 6, got %d", got)
	}

	if len(m.Tilesets) != 2 {
		t.Fatalf("Expected 2 tilesets, got %d", len(m.Tilesets))
	}
	if m.Tilesets[0].Image != "maps/sets/ground.png" {
		t.Errorf("Expected image path relative to map, got %q", m.Tilesets[0].Image)
	}
	if m.Tilesets[0].Columns != 4 || m.Tilesets[1].Columns != 2 {
		t.Errorf("Unexpected columns: %d, %d", m.Tilesets[0].Columns, m.Tilesets[1].Columns)
	}
}

func TestCollisionMaskMatchesCollisionLayer(t *testing.T) {
	doc := tmx("3", "2",
		layer("Suelo", "1,2,3,4,5,6"),
		layer("Decorado", "9,9,9,9,9,9"),
		layer(CollisionLayer, "0,9,0,0,0,10"),
	)
	m, err := Load(context.Background(), fixture(t, doc), "maps/test.tmx")
	if err != nil {
		t.Fatalf("Failed to load map: %v", err)
	}

	coll, _ := m.Layer(CollisionLayer)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			want := coll.Cells[y][x] != 0
			if m.Collision[y][x] != want {
				t.Errorf("Mask at (%d,%d) = %v, want %v", x, y, m.Collision[y][x], want)
			}
		}
	}
	if m.Collision.Count() != 2 {
		t.Errorf("Expected 2 blocking cells, got %d", m.Collision.Count())
	}
}

func TestCollisionMaskAccumulatesAcrossLayers(t *testing.T) {
	doc := tmx("2", "2",
		layer(CollisionLayer, "9,0,0,0"),
		layer("Suelo", "1,1,1,1"),
		layer(CollisionLayer, "0,0,0,9"),
	)
	m, err := Load(context.Background(), fixture(t, doc), "maps/test.tmx")
	if err != nil {
		t.Fatalf("Failed to load map: %v", err)
	}
	if !m.Collision[0][0] || !m.Collision[1][1] {
		t.Error("Expected both collision layers to contribute to the mask")
	}
	if m.Collision[0][1] || m.Collision[1][0] {
		t.Error("Expected untouched cells to stay walkable")
	}
}

func TestEmptyCollisionLayerGivesEmptyMask(t *testing.T) {
	doc := tmx("2", "2",
		layer("Suelo", "1,2,3,4"),
		layer(CollisionLayer, "0,0,0,0"),
	)
	m, err := Load(context.Background(), fixture(t, doc), "maps/test.tmx")
	if err != nil {
		t.Fatalf("Failed to load map: %v", err)
	}
	if m.Collision.Count() != 0 {
		t.Errorf("Expected no blocking cells, got %d", m.Collision.Count())
	}
}

func TestLoadRejectsMalformedMaps(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"non-numeric width", tmx("abc", "2", layer("Suelo", "1,2,3,4"))},
		{"zero height", tmx("2", "0", layer("Suelo", ""))},
		{"non-numeric tile", tmx("2", "2", layer("Suelo", "1,x,3,4"))},
		{"short layer", tmx("2", "2", layer("Suelo", "1,2,3"))},
		{"long layer", tmx("2", "2", layer("Suelo", "1,2,3,4,5"))},
		{"not xml", "this is not a map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Load(context.Background(), fixture(t, tt.doc), "maps/test.tmx")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", err)
			}
			if m != nil {
				t.Error("Expected no partial map on error")
			}
		})
	}
}

func TestLoadMissingResources(t *testing.T) {
	fsys := fstest.MapFS{
		"maps/test.tmx": {Data: []byte(tmx("1", "1", layer("Suelo", "1")))},
	}

	if _, err := Load(context.Background(), fsys, "maps/absent.tmx"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist for missing map, got %v", err)
	}
	if _, err := Load(context.Background(), fsys, "maps/test.tmx"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist for missing tileset image, got %v", err)
	}
}

func TestLoadRejectsTilesetWithoutImage(t *testing.T) {
	doc := `<map width="1" height="1" tilewidth="16" tileheight="16">` +
		`<tileset firstgid="1" name="bare" tilewidth="16" tileheight="16" tilecount="1" columns="1"></tileset>` +
		layer("Suelo", "1") + `</map>`
	if _, err := Load(context.Background(), fixture(t, doc), "maps/test.tmx"); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
}

func TestLoadRejectsUndecodableTileset(t *testing.T) {
	fsys := fixture(t, tmx("1", "1", layer("Suelo", "1")))
	fsys["maps/sets/walls.png"] = &fstest.MapFile{Data: []byte("not a png")}

	if _, err := Load(context.Background(), fsys, "maps/test.tmx"); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
}

func TestBlockedOutOfBounds(t *testing.T) {
	m := &TileMap{Width: 2, Height: 2, Collision: newMask(2, 2)}
	m.Collision[0][1] = true

	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, false},
		{1, 0, true},
		{-1, 0, true},
		{0, 2, true},
		{2, 1, true},
	}
	for _, tt := range tests {
		if got := m.Blocked(tt.x, tt.y); got != tt.want {
			t.Errorf("Blocked(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestCellAtRoundTrip(t *testing.T) {
	m := &TileMap{Width: 40, Height: 30}

	cx, cy := m.CellAt(0, 0)
	if cx != 20 || cy != 15 {
		t.Errorf("CellAt(0,0) = (%v,%v), want (20,15)", cx, cy)
	}

	x, y := m.OffsetOf(7, 4)
	cx, cy = m.CellAt(x, y)
	if cx != 7 || cy != 4 {
		t.Errorf("CellAt(OffsetOf(7,4)) = (%v,%v)", cx, cy)
	}
}

func TestEmbeddedMapsLoad(t *testing.T) {
	names := []string{
		"maps/overworld.tmx",
		"maps/house_small.tmx",
		"maps/house_large.tmx",
		"maps/dungeon1.tmx",
		"maps/dungeon2.tmx",
		"maps/dungeon3.tmx",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			m, err := Load(context.Background(), data.FS(), name)
			if err != nil {
				t.Fatalf("Failed to load %s: %v", name, err)
			}
			if m.Collision.Count() == 0 {
				t.Error("Expected embedded map to have collision cells")
			}
			for x := 0; x < m.Width; x++ {
				if !m.Blocked(x, 0) {
					t.Errorf("Expected border cell (%d,0) to block", x)
				}
			}
		})
	}
}

func TestResolvePicksOwningTileset(t *testing.T) {
	sets := []TilesetRef{
		{FirstGID: 1, Image: "terrain.png", Columns: 8},
		{FirstGID: 50, Image: "props.png", Columns: 4},
		{FirstGID: 120, Image: "collision.png", Columns: 2},
	}

	tests := []struct {
		id     int
		image  string
		ox, oy int
		ok     bool
	}{
		{0, "", 0, 0, false},
		{1, "terrain.png", 0, 0, true},
		{10, "terrain.png", 16, 16, true},
		{49, "terrain.png", 0, 96, true},
		{50, "props.png", 0, 0, true},
		{75, "props.png", 16, 96, true},
		{121, "collision.png", 16, 0, true},
	}
	for _, tt := range tests {
		ref, ox, oy, ok := Resolve(tt.id, sets)
		if ok != tt.ok || ref.Image != tt.image || ox != tt.ox || oy != tt.oy {
			t.Errorf("Resolve(%d) = %q (%d,%d) %v, want %q (%d,%d) %v",
				tt.id, ref.Image, ox, oy, ok, tt.image, tt.ox, tt.oy, tt.ok)
		}
	}

	if _, _, _, ok := Resolve(5, []TilesetRef{{FirstGID: 10, Columns: 2}}); ok {
		t.Error("Expected ids below every tileset to be unresolved")
	}
}
