package ui

import (
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/samdwyer/sagequest/internal/game"
	"github.com/samdwyer/sagequest/internal/npc"
	"github.com/samdwyer/sagequest/internal/tilemap"
)

// Renderer handles drawing game snapshots to the screen. One terminal cell
// shows one map cell.
type Renderer struct {
	screen  *Screen
	palette Palette
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen, palette Palette) *Renderer {
	return &Renderer{screen: screen, palette: palette}
}

// Render draws one frame.
func (r *Renderer) Render(snap game.Snapshot) {
	r.screen.Clear()
	w, h := r.screen.Size()
	if w <= 0 || h < 3 {
		r.screen.Show()
		return
	}

	// Row 0 is the status line and the last row the hint line.
	r.drawMap(snap, 0, 1, w, h-2)
	r.drawStatus(snap, w)
	r.drawBanners(snap, w)
	r.screen.DrawText(0, h-1, w, HintText(snap.Hint), r.palette.Hint)

	if snap.Dialogue != nil {
		r.drawDialogue(*snap.Dialogue, w, h)
	}
	if snap.Mode == game.ModePaused {
		msg := " PAUSED "
		r.screen.DrawText((w-len(msg))/2, h/2, w, msg, r.palette.Banner)
	}

	r.screen.Show()
}

// cellOf converts an offset to the map cell it falls in.
func cellOf(m *tilemap.TileMap, x, y int) (int, int) {
	cx, cy := m.CellAt(x, y)
	return int(math.Floor(cx)), int(math.Floor(cy))
}

// drawMap draws the map into the rectangle at (left, top), centred on the
// player.
func (r *Renderer) drawMap(snap game.Snapshot, left, top, w, h int) {
	m := snap.Map
	if m == nil || h <= 0 {
		return
	}

	pcx, pcy := cellOf(m, snap.PlayerX, snap.PlayerY)
	originX, originY := pcx-w/2, pcy-h/2
	toScreen := func(cx, cy int) (int, int, bool) {
		sx, sy := cx-originX, cy-originY
		return left + sx, top + sy, sx >= 0 && sx < w && sy >= 0 && sy < h
	}

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			cx, cy := originX+sx, originY+sy
			if !m.InBounds(cx, cy) {
				continue
			}
			glyph, style := r.tileGlyph(m, cx, cy)
			r.screen.SetContent(left+sx, top+sy, glyph, style)
		}
	}

	for _, n := range snap.NPCs {
		cx, cy := cellOf(m, n.X, n.Y)
		if sx, sy, ok := toScreen(cx, cy); ok {
			glyph, style := r.npcGlyph(n)
			r.screen.SetContent(sx, sy, glyph, style)
		}
	}

	if sx, sy, ok := toScreen(pcx, pcy); ok {
		glyph := '@'
		if snap.Moving && snap.Frame == 1 {
			glyph = 'a'
		}
		r.screen.SetContent(sx, sy, glyph, r.palette.Player)
	}
}

func (r *Renderer) tileGlyph(m *tilemap.TileMap, cx, cy int) (rune, tcell.Style) {
	if m.Blocked(cx, cy) {
		return '#', r.palette.Wall
	}
	ref, _, _, ok := m.Resolve(m.TopTile(cx, cy))
	if !ok {
		return '.', r.palette.Ground
	}
	switch strings.TrimSuffix(path.Base(ref.Image), path.Ext(ref.Image)) {
	case "props":
		return '"', r.palette.Prop
	default:
		return '.', r.palette.Ground
	}
}

func (r *Renderer) npcGlyph(n game.NPCView) (rune, tcell.Style) {
	if n.Defeated {
		return 'x', r.palette.Defeated
	}
	switch n.Kind {
	case npc.KindBoss:
		return 'B', r.palette.Boss
	case npc.KindHostile:
		return 'b', r.palette.Hostile
	default:
		return 'N', r.palette.Friendly
	}
}

func (r *Renderer) drawStatus(snap game.Snapshot, w int) {
	level := fmt.Sprintf("Level %d/%d", snap.Level, snap.LevelCount)
	if snap.Level > snap.LevelCount {
		level = "Completed"
	}
	status := fmt.Sprintf(" %s | %s | %s | %s", snap.UserName, snap.Track, level, placeName(snap))
	r.screen.Fill(0, 0, w, 1, r.palette.Panel)
	r.screen.DrawText(0, 0, w, status, r.palette.Panel)
}

// drawBanners stacks banners under the status line, newest last.
func (r *Renderer) drawBanners(snap game.Snapshot, w int) {
	for i, b := range snap.Banners {
		text := " " + BannerText(b.Notice, snap) + " "
		x := w - runewidth.StringWidth(text)
		if x < 0 {
			x = 0
		}
		r.screen.DrawText(x, 1+i, w, text, r.palette.Banner)
	}
}

// drawDialogue draws the dialogue panel across the bottom of the screen.
func (r *Renderer) drawDialogue(d game.DialogueView, w, h int) {
	inner := w - 4
	if inner < 10 {
		return
	}

	lines := wrap(d.Text, inner)
	for i, opt := range d.Options {
		marker := "  "
		if i == d.Selected {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%d) %s", marker, i+1, opt))
	}

	footer := "[Enter] Next  [Esc] Close"
	if d.Quizzed {
		footer = fmt.Sprintf("Question %d/%d  [1-9/Tab] Choose  [Enter] Answer  [Esc] Leave", d.Step+1, d.Steps)
	}

	height := len(lines) + 3
	if height > h-2 {
		height = h - 2
	}
	top := h - 1 - height
	r.screen.Fill(0, top, w, height, r.palette.Panel)

	row := top + 1
	textRows := len(lines) - len(d.Options)
	for i, line := range lines {
		if row >= top+height-1 {
			break
		}
		style := r.palette.Panel
		if i >= textRows && i-textRows == d.Selected {
			style = r.palette.Selected
		}
		r.screen.DrawText(2, row, w-2, line, style)
		row++
	}
	r.screen.DrawText(2, top+height-1, w-2, footer, r.palette.Panel)
}

// wrap breaks text into lines no wider than width cells.
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		ww := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+ww > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += ww
	}
	if lineWidth > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
