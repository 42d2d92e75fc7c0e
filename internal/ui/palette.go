package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Palette holds the styles the renderer draws with.
type Palette struct {
	Wall     tcell.Style
	Ground   tcell.Style
	Prop     tcell.Style
	Player   tcell.Style
	Friendly tcell.Style
	Hostile  tcell.Style
	Boss     tcell.Style
	Defeated tcell.Style
	Text     tcell.Style
	Hint     tcell.Style
	Banner   tcell.Style
	Panel    tcell.Style
	Selected tcell.Style
}

// DefaultPalette returns the built-in colours.
func DefaultPalette() Palette {
	base := tcell.StyleDefault.Background(tcell.ColorBlack)
	return Palette{
		Wall:     base.Foreground(tcell.ColorDarkGray),
		Ground:   base.Foreground(tcell.ColorDarkGreen),
		Prop:     base.Foreground(tcell.ColorOlive),
		Player:   base.Foreground(tcell.ColorYellow).Bold(true),
		Friendly: base.Foreground(tcell.ColorAqua),
		Hostile:  base.Foreground(tcell.ColorRed),
		Boss:     base.Foreground(tcell.ColorFuchsia).Bold(true),
		Defeated: base.Foreground(tcell.ColorGray),
		Text:     base.Foreground(tcell.ColorWhite),
		Hint:     base.Foreground(tcell.ColorLightGreen),
		Banner:   base.Foreground(tcell.ColorBlack).Background(tcell.ColorGold),
		Panel:    tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite),
		Selected: tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorNavy),
	}
}

// WithOverrides returns a copy of p with foreground colours replaced by
// hex values keyed by style name ("wall", "player", ...).
func (p Palette) WithOverrides(colors map[string]string) (Palette, error) {
	slots := map[string]*tcell.Style{
		"wall":     &p.Wall,
		"ground":   &p.Ground,
		"prop":     &p.Prop,
		"player":   &p.Player,
		"friendly": &p.Friendly,
		"hostile":  &p.Hostile,
		"boss":     &p.Boss,
		"defeated": &p.Defeated,
		"text":     &p.Text,
		"hint":     &p.Hint,
	}
	for name, hex := range colors {
		slot, ok := slots[strings.ToLower(name)]
		if !ok {
			return p, fmt.Errorf("unknown palette entry %q", name)
		}
		color, err := ParseHexColor(hex)
		if err != nil {
			return p, fmt.Errorf("palette entry %q: %w", name, err)
		}
		*slot = slot.Foreground(color)
	}
	return p, nil
}

// ParseHexColor converts a hex color string (e.g., "#FF0000" or "FF0000") to a tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	hex = strings.TrimPrefix(hex, "#")

	if len(hex) != 6 {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color length: %s", hex)
	}

	r, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid red component in %s: %w", hex, err)
	}

	g, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid green component in %s: %w", hex, err)
	}

	b, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid blue component in %s: %w", hex, err)
	}

	return tcell.NewRGBColor(int32(r), int32(g), int32(b)), nil
}
