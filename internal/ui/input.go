package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/sagequest/internal/entity"
)

// Controls receives player commands. *game.Input implements it.
type Controls interface {
	Tap(d entity.Direction)
	Interact()
	Confirm()
	Cancel()
	Pause()
	Quit()
	Select(i int)
	SelectNext()
	SelectPrev()
}

// Capture forwards key events to c until the screen is closed. Run it on
// its own goroutine.
func (s *Screen) Capture(c Controls) {
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			HandleKey(ev, c)
		case *tcell.EventResize:
			s.Sync()
		}
	}
}

// HandleKey maps one key event onto a command. Terminals report no key
// releases, so movement keys are taps.
func HandleKey(ev *tcell.EventKey, c Controls) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		c.Quit()
	case tcell.KeyEscape:
		c.Cancel()
	case tcell.KeyEnter:
		c.Confirm()
	case tcell.KeyTab:
		c.SelectNext()
	case tcell.KeyBacktab:
		c.SelectPrev()
	case tcell.KeyUp:
		c.Tap(entity.DirUp)
	case tcell.KeyDown:
		c.Tap(entity.DirDown)
	case tcell.KeyLeft:
		c.Tap(entity.DirLeft)
	case tcell.KeyRight:
		c.Tap(entity.DirRight)

	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case 'w', 'W':
			c.Tap(entity.DirUp)
		case 's', 'S':
			c.Tap(entity.DirDown)
		case 'a', 'A':
			c.Tap(entity.DirLeft)
		case 'd', 'D':
			c.Tap(entity.DirRight)
		case 'e', 'E':
			c.Interact()
		case ' ':
			c.Confirm()
		case 'p', 'P':
			c.Pause()
		case 'q', 'Q':
			c.Quit()
		default:
			if r >= '1' && r <= '9' {
				c.Select(int(r - '1'))
			}
		}
	}
}
