// Package notify holds what the player is told: the proximity hint of the
// current tick and transient banners that expire after a number of ticks.
package notify

import (
	"time"

	"github.com/samdwyer/sagequest/internal/interaction"
)

// Notice identifies a banner message.
type Notice int

const (
	NoticeWelcome Notice = iota
	NoticeSaving
	NoticeDefeated
	NoticeLevelCleared
	NoticeWrongAnswer
	NoticeIncomplete
	NoticeAlreadyDefeated
	NoticeGameComplete
)

// String returns the notice key.
func (n Notice) String() string {
	switch n {
	case NoticeWelcome:
		return "welcome"
	case NoticeSaving:
		return "saving"
	case NoticeDefeated:
		return "defeated"
	case NoticeLevelCleared:
		return "level_cleared"
	case NoticeWrongAnswer:
		return "wrong_answer"
	case NoticeIncomplete:
		return "incomplete"
	case NoticeAlreadyDefeated:
		return "already_defeated"
	case NoticeGameComplete:
		return "game_complete"
	default:
		return "unknown"
	}
}

// Duration is how long the banner stays up. Zero means until cleared.
func (n Notice) Duration() time.Duration {
	switch n {
	case NoticeWelcome:
		return 7 * time.Second
	case NoticeSaving:
		return 2 * time.Second
	case NoticeDefeated, NoticeIncomplete, NoticeAlreadyDefeated:
		return 3 * time.Second
	case NoticeLevelCleared, NoticeWrongAnswer:
		return 5 * time.Second
	default:
		return 0
	}
}

// Banner is a posted notice. Expires is the tick it disappears on, or 0.
type Banner struct {
	Notice  Notice
	Posted  uint64
	Expires uint64
}

// Board is owned by the game loop; expiry is evaluated on Tick so no
// timer goroutine touches it.
type Board struct {
	tickRate int
	tick     uint64
	hint     interaction.Hint
	banners  []Banner
}

// NewBoard creates a board for a loop running at tickRate ticks per second.
func NewBoard(tickRate int) *Board {
	return &Board{tickRate: tickRate}
}

// SetHint replaces the current proximity hint.
func (b *Board) SetHint(h interaction.Hint) {
	b.hint = h
}

// Hint returns the current proximity hint.
func (b *Board) Hint() interaction.Hint {
	return b.hint
}

// Post shows a banner. Posting a notice that is already up restarts it.
func (b *Board) Post(n Notice) {
	banner := Banner{Notice: n, Posted: b.tick}
	if d := n.Duration(); d > 0 {
		ticks := uint64(d.Seconds() * float64(b.tickRate))
		if ticks == 0 {
			ticks = 1
		}
		banner.Expires = b.tick + ticks
	}

	for i := range b.banners {
		if b.banners[i].Notice == n {
			b.banners[i] = banner
			return
		}
	}
	b.banners = append(b.banners, banner)
}

// Tick advances the board clock and drops expired banners.
func (b *Board) Tick() {
	b.tick++
	kept := b.banners[:0]
	for _, banner := range b.banners {
		if banner.Expires == 0 || banner.Expires > b.tick {
			kept = append(kept, banner)
		}
	}
	b.banners = kept
}

// Clear removes every banner.
func (b *Board) Clear() {
	b.banners = nil
}

// Banners returns the visible banners, oldest first.
func (b *Board) Banners() []Banner {
	out := make([]Banner, len(b.banners))
	copy(out, b.banners)
	return out
}

// Showing reports whether a notice is currently visible.
func (b *Board) Showing(n Notice) bool {
	for _, banner := range b.banners {
		if banner.Notice == n {
			return true
		}
	}
	return false
}
