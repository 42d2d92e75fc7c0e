// Package game provides the main game loop and the session that owns all
// world state while the game runs.
package game

// Mode represents the current game mode.
type Mode int

const (
	// ModePlaying is the normal mode where the player walks and interacts.
	ModePlaying Mode = iota
	// ModePaused freezes the world until unpaused.
	ModePaused
	// ModeCompleted is reached after the last dungeon is cleared.
	ModeCompleted
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModePlaying:
		return "playing"
	case ModePaused:
		return "paused"
	case ModeCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
