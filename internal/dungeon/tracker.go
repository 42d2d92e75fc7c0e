// Package dungeon tracks which quiz NPCs of a dungeon attempt are defeated.
package dungeon

// Tracker holds one defeat flag per dungeon NPC. A nil *Tracker reads as
// an attempt that has not started.
type Tracker struct {
	defeated []bool
}

// NewTracker creates an all-false tracker for n NPCs.
func NewTracker(n int) *Tracker {
	return &Tracker{defeated: make([]bool, n)}
}

// Size returns the number of NPCs tracked.
func (t *Tracker) Size() int {
	if t == nil {
		return 0
	}
	return len(t.defeated)
}

// Defeated reports whether NPC i is defeated.
func (t *Tracker) Defeated(i int) bool {
	if t == nil || i < 0 || i >= len(t.defeated) {
		return false
	}
	return t.defeated[i]
}

// Defeat marks NPC i defeated. It returns true only on the call that
// completes the dungeon; repeated or out-of-range calls return false.
func (t *Tracker) Defeat(i int) bool {
	if t == nil || i < 0 || i >= len(t.defeated) || t.defeated[i] {
		return false
	}
	t.defeated[i] = true
	return t.Cleared()
}

// Cleared reports whether every NPC is defeated.
func (t *Tracker) Cleared() bool {
	if t == nil {
		return false
	}
	for _, d := range t.defeated {
		if !d {
			return false
		}
	}
	return true
}

// Started reports whether at least one NPC is defeated.
func (t *Tracker) Started() bool {
	return t.Count() > 0
}

// Count returns the number of defeated NPCs.
func (t *Tracker) Count() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, d := range t.defeated {
		if d {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the flags.
func (t *Tracker) Snapshot() []bool {
	if t == nil {
		return nil
	}
	out := make([]bool, len(t.defeated))
	copy(out, t.defeated)
	return out
}
