package game

import (
	"sync"

	"github.com/samdwyer/sagequest/internal/entity"
)

// Frame is the input consumed by one tick.
type Frame struct {
	Keys     entity.Keys
	Interact bool
	Confirm  bool
	Cancel   bool
	Pause    bool
	Quit     bool
	// Select is the chosen option index, or -1.
	Select int
	// Cycle is -1, 0 or 1.
	Cycle int
}

// Input collects key state from capture goroutines for the loop to read
// once per tick. Edges are not queued: the last write before a tick wins.
type Input struct {
	mu       sync.Mutex
	keyHold  int
	held     [4]bool
	tapped   [4]int
	interact bool
	confirm  bool
	cancel   bool
	pause    bool
	quit     bool
	selected int
	cycle    int
}

// NewInput creates an input where a tapped key stays held for keyHold ticks.
func NewInput(keyHold int) *Input {
	if keyHold < 1 {
		keyHold = 1
	}
	return &Input{keyHold: keyHold, selected: -1}
}

// Hold sets the held state of a movement key, for front ends that report
// key releases.
func (in *Input) Hold(d entity.Direction, down bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.held[d] = down
}

// Tap holds a movement key for the configured number of ticks and releases
// any other tapped key.
func (in *Input) Tap(d entity.Direction) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.tapped = [4]int{}
	in.tapped[d] = in.keyHold
}

// Interact requests the transition of the current hint.
func (in *Input) Interact() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.interact = true
}

// Confirm advances the open dialogue.
func (in *Input) Confirm() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.confirm = true
}

// Cancel closes the open dialogue.
func (in *Input) Cancel() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.cancel = true
}

// Pause toggles the paused mode.
func (in *Input) Pause() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pause = true
}

// Quit asks the loop to stop.
func (in *Input) Quit() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.quit = true
}

// Select chooses an answer option by display index.
func (in *Input) Select(i int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.selected = i
	in.cycle = 0
}

// SelectNext moves the answer selection forward.
func (in *Input) SelectNext() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.cycle = 1
	in.selected = -1
}

// SelectPrev moves the answer selection back.
func (in *Input) SelectPrev() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.cycle = -1
	in.selected = -1
}

// consume returns the state for one tick, clears edges and counts down
// tapped keys.
func (in *Input) consume() Frame {
	in.mu.Lock()
	defer in.mu.Unlock()

	var down [4]bool
	for d := range in.tapped {
		down[d] = in.held[d] || in.tapped[d] > 0
		if in.tapped[d] > 0 {
			in.tapped[d]--
		}
	}

	f := Frame{
		Keys: entity.Keys{
			Up:    down[entity.DirUp],
			Down:  down[entity.DirDown],
			Left:  down[entity.DirLeft],
			Right: down[entity.DirRight],
		},
		Interact: in.interact,
		Confirm:  in.confirm,
		Cancel:   in.cancel,
		Pause:    in.pause,
		Quit:     in.quit,
		Select:   in.selected,
		Cycle:    in.cycle,
	}

	in.interact, in.confirm, in.cancel, in.pause, in.quit = false, false, false, false, false
	in.selected = -1
	in.cycle = 0
	return f
}
