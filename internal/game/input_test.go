package game

import (
	"sync"
	"testing"

	"github.com/samdwyer/sagequest/internal/entity"
)

func TestInputLastWriterWins(t *testing.T) {
	in := NewInput(3)
	in.Select(2)
	in.Select(0)
	in.SelectNext()
	in.SelectPrev()

	f := in.consume()
	if f.Select != -1 || f.Cycle != -1 {
		t.Errorf("Expected last write (prev) to win, got select %d cycle %d", f.Select, f.Cycle)
	}

	in.SelectNext()
	in.Select(1)
	f = in.consume()
	if f.Select != 1 || f.Cycle != 0 {
		t.Errorf("Expected select 1 to win, got select %d cycle %d", f.Select, f.Cycle)
	}
}

func TestInputEdgesAreConsumedOnce(t *testing.T) {
	in := NewInput(1)
	in.Interact()
	in.Confirm()
	in.Cancel()

	f := in.consume()
	if !f.Interact || !f.Confirm || !f.Cancel {
		t.Fatalf("Expected all edges set, got %+v", f)
	}
	f = in.consume()
	if f.Interact || f.Confirm || f.Cancel || f.Select != -1 {
		t.Errorf("Expected edges cleared, got %+v", f)
	}
}

func TestInputTapHoldsForKeyHoldTicks(t *testing.T) {
	in := NewInput(3)
	in.Tap(entity.DirLeft)

	for i := 0; i < 3; i++ {
		if f := in.consume(); !f.Keys.Left {
			t.Fatalf("Expected left held on tick %d", i)
		}
	}
	if f := in.consume(); f.Keys.Any() {
		t.Errorf("Expected tap released after 3 ticks, got %+v", f.Keys)
	}
}

func TestInputTapReplacesOtherTaps(t *testing.T) {
	in := NewInput(5)
	in.Tap(entity.DirUp)
	in.Tap(entity.DirRight)

	f := in.consume()
	if f.Keys.Up || !f.Keys.Right {
		t.Errorf("Expected only right held, got %+v", f.Keys)
	}
}

func TestInputHoldUntilReleased(t *testing.T) {
	in := NewInput(1)
	in.Hold(entity.DirDown, true)
	for i := 0; i < 5; i++ {
		if !in.consume().Keys.Down {
			t.Fatalf("Expected down held on tick %d", i)
		}
	}
	in.Hold(entity.DirDown, false)
	if in.consume().Keys.Down {
		t.Error("Expected down released")
	}
}

func TestInputConcurrentWriters(t *testing.T) {
	in := NewInput(2)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				in.Tap(entity.Direction(g))
				in.Select(i % 4)
				in.Interact()
			}
		}(g)
	}
	for i := 0; i < 200; i++ {
		in.consume()
	}
	wg.Wait()
}
