package dungeon

import "testing"

func TestTrackerClearsExactlyOnce(t *testing.T) {
	const n = 4
	tr := NewTracker(n)

	for i := 0; i < n-1; i++ {
		if tr.Defeat(i) {
			t.Fatalf("Defeat(%d) reported clear with %d NPCs left", i, n-1-i)
		}
		if tr.Cleared() {
			t.Fatalf("Tracker cleared after %d of %d defeats", i+1, n)
		}
	}

	if !tr.Defeat(n - 1) {
		t.Fatal("Expected final defeat to report clear")
	}
	if !tr.Cleared() {
		t.Fatal("Expected tracker to be cleared")
	}

	for i := 0; i < n; i++ {
		if tr.Defeat(i) {
			t.Errorf("Defeat(%d) after clear reported clear again", i)
		}
	}
}

func TestTrackerStarted(t *testing.T) {
	tr := NewTracker(2)
	if tr.Started() {
		t.Error("Fresh tracker should not be started")
	}
	tr.Defeat(1)
	if !tr.Started() {
		t.Error("Tracker with a defeat should be started")
	}
	if !tr.Defeated(1) || tr.Defeated(0) {
		t.Errorf("Unexpected flags: %v", tr.Snapshot())
	}
	if tr.Count() != 1 {
		t.Errorf("Expected count 1, got %d", tr.Count())
	}
}

func TestTrackerOutOfRange(t *testing.T) {
	tr := NewTracker(1)
	if tr.Defeat(-1) || tr.Defeat(1) {
		t.Error("Out-of-range defeat should be ignored")
	}
	if tr.Started() {
		t.Error("Out-of-range defeat should not start the tracker")
	}
}

func TestNilTracker(t *testing.T) {
	var tr *Tracker
	if tr.Started() || tr.Cleared() || tr.Defeated(0) || tr.Defeat(0) {
		t.Error("Nil tracker should read as not started")
	}
	if tr.Size() != 0 || tr.Snapshot() != nil {
		t.Error("Nil tracker should be empty")
	}
}
