package dialogue

import (
	"math/rand"
	"testing"

	"github.com/samdwyer/sagequest/internal/dungeon"
	"github.com/samdwyer/sagequest/internal/npc"
)

func friendly(lines ...string) npc.NPC {
	return npc.NPC{Index: 0, ID: 11, Kind: npc.KindFriendly, Payload: npc.Lines(lines)}
}

func hostile(index int, steps ...npc.Step) npc.NPC {
	return npc.NPC{Index: index, ID: 100 + index, Kind: npc.KindHostile, Payload: npc.Quiz{Steps: steps}}
}

func step(q string, answers ...string) npc.Step {
	return npc.Step{Question: q, Answers: answers}
}

func indexOf(opts []string, want string) int {
	for i, o := range opts {
		if o == want {
			return i
		}
	}
	return -1
}

func TestFriendlyWalksLinesInOrder(t *testing.T) {
	s, res := Open(friendly("one", "two", "three"), nil, rand.New(rand.NewSource(1)))
	if res.Outcome != OutcomeShowing || s == nil {
		t.Fatalf("Expected session to open, got %v", res.Outcome)
	}

	for _, want := range []string{"one", "two", "three"} {
		if s.Text() != want {
			t.Fatalf("Text = %q, want %q", s.Text(), want)
		}
		res = s.Advance()
	}

	if res.Outcome != OutcomeFinished {
		t.Errorf("Expected finished after last line, got %v", res.Outcome)
	}
	if s.IsOpen() {
		t.Error("Expected session closed after last line")
	}
}

func TestFriendlyWithoutLines(t *testing.T) {
	s, res := Open(friendly(), nil, rand.New(rand.NewSource(1)))
	if s != nil || res.Outcome != OutcomeFinished {
		t.Errorf("Expected empty dialogue to finish immediately, got %v", res.Outcome)
	}
}

func TestQuizFlow(t *testing.T) {
	tr := dungeon.NewTracker(1)
	n := hostile(0, step("q1", "a", "b", "c"), step("q2", "x", "y"))

	s, res := Open(n, tr, rand.New(rand.NewSource(7)))
	if res.Outcome != OutcomeShowing {
		t.Fatalf("Expected quiz to open, got %v", res.Outcome)
	}
	if s.Text() != "q1" {
		t.Fatalf("Expected step 0, got %q", s.Text())
	}

	if res := s.Advance(); res.Outcome != OutcomeIncomplete {
		t.Fatalf("Expected incomplete without selection, got %v", res.Outcome)
	}
	if !s.IsOpen() || s.Text() != "q1" {
		t.Fatal("Expected to stay on step 0 after incomplete submit")
	}

	s.Select(indexOf(s.Options(), "a"))
	if res := s.Advance(); res.Outcome != OutcomeShowing {
		t.Fatalf("Expected next step after correct answer, got %v", res.Outcome)
	}
	if s.Text() != "q2" || s.Selected() != -1 {
		t.Fatalf("Expected fresh step 1, got %q selected %d", s.Text(), s.Selected())
	}
	if tr.Defeated(0) {
		t.Fatal("NPC defeated before the last step")
	}

	s.Select(indexOf(s.Options(), "x"))
	res = s.Advance()
	if res.Outcome != OutcomeDefeated || !res.DungeonCleared {
		t.Fatalf("Expected defeat that clears the dungeon, got %+v", res)
	}
	if !tr.Defeated(0) || s.IsOpen() {
		t.Error("Expected NPC defeated and session closed")
	}
}

func TestQuizWrongAnswerEndsSession(t *testing.T) {
	tr := dungeon.NewTracker(2)
	n := hostile(1, step("q1", "right", "wrong"))

	s, _ := Open(n, tr, rand.New(rand.NewSource(3)))
	s.Select(indexOf(s.Options(), "wrong"))
	if res := s.Advance(); res.Outcome != OutcomeWrong {
		t.Fatalf("Expected wrong, got %v", res.Outcome)
	}
	if s.IsOpen() || tr.Defeated(1) {
		t.Error("Expected session closed and NPC alive")
	}

	// A retry starts from step 0 again.
	s, res := Open(n, tr, rand.New(rand.NewSource(3)))
	if res.Outcome != OutcomeShowing || s.Text() != "q1" {
		t.Errorf("Expected retry from step 0, got %v", res.Outcome)
	}
}

func TestAlreadyDefeatedIsRejected(t *testing.T) {
	tr := dungeon.NewTracker(2)
	tr.Defeat(0)

	s, res := Open(hostile(0, step("q", "a")), tr, rand.New(rand.NewSource(1)))
	if s != nil || res.Outcome != OutcomeAlreadyDefeated {
		t.Errorf("Expected already defeated, got %v", res.Outcome)
	}
}

func TestEmptyQuizIsDefeatedOnOpen(t *testing.T) {
	tr := dungeon.NewTracker(1)
	s, res := Open(hostile(0), tr, rand.New(rand.NewSource(1)))
	if s != nil || res.Outcome != OutcomeDefeated || !res.DungeonCleared {
		t.Errorf("Expected empty quiz to be defeated on open, got %+v", res)
	}
}

func TestCancelHasNoSideEffects(t *testing.T) {
	tr := dungeon.NewTracker(1)
	s, _ := Open(hostile(0, step("q", "a", "b")), tr, rand.New(rand.NewSource(1)))
	s.Select(indexOf(s.Options(), "a"))

	if res := s.Cancel(); res.Outcome != OutcomeClosed {
		t.Errorf("Expected closed, got %v", res.Outcome)
	}
	if tr.Defeated(0) || s.IsOpen() {
		t.Error("Cancel should close without defeating")
	}
	if res := s.Advance(); res.Outcome != OutcomeClosed {
		t.Errorf("Advance after cancel = %v, want closed", res.Outcome)
	}
}

func TestShuffleNeverChangesCorrectness(t *testing.T) {
	answers := []string{"correct", "b", "c", "d", "e"}

	for seed := int64(0); seed < 200; seed++ {
		for _, pick := range answers {
			tr := dungeon.NewTracker(1)
			s, _ := Open(hostile(0, step("q", answers...)), tr, rand.New(rand.NewSource(seed)))

			opts := s.Options()
			if len(opts) != len(answers) {
				t.Fatalf("Seed %d: shuffle lost options: %v", seed, opts)
			}
			s.Select(indexOf(opts, pick))
			res := s.Advance()

			if pick == "correct" && res.Outcome != OutcomeDefeated {
				t.Fatalf("Seed %d: correct answer judged %v", seed, res.Outcome)
			}
			if pick != "correct" && res.Outcome != OutcomeWrong {
				t.Fatalf("Seed %d: answer %q judged %v", seed, pick, res.Outcome)
			}
		}
	}
}

func TestCycleWrapsSelection(t *testing.T) {
	s, _ := Open(hostile(0, step("q", "a", "b", "c")), dungeon.NewTracker(1), rand.New(rand.NewSource(1)))

	s.Cycle(1)
	if s.Selected() != 0 {
		t.Fatalf("Expected first cycle to select 0, got %d", s.Selected())
	}
	s.Cycle(-1)
	if s.Selected() != 2 {
		t.Errorf("Expected wrap to 2, got %d", s.Selected())
	}
	s.Cycle(1)
	if s.Selected() != 0 {
		t.Errorf("Expected wrap to 0, got %d", s.Selected())
	}
	if s.Select(3) || s.Selected() != 0 {
		t.Error("Out-of-range select should be ignored")
	}
}

func TestDungeonScenario(t *testing.T) {
	tr := dungeon.NewTracker(3)
	npcs := []npc.NPC{
		hostile(0, step("q0", "a0", "z")),
		hostile(1, step("q1", "a1", "z")),
		hostile(2, step("q2a", "a2", "z"), step("q2b", "b2", "z")),
	}
	rng := rand.New(rand.NewSource(11))

	answer := func(n npc.NPC, picks ...string) Result {
		s, res := Open(n, tr, rng)
		if s == nil {
			return res
		}
		for _, p := range picks {
			s.Select(indexOf(s.Options(), p))
			res = s.Advance()
		}
		return res
	}

	if res := answer(npcs[0], "a0"); res.Outcome != OutcomeDefeated || res.DungeonCleared {
		t.Fatalf("NPC0: %+v", res)
	}
	if res := answer(npcs[1], "z"); res.Outcome != OutcomeWrong {
		t.Fatalf("NPC1 wrong answer: %+v", res)
	}
	if tr.Defeated(1) {
		t.Fatal("NPC1 should still be alive")
	}
	if res := answer(npcs[2], "a2", "b2"); res.Outcome != OutcomeDefeated || res.DungeonCleared {
		t.Fatalf("NPC2: %+v", res)
	}
	if tr.Cleared() {
		t.Fatal("Dungeon should not be cleared while NPC1 is pending")
	}
	if res := answer(npcs[1], "a1"); !res.DungeonCleared {
		t.Fatalf("NPC1 retry should clear the dungeon: %+v", res)
	}
	if res := answer(npcs[0]); res.Outcome != OutcomeAlreadyDefeated || res.DungeonCleared {
		t.Errorf("Revisiting NPC0 should be rejected without a second clear: %+v", res)
	}
}
