// Package dialogue runs conversations with NPCs: friendly NPCs step
// through their lines, hostile and boss NPCs quiz the player.
package dialogue

import (
	"math/rand"

	"github.com/samdwyer/sagequest/internal/dungeon"
	"github.com/samdwyer/sagequest/internal/npc"
)

// Outcome is the user-facing result of a dialogue call.
type Outcome int

const (
	// OutcomeShowing means the session is open and shows a line or question.
	OutcomeShowing Outcome = iota
	// OutcomeFinished means a friendly NPC ran out of lines.
	OutcomeFinished
	// OutcomeClosed means the player cancelled.
	OutcomeClosed
	// OutcomeIncomplete means confirm was pressed with no answer selected.
	OutcomeIncomplete
	// OutcomeWrong means the selected answer was wrong and the session ended.
	OutcomeWrong
	// OutcomeDefeated means the last question was answered and the NPC is defeated.
	OutcomeDefeated
	// OutcomeAlreadyDefeated means the NPC was defeated earlier and no session opened.
	OutcomeAlreadyDefeated
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeShowing:
		return "showing"
	case OutcomeFinished:
		return "finished"
	case OutcomeClosed:
		return "closed"
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeWrong:
		return "wrong"
	case OutcomeDefeated:
		return "defeated"
	case OutcomeAlreadyDefeated:
		return "already defeated"
	default:
		return "unknown"
	}
}

// Result reports what a dialogue call did. DungeonCleared is set only on
// the call whose defeat completed the dungeon.
type Result struct {
	Outcome        Outcome
	DungeonCleared bool
}

// Session is an open conversation with one NPC.
type Session struct {
	npc      npc.NPC
	tracker  *dungeon.Tracker
	rng      *rand.Rand
	lines    npc.Lines
	quiz     npc.Quiz
	quizzed  bool
	pos      int
	options  []string
	selected int
	open     bool
}

// Open starts a conversation. Quizzed NPCs that the tracker already marks
// defeated are rejected. The returned session is nil when nothing opened.
func Open(n npc.NPC, tracker *dungeon.Tracker, rng *rand.Rand) (*Session, Result) {
	s := &Session{npc: n, tracker: tracker, rng: rng, selected: -1, open: true}

	switch p := n.Payload.(type) {
	case npc.Quiz:
		if tracker.Defeated(n.Index) {
			return nil, Result{Outcome: OutcomeAlreadyDefeated}
		}
		s.quiz = p
		s.quizzed = true
		if len(p.Steps) == 0 {
			return nil, s.defeat()
		}
		s.shuffle()
	case npc.Lines:
		s.lines = p
		if len(p) == 0 {
			return nil, Result{Outcome: OutcomeFinished}
		}
	default:
		return nil, Result{Outcome: OutcomeFinished}
	}

	return s, Result{Outcome: OutcomeShowing}
}

// NPC returns the NPC being talked to.
func (s *Session) NPC() npc.NPC {
	return s.npc
}

// IsOpen reports whether the session still accepts input.
func (s *Session) IsOpen() bool {
	return s != nil && s.open
}

// Quizzed reports whether this is a quiz session.
func (s *Session) Quizzed() bool {
	return s.quizzed
}

// Text returns the current line or question.
func (s *Session) Text() string {
	if s.quizzed {
		return s.quiz.Steps[s.pos].Question
	}
	return s.lines[s.pos]
}

// Position returns the current step and the total number of steps.
func (s *Session) Position() (int, int) {
	if s.quizzed {
		return s.pos, len(s.quiz.Steps)
	}
	return s.pos, len(s.lines)
}

// Options returns the current answers in display order.
func (s *Session) Options() []string {
	out := make([]string, len(s.options))
	copy(out, s.options)
	return out
}

// Selected returns the selected option index, or -1.
func (s *Session) Selected() int {
	return s.selected
}

// Select chooses an answer by display index.
func (s *Session) Select(i int) bool {
	if !s.open || !s.quizzed || i < 0 || i >= len(s.options) {
		return false
	}
	s.selected = i
	return true
}

// Cycle moves the selection by delta, wrapping around the options.
func (s *Session) Cycle(delta int) {
	if !s.open || !s.quizzed || len(s.options) == 0 {
		return
	}
	n := len(s.options)
	if s.selected < 0 {
		if delta >= 0 {
			s.selected = 0
		} else {
			s.selected = n - 1
		}
		return
	}
	s.selected = ((s.selected+delta)%n + n) % n
}

// Advance handles a confirm press.
func (s *Session) Advance() Result {
	if !s.open {
		return Result{Outcome: OutcomeClosed}
	}
	if !s.quizzed {
		s.pos++
		if s.pos >= len(s.lines) {
			s.open = false
			return Result{Outcome: OutcomeFinished}
		}
		return Result{Outcome: OutcomeShowing}
	}

	if s.selected < 0 {
		return Result{Outcome: OutcomeIncomplete}
	}
	if !s.quiz.Steps[s.pos].IsCorrect(s.options[s.selected]) {
		s.open = false
		return Result{Outcome: OutcomeWrong}
	}

	s.pos++
	if s.pos >= len(s.quiz.Steps) {
		s.open = false
		return s.defeat()
	}
	s.shuffle()
	return Result{Outcome: OutcomeShowing}
}

// Cancel ends the session without side effects.
func (s *Session) Cancel() Result {
	s.open = false
	return Result{Outcome: OutcomeClosed}
}

func (s *Session) defeat() Result {
	cleared := s.tracker.Defeat(s.npc.Index)
	return Result{Outcome: OutcomeDefeated, DungeonCleared: cleared}
}

// shuffle lays out the current step's answers in a fresh random order and
// clears the selection.
func (s *Session) shuffle() {
	answers := s.quiz.Steps[s.pos].Answers
	s.options = make([]string, len(answers))
	copy(s.options, answers)
	s.rng.Shuffle(len(s.options), func(i, j int) {
		s.options[i], s.options[j] = s.options[j], s.options[i]
	})
	s.selected = -1
}
