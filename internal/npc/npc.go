// Package npc builds the non-player characters of a level: friendly
// villagers with linear dialogue and hostile or boss bugs with quizzes.
package npc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samdwyer/sagequest/internal/entity"
)

// ErrUnknownKind is returned when a kind token is not recognised.
var ErrUnknownKind = errors.New("unknown npc kind")

// Kind classifies an NPC's behaviour.
type Kind int

const (
	// KindFriendly NPCs talk through a fixed list of lines.
	KindFriendly Kind = iota
	// KindHostile NPCs guard a dungeon with a quiz.
	KindHostile
	// KindBoss is the hostile NPC of the final level's dungeon.
	KindBoss
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindFriendly:
		return "friendly"
	case KindHostile:
		return "hostile"
	case KindBoss:
		return "boss"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind token into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "friendly":
		return KindFriendly, nil
	case "hostile":
		return KindHostile, nil
	case "boss":
		return KindBoss, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Quizzed reports whether NPCs of this kind carry a quiz.
func (k Kind) Quizzed() bool {
	return k == KindHostile || k == KindBoss
}

// Payload is the dialogue content of an NPC: Lines or Quiz.
type Payload interface {
	payload()
}

// Lines is the ordered dialogue of a friendly NPC.
type Lines []string

func (Lines) payload() {}

// Step is one quiz question. Answers[0] is the correct answer.
type Step struct {
	Question string
	Answers  []string
}

// Correct returns the correct answer text.
func (s Step) Correct() string {
	if len(s.Answers) == 0 {
		return ""
	}
	return s.Answers[0]
}

// IsCorrect judges an answer by content, independent of display order.
func (s Step) IsCorrect(answer string) bool {
	return len(s.Answers) > 0 && answer == s.Answers[0]
}

// Quiz is the ordered question list of a hostile or boss NPC.
type Quiz struct {
	Steps []Step
}

func (Quiz) payload() {}

// NPC is one roster entry. X and Y are camera offsets like the player's.
type NPC struct {
	Index   int
	ID      int
	Kind    Kind
	X, Y    int
	Skin    int
	Payload Payload
	Anim    entity.Animation
}

// Position returns the NPC's anchor.
func (n NPC) Position() (int, int) {
	return n.X, n.Y
}
