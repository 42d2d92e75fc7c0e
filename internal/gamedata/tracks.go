package gamedata

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// DialogueEntry is the ordered dialogue of one friendly NPC.
type DialogueEntry struct {
	NPCID int      `json:"npcId"`
	Lines []string `json:"lines"`
}

// QuizEntry holds the quiz of one hostile NPC. Question[i] pairs with
// Answers[i], and the first option of each answer list is the correct one.
type QuizEntry struct {
	NPCID    int        `json:"npcId"`
	Question []string   `json:"question"`
	Answers  [][]string `json:"answers"`
}

// DialoguePath returns the dialogue resource path of a language track.
func DialoguePath(track, locale string) string {
	return path.Join("tracks", track, fmt.Sprintf("%s_%s.json", track, locale))
}

// QuizPath returns the quiz resource path of a language track.
func QuizPath(track, locale string) string {
	return path.Join("tracks", track, fmt.Sprintf("%s_quiz_%s.json", track, locale))
}

// LoadDialogue reads the dialogue resource of a track, keyed by NPC id.
func LoadDialogue(fsys fs.FS, track, locale string) (map[int][]string, error) {
	if err := checkTrack(track); err != nil {
		return nil, err
	}
	name := DialoguePath(track, locale)
	entries, err := Load[[]DialogueEntry](fsys, name)
	if err != nil {
		return nil, err
	}

	byID := make(map[int][]string, len(entries))
	for _, e := range entries {
		if _, dup := byID[e.NPCID]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate npc %d", ErrMalformed, name, e.NPCID)
		}
		byID[e.NPCID] = e.Lines
	}
	return byID, nil
}

// LoadQuiz reads the quiz resource of a track, keyed by NPC id.
func LoadQuiz(fsys fs.FS, track, locale string) (map[int]QuizEntry, error) {
	if err := checkTrack(track); err != nil {
		return nil, err
	}
	name := QuizPath(track, locale)
	entries, err := Load[[]QuizEntry](fsys, name)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]QuizEntry, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if _, dup := byID[e.NPCID]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate npc %d", ErrMalformed, name, e.NPCID)
		}
		byID[e.NPCID] = e
	}
	return byID, nil
}

// Validate rejects quizzes whose questions and answer lists do not pair up.
func (q QuizEntry) Validate() error {
	if len(q.Question) != len(q.Answers) {
		return fmt.Errorf("%w: npc %d has %d questions and %d answer lists",
			ErrMalformed, q.NPCID, len(q.Question), len(q.Answers))
	}
	for i, opts := range q.Answers {
		if len(opts) == 0 {
			return fmt.Errorf("%w: npc %d step %d has no answers", ErrMalformed, q.NPCID, i)
		}
	}
	return nil
}

func checkTrack(track string) error {
	if track == "" || strings.ContainsAny(track, "/\\.") {
		return fmt.Errorf("%w: invalid language track %q", ErrMalformed, track)
	}
	return nil
}
