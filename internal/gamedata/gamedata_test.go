package gamedata

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/samdwyer/sagequest/data"
)

func TestLoadEmbeddedLocations(t *testing.T) {
	cfg, err := LoadLocations(data.FS(), LocationsFile)
	if err != nil {
		t.Fatalf("Failed to load locations: %v", err)
	}

	if len(cfg.Levels) != 3 {
		t.Fatalf("Expected 3 levels, got %d", len(cfg.Levels))
	}

	first := cfg.Levels[0]
	if first.Dungeon == nil || len(first.Dungeon.NPCs) != 3 {
		t.Fatalf("Expected level 1 dungeon with 3 npcs")
	}
	if first.Dungeon.Exit == nil {
		t.Error("Expected level 1 dungeon to have an exit")
	}

	last := cfg.Levels[len(cfg.Levels)-1]
	if last.Dungeon == nil || last.Dungeon.Exit != nil {
		t.Error("Expected final level dungeon without an exit")
	}
}

func TestLocationValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  LocationConfig
	}{
		{"no levels", LocationConfig{}},
		{"gap in numbering", LocationConfig{Levels: []LevelRecord{{Level: 1}, {Level: 3}}}},
		{"starts at zero", LocationConfig{Levels: []LevelRecord{{Level: 0}}}},
		{"duplicate house", LocationConfig{Levels: []LevelRecord{{
			Level:  1,
			Houses: []HouseRecord{{ID: 1, Size: "small"}, {ID: 1, Size: "large"}},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestLoadEmbeddedTracks(t *testing.T) {
	for _, locale := range []string{"en", "es"} {
		lines, err := LoadDialogue(data.FS(), "python", locale)
		if err != nil {
			t.Fatalf("Failed to load %s dialogue: %v", locale, err)
		}
		if len(lines[1]) == 0 {
			t.Errorf("Expected %s dialogue for npc 1", locale)
		}

		quiz, err := LoadQuiz(data.FS(), "python", locale)
		if err != nil {
			t.Fatalf("Failed to load %s quiz: %v", locale, err)
		}
		if q, ok := quiz[103]; !ok || len(q.Question) != 2 {
			t.Errorf("Expected %s quiz for npc 103 with 2 steps", locale)
		}
	}
}

func TestLoadQuizRejectsMismatchedSteps(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"more questions", `[{"npcId":1,"question":["a","b"],"answers":[["x"]]}]`},
		{"empty options", `[{"npcId":1,"question":["a"],"answers":[[]]}]`},
		{"duplicate npc", `[{"npcId":1,"question":[],"answers":[]},{"npcId":1,"question":[],"answers":[]}]`},
		{"not json", `{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				QuizPath("demo", "en"): {Data: []byte(tt.body)},
			}
			if _, err := LoadQuiz(fsys, "demo", "en"); !errors.Is(err, ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestLoadMissingTrack(t *testing.T) {
	if _, err := LoadDialogue(data.FS(), "cobol", "en"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
	if _, err := LoadDialogue(data.FS(), "../python", "en"); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed for path-like track, got %v", err)
	}
}

func TestMustLoadPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected MustLoad to panic on missing file")
		}
	}()
	MustLoad[LocationConfig](fstest.MapFS{}, "absent.json")
}
