package game

import (
	"github.com/samdwyer/sagequest/internal/entity"
	"github.com/samdwyer/sagequest/internal/interaction"
	"github.com/samdwyer/sagequest/internal/notify"
	"github.com/samdwyer/sagequest/internal/npc"
	"github.com/samdwyer/sagequest/internal/tilemap"
)

// NPCView is an NPC as drawn in one frame.
type NPCView struct {
	Index    int      `json:"index"`
	ID       int      `json:"id"`
	Kind     npc.Kind `json:"kind"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Skin     int      `json:"skin"`
	Frame    int      `json:"frame"`
	Defeated bool     `json:"defeated"`
}

// DialogueView is the open dialogue panel.
type DialogueView struct {
	NPCID    int      `json:"npcId"`
	Kind     npc.Kind `json:"kind"`
	Quizzed  bool     `json:"quizzed"`
	Text     string   `json:"text"`
	Step     int      `json:"step"`
	Steps    int      `json:"steps"`
	Options  []string `json:"options,omitempty"`
	Selected int      `json:"selected"`
}

// Snapshot is a copy of what a renderer needs for one frame. Map is shared
// and must not be modified.
type Snapshot struct {
	Tick       uint64            `json:"tick"`
	Mode       Mode              `json:"mode"`
	UserName   string            `json:"user"`
	Track      string            `json:"track"`
	Level      int               `json:"level"`
	LevelCount int               `json:"levelCount"`
	Place      interaction.Place `json:"place"`
	MapName    string            `json:"map"`
	Map        *tilemap.TileMap  `json:"-"`

	PlayerX int              `json:"x"`
	PlayerY int              `json:"y"`
	Facing  entity.Direction `json:"facing"`
	Moving  bool             `json:"moving"`
	Frame   int              `json:"frame"`

	NPCs      []NPCView        `json:"npcs"`
	Hint      interaction.Hint `json:"hint"`
	Banners   []notify.Banner  `json:"banners"`
	Dialogue  *DialogueView    `json:"dialogue,omitempty"`
	Defeated  int              `json:"defeated"`
	Opponents int              `json:"opponents"`
	FinalDoor bool             `json:"finalDoor"`
}

// Snapshot copies the state a renderer needs.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:       s.tick,
		Mode:       s.mode,
		UserName:   s.record.UserName,
		Track:      s.record.LanguageTrack,
		Level:      s.player.Level,
		LevelCount: s.registry.LevelCount(),
		Place:      s.controller.Place(),
		MapName:    s.mapName,
		Map:        s.current,
		PlayerX:    s.player.X,
		PlayerY:    s.player.Y,
		Facing:     s.player.Facing,
		Moving:     s.player.Moving,
		Frame:      s.player.Anim.Frame(),
		Hint:       s.board.Hint(),
		Banners:    s.board.Banners(),
		Defeated:   s.tracker.Count(),
		Opponents:  s.tracker.Size(),
		FinalDoor:  s.controller.FinalDoor(),
	}

	inDungeon := snap.Place == interaction.PlaceDungeon
	roster := s.registry.NPCs()
	snap.NPCs = make([]NPCView, len(roster))
	for i, n := range roster {
		snap.NPCs[i] = NPCView{
			Index:    n.Index,
			ID:       n.ID,
			Kind:     n.Kind,
			X:        n.X,
			Y:        n.Y,
			Skin:     n.Skin,
			Frame:    n.Anim.Frame(),
			Defeated: inDungeon && s.tracker.Defeated(n.Index),
		}
	}

	if s.talk.IsOpen() {
		step, steps := s.talk.Position()
		n := s.talk.NPC()
		snap.Dialogue = &DialogueView{
			NPCID:    n.ID,
			Kind:     n.Kind,
			Quizzed:  s.talk.Quizzed(),
			Text:     s.talk.Text(),
			Step:     step,
			Steps:    steps,
			Options:  s.talk.Options(),
			Selected: s.talk.Selected(),
		}
	}
	return snap
}
