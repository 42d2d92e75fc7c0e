package ui

import (
	"fmt"

	"github.com/samdwyer/sagequest/internal/game"
	"github.com/samdwyer/sagequest/internal/interaction"
	"github.com/samdwyer/sagequest/internal/notify"
	"github.com/samdwyer/sagequest/internal/npc"
)

// HintText describes the action available for a hint, or "" when idle.
func HintText(h interaction.Hint) string {
	switch h.Trigger {
	case interaction.TriggerHouse:
		return "[E] Enter the house"
	case interaction.TriggerHouseExit:
		return "[E] Leave the house"
	case interaction.TriggerNPC:
		if h.NPCKind == npc.KindFriendly {
			return "[E] Talk"
		}
		return "[E] Accept the challenge"
	case interaction.TriggerDungeonEntrance:
		return "[E] Enter the dungeon"
	case interaction.TriggerDungeonGate:
		return "[E] Return to the village"
	case interaction.TriggerDungeonExit:
		return "[E] Take the stairs to the next level"
	default:
		return ""
	}
}

// BannerText is the message shown for a notice.
func BannerText(n notify.Notice, snap game.Snapshot) string {
	switch n {
	case notify.NoticeWelcome:
		return fmt.Sprintf("Welcome, %s! Your %s journey begins.", snap.UserName, snap.Track)
	case notify.NoticeSaving:
		return "Saving..."
	case notify.NoticeDefeated:
		return "Opponent defeated!"
	case notify.NoticeLevelCleared:
		return "Dungeon cleared! The exit is open."
	case notify.NoticeWrongAnswer:
		return "Wrong answer. Try again."
	case notify.NoticeIncomplete:
		return "Choose an answer first."
	case notify.NoticeAlreadyDefeated:
		return "You already beat this one."
	case notify.NoticeGameComplete:
		return fmt.Sprintf("Congratulations %s, you completed the %s track!", snap.UserName, snap.Track)
	default:
		return ""
	}
}

func placeName(snap game.Snapshot) string {
	switch snap.Place {
	case interaction.PlaceHouse:
		return "House"
	case interaction.PlaceDungeon:
		return fmt.Sprintf("Dungeon %d/%d", snap.Defeated, snap.Opponents)
	default:
		return "Village"
	}
}
