package menu

import "github.com/korjavin/dinnerboard/pkg/models"

// settingsDishNames maps the dish names the settings form uses for allergy
// targets to the names used on the board
var settingsDishNames = map[string]string{
	"吸物":     "吸物",
	"果菜盛":    "果菜盛",
	"蒸物":     "蒸物",
	"揚物":     "揚物",
	"煮物":     "煮物",
	"飯":      "ご飯",
	"ご飯":     "ご飯",
	"甘味":     "甘味",
	"ステーキ":   "ステーキ",
	"しゃぶしゃぶ": "しゃぶしゃぶ",
	"茶碗蒸し":   "茶碗蒸し",
	"牛たたき":   "牛たたき",
	"焼物":     "焼物",
	"小鉢":     "小鉢",
	"フライ":    "フライ",
	"すき焼き":   "すき焼き",
	"単品ステーキ": "単品ステーキ",
}

// AllergyNotes returns the allergen names of the room that apply to dish,
// in roster order
func AllergyNotes(room models.RoomSlot, dish string) []string {
	var notes []string
	for _, a := range room.Allergies {
		for _, target := range a.Targets {
			if settingsDishNames[target] == dish {
				notes = append(notes, a.Name)
			}
		}
	}
	return notes
}
