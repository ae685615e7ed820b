// Package menu resolves the ordered dish sequence each room serves tonight.
package menu

import (
	"github.com/korjavin/dinnerboard/pkg/models"
)

// Dish names that carry behaviour elsewhere
const (
	DishKanamori   = "果菜盛"
	DishShabushabu = "しゃぶしゃぶ"
	DishNimono     = "煮物"
	DishSteak      = "ステーキ"
	DishGohan      = "ご飯"
	DishAmami      = "甘味"
)

// DefaultDishes is served when a room has no plan or an unknown one
var DefaultDishes = []string{"吸物", "刺身", "蒸物", "揚物", "煮物", "飯", "甘味"}

// Plans maps a plan name to its base dish list
var Plans = map[string][]string{
	"スタンダード": {"吸物", "果菜盛", "蒸物", "揚物", "煮物", "ご飯", "甘味"},
	"和牛懐石":   {"吸物", "果菜盛", "すき焼き", "フライ", "ステーキ", "ご飯", "甘味"},
	"ステーキ":   {"吸物", "果菜盛", "蒸物", "揚物", "ステーキ", "ご飯", "甘味"},
	"しゃぶしゃぶ": {"吸物", "果菜盛", "しゃぶしゃぶ", "蒸物", "揚物", "ご飯", "甘味"},
	"連泊":     {"茶碗蒸し", "牛たたき", "焼物", "小鉢", "揚物", "ご飯", "甘味"},
}

// anchors maps an extra-dish position label to the dish it is inserted before
var anchors = map[string]string{
	"果菜盛の前": "果菜盛",
	"蒸物の前":  "蒸物",
	"揚物の前":  "揚物",
	"煮物の前":  "煮物",
	"御飯の前":  "ご飯",
	"甘味の前":  "甘味",
}

// Positions lists the accepted extra-dish position labels
func Positions() []string {
	return []string{"果菜盛の前", "蒸物の前", "揚物の前", "煮物の前", "御飯の前", "甘味の前"}
}

// BaseDishes returns a copy of the plan's dish list
func BaseDishes(plan string) []string {
	base, ok := Plans[plan]
	if !ok {
		base = DefaultDishes
	}
	return append([]string(nil), base...)
}

// Resolve returns the dishes the room serves tonight: the plan's base list
// with every extra dish targeting the room spliced in before its anchor.
//
// Rules are applied last to first, each inserted immediately before the
// anchor's current index, so rules [A, B] on the same anchor end up as
// A, B, anchor. Rules with missing fields, another room, or an anchor the
// list does not contain are skipped.
func Resolve(plan string, rules []models.ExtraDish, room string) []string {
	result := BaseDishes(plan)

	for i := len(rules) - 1; i >= 0; i-- {
		rule := rules[i]
		if !rule.Targets(room) {
			continue
		}
		if rule.Name == "" || rule.Position == "" {
			continue
		}

		anchor, ok := anchors[rule.Position]
		if !ok {
			continue
		}
		idx := indexOf(result, anchor)
		if idx < 0 {
			continue
		}

		result = append(result, "")
		copy(result[idx+1:], result[idx:])
		result[idx] = rule.Name
	}

	return result
}

// IsExtra reports whether dish was added by one of the rules rather than
// coming from a plan
func IsExtra(dish string, rules []models.ExtraDish) bool {
	for _, r := range rules {
		if r.Name == dish {
			return true
		}
	}
	return false
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
