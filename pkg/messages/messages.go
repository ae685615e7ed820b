// Package messages renders the board, the kitchen queue and prompts as
// chat text.
package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/course"
	"github.com/korjavin/dinnerboard/pkg/kitchen"
	"github.com/korjavin/dinnerboard/pkg/menu"
	"github.com/korjavin/dinnerboard/pkg/models"
	"github.com/korjavin/dinnerboard/pkg/roomprefs"
)

// Notes provides the per-room speed and memo shown in room headers
type Notes interface {
	Speed(group, room string) roomprefs.Speed
	Memo(group, room string) string
}

// RoomHeader is the first line of a room view
func RoomHeader(room models.RoomSlot, notes Notes) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏮 %s %s（%d名）", room.Dinner, room.Name, room.Guests())
	if room.Plan != "" {
		fmt.Fprintf(&sb, " %s", room.Plan)
	}
	if room.Cake {
		sb.WriteString(" 🎂")
	}
	if room.Plate {
		sb.WriteString(" 🍽")
	}
	if notes != nil {
		fmt.Fprintf(&sb, "\n速度: %s", notes.Speed(room.Dinner, room.Name).Label())
		if memo := notes.Memo(room.Dinner, room.Name); memo != "" {
			fmt.Fprintf(&sb, "\n📝 %s", memo)
		}
	}
	return sb.String()
}

// CellLine renders one dish of a room with its status and side data
func CellLine(room models.RoomSlot, rules []models.ExtraDish, b *board.Board, col int, dish string, now time.Time) string {
	cell := board.Cell{Group: room.Dinner, Room: room.Name, Col: col}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d. %s [%s]", col+1, dish, b.Status(cell))
	if countdown, ok := course.Countdown(b, cell, now); ok {
		fmt.Fprintf(&sb, " ⏱%s", countdown)
	}
	if n, ok := b.Welldone(cell); ok && n > 0 {
		fmt.Fprintf(&sb, " W×%d名", n)
	}
	if name, ok := b.Staff(cell); ok && name != "" {
		fmt.Fprintf(&sb, " 👤%s", name)
	}
	for _, allergen := range menu.AllergyNotes(room, dish) {
		fmt.Fprintf(&sb, " ⚠️%sNG", allergen)
	}
	if menu.IsExtra(dish, rules) {
		sb.WriteString(" ＋追加")
	}
	return sb.String()
}

// RoomView renders a room header followed by one line per dish
func RoomView(room models.RoomSlot, rules []models.ExtraDish, b *board.Board, notes Notes, now time.Time) string {
	lines := []string{RoomHeader(room, notes)}
	for col, dish := range menu.Resolve(room.Plan, rules, room.Name) {
		lines = append(lines, CellLine(room, rules, b, col, dish, now))
	}
	return strings.Join(lines, "\n")
}

// Progress returns how many of the room's dishes are served, and the first
// dish that is not
func Progress(room models.RoomSlot, rules []models.ExtraDish, b *board.Board) (served, total int, next string) {
	dishes := menu.Resolve(room.Plan, rules, room.Name)
	for col, dish := range dishes {
		st := b.Status(board.Cell{Group: room.Dinner, Room: room.Name, Col: col})
		if st == board.StatusServed {
			served++
		} else if next == "" {
			next = dish
		}
	}
	return served, len(dishes), next
}

// Overview lists every room by time group with its progress
func Overview(r models.Roster, rules []models.ExtraDish, b *board.Board) string {
	if len(r.Rooms) == 0 {
		return "本日の予約がありません。/import で設定を読み込んでください。"
	}

	var sb strings.Builder
	sb.WriteString("📋 本日の進行状況\n")
	for _, group := range groupsOf(r) {
		fmt.Fprintf(&sb, "\n⏰ %s\n", group)
		for _, room := range r.RoomsInGroup(group) {
			served, total, next := Progress(room, rules, b)
			fmt.Fprintf(&sb, "・%s %d/%d済", room.Name, served, total)
			if next != "" {
				fmt.Fprintf(&sb, " 次: %s", next)
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// groupsOf returns the known time groups first, then any others in roster
// order
func groupsOf(r models.Roster) []string {
	var out []string
	seen := make(map[string]bool)
	for _, g := range models.TimeGroups {
		if len(r.RoomsInGroup(g)) > 0 {
			out = append(out, g)
			seen[g] = true
		}
	}
	for _, room := range r.Rooms {
		if !seen[room.Dinner] {
			out = append(out, room.Dinner)
			seen[room.Dinner] = true
		}
	}
	return out
}

// Kitchen renders the cook-now queue
func Kitchen(res kitchen.Result) string {
	if len(res.Buckets) == 0 {
		return "🍵 調理待ちの料理はありません"
	}

	var sb strings.Builder
	sb.WriteString("🔥 調理中\n")
	for _, bk := range res.Buckets {
		fmt.Fprintf(&sb, "\n【%s】", bk.Dish)
		if bk.Reading != "" && bk.Reading != bk.Dish {
			fmt.Fprintf(&sb, "（%s）", bk.Reading)
		}
		fmt.Fprintf(&sb, " 計%d名", bk.TotalGuests)
		if bk.TotalWelldone > 0 {
			fmt.Fprintf(&sb, " W×%d名", bk.TotalWelldone)
		}
		if bk.Extra {
			sb.WriteString(" ＋追加")
		}
		sb.WriteString("\n")
		for _, room := range bk.Rooms {
			fmt.Fprintf(&sb, "  ・%s %s %d名", room.Group, room.Name, room.Guests)
			if room.Welldone > 0 {
				fmt.Fprintf(&sb, " W×%d", room.Welldone)
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Alert announces dishes that just entered the queue
func Alert(dishes []string) string {
	return "🔔 新しい注文: " + strings.Join(dishes, "、")
}

// Prompt is the question text of an open prompt
func Prompt(p course.Prompt) string {
	target := fmt.Sprintf("%s %s %s", p.Cell.Group, p.Cell.Room, p.Dish)
	switch p.Kind {
	case course.PromptWaitTime:
		if p.Reselect {
			return "⏱ " + target + "\n待ち時間を選び直してください"
		}
		return "⏱ " + target + "\n待ち時間を選択してください"
	case course.PromptWelldone:
		return "🥩 " + target + "\nウェルダンの人数を選択してください"
	case course.PromptStaff:
		if len(p.Options) == 0 {
			return "👤 " + target + "\nスタッフが登録されていません"
		}
		return "👤 " + target + "\n提供したスタッフを選択してください"
	}
	return target
}

// Transition summarises an advance
func Transition(tr course.Transition) string {
	return fmt.Sprintf("%s %s %s: %s → %s", tr.Cell.Group, tr.Cell.Room, tr.Dish, tr.From, tr.To)
}

// Legend lists the status cycle of each kind of dish
func Legend() string {
	kinds := []struct {
		label    string
		category course.Category
	}{
		{"通常", course.CategoryDefault},
		{menu.DishNimono + "・" + menu.DishSteak, course.CategoryMeat},
		{menu.DishKanamori + "・" + menu.DishShabushabu, course.CategorySimple},
	}

	lines := []string{"状態の進み方"}
	for _, k := range kinds {
		var names []string
		for _, st := range course.Cycle(k.category) {
			names = append(names, string(st))
		}
		lines = append(lines, fmt.Sprintf("・%s: %s", k.label, strings.Join(names, "→")))
	}
	return strings.Join(lines, "\n")
}

// Reset confirms a reset
func Reset(b *board.Board) string {
	return fmt.Sprintf("🔄 リセットしました（%d件を未に戻しました）", len(b.Cells()))
}

// Reminder is the daily pre-service message
func Reminder(day string, b *board.Board) string {
	msg := fmt.Sprintf("🕔 %s の夕食サービスが近づいています。", day)
	if n := len(b.Cells()); n > 0 {
		msg += fmt.Sprintf("\n盤面に%d件の記録が残っています。必要なら /reset で初期化してください。", n)
	}
	return msg
}
