package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/course"
	"github.com/korjavin/dinnerboard/pkg/menu"
	"github.com/korjavin/dinnerboard/pkg/models"
	"github.com/korjavin/dinnerboard/pkg/roomprefs"
)

// Callback data prefixes
const (
	PrefixAdvance = "adv:"
	PrefixAnswer  = "ans:"
	PrefixRewait  = "rew:"
	PrefixRoom    = "room:"
	PrefixRooms   = "rooms:"
	PrefixSpeed   = "spd:"
	PrefixMemo    = "memo:"
	PrefixReset   = "reset:"
)

// Telegram rejects callback data over 64 bytes
const maxCallbackData = 64

const (
	fieldSep  = "|"
	dismissed = "x"
)

var (
	// ErrCallbackTooLong is returned when a room name does not fit the
	// callback data limit
	ErrCallbackTooLong = errors.New("callback data too long")
	// ErrBadCallback is returned for callback data that does not parse
	ErrBadCallback = errors.New("malformed callback data")
)

func checkLen(data string) (string, error) {
	if len(data) > maxCallbackData {
		return "", fmt.Errorf("%w: %q", ErrCallbackTooLong, data)
	}
	return data, nil
}

// CellData encodes a cell as callback data
func CellData(prefix string, c board.Cell) (string, error) {
	return checkLen(prefix + strings.Join([]string{c.Group, c.Room, strconv.Itoa(c.Col)}, fieldSep))
}

// ParseCell decodes callback data written by CellData
func ParseCell(prefix, data string) (board.Cell, error) {
	parts := strings.Split(strings.TrimPrefix(data, prefix), fieldSep)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return board.Cell{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}
	col, err := strconv.Atoi(parts[2])
	if err != nil || col < 0 {
		return board.Cell{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}
	return board.Cell{Group: parts[0], Room: parts[1], Col: col}, nil
}

// RoomData encodes a room, and optionally one more value, as callback data
func RoomData(prefix, group, room string, extra ...string) (string, error) {
	fields := append([]string{group, room}, extra...)
	return checkLen(prefix + strings.Join(fields, fieldSep))
}

// ParseRoom decodes callback data written by RoomData
func ParseRoom(prefix, data string) (group, room, extra string, err error) {
	parts := strings.Split(strings.TrimPrefix(data, prefix), fieldSep)
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("%w: %q", ErrBadCallback, data)
	}
	if len(parts) == 3 {
		extra = parts[2]
	}
	return parts[0], parts[1], extra, nil
}

// AnswerData encodes the choice of option i of a prompt; a negative i
// dismisses it
func AnswerData(promptID string, i int) string {
	choice := dismissed
	if i >= 0 {
		choice = strconv.Itoa(i)
	}
	return PrefixAnswer + promptID + fieldSep + choice
}

// ParseAnswer decodes callback data written by AnswerData. option is -1 for
// a dismissal.
func ParseAnswer(data string) (promptID string, option int, err error) {
	parts := strings.Split(strings.TrimPrefix(data, PrefixAnswer), fieldSep)
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}
	if parts[1] == dismissed {
		return parts[0], -1, nil
	}
	option, err = strconv.Atoi(parts[1])
	if err != nil || option < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}
	return parts[0], option, nil
}

// RoomsKeyboard lists the rooms of tonight, one row per time group
func RoomsKeyboard(r models.Roster) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, group := range models.TimeGroups {
		var row []tgbotapi.InlineKeyboardButton
		for _, room := range r.RoomsInGroup(group) {
			data, err := RoomData(PrefixRoom, room.Dinner, room.Name)
			if err != nil {
				continue
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(group+" "+room.Name, data))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// RoomKeyboard has one advance button per dish, a reselect button per
// countdown and the room's speed and memo actions
func RoomKeyboard(room models.RoomSlot, rules []models.ExtraDish, b *board.Board, now time.Time) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var countdowns []tgbotapi.InlineKeyboardButton

	for col, dish := range menu.Resolve(room.Plan, rules, room.Name) {
		cell := board.Cell{Group: room.Dinner, Room: room.Name, Col: col}
		data, err := CellData(PrefixAdvance, cell)
		if err != nil {
			continue
		}
		label := fmt.Sprintf("%s %s", dish, b.Status(cell))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)))

		if shown, ok := course.Countdown(b, cell, now); ok {
			if data, err := CellData(PrefixRewait, cell); err == nil {
				countdowns = append(countdowns, tgbotapi.NewInlineKeyboardButtonData("⏱"+dish+" "+shown, data))
			}
		}
	}
	for len(countdowns) > 0 {
		n := min(2, len(countdowns))
		rows = append(rows, countdowns[:n])
		countdowns = countdowns[n:]
	}

	var actions []tgbotapi.InlineKeyboardButton
	if data, err := RoomData(PrefixSpeed, room.Dinner, room.Name); err == nil {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("速度", data))
	}
	if data, err := RoomData(PrefixMemo, room.Dinner, room.Name); err == nil {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("メモ", data))
	}
	actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("一覧", PrefixRooms))
	rows = append(rows, actions)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// PromptKeyboard offers a prompt's options, three per row, and a close
// button that dismisses it
func PromptKeyboard(p course.Prompt) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, o := range p.Options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(o.Label, AnswerData(p.ID, i)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("閉じる", AnswerData(p.ID, -1)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// SpeedKeyboard offers the speed classes of a room
func SpeedKeyboard(group, room string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, sp := range roomprefs.Speeds() {
		data, err := RoomData(PrefixSpeed, group, room, string(sp))
		if err != nil {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(sp.Label(), data)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ResetKeyboard asks for confirmation before a reset
func ResetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("リセットする", PrefixReset+"yes"),
			tgbotapi.NewInlineKeyboardButtonData("キャンセル", PrefixReset+"no"),
		),
	)
}
