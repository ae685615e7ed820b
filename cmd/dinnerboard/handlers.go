package main

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/course"
	"github.com/korjavin/dinnerboard/pkg/menu"
	"github.com/korjavin/dinnerboard/pkg/messages"
	"github.com/korjavin/dinnerboard/pkg/models"
	"github.com/korjavin/dinnerboard/pkg/roomprefs"
	"github.com/korjavin/dinnerboard/pkg/roster"
	"github.com/korjavin/dinnerboard/pkg/state"
	"github.com/korjavin/dinnerboard/pkg/telegram"
)

// clearMemo is the memo text that removes a room's memo
const clearMemo = "-"

func (h *botHandlers) commands() map[string]telegram.CommandHandler {
	return map[string]telegram.CommandHandler{
		"start":   h.help,
		"help":    h.help,
		"board":   h.board,
		"rooms":   h.board,
		"kitchen": h.kitchen,
		"staff":   h.staff,
		"import":  h.startImport,
		"reset":   h.askReset,
	}
}

func (h *botHandlers) callbacks() map[string]telegram.CallbackHandler {
	return map[string]telegram.CallbackHandler{
		telegram.PrefixAdvance: h.advance,
		telegram.PrefixAnswer:  h.answer,
		telegram.PrefixRewait:  h.rewait,
		telegram.PrefixRoom:    h.room,
		telegram.PrefixRooms:   h.rooms,
		telegram.PrefixSpeed:   h.speed,
		telegram.PrefixMemo:    h.editMemo,
		telegram.PrefixReset:   h.confirmReset,
	}
}

func (h *botHandlers) help(message *tgbotapi.Message) {
	h.send(message.Chat.ID, helpText+"\n\n"+messages.Legend())
}

func (h *botHandlers) board(message *tgbotapi.Message) {
	r := h.roster.Roster()
	text := messages.Overview(r, h.roster.ExtraDishes(), h.boards.Load())
	if _, err := h.bot.SendMessageWithKeyboard(message.Chat.ID, text, telegram.RoomsKeyboard(r)); err != nil {
		h.log.Error("Failed to send board: %v", err)
	}
}

func (h *botHandlers) kitchen(message *tgbotapi.Message) {
	res := h.onDemand.Aggregate(h.roster.Roster(), h.roster.ExtraDishes(), h.boards.Load())
	h.send(message.Chat.ID, messages.Kitchen(res))
}

func (h *botHandlers) staff(message *tgbotapi.Message) {
	staff := h.roster.Staff()
	if len(staff) == 0 {
		h.send(message.Chat.ID, "👤 スタッフが登録されていません")
		return
	}
	h.send(message.Chat.ID, "👤 本日のスタッフ: "+strings.Join(staff, "、"))
}

func (h *botHandlers) startImport(message *tgbotapi.Message) {
	h.states.SetState(message.Chat.ID, state.StateImportingRoster, "", "")
	h.send(message.Chat.ID, "📄 本日の設定ファイル(JSON)を送信してください")
}

func (h *botHandlers) askReset(message *tgbotapi.Message) {
	text := fmt.Sprintf("🔄 %s の盤面をリセットしますか？\nすべての料理が「未」に戻り、スタッフ・ウェルダン・待ち時間・部屋メモが消えます。", h.boards.Day())
	if _, err := h.bot.SendMessageWithKeyboard(message.Chat.ID, text, telegram.ResetKeyboard()); err != nil {
		h.log.Error("Failed to send reset confirmation: %v", err)
	}
}

func (h *botHandlers) room(callback *tgbotapi.CallbackQuery) {
	group, name, _, err := telegram.ParseRoom(telegram.PrefixRoom, callback.Data)
	if err != nil {
		h.ack(callback, "")
		return
	}
	room, ok := h.findRoom(group, name)
	if !ok {
		h.ack(callback, "この部屋は本日の予約にありません")
		return
	}
	h.ack(callback, "")
	h.showRoom(callback.Message, room, h.boards.Load())
}

func (h *botHandlers) rooms(callback *tgbotapi.CallbackQuery) {
	h.ack(callback, "")
	h.showOverview(callback.Message)
}

// editMemo waits for the next text message of the chat as the room memo
func (h *botHandlers) editMemo(callback *tgbotapi.CallbackQuery) {
	group, name, _, err := telegram.ParseRoom(telegram.PrefixMemo, callback.Data)
	if err != nil || callback.Message == nil {
		h.ack(callback, "")
		return
	}
	h.states.SetState(callback.Message.Chat.ID, state.StateEditingMemo, group, name)
	h.ack(callback, "")
	h.send(callback.Message.Chat.ID, fmt.Sprintf("📝 %s %s のメモを入力してください（%d文字まで、「%s」で削除）",
		group, name, roomprefs.MemoMaxRunes, clearMemo))
}

// advance moves a dish one step and turns the room message into the
// follow-up question when the step asks one
func (h *botHandlers) advance(callback *tgbotapi.CallbackQuery) {
	room, cell, dish, ok := h.cellOf(callback, telegram.PrefixAdvance)
	if !ok {
		return
	}

	tr, err := h.course.Advance(cell, dish)
	if err != nil {
		h.log.Error("Failed to advance %s: %v", cell, err)
		h.ack(callback, "⚠️ 更新に失敗しました")
		return
	}
	h.ack(callback, messages.Transition(tr))

	if tr.Prompt != nil {
		h.showPrompt(callback.Message, room, tr.Board, *tr.Prompt)
		return
	}
	h.showRoom(callback.Message, room, tr.Board)
}

// answer records the option chosen on a prompt keyboard
func (h *botHandlers) answer(callback *tgbotapi.CallbackQuery) {
	id, option, err := telegram.ParseAnswer(callback.Data)
	if err != nil {
		h.ack(callback, "")
		return
	}

	p, ok := h.course.Pending(id)
	if !ok {
		h.ack(callback, "この質問は終了しています")
		h.showOverview(callback.Message)
		return
	}

	ans := course.Dismiss
	if option >= 0 {
		if ans, err = p.Choose(option); err != nil {
			h.ack(callback, "")
			return
		}
	}

	b, err := h.course.Resolve(id, ans)
	switch {
	case errors.Is(err, course.ErrPromptExpired):
		h.ack(callback, "この質問は終了しています")
		b = h.boards.Load()
	case err != nil:
		h.log.Error("Failed to record %s for %s: %v", p.Kind, p.Cell, err)
		h.ack(callback, "⚠️ 記録に失敗しました")
		b = h.boards.Load()
	default:
		h.ack(callback, "")
	}

	if room, ok := h.findRoom(p.Cell.Group, p.Cell.Room); ok {
		h.showRoom(callback.Message, room, b)
		return
	}
	h.showOverview(callback.Message)
}

// rewait asks for a new wait time on a dish showing a countdown
func (h *botHandlers) rewait(callback *tgbotapi.CallbackQuery) {
	room, cell, dish, ok := h.cellOf(callback, telegram.PrefixRewait)
	if !ok {
		return
	}

	p, err := h.course.WaitPrompt(cell, dish)
	if err != nil {
		h.ack(callback, "カウントダウン中ではありません")
		h.showRoom(callback.Message, room, h.boards.Load())
		return
	}
	h.ack(callback, "")
	h.showPrompt(callback.Message, room, h.boards.Load(), p)
}

// speed shows the speed choices of a room, or stores the chosen one
func (h *botHandlers) speed(callback *tgbotapi.CallbackQuery) {
	group, name, choice, err := telegram.ParseRoom(telegram.PrefixSpeed, callback.Data)
	if err != nil {
		h.ack(callback, "")
		return
	}
	room, ok := h.findRoom(group, name)
	if !ok {
		h.ack(callback, "この部屋は本日の予約にありません")
		return
	}

	if choice == "" {
		h.ack(callback, "")
		h.edit(callback.Message, messages.RoomHeader(room, h.prefs)+"\n\n速度を選択してください", telegram.SpeedKeyboard(group, name))
		return
	}

	sp, err := roomprefs.ParseSpeed(choice)
	if err == nil {
		err = h.prefs.SetSpeed(group, name, sp)
	}
	if err != nil {
		h.log.Error("Failed to set speed of %s %s: %v", group, name, err)
		h.ack(callback, "⚠️ 保存に失敗しました")
		return
	}
	h.ack(callback, sp.Label())
	h.showRoom(callback.Message, room, h.boards.Load())
}

func (h *botHandlers) confirmReset(callback *tgbotapi.CallbackQuery) {
	if callback.Data != telegram.PrefixReset+"yes" {
		h.ack(callback, "")
		h.editText(callback.Message, "キャンセルしました")
		return
	}

	b, err := h.reset.Run()
	if err != nil {
		h.log.Error("Failed to reset board: %v", err)
		h.ack(callback, "⚠️ リセットに失敗しました")
		return
	}
	for _, agg := range h.monitorAggs {
		agg.Reset()
	}
	h.ack(callback, "")
	h.editText(callback.Message, messages.Reset(b))
}

// handleUpdate serves plain messages: a memo being edited or a settings
// document being imported
func (h *botHandlers) handleUpdate(update tgbotapi.Update) {
	message := update.Message
	if message == nil {
		return
	}
	chatID := message.Chat.ID

	st := h.states.GetState(chatID)
	switch st.State {
	case state.StateEditingMemo:
		if message.Text == "" {
			return
		}
		memo := strings.TrimSpace(message.Text)
		if memo == clearMemo {
			memo = ""
		}
		if err := h.prefs.SetMemo(st.Group, st.Room, memo); err != nil {
			if errors.Is(err, roomprefs.ErrMemoTooLong) {
				h.send(chatID, fmt.Sprintf("⚠️ メモは%d文字までです", roomprefs.MemoMaxRunes))
				return
			}
			h.log.Error("Failed to save memo of %s %s: %v", st.Group, st.Room, err)
			h.send(chatID, "⚠️ メモの保存に失敗しました")
			return
		}
		h.states.ClearState(chatID)
		if room, ok := h.findRoom(st.Group, st.Room); ok {
			h.sendRoom(chatID, room, h.boards.Load())
		}

	case state.StateImportingRoster:
		if message.Document == nil {
			h.send(chatID, "📄 JSONファイルを添付して送信してください")
			return
		}
		h.importRoster(chatID, message.Document)

	default:
		h.send(chatID, "/board で部屋一覧を表示します。/help でコマンド一覧を表示します。")
	}
}

func (h *botHandlers) importRoster(chatID int64, doc *tgbotapi.Document) {
	data, err := h.bot.DownloadFile(doc.FileID, maxRosterBytes)
	if err != nil {
		h.log.Error("Failed to download settings: %v", err)
		h.send(chatID, "⚠️ ファイルを取得できませんでした")
		return
	}

	f, err := h.roster.ImportData(data, doc.FileName)
	if err != nil {
		h.send(chatID, "⚠️ 読み込みに失敗しました: "+err.Error())
		return
	}
	h.states.ClearState(chatID)

	lines := []string{fmt.Sprintf("✅ %d部屋・追加料理%d件を読み込みました", len(f.Rooms), len(f.ExtraDishes))}
	for _, w := range roster.Warnings(f) {
		lines = append(lines, "⚠️ "+w)
	}
	h.send(chatID, strings.Join(lines, "\n"))

	if _, err := h.readings.Learn(roster.Dishes(f.Roster, f.ExtraDishes)); err != nil {
		h.log.Warn("Failed to learn some dish readings: %v", err)
	}
}

// cellOf decodes a cell callback and resolves its room and dish, answering
// the callback itself when it cannot
func (h *botHandlers) cellOf(callback *tgbotapi.CallbackQuery, prefix string) (models.RoomSlot, board.Cell, string, bool) {
	cell, err := telegram.ParseCell(prefix, callback.Data)
	if err != nil {
		h.ack(callback, "")
		return models.RoomSlot{}, board.Cell{}, "", false
	}
	room, ok := h.findRoom(cell.Group, cell.Room)
	if !ok {
		h.ack(callback, "この部屋は本日の予約にありません")
		return models.RoomSlot{}, board.Cell{}, "", false
	}
	dishes := menu.Resolve(room.Plan, h.roster.ExtraDishes(), room.Name)
	if cell.Col >= len(dishes) {
		h.ack(callback, "献立が変更されました")
		h.showRoom(callback.Message, room, h.boards.Load())
		return models.RoomSlot{}, board.Cell{}, "", false
	}
	return room, cell, dishes[cell.Col], true
}

func (h *botHandlers) findRoom(group, name string) (models.RoomSlot, bool) {
	for _, room := range h.roster.Roster().Rooms {
		if room.Dinner == group && room.Name == name {
			return room, true
		}
	}
	return models.RoomSlot{}, false
}

func (h *botHandlers) roomView(room models.RoomSlot, b *board.Board) (string, tgbotapi.InlineKeyboardMarkup) {
	rules := h.roster.ExtraDishes()
	now := h.course.Now()
	return messages.RoomView(room, rules, b, h.prefs, now), telegram.RoomKeyboard(room, rules, b, now)
}

func (h *botHandlers) showRoom(msg *tgbotapi.Message, room models.RoomSlot, b *board.Board) {
	text, keyboard := h.roomView(room, b)
	h.edit(msg, text, keyboard)
}

func (h *botHandlers) sendRoom(chatID int64, room models.RoomSlot, b *board.Board) {
	text, keyboard := h.roomView(room, b)
	if _, err := h.bot.SendMessageWithKeyboard(chatID, text, keyboard); err != nil {
		h.log.Error("Failed to send room %s: %v", room.Name, err)
	}
}

func (h *botHandlers) showPrompt(msg *tgbotapi.Message, room models.RoomSlot, b *board.Board, p course.Prompt) {
	text, _ := h.roomView(room, b)
	h.edit(msg, text+"\n\n"+messages.Prompt(p), telegram.PromptKeyboard(p))
}

func (h *botHandlers) showOverview(msg *tgbotapi.Message) {
	r := h.roster.Roster()
	h.edit(msg, messages.Overview(r, h.roster.ExtraDishes(), h.boards.Load()), telegram.RoomsKeyboard(r))
}

func (h *botHandlers) edit(msg *tgbotapi.Message, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	if msg == nil {
		return
	}
	if _, err := h.bot.EditMessageWithKeyboard(msg.Chat.ID, msg.MessageID, text, keyboard); err != nil {
		h.log.Debug("Failed to edit message %d: %v", msg.MessageID, err)
	}
}

// editText replaces a message's text and drops its keyboard
func (h *botHandlers) editText(msg *tgbotapi.Message, text string) {
	if msg == nil {
		return
	}
	if _, err := h.bot.EditMessage(msg.Chat.ID, msg.MessageID, text); err != nil {
		h.log.Debug("Failed to edit message %d: %v", msg.MessageID, err)
	}
}

func (h *botHandlers) send(chatID int64, text string) {
	if _, err := h.bot.SendMessage(chatID, text); err != nil {
		h.log.Error("Failed to send message to %d: %v", chatID, err)
	}
}

func (h *botHandlers) ack(callback *tgbotapi.CallbackQuery, text string) {
	if err := h.bot.AnswerCallbackQuery(callback.ID, text); err != nil {
		h.log.Debug("Failed to answer callback %s: %v", callback.ID, err)
	}
}
