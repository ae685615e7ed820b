package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/korjavin/dinnerboard/pkg/kitchen"
	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/korjavin/dinnerboard/pkg/messages"
)

// KitchenDisplay keeps one message in the kitchen chat showing the queue
// and posts a separate message, which notifies, for every new-work alert
type KitchenDisplay struct {
	sender Sender
	chatID int64

	mu        sync.Mutex
	messageID int
	lastText  string

	logger *logger.Logger
}

// NewKitchenDisplay creates a display for the chat
func NewKitchenDisplay(sender Sender, chatID int64) *KitchenDisplay {
	return &KitchenDisplay{
		sender: sender,
		chatID: chatID,
		logger: logger.New("telegram").With("kitchen"),
	}
}

// Show updates the queue message in place, sending a new one the first
// time or when the old one can no longer be edited
func (d *KitchenDisplay) Show(res kitchen.Result) {
	text := messages.Kitchen(res)

	d.mu.Lock()
	defer d.mu.Unlock()

	if text == d.lastText {
		return
	}

	if d.messageID != 0 {
		edit := tgbotapi.NewEditMessageText(d.chatID, d.messageID, text)
		_, err := d.sender.Send(edit)
		if err == nil {
			d.lastText = text
			return
		}
		d.logger.Warn("Failed to edit kitchen message, sending a new one: %v", err)
	}

	msg, err := d.sender.Send(tgbotapi.NewMessage(d.chatID, text))
	if err != nil {
		d.logger.Error("Failed to send kitchen message: %v", err)
		return
	}
	d.messageID = msg.MessageID
	d.lastText = text
}

// Alert posts the new-work notice
func (d *KitchenDisplay) Alert(dishes []string) {
	if _, err := d.sender.Send(tgbotapi.NewMessage(d.chatID, messages.Alert(dishes))); err != nil {
		d.logger.Error("Failed to send kitchen alert: %v", err)
	}
}
