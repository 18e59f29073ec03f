package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramTransport sends messages through the Telegram Bot API. The bot
// client is constructed per send rather than held as a singleton.
type TelegramTransport struct {
	token string
}

// NewTelegramTransport creates a Telegram transport for the given bot token.
func NewTelegramTransport(token string) *TelegramTransport {
	return &TelegramTransport{token: token}
}

// SendMessage posts a markdown message to the chat.
func (t *TelegramTransport) SendMessage(_ context.Context, chatID int64, text string) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("notify: creating telegram client: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("notify: sending message: %w", err)
	}
	return nil
}
