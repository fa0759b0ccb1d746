package notifier

import (
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/julianstephens/habitrack/internal/logger"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends reminders as chat messages through a bot.
type Telegram struct {
	bot    messageSender
	chatID int64
}

// NewTelegram authenticates the bot token against the Telegram API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram: %w", ErrNotConfigured)
	}

	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Debug("Telegram bot initialized", "username", botAPI.Self.UserName)

	return &Telegram{bot: botAPI, chatID: chatID}, nil
}

func (t *Telegram) Notify(title, body string) error {
	msg := tgbotapi.NewMessage(t.chatID, formatTelegram(title, body))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func formatTelegram(title, body string) string {
	text := "🔔 <b>" + html.EscapeString(title) + "</b>"
	if body != "" {
		text += "\n\n<i>" + html.EscapeString(body) + "</i>"
	}
	return text
}
