package notify

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender delivers messages to a Telegram chat via the Bot API.
type TelegramSender struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewTelegramSender creates a Telegram sender. The bot token is verified
// against the API at construction time.
func NewTelegramSender(botToken, chatID string) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	return &TelegramSender{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     3,
		retryDelayBase: time.Second,
	}, nil
}

// Send posts the text as a plain message with linear-backoff retry.
func (t *TelegramSender) Send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)

	var lastErr error
	for i := 0; i < t.maxRetries; i++ {
		if _, err := t.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(t.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", t.maxRetries, lastErr)
}

// Name returns the sender identifier.
func (t *TelegramSender) Name() string {
	return "telegram"
}
