package notifier

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/semmidev/stowaway/internal/config"
	"github.com/semmidev/stowaway/internal/domain"
)

// Telegram caps a text message at 4096 UTF-16 code units.
const telegramMaxMessage = 4096

type TelegramSender struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(cfg *config.TelegramConfig) (*TelegramSender, error) {
	return newTelegram(cfg, tgbotapi.APIEndpoint)
}

func newTelegram(cfg *config.TelegramConfig, endpoint string) (*TelegramSender, error) {
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", cfg.ChatID, err)
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.BotToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramSender{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Send posts the message to the configured chat. Recipients are ignored; the
// chat is the audience.
func (t *TelegramSender) Send(ctx context.Context, msg domain.Message, recipients []string) error {
	text := msg.Subject + "\n\n" + msg.Body
	text = truncateUTF16(text, telegramMaxMessage)

	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}

	return nil
}

// truncateUTF16 shortens text to at most limit UTF-16 code units, marking the
// cut with "...". Runes are never split.
func truncateUTF16(text string, limit int) string {
	if len(utf16.Encode([]rune(text))) <= limit {
		return text
	}

	budget := limit - len("...")
	units := 0
	for i, r := range text {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > budget {
			return text[:i] + "..."
		}
		units += n
	}
	return text
}
