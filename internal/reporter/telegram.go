package reporter

import (
	"fmt"

	"go-bosszp-automation/internal/config"
	"go-bosszp-automation/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramReporter pushes a short run summary to a chat. It is optional:
// NewTelegramReporter returns (nil, nil) when no token is configured and
// every method tolerates a nil receiver, so callers never branch on it.
type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(cfg *config.Config) (*TelegramReporter, error) {
	if cfg.TelegramToken == "" {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramReporter{
		bot:    bot,
		chatID: cfg.TelegramChatID,
	}, nil
}

func (t *TelegramReporter) SendSummary(captured int, stats store.MergeStats) error {
	if t == nil {
		return nil
	}
	text := fmt.Sprintf(
		"✅ <b>Scrape finished</b>\n"+
			"📋 Captured this run: %d\n"+
			"🗂 Master table now holds: %d\n"+
			"✨ New unique listings: %d",
		captured, stats.After, stats.NewUnique,
	)
	return t.send(text)
}

func (t *TelegramReporter) SendError(runErr error) error {
	if t == nil {
		return nil
	}
	return t.send(fmt.Sprintf("⚠️ <b>Scrape error</b>:\n%v", runErr))
}

func (t *TelegramReporter) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML" //use HTML for bold/italic
	_, err := t.bot.Send(msg)
	return err
}
