package sink

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fueltrends/internal/report"
)

// Telegram sends the chart as a photo with the summary as its caption.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates the Telegram sink.
func NewTelegram(botToken, chatID string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatIDInt}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Publish(ctx context.Context, r *report.Report) error {
	photo := tgbotapi.NewPhoto(t.chatID, tgbotapi.FileBytes{
		Name:  "graph.png",
		Bytes: r.Chart,
	})
	photo.Caption = fmt.Sprintf("Today's fuel averages (%s)\n%s",
		r.Date.Format("2006/01/02"), r.Summary)
	if _, err := t.bot.Send(photo); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	return nil
}
