package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// sendInterval keeps the bot under Telegram's global limit of 30 messages per second
const sendInterval = 40 * time.Millisecond

// sender is the part of tgbotapi.BotAPI the notifier uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers review reminders through Telegram.
// It implements scheduler.Notifier.
type Notifier struct {
	api     sender
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewNotifier authorizes the bot token and returns a notifier
func NewNotifier(token string, logger *slog.Logger) (*Notifier, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("authorized on telegram", "account", api.Self.UserName)
	return &Notifier{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(sendInterval), 1),
		logger:  logger,
	}, nil
}

// SendReminders tells the chat how many cards are waiting for review
func (n *Notifier) SendReminders(ctx context.Context, chatID int64, count int) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, reminderText(count))
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("failed to send reminder", "chat_id", chatID, "error", err)
		return err
	}
	n.logger.Debug("reminder delivered", "chat_id", chatID, "count", count)
	return nil
}

func reminderText(count int) string {
	return fmt.Sprintf("У вас %d %s для повторения! Откройте квиз, чтобы начать.", count, wordForm(count))
}

// wordForm picks the Russian plural of "слово" for n
func wordForm(n int) string {
	if n < 0 {
		n = -n
	}
	switch {
	case n%100 >= 11 && n%100 <= 14:
		return "слов"
	case n%10 == 1:
		return "слово"
	case n%10 >= 2 && n%10 <= 4:
		return "слова"
	default:
		return "слов"
	}
}
