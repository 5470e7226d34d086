package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"school-job-scout/internal/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts one message per job followed by a status line.
type Telegram struct {
	api    telegramSender
	chatID int64
	//pause between messages to stay under the bot rate limit
	pause  time.Duration
	logger *zap.Logger
}

func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return newTelegram(api, chatID, logger), nil
}

func newTelegram(api telegramSender, chatID int64, logger *zap.Logger) *Telegram {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Telegram{api: api, chatID: chatID, pause: time.Second, logger: logger.Named("telegram")}
}

func (b *Telegram) Name() string { return ChannelTelegram }

func (b *Telegram) Notify(ctx context.Context, jobs []scraper.Job, total int) error {
	if len(jobs) == 0 {
		return nil
	}
	sent := 0
	for i, job := range jobs {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.pause):
			}
		}
		if err := b.SendJob(job); err != nil {
			b.logger.Warn("⚠️ failed to send job", zap.String("title", job.Title), zap.Error(err))
			continue
		}
		sent++
	}
	status := fmt.Sprintf("✅ Found %d new of %d matching jobs, sent %d.", len(jobs), total, sent)
	if err := b.SendStatus(status); err != nil {
		return err
	}
	if sent < len(jobs) {
		return fmt.Errorf("sent %d of %d jobs", sent, len(jobs))
	}
	return nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

func jobMessage(job scraper.Job) string {
	msgText := fmt.Sprintf("🎓 *%s*\n", escapeMarkdown(job.Title))
	msgText += fmt.Sprintf("🏫 %s\n", escapeMarkdown(job.District))
	if job.PositionType != "" {
		msgText += fmt.Sprintf("📝 %s\n", escapeMarkdown(job.PositionType))
	}
	if job.Location != "" {
		msgText += fmt.Sprintf("📍 %s\n", escapeMarkdown(job.Location))
	}
	msgText += fmt.Sprintf("🔖 Source: %s\n", escapeMarkdown(string(job.Source)))
	return msgText
}

func (b *Telegram) SendJob(job scraper.Job) error {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 View Posting", job.URL),
		),
	)

	msg := tgbotapi.NewMessage(b.chatID, jobMessage(job))
	msg.ParseMode = "MarkdownV2"
	msg.ReplyMarkup = keyboard

	_, err := b.api.Send(msg)
	return err
}

func (b *Telegram) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}

func (b *Telegram) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}
