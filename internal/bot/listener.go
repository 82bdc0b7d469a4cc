package bot

import (
	"context"
	"fmt"
	"log/slog"

	"refl/internal/core"
	"refl/internal/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the part of *tgbotapi.BotAPI the listener uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler turns an incoming message into reply text. An empty reply sends nothing.
type Handler func(ctx context.Context, msg *tgbotapi.Message) string

// MessageLogger stores a message as an entry. EntryService implements it.
type MessageLogger interface {
	LogMessage(ctx context.Context, text string) (core.Entry, error)
}

// LogHandler logs every text message and replies with the entry ID and category.
func LogHandler(logger MessageLogger) Handler {
	return func(ctx context.Context, msg *tgbotapi.Message) string {
		if msg.Text == "" {
			return ""
		}
		entry, err := logger.LogMessage(ctx, msg.Text)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to log message from Telegram", log.FieldChatID, msg.Chat.ID, log.FieldError, err)
			return fmt.Sprintf("Error logging message: %v", err)
		}
		return fmt.Sprintf("Logged successfully! Entry ID: %d (Type: %s)", entry.ID, entry.Category)
	}
}

// ChatIDHandler replies with the sender's chat id, for filling in TELEGRAM_CHAT_ID.
func ChatIDHandler() Handler {
	return func(_ context.Context, msg *tgbotapi.Message) string {
		return fmt.Sprintf("Your chat_id is: %d", msg.Chat.ID)
	}
}

// Listener long-polls updates and answers each message with its handler
type Listener struct {
	api     API
	handler Handler
	timeout int
}

func NewListener(api API, handler Handler) *Listener {
	return &Listener{api: api, handler: handler, timeout: 60}
}

// Run polls until ctx is cancelled or the update channel closes.
func (l *Listener) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = l.timeout
	updates := l.api.GetUpdatesChan(u)

	slog.InfoContext(ctx, "Telegram listener started")

	for {
		select {
		case <-ctx.Done():
			l.api.StopReceivingUpdates()
			slog.InfoContext(ctx, "Telegram listener stopped", "reason", ctx.Err())
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			l.handleUpdate(ctx, update)
		}
	}
}

func (l *Listener) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	text := l.handler(ctx, msg)
	if text == "" {
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := l.api.Send(reply); err != nil {
		slog.ErrorContext(ctx, "Failed to send Telegram reply", log.FieldChatID, msg.Chat.ID, log.FieldError, err)
	}
}
