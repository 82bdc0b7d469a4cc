package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers a plain-text message to the user.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Sender is the part of *tgbotapi.BotAPI used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends messages to a single configured chat.
type TelegramNotifier struct {
	sender Sender
	chatID int64
}

func NewTelegramNotifier(sender Sender, chatID int64) (*TelegramNotifier, error) {
	if sender == nil {
		return nil, errors.New("telegram sender is nil")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}
	return &TelegramNotifier{sender: sender, chatID: chatID}, nil
}

// Notify calls sendMessage. The bot API has no context support, so ctx is only checked up front.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.sender.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		return fmt.Errorf("send telegram message to chat %d: %w", n.chatID, err)
	}
	return nil
}
