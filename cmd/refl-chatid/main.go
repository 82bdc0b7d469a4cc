// Command refl-chatid answers every Telegram message with the sender's chat id,
// the value TELEGRAM_CHAT_ID expects.
package main

import (
	"context"
	"errors"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"refl/internal/bot"
	"refl/internal/cli"
	"refl/internal/log"
)

func main() {
	cfg, logger := cli.LoadConfig(log.ComponentBot)
	if cfg.TelegramBotToken == "" {
		logger.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot", "error", err)
		os.Exit(1)
	}
	logger.Info("Bot running; send it any message to see your chat id", "username", api.Self.UserName)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	if err := bot.NewListener(api, bot.ChatIDHandler()).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Listener stopped", "error", err)
		os.Exit(1)
	}
}
