package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"refl/internal/backend"
	"refl/internal/bot"
	"refl/internal/cli"
	"refl/internal/core"
	apphttp "refl/internal/http"
	"refl/internal/log"
	"refl/internal/metrics"
	"refl/internal/notify"
	"refl/internal/services"
)

func main() {
	cfg, logger := cli.LoadConfig(log.ComponentApp)
	cli.MustValidate(logger, cfg)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	m := metrics.New()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger.With(log.FieldComponent, log.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup == nil {
			return
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	entryOpts := []services.EntryOption{services.WithMetrics(m)}
	if result.Publisher != nil {
		entryOpts = append(entryOpts, services.WithPublisher(result.Publisher))
	}
	entries := services.NewEntryService(result.Store, entryOpts...)
	summaries := services.NewSummaryService(result.Store)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Entries:            entries,
		Summaries:          summaries,
		Metrics:            m,
		Logger:             logger,
		Ready:              result.Ping,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	var botAPI *tgbotapi.BotAPI
	if cfg.SchedulerEnabled || cfg.BotEnabled {
		botAPI, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			logger.Error("Failed to initialize Telegram bot", "error", err)
			os.Exit(1)
		}
		logger.Info("Telegram bot authorized", "username", botAPI.Self.UserName)
	}

	var dispatcher *notify.Dispatcher
	if cfg.SchedulerEnabled {
		notifier, err := notify.NewTelegramNotifier(botAPI, cfg.TelegramChatID)
		if err != nil {
			logger.Error("Failed to create Telegram notifier", "error", err)
			os.Exit(1)
		}
		dispatcher, err = notify.NewDispatcher(summaries, notifier, notify.DispatcherOptions{
			Location: cfg.Location(),
			Jobs: []notify.Job{
				{Window: core.Daily, Spec: cfg.DailySummaryCron},
				{Window: core.Weekly, Spec: cfg.WeeklySummaryCron},
				{Window: core.Monthly, Spec: cfg.MonthlySummaryCron},
			},
			Metrics: m,
		})
		if err != nil {
			logger.Error("Failed to create summary dispatcher", "error", err)
			os.Exit(1)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting refl server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if dispatcher != nil {
			if err := dispatcher.Stop(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if dispatcher != nil {
		dispatcher.Start()
		logger.Info("Summary dispatcher started", "timezone", cfg.ScheduleTimezone)
	}

	if cfg.BotEnabled {
		listener := bot.NewListener(botAPI, bot.LogHandler(entries))
		g.Go(func() error {
			if err := listener.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
