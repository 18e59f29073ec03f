package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/cneltyn-s/shekel-streamer/internal/config"
	"github.com/cneltyn-s/shekel-streamer/internal/logger"
	"github.com/cneltyn-s/shekel-streamer/internal/notify"
	"github.com/cneltyn-s/shekel-streamer/internal/scraper"
	"github.com/cneltyn-s/shekel-streamer/internal/store"
	"github.com/cneltyn-s/shekel-streamer/internal/sync"
	"github.com/cneltyn-s/shekel-streamer/internal/translate"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal().Err(err).Msg("Loading configuration")
	}
	if len(cfg.Tasks) == 0 {
		log.Fatal().Msg("No sync tasks configured")
	}

	ctx := logger.WithContext(context.Background(), log)

	sessions := store.NewSessions(cfg.MongoURI, cfg.DBName)
	if err := sessions.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Store unreachable")
	}
	translationRepo := store.NewTranslationRepo(sessions)
	if err := translationRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Preparing translations collection")
	}

	var model translate.Model
	if cfg.GeminiAPIKey != "" {
		model = translate.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
	} else {
		log.Info().Msg("GEMINI_API_KEY not set, translation disabled")
	}
	translator := translate.NewService(translationRepo, model, cfg.TranslationPrompt)

	var transport notify.Transport
	if cfg.TelegramToken != "" {
		transport = notify.NewTelegramTransport(cfg.TelegramToken)
	} else {
		log.Info().Msg("TELEGRAM_BOT_TOKEN not set, notifications disabled")
	}
	notifier := notify.New(transport, cfg.DisplayTimezone)

	syncer := sync.New(
		scraper.NewClient(cfg.ScraperURL),
		store.NewTransactionRepo(sessions),
		translator,
		notifier,
		cfg.SyncDaysCount,
		cfg.ChunkSize,
	)
	runner := sync.NewRunner(syncer, cfg.Tasks)

	run := func() {
		runLog := log.With().Str("run_id", uuid.NewString()).Logger()
		runner.RunAll(logger.WithContext(context.Background(), runLog))
	}

	if cfg.SyncOnStart {
		run()
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, run); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Schedule).Msg("Invalid sync schedule")
	}
	c.Start()
	log.Info().Str("schedule", cfg.Schedule).Int("tasks", len(cfg.Tasks)).Msg("Scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")
	<-c.Stop().Done()
}
