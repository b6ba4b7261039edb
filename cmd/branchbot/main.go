package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/bot"
	"github.com/fortunamfo/branchbot/internal/config"
	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/handler"
	"github.com/fortunamfo/branchbot/internal/infra/cache"
	"github.com/fortunamfo/branchbot/internal/infra/currency"
	"github.com/fortunamfo/branchbot/internal/infra/observability"
	"github.com/fortunamfo/branchbot/internal/infra/render"
	"github.com/fortunamfo/branchbot/internal/infra/resilience"
	"github.com/fortunamfo/branchbot/internal/infra/workbook"
	"github.com/fortunamfo/branchbot/internal/service"
)

func main() {
	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("workbook", cfg.WorkbookPath),
		zap.String("timezone", cfg.Timezone),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, "branchbot")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Timezone ---
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("bad timezone", zap.String("tz", cfg.Timezone), zap.Error(err))
	}

	// --- Registry workbook ---
	store, err := workbook.Open(cfg.WorkbookPath, logger)
	if err != nil {
		logger.Fatal("failed to open registry workbook", zap.Error(err))
	}
	defer store.Close()

	// --- Resilience + currency client ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("currency")
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	rateClient := currency.NewClient(httpClient, cfg.CurrencyURL, cb, resilienceCfg, logger)

	// --- Services ---
	pdf := render.NewPDF()
	calcSvc := service.NewCalculator(pdf, metrics, logger)
	quotaSvc := service.NewQuotaService(store, loc, metrics, logger)
	currencySvc := service.NewCurrencyService(rateClient, cache.New[domain.RateBoard](cfg.CacheTTL), metrics, logger)

	// --- Telegram ---
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("telegram authorization failed", zap.Error(err))
	}

	tgBot := bot.New(api, cfg, bot.Deps{
		Calculator:  calcSvc,
		Quota:       quotaSvc,
		Currency:    currencySvc,
		Subscribers: store,
		Vacancies:   store,
		Branches:    store,
		Channels:    store,
		Exporter:    store,
		Rates:       pdf,
	}, metrics, logger)

	// The broadcaster delivers through the bot itself.
	broadcastSvc := service.NewBroadcaster(store, tgBot, cfg.MaxConcurrency, cfg.BroadcastPace, metrics, logger)
	tgBot.SetBroadcaster(broadcastSvc)

	// --- Quota schedule ---
	quotaCron, err := tgBot.StartQuotaSchedule(loc)
	if err != nil {
		logger.Fatal("failed to start quota schedule", zap.Error(err))
	}

	// --- Ops HTTP server ---
	router := handler.NewRouter(metrics, nil, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("ops server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ops server failed", zap.Error(err))
		}
	}()

	// --- Bot loop ---
	botCtx, stopBot := context.WithCancel(context.Background())
	go func() {
		if err := tgBot.Run(botCtx); err != nil && err != context.Canceled {
			logger.Error("bot loop ended", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	stopBot()
	quotaCron.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("ops server forced shutdown", zap.Error(err))
	}

	logger.Info("stopped")
}
