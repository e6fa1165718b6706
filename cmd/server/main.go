package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/finpilot-backend/internal/advisor"
	"github.com/ndewijer/finpilot-backend/internal/api"
	"github.com/ndewijer/finpilot-backend/internal/config"
	"github.com/ndewijer/finpilot-backend/internal/database"
	"github.com/ndewijer/finpilot-backend/internal/finnhub"
	"github.com/ndewijer/finpilot-backend/internal/logger"
	"github.com/ndewijer/finpilot-backend/internal/repository"
	"github.com/ndewijer/finpilot-backend/internal/scheduler"
	"github.com/ndewijer/finpilot-backend/internal/service"
	"github.com/ndewijer/finpilot-backend/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logr := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(logr)

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logr.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	version, _ := database.SchemaVersion(db)
	logr.Info().Str("path", cfg.Database.Path).Int64("schema_version", version).Msg("Connected to database")

	// External providers
	finnhubClient := finnhub.NewClient(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL, logr)
	if !finnhubClient.HasAPIKey() {
		logr.Warn().Msg("FINNHUB_API_KEY not set, quotes and news are disabled")
	}

	geminiClient, err := advisor.NewGeminiClient(context.Background(), advisor.Config{
		APIKey:  cfg.Advisor.APIKey,
		Model:   cfg.Advisor.Model,
		BaseURL: cfg.Advisor.BaseURL,
		Timeout: cfg.Advisor.Timeout,
	}, logr)
	if err != nil {
		logr.Fatal().Err(err).Msg("Failed to create advisor client")
	}
	if !geminiClient.Configured() {
		logr.Warn().Msg("GEMINI_API_KEY not set, goal analysis and chat use fallback answers")
	}

	sessions, err := session.NewManager(cfg.Session.Key, cfg.Session.TTL)
	if err != nil {
		logr.Fatal().Err(err).Msg("Failed to create session manager")
	}
	if cfg.Session.Key == "" {
		logr.Warn().Msg("SESSION_KEY not set, sessions will not survive a restart")
	}

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	stockRepo := repository.NewStockRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	newsCacheRepo := repository.NewNewsCacheRepository(db)

	// Create services
	holdingService := service.NewHoldingService(holdingRepo, stockRepo, finnhubClient, logr)
	advisorService := service.NewAdvisorService(geminiClient, holdingService, goalRepo, logr)
	goalService := service.NewGoalService(goalRepo, holdingService, advisorService, logr)
	newsService := service.NewNewsService(newsCacheRepo, finnhubClient, logr)

	svcs := api.Services{
		System:   service.NewSystemService(db, finnhubClient, geminiClient),
		Users:    service.NewUserService(userRepo, sessions, logr),
		Stocks:   service.NewStockService(stockRepo),
		Holdings: holdingService,
		Goals:    goalService,
		News:     newsService,
		Advisor:  advisorService,
	}

	// Background jobs
	sched := scheduler.New(logr)
	newsJob := scheduler.NewNewsRefreshJob(newsService, logr)
	if err := sched.AddJob(cfg.Scheduler.NewsRefreshSchedule, newsJob); err != nil {
		logr.Fatal().Err(err).Str("schedule", cfg.Scheduler.NewsRefreshSchedule).Msg("Failed to register news refresh job")
	}
	sched.Start()

	// Pages that went stale while the server was down are refreshed right away
	go func() {
		_ = sched.RunNow(newsJob)
	}()

	// Create router
	router := api.NewRouter(svcs, sessions, cfg, logr)

	// Goal analysis waits for the advisor, so writes may take up to its timeout
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Advisor.Timeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logr.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Error().Err(err).Msg("Server forced to shutdown")
	}
	sched.Stop()

	logr.Info().Msg("Server exited")
}
