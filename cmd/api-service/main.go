package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-sentiment/internal/tracker/config"
	delivery "golang-stock-sentiment/internal/tracker/delivery/http"
	"golang-stock-sentiment/internal/tracker/repository"
	"golang-stock-sentiment/internal/tracker/service"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/postgres"
	"golang-stock-sentiment/pkg/redis"
	"golang-stock-sentiment/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the sentiment tracker API service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Sentiment Tracker API", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	predictionRepo := repository.NewPredictionRepository(db.DB)
	closingPriceRepo := repository.NewClosingPriceRepository(db.DB)
	companyRepo := repository.NewCompanyRepository(db.DB)
	lastUpdateRepo := repository.NewLastPriceUpdateRepository(db.DB)
	finnhubRepo := repository.NewFinnhubRepository(cfg, appLogger, redisClient)
	yahooFinanceRepo := repository.NewYahooFinanceRepository(cfg, appLogger)
	rssNewsRepo := repository.NewRSSNewsRepository(appLogger)
	newsContentRepo := repository.NewNewsContentRepository(appLogger)

	// Initialize AI provider
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
	}
	aiRepo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI repository", logger.ErrorField(err))
	}

	// Initialize optional Telegram notifier
	var telegramNotifier telegram.Notifier
	if cfg.Telegram.Enabled {
		telegramNotifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Initialize services
	companySvc := service.NewCompanyService(companyRepo, finnhubRepo, appLogger)
	calendarSvc := service.NewMarketCalendarService(finnhubRepo, appLogger)
	priceTrackerSvc := service.NewPriceTrackerService(cfg, appLogger, closingPriceRepo, predictionRepo, lastUpdateRepo, yahooFinanceRepo, calendarSvc, companySvc, redisClient)
	predictionSvc := service.NewPredictionService(cfg, appLogger, predictionRepo, finnhubRepo, rssNewsRepo, newsContentRepo, yahooFinanceRepo, aiRepo, companySvc, priceTrackerSvc)

	// Start the nightly sweep scheduler
	sweepScheduler := service.NewSweepScheduler(cfg, appLogger, priceTrackerSvc, telegramNotifier)
	go func() {
		if err := sweepScheduler.Start(ctx); err != nil {
			appLogger.Error("Sweep scheduler failed", logger.ErrorField(err))
		}
	}()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	predictionHandler := delivery.NewPredictionHandler(predictionSvc, appLogger)
	predictionHandler.RegisterRoutes(apiV1.Group("/predictions"))

	priceHandler := delivery.NewPriceHandler(priceTrackerSvc, appLogger)
	priceHandler.RegisterRoutes(apiV1.Group("/prices"))

	sentimentHandler := delivery.NewSentimentHandler(predictionSvc, appLogger)
	sentimentHandler.RegisterRoutes(apiV1.Group("/sentiment"))

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-api.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
