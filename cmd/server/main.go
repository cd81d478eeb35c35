package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localnerve/carmart/internal/cache"
	"github.com/localnerve/carmart/internal/config"
	"github.com/localnerve/carmart/internal/database"
	"github.com/localnerve/carmart/internal/logging"
	"github.com/localnerve/carmart/internal/matching"
	"github.com/localnerve/carmart/internal/middleware"
	"github.com/localnerve/carmart/internal/server"
	"github.com/localnerve/carmart/internal/services"
	"go.uber.org/zap"

	_ "github.com/localnerve/carmart/docs/api" // Swagger docs
)

// @title CarMart API
// @version 1.0.0
// @description Used-car catalog, buyer preferences and recommendations
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/carmart
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Connect to database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Reference data cache, optional
	refCache, err := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer refCache.Close()

	// Initialize Authorizer
	if !cfg.AuthzDisabled {
		if err := services.InitAuthorizer(cfg, logger); err != nil {
			logger.Fatal("failed to initialize authorizer", zap.Error(err))
		}
	}

	engine := matching.NewEngine(matching.Config{
		Threshold: cfg.RecommendThreshold,
		Limit:     cfg.RecommendLimit,
		MaxYear:   cfg.RecommendMaxYear,
	})
	ec := engine.Config()
	logger.Info("recommendation engine ready",
		zap.Int("threshold", ec.Threshold),
		zap.Int("limit", ec.Limit),
		zap.Int("max_year", engine.MaxYear()),
		zap.Bool("max_year_follows_clock", ec.MaxYear == 0),
	)

	app := server.New(server.Deps{
		Config:  cfg,
		DB:      db,
		Cache:   refCache,
		Engine:  engine,
		Auth:    middleware.NewAuth(cfg.AuthzDisabled, logger),
		Log:     logger,
		Metrics: true,
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("gracefully shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.ShutdownWithContext(ctx)
	}()

	// Start server
	logger.Info("starting server", zap.String("port", cfg.Port), zap.String("db_type", cfg.DBType))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	logger.Info("server stopped")
}
