package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/scheme-mitra/backend/internal/api/handlers"
	redisc "github.com/scheme-mitra/backend/internal/cache/redis"
	"github.com/scheme-mitra/backend/internal/catalog"
	"github.com/scheme-mitra/backend/internal/llm"
	"github.com/scheme-mitra/backend/internal/metrics"
	"github.com/scheme-mitra/backend/internal/middleware/ratelimit"
	"github.com/scheme-mitra/backend/internal/middleware/security"
	"github.com/scheme-mitra/backend/internal/session"
	"github.com/scheme-mitra/backend/internal/storage/sqlite"
	"github.com/scheme-mitra/backend/pkg/config"
	appLogger "github.com/scheme-mitra/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Scheme Mitra API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var redisClient *redisc.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisc.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, reply cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	schemeCatalog := catalog.NewCache(
		catalog.FileLoader(cfg.Catalog.Path),
		time.Duration(cfg.Catalog.TTLMinutes)*time.Minute,
	)
	if err := schemeCatalog.Refresh(); err != nil {
		appLogger.Fatal("Failed to load scheme catalog", zap.Error(err))
	}

	sessions := session.NewManager(schemeCatalog, session.Config{
		IdleTimeout:   time.Duration(cfg.Session.IdleTimeoutMinutes) * time.Minute,
		SweepInterval: time.Duration(cfg.Session.SweepIntervalMinutes) * time.Minute,
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.Run(sweepCtx)

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(security.Headers())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Session-ID",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 60,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	replyTTL := time.Duration(cfg.Redis.ReplyTTLMinutes) * time.Minute
	chatHandler := handlers.NewChatHandler(sessions, llmClient, sqliteClient, redisClient, replyTTL)
	wsHandler := handlers.NewWebSocketHandler(chatHandler)
	sessionHandler := handlers.NewSessionHandler(sessions)
	catalogHandler := handlers.NewCatalogHandler(schemeCatalog, redisClient)
	feedbackHandler := handlers.NewFeedbackHandler(sqliteClient)

	api := app.Group("/api/v1")

	api.Post("/chat", chatHandler.HandleChat)
	api.Get("/chat/history", chatHandler.GetChatHistory)
	api.Get("/ws", websocket.New(wsHandler.HandleConnection))

	api.Get("/schemes", catalogHandler.ListSchemes)
	api.Post("/catalog/refresh", catalogHandler.RefreshCatalog)

	api.Get("/sessions/:id/summary", sessionHandler.GetSummary)
	api.Delete("/sessions/:id", sessionHandler.DeleteSession)

	api.Post("/feedback", feedbackHandler.SubmitFeedback)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ready",
			"schemes":  len(schemeCatalog.Entities()),
			"sessions": sessions.Count(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	stopSweep()
	app.Shutdown()
	appLogger.Info("Server stopped")
}
