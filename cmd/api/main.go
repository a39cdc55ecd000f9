package main

import (
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

	"github.com/JoeyRudd/ai-fitness-coach/internal/api/handlers"
	"github.com/JoeyRudd/ai-fitness-coach/internal/cache/redis"
	"github.com/JoeyRudd/ai-fitness-coach/internal/coach"
	"github.com/JoeyRudd/ai-fitness-coach/internal/knowledge"
	"github.com/JoeyRudd/ai-fitness-coach/internal/llm"
	"github.com/JoeyRudd/ai-fitness-coach/internal/metrics"
	"github.com/JoeyRudd/ai-fitness-coach/internal/middleware/ratelimit"
	"github.com/JoeyRudd/ai-fitness-coach/internal/middleware/security"
	"github.com/JoeyRudd/ai-fitness-coach/internal/middleware/validation"
	"github.com/JoeyRudd/ai-fitness-coach/internal/retrieval"
	"github.com/JoeyRudd/ai-fitness-coach/internal/storage/sqlite"
	"github.com/JoeyRudd/ai-fitness-coach/pkg/config"
	appLogger "github.com/JoeyRudd/ai-fitness-coach/pkg/logger"
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

	appLogger.Info("Starting fitness coach API server")

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cacheClient *redis.Client
	if cfg.Redis.Host != "" {
		cacheClient, err = redis.NewClient(cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, reply cache disabled", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
		}
	}

	kbRoot := knowledge.ResolveRoot(cfg.Knowledge.Paths, cfg.Knowledge.DefaultPath)
	docs := knowledge.Load(kbRoot)
	chunker := knowledge.NewChunker(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap, cfg.Retrieval.MaxChunkHard)
	chunks := chunker.Chunk(docs)

	index := retrieval.NewIndex(chunks)
	if err := index.Build(); err != nil {
		appLogger.Warn("Retrieval index build deferred", zap.Error(err))
	}

	llmClient := llm.NewClient(cfg.LLM)

	var completer coach.Completer
	if llmClient != nil {
		completer = llmClient
	}
	engine := coach.NewEngine(index, completer, cfg.Retrieval.TopK)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{Logger: appLogger.GetLogger()})
	defer limiter.Stop()
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	chatHandler := handlers.NewChatHandler(engine, sqliteClient, cacheClient)
	wsHandler := handlers.NewWebSocketHandler(engine)

	app.Get("/", func(c *fiber.Ctx) error {
		status := index.Status()
		return c.JSON(fiber.Map{
			"message":     "Fitness coach API is running",
			"model":       cfg.LLM.Model,
			"rag_status":  status.State,
			"rag_backend": status.Backend,
			"rag_chunks":  status.Chunks,
		})
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	api := app.Group("/api/v1")
	api.Post("/chat", chatHandler.HandleChat)
	api.Get("/chat/history", chatHandler.GetChatHistory)

	api.Use("/chat/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/chat/ws", websocket.New(wsHandler.HandleConnection))

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
	app.Shutdown()
	appLogger.Info("Server stopped")
}
