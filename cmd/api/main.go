package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"resumatch/resume-matcher/internal/config"
	"resumatch/resume-matcher/internal/handlers"
	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	recordRepo := repositories.NewMatchRecordRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	extractor := services.NewTextExtractorService(
		cfg.Upload.MaxFileSize,
		cfg.Upload.MaxPages,
		cfg.Upload.MaxTextLength,
		cfg.Upload.MinTextLength,
	)
	attributes := services.NewAttributeExtractorService()
	log.Println("✅ Extraction services initialized successfully")

	// Initialize Gemini embeddings
	embedder, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.EmbedModel,
		cfg.Gemini.Dimension,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}
	log.Println("✅ Gemini embeddings initialized successfully")

	// Initialize Qdrant
	jobIndex, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		cfg.Gemini.Dimension,
		cfg.Matcher.MaxTopK,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := jobIndex.InitCollection(context.Background(), false); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Initialize matcher
	matcher := services.NewMatcherService(
		extractor,
		attributes,
		embedder,
		jobIndex,
		cfg.Matcher.SimilarityWeight,
		cfg.Matcher.AttributeWeight,
		cfg.Matcher.TopK,
		cfg.Matcher.DefaultResults,
		cfg.Matcher.MaxResults,
	)
	log.Println("✅ Matcher service initialized")

	// Initialize handlers
	matchHandler := handlers.NewMatchHandler(matcher, recordRepo, cfg.Upload.MaxFileSize)
	resumeHandler := handlers.NewResumeHandler(matcher, cfg.Upload.MaxFileSize)
	historyHandler := handlers.NewHistoryHandler(recordRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Matching API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Upload.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/match", matchHandler.HandleMatch)
	api.Post("/resume/embed", resumeHandler.HandleEmbedResume)
	api.Get("/matches", historyHandler.HandleListMatches)
	api.Get("/matches/:id", historyHandler.HandleGetMatch)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Matching API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/match",
				"POST /api/v1/resume/embed",
				"GET /api/v1/matches",
				"GET /api/v1/matches/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
