package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"huskytrack/advisor/internal/config"
	"huskytrack/advisor/internal/handlers"
	"huskytrack/advisor/internal/repositories"
	"huskytrack/advisor/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("✅ Config loaded successfully", zap.Bool("env_file", cfg.EnvFileLoaded), zap.String("env", cfg.Server.Env))

	// Initialize database
	db, err := config.InitDatabase(cfg, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize database", zap.Error(err))
	}

	profileRepo := repositories.NewProfileRepository(db)
	zlog.Info("✅ Repositories initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// AWS collaborators
	awsCfg, err := services.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		zlog.Fatal("❌ Failed to load AWS configuration", zap.Error(err))
	}
	identity := services.NewIdentityChecker(awsCfg)
	checkAWSCredentials(ctx, identity, zlog)

	pdfStore := services.NewS3ObjectStore(awsCfg, cfg.AWS.PDFBucket)
	courseStore := services.NewS3ObjectStore(awsCfg, cfg.AWS.CourseBucket)

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		zlog.Fatal("❌ Failed to create upload directory", zap.Error(err))
	}

	documentParser := services.NewDocumentParser()
	uploadService := services.NewUploadService(storageService, pdfStore, documentParser, zlog)
	catalog := services.NewCourseCatalog(courseStore, cfg.AWS.CoursesKey, cfg.AWS.PrerequisitesKey, zlog)
	zlog.Info("✅ Services initialized successfully")

	// Hosted model is optional; without a key the rule-based advisor answers.
	var (
		generator services.TextGenerator
		embedder  services.Embedder
	)
	if cfg.Gemini.APIKey != "" {
		geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, zlog)
		if err != nil {
			zlog.Fatal("❌ Failed to initialize Gemini AI", zap.Error(err))
		}
		generator, embedder = geminiService, geminiService
		zlog.Info("✅ Gemini AI initialized successfully", zap.String("model", cfg.Gemini.Model))
	} else {
		zlog.Warn("⚠️ GEMINI_API_KEY not set, using rule-based advisor")
	}

	var courseIndex services.CourseIndex
	if cfg.Qdrant.Enabled && embedder != nil {
		courseIndex, err = services.NewCourseIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, zlog)
		if err != nil {
			zlog.Fatal("❌ Failed to initialize Qdrant", zap.Error(err))
		}
		if err := courseIndex.InitCollection(ctx); err != nil {
			zlog.Fatal("❌ Failed to initialize Qdrant collection", zap.Error(err))
		}
		zlog.Info("✅ Qdrant initialized successfully")
	}

	prompts := services.NewPromptBuilder(cfg.Advisor.CourseLimit, cfg.Advisor.HistoryLimit)
	recommender := services.NewRecommender(catalog, prompts, generator, courseIndex, embedder, zlog)
	zlog.Info("✅ Recommender initialized")

	// Profile writer
	writer := services.NewProfileWriter(cfg.Worker.ProfileWriterShards, zlog)
	writer.Start(ctx)

	profileService := services.NewProfileService(
		profileRepo,
		writer,
		services.NewSignUpPolicy(cfg.Auth.AllowedEmailDomain),
		zlog,
	)

	// Initialize Handlers
	uploadHandler := handlers.NewUploadHandler(uploadService, profileService, cfg.Storage.MaxFileSize, zlog)
	pdfHandler := handlers.NewPDFHandler(storageService, documentParser, services.NewPDFTextExtractor(), zlog)
	profileHandler := handlers.NewProfileHandler(profileService, zlog)
	chatHandler := handlers.NewChatHandler(profileService, recommender, zlog)
	recommendHandler := handlers.NewRecommendHandler(recommender)
	healthHandler := handlers.NewHealthHandler(identity, cfg.AWS.Region, zlog)
	zlog.Info("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "HuskyTrack Advisor API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
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

	app.Static("/uploads", cfg.Storage.UploadPath, fiber.Static{
		ModifyResponse: func(c *fiber.Ctx) error {
			if strings.HasSuffix(strings.ToLower(c.Path()), ".pdf") {
				c.Set(fiber.HeaderContentType, services.PDFContentType)
			}
			return nil
		},
	})

	// Routes
	app.Get("/health", healthHandler.HandleHealth)
	app.Post("/upload/pdf", uploadHandler.HandleUpload)
	app.Get("/pdfs", pdfHandler.HandleList)
	app.Get("/pdf/:filename", pdfHandler.HandleGet)
	app.Get("/transcript/:filename", pdfHandler.HandleTranscript)
	app.Get("/debug-pdf/:filename", pdfHandler.HandleDebug)

	api := app.Group("/api")
	api.Get("/aws-test", healthHandler.HandleAWSTest)
	api.Post("/recommend", recommendHandler.HandleRecommend)

	users := api.Group("/users/:id")
	users.Get("/", profileHandler.HandleGet)
	users.Put("/", profileHandler.HandlePut)
	users.Post("/signin", profileHandler.HandleSignIn)
	users.Post("/chats", chatHandler.HandleStart)
	users.Post("/chats/:chatId/messages", chatHandler.HandleSend)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "HuskyTrack Advisor API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /upload/pdf",
				"GET /pdfs",
				"GET /pdf/:filename",
				"GET /transcript/:filename",
				"GET /debug-pdf/:filename",
				"GET /api/users/:id",
				"PUT /api/users/:id",
				"POST /api/users/:id/signin",
				"POST /api/users/:id/chats",
				"POST /api/users/:id/chats/:chatId/messages",
				"POST /api/recommend",
				"GET /api/aws-test",
				"GET /health",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			zlog.Error("❌ Server forced to shutdown", zap.Error(err))
		}
		writer.Stop()
		cancel()
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("❌ Failed to start server", zap.Error(err))
	}
}

// checkAWSCredentials logs the caller identity. Failure only warns; uploads
// then keep their local copy and report the storage error.
func checkAWSCredentials(ctx context.Context, identity services.IdentityChecker, zlog *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	id, err := identity.CallerIdentity(ctx)
	if err != nil {
		zlog.Warn("⚠️ AWS credential check failed", zap.Error(err))
		return
	}
	zlog.Info("✅ AWS credentials OK", zap.String("account", id.Account), zap.String("arn", id.ARN), zap.String("region", id.Region))
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
