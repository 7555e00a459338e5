package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"huskytrack/advisor/internal/config"
	"huskytrack/advisor/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("🚀 Starting course ingestion...")

	if cfg.Gemini.APIKey == "" {
		zlog.Fatal("❌ GEMINI_API_KEY is required for ingestion")
	}

	ctx := context.Background()

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize Gemini", zap.Error(err))
	}

	courseIndex, err := services.NewCourseIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize Qdrant", zap.Error(err))
	}
	if err := courseIndex.InitCollection(ctx); err != nil {
		zlog.Fatal("❌ Failed to initialize collection", zap.Error(err))
	}

	awsCfg, err := services.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		zlog.Fatal("❌ Failed to load AWS configuration", zap.Error(err))
	}

	catalog := services.NewCourseCatalog(
		services.NewS3ObjectStore(awsCfg, cfg.AWS.CourseBucket),
		cfg.AWS.CoursesKey,
		cfg.AWS.PrerequisitesKey,
		zlog,
	)

	courses, err := catalog.LoadCourses(ctx)
	if err != nil {
		zlog.Fatal("❌ Failed to load courses", zap.Error(err))
	}
	zlog.Info("📖 Loaded course catalog", zap.String("source", catalog.Source()), zap.Int("courses", len(courses.Rows)))

	ingester := services.NewCourseIngester(services.NewTextChunker(), geminiService, courseIndex, zlog)
	stats, err := ingester.Ingest(ctx, courses.Rows)
	if err != nil {
		zlog.Fatal("❌ Ingestion aborted", zap.Error(err))
	}

	zlog.Info("🎉 Ingestion completed",
		zap.Int("courses", stats.Courses),
		zap.Int("chunks", stats.Chunks),
		zap.Int("failed", stats.Failed),
	)
}
