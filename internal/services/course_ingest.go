package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"huskytrack/advisor/internal/models"
)

type IngestStats struct {
	Courses int
	Chunks  int
	Failed  int
}

// CourseIngester embeds course descriptions into the course index.
type CourseIngester struct {
	chunker  TextChunker
	embedder Embedder
	index    CourseIndex
	log      *zap.Logger
}

func NewCourseIngester(chunker TextChunker, embedder Embedder, index CourseIndex, log *zap.Logger) *CourseIngester {
	return &CourseIngester{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		log:      log,
	}
}

// CourseDocument renders the text indexed for one course.
func CourseDocument(c models.CourseRecord) string {
	return FormatCourses([]models.CourseRecord{c})
}

// Ingest replaces each course's chunks in the index. A failed course is
// counted and skipped.
func (ci *CourseIngester) Ingest(ctx context.Context, rows []models.CourseRecord) (IngestStats, error) {
	var stats IngestStats

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		code := courseCode(row)
		if strings.TrimSpace(code) == "" {
			continue
		}

		n, err := ci.ingestCourse(ctx, code, CourseDocument(row))
		if err != nil {
			ci.log.Warn("⚠️ Failed to index course", zap.String("course", code), zap.Error(err))
			stats.Failed++
			continue
		}

		stats.Courses++
		stats.Chunks += n
	}

	return stats, nil
}

func (ci *CourseIngester) ingestCourse(ctx context.Context, code, text string) (int, error) {
	if err := ci.index.DeleteCourse(ctx, code); err != nil {
		return 0, err
	}

	chunks := ci.chunker.ChunkText(text, 1000, 200)
	for i, chunk := range chunks {
		embedding, err := ci.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return i, fmt.Errorf("chunk %d: %w", i, err)
		}
		if err := ci.index.UpsertCourse(ctx, code, i, chunk, embedding); err != nil {
			return i, fmt.Errorf("chunk %d: %w", i, err)
		}
	}
	return len(chunks), nil
}
