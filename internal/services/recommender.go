package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"huskytrack/advisor/internal/models"
)

var (
	ErrMissingPrompt      = errors.New("prompt is required")
	ErrInvalidRequestBody = errors.New("invalid request body")
)

// FallbackContextSource is reported when replies come from the rule-based advisor.
const FallbackContextSource = "builtin:core-prerequisites"

type RecommendInput struct {
	Prompt           string
	CurrentCourses   []string
	CompletedCourses []string
	History          []models.Message
	Profile          models.UserProfile
}

type Recommendation struct {
	Prompt        string
	Text          string
	ContextSource string
	Timestamp     time.Time
}

func (r *Recommendation) Response() models.RecommendResponse {
	return models.RecommendResponse{
		Prompt:        r.Prompt,
		GeneratedText: r.Text,
		ContextSource: r.ContextSource,
		Timestamp:     r.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

type Recommender interface {
	Recommend(ctx context.Context, in RecommendInput) (*Recommendation, error)
	// HandleEvent runs Recommend for a function-style invocation and never
	// returns an error; failures are encoded in the status code and body.
	HandleEvent(ctx context.Context, event models.FunctionEvent) models.FunctionResponse
}

type recommender struct {
	catalog   CourseCatalog
	prompts   *PromptBuilder
	generator TextGenerator
	fallback  *FallbackAdvisor
	index     CourseIndex
	embedder  Embedder
	now       func() time.Time
	log       *zap.Logger
}

// NewRecommender wires the assembler. A nil generator switches to the
// rule-based advisor; a nil index or embedder keeps courses in file order.
func NewRecommender(catalog CourseCatalog, prompts *PromptBuilder, generator TextGenerator, index CourseIndex, embedder Embedder, log *zap.Logger) Recommender {
	return &recommender{
		catalog:   catalog,
		prompts:   prompts,
		generator: generator,
		fallback:  NewFallbackAdvisor(),
		index:     index,
		embedder:  embedder,
		now:       time.Now,
		log:       log,
	}
}

func (r *recommender) Recommend(ctx context.Context, in RecommendInput) (*Recommendation, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, ErrMissingPrompt
	}

	if r.generator == nil {
		return &Recommendation{
			Prompt:        in.Prompt,
			Text:          r.fallback.Reply(in),
			ContextSource: FallbackContextSource,
			Timestamp:     r.now(),
		}, nil
	}

	courses, err := r.catalog.LoadCourses(ctx)
	if err != nil {
		r.log.Error("❌ Failed to load course data", zap.Error(err))
		return nil, err
	}

	var prereqs []models.CourseRecord
	if table, err := r.catalog.LoadPrerequisites(ctx); err != nil {
		r.log.Warn("⚠️ Prerequisite data unavailable, continuing without it", zap.Error(err))
	} else {
		prereqs = table.Rows
	}

	prompt := r.prompts.BuildRecommendationPrompt(PromptInput{
		Profile:          in.Profile,
		CurrentCourses:   in.CurrentCourses,
		CompletedCourses: in.CompletedCourses,
		Courses:          r.selectCourses(ctx, in.Prompt, courses.Rows),
		Prerequisites:    prereqs,
		History:          in.History,
		Prompt:           in.Prompt,
	})

	text, err := r.generator.GenerateText(ctx, prompt, RecommendationSampling)
	if err != nil {
		return nil, err
	}

	return &Recommendation{
		Prompt:        in.Prompt,
		Text:          text,
		ContextSource: r.catalog.Source(),
		Timestamp:     r.now(),
	}, nil
}

// selectCourses returns up to the course limit, most relevant first when the
// index is available, otherwise in file order.
func (r *recommender) selectCourses(ctx context.Context, prompt string, rows []models.CourseRecord) []models.CourseRecord {
	limit := r.prompts.CourseLimit()
	if r.index == nil || r.embedder == nil || len(rows) <= limit {
		return limitCourses(rows, limit)
	}

	embedding, err := r.embedder.GenerateEmbedding(ctx, prompt)
	if err != nil {
		r.log.Warn("⚠️ Prompt embedding failed, using file order", zap.Error(err))
		return limitCourses(rows, limit)
	}

	// Several chunks can belong to one course.
	matches, err := r.index.SearchCourses(ctx, embedding, limit*3)
	if err != nil {
		r.log.Warn("⚠️ Course search failed, using file order", zap.Error(err))
		return limitCourses(rows, limit)
	}

	return RankCourses(rows, matches, limit)
}

// RankCourses orders rows by first appearance of their code in matches, then
// fills any remaining slots in file order.
func RankCourses(rows []models.CourseRecord, matches []CourseMatch, limit int) []models.CourseRecord {
	byCode := make(map[string]int, len(rows))
	for i, row := range rows {
		if code := courseCode(row); code != "" {
			if _, seen := byCode[code]; !seen {
				byCode[code] = i
			}
		}
	}

	picked := make(map[int]bool, limit)
	selected := make([]models.CourseRecord, 0, limit)
	for _, m := range matches {
		if len(selected) == limit {
			return selected
		}
		i, ok := byCode[m.Code]
		if !ok || picked[i] {
			continue
		}
		picked[i] = true
		selected = append(selected, rows[i])
	}

	for i, row := range rows {
		if len(selected) == limit {
			break
		}
		if !picked[i] {
			selected = append(selected, row)
		}
	}
	return selected
}

func (r *recommender) HandleEvent(ctx context.Context, event models.FunctionEvent) models.FunctionResponse {
	req, err := DecodeRecommendRequest(event.Body)
	if err != nil {
		return errorResponse(http.StatusBadRequest, err)
	}

	in := RecommendInput{
		Prompt:           req.Prompt,
		CurrentCourses:   req.CurrentCourses,
		CompletedCourses: req.CompletedCourses,
		History:          req.Messages,
	}
	if req.Profile != nil {
		in.Profile = *req.Profile
	}

	rec, err := r.Recommend(ctx, in)
	if err != nil {
		if errors.Is(err, ErrMissingPrompt) {
			return errorResponse(http.StatusBadRequest, err)
		}
		r.log.Error("❌ Recommendation failed", zap.Error(err))
		return errorResponse(http.StatusInternalServerError, err)
	}

	body, err := json.Marshal(rec.Response())
	if err != nil {
		return errorResponse(http.StatusInternalServerError, err)
	}
	return models.FunctionResponse{StatusCode: http.StatusOK, Body: string(body)}
}

// DecodeRecommendRequest accepts the event body either as a JSON object or
// as a JSON string that holds one.
func DecodeRecommendRequest(raw json.RawMessage) (*models.RecommendRequest, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: body is empty", ErrInvalidRequestBody)
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequestBody, err)
		}
		raw = []byte(inner)
	}

	var req models.RecommendRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequestBody, err)
	}
	return &req, nil
}

func errorResponse(status int, err error) models.FunctionResponse {
	body, _ := json.Marshal(map[string]string{"error": err.Error()})
	return models.FunctionResponse{StatusCode: status, Body: string(body)}
}
