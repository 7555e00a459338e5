package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

var ErrNoResponseGenerated = errors.New("no response generated")

// GenerationConfig is the sampling configuration sent with a prompt.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
	StopSequences   []string
}

// RecommendationSampling is used for every advisor reply.
var RecommendationSampling = GenerationConfig{
	Temperature:     0.3,
	TopP:            1,
	MaxOutputTokens: 1024,
}

type TextGenerator interface {
	// GenerateText makes one non-streaming call and returns the first
	// content block's text, or ErrNoResponseGenerated.
	GenerateText(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type GeminiService interface {
	TextGenerator
	Embedder
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	log        *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, model, embedModel string, log *zap.Logger) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  model,
		embedModel: embedModel,
		log:        log,
	}, nil
}

func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Keep well under the embedding model's input limit.
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

func (g *geminiService) GenerateText(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	temperature := cfg.Temperature
	topP := cfg.TopP

	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopP:            &topP,
		MaxOutputTokens: cfg.MaxOutputTokens,
		StopSequences:   cfg.StopSequences,
	}

	g.log.Debug("Calling model", zap.String("model", g.modelName), zap.Int("prompt_chars", len(prompt)))

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		g.log.Error("❌ Gemini API error", zap.Error(err))
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	text, err := firstContentText(resp)
	if err != nil {
		g.log.Warn("⚠️ Gemini returned no text", zap.Error(err))
		return "", err
	}

	return text, nil
}

func firstContentText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoResponseGenerated
	}

	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil || content.Parts[0].Text == "" {
		return "", ErrNoResponseGenerated
	}

	return content.Parts[0].Text, nil
}
