package llm

import (
	"context"
	"fmt"
	"strings"

	"school-meal-planner/internal/config"
	"school-meal-planner/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient owns the connection to the Google Gemini API. Generators for
// individual prompts are obtained with Model.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelName: cfg.GeminiModel}, nil
}

// Model returns a TextGenerator bound to the configured model.
func (c *GeminiClient) Model(format OutputFormat, temperature float32) TextGenerator {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(temperature)
	if format == FormatJSON {
		model.ResponseMIMEType = "application/json"
	}
	return &geminiModel{model: model, name: c.modelName}
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

type geminiModel struct {
	model *genai.GenerativeModel
	name  string
}

// GenerateContent sends a prompt to the Gemini model and returns the generated text.
func (m *geminiModel) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := m.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return ContentResponse{}, fmt.Errorf("generated content is not text")
	}

	usage := shared.TokenUsage{Model: m.name}
	if md := resp.UsageMetadata; md != nil {
		usage.PromptTokens = int(md.PromptTokenCount)
		usage.CompletionTokens = int(md.CandidatesTokenCount)
		usage.TotalTokens = int(md.TotalTokenCount)
	}

	return ContentResponse{Content: sb.String(), Usage: usage}, nil
}
