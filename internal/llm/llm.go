package llm

import (
	"context"

	"school-meal-planner/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// OutputFormat selects what a generator is asked to return.
type OutputFormat int

const (
	FormatText OutputFormat = iota
	FormatJSON
)
