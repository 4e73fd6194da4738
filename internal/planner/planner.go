package planner

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"school-meal-planner/internal/llm"
	"school-meal-planner/internal/shared"

	"go.uber.org/zap"
)

//go:embed meal_plan_prompt.md
var mealPlanPrompt string

//go:embed ingredient_info_prompt.md
var ingredientInfoPrompt string

var (
	mealPlanTmpl       = template.Must(template.New("mealPlan").Parse(mealPlanPrompt))
	ingredientInfoTmpl = template.Must(template.New("ingredientInfo").Parse(ingredientInfoPrompt))
)

// ErrNoIngredients is returned when a lookup is requested for an empty list.
var ErrNoIngredients = errors.New("no ingredients to look up")

// MetricsRecorder persists per-call LLM usage.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// Planner talks to the text-generation service for both round-trips: the
// meal plan itself and the ingredient supply lookup.
type Planner struct {
	mealGen       llm.TextGenerator
	ingredientGen llm.TextGenerator
	metrics       MetricsRecorder
	logger        *zap.Logger
}

// NewPlanner creates a new Planner instance. metrics may be nil.
func NewPlanner(mealGen, ingredientGen llm.TextGenerator, metrics MetricsRecorder, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		mealGen:       mealGen,
		ingredientGen: ingredientGen,
		metrics:       metrics,
		logger:        logger,
	}
}

// GenerateMealPlan returns the raw plan text for req.
func (p *Planner) GenerateMealPlan(ctx context.Context, req MealRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	prompt, err := buildPrompt(mealPlanTmpl, req)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := p.mealGen.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate meal plan: %w", err)
	}
	p.record(ctx, shared.AgentMeta{
		AgentName: shared.AgentMealPlanner,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	})

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", fmt.Errorf("meal plan response was empty")
	}
	return text, nil
}

// LookupIngredients asks for price and supply information for a
// newline-separated ingredient list.
func (p *Planner) LookupIngredients(ctx context.Context, ingredients string) ([]IngredientInfo, error) {
	if strings.TrimSpace(ingredients) == "" {
		return nil, ErrNoIngredients
	}

	prompt, err := buildPrompt(ingredientInfoTmpl, struct{ Ingredients string }{ingredients})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := p.ingredientGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ingredients: %w", err)
	}
	p.record(ctx, shared.AgentMeta{
		AgentName: shared.AgentIngredientAnalyst,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	})

	info, err := parseIngredientInfo(resp.Content)
	if err != nil {
		return nil, err
	}
	for _, item := range info {
		if !item.Status.Known() {
			p.logger.Warn("unknown supply status", zap.String("ingredient", item.Name), zap.String("status", string(item.Status)))
		}
	}
	return info, nil
}

func (p *Planner) record(ctx context.Context, meta shared.AgentMeta) {
	if p.metrics == nil {
		return
	}
	if err := p.metrics.RecordMeta(ctx, meta); err != nil {
		p.logger.Warn("failed to record metrics", zap.String("agent", meta.AgentName), zap.Error(err))
	}
}

func buildPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
