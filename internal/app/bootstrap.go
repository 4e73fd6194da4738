package app

import (
	"context"
	"fmt"

	"school-meal-planner/internal/clipper"
	"school-meal-planner/internal/config"
	"school-meal-planner/internal/database"
	"school-meal-planner/internal/history"
	"school-meal-planner/internal/llm"
	"school-meal-planner/internal/metrics"
	"school-meal-planner/internal/planner"
	"school-meal-planner/internal/telegram"

	"go.uber.org/zap"
)

// Bootstrap opens the database and the LLM clients and wires an App from
// cfg. The returned close function releases them.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	closeAll := func() {
		if err := geminiClient.Close(); err != nil {
			logger.Warn("failed to close gemini client", zap.Error(err))
		}
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}

	mealModel := geminiClient.Model(llm.FormatText, 0.7)
	jsonModel := geminiClient.Model(llm.FormatJSON, 0.2)
	if cfg.GroqAPIKey != "" {
		logger.Info("using groq for structured lookups", zap.String("model", cfg.GroqModel))
		jsonModel = llm.NewGroqClient(cfg, llm.FormatJSON, 0.2)
	}

	metricsStore := metrics.NewStore(db.SQL)

	deps := Deps{
		Planner:      planner.NewPlanner(mealModel, jsonModel, metricsStore, logger),
		History:      history.NewRepository(db.SQL),
		Metrics:      metricsStore,
		Importer:     clipper.NewClipper(jsonModel),
		DatabasePath: cfg.DatabasePath,
		Logger:       logger,
	}

	if cfg.TelegramEnabled() {
		notifier, err := telegram.NewNotifier(cfg, logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		deps.Notifier = notifier
	} else {
		logger.Info("telegram sharing disabled")
	}

	return NewApp(deps), closeAll, nil
}
