package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"school-meal-planner/internal/app"
	"school-meal-planner/internal/auth"
	"school-meal-planner/internal/config"
	"school-meal-planner/internal/logging"
	"school-meal-planner/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sessionIdleTimeout = 2 * time.Hour
	sweepInterval      = 10 * time.Minute
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Services
	application, closeApp, err := app.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer closeApp()

	router, err := web.NewRouter(application, auth.NewTokens(cfg.SessionSecret), web.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.AppEnv == "production",
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 3. Start Server and Session Sweeper with Graceful Shutdown
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("meal planner server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := application.Sessions().Sweep(sessionIdleTimeout); n > 0 {
					logger.Info("swept idle sessions", zap.Int("removed", n))
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server exiting")
}
