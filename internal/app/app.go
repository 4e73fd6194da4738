package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"school-meal-planner/internal/history"
	"school-meal-planner/internal/logging"
	"school-meal-planner/internal/metrics"
	"school-meal-planner/internal/planner"
	"school-meal-planner/internal/planview"
	"school-meal-planner/internal/session"

	"go.uber.org/zap"
)

var (
	// ErrSharingDisabled is returned by Share when no chat is configured.
	ErrSharingDisabled = errors.New("plan sharing is not configured")
	// ErrNothingToShare is returned by Share before a plan has been generated.
	ErrNothingToShare = errors.New("no completed meal plan to share")
)

// MealPlanner runs the two LLM round-trips.
type MealPlanner interface {
	GenerateMealPlan(ctx context.Context, req planner.MealRequest) (string, error)
	LookupIngredients(ctx context.Context, ingredients string) ([]planner.IngredientInfo, error)
}

// MenuImporter turns a web page into previous-menu text.
type MenuImporter interface {
	Import(ctx context.Context, url string) (string, error)
}

// Notifier delivers plans and reports to a chat.
type Notifier interface {
	SendPlan(ctx context.Context, r planview.Result) error
	SendUsageReport(ctx context.Context, usage []metrics.DailyUsage, health metrics.SysHealth) error
}

// App holds the application's dependencies.
type App struct {
	planner  MealPlanner
	sessions *session.Store
	history  *history.Repository
	metrics  *metrics.Store
	importer MenuImporter
	notifier Notifier
	dataDir  string
	logger   *zap.Logger
}

// Deps lists what NewApp wires together. Notifier and Importer are optional.
type Deps struct {
	Planner      MealPlanner
	Sessions     *session.Store
	History      *history.Repository
	Metrics      *metrics.Store
	Importer     MenuImporter
	Notifier     Notifier
	DatabasePath string
	Logger       *zap.Logger
}

// NewApp creates and initializes a new App instance.
func NewApp(d Deps) *App {
	logger := logging.OrNop(d.Logger)
	sessions := d.Sessions
	if sessions == nil {
		sessions = session.NewStore()
	}
	return &App{
		planner:  d.Planner,
		sessions: sessions,
		history:  d.History,
		metrics:  d.Metrics,
		importer: d.Importer,
		notifier: d.Notifier,
		dataDir:  filepath.Dir(d.DatabasePath),
		logger:   logger,
	}
}

// Sessions exposes the workspace store for the sweeper.
func (a *App) Sessions() *session.Store {
	return a.sessions
}

// SharingEnabled reports whether Share can deliver anything.
func (a *App) SharingEnabled() bool {
	return a.notifier != nil
}

// Snapshot returns the current state of a session.
func (a *App) Snapshot(sessionID string) session.Snapshot {
	return a.sessions.Snapshot(sessionID)
}

// GeneratePlan runs a meal-plan round-trip for the session and stores a
// successful plan in the history. Upstream failures are recorded on the
// session rather than returned; only invalid requests return an error.
func (a *App) GeneratePlan(ctx context.Context, sessionID string, req planner.MealRequest) (session.Snapshot, error) {
	if err := req.Validate(); err != nil {
		return session.Snapshot{}, err
	}

	ticket := a.sessions.BeginPlan(sessionID, req)
	text, genErr := a.planner.GenerateMealPlan(ctx, req)
	if genErr != nil {
		a.logger.Warn("meal plan generation failed", zap.String("session_id", sessionID), zap.Error(genErr))
	}

	applied, err := a.sessions.CompletePlan(sessionID, ticket, text, genErr)
	if err != nil {
		return session.Snapshot{}, err
	}
	if !applied {
		a.logger.Info("discarded superseded meal plan", zap.String("session_id", sessionID))
	}

	if genErr == nil && applied && a.history != nil {
		result := planview.Parse(text)
		if _, err := a.history.Save(ctx, history.Entry{
			SessionID:    sessionID,
			Date:         req.Date,
			Day:          req.Day,
			MenuType:     req.MenuType,
			ResponseText: text,
			Allergens:    result.Allergens,
		}); err != nil {
			a.logger.Warn("failed to save meal plan to history", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	return a.sessions.Snapshot(sessionID), nil
}

// LookupIngredients runs the ingredient round-trip for the session's current
// plan. It returns session.ErrLookupNotOffered when the lookup is unavailable.
func (a *App) LookupIngredients(ctx context.Context, sessionID string) (session.Snapshot, error) {
	ticket, ingredients, err := a.sessions.BeginLookup(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}

	info, lookupErr := a.planner.LookupIngredients(ctx, ingredients)
	if lookupErr != nil {
		a.logger.Warn("ingredient lookup failed", zap.String("session_id", sessionID), zap.Error(lookupErr))
	}

	applied, err := a.sessions.CompleteLookup(sessionID, ticket, info, lookupErr)
	if err != nil {
		return session.Snapshot{}, err
	}
	if !applied {
		a.logger.Info("discarded ingredient lookup for a superseded plan", zap.String("session_id", sessionID))
	}
	return a.sessions.Snapshot(sessionID), nil
}

// Share sends the session's current plan to the configured chat.
func (a *App) Share(ctx context.Context, sessionID string) error {
	if a.notifier == nil {
		return ErrSharingDisabled
	}
	snap := a.sessions.Snapshot(sessionID)
	if snap.Plan == nil {
		return ErrNothingToShare
	}
	return a.notifier.SendPlan(ctx, *snap.Plan)
}

// ImportPreviousMenus fetches previous menus from url.
func (a *App) ImportPreviousMenus(ctx context.Context, url string) (string, error) {
	if a.importer == nil {
		return "", errors.New("menu import is not configured")
	}
	return a.importer.Import(ctx, url)
}

// RecentHistory lists the most recently generated plans, limited to one
// session when sessionID is set.
func (a *App) RecentHistory(ctx context.Context, sessionID string, limit int) ([]history.Entry, error) {
	if sessionID != "" {
		return a.history.ListRecentBySession(ctx, sessionID, limit)
	}
	return a.history.ListRecent(ctx, limit)
}

// PreviousMenus formats recent plans for the previous-menus field.
func (a *App) PreviousMenus(ctx context.Context, limit int) (string, error) {
	entries, err := a.history.ListRecent(ctx, limit)
	if err != nil {
		return "", err
	}
	return history.FormatPreviousMenus(entries), nil
}

// UsageReport is token usage plus a process snapshot.
type UsageReport struct {
	Usage  []metrics.DailyUsage `json:"usage"`
	Health metrics.SysHealth    `json:"health"`
}

// Usage collects the last days of token usage.
func (a *App) Usage(ctx context.Context, days int) (UsageReport, error) {
	usage, err := a.metrics.GetDailyUsage(ctx, days)
	if err != nil {
		return UsageReport{}, err
	}
	if usage == nil {
		usage = []metrics.DailyUsage{}
	}
	return UsageReport{Usage: usage, Health: metrics.GetSysHealth(a.dataDir)}, nil
}

// SendUsageReport posts the usage report to the configured chat.
func (a *App) SendUsageReport(ctx context.Context, days int) error {
	if a.notifier == nil {
		return ErrSharingDisabled
	}
	report, err := a.Usage(ctx, days)
	if err != nil {
		return fmt.Errorf("failed to collect usage: %w", err)
	}
	return a.notifier.SendUsageReport(ctx, report.Usage, report.Health)
}

// CleanupMetrics removes metric records older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	return a.metrics.Cleanup(ctx, days)
}
