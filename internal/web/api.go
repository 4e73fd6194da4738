package web

import (
	"errors"
	"net/http"
	"strconv"

	"school-meal-planner/internal/app"
	"school-meal-planner/internal/auth"
	"school-meal-planner/internal/clipper"
	"school-meal-planner/internal/planner"
	"school-meal-planner/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
	defaultMetricsDays  = 7
)

// GetSession returns the caller's current state.
func (s *Server) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Snapshot(auth.SessionID(c)))
}

// CreatePlan runs a generation and returns the resulting state. An upstream
// failure is reported as 502 with the failed state as body.
func (s *Server) CreatePlan(c *gin.Context) {
	var req planner.MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snap, err := s.svc.GeneratePlan(c.Request.Context(), auth.SessionID(c), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if snap.PlanStatus == session.StatusFailed {
		c.JSON(http.StatusBadGateway, snap)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// CreateLookup runs the ingredient lookup for the current plan.
func (s *Server) CreateLookup(c *gin.Context) {
	snap, err := s.svc.LookupIngredients(c.Request.Context(), auth.SessionID(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if snap.IngredientStatus == session.StatusFailed {
		c.JSON(http.StatusBadGateway, snap)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SharePlan sends the current plan to the configured chat.
func (s *Server) SharePlan(c *gin.Context) {
	if err := s.svc.Share(c.Request.Context(), auth.SessionID(c)); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "shared"})
}

type importRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ImportPreviousMenus fetches previous menus from a page.
func (s *Server) ImportPreviousMenus(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	text, err := s.svc.ImportPreviousMenus(c.Request.Context(), req.URL)
	if errors.Is(err, clipper.ErrUnsupportedScheme) || errors.Is(err, clipper.ErrForbiddenDestination) {
		s.logger.Warn("refused previous menu import", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "this address cannot be imported"})
		return
	}
	if err != nil {
		s.logger.Warn("previous menu import failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"previousMenus": text})
}

// ListHistory returns recent plans and their previous-menus rendering.
// scope=mine restricts the entries to the caller's session.
func (s *Server) ListHistory(c *gin.Context) {
	limit := queryInt(c, "limit", defaultHistoryLimit)
	if limit < 1 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	var sessionID string
	if c.Query("scope") == "mine" {
		sessionID = auth.SessionID(c)
	}

	entries, err := s.svc.RecentHistory(c.Request.Context(), sessionID, limit)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	menus, err := s.svc.PreviousMenus(c.Request.Context(), limit)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "previousMenus": menus})
}

// GetMetrics returns token usage and process health.
func (s *Server) GetMetrics(c *gin.Context) {
	days := queryInt(c, "days", defaultMetricsDays)
	if days < 1 {
		days = defaultMetricsDays
	}

	report, err := s.svc.Usage(c.Request.Context(), days)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// statusFor maps application errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, planner.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrLookupNotOffered), errors.Is(err, app.ErrNothingToShare):
		return http.StatusConflict
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusGone
	case errors.Is(err, app.ErrSharingDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
