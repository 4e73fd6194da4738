// Package web serves the planner form, the rendered plan and the JSON API.
package web

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"school-meal-planner/internal/app"
	"school-meal-planner/internal/auth"
	"school-meal-planner/internal/history"
	"school-meal-planner/internal/logging"
	"school-meal-planner/internal/planner"
	"school-meal-planner/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html static
var assets embed.FS

// Service is the application surface the handlers need.
type Service interface {
	Snapshot(sessionID string) session.Snapshot
	GeneratePlan(ctx context.Context, sessionID string, req planner.MealRequest) (session.Snapshot, error)
	LookupIngredients(ctx context.Context, sessionID string) (session.Snapshot, error)
	Share(ctx context.Context, sessionID string) error
	SharingEnabled() bool
	ImportPreviousMenus(ctx context.Context, url string) (string, error)
	RecentHistory(ctx context.Context, sessionID string, limit int) ([]history.Entry, error)
	PreviousMenus(ctx context.Context, limit int) (string, error)
	Usage(ctx context.Context, days int) (app.UsageReport, error)
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
	Logger         *zap.Logger
}

// Server holds the handler dependencies.
type Server struct {
	svc    Service
	logger *zap.Logger
	now    func() time.Time

	serviceWorker []byte
	manifest      []byte
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc Service, tokens *auth.Tokens, opts Options) (*gin.Engine, error) {
	logger := logging.OrNop(opts.Logger)

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}
	sw, err := fs.ReadFile(static, "sw.js")
	if err != nil {
		return nil, err
	}
	manifest, err := fs.ReadFile(static, "manifest.json")
	if err != nil {
		return nil, err
	}

	s := &Server{
		svc:           svc,
		logger:        logger,
		now:           time.Now,
		serviceWorker: sw,
		manifest:      manifest,
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/sw.js", s.ServiceWorker)
	r.GET("/manifest.json", s.Manifest)
	r.StaticFS("/static", http.FS(static))

	pages := r.Group("/")
	pages.Use(auth.SessionMiddleware(tokens, opts.SecureCookies, logger))
	{
		pages.GET("/", s.Index)
		pages.POST("/plan", s.SubmitPlan)
		pages.POST("/ingredients", s.SubmitLookup)
		pages.POST("/share", s.SubmitShare)
	}

	api := r.Group("/api")
	api.Use(auth.SessionMiddleware(tokens, opts.SecureCookies, logger))
	{
		api.GET("/session", s.GetSession)
		api.POST("/plan", s.CreatePlan)
		api.POST("/ingredients", s.CreateLookup)
		api.POST("/share", s.SharePlan)
		api.POST("/previous-menus/import", s.ImportPreviousMenus)
		api.GET("/history", s.ListHistory)
		api.GET("/metrics", s.GetMetrics)
	}

	return r, nil
}

// ServiceWorker serves the offline cache worker from the site root so its
// scope covers every page.
func (s *Server) ServiceWorker(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", s.serviceWorker)
}

// Manifest serves the installable-app manifest.
func (s *Server) Manifest(c *gin.Context) {
	c.Data(http.StatusOK, "application/manifest+json; charset=utf-8", s.manifest)
}
