package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Weird-ragazzo/bandrec/internal/api/middleware"
	"github.com/Weird-ragazzo/bandrec/internal/band"
	"github.com/Weird-ragazzo/bandrec/internal/catalog"
	"github.com/Weird-ragazzo/bandrec/internal/dataset"
)

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	BandService    *band.Service
	CatalogService *catalog.Service
	Importer       *dataset.Importer
	Logger         *slog.Logger
	BasePath       string
	StaticDir      string
}

// Router sets up all HTTP routes for the application.
type Router struct {
	bandService    *band.Service
	catalogService *catalog.Service
	importer       *dataset.Importer
	logger         *slog.Logger
	basePath       string
	staticDir      string
	staticAssets   *StaticAssets
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		bandService:    deps.BandService,
		catalogService: deps.CatalogService,
		importer:       deps.Importer,
		logger:         deps.Logger,
		basePath:       deps.BasePath,
		staticDir:      deps.StaticDir,
		staticAssets:   NewStaticAssets(deps.StaticDir, deps.Logger),
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	bp := r.basePath

	mux.HandleFunc("GET "+bp+"/api/v1/health", r.handleHealth)
	mux.HandleFunc("GET "+bp+"/api/v1/bands", r.handleListBands)
	mux.HandleFunc("GET "+bp+"/api/v1/bands/origins", r.handleListOrigins)
	mux.HandleFunc("GET "+bp+"/api/v1/bands/genres", r.handleListGenres)
	mux.HandleFunc("GET "+bp+"/api/v1/bands/{id}", r.handleGetBand)
	mux.HandleFunc("GET "+bp+"/api/v1/schema", r.handleGetSchema)

	mux.HandleFunc("GET "+bp+"/api/v1/recommendations", r.handleRecommendations)
	mux.HandleFunc("POST "+bp+"/api/v1/recommendations/preferences", r.handlePreferenceRecommendations)

	// Reload is expensive (full reimport + matrix rebuild), so it gets
	// its own per-IP budget.
	reloadLimiter := middleware.NewRateLimiter(10*time.Second, 3)
	mux.Handle("POST "+bp+"/api/v1/dataset/reload",
		reloadLimiter.Middleware(http.HandlerFunc(r.handleDatasetReload)))
	mux.HandleFunc("GET "+bp+"/api/v1/dataset/stats", r.handleDatasetStats)

	mux.Handle("GET "+bp+"/static/", r.staticAssets.Handler(bp))
	mux.HandleFunc("GET "+bp+"/{$}", r.handleIndex)

	// Apply logging to all requests
	return middleware.Logging(r.logger)(mux)
}
