package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"election-dashboard/internal/config"
	"election-dashboard/internal/services"
	"election-dashboard/internal/web"
)

// RouterDeps are the services the HTTP surface is built from
type RouterDeps struct {
	Dashboard *services.DashboardService
	Export    *services.ExportService
	Registry  *prometheus.Registry
	Logger    *zap.Logger
}

// NewRouter wires the middleware stack and every route
func NewRouter(cfg *config.Config, deps RouterDeps) http.Handler {
	metrics := NewMetrics(deps.Registry)

	dashboardHandler := NewDashboardHandler(deps.Dashboard, deps.Logger)
	figureHandler := NewFigureHandler(deps.Dashboard, metrics, deps.Logger)
	exportHandler := NewExportHandler(deps.Export, deps.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Logger))
	r.Use(Recoverer(deps.Logger))
	r.Use(metrics.Instrument)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}).Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound("no route for %s", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, NewAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed"))
	})

	r.Get("/health", HandleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if cfg.Limits.Enabled {
			r.Use(RateLimit(cfg.Limits.RPS, cfg.Limits.Burst))
		}

		r.Get("/", web.HandleIndex)

		r.Route("/api", func(r chi.Router) {
			r.Get("/options", dashboardHandler.HandleOptions)
			r.Get("/geojson", dashboardHandler.HandleGeoJSON)
			r.Get("/summary", dashboardHandler.HandleSummary)
			r.Get("/locate", dashboardHandler.HandleLocate)

			r.Route("/figures", func(r chi.Router) {
				r.Get("/party-map", figureHandler.HandlePartyMap)
				r.Get("/margin-map", figureHandler.HandleMarginMap)
				r.Get("/sunburst", figureHandler.HandleSunburst)
				r.Get("/history", figureHandler.HandleHistory)
				r.Get("/turnout-heatmap", figureHandler.HandleTurnoutHeatmap)
				r.Get("/dominance", figureHandler.HandleDominance)
				r.Get("/dominance.png", exportHandler.HandleDominancePNG)
			})

			r.Get("/export/aggregates.xlsx", exportHandler.HandleWorkbook)
		})
	})

	return r
}
