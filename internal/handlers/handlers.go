package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"election-dashboard/internal/models"
	"election-dashboard/internal/services"
)

// queryError converts a parse or validation failure into an APIError
func queryError(err error) *APIError {
	var pe *parameterError
	if errors.As(err, &pe) {
		return invalidParameter(pe.name, pe.err)
	}
	return ErrInvalidParameter.withDetails(err.Error())
}

// DashboardHandler serves the dropdown options, boundaries and lookups
type DashboardHandler struct {
	dashboard *services.DashboardService
	query     *queryParser
	logger    *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler instance
func NewDashboardHandler(dashboard *services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		query:     newQueryParser(),
		logger:    logger,
	}
}

// HandleOptions returns the available years and states
func (h *DashboardHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.dashboard.Options())
}

// HandleGeoJSON returns the simplified boundary FeatureCollection
func (h *DashboardHandler) HandleGeoJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(h.dashboard.GeoJSON()); err != nil {
		h.logger.Warn("error writing geojson", zap.Error(err))
	}
}

// HandleSummary returns the load statistics
func (h *DashboardHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.dashboard.Summary())
}

// HandleLocate returns the constituency containing a point and its winner
func (h *DashboardHandler) HandleLocate(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	q, err := h.query.locate(r.URL.Query())
	if err != nil {
		writeError(w, r, queryError(err))
		return
	}

	year := h.dashboard.DefaultYear()
	if q.Year != nil {
		year = *q.Year
	}

	response, ok := h.dashboard.Locate(*q.Lat, *q.Lng, year)
	if !ok {
		writeError(w, r, notFound("no constituency contains lat=%g lng=%g", *q.Lat, *q.Lng))
		return
	}
	render.JSON(w, r, response)

	h.logger.Debug("Request processed",
		zap.String("constituency", response.Constituency),
		zap.Duration("duration", time.Since(startTime)),
	)
}

// HandleHealth reports liveness
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// FigureHandler serves the Plotly figures of the six views
type FigureHandler struct {
	dashboard *services.DashboardService
	metrics   *Metrics
	query     *queryParser
	logger    *zap.Logger
}

// NewFigureHandler creates a new FigureHandler instance
func NewFigureHandler(dashboard *services.DashboardService, metrics *Metrics, logger *zap.Logger) *FigureHandler {
	return &FigureHandler{
		dashboard: dashboard,
		metrics:   metrics,
		query:     newQueryParser(),
		logger:    logger,
	}
}

func (h *FigureHandler) respond(w http.ResponseWriter, r *http.Request, name string, startTime time.Time, fig *models.Figure) {
	render.JSON(w, r, fig)
	if h.metrics != nil {
		h.metrics.FigureServed(name)
	}
	h.logger.Debug("Request processed",
		zap.String("figure", name),
		zap.Int("traces", len(fig.Data)),
		zap.Duration("duration", time.Since(startTime)),
	)
}

func (h *FigureHandler) year(w http.ResponseWriter, r *http.Request) (int, bool) {
	q, err := h.query.year(r.URL.Query())
	if err != nil {
		writeError(w, r, queryError(err))
		return 0, false
	}
	if q.Year == nil {
		return h.dashboard.DefaultYear(), true
	}
	return *q.Year, true
}

// HandlePartyMap handles the winning party map request
func (h *FigureHandler) HandlePartyMap(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	h.respond(w, r, "party-map", startTime, h.dashboard.PartyMap(year))
}

// HandleMarginMap handles the victory margin map request
func (h *FigureHandler) HandleMarginMap(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	h.respond(w, r, "margin-map", startTime, h.dashboard.MarginMap(year))
}

// HandleSunburst handles the repeat winners request
func (h *FigureHandler) HandleSunburst(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "sunburst", time.Now(), h.dashboard.Sunburst())
}

// HandleHistory handles the historical performance request
func (h *FigureHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "history", time.Now(), h.dashboard.History())
}

// HandleTurnoutHeatmap handles the turnout heatmap request
func (h *FigureHandler) HandleTurnoutHeatmap(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	q, err := h.query.state(r.URL.Query())
	if err != nil {
		writeError(w, r, queryError(err))
		return
	}
	state := q.State
	if state == "" {
		state = h.dashboard.DefaultState()
	}
	h.respond(w, r, "turnout-heatmap", startTime, h.dashboard.TurnoutHeatmap(state))
}

// HandleDominance handles the regional dominance request
func (h *FigureHandler) HandleDominance(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "dominance", time.Now(), h.dashboard.Dominance())
}

// ExportHandler serves the file downloads
type ExportHandler struct {
	export *services.ExportService
	logger *zap.Logger
}

// NewExportHandler creates a new ExportHandler instance
func NewExportHandler(export *services.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		export: export,
		logger: logger,
	}
}

// HandleWorkbook returns the aggregates as an XLSX workbook
func (h *ExportHandler) HandleWorkbook(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "aggregates.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		h.export.WriteWorkbook)
}

// HandleDominancePNG returns the dominance chart as a PNG image
func (h *ExportHandler) HandleDominancePNG(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "", "image/png", h.export.WriteDominancePNG)
}

// serveFile buffers the output so a failure can still become a JSON error
func (h *ExportHandler) serveFile(w http.ResponseWriter, r *http.Request, filename, contentType string, write func(w io.Writer) error) {
	startTime := time.Now()

	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		h.logger.Error("error rendering export", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, ErrInternalServer)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("error writing export", zap.Error(err))
		return
	}

	h.logger.Debug("Request processed",
		zap.String("path", r.URL.Path),
		zap.Duration("duration", time.Since(startTime)),
	)
}
