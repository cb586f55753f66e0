// Package api serves the dashboard's JSON API.
package api

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"github.com/couchcryptid/weatherwise-service/internal/analysis"
	"github.com/couchcryptid/weatherwise-service/internal/domain"
	"github.com/couchcryptid/weatherwise-service/internal/theme"
)

// SettingsService reads and writes the settings record.
type SettingsService interface {
	Current() domain.Settings
	Save(ctx context.Context, rec domain.Settings) error
	Update(ctx context.Context, fn func(*domain.Settings)) (domain.Settings, error)
	ResetThresholds(ctx context.Context) (domain.Settings, error)
	ResetAll(ctx context.Context) (domain.Settings, error)
}

// ThemeService reads and changes the applied theme.
type ThemeService interface {
	Current() theme.Presentation
	Set(ctx context.Context, t domain.Theme) (theme.Presentation, error)
}

// Analyzer runs analyses and exports the latest one.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.Request) (domain.Report, error)
	Present(r domain.Report, c domain.Categories) analysis.Result
	Last() (domain.Report, bool)
	Export(f analysis.Format) (analysis.Export, error)
}

// Handler holds the dependencies of every API route.
type Handler struct {
	settings SettingsService
	theme    ThemeService
	analyzer Analyzer
	geocoder domain.Geocoder
	logger   *slog.Logger
	schema   *jsonschema.Schema
}

// NewHandler creates a Handler. geocoder may be nil when place search is disabled.
func NewHandler(settings SettingsService, th ThemeService, analyzer Analyzer, geocoder domain.Geocoder, logger *slog.Logger) *Handler {
	return &Handler{
		settings: settings,
		theme:    th,
		analyzer: analyzer,
		geocoder: geocoder,
		logger:   logger,
		schema:   settingsSchema(),
	}
}

// NewRouter mounts every route under /api.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	api := r.Group("/api")
	{
		api.GET("/settings", h.getSettings)
		api.PUT("/settings", h.putSettings)
		api.GET("/settings/form", h.getSettingsForm)
		api.PUT("/settings/form", h.putSettingsForm)
		api.POST("/settings/reset-thresholds", h.resetThresholds)
		api.POST("/settings/reset", h.resetAll)
		api.GET("/settings/schema", h.getSettingsSchema)
		api.GET("/labels", h.getLabels)

		api.GET("/theme", h.getTheme)
		api.PUT("/theme", h.putTheme)

		api.GET("/geocode", h.geocode)
		api.GET("/default-location", h.defaultLocation)

		api.POST("/analyze", h.analyze)
		api.GET("/analysis", h.lastAnalysis)
		api.GET("/export", h.export)
	}

	return r
}

func settingsSchema() *jsonschema.Schema {
	ref := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	schema := ref.Reflect(&domain.Settings{})
	schema.Version = ""
	schema.Title = "WeatherWise settings"
	return schema
}
