package handler

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	"github.com/tilescout/tilescout/internal/pkg/utils"
	"github.com/tilescout/tilescout/internal/usecase"
	"github.com/tilescout/tilescout/internal/usecase/dto"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Fallback map center when nothing is explored yet.
const (
	defaultCenterLat = 50.0
	defaultCenterLon = 8.0
)

// PagesHandler renders the server-side HTML pages.
type PagesHandler struct {
	activityUC *usecase.ActivityUseCase
	explorerUC *usecase.ExplorerUseCase
	logger     *zap.Logger

	index    *template.Template
	activity *template.Template
	explorer *template.Template
	heatmap  *template.Template
}

func NewPagesHandler(
	activityUC *usecase.ActivityUseCase,
	explorerUC *usecase.ExplorerUseCase,
	logger *zap.Logger,
) (*PagesHandler, error) {
	funcs := template.FuncMap{
		"formatDuration": formatDuration,
	}

	h := &PagesHandler{
		activityUC: activityUC,
		explorerUC: explorerUC,
		logger:     logger,
	}

	for _, page := range []struct {
		name string
		dst  **template.Template
	}{
		{"index.html", &h.index},
		{"activity.html", &h.activity},
		{"explorer.html", &h.explorer},
		{"heatmap.html", &h.heatmap},
	} {
		tmpl, err := template.New(page.name).Funcs(funcs).ParseFS(templatesFS, "templates/"+page.name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page.name, err)
		}
		*page.dst = tmpl
	}

	return h, nil
}

type indexPageData struct {
	Activities []domain.Activity
	Total      int
}

// Index renders the activity list page.
func (h *PagesHandler) Index(c *fiber.Ctx) error {
	resp, err := h.activityUC.List(c.Context(), dto.ListActivitiesRequest{Limit: 200})
	if err != nil {
		h.logger.Error("Failed to render index", zap.Error(err))
		return utils.SendError(c, err)
	}

	return h.render(c, h.index, indexPageData{
		Activities: resp.Activities,
		Total:      resp.Total,
	})
}

type activityPageData struct {
	Activity   *domain.Activity
	HRZones    *domain.HeartRateZones
	HRPlotSpec template.JS
}

// Activity renders the activity detail page. The heart rate section is only
// present when the track carries heart rate samples.
func (h *PagesHandler) Activity(c *fiber.Ctx) error {
	id, err := parseActivityID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	activity, err := h.activityUC.Get(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	data := activityPageData{Activity: activity}
	if hr, err := h.activityUC.GetHeartRateZones(c.Context(), id); err == nil && hr != nil {
		data.HRZones = hr.Zones
		if spec, err := json.Marshal(hr.PlotSpec); err == nil {
			data.HRPlotSpec = template.JS(spec)
		}
	}

	return h.render(c, h.activity, data)
}

type explorerPageData struct {
	Summary   *domain.ExplorerSummary
	CenterLat float64
	CenterLon float64
}

// Explorer renders the explorer tile page with the summary counts.
func (h *PagesHandler) Explorer(c *fiber.Ctx) error {
	summary, err := h.explorerUC.GetSummary(c.Context())
	if err != nil {
		h.logger.Error("Failed to render explorer page", zap.Error(err))
		return utils.SendError(c, err)
	}

	lat, lon := pageCenter(summary)
	return h.render(c, h.explorer, explorerPageData{
		Summary:   summary,
		CenterLat: lat,
		CenterLon: lon,
	})
}

type heatmapPageData struct {
	CenterLat float64
	CenterLon float64
}

// Heatmap renders the heatmap page.
func (h *PagesHandler) Heatmap(c *fiber.Ctx) error {
	lat, lon := defaultCenterLat, defaultCenterLon
	if summary, err := h.explorerUC.GetSummary(c.Context()); err == nil {
		lat, lon = pageCenter(summary)
	}

	return h.render(c, h.heatmap, heatmapPageData{
		CenterLat: lat,
		CenterLon: lon,
	})
}

func (h *PagesHandler) render(c *fiber.Ctx, tmpl *template.Template, data interface{}) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	if err := tmpl.Execute(c.Response().BodyWriter(), data); err != nil {
		h.logger.Error("Failed to render template",
			zap.String("template", tmpl.Name()),
			zap.Error(err))
		return err
	}
	return nil
}

func pageCenter(summary *domain.ExplorerSummary) (float64, float64) {
	if summary.NumTiles == 0 {
		return defaultCenterLat, defaultCenterLon
	}
	return summary.Center.Lat, summary.Center.Lon
}

// formatDuration renders seconds as 1h23m or 12m05s.
func formatDuration(sec int64) string {
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
