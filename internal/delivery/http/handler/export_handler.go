package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/pkg/utils"
	"github.com/tilescout/tilescout/internal/usecase"
)

// ExportHandler serves downloadable explorer artifacts.
type ExportHandler struct {
	exportUC *usecase.ExportUseCase
	logger   *zap.Logger
}

func NewExportHandler(exportUC *usecase.ExportUseCase, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		exportUC: exportUC,
		logger:   logger,
	}
}

// DownloadExploredGeoJSON godoc
// @Summary Download explored tiles as GeoJSON
// @Tags Downloads
// @Produce json
// @Success 200 {file} file
// @Router /download/explored.geojson [get]
func (h *ExportHandler) DownloadExploredGeoJSON(c *fiber.Ctx) error {
	data, err := h.exportUC.ExploredGeoJSON(c.Context())
	if err != nil {
		h.logger.Error("Failed to export explored geojson", zap.Error(err))
		return utils.SendError(c, err)
	}
	return sendAttachment(c, data, "explored.geojson", "application/geo+json")
}

// DownloadExploredGPX godoc
// @Summary Download explored tile centers as GPX waypoints
// @Tags Downloads
// @Produce xml
// @Success 200 {file} file
// @Router /download/explored.gpx [get]
func (h *ExportHandler) DownloadExploredGPX(c *fiber.Ctx) error {
	data, err := h.exportUC.ExploredGPX(c.Context())
	if err != nil {
		h.logger.Error("Failed to export explored gpx", zap.Error(err))
		return utils.SendError(c, err)
	}
	return sendAttachment(c, data, "explored.gpx", "application/gpx+xml")
}

// DownloadMissingGeoJSON godoc
// @Summary Download missing tiles as GeoJSON
// @Tags Downloads
// @Produce json
// @Success 200 {file} file
// @Router /download/missing_tiles.geojson [get]
func (h *ExportHandler) DownloadMissingGeoJSON(c *fiber.Ctx) error {
	data, err := h.exportUC.MissingGeoJSON(c.Context())
	if err != nil {
		h.logger.Error("Failed to export missing geojson", zap.Error(err))
		return utils.SendError(c, err)
	}
	return sendAttachment(c, data, "missing_tiles.geojson", "application/geo+json")
}

// DownloadMissingGPX godoc
// @Summary Download missing tile centers as GPX waypoints
// @Tags Downloads
// @Produce xml
// @Success 200 {file} file
// @Router /download/missing_tiles.gpx [get]
func (h *ExportHandler) DownloadMissingGPX(c *fiber.Ctx) error {
	data, err := h.exportUC.MissingGPX(c.Context())
	if err != nil {
		h.logger.Error("Failed to export missing gpx", zap.Error(err))
		return utils.SendError(c, err)
	}
	return sendAttachment(c, data, "missing_tiles.gpx", "application/gpx+xml")
}

func sendAttachment(c *fiber.Ctx, data []byte, filename, contentType string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
