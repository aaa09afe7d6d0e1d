package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/pkg/utils"
	"github.com/tilescout/tilescout/internal/usecase"
)

// ExplorerHandler serves the explorer tile summary and overlays. The overlay
// payloads come from ExportUseCase so the map and the download links share
// one cached serialization.
type ExplorerHandler struct {
	explorerUC *usecase.ExplorerUseCase
	exportUC   *usecase.ExportUseCase
	logger     *zap.Logger
}

func NewExplorerHandler(explorerUC *usecase.ExplorerUseCase, exportUC *usecase.ExportUseCase, logger *zap.Logger) *ExplorerHandler {
	return &ExplorerHandler{
		explorerUC: explorerUC,
		exportUC:   exportUC,
		logger:     logger,
	}
}

// GetSummary godoc
// @Summary Explorer tile summary
// @Description Tile counts, largest cluster and largest square
// @Tags Explorer
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/explorer/summary [get]
func (h *ExplorerHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.explorerUC.GetSummary(c.Context())
	if err != nil {
		h.logger.Error("Failed to build explorer summary", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, summary, nil)
}

// GetExplored godoc
// @Summary Explored tiles overlay
// @Description Polygon per explored tile with cluster and age colors
// @Tags Explorer
// @Produce json
// @Success 200 {object} domain.FeatureCollection
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/explorer/explored.geojson [get]
func (h *ExplorerHandler) GetExplored(c *fiber.Ctx) error {
	data, err := h.exportUC.ExploredGeoJSON(c.Context())
	if err != nil {
		h.logger.Error("Failed to build explored overlay", zap.Error(err))
		return utils.SendError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(data)
}

// GetMissing godoc
// @Summary Missing tiles overlay
// @Description Unexplored neighbors of explored tiles
// @Tags Explorer
// @Produce json
// @Success 200 {object} domain.FeatureCollection
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/explorer/missing.geojson [get]
func (h *ExplorerHandler) GetMissing(c *fiber.Ctx) error {
	data, err := h.exportUC.MissingGeoJSON(c.Context())
	if err != nil {
		h.logger.Error("Failed to build missing overlay", zap.Error(err))
		return utils.SendError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(data)
}
