package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/tilescout/tilescout/internal/pkg/errors"
	"github.com/tilescout/tilescout/internal/pkg/utils"
	"github.com/tilescout/tilescout/internal/usecase"
)

// HeatmapHandler serves rendered heatmap overlay tiles.
type HeatmapHandler struct {
	heatmapUC *usecase.HeatmapUseCase
	logger    *zap.Logger
}

func NewHeatmapHandler(heatmapUC *usecase.HeatmapUseCase, logger *zap.Logger) *HeatmapHandler {
	return &HeatmapHandler{
		heatmapUC: heatmapUC,
		logger:    logger,
	}
}

// GetTile godoc
// @Summary Heatmap overlay tile
// @Description 256x256 transparent PNG for the slippy tile
// @Tags Heatmap
// @Produce png
// @Param z path int true "Zoom level"
// @Param x path int true "Tile X"
// @Param y path int true "Tile Y"
// @Success 200 {file} file
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/tiles/heatmap/{z}/{x}/{y}.png [get]
func (h *HeatmapHandler) GetTile(c *fiber.Ctx) error {
	z, x, y, err := parseTileCoords(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	data, err := h.heatmapUC.RenderTile(c.Context(), z, x, y)
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(data)
}

func parseTileCoords(c *fiber.Ctx) (z, x, y int, err error) {
	z, errZ := strconv.Atoi(c.Params("z"))
	x, errX := strconv.Atoi(c.Params("x"))
	y, errY := strconv.Atoi(c.Params("y"))
	if errZ != nil || errX != nil || errY != nil {
		return 0, 0, 0, apperrors.ErrInvalidTileCoordinates
	}
	return z, x, y, nil
}
