package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/tilescout/tilescout/internal/pkg/errors"
	"github.com/tilescout/tilescout/internal/pkg/utils"
	"github.com/tilescout/tilescout/internal/pkg/validator"
	"github.com/tilescout/tilescout/internal/usecase"
	"github.com/tilescout/tilescout/internal/usecase/dto"
)

// ActivityHandler serves the activity list and per-activity resources.
type ActivityHandler struct {
	activityUC *usecase.ActivityUseCase
	logger     *zap.Logger
}

func NewActivityHandler(activityUC *usecase.ActivityUseCase, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityUC: activityUC,
		logger:     logger,
	}
}

// List godoc
// @Summary List activities
// @Description Returns activities ordered by start time descending, newest first
// @Tags Activities
// @Produce json
// @Param kind query []string false "Filter by kind" collectionFormat(multi)
// @Param commute query bool false "Filter by commute flag"
// @Param page query int false "Page number, zero-based"
// @Param limit query int false "Page size, max 500"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/activities [get]
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	var req dto.ListActivitiesRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	resp, err := h.activityUC.List(c.Context(), req)
	if err != nil {
		h.logger.Error("Failed to list activities", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp.Activities, &utils.Meta{
		Total: resp.Total,
		Page:  req.Page,
		Limit: req.Limit,
	})
}

// Get godoc
// @Summary Get one activity
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/activities/{id} [get]
func (h *ActivityHandler) Get(c *fiber.Ctx) error {
	id, err := parseActivityID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	activity, err := h.activityUC.Get(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, activity, nil)
}

// GetTrack godoc
// @Summary Get the activity track as GeoJSON
// @Description LineString segments colored by speed, ready for Leaflet
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID"
// @Success 200 {object} domain.FeatureCollection
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/activities/{id}/track.geojson [get]
func (h *ActivityHandler) GetTrack(c *fiber.Ctx) error {
	id, err := parseActivityID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	fc, err := h.activityUC.GetTrackGeoJSON(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.JSON(fc)
}

// GetHeartRateZones godoc
// @Summary Get time in heart rate zones
// @Description Returns zones plus a Vega-Lite spec; 204 when the track has no heart rate data
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID"
// @Success 200 {object} utils.SuccessResponse
// @Success 204 "No heart rate data"
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/activities/{id}/hr-zones [get]
func (h *ActivityHandler) GetHeartRateZones(c *fiber.Ctx) error {
	id, err := parseActivityID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.activityUC.GetHeartRateZones(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	if resp == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return utils.SendSuccess(c, resp, nil)
}

func parseActivityID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidActivityID
	}
	return id, nil
}
