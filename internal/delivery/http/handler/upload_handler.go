package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/tilescout/tilescout/internal/pkg/errors"
	"github.com/tilescout/tilescout/internal/pkg/utils"
	"github.com/tilescout/tilescout/internal/usecase"
	"github.com/tilescout/tilescout/internal/usecase/dto"
)

// UploadHandler accepts activity file uploads and Strava sync requests.
type UploadHandler struct {
	importUC *usecase.ImportUseCase
	logger   *zap.Logger
}

func NewUploadHandler(importUC *usecase.ImportUseCase, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		importUC: importUC,
		logger:   logger,
	}
}

// Upload godoc
// @Summary Upload an activity file
// @Description Accepts one GPX or FIT file as multipart form field "file"
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Activity file"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/upload [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": "multipart field 'file' is required",
		}))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, apperrors.ErrImportFailed.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return utils.SendError(c, apperrors.ErrImportFailed.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	activity, err := h.importUC.ImportUpload(c.Context(), fileHeader.Filename, data)
	if err != nil {
		h.logger.Error("Failed to import upload",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.UploadResponse{
		ActivityID: activity.ID,
		Name:       activity.Name,
		Kind:       activity.Kind,
		NumPoints:  activity.NumPoints,
	}, nil)
}

// SyncStrava godoc
// @Summary Trigger a Strava sync
// @Description Imports Strava activities not seen before; full=true rewalks the whole history
// @Tags Import
// @Accept json
// @Produce json
// @Param request body dto.SyncRequest false "Sync options"
// @Success 200 {object} utils.SuccessResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/sync/strava [post]
func (h *UploadHandler) SyncStrava(c *fiber.Ctx) error {
	var req dto.SyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
				"reason": err.Error(),
			}))
		}
	}

	imported, err := h.importUC.SyncStrava(c.Context(), req.Full)
	if err != nil {
		h.logger.Error("Strava sync failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.SyncResponse{Imported: imported}, nil)
}
