package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smkdev-id/simagang-api/internal/service"
	"github.com/smkdev-id/simagang-api/internal/utils"
)

// UploadHandler accepts journal attachment uploads and hands back the opaque
// blob-store URL.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register attaches upload endpoints to the router group.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("/journal", h.uploadJournalAttachment)
}

func (h *UploadHandler) uploadJournalAttachment(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	url, err := h.service.UploadJournalAttachment(c.Context(), actorFromContext(c), fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrAttachmentTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUnsupportedAttachment):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to upload attachment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to upload attachment")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attachment uploaded", fiber.Map{"url": url})
}
