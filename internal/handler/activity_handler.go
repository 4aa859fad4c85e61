package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smkdev-id/simagang-api/internal/dto"
	"github.com/smkdev-id/simagang-api/internal/service"
	"github.com/smkdev-id/simagang-api/internal/utils"
)

// ActivityHandler wires the audit trail endpoints.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches audit trail endpoints to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Post("/", h.record)
	router.Get("/", h.query)
	router.Delete("/", h.softDelete)
	router.Patch("/restore", h.restore)
	router.Delete("/purge", h.purge)
}

func (h *ActivityHandler) record(c *fiber.Ctx) error {
	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := h.service.Record(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.sendActivityError(c, err, "failed to record activity")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity recorded", entry)
}

func (h *ActivityHandler) query(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	req := dto.ActivityQueryRequest{
		Page:        page,
		PageSize:    pageSize,
		Action:      c.Query("action"),
		EntityType:  c.Query("entity_type"),
		Search:      c.Query("search"),
		ShowDeleted: c.QueryBool("show_deleted"),
	}

	entries, err := h.service.Query(c.Context(), actorFromContext(c), req)
	if err != nil {
		return h.sendActivityError(c, err, "failed to query activity log")
	}

	return utils.SendSuccess(c, "activity log loaded", entries)
}

func (h *ActivityHandler) softDelete(c *fiber.Ctx) error {
	var payload dto.ActivityBulkRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	affected, err := h.service.SoftDelete(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.sendActivityError(c, err, "failed to move activity log entries to trash")
	}

	return utils.SendSuccess(c, "activity log entries moved to trash", fiber.Map{"affected": affected})
}

func (h *ActivityHandler) restore(c *fiber.Ctx) error {
	var payload dto.ActivityBulkRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	affected, err := h.service.Restore(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.sendActivityError(c, err, "failed to restore activity log entries")
	}

	return utils.SendSuccess(c, "activity log entries restored", fiber.Map{"affected": affected})
}

func (h *ActivityHandler) purge(c *fiber.Ctx) error {
	affected, err := h.service.PurgeDeleted(c.Context(), actorFromContext(c))
	if err != nil {
		return h.sendActivityError(c, err, "failed to purge activity log entries")
	}

	return utils.SendSuccess(c, "soft-deleted activity log entries purged", fiber.Map{"affected": affected})
}

func (h *ActivityHandler) sendActivityError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
