package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smkdev-id/simagang-api/internal/dto"
	"github.com/smkdev-id/simagang-api/internal/service"
	"github.com/smkdev-id/simagang-api/internal/utils"
)

// PlacementHandler wires the placement lifecycle endpoints.
type PlacementHandler struct {
	service service.PlacementService
	logger  zerolog.Logger
}

// NewPlacementHandler constructs the handler.
func NewPlacementHandler(service service.PlacementService, logger zerolog.Logger) *PlacementHandler {
	return &PlacementHandler{
		service: service,
		logger:  logger.With().Str("component", "placement_handler").Logger(),
	}
}

// Register attaches placement endpoints to the router group.
func (h *PlacementHandler) Register(router fiber.Router) {
	router.Post("/", h.apply)
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id/approve", h.approve)
	router.Patch("/:id/complete", h.complete)
	router.Patch("/:id/cancel", h.cancel)
	router.Patch("/:id/score", h.score)
	router.Delete("/:id", h.delete)
}

func (h *PlacementHandler) apply(c *fiber.Ctx) error {
	var payload dto.PlacementApplyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	placement, err := h.service.Apply(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.sendPlacementError(c, err, "failed to create placement application")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "placement application submitted", placement)
}

func (h *PlacementHandler) approve(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.PlacementApproveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	placement, err := h.service.Approve(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.sendPlacementError(c, err, "failed to approve placement")
	}

	return utils.SendSuccess(c, "placement updated", placement)
}

func (h *PlacementHandler) complete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.PlacementCompleteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	placement, err := h.service.Complete(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.sendPlacementError(c, err, "failed to complete placement")
	}

	return utils.SendSuccess(c, "placement completed", placement)
}

func (h *PlacementHandler) cancel(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	placement, err := h.service.Cancel(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.sendPlacementError(c, err, "failed to cancel placement")
	}

	return utils.SendSuccess(c, "placement cancelled", placement)
}

func (h *PlacementHandler) score(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.PlacementScoreRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	placement, err := h.service.Score(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.sendPlacementError(c, err, "failed to record score")
	}

	return utils.SendSuccess(c, "score recorded", placement)
}

func (h *PlacementHandler) delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), actorFromContext(c), id); err != nil {
		return h.sendPlacementError(c, err, "failed to delete placement")
	}

	return utils.SendSuccess(c, "placement deleted", nil)
}

func (h *PlacementHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	placement, err := h.service.Get(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.sendPlacementError(c, err, "failed to load placement")
	}

	return utils.SendSuccess(c, "placement loaded", placement)
}

func (h *PlacementHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	studentID, err := parseUUIDQuery(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}
	companyID, err := parseUUIDQuery(c, "company_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid company id")
	}

	req := dto.PlacementListRequest{
		Page:      page,
		PageSize:  pageSize,
		Status:    c.Query("status"),
		StudentID: studentID,
		CompanyID: companyID,
	}

	placements, err := h.service.List(c.Context(), actorFromContext(c), req)
	if err != nil {
		return h.sendPlacementError(c, err, "failed to list placements")
	}

	return utils.SendSuccess(c, "placements loaded", placements)
}

func (h *PlacementHandler) sendPlacementError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPlacementNotFound),
		errors.Is(err, service.ErrCompanyNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrTeacherNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidScore),
		errors.Is(err, service.ErrInvalidPeriod),
		errors.Is(err, service.ErrInvalidStatus),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrActivePlacementExists),
		errors.Is(err, service.ErrDuplicateApplication),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrConcurrentUpdate):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
