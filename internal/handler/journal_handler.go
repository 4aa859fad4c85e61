package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smkdev-id/simagang-api/internal/dto"
	"github.com/smkdev-id/simagang-api/internal/service"
	"github.com/smkdev-id/simagang-api/internal/utils"
)

// JournalHandler wires the daily journal endpoints.
type JournalHandler struct {
	service service.JournalService
	logger  zerolog.Logger
}

// NewJournalHandler constructs the handler.
func NewJournalHandler(service service.JournalService, logger zerolog.Logger) *JournalHandler {
	return &JournalHandler{
		service: service,
		logger:  logger.With().Str("component", "journal_handler").Logger(),
	}
}

// Register attaches journal endpoints to the router group.
func (h *JournalHandler) Register(router fiber.Router) {
	router.Post("/", h.submit)
	router.Get("/", h.list)
	router.Patch("/:id/review", h.review)
}

func (h *JournalHandler) submit(c *fiber.Ctx) error {
	var payload dto.JournalSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := h.service.Submit(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.sendJournalError(c, err, "failed to submit journal entry")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "journal entry submitted", entry)
}

func (h *JournalHandler) review(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.JournalReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := h.service.Review(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.sendJournalError(c, err, "failed to review journal entry")
	}

	return utils.SendSuccess(c, "journal entry reviewed", entry)
}

func (h *JournalHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	placementID, err := parseUUIDQuery(c, "placement_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid placement id")
	}
	studentID, err := parseUUIDQuery(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	req := dto.JournalListRequest{
		Page:        page,
		PageSize:    pageSize,
		PlacementID: placementID,
		StudentID:   studentID,
		Status:      c.Query("status"),
	}

	if from := c.Query("date_from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid date_from")
		}
		req.DateFrom = &parsed
	}
	if to := c.Query("date_to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid date_to")
		}
		req.DateTo = &parsed
	}

	entries, err := h.service.List(c.Context(), actorFromContext(c), req)
	if err != nil {
		return h.sendJournalError(c, err, "failed to list journal entries")
	}

	return utils.SendSuccess(c, "journal entries loaded", entries)
}

func (h *JournalHandler) sendJournalError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrJournalNotFound),
		errors.Is(err, service.ErrPlacementNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrTeacherNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDescriptionTooShort),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoActivePlacement),
		errors.Is(err, service.ErrFutureDateNotAllowed),
		errors.Is(err, service.ErrAlreadyReviewed):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
