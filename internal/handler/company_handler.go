package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smkdev-id/simagang-api/internal/repository"
	"github.com/smkdev-id/simagang-api/internal/service"
	"github.com/smkdev-id/simagang-api/internal/utils"
)

// CompanyHandler serves the partner company directory.
type CompanyHandler struct {
	service service.CompanyService
	logger  zerolog.Logger
}

// NewCompanyHandler constructs the handler.
func NewCompanyHandler(service service.CompanyService, logger zerolog.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		logger:  logger.With().Str("component", "company_handler").Logger(),
	}
}

// Register attaches company endpoints to the router group.
func (h *CompanyHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
}

func (h *CompanyHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	filter := repository.CompanyFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	}

	companies, err := h.service.List(c.Context(), actorFromContext(c), filter)
	if err != nil {
		return h.sendCompanyError(c, err, "failed to list companies")
	}

	return utils.SendSuccess(c, "companies loaded", companies)
}

func (h *CompanyHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	company, err := h.service.Get(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.sendCompanyError(c, err, "failed to load company")
	}

	return utils.SendSuccess(c, "company loaded", company)
}

func (h *CompanyHandler) sendCompanyError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrCompanyNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
