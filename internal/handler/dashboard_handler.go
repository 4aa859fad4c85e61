package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smkdev-id/simagang-api/internal/service"
	"github.com/smkdev-id/simagang-api/internal/utils"
)

// DashboardHandler serves aggregated counts for the presentation layer.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoint to the router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/", h.overview)
}

func (h *DashboardHandler) overview(c *fiber.Ctx) error {
	overview, err := h.service.GetOverview(c.Context(), actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to build dashboard overview")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build dashboard overview")
	}

	return utils.SendSuccess(c, "dashboard overview loaded", overview)
}
