package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/service"
	"github.com/hikma-academy/academy-api/internal/utils"
)

// AdminActivityHandler exposes the audit log to administrators.
type AdminActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewAdminActivityHandler constructs the handler instance.
func NewAdminActivityHandler(service service.ActivityService, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register wires the admin activity routes.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("/activities", h.list)
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	req := dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		Action:     strings.TrimSpace(c.Query("action")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
	}
	if v := strings.TrimSpace(c.Query("actor_id")); v != "" {
		parsed, parseErr := strconv.ParseUint(v, 10, 64)
		if parseErr != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid actor_id")
		}
		req.ActorID = uint(parsed)
	}

	result, err := h.service.List(requestContext(c), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activities")
	}

	return utils.OK(c, result.Items, "activities retrieved", result.Pagination)
}
