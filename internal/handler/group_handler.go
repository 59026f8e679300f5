package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/service"
	"github.com/hikma-academy/academy-api/internal/utils"
)

// GroupHandler serves the course group and chat endpoints. Message
// delivery is poll based; clients page history with the before cursor.
type GroupHandler struct {
	service service.GroupService
	logger  zerolog.Logger
}

// NewGroupHandler constructs the handler instance.
func NewGroupHandler(service service.GroupService, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		service: service,
		logger:  logger.With().Str("component", "group_handler").Logger(),
	}
}

// Register wires the group routes.
func (h *GroupHandler) Register(router fiber.Router) {
	router.Get("/course/:courseId", h.listByCourse)
	router.Post("/:id/messages", h.post)
	router.Get("/:id/messages", h.history)
}

// RegisterAdmin wires the admin group routes.
func (h *GroupHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/groups", h.create)
}

func (h *GroupHandler) create(c *fiber.Ctx) error {
	var payload dto.GroupCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err, "failed to create group")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group created", group)
}

func (h *GroupHandler) listByCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	groups, err := h.service.ListByCourse(requestContext(c), courseID)
	if err != nil {
		return h.handleError(c, err, "failed to list groups")
	}

	return utils.SendSuccess(c, "groups retrieved", groups)
}

func (h *GroupHandler) post(c *fiber.Ctx) error {
	senderID := userIDFromContext(c)
	if senderID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	groupID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GroupMessageSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.service.Post(requestContext(c), groupID, senderID, payload)
	if err != nil {
		return h.handleError(c, err, "failed to post message")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message posted", message)
}

func (h *GroupHandler) history(c *fiber.Ctx) error {
	groupID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	query := dto.GroupHistoryQuery{}
	if v := strings.TrimSpace(c.Query("before")); v != "" {
		parsed, parseErr := time.Parse(time.RFC3339, v)
		if parseErr != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid before cursor")
		}
		query.Before = &parsed
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	query.Limit = limit

	messages, err := h.service.History(requestContext(c), groupID, query)
	if err != nil {
		return h.handleError(c, err, "failed to fetch history")
	}

	return utils.SendSuccess(c, "messages retrieved", messages)
}

func (h *GroupHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrGroupNotFound), errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
