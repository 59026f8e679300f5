package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/service"
	"github.com/hikma-academy/academy-api/internal/utils"
)

// CourseHandler serves the course catalog endpoints.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler instance.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register wires the public course routes.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
}

// RegisterAdmin wires the admin course routes.
func (h *CourseHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/courses", h.create)
	router.Put("/courses/:id", h.update)
	router.Post("/courses/:id/lessons", h.addLesson)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	publishedOnly := userRoleFromContext(c) != "admin" && userRoleFromContext(c) != "teacher"

	courses, err := h.service.List(requestContext(c), publishedOnly)
	if err != nil {
		return h.handleError(c, err, "failed to list courses")
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.service.Get(requestContext(c), courseID)
	if err != nil {
		return h.handleError(c, err, "failed to fetch course")
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err, "failed to create course")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Update(requestContext(c), courseID, payload)
	if err != nil {
		return h.handleError(c, err, "failed to update course")
	}

	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) addLesson(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.LessonCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	lesson, err := h.service.AddLesson(requestContext(c), courseID, payload)
	if err != nil {
		return h.handleError(c, err, "failed to add lesson")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lesson added", lesson)
}

func (h *CourseHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidVideoURL), isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
