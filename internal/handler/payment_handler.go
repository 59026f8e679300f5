package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/service"
	"github.com/hikma-academy/academy-api/internal/utils"
)

// PaymentHandler serves the payment-proof submission and review endpoints.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler constructs the handler instance.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("component", "payment_handler").Logger(),
	}
}

// Register wires the student payment routes.
func (h *PaymentHandler) Register(router fiber.Router) {
	router.Post("/", h.register)
}

// RegisterAdmin wires the admin review routes.
func (h *PaymentHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/payments", h.list)
	router.Patch("/payments/:id/decision", h.decide)
}

func (h *PaymentHandler) register(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.PaymentProofCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.StudentID = studentID

	proof, err := h.service.Register(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err, "failed to register payment proof")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "payment proof registered", proof)
}

func (h *PaymentHandler) list(c *fiber.Ctx) error {
	var filter dto.PaymentProofFilter
	if v := strings.TrimSpace(c.Query("student_id")); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id")
		}
		id := uint(parsed)
		filter.StudentID = &id
	}
	if v := strings.TrimSpace(c.Query("course_id")); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid course_id")
		}
		id := uint(parsed)
		filter.CourseID = &id
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		filter.Status = &v
	}

	proofs, err := h.service.List(requestContext(c), filter)
	if err != nil {
		return h.handleError(c, err, "failed to list payment proofs")
	}

	return utils.SendSuccess(c, "payment proofs retrieved", proofs)
}

func (h *PaymentHandler) decide(c *fiber.Ctx) error {
	proofID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PaymentProofDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	proof, err := h.service.Decide(requestContext(c), proofID, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to review payment proof")
	}

	return utils.SendSuccess(c, "payment proof reviewed", proof)
}

func (h *PaymentHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrPaymentProofNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPaymentAlreadyReviewed):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRejectionNeedsFeedback), isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
